package auction

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// FeeRateBps is the protocol fee in basis points, fixed at 10%. The fee is
// computed with floor division: fee = price * FeeRateBps / 10000.
const FeeRateBps = 1000

// Config carries the engine's operating parameters.
type Config struct {
	// FeeAccount is the engine's operating account. It escrows the buyer's
	// payment during settlement and retains the protocol fee.
	FeeAccount AccountID

	// Clock defaults to SystemClock.
	Clock Clock

	// Log defaults to slog.Default.
	Log *slog.Logger
}

// Engine orchestrates auction creation and settlement. Settlement is
// serialized per auction id; operations on different ids run in parallel.
type Engine struct {
	store      Store
	ledger     Ledger
	clock      Clock
	log        *slog.Logger
	feeAccount AccountID

	sinkMu sync.RWMutex
	sinks  []EventSink

	lockMu sync.Mutex
	locks  map[ID]*sync.Mutex
}

// NewEngine creates an engine over the given store and ledger.
func NewEngine(store Store, ledger Ledger, cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:      store,
		ledger:     ledger,
		clock:      clock,
		log:        log,
		feeAccount: cfg.FeeAccount,
		locks:      make(map[ID]*sync.Mutex),
	}
}

// Subscribe registers a sink for lifecycle events.
func (e *Engine) Subscribe(sink EventSink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// CreateRequest carries the parameters for a new auction. The seller is an
// explicit parameter: the engine reads no ambient caller identity.
type CreateRequest struct {
	Seller        AccountID `json:"seller"`
	StartingPrice Amount    `json:"starting_price"`
	DiscountRate  Amount    `json:"discount_rate"`
	Item          string    `json:"item"`

	// Duration is the auction window in seconds.
	Duration int64 `json:"duration"`
}

// CreateAuction validates the request, stores a new active auction and
// returns its id. Validation failure is immediate and final for the call.
func (e *Engine) CreateAuction(ctx context.Context, req CreateRequest) (ID, error) {
	if req.Duration <= 0 {
		return 0, ErrInvalidDuration
	}
	if req.DiscountRate <= 0 {
		return 0, ErrInvalidDiscount
	}
	// The full decay over the window must leave the price strictly
	// positive, otherwise the auction could reach a zero or negative
	// price while still open.
	if req.StartingPrice <= req.DiscountRate*Amount(req.Duration) {
		return 0, ErrInvalidPrice
	}

	startAt := e.clock.Now().Unix()
	a := &Auction{
		Seller:        req.Seller,
		Item:          req.Item,
		StartingPrice: req.StartingPrice,
		DiscountRate:  req.DiscountRate,
		StartAt:       startAt,
		EndAt:         startAt + req.Duration,
	}

	id, err := e.store.Append(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("append auction: %w", err)
	}

	e.publish(ctx, AuctionCreated{
		ID:            id,
		Seller:        req.Seller,
		Item:          req.Item,
		StartingPrice: req.StartingPrice,
		Duration:      req.Duration,
	})
	e.log.Info("auction created",
		"id", id, "seller", req.Seller, "startingPrice", req.StartingPrice, "duration", req.Duration)
	return id, nil
}

// GetAuction returns the stored record for the given id.
func (e *Engine) GetAuction(ctx context.Context, id ID) (*Auction, error) {
	return e.store.Get(ctx, id)
}

// ListAuctions returns all stored records in id order.
func (e *Engine) ListAuctions(ctx context.Context) ([]Auction, error) {
	return e.store.List(ctx)
}

// GetPriceFor returns the auction's current decayed price. A settled auction
// has no current price, only a final one, so it fails with ErrStopped.
//
// There is deliberately no expiry check here: querying the price past EndAt
// is allowed so a caller can observe that the window has lapsed (and a UI
// can keep displaying the stale price) before attempting to buy.
func (e *Engine) GetPriceFor(ctx context.Context, id ID) (Amount, error) {
	a, err := e.store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if a.Stopped {
		return 0, ErrStopped
	}
	return CurrentPrice(a, e.clock.Now()), nil
}

// BuyRequest carries a settlement attempt. The buyer is an explicit
// parameter, and Payment is the value the buyer attached to the call.
type BuyRequest struct {
	AuctionID ID        `json:"auction_id"`
	Buyer     AccountID `json:"buyer"`
	Payment   Amount    `json:"payment"`
}

// Receipt describes a completed settlement. SellerProceeds + Fee equals
// FinalPrice exactly, and Refund equals Payment - FinalPrice.
type Receipt struct {
	AuctionID      ID        `json:"auction_id"`
	Buyer          AccountID `json:"buyer"`
	FinalPrice     Amount    `json:"final_price"`
	Fee            Amount    `json:"fee"`
	SellerProceeds Amount    `json:"seller_proceeds"`
	Refund         Amount    `json:"refund"`
}

// Buy settles the auction at its current price. The fetch-check-transfer-mark
// sequence runs as one critical section per auction id, so concurrent buys of
// the same auction cannot both observe it unsettled.
//
// Failure order is fixed: ErrStopped before ErrExpired before
// ErrInsufficientFunds. All checks happen before any transfer; a failed
// ledger batch leaves the auction active and unchanged.
func (e *Engine) Buy(ctx context.Context, req BuyRequest) (*Receipt, error) {
	lock := e.settleLock(req.AuctionID)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.store.Get(ctx, req.AuctionID)
	if err != nil {
		return nil, err
	}
	if a.Stopped {
		return nil, ErrStopped
	}

	now := e.clock.Now()
	if now.Unix() > a.EndAt {
		return nil, ErrExpired
	}

	price := CurrentPrice(a, now)
	if req.Payment < price {
		return nil, ErrInsufficientFunds
	}

	fee := price * FeeRateBps / 10000
	proceeds := price - fee
	refund := req.Payment - price

	// One atomic batch: the payment moves into the engine's operating
	// account, the seller is paid out of it and the overpayment returns
	// to the buyer. The fee is whatever stays behind.
	entries := []Entry{
		{From: req.Buyer, To: e.feeAccount, Amount: req.Payment},
		{From: e.feeAccount, To: a.Seller, Amount: proceeds},
		{From: e.feeAccount, To: req.Buyer, Amount: refund},
	}
	if err := e.ledger.Settle(ctx, entries); err != nil {
		return nil, fmt.Errorf("settle transfers: %w", err)
	}

	if err := e.store.MarkSettled(ctx, a.ID, price); err != nil {
		// Unreachable for a conforming store while we hold the
		// per-auction lock; do not swallow it if a store misbehaves.
		return nil, fmt.Errorf("mark settled: %w", err)
	}

	e.publish(ctx, AuctionEnded{ID: a.ID, FinalPrice: price, Buyer: req.Buyer})
	e.log.Info("auction settled",
		"id", a.ID, "buyer", req.Buyer, "finalPrice", price, "fee", fee, "refund", refund)

	return &Receipt{
		AuctionID:      a.ID,
		Buyer:          req.Buyer,
		FinalPrice:     price,
		Fee:            fee,
		SellerProceeds: proceeds,
		Refund:         refund,
	}, nil
}

func (e *Engine) settleLock(id ID) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

func (e *Engine) publish(ctx context.Context, ev Event) {
	e.sinkMu.RLock()
	sinks := e.sinks
	e.sinkMu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			e.log.Warn("event sink failed", "event", ev.Name(), "err", err)
		}
	}
}
