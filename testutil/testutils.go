package testutil

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Shkulipa/auction-contract/auction"
	"github.com/Shkulipa/auction-contract/ledger"
)

// FeeAccount is the engine operating account used by fixtures.
const FeeAccount = auction.AccountID("treasury")

// ManualClock is an auction.Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// DiscardLogger returns a logger that drops everything, keeping test output
// clean.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// EngineFixture bundles a wired engine with its collaborators.
type EngineFixture struct {
	Engine *auction.Engine
	Store  *auction.MemoryStore
	Ledger *ledger.Ledger
	Clock  *ManualClock
}

type fixtureOptions struct {
	feeAccount auction.AccountID
	startTime  time.Time
	balances   map[auction.AccountID]auction.Amount
}

// Option customizes an EngineFixture.
type Option func(*fixtureOptions)

// WithFeeAccount overrides the engine's operating account.
func WithFeeAccount(account auction.AccountID) Option {
	return func(o *fixtureOptions) { o.feeAccount = account }
}

// WithStartTime overrides the clock's initial instant.
func WithStartTime(t time.Time) Option {
	return func(o *fixtureOptions) { o.startTime = t }
}

// WithBalance pre-funds an account.
func WithBalance(account auction.AccountID, amount auction.Amount) Option {
	return func(o *fixtureOptions) { o.balances[account] = amount }
}

// NewEngineFixture creates an engine over a memory store, an in-process
// ledger and a manual clock.
func NewEngineFixture(opts ...Option) *EngineFixture {
	o := &fixtureOptions{
		feeAccount: FeeAccount,
		startTime:  time.Unix(1_700_000_000, 0),
		balances:   make(map[auction.AccountID]auction.Amount),
	}
	for _, opt := range opts {
		opt(o)
	}

	clock := NewManualClock(o.startTime)
	store := auction.NewMemoryStore()
	l := ledger.New()
	for account, amount := range o.balances {
		if err := l.Deposit(account, amount); err != nil {
			panic(err)
		}
	}

	engine := auction.NewEngine(store, l, auction.Config{
		FeeAccount: o.feeAccount,
		Clock:      clock,
		Log:        DiscardLogger(),
	})

	return &EngineFixture{
		Engine: engine,
		Store:  store,
		Ledger: l,
		Clock:  clock,
	}
}
