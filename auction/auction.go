package auction

// ID is the external handle callers use to reference an auction. Ids are
// assigned by the store, 0-based and strictly increasing.
type ID uint64

// Amount is a value in integer base units of the ledger's currency.
// All fee arithmetic is exact integer arithmetic with floor division.
type Amount int64

// AccountID is an opaque ledger account identifier supplied by the host.
type AccountID string

// Auction is a single Dutch-auction record. All fields except FinalPrice and
// Stopped are immutable after creation; FinalPrice is written exactly once,
// by the settlement that flips Stopped to true.
type Auction struct {
	ID     ID        `json:"id"`
	Seller AccountID `json:"seller"`

	// Item is an opaque label describing what is being sold. The engine
	// does not interpret it.
	Item string `json:"item"`

	// StartingPrice is the price at StartAt. Creation guarantees
	// StartingPrice > DiscountRate * (EndAt - StartAt), so the decayed
	// price stays strictly positive through the whole window.
	StartingPrice Amount `json:"starting_price"`

	// DiscountRate is the price decrease per second.
	DiscountRate Amount `json:"discount_rate"`

	// StartAt and EndAt are unix timestamps in seconds, StartAt < EndAt.
	StartAt int64 `json:"start_at"`
	EndAt   int64 `json:"end_at"`

	// FinalPrice is zero until the auction settles.
	FinalPrice Amount `json:"final_price"`
	Stopped    bool   `json:"stopped"`
}

// Duration returns the auction window length in seconds.
func (a *Auction) Duration() int64 {
	return a.EndAt - a.StartAt
}
