package auction

import (
	"context"
	"time"
)

// Clock supplies the current time for pricing and expiry checks. It is read
// once per operation, so a single operation observes one consistent instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside of tests.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Entry is a single value movement within a settlement batch.
type Entry struct {
	From   AccountID `json:"from"`
	To     AccountID `json:"to"`
	Amount Amount    `json:"amount"`
}

// Ledger is the host value-transfer substrate. Settle applies all entries
// atomically: either every movement happens or none does. The engine relies
// on this to never leave a settlement partially applied. Entries with a zero
// amount are no-ops and must be tolerated.
type Ledger interface {
	Settle(ctx context.Context, entries []Entry) error
}

// Store owns the collection of auction records. Implementations must keep
// records append-only and make MarkSettled exclusive: no two settlement
// attempts on the same id may both succeed.
type Store interface {
	// Append assigns the next sequential id to the auction, stores it and
	// returns the id. It fails only on resource exhaustion.
	Append(ctx context.Context, a *Auction) (ID, error)

	// Get returns a copy of the auction, or ErrNotFound.
	Get(ctx context.Context, id ID) (*Auction, error)

	// List returns copies of all auctions in id order.
	List(ctx context.Context) ([]Auction, error)

	// MarkSettled sets the final price and flips the stopped flag. It
	// fails with ErrStopped if the auction already settled, ErrNotFound
	// if the id is unknown.
	MarkSettled(ctx context.Context, id ID, finalPrice Amount) error
}
