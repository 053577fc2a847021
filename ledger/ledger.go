package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shkulipa/auction-contract/auction"
)

var (
	// ErrInsufficientBalance rejects a batch that would overdraw an account.
	ErrInsufficientBalance = errors.New("insufficient account balance")

	// ErrNegativeAmount rejects entries and deposits with negative amounts.
	ErrNegativeAmount = errors.New("negative amount")
)

// Transaction is an applied settlement batch.
type Transaction struct {
	ID        string          `json:"id"`
	AppliedAt time.Time       `json:"applied_at"`
	Entries   []auction.Entry `json:"entries"`
}

// Ledger holds account balances and an append-only transaction log.
type Ledger struct {
	mu       sync.RWMutex
	balances map[auction.AccountID]auction.Amount
	log      []Transaction
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances: make(map[auction.AccountID]auction.Amount),
	}
}

// Deposit credits an account. Accounts exist implicitly from their first
// credit.
func (l *Ledger) Deposit(account auction.AccountID, amount auction.Amount) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	return nil
}

// Balance returns the account's current balance. Unknown accounts have a
// zero balance.
func (l *Ledger) Balance(account auction.AccountID) auction.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// Settle applies all entries atomically, in order. Zero-amount entries are
// no-ops. If any debit would overdraw its account the whole batch is
// rejected and no balance changes.
func (l *Ledger) Settle(_ context.Context, entries []auction.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Dry run against the running balances of the touched accounts. The
	// batch is order-sensitive: an account may legitimately be debited
	// funds it receives earlier in the same batch.
	scratch := make(map[auction.AccountID]auction.Amount, len(entries))
	running := func(acc auction.AccountID) auction.Amount {
		if v, ok := scratch[acc]; ok {
			return v
		}
		return l.balances[acc]
	}
	for _, e := range entries {
		if e.Amount < 0 {
			return fmt.Errorf("%w: %d from %s", ErrNegativeAmount, e.Amount, e.From)
		}
		if e.Amount == 0 {
			continue
		}
		from := running(e.From)
		if from < e.Amount {
			return fmt.Errorf("%w: account %s has %d, needs %d", ErrInsufficientBalance, e.From, from, e.Amount)
		}
		scratch[e.From] = from - e.Amount
		scratch[e.To] = running(e.To) + e.Amount
	}

	for acc, balance := range scratch {
		l.balances[acc] = balance
	}

	applied := make([]auction.Entry, len(entries))
	copy(applied, entries)
	l.log = append(l.log, Transaction{
		ID:        uuid.NewString(),
		AppliedAt: time.Now().UTC(),
		Entries:   applied,
	})
	return nil
}

// Transactions returns the applied settlement batches in order.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}
