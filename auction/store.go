package auction

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process slice. The slice index is
// the auction id, which makes ids 0-based and sequential by construction.
type MemoryStore struct {
	mu       sync.RWMutex
	auctions []Auction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores the auction under the next sequential id.
func (s *MemoryStore) Append(_ context.Context, a *Auction) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(len(s.auctions))
	rec := *a
	rec.ID = id
	s.auctions = append(s.auctions, rec)
	return id, nil
}

// Get returns a copy of the auction with the given id.
func (s *MemoryStore) Get(_ context.Context, id ID) (*Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if int(id) >= len(s.auctions) {
		return nil, ErrNotFound
	}
	rec := s.auctions[id]
	return &rec, nil
}

// List returns copies of all auctions in id order.
func (s *MemoryStore) List(_ context.Context) ([]Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Auction, len(s.auctions))
	copy(out, s.auctions)
	return out, nil
}

// MarkSettled records the final price and stops the auction. This is the
// single mutation point for settlement; the check and the write happen under
// one lock so two settlements of the same id can never both succeed.
func (s *MemoryStore) MarkSettled(_ context.Context, id ID, finalPrice Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(id) >= len(s.auctions) {
		return ErrNotFound
	}
	if s.auctions[id].Stopped {
		return ErrStopped
	}
	s.auctions[id].FinalPrice = finalPrice
	s.auctions[id].Stopped = true
	return nil
}
