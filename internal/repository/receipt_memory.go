package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
)

// memoryReceiptStore keeps receipts in process. Receipts are cloned on the
// way in and out so callers never share slices with the store.
type memoryReceiptStore struct {
	mu       sync.RWMutex
	receipts map[string]map[string]*model.Receipt
}

// NewMemoryReceiptStore creates an empty in-memory receipt store.
func NewMemoryReceiptStore() ReceiptStore {
	return &memoryReceiptStore{receipts: make(map[string]map[string]*model.Receipt)}
}

func (s *memoryReceiptStore) Create(_ context.Context, r *model.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.receipts[r.Wallet][r.ReceiptID]; exists {
		return model.ErrReceiptExists
	}
	s.put(r.Clone())
	return nil
}

func (s *memoryReceiptStore) put(r *model.Receipt) {
	byID, ok := s.receipts[r.Wallet]
	if !ok {
		byID = make(map[string]*model.Receipt)
		s.receipts[r.Wallet] = byID
	}
	byID[r.ReceiptID] = r
}

func (s *memoryReceiptStore) Get(_ context.Context, wallet, receiptID string) (*model.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.receipts[wallet][receiptID]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

func (s *memoryReceiptStore) CompareAndSwap(_ context.Context, r *model.Receipt, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.receipts[r.Wallet][r.ReceiptID]
	if !ok || current.Version != expected {
		return model.ErrVersionConflict
	}
	next := r.Clone()
	next.Version = expected + 1
	s.put(next)
	r.Version = next.Version
	return nil
}

func (s *memoryReceiptStore) ListByWallet(_ context.Context, wallet string, limit int) ([]model.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Receipt, 0, len(s.receipts[wallet]))
	for _, r := range s.receipts[wallet] {
		out = append(out, *r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptID > out[j].ReceiptID })
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
