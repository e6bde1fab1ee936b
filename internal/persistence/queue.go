package persistence

import (
	"sort"
	"sync"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
)

// ApplyFunc transitions a receipt. It must return a new document and leave
// its argument untouched.
type ApplyFunc func(current *model.Receipt) (*model.Receipt, receipt.Outcome)

// pendingUpdate is a status transition that could not reach the store.
type pendingUpdate struct {
	ReceiptID string
	Apply     ApplyFunc
	QueuedAt  time.Time
}

// queuedReceipt is a receipt whose create has not been confirmed, together
// with the transitions applied to it while queued. It stays queued, and keeps
// taking transitions, until the create and every transition are in the store.
type queuedReceipt struct {
	doc *model.Receipt
	// baseHistory is len(doc.StatusHistory) when the receipt was queued.
	baseHistory int
	applied     []ApplyFunc
	stored      bool
	// synced counts the leading applied transitions already in the store.
	synced int
}

type partition struct {
	receipts map[string]*queuedReceipt
	updates  []pendingUpdate
}

// Queue holds receipts and status transitions written while the store was
// unavailable. It is partitioned by merchant wallet.
type Queue struct {
	mu         sync.Mutex
	partitions map[string]*partition
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{partitions: make(map[string]*partition)}
}

func (q *Queue) partition(wallet string) *partition {
	p, ok := q.partitions[wallet]
	if !ok {
		p = &partition{receipts: make(map[string]*queuedReceipt)}
		q.partitions[wallet] = p
	}
	return p
}

func (q *Queue) entry(wallet, receiptID string) (*queuedReceipt, bool) {
	p, ok := q.partitions[wallet]
	if !ok {
		return nil, false
	}
	e, ok := p.receipts[receiptID]
	return e, ok
}

// prune drops the wallet's partition once it holds nothing.
func (q *Queue) prune(wallet string) {
	if p, ok := q.partitions[wallet]; ok && len(p.receipts) == 0 && len(p.updates) == 0 {
		delete(q.partitions, wallet)
	}
}

// PutReceipt queues a copy of r, replacing any queued copy.
func (q *Queue) PutReceipt(r *model.Receipt) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.partition(r.Wallet).receipts[r.ReceiptID] = &queuedReceipt{
		doc:         r.Clone(),
		baseHistory: len(r.StatusHistory),
	}
}

// Receipt returns a copy of the queued receipt.
func (q *Queue) Receipt(wallet, receiptID string) (*model.Receipt, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entry(wallet, receiptID)
	if !ok {
		return nil, false
	}
	return e.doc.Clone(), true
}

// Receipts returns copies of every queued receipt for wallet, newest first.
func (q *Queue) Receipts(wallet string) []model.Receipt {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.partitions[wallet]
	if !ok {
		return nil
	}
	out := make([]model.Receipt, 0, len(p.receipts))
	for _, e := range p.receipts {
		out = append(out, *e.doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptID > out[j].ReceiptID })
	return out
}

// ApplyToReceipt transitions a queued receipt in place. ok is false when the
// receipt is not queued.
func (q *Queue) ApplyToReceipt(wallet, receiptID string, apply ApplyFunc) (next *model.Receipt, outcome receipt.Outcome, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, found := q.entry(wallet, receiptID)
	if !found {
		return nil, "", false
	}
	next, outcome = apply(e.doc)
	next = next.Clone()
	if outcome == receipt.Applied {
		e.doc = next.Clone()
		e.applied = append(e.applied, apply)
	}
	return next, outcome, true
}

// AddUpdate queues a transition for a receipt that lives in the store.
func (q *Queue) AddUpdate(wallet string, u pendingUpdate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.partition(wallet)
	p.updates = append(p.updates, u)
}

// Wallets lists the partitions with queued work.
func (q *Queue) Wallets() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.partitions))
	for w := range q.partitions {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// receiptIDs lists the receipts queued for wallet, oldest first.
func (q *Queue) receiptIDs(wallet string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.partitions[wallet]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(p.receipts))
	for id := range p.receipts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// snapshot returns a copy of a queued receipt that has not been stored yet,
// the number of applied transitions that copy reflects, and the history
// length it was queued with.
func (q *Queue) snapshot(wallet, receiptID string) (doc *model.Receipt, applied, baseHistory int, stored, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, found := q.entry(wallet, receiptID)
	if !found {
		return nil, 0, 0, false, false
	}
	return e.doc.Clone(), len(e.applied), e.baseHistory, e.stored, true
}

// markStored records that the receipt exists in the store with its first
// synced applied transitions.
func (q *Queue) markStored(wallet, receiptID string, synced int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entry(wallet, receiptID)
	if !ok {
		return
	}
	e.stored = true
	e.synced = max(0, min(synced, len(e.applied)))
}

// unsynced returns the applied transitions not yet in the store. When there
// are none the receipt leaves the queue and done is true; later transitions
// go straight to the store.
func (q *Queue) unsynced(wallet, receiptID string) (fns []ApplyFunc, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entry(wallet, receiptID)
	if !ok {
		return nil, true
	}
	if e.synced >= len(e.applied) {
		delete(q.partitions[wallet].receipts, receiptID)
		q.prune(wallet)
		return nil, true
	}
	return append([]ApplyFunc(nil), e.applied[e.synced:]...), false
}

// advance marks the next n applied transitions as synced.
func (q *Queue) advance(wallet, receiptID string, n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entry(wallet, receiptID); ok {
		e.synced = min(e.synced+n, len(e.applied))
	}
}

// takeUpdates removes and returns the store-bound updates queued for wallet.
func (q *Queue) takeUpdates(wallet string) []pendingUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.partitions[wallet]
	if !ok {
		return nil
	}
	updates := p.updates
	p.updates = nil
	q.prune(wallet)
	return updates
}

// requeueUpdates puts back updates that failed to flush ahead of any queued
// meanwhile.
func (q *Queue) requeueUpdates(wallet string, updates []pendingUpdate) {
	if len(updates) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.partition(wallet)
	p.updates = append(append([]pendingUpdate(nil), updates...), p.updates...)
}

// Len counts queued receipts and updates across all partitions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, p := range q.partitions {
		n += len(p.receipts) + len(p.updates)
	}
	return n
}
