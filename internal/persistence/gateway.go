// Package persistence writes receipts through a ReceiptStore and falls back
// to an in-process queue when the store cannot be reached.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/receipt"
	"github.com/Ledger1-ai/portalpay-official-sub010/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Options bounds the retry policies.
type Options struct {
	// MaxRetries is the number of retries after the first store attempt.
	MaxRetries int
	// RetryInitial is the first backoff interval.
	RetryInitial time.Duration
	// CASRetries is the number of read-apply-swap attempts on version conflicts.
	CASRetries int
}

// SaveResult reports whether a receipt reached the store.
type SaveResult struct {
	Degraded bool
	Reason   string
}

// StatusResult is the outcome of a status transition.
type StatusResult struct {
	Outcome  receipt.Outcome
	Degraded bool
	// Previous is the status before the transition, empty when it was
	// queued without reading the store.
	Previous string
	// Receipt is the document after the transition, nil when degraded
	// before the store could be read.
	Receipt *model.Receipt
}

// FlushResult counts the work replayed by Flush.
type FlushResult struct {
	Receipts  int
	Updates   int
	Dropped   int
	Remaining int
}

// Gateway is the single path from the services to the receipt store.
type Gateway struct {
	store  repository.ReceiptStore
	queue  *Queue
	opts   Options
	now    func() time.Time
	logger zerolog.Logger
}

// NewGateway creates a gateway over store.
func NewGateway(store repository.ReceiptStore, opts Options, logger zerolog.Logger) *Gateway {
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 50 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.CASRetries < 1 {
		opts.CASRetries = 1
	}
	return &Gateway{
		store:  store,
		queue:  NewQueue(),
		opts:   opts,
		now:    time.Now,
		logger: logger.With().Str("component", "persistence").Logger(),
	}
}

func (g *Gateway) backoff(ctx context.Context, retries int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.opts.RetryInitial
	b.MaxInterval = 20 * g.opts.RetryInitial
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// retry runs op under the store retry policy. Errors marked permanent with
// backoff.Permanent stop immediately.
func (g *Gateway) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(op, g.backoff(ctx, g.opts.MaxRetries))
}

// Save creates r in the store, queueing it when the store keeps failing. It
// never returns an error: a degraded save is still a successful order.
func (g *Gateway) Save(ctx context.Context, r *model.Receipt) SaveResult {
	err := g.create(ctx, r)
	if err == nil || errors.Is(err, model.ErrReceiptExists) {
		// exists means an earlier attempt landed after reporting a failure
		return SaveResult{}
	}

	g.logger.Warn().Err(err).
		Str("receipt_id", r.ReceiptID).
		Str("wallet", r.Wallet).
		Msg("receipt store unavailable, queueing receipt")
	g.queue.PutReceipt(r)
	return SaveResult{Degraded: true, Reason: model.ReasonStoreUnavailable}
}

func (g *Gateway) create(ctx context.Context, r *model.Receipt) error {
	return g.retry(ctx, func() error {
		err := g.store.Create(ctx, r)
		if errors.Is(err, model.ErrReceiptExists) {
			return backoff.Permanent(err)
		}
		return err
	})
}

// Get returns the receipt, preferring a queued copy. It returns nil, nil
// when the receipt does not exist and model.ErrStoreUnavailable when the
// store cannot be read.
func (g *Gateway) Get(ctx context.Context, wallet, receiptID string) (*model.Receipt, error) {
	if r, ok := g.queue.Receipt(wallet, receiptID); ok {
		return r, nil
	}
	return g.load(ctx, wallet, receiptID)
}

func (g *Gateway) load(ctx context.Context, wallet, receiptID string) (*model.Receipt, error) {
	var r *model.Receipt
	err := g.retry(ctx, func() error {
		var err error
		r, err = g.store.Get(ctx, wallet, receiptID)
		return err
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("receipt_id", receiptID).Msg("failed to read receipt")
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return r, nil
}

// List returns up to limit receipts for wallet, newest first, with queued
// receipts merged in.
func (g *Gateway) List(ctx context.Context, wallet string, limit int) ([]model.Receipt, error) {
	var stored []model.Receipt
	err := g.retry(ctx, func() error {
		var err error
		stored, err = g.store.ListByWallet(ctx, wallet, limit)
		return err
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("wallet", wallet).Msg("failed to list receipts")
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	queued := g.queue.Receipts(wallet)
	if len(queued) == 0 {
		return stored, nil
	}

	seen := make(map[string]struct{}, len(queued))
	out := make([]model.Receipt, 0, len(stored)+len(queued))
	for _, r := range queued {
		seen[r.ReceiptID] = struct{}{}
		out = append(out, r)
	}
	for _, r := range stored {
		if _, dup := seen[r.ReceiptID]; !dup {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceiptID > out[j].ReceiptID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ApplyStatus runs apply against the current receipt and writes the result
// with compare-and-swap, re-reading on version conflicts. A receipt still in
// the queue is transitioned there. When the store is unavailable the
// transition is queued and the result is degraded.
func (g *Gateway) ApplyStatus(ctx context.Context, wallet, receiptID string, apply ApplyFunc) (StatusResult, error) {
	if next, outcome, ok := g.queue.ApplyToReceipt(wallet, receiptID, apply); ok {
		return StatusResult{
			Outcome:  outcome,
			Degraded: outcome == receipt.Applied,
			Receipt:  next,
		}, nil
	}

	res, err := g.applyStored(ctx, wallet, receiptID, apply)
	if errors.Is(err, model.ErrStoreUnavailable) {
		g.queue.AddUpdate(wallet, pendingUpdate{ReceiptID: receiptID, Apply: apply, QueuedAt: g.now()})
		g.logger.Warn().Err(err).
			Str("receipt_id", receiptID).
			Str("wallet", wallet).
			Msg("receipt store unavailable, queueing status update")
		return StatusResult{Outcome: receipt.Applied, Degraded: true}, nil
	}
	return res, err
}

func (g *Gateway) applyStored(ctx context.Context, wallet, receiptID string, apply ApplyFunc) (StatusResult, error) {
	var res StatusResult
	attempt := func() error {
		current, err := g.load(ctx, wallet, receiptID)
		if err != nil {
			return backoff.Permanent(err)
		}
		if current == nil {
			return backoff.Permanent(model.ErrReceiptNotFound)
		}

		next, outcome := apply(current)
		res = StatusResult{Outcome: outcome, Previous: current.Status, Receipt: next}
		if outcome != receipt.Applied {
			return nil
		}

		err = g.store.CompareAndSwap(ctx, next, current.Version)
		if errors.Is(err, model.ErrVersionConflict) {
			g.logger.Debug().Str("receipt_id", receiptID).Int64("version", current.Version).Msg("retrying status update after conflict")
			return err
		}
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err))
		}
		return nil
	}

	if err := backoff.Retry(attempt, g.backoff(ctx, g.opts.CASRetries-1)); err != nil {
		return StatusResult{}, err
	}
	return res, nil
}

// Flush replays queued receipts and then queued status updates, wallet by
// wallet. A queued receipt is written with a create so it can never replace
// a stored copy; it stays queued, and keeps taking status updates, until the
// create and every transition applied to it have reached the store. Work
// that still fails stays queued for the next flush.
func (g *Gateway) Flush(ctx context.Context) FlushResult {
	var out FlushResult
	for _, wallet := range g.queue.Wallets() {
		if ctx.Err() != nil {
			break
		}

		blocked := false
		for _, id := range g.queue.receiptIDs(wallet) {
			if ctx.Err() != nil || !g.flushReceipt(ctx, wallet, id, &out) {
				blocked = true
				break
			}
		}

		updates := g.queue.takeUpdates(wallet)
		var failedUpdates []pendingUpdate
		for i, u := range updates {
			// A store that just refused a receipt will refuse the updates too.
			if blocked || ctx.Err() != nil {
				failedUpdates = updates[i:]
				break
			}
			if !g.replay(ctx, wallet, u.ReceiptID, u.Apply, &out) {
				failedUpdates = updates[i:]
				break
			}
		}
		g.queue.requeueUpdates(wallet, failedUpdates)
	}

	out.Remaining = g.queue.Len()
	if out.Receipts+out.Updates+out.Dropped > 0 {
		g.logger.Info().
			Int("receipts", out.Receipts).
			Int("updates", out.Updates).
			Int("dropped", out.Dropped).
			Int("remaining", out.Remaining).
			Msg("flushed degraded queue")
	}
	return out
}

// flushReceipt moves one queued receipt into the store. It reports false when
// the store failed and the receipt is still queued.
func (g *Gateway) flushReceipt(ctx context.Context, wallet, receiptID string, out *FlushResult) bool {
	doc, applied, baseHistory, stored, ok := g.queue.snapshot(wallet, receiptID)
	if !ok {
		return true
	}

	if !stored {
		err := g.create(ctx, doc)
		switch {
		case err == nil:
			g.queue.markStored(wallet, receiptID, applied)
		case errors.Is(err, model.ErrReceiptExists):
			// An earlier write landed despite failing. Each applied transition
			// added one history entry, so the stored history tells how many of
			// them it already carries.
			current, err := g.load(ctx, wallet, receiptID)
			if err != nil || current == nil {
				return false
			}
			g.logger.Info().Str("receipt_id", receiptID).Msg("queued receipt already stored, keeping stored copy")
			g.queue.markStored(wallet, receiptID, len(current.StatusHistory)-baseHistory)
		default:
			return false
		}
		out.Receipts++
	}

	for {
		fns, done := g.queue.unsynced(wallet, receiptID)
		if done {
			return true
		}
		for _, fn := range fns {
			if !g.replay(ctx, wallet, receiptID, fn, out) {
				return false
			}
			g.queue.advance(wallet, receiptID, 1)
		}
	}
}

// replay applies one queued transition against the store. Transitions for
// unknown receipts or that keep conflicting are dropped. It reports false
// when the store is unavailable.
func (g *Gateway) replay(ctx context.Context, wallet, receiptID string, apply ApplyFunc, out *FlushResult) bool {
	_, err := g.applyStored(ctx, wallet, receiptID, apply)
	switch {
	case err == nil:
		out.Updates++
	case errors.Is(err, model.ErrReceiptNotFound), errors.Is(err, model.ErrVersionConflict):
		g.logger.Warn().Err(err).Str("receipt_id", receiptID).Msg("dropping queued status update")
		out.Dropped++
	default:
		return false
	}
	return true
}

// QueueDepth counts queued receipts and status updates.
func (g *Gateway) QueueDepth() int {
	return g.queue.Len()
}

// Run flushes the degraded queue every interval until ctx is done.
func (g *Gateway) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if g.queue.Len() > 0 {
				g.Flush(ctx)
			}
		}
	}
}
