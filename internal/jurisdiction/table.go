package jurisdiction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/rs/zerolog"
)

// Table merges several table files. Files later in the list override codes
// from earlier ones, so a regional file can patch a national baseline.
type Table struct {
	paths  []string
	loader Loader
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]model.TaxJurisdiction
}

// NewTable loads every path concurrently and merges them in order.
func NewTable(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (*Table, error) {
	t := &Table{
		paths:  paths,
		loader: loader,
		logger: logger.With().Str("component", "jurisdiction-table").Logger(),
	}
	if err := t.Reload(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads every file. On failure the previous contents are kept.
func (t *Table) Reload(ctx context.Context) error {
	type loadResult struct {
		index int
		set   Set
		err   error
	}

	resultChan := make(chan loadResult, len(t.paths))
	var wg sync.WaitGroup

	for i, path := range t.paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			set, err := t.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, set: set, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(t.paths))
	for r := range resultChan {
		results[r.index] = r
	}

	merged := make(map[string]model.TaxJurisdiction)
	for i, r := range results {
		if r.err != nil {
			t.logger.Error().Err(r.err).Str("file", t.paths[i]).Msg("failed to load jurisdiction table")
			return fmt.Errorf("failed to load jurisdiction table %s: %w", t.paths[i], r.err)
		}
		for _, j := range r.set.All() {
			merged[normalizeCode(j.Code)] = j
		}
	}

	t.mu.Lock()
	t.entries = merged
	t.mu.Unlock()

	t.logger.Info().
		Int("files", len(t.paths)).
		Int("jurisdictions", len(merged)).
		Msg("jurisdiction table ready")

	return nil
}

// Lookup finds a jurisdiction by code, ignoring case.
func (t *Table) Lookup(code string) (model.TaxJurisdiction, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.entries[normalizeCode(code)]
	return j, ok
}

// Size returns the number of merged jurisdictions.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Run reloads the table every interval until ctx is done.
func (t *Table) Run(ctx context.Context, interval time.Duration) {
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
			if err := t.Reload(ctx); err != nil {
				t.logger.Warn().Err(err).Msg("jurisdiction reload failed, keeping previous table")
			}
		}
	}
}
