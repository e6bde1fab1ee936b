// Package jurisdiction loads shared tax rate tables. A table file is gzipped
// JSON lines, one jurisdiction per line:
//
//	{"code":"US-CA","name":"California","rate":"0.0725","components":[{"code":"state","rate":"0.06"}]}
package jurisdiction

import (
	"context"
	"strings"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"
)

// Set is a loaded table of jurisdictions keyed by code.
type Set interface {
	// Lookup finds a jurisdiction by code, ignoring case.
	Lookup(code string) (model.TaxJurisdiction, bool)

	// Size returns the number of jurisdictions in the set.
	Size() int

	// All returns every jurisdiction in the set.
	All() []model.TaxJurisdiction
}

// Loader defines the interface for loading jurisdiction table files.
type Loader interface {
	// Load reads a gzipped table file and returns its Set.
	Load(ctx context.Context, path string) (Set, error)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
