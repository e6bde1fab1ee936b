package jurisdiction

import "github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

// mapSet implements Set using a map for O(1) lookups.
type mapSet struct {
	entries map[string]model.TaxJurisdiction
}

func newMapSet(capacity int) *mapSet {
	return &mapSet{entries: make(map[string]model.TaxJurisdiction, capacity)}
}

func (s *mapSet) Lookup(code string) (model.TaxJurisdiction, bool) {
	j, ok := s.entries[normalizeCode(code)]
	return j, ok
}

func (s *mapSet) Size() int {
	return len(s.entries)
}

func (s *mapSet) All() []model.TaxJurisdiction {
	out := make([]model.TaxJurisdiction, 0, len(s.entries))
	for _, j := range s.entries {
		out = append(out, j)
	}
	return out
}

// Add inserts j, replacing any jurisdiction with the same code.
func (s *mapSet) Add(j model.TaxJurisdiction) {
	s.entries[normalizeCode(j.Code)] = j
}
