// Package memquery evaluates the search condition AST directly over
// in-memory record sequences. It is the reference interpreter: what it
// returns is what the SQL lowering must also return.
package memquery

import (
	"sort"

	"searchq/internal/search"
)

// Record is one in-memory row: canonical field names to values, with
// nested records under relation names.
type Record = map[string]any

// Sequence implements search.Queryable over a record slice. Operations
// return derived sequences and never modify the input.
type Sequence struct {
	records []Record
}

func New(records []Record) *Sequence {
	return &Sequence{records: records}
}

func (s *Sequence) Where(cond search.Condition) search.Queryable {
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if evalCondition(cond, rec) {
			out = append(out, rec)
		}
	}
	return &Sequence{records: out}
}

func (s *Sequence) Order(keys []search.OrderKey) search.Queryable {
	if len(keys) == 0 {
		return s
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range keys {
			if c := compareByKey(out[i], out[j], key); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return &Sequence{records: out}
}

func (s *Sequence) Skip(n int) search.Queryable {
	if n <= 0 {
		return s
	}
	if n >= len(s.records) {
		return &Sequence{}
	}
	return &Sequence{records: s.records[n:]}
}

func (s *Sequence) Take(n int) search.Queryable {
	if n < 0 {
		n = 0
	}
	if n >= len(s.records) {
		return s
	}
	return &Sequence{records: s.records[:n]}
}

// Count materializes the element count.
func (s *Sequence) Count() int { return len(s.records) }

// All enumerates the records in order.
func (s *Sequence) All() []Record { return s.records }
