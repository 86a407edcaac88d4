package search

import (
	"strings"

	"searchq/internal/schema"
)

// Queryable is the opaque filterable/orderable sequence the engine operates
// on. memquery and sqlquery provide the two implementations; counting and
// enumeration live on the concrete types since only they can execute.
type Queryable interface {
	Where(cond Condition) Queryable
	Order(keys []OrderKey) Queryable
	Skip(n int) Queryable
	Take(n int) Queryable
}

// SearchParameters is the per-request aggregate of filters, sortings and
// optional paging.
type SearchParameters struct {
	Paging   *Paging
	Filters  []Filter
	Sortings []Sorting
}

// Merge combines two parameter sets: the left paging wins when present,
// filters and sortings concatenate left-then-right. Neither input is
// modified.
func (sp *SearchParameters) Merge(other *SearchParameters) *SearchParameters {
	if sp == nil {
		return other
	}
	if other == nil {
		return sp
	}
	merged := &SearchParameters{
		Filters:  append(append([]Filter{}, sp.Filters...), other.Filters...),
		Sortings: append(append([]Sorting{}, sp.Sortings...), other.Sortings...),
	}
	switch {
	case sp.Paging != nil:
		p := *sp.Paging
		merged.Paging = &p
	case other.Paging != nil:
		p := *other.Paging
		merged.Paging = &p
	}
	return merged
}

// Apply runs the fixed compilation pipeline and returns the two query
// derivatives: countQuery is the filtered and sorted query before paging,
// pagedQuery additionally applies skip/take. Nothing is materialized here.
func (sp *SearchParameters) Apply(q Queryable, entity *schema.Entity, resolver FieldResolver, restrictions *FieldRestrictions) (countQuery, pagedQuery Queryable) {
	// 1. Filters: AND in declaration order, no-op filters elided.
	for _, f := range sp.Filters {
		if cond := f.Compile(entity, resolver, restrictions); cond != nil {
			q = q.Where(cond)
		}
	}

	// 2. Sortings: dedup by raw property name (first wins), compile, then
	// apply the survivors as primary order plus tie-breakers. All-skip
	// leaves the pre-existing order untouched.
	seen := map[string]bool{}
	var keys []OrderKey
	for _, s := range sp.Sortings {
		rawKey := strings.ToLower(strings.TrimSpace(s.PropertyName))
		if seen[rawKey] {
			continue
		}
		seen[rawKey] = true
		if key, ok := s.Compile(entity, resolver, restrictions); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		q = q.Order(keys)
	}

	// 3-4. Snapshot before paging, then page.
	countQuery = q
	pagedQuery = q
	if sp.Paging != nil {
		pagedQuery = q.Skip(sp.Paging.Skip).Take(sp.Paging.Take)
	}
	return countQuery, pagedQuery
}
