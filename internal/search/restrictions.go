package search

import "strings"

// FieldRestrictions is a pure allow/block evaluator for filter and sort
// field names, checked against the raw incoming names before resolution.
// A field is permitted iff it is not blocked and either no allow-set is
// configured or the field is in it; block always wins. A nil receiver
// permits everything.
//
// Because the check runs before name resolution, entries match one
// external spelling each: a field reachable under a declared alias or a
// policy-derived name must have every such spelling blocked, or be kept
// out via an allow-set.
type FieldRestrictions struct {
	filterAllow map[string]bool
	filterBlock map[string]bool
	sortAllow   map[string]bool
	sortBlock   map[string]bool
}

func NewFieldRestrictions() *FieldRestrictions {
	return &FieldRestrictions{}
}

func (r *FieldRestrictions) AllowFiltering(names ...string) *FieldRestrictions {
	r.filterAllow = addAll(r.filterAllow, names)
	return r
}

func (r *FieldRestrictions) BlockFiltering(names ...string) *FieldRestrictions {
	r.filterBlock = addAll(r.filterBlock, names)
	return r
}

func (r *FieldRestrictions) AllowSorting(names ...string) *FieldRestrictions {
	r.sortAllow = addAll(r.sortAllow, names)
	return r
}

func (r *FieldRestrictions) BlockSorting(names ...string) *FieldRestrictions {
	r.sortBlock = addAll(r.sortBlock, names)
	return r
}

func (r *FieldRestrictions) CanFilter(name string) bool {
	if r == nil {
		return true
	}
	return permitted(r.filterAllow, r.filterBlock, name)
}

func (r *FieldRestrictions) CanSort(name string) bool {
	if r == nil {
		return true
	}
	return permitted(r.sortAllow, r.sortBlock, name)
}

func permitted(allow, block map[string]bool, name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	if block[key] {
		return false
	}
	if len(allow) == 0 {
		return true
	}
	return allow[key]
}

func addAll(set map[string]bool, names []string) map[string]bool {
	if set == nil {
		set = map[string]bool{}
	}
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return set
}
