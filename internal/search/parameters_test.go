package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordingQuery captures the pipeline calls so tests can assert on what
// Apply did without executing anything.
type recordingQuery struct {
	wheres []Condition
	orders []OrderKey
	skip   int
	take   int
	paged  bool
}

func (q recordingQuery) Where(cond Condition) Queryable {
	q.wheres = append(append([]Condition{}, q.wheres...), cond)
	return q
}

func (q recordingQuery) Order(keys []OrderKey) Queryable {
	q.orders = keys
	return q
}

func (q recordingQuery) Skip(n int) Queryable {
	q.skip = n
	q.paged = true
	return q
}

func (q recordingQuery) Take(n int) Queryable {
	q.take = n
	q.paged = true
	return q
}

func TestMergeConcatenatesAndPrefersLeftPaging(t *testing.T) {
	left := &SearchParameters{
		Paging:  &Paging{Skip: 10, Take: 5},
		Filters: []Filter{NewFilter(Equals, "a", "name")},
	}
	right := &SearchParameters{
		Paging:   &Paging{Skip: 0, Take: 100},
		Filters:  []Filter{NewFilter(Contains, "b", "description")},
		Sortings: []Sorting{{PropertyName: "name"}},
	}

	merged := left.Merge(right)
	want := &SearchParameters{
		Paging: &Paging{Skip: 10, Take: 5},
		Filters: []Filter{
			NewFilter(Equals, "a", "name"),
			NewFilter(Contains, "b", "description"),
		},
		Sortings: []Sorting{{PropertyName: "name"}},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged parameters mismatch (-want +got):\n%s", diff)
	}

	// mutating the result must not reach back into the inputs
	merged.Filters[0].Value = "changed"
	if left.Filters[0].Value != "a" {
		t.Fatal("Merge must copy filter slices")
	}
}

func TestMergeNilOperands(t *testing.T) {
	sp := &SearchParameters{Filters: []Filter{NewFilter(Equals, "a", "name")}}
	var none *SearchParameters
	if got := none.Merge(sp); got != sp {
		t.Fatal("nil receiver must yield the other operand")
	}
	if got := sp.Merge(nil); got != sp {
		t.Fatal("nil argument must yield the receiver")
	}
}

func TestApplyPipeline(t *testing.T) {
	entity := orderEntity()
	mapper := orderMapper(entity)
	paging := Paging{Skip: 20, Take: 10}
	sp := &SearchParameters{
		Paging: &paging,
		Filters: []Filter{
			NewFilter(Equals, "open", "status"),
			NewFilter(Contains, "x", "no_such_field"), // contributes nothing
			NewFilter(GreaterThan, "100", "total"),
		},
		Sortings: []Sorting{
			{PropertyName: "total", Direction: Descending},
			{PropertyName: "TOTAL"}, // duplicate of the first, dropped
			{PropertyName: "reference"},
		},
	}

	countAny, pagedAny := sp.Apply(recordingQuery{}, entity, mapper, nil)
	count := countAny.(recordingQuery)
	paged := pagedAny.(recordingQuery)

	if len(count.wheres) != 2 {
		t.Fatalf("expected 2 conjuncts (no-op filter elided), got %d", len(count.wheres))
	}
	if len(count.orders) != 2 {
		t.Fatalf("expected deduplicated order keys, got %d", len(count.orders))
	}
	if count.orders[0].Path != "Total" || !count.orders[0].Descending {
		t.Fatalf("unexpected primary order key: %+v", count.orders[0])
	}
	if count.orders[1].Path != "Reference" || count.orders[1].Descending {
		t.Fatalf("unexpected tie-break key: %+v", count.orders[1])
	}

	if count.paged {
		t.Fatal("count derivative must not be paged")
	}
	if !paged.paged || paged.skip != 20 || paged.take != 10 {
		t.Fatalf("paged derivative got skip=%d take=%d paged=%v", paged.skip, paged.take, paged.paged)
	}
	if len(paged.wheres) != len(count.wheres) {
		t.Fatal("both derivatives must share the same conjuncts")
	}
}

func TestApplyWithoutPagingSharesDerivatives(t *testing.T) {
	entity := orderEntity()
	sp := &SearchParameters{Filters: []Filter{NewFilter(Equals, "a", "status")}}

	countAny, pagedAny := sp.Apply(recordingQuery{}, entity, orderMapper(entity), nil)
	if pagedAny.(recordingQuery).paged {
		t.Fatal("no paging requested, none must be applied")
	}
	if len(countAny.(recordingQuery).wheres) != 1 {
		t.Fatal("filter must reach the count derivative")
	}
}

func TestApplyRestrictedSortLeavesOrderUntouched(t *testing.T) {
	entity := orderEntity()
	restrictions := NewFieldRestrictions().BlockSorting("total")
	sp := &SearchParameters{Sortings: []Sorting{{PropertyName: "total"}}}

	countAny, _ := sp.Apply(recordingQuery{}, entity, orderMapper(entity), restrictions)
	if countAny.(recordingQuery).orders != nil {
		t.Fatal("all-blocked sortings must not call Order at all")
	}
}
