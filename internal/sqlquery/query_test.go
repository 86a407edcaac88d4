package sqlquery

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/google/go-cmp/cmp"

	"searchq/internal/schema"
	"searchq/internal/search"
)

func ticketEntity() *schema.Entity {
	project := &schema.Entity{
		Name:  "project",
		Table: "projects",
		Fields: []*schema.FieldDef{
			{Name: "Name", Column: "name", Type: schema.TypeString},
		},
	}
	ticket := &schema.Entity{
		Name:  "ticket",
		Table: "tickets",
		Fields: []*schema.FieldDef{
			{Name: "Title", Column: "title", Type: schema.TypeString},
			{Name: "Priority", Column: "priority", Type: schema.TypeInt},
			{Name: "Done", Column: "done", Type: schema.TypeBool},
			{Name: "CreatedAt", Column: "created_at", Type: schema.TypeTime},
			{Name: "ExternalID", Column: "external_id", Type: schema.TypeUUID},
		},
		Relations: map[string]*schema.Relation{
			"project": {Entity: "project", FK: "project_id"},
		},
	}
	ticket.Relations["project"].SetRef(project)
	return ticket
}

func leaf(e *schema.Entity, path string, op search.Operator, value string, caseSensitive bool) search.Leaf {
	f := e.Lookup(path)
	if f == nil {
		panic("unknown path " + path)
	}
	return search.Leaf{Path: path, Field: f, Operator: op, Value: value, CaseSensitive: caseSensitive}
}

func mustSelect(t *testing.T, q search.Queryable) (string, []any) {
	t.Helper()
	sql, args, err := q.(*Query).SelectSQL()
	if err != nil {
		t.Fatal(err)
	}
	return sql, args
}

func mustCount(t *testing.T, q search.Queryable) (string, []any) {
	t.Helper()
	sql, args, err := q.(*Query).CountSQL()
	if err != nil {
		t.Fatal(err)
	}
	return sql, args
}

func TestSelectSQLBasic(t *testing.T) {
	sql, args := mustSelect(t, For(ticketEntity()))
	if sql != "SELECT main.* FROM tickets AS main" {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}
}

func TestEqualsLowersToCaseInsensitiveCompare(t *testing.T) {
	e := ticketEntity()
	sql, args := mustSelect(t, For(e).Where(leaf(e, "Title", search.Equals, "Crash", false)))
	if !strings.Contains(sql, "LOWER(main.title) = LOWER($1)") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{"Crash"}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestEqualsCaseSensitive(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Title", search.Equals, "Crash", true)))
	if !strings.Contains(sql, "main.title = $1") || strings.Contains(sql, "LOWER") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestNotEqualsLowersToInequality(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Title", search.NotEquals, "Crash", false)))
	if !strings.Contains(sql, "LOWER(main.title) <> LOWER($1)") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestTypedEqualityBindsTypedArgs(t *testing.T) {
	e := ticketEntity()
	sql, args := mustSelect(t, For(e).Where(leaf(e, "Priority", search.Equals, "3", false)))
	if !strings.Contains(sql, "main.priority = $1") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{int64(3)}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestUnparsableTypedValueLowersToFalse(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Done", search.Equals, "maybe", false)))
	if !strings.Contains(sql, "1=0") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestUnparsableTimeValueLowersToFalse(t *testing.T) {
	e := ticketEntity()

	// garbage must never reach a bind parameter on a time column
	for _, op := range []search.Operator{search.Equals, search.GreaterThan, search.LessThanOrEquals} {
		sql, args := mustSelect(t, For(e).Where(leaf(e, "CreatedAt", op, "lots", false)))
		if !strings.Contains(sql, "1=0") {
			t.Errorf("%v: sql = %q", op, sql)
		}
		if len(args) != 0 {
			t.Errorf("%v: args = %v", op, args)
		}
	}

	sql, args := mustSelect(t, For(e).Where(leaf(e, "CreatedAt", search.GreaterThan, "2024-01-02", false)))
	if !strings.Contains(sql, "main.created_at > $1") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{"2024-01-02"}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestUnparsableUUIDValueLowersToFalse(t *testing.T) {
	e := ticketEntity()

	sql, args := mustSelect(t, For(e).Where(leaf(e, "ExternalID", search.Equals, "not-a-uuid", false)))
	if !strings.Contains(sql, "1=0") {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}

	id := "7bfa0e54-5a30-4b8f-9d2e-2b7a54f0c8aa"
	sql, args = mustSelect(t, For(e).Where(leaf(e, "ExternalID", search.Equals, id, false)))
	if !strings.Contains(sql, "main.external_id = $1") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{id}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestNeverLowersToConstantFalse(t *testing.T) {
	sql, _ := mustSelect(t, For(ticketEntity()).Where(search.Never{}))
	if !strings.Contains(sql, "WHERE 1=0") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestContainsUsesILike(t *testing.T) {
	e := ticketEntity()
	sql, args := mustSelect(t, For(e).Where(leaf(e, "Title", search.Contains, "lap", false)))
	if !strings.Contains(sql, "main.title ILIKE $1") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{"%lap%"}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestContainsCaseSensitiveUsesLike(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Title", search.Contains, "lap", true)))
	if !strings.Contains(sql, "main.title LIKE $1") || strings.Contains(sql, "ILIKE") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestContainsEscapesLikeMetacharacters(t *testing.T) {
	e := ticketEntity()
	_, args := mustSelect(t, For(e).Where(leaf(e, "Title", search.Contains, `50%_off\`, false)))
	want := []any{`%50\%\_off\\%`}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestContainsOnNonStringCastsToText(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Priority", search.Contains, "3", false)))
	if !strings.Contains(sql, "CAST(main.priority AS TEXT) ILIKE $1") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestNotContainsWrapsInNot(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Title", search.NotContains, "lap", false)))
	if !strings.Contains(sql, "NOT (main.title ILIKE $1)") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestOrderedComparisons(t *testing.T) {
	e := ticketEntity()
	cases := []struct {
		op   search.Operator
		frag string
	}{
		{search.GreaterThan, "main.priority > $1"},
		{search.GreaterThanOrEquals, "main.priority >= $1"},
		{search.LessThan, "main.priority < $1"},
		{search.LessThanOrEquals, "main.priority <= $1"},
	}
	for _, c := range cases {
		sql, _ := mustSelect(t, For(e).Where(leaf(e, "Priority", c.op, "2", false)))
		if !strings.Contains(sql, c.frag) {
			t.Errorf("%v: sql = %q", c.op, sql)
		}
	}
}

func TestNullOperators(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Where(leaf(e, "Title", search.IsNull, "", false)))
	if !strings.Contains(sql, "main.title IS NULL") {
		t.Fatalf("sql = %q", sql)
	}
	sql, _ = mustSelect(t, For(e).Where(leaf(e, "Title", search.IsNotNull, "", false)))
	if !strings.Contains(sql, "main.title IS NOT NULL") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestOrAcrossFields(t *testing.T) {
	e := ticketEntity()
	cond := search.Or{Conditions: []search.Condition{
		leaf(e, "Title", search.Contains, "x", false),
		leaf(e, "project.Name", search.Contains, "x", false),
	}}
	sql, _ := mustSelect(t, For(e).Where(cond))
	if !strings.Contains(sql, "(main.title ILIKE $1 OR t1.name ILIKE $2)") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestAndAcrossWheres(t *testing.T) {
	e := ticketEntity()
	q := For(e).
		Where(leaf(e, "Title", search.Contains, "x", false)).
		Where(leaf(e, "Priority", search.GreaterThan, "2", false))
	sql, _ := mustSelect(t, q)
	if !strings.Contains(sql, "main.title ILIKE $1 AND main.priority > $2") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestRelationPathAddsLeftJoin(t *testing.T) {
	e := ticketEntity()
	q := For(e).Where(leaf(e, "project.Name", search.Equals, "infra", false))
	sql, _ := mustSelect(t, q)
	if !strings.Contains(sql, "LEFT JOIN projects AS t1 ON t1.id = main.project_id") {
		t.Fatalf("sql = %q", sql)
	}
	if !strings.Contains(sql, "LOWER(t1.name) = LOWER($1)") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestJoinRegisteredOncePerPrefix(t *testing.T) {
	e := ticketEntity()
	q := For(e).
		Where(leaf(e, "project.Name", search.Contains, "a", false)).
		Order([]search.OrderKey{{Path: "project.Name", Field: e.Lookup("project.Name")}})
	sql, _ := mustSelect(t, q)
	if strings.Count(sql, "LEFT JOIN") != 1 {
		t.Fatalf("sql = %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY t1.name") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestOrderByWithDirections(t *testing.T) {
	e := ticketEntity()
	q := For(e).Order([]search.OrderKey{
		{Path: "Priority", Field: e.Lookup("Priority"), Descending: true},
		{Path: "CreatedAt", Field: e.Lookup("CreatedAt")},
	})
	sql, _ := mustSelect(t, q)
	if !strings.Contains(sql, "ORDER BY main.priority DESC, main.created_at") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestSkipTakeLowerToOffsetLimit(t *testing.T) {
	e := ticketEntity()
	sql, _ := mustSelect(t, For(e).Skip(4).Take(2))
	if !strings.Contains(sql, "LIMIT 2") || !strings.Contains(sql, "OFFSET 4") {
		t.Fatalf("sql = %q", sql)
	}
}

func TestCountSQL(t *testing.T) {
	e := ticketEntity()

	sql, _ := mustCount(t, For(e).Where(leaf(e, "Title", search.Contains, "x", false)))
	if !strings.HasPrefix(sql, "SELECT COUNT(*) FROM tickets AS main") {
		t.Fatalf("sql = %q", sql)
	}
	if strings.Contains(sql, "ORDER BY") || strings.Contains(sql, "LIMIT") {
		t.Fatalf("count sql must not order or page: %q", sql)
	}

	sql, _ = mustCount(t, For(e).Where(leaf(e, "project.Name", search.Contains, "x", false)))
	if !strings.Contains(sql, "COUNT(DISTINCT main.id)") {
		t.Fatalf("joined count must deduplicate: %q", sql)
	}
}

func TestQueryOperationsDoNotMutate(t *testing.T) {
	e := ticketEntity()
	base := For(e)
	base.Where(leaf(e, "Title", search.Equals, "x", false))
	base.Skip(10)
	base.Take(5)

	sql, _ := mustSelect(t, base)
	if sql != "SELECT main.* FROM tickets AS main" {
		t.Fatalf("base query mutated: %q", sql)
	}
}

func TestSetPatternMatcher(t *testing.T) {
	e := ticketEntity()
	SetPatternMatcher(func(column, value string, _ bool) squirrel.Sqlizer {
		return squirrel.Expr(column+" %% ?", value)
	})
	t.Cleanup(func() { SetPatternMatcher(nil) })

	sql, args := mustSelect(t, For(e).Where(leaf(e, "Title", search.Contains, "lap", false)))
	if !strings.Contains(sql, "main.title %% $1") {
		t.Fatalf("sql = %q", sql)
	}
	if diff := cmp.Diff([]any{"lap"}, args); diff != "" {
		t.Fatal(diff)
	}

	SetPatternMatcher(nil)
	sql, _ = mustSelect(t, For(e).Where(leaf(e, "Title", search.Contains, "lap", false)))
	if !strings.Contains(sql, "ILIKE") {
		t.Fatalf("default matcher not restored: %q", sql)
	}
}
