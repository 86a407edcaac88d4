package search

import "searchq/internal/schema"

// Condition is the backend-neutral predicate AST compiled from filters.
// Interpreters either evaluate it over in-memory sequences (memquery) or
// lower it into SQL builder calls (sqlquery).
type Condition interface {
	cond()
}

// Leaf is one typed comparison against a resolved entity field.
type Leaf struct {
	// Path is the canonical dotted entity path, e.g. "category.Name".
	Path          string
	Field         *schema.FieldDef
	Operator      Operator
	Value         string
	CaseSensitive bool
}

// Or matches when any branch matches. Fields of one filter combine this way.
type Or struct {
	Conditions []Condition
}

// Never matches nothing. Typed-comparison value-parse failures compile to
// it so a broken leaf evaluates false instead of raising.
type Never struct{}

func (Leaf) cond() {}

func (Or) cond() {}

func (Never) cond() {}

// OrderKey is one compiled ordering step.
type OrderKey struct {
	Path       string
	Field      *schema.FieldDef
	Descending bool
}
