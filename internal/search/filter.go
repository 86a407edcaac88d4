package search

import (
	"strconv"
	"time"

	"searchq/internal/schema"
)

// FieldResolver maps a raw incoming field name to a canonical entity path.
// schema.FieldMapper is the standard implementation.
type FieldResolver interface {
	ResolveToEntityField(name string) (path string, ok bool)
}

// ValueMapper is the optional value-transform side of a resolver.
type ValueMapper interface {
	TransformValue(name, raw string) (value string, ok bool)
}

// Filter is one filter condition over one or more fields. Multiple fields
// combine with OR; multiple filters in a SearchParameters combine with AND.
type Filter struct {
	Fields        []string
	Operator      Operator
	Value         string
	CaseSensitive bool
}

func NewFilter(op Operator, value string, fields ...string) Filter {
	return Filter{Fields: fields, Operator: op, Value: value}
}

// Equal is structural equality over all four attributes.
func (f Filter) Equal(other Filter) bool {
	if f.Operator != other.Operator || f.Value != other.Value || f.CaseSensitive != other.CaseSensitive {
		return false
	}
	if len(f.Fields) != len(other.Fields) {
		return false
	}
	for i := range f.Fields {
		if f.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Compile resolves the declared fields and builds the condition AST.
// Restricted and unresolvable fields are dropped individually; when none
// survive the filter contributes nothing and Compile returns nil. Value
// problems on a surviving field (failed transform, unparsable number for an
// ordered comparison) compile to a constant-false leaf instead.
func (f Filter) Compile(entity *schema.Entity, resolver FieldResolver, restrictions *FieldRestrictions) Condition {
	caseSensitive := f.CaseSensitive || CurrentSettings().CaseSensitive

	var leaves []Condition
	for _, raw := range f.Fields {
		if !restrictions.CanFilter(raw) {
			continue
		}
		path, ok := resolver.ResolveToEntityField(raw)
		if !ok {
			continue
		}
		field := entity.Lookup(path)
		if field == nil {
			continue
		}

		value := f.Value
		if f.Operator.HasValue() {
			if vm, isVM := resolver.(ValueMapper); isVM {
				transformed, tok := vm.TransformValue(raw, f.Value)
				if !tok {
					leaves = append(leaves, Never{})
					continue
				}
				value = transformed
			}
			if f.Operator.Ordered() {
				// ordered comparisons parse numerically (or chronologically
				// for time fields); anything else evaluates false
				switch {
				case field.Type.Numeric():
					if _, err := strconv.ParseFloat(value, 64); err != nil {
						leaves = append(leaves, Never{})
						continue
					}
				case field.Type == schema.TypeTime:
					if !validTimeValue(value) {
						leaves = append(leaves, Never{})
						continue
					}
				default:
					leaves = append(leaves, Never{})
					continue
				}
			}
		}

		leaves = append(leaves, Leaf{
			Path:          path,
			Field:         field,
			Operator:      f.Operator,
			Value:         value,
			CaseSensitive: caseSensitive,
		})
	}

	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	default:
		return Or{Conditions: leaves}
	}
}

func validTimeValue(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
