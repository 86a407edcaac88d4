package sqlquery

import (
	"strconv"
	"time"

	"searchq/internal/schema"
	"searchq/internal/search"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var neverExpr = squirrel.Expr("1=0")

func lowerCondition(entity *schema.Entity, joins *joinSet, cond search.Condition) squirrel.Sqlizer {
	switch c := cond.(type) {
	case search.Leaf:
		return lowerLeaf(entity, joins, c)
	case search.Or:
		var parts []squirrel.Sqlizer
		for _, branch := range c.Conditions {
			if expr := lowerCondition(entity, joins, branch); expr != nil {
				parts = append(parts, expr)
			}
		}
		if len(parts) == 0 {
			return nil
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return squirrel.Or(parts)
	case search.Never:
		return neverExpr
	}
	return nil
}

func lowerLeaf(entity *schema.Entity, joins *joinSet, leaf search.Leaf) squirrel.Sqlizer {
	col := columnExpr(entity, joins, leaf.Path)
	if col == "" {
		return neverExpr
	}

	switch leaf.Operator {
	case search.IsNull:
		return squirrel.Eq{col: nil}
	case search.IsNotNull:
		return squirrel.NotEq{col: nil}

	case search.Equals, search.NotEquals:
		return lowerEquality(col, leaf)

	case search.GreaterThan, search.LessThan, search.GreaterThanOrEquals, search.LessThanOrEquals:
		return lowerOrdered(col, leaf)

	case search.Contains:
		return matchPattern(textColumn(col, leaf.Field), leaf.Value, leaf.CaseSensitive)
	case search.NotContains:
		inner := matchPattern(textColumn(col, leaf.Field), leaf.Value, leaf.CaseSensitive)
		return notExpr(inner)
	}
	return neverExpr
}

func lowerEquality(col string, leaf search.Leaf) squirrel.Sqlizer {
	if leaf.Field.Type == schema.TypeString {
		if leaf.CaseSensitive {
			if leaf.Operator == search.Equals {
				return squirrel.Eq{col: leaf.Value}
			}
			return squirrel.NotEq{col: leaf.Value}
		}
		if leaf.Operator == search.Equals {
			return squirrel.Expr("LOWER("+col+") = LOWER(?)", leaf.Value)
		}
		return squirrel.Expr("LOWER("+col+") <> LOWER(?)", leaf.Value)
	}

	value, ok := typedValue(leaf.Field.Type, leaf.Value)
	if !ok {
		// the comparison cannot hold for any row
		return neverExpr
	}
	if leaf.Operator == search.Equals {
		return squirrel.Eq{col: value}
	}
	return squirrel.NotEq{col: value}
}

func lowerOrdered(col string, leaf search.Leaf) squirrel.Sqlizer {
	value, ok := typedValue(leaf.Field.Type, leaf.Value)
	if !ok {
		return neverExpr
	}
	switch leaf.Operator {
	case search.GreaterThan:
		return squirrel.Gt{col: value}
	case search.GreaterThanOrEquals:
		return squirrel.GtOrEq{col: value}
	case search.LessThan:
		return squirrel.Lt{col: value}
	case search.LessThanOrEquals:
		return squirrel.LtOrEq{col: value}
	}
	return neverExpr
}

// typedValue converts the wire value to the field's declared type so the
// driver binds a comparable parameter. A value the type cannot parse
// returns ok=false, so the caller lowers the leaf to constant false
// instead of letting Postgres raise on a bad bind.
func typedValue(t schema.FieldType, raw string) (any, bool) {
	switch t {
	case schema.TypeInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, err == nil
	case schema.TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		return v, err == nil
	case schema.TypeBool:
		v, err := strconv.ParseBool(raw)
		return v, err == nil
	case schema.TypeTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if _, err := time.Parse(layout, raw); err == nil {
				return raw, true
			}
		}
		return nil, false
	case schema.TypeUUID:
		if _, err := uuid.Parse(raw); err != nil {
			return nil, false
		}
		return raw, true
	default:
		return raw, true
	}
}

// textColumn casts non-string columns to TEXT for substring matching.
func textColumn(col string, field *schema.FieldDef) string {
	if field.Type == schema.TypeString {
		return col
	}
	return "CAST(" + col + " AS TEXT)"
}

type notSqlizer struct {
	inner squirrel.Sqlizer
}

func notExpr(inner squirrel.Sqlizer) squirrel.Sqlizer {
	return notSqlizer{inner: inner}
}

func (n notSqlizer) ToSql() (string, []any, error) {
	sql, args, err := n.inner.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}
