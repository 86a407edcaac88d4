package search

import "fmt"

// Operator is the comparison kind of one filter condition.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	GreaterThan
	LessThan
	GreaterThanOrEquals
	LessThanOrEquals
	Contains
	NotContains
	IsNull
	IsNotNull
)

var operatorCodes = map[Operator]string{
	Equals:              "eq",
	NotEquals:           "neq",
	GreaterThan:         "gt",
	LessThan:            "lt",
	GreaterThanOrEquals: "gte",
	LessThanOrEquals:    "lte",
	Contains:            "contains",
	NotContains:         "ncontains",
	IsNull:              "null",
	IsNotNull:           "notnull",
}

// Code returns the wire-format operator code.
func (op Operator) Code() string {
	if code, ok := operatorCodes[op]; ok {
		return code
	}
	return fmt.Sprintf("operator(%d)", int(op))
}

func (op Operator) String() string { return op.Code() }

// HasValue reports whether the operator compares against a supplied value.
func (op Operator) HasValue() bool {
	return op != IsNull && op != IsNotNull
}

// Ordered reports whether the operator is a typed ordered comparison.
func (op Operator) Ordered() bool {
	switch op {
	case GreaterThan, LessThan, GreaterThanOrEquals, LessThanOrEquals:
		return true
	}
	return false
}

// ParseOperator maps a wire code back to an Operator.
func ParseOperator(code string) (Operator, error) {
	for op, c := range operatorCodes {
		if c == code {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operator code '%s'", ErrMalformedDictionary, code)
}
