package search

import (
	"fmt"

	"searchq/internal/schema"
)

// Direction of one ordering key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) Code() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func ParseDirection(code string) (Direction, error) {
	switch code {
	case "asc", "":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return 0, fmt.Errorf("%w: unknown direction '%s'", ErrMalformedDictionary, code)
}

// Sorting is one ordering key over a raw field name.
type Sorting struct {
	PropertyName string
	Direction    Direction
}

// Compile resolves the key. Restricted or unresolvable keys return ok=false,
// meaning the key contributes nothing but does not abort later keys.
func (s Sorting) Compile(entity *schema.Entity, resolver FieldResolver, restrictions *FieldRestrictions) (OrderKey, bool) {
	if !restrictions.CanSort(s.PropertyName) {
		return OrderKey{}, false
	}
	path, ok := resolver.ResolveToEntityField(s.PropertyName)
	if !ok {
		return OrderKey{}, false
	}
	field := entity.Lookup(path)
	if field == nil {
		return OrderKey{}, false
	}
	return OrderKey{
		Path:       path,
		Field:      field,
		Descending: s.Direction == Descending,
	}, true
}
