package schema

import (
	"strings"
)

// NameIndex is the prebuilt resolution table for one entity under one naming
// policy: lowercased external name to canonical declared name. Building it
// once folds the alias / direct / policy match order into map precedence.
type NameIndex struct {
	Fields    map[string]string `json:"fields"`
	Relations map[string]string `json:"relations"`
}

// BuildNameIndex computes the index for an entity. Insertion order encodes
// match priority: policy-derived names first, then canonical names, then
// declared aliases, so a later entry overrides a weaker match.
func BuildNameIndex(e *Entity, policy NamingPolicy, useAliases bool) *NameIndex {
	idx := &NameIndex{
		Fields:    map[string]string{},
		Relations: map[string]string{},
	}
	if e == nil {
		return idx
	}

	if policy.Apply != nil {
		for _, f := range e.Fields {
			if f.Internal {
				continue
			}
			idx.Fields[strings.ToLower(policy.Apply(f.Name))] = f.Name
		}
		for rname := range e.Relations {
			idx.Relations[strings.ToLower(policy.Apply(rname))] = rname
		}
	}
	for _, f := range e.Fields {
		if f.Internal {
			continue
		}
		idx.Fields[strings.ToLower(f.Name)] = f.Name
	}
	for rname := range e.Relations {
		idx.Relations[strings.ToLower(rname)] = rname
	}
	if useAliases {
		for _, f := range e.Fields {
			if f.Internal || f.Alias == "" {
				continue
			}
			idx.Fields[strings.ToLower(f.Alias)] = f.Name
		}
	}
	return idx
}

// FieldFor resolves one external fragment to a canonical field name.
func (idx *NameIndex) FieldFor(fragment string) (string, bool) {
	name, ok := idx.Fields[strings.ToLower(fragment)]
	return name, ok
}

// RelationFor resolves one external fragment to a canonical relation name.
func (idx *NameIndex) RelationFor(fragment string) (string, bool) {
	name, ok := idx.Relations[strings.ToLower(fragment)]
	return name, ok
}
