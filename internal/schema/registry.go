package schema

import (
	"fmt"
	"strings"
)

var Registry = map[string]*Entity{}

// InitRegistry loads, links and validates every entity definition in dir.
// It runs once at startup; the registry is read-only afterwards.
func InitRegistry(dir string) error {
	if err := LoadEntitiesFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := LinkRelations(); err != nil {
		return fmt.Errorf("link error: %w", err)
	}
	if err := ValidateRegistry(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// GetEntity is a nil-safe registry lookup.
func GetEntity(name string) *Entity {
	return Registry[name]
}

// LinkRelations resolves relation targets to loaded entities.
func LinkRelations() error {
	for name, entity := range Registry {
		for rname, rel := range entity.Relations {
			target, ok := Registry[rel.Entity]
			if !ok {
				return fmt.Errorf("entity '%s': relation '%s' targets unknown entity '%s'", name, rname, rel.Entity)
			}
			rel.SetRef(target)
		}
	}
	return nil
}

// ValidateRegistry rejects definitions whose external names collide, since
// resolution is case-insensitive across aliases, names and relations.
func ValidateRegistry() error {
	for name, entity := range Registry {
		if entity.Table == "" {
			return fmt.Errorf("entity '%s': table is required", name)
		}
		seen := map[string]string{}
		claim := func(external, owner string) error {
			key := strings.ToLower(external)
			if prev, dup := seen[key]; dup && prev != owner {
				return fmt.Errorf("entity '%s': external name '%s' claimed by both %s and %s", name, external, prev, owner)
			}
			seen[key] = owner
			return nil
		}
		for _, f := range entity.Fields {
			if f.Internal {
				continue
			}
			if err := claim(f.Name, "field "+f.Name); err != nil {
				return err
			}
			if f.Alias != "" {
				if err := claim(f.Alias, "field "+f.Name); err != nil {
					return err
				}
			}
		}
		for rname := range entity.Relations {
			if err := claim(rname, "relation "+rname); err != nil {
				return err
			}
		}
	}
	return nil
}

// ResetRegistry clears loaded entities, used by tests.
func ResetRegistry() {
	Registry = map[string]*Entity{}
}
