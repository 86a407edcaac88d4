package schema

import (
	"fmt"
	"sort"
	"strings"

	"searchq/internal/logger"
)

// ValueTransformer rewrites an incoming filter value before comparison,
// e.g. mapping a DTO status label to its stored code.
type ValueTransformer func(raw string) (string, error)

// FieldMapper translates DTO-facing field names and values to entity-facing
// ones. Custom mappings and transformers are registered at startup; the
// mapper is read-only afterwards.
type FieldMapper struct {
	entity   *Entity
	resolver *NameResolver

	custom     map[string]string // lowercased DTO name -> entity path
	transforms map[string]ValueTransformer
}

func NewFieldMapper(entity *Entity, resolver *NameResolver) *FieldMapper {
	return &FieldMapper{
		entity:     entity,
		resolver:   resolver,
		custom:     map[string]string{},
		transforms: map[string]ValueTransformer{},
	}
}

// WithMapping registers a custom DTO-name to entity-path mapping.
func (m *FieldMapper) WithMapping(dtoName, entityPath string) *FieldMapper {
	m.custom[strings.ToLower(dtoName)] = entityPath
	return m
}

// WithTransformer registers a value transformer for a DTO field name.
func (m *FieldMapper) WithTransformer(dtoName string, fn ValueTransformer) *FieldMapper {
	m.transforms[strings.ToLower(dtoName)] = fn
	return m
}

// Entity returns the mapped target entity.
func (m *FieldMapper) Entity() *Entity { return m.entity }

// ResolveToEntityField maps a DTO field name to a canonical entity path.
// Order: custom mapping, then resolver-assisted match, then an existence
// check on the entity (nested paths included). Any failure yields ok=false,
// never an error.
func (m *FieldMapper) ResolveToEntityField(name string) (string, bool) {
	path, ok := m.custom[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		path = m.resolver.Resolve(m.entity, name)
	}
	if m.entity.Lookup(path) == nil {
		return "", false
	}
	return path, true
}

// TransformValue applies a registered transformer. Transformer errors and
// panics degrade to "no value" (ok=false); without a transformer the raw
// value passes through unchanged.
func (m *FieldMapper) TransformValue(name, raw string) (value string, ok bool) {
	fn, found := m.transforms[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return raw, true
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("value_transform_panic", map[string]any{
				"field": name,
				"error": fmt.Sprintf("%v", r),
			})
			value, ok = "", false
		}
	}()
	out, err := fn(raw)
	if err != nil {
		logger.Debug("value_transform_failed", map[string]any{
			"field": name,
			"error": err.Error(),
		})
		return "", false
	}
	return out, true
}

// MappedFields enumerates the DTO-visible field names: entity fields under
// the resolver's naming policy plus custom-mapped names, deduplicated
// case-insensitively. Introspection only; nothing here is enforced at
// filter time.
func (m *FieldMapper) MappedFields() []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}

	for _, f := range m.entity.Fields {
		if f.Internal {
			continue
		}
		switch {
		case m.resolver.UseAliases && f.Alias != "":
			add(f.Alias)
		case m.resolver.Policy.Apply != nil:
			add(m.resolver.Policy.Apply(f.Name))
		default:
			add(f.Name)
		}
	}
	for name := range m.custom {
		add(name)
	}
	sort.Strings(out)
	return out
}
