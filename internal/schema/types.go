package schema

import "strings"

// FieldType is the declared value type of a registered field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeTime   FieldType = "time"
	TypeUUID   FieldType = "uuid"
)

// Numeric reports whether ordered comparisons parse the value as a number.
func (t FieldType) Numeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Entity describes one queryable type in the registry. Entities are built
// once at startup and read-only afterwards.
type Entity struct {
	Name      string               `yaml:"-"`
	Table     string               `yaml:"table"`
	Fields    []*FieldDef          `yaml:"fields"`
	Relations map[string]*Relation `yaml:"relations"`
}

// FieldDef describes a single scalar field.
type FieldDef struct {
	Name   string    `yaml:"name"`
	Column string    `yaml:"column"`
	Type   FieldType `yaml:"type"`
	// Alias is the externally declared wire name override.
	Alias    string `yaml:"alias"`
	Internal bool   `yaml:"internal"`
}

// Relation links a nested path segment to another entity.
type Relation struct {
	Entity string `yaml:"entity"`
	FK     string `yaml:"fk"` // column on the owning table
	PK     string `yaml:"pk"` // column on the related table, "id" when empty

	ref *Entity `yaml:"-"`
}

func (r *Relation) Ref() *Entity { return r.ref }

func (r *Relation) SetRef(e *Entity) { r.ref = e }

func (r *Relation) PrimaryKey() string {
	if r.PK != "" {
		return r.PK
	}
	return "id"
}

// Field finds a declared field by canonical name, case-insensitively.
// Internal fields are invisible to name resolution.
func (e *Entity) Field(name string) *FieldDef {
	if e == nil {
		return nil
	}
	for _, f := range e.Fields {
		if !f.Internal && strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// Relation finds a declared relation by canonical name, case-insensitively.
func (e *Entity) Relation(name string) (string, *Relation) {
	if e == nil {
		return "", nil
	}
	for rname, rel := range e.Relations {
		if strings.EqualFold(rname, name) {
			return rname, rel
		}
	}
	return "", nil
}

// Lookup walks a canonical dotted path and returns the terminal field.
// Any unknown segment, or a path ending on a relation, yields nil.
func (e *Entity) Lookup(path string) *FieldDef {
	cur := e
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		if cur == nil {
			return nil
		}
		if i == len(segs)-1 {
			return cur.Field(seg)
		}
		_, rel := cur.Relation(seg)
		if rel == nil {
			return nil
		}
		cur = rel.Ref()
	}
	return nil
}
