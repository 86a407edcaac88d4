package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Allowed keys for the schema YAML objects.
var allowedEntityKeys = map[string]bool{
	"table":     true,
	"fields":    true,
	"relations": true,
}

var allowedFieldKeys = map[string]bool{
	"name":     true,
	"column":   true,
	"type":     true,
	"alias":    true,
	"internal": true,
}

var allowedRelationKeys = map[string]bool{
	"entity": true,
	"fk":     true,
	"pk":     true,
}

var allowedFieldTypeValues = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
	"time":   true,
	"uuid":   true,
}

// LoadEntitiesFromDir reads every *.yml in dir into the registry. The entity
// name is the file base name.
func LoadEntitiesFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no schema files in %s", dir)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		// Parse into yaml.Node first for structural validation, then decode.
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
		if len(root.Content) == 0 {
			return fmt.Errorf("empty YAML in %s", path)
		}
		if err := validateYAMLNode(root.Content[0], "entity"); err != nil {
			return fmt.Errorf("validation error in %s: %w", path, err)
		}

		var entity Entity
		if err := root.Decode(&entity); err != nil {
			return fmt.Errorf("unmarshal error in %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		entity.Name = name
		for _, f := range entity.Fields {
			if f.Name == "" {
				return fmt.Errorf("field without name in %s", path)
			}
			if f.Column == "" {
				f.Column = SnakeCase.Apply(f.Name)
			}
			if f.Type == "" {
				f.Type = TypeString
			}
		}
		Registry[name] = &entity
	}
	return nil
}

func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "entity"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "entity":
			allowedKeys = allowedEntityKeys
		case "field":
			allowedKeys = allowedFieldKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		}

		for i := 0; i < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}
			if context == "field" && key == "type" && !allowedFieldTypeValues[valNode.Value] {
				return fmt.Errorf("unknown type value '%s' in field", valNode.Value)
			}

			nextContext := context
			if context == "entity" && key == "fields" {
				nextContext = "fields-seq"
			} else if context == "entity" && key == "relations" {
				nextContext = "relations-map"
			} else if context == "relations-map" {
				nextContext = "relation"
			}
			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		if context == "fields-seq" {
			for _, item := range node.Content {
				if err := validateYAMLNode(item, "field"); err != nil {
					return err
				}
			}
		} else {
			for _, item := range node.Content {
				if err := validateYAMLNode(item, context); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
