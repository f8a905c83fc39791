package llm

import (
	"encoding/json"
	"fmt"

	validator "github.com/google/jsonschema-go/jsonschema"
	"github.com/invopop/jsonschema"
)

// Schema is a named JSON Schema document together with its compiled
// validator. It is immutable once built.
type Schema struct {
	Name        string
	Description string

	doc      json.RawMessage
	resolved *validator.Resolved
}

// SchemaFor reflects the Go type T into a self-contained schema: no $refs
// and no additional properties, which is what strict structured-output
// backends accept.
func SchemaFor[T any](name, description string) (*Schema, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
		ExpandedStruct:            true,
	}
	var zero T
	s := r.Reflect(&zero)
	s.Version = ""
	s.ID = ""

	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema %s: %w", name, err)
	}
	out, err := ParseSchema(name, doc)
	if err != nil {
		return nil, err
	}
	out.Description = description
	return out, nil
}

// MustSchemaFor is SchemaFor for package-level schemas of known types.
func MustSchemaFor[T any](name, description string) *Schema {
	s, err := SchemaFor[T](name, description)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema compiles an arbitrary JSON Schema document.
func ParseSchema(name string, doc []byte) (*Schema, error) {
	var s validator.Schema
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
	}
	resolved, err := s.Resolve(&validator.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema %s: %w", name, err)
	}
	return &Schema{
		Name:     name,
		doc:      append(json.RawMessage(nil), doc...),
		resolved: resolved,
	}, nil
}

// Document returns the raw schema JSON.
func (s *Schema) Document() json.RawMessage {
	return s.doc
}

// Map returns the schema as a generic JSON object.
func (s *Schema) Map() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(s.doc, &m)
	return m
}

// Validate checks a decoded JSON value (as produced by json.Unmarshal into
// an any) against the schema.
func (s *Schema) Validate(instance any) error {
	return s.resolved.Validate(instance)
}
