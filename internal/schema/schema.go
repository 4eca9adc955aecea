// Package schema is a small, vendor-neutral description of the JSON documents the
// generative backend must return. Adapters translate it into their SDK's own schema
// type; Compile turns it into a validator for decoded output.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema marshals to a JSON Schema subset.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	MinItems    int                `json:"minItems,omitempty"`
	Pattern     string             `json:"pattern,omitempty"`
}

// Violation describes the first place a document departs from its schema.
type Violation struct {
	Path   string
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", v.Path, v.Reason)
}

// Validator checks values produced by encoding/json decoding into interface{}.
type Validator struct {
	compiled *jsonschema.Schema
}

// Compile marshals s as JSON Schema and compiles it.
func (s *Schema) Compile() (*Validator, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	const url = "schema.json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// MustCompile is Compile for package-level contracts.
func (s *Schema) MustCompile() *Validator {
	v, err := s.Compile()
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Validate(doc interface{}) error {
	err := v.compiled.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &Violation{Path: jsonPath(ve.InstanceLocation), Reason: ve.Message}
}

// jsonPath turns a JSON pointer such as /lunch/name into $.lunch.name.
func jsonPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "$"
	}
	return "$" + strings.ReplaceAll(pointer, "/", ".")
}
