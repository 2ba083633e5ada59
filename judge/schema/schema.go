/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas from judge response structs. The
// schemas are embedded into prompts so each oracle sees the exact shape it
// must return, rather than a hand-maintained example that can drift from
// the Go types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator wraps jsonschema.Reflector with the defaults judge prompts need:
// inline schemas without $ref indirection, required fields driven by tags.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator constructs a generator wired with judge prompt defaults.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			DoNotReference:             true,
		},
	}
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	return g.reflector.Reflect(v)
}

// For allocates a zero value of T and reflects it to a schema.
func For[T any]() *jsonschema.Schema {
	var zero T
	return NewGenerator().Reflect(&zero)
}

// TextFor renders T's schema as indented JSON for inclusion in a prompt.
func TextFor[T any]() (string, error) {
	b, err := json.MarshalIndent(For[T](), "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering schema: %w", err)
	}
	return string(b), nil
}

// MustTextFor is TextFor for schemas built from package-level types, where a
// marshal failure is programmer error.
func MustTextFor[T any]() string {
	s, err := TextFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}
