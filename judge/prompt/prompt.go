/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package prompt provides a small template type for building judge prompts.
// Templates contain {{name}} placeholders which must all be bound before
// Build succeeds; binding returns a new Prompt so templates declared at
// package level can be shared safely.
package prompt

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Prompt is a template with named placeholders.
type Prompt struct {
	template string
	bound    map[string]string
}

// New parses a template and records its placeholders. Returns an error for
// an unterminated placeholder so malformed templates fail at construction,
// not at Build time.
func New(template string) (*Prompt, error) {
	p := &Prompt{template: template, bound: map[string]string{}}
	if _, err := walk(template, func(name string) (string, error) {
		return "", nil
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// MustNew is New for package-level template literals.
func MustNew(template string) *Prompt {
	p, err := New(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Bind binds a string value to a placeholder, returning a new Prompt.
func (p *Prompt) Bind(name, value string) *Prompt {
	np := &Prompt{template: p.template, bound: maps.Clone(p.bound)}
	np.bound[name] = value
	return np
}

// BindJSON marshals data and binds the JSON text to a placeholder.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling binding %q: %w", name, err)
	}
	return p.Bind(name, string(b)), nil
}

// Build renders the template, returning an error if any placeholder is
// still unbound.
func (p *Prompt) Build() (string, error) {
	return walk(p.template, func(name string) (string, error) {
		val, ok := p.bound[name]
		if !ok {
			return "", fmt.Errorf("placeholder %q is unbound", name)
		}
		return val, nil
	})
}

// walk scans the template and replaces each {{name}} via resolve.
func walk(template string, resolve func(name string) (string, error)) (string, error) {
	var out strings.Builder
	rest := template
	for {
		i := strings.Index(rest, "{{")
		if i < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:i])
		rest = rest[i+2:]
		j := strings.Index(rest, "}}")
		if j < 0 {
			return "", fmt.Errorf("unterminated placeholder near %q", truncate(rest, 20))
		}
		name := strings.TrimSpace(rest[:j])
		if name == "" {
			return "", fmt.Errorf("empty placeholder name")
		}
		val, err := resolve(name)
		if err != nil {
			return "", err
		}
		out.WriteString(val)
		rest = rest[j+2:]
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
