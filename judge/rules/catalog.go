/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package rules holds the weighted VPP compliance rule catalog. The catalog
// is loaded once and never mutated at runtime; weights encode criticality
// (5 critical, 4 important, 3 moderate, 1-2 minor) and drive both the
// weighted compliance score and the scoring caps in the rubric pipeline.
package rules

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Criticality buckets rules by weight.
type Criticality string

const (
	Critical  Criticality = "critical"  // weight 5
	Important Criticality = "important" // weight 4
	Moderate  Criticality = "moderate"  // weight 3
	Minor     Criticality = "minor"     // weight 1-2
)

// Rule is one compliance criterion from the VPP guidelines.
type Rule struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Rule     string `yaml:"rule" json:"rule"`
	Page     int    `yaml:"page" json:"page"`
	Weight   int    `yaml:"weight" json:"weight"`
}

// Criticality maps the rule's weight onto the four-level scale.
func (r Rule) Criticality() Criticality {
	switch {
	case r.Weight >= 5:
		return Critical
	case r.Weight == 4:
		return Important
	case r.Weight == 3:
		return Moderate
	default:
		return Minor
	}
}

// Catalog is an immutable rule set.
type Catalog struct {
	rules       []Rule
	byID        map[string]Rule
	totalWeight int
}

type catalogFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load parses a rule catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("catalog contains no rules")
	}

	c := &Catalog{
		rules: f.Rules,
		byID:  make(map[string]Rule, len(f.Rules)),
	}
	for _, rule := range f.Rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule with empty id (rule text %q)", rule.Rule)
		}
		if rule.Weight < 1 || rule.Weight > 5 {
			return nil, fmt.Errorf("rule %s has weight %d, want 1-5", rule.ID, rule.Weight)
		}
		if _, dup := c.byID[rule.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %s", rule.ID)
		}
		c.byID[rule.ID] = rule
		c.totalWeight += rule.Weight
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog, parsed once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(strings.NewReader(string(embeddedCatalog)))
		if err != nil {
			// The embedded catalog is validated by tests; failing to parse
			// it is programmer error.
			panic(fmt.Sprintf("embedded rule catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// All returns the rules in catalog order. Callers must not modify the slice.
func (c *Catalog) All() []Rule { return c.rules }

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// TotalWeight returns the sum of all rule weights.
func (c *Catalog) TotalWeight() int { return c.totalWeight }

// Get looks up a rule by ID.
func (c *Catalog) Get(id string) (Rule, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// ByCriticality returns the rules in the given bucket, in catalog order.
func (c *Catalog) ByCriticality(level Criticality) []Rule {
	var out []Rule
	for _, r := range c.rules {
		if r.Criticality() == level {
			out = append(out, r)
		}
	}
	return out
}

// WeightedScore computes 100 - (sum of violated rule weights / total weight * 100)
// for the given violated rule IDs. Unknown IDs are ignored; duplicates count once.
func (c *Catalog) WeightedScore(violatedIDs []string) float64 {
	seen := make(map[string]struct{}, len(violatedIDs))
	violated := 0
	for _, id := range violatedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if r, ok := c.byID[id]; ok {
			violated += r.Weight
		}
	}
	if c.totalWeight == 0 {
		return 0
	}
	return 100 - float64(violated)/float64(c.totalWeight)*100
}

// FormatBucket renders one criticality bucket as "- ID: rule" lines for
// inclusion in the compliance prompt.
func (c *Catalog) FormatBucket(level Criticality) string {
	var b strings.Builder
	for _, r := range c.ByCriticality(level) {
		fmt.Fprintf(&b, "- %s: %s\n", r.ID, r.Rule)
	}
	return strings.TrimRight(b.String(), "\n")
}
