package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Count fields a rule can test.
const (
	FieldRecent = "recent"
	FieldTotal  = "total"
)

// countPlaceholder is substituted with the triggering count in rationales.
const countPlaceholder = "{count}"

// Rule is one row of the ordered classification table.
type Rule struct {
	Name      string `yaml:"name"`
	Field     string `yaml:"field"`
	Min       int    `yaml:"min"`
	Tier      Tier   `yaml:"tier"`
	Rationale string `yaml:"rationale"`
}

// Count returns the statistic this rule tests.
func (r Rule) Count(s RegionStats) int {
	if r.Field == FieldRecent {
		return s.Recent
	}
	return s.Total
}

// Matches reports whether the rule's predicate holds for s.
func (r Rule) Matches(s RegionStats) bool {
	return r.Count(s) >= r.Min
}

// Explain renders the rationale with the triggering count.
func (r Rule) Explain(s RegionStats) string {
	return strings.ReplaceAll(r.Rationale, countPlaceholder, strconv.Itoa(r.Count(s)))
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

var defaultRules = mustLoadRules(rulesYAML)

// Rules returns a copy of the built-in classification table.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// LoadRules parses and validates a YAML rule table. The table must be
// non-empty, reference known fields and tiers, and end with a catch-all row.
func LoadRules(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("rules: table is empty")
	}
	for i, r := range f.Rules {
		if r.Field != FieldRecent && r.Field != FieldTotal {
			return nil, fmt.Errorf("rules[%d] %q: unknown field %q", i, r.Name, r.Field)
		}
		if _, ok := ParseTier(string(r.Tier)); !ok {
			return nil, fmt.Errorf("rules[%d] %q: unknown tier %q", i, r.Name, r.Tier)
		}
		if r.Min < 0 {
			return nil, fmt.Errorf("rules[%d] %q: negative min", i, r.Name)
		}
		if r.Rationale == "" {
			return nil, fmt.Errorf("rules[%d] %q: empty rationale", i, r.Name)
		}
	}
	if last := f.Rules[len(f.Rules)-1]; last.Min != 0 {
		return nil, fmt.Errorf("rules: last row %q must be a catch-all (min: 0)", last.Name)
	}
	return f.Rules, nil
}

func mustLoadRules(data []byte) []Rule {
	r, err := LoadRules(data)
	if err != nil {
		panic(err)
	}
	return r
}
