package labeler

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katbiondi/chembl-multitask/internal/model"
)

// Effect says what a matching rule does with the activity flag.
type Effect int

const (
	// Set replaces the flag: active iff potency ≤ Threshold.
	Set Effect = iota
	// Demote clears the flag when potency > Threshold; it never promotes.
	Demote
)

// Rule is one family-specific labeling rule. Rules are evaluated in slice
// order against the target's protein family classification; a rule whose
// classification level is empty on the record does not match.
type Rule struct {
	Level     int     // classification depth to inspect (1–3)
	Match     string  // pattern for that level
	Substring bool    // substring containment instead of exact equality
	Threshold float64 // potency cutoff in nM
	Effect    Effect
}

// Matches reports whether the rule applies to the given family classification.
func (r Rule) Matches(family model.Classification) bool {
	value := family.Level(r.Level)
	if value == "" {
		return false
	}
	if r.Substring {
		return strings.Contains(value, r.Match)
	}
	return value == r.Match
}

// DefaultRules returns the built-in family rules, in evaluation order.
//
// The GPCR rule matches by substring while the others match exactly: GPCR
// subfamily labels are free text ("Class A GPCR", "Class B GPCR", ...), the
// other family names are controlled vocabulary. The asymmetry is intentional.
func DefaultRules() []Rule {
	return []Rule{
		{Level: 1, Match: "Ion channel", Threshold: 10000, Effect: Set},
		{Level: 2, Match: "Kinase", Threshold: 30, Effect: Demote},
		{Level: 2, Match: "Nuclear receptor", Threshold: 100, Effect: Demote},
		{Level: 3, Match: "GPCR", Substring: true, Threshold: 100, Effect: Demote},
	}
}

// rulesFile is the YAML schema for an external rules override file.
type rulesFile struct {
	DefaultThreshold float64 `yaml:"default_threshold"`
	Rules            []struct {
		Level     int     `yaml:"level"`
		Match     string  `yaml:"match"`
		Substring bool    `yaml:"substring"`
		Threshold float64 `yaml:"threshold"`
		Effect    string  `yaml:"effect"` // "set" or "demote"
	} `yaml:"rules"`
}

// LoadRules reads a YAML rules file and returns the default threshold and the
// rule list it defines, replacing the built-in defaults entirely.
func LoadRules(path string) (float64, []Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("labeler: read rules: %w", err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return 0, nil, fmt.Errorf("labeler: parse rules %s: %w", path, err)
	}
	if rf.DefaultThreshold <= 0 {
		return 0, nil, fmt.Errorf("labeler: rules %s: default_threshold must be positive", path)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, r := range rf.Rules {
		if r.Level < 1 || r.Level > 3 {
			return 0, nil, fmt.Errorf("labeler: rules %s: rule %d: level must be 1–3, got %d", path, i, r.Level)
		}
		if r.Threshold <= 0 {
			return 0, nil, fmt.Errorf("labeler: rules %s: rule %d: threshold must be positive", path, i)
		}
		var effect Effect
		switch strings.ToLower(r.Effect) {
		case "set":
			effect = Set
		case "demote":
			effect = Demote
		default:
			return 0, nil, fmt.Errorf("labeler: rules %s: rule %d: unknown effect %q", path, i, r.Effect)
		}
		rules = append(rules, Rule{
			Level:     r.Level,
			Match:     r.Match,
			Substring: r.Substring,
			Threshold: r.Threshold,
			Effect:    effect,
		})
	}
	return rf.DefaultThreshold, rules, nil
}
