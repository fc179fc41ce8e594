// Package validate checks a dataset against a small declarative rule
// document: required columns, expected logical types, value ranges and
// null-fraction ceilings.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/srslogics/datasentinel/internal/dataset"
)

// ValidationError indicates the dataset cannot satisfy the rules at all,
// e.g. a required column is absent.
type ValidationError struct {
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("validation failed for column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// ColumnRule constrains a single column.
type ColumnRule struct {
	Kind            string   `json:"kind,omitempty"` // numeric|text|temporal|categorical
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	MaxNullFraction *float64 `json:"max_null_fraction,omitempty"`
	AllowedValues   []string `json:"allowed_values,omitempty"`
}

// Rules is the rule document, decoded from JSON.
type Rules struct {
	RequiredColumns []string              `json:"required_columns,omitempty"`
	Columns         map[string]ColumnRule `json:"columns,omitempty"`
}

// ParseRules decodes a rules JSON document.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse validation rules: %w", err)
	}
	return &r, nil
}

// Issue is one rule violation.
type Issue struct {
	Column  string `json:"column"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result is the validation outcome for one dataset.
type Result struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues"`
}

// Run validates the dataset. A missing required column is a hard
// *ValidationError; per-column rule violations are collected into the Result.
// Rules run in sorted column-name order so persisted results diff cleanly.
func Run(ds *dataset.Dataset, rules *Rules) (*Result, error) {
	for _, name := range rules.RequiredColumns {
		if _, ok := ds.Column(name); !ok {
			return nil, &ValidationError{Column: name, Reason: "required column absent"}
		}
	}
	names := make([]string, 0, len(rules.Columns))
	for name := range rules.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &Result{}
	for _, name := range names {
		c, ok := ds.Column(name)
		if !ok {
			res.Issues = append(res.Issues, Issue{Column: name, Rule: "presence", Message: "column absent"})
			continue
		}
		checkColumn(res, c, rules.Columns[name])
	}
	res.Passed = len(res.Issues) == 0
	return res, nil
}

func checkColumn(res *Result, c dataset.Column, rule ColumnRule) {
	if rule.Kind != "" && rule.Kind != c.Kind.String() {
		res.Issues = append(res.Issues, Issue{
			Column: c.Name, Rule: "kind",
			Message: fmt.Sprintf("want %s, got %s", rule.Kind, c.Kind),
		})
	}
	if rule.MaxNullFraction != nil && c.Len() > 0 {
		frac := float64(c.MissingCount()) / float64(c.Len())
		if frac > *rule.MaxNullFraction {
			res.Issues = append(res.Issues, Issue{
				Column: c.Name, Rule: "max_null_fraction",
				Message: fmt.Sprintf("null fraction %.4f exceeds %.4f", frac, *rule.MaxNullFraction),
			})
		}
	}
	if c.Kind == dataset.Numeric && (rule.Min != nil || rule.Max != nil) {
		for _, v := range c.Floats {
			if math.IsNaN(v) {
				continue
			}
			if rule.Min != nil && v < *rule.Min {
				res.Issues = append(res.Issues, Issue{
					Column: c.Name, Rule: "min",
					Message: fmt.Sprintf("value %g below minimum %g", v, *rule.Min),
				})
				break
			}
			if rule.Max != nil && v > *rule.Max {
				res.Issues = append(res.Issues, Issue{
					Column: c.Name, Rule: "max",
					Message: fmt.Sprintf("value %g above maximum %g", v, *rule.Max),
				})
				break
			}
		}
	}
	if len(rule.AllowedValues) > 0 && (c.Kind == dataset.Text || c.Kind == dataset.Categorical) {
		allowed := make(map[string]struct{}, len(rule.AllowedValues))
		for _, v := range rule.AllowedValues {
			allowed[v] = struct{}{}
		}
		for _, v := range c.PresentStrings() {
			if _, ok := allowed[v]; !ok {
				res.Issues = append(res.Issues, Issue{
					Column: c.Name, Rule: "allowed_values",
					Message: fmt.Sprintf("unexpected value %q", v),
				})
				break
			}
		}
	}
}
