package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/srslogics/datasentinel/internal/dataset"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewNumeric("amount", []float64{10, 20, math.NaN(), 150}),
		dataset.NewText("status", []string{"open", "closed", "open", "weird"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestMissingRequiredColumnIsHardError(t *testing.T) {
	rules := &Rules{RequiredColumns: []string{"amount", "missing_col"}}
	_, err := Run(testDataset(t), rules)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Column != "missing_col" {
		t.Fatalf("column = %s", verr.Column)
	}
}

func TestRuleViolationsAreCollected(t *testing.T) {
	max := 100.0
	nullCeil := 0.1
	rules := &Rules{
		Columns: map[string]ColumnRule{
			"amount": {Kind: "numeric", Max: &max, MaxNullFraction: &nullCeil},
			"status": {AllowedValues: []string{"open", "closed"}},
		},
	}
	res, err := Run(testDataset(t), rules)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed {
		t.Fatal("expected failures")
	}
	got := make(map[string]bool)
	for _, issue := range res.Issues {
		got[issue.Column+"/"+issue.Rule] = true
	}
	for _, want := range []string{"amount/max", "amount/max_null_fraction", "status/allowed_values"} {
		if !got[want] {
			t.Fatalf("missing issue %s in %v", want, res.Issues)
		}
	}
}

func TestPassingRules(t *testing.T) {
	min := 0.0
	rules := &Rules{
		RequiredColumns: []string{"amount", "status"},
		Columns: map[string]ColumnRule{
			"amount": {Kind: "numeric", Min: &min},
			"status": {Kind: "text"},
		},
	}
	res, err := Run(testDataset(t), rules)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Fatalf("unexpected issues: %v", res.Issues)
	}
}

func TestKindMismatch(t *testing.T) {
	rules := &Rules{Columns: map[string]ColumnRule{"status": {Kind: "numeric"}}}
	res, err := Run(testDataset(t), rules)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed || res.Issues[0].Rule != "kind" {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestUnlistedColumnIsSoftIssue(t *testing.T) {
	rules := &Rules{Columns: map[string]ColumnRule{"ghost": {Kind: "numeric"}}}
	res, err := Run(testDataset(t), rules)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed || res.Issues[0].Rule != "presence" {
		t.Fatalf("issues = %v", res.Issues)
	}
}

func TestIssuesAreOrderedByColumnName(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewText("b", []string{"x"}),
		dataset.NewText("a", []string{"x"}),
		dataset.NewText("c", []string{"x"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	rules := &Rules{Columns: map[string]ColumnRule{
		"b": {Kind: "numeric"},
		"c": {Kind: "numeric"},
		"a": {Kind: "numeric"},
	}}
	for run := 0; run < 20; run++ {
		res, err := Run(ds, rules)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Issues) != 3 {
			t.Fatalf("issues = %v", res.Issues)
		}
		for i, want := range []string{"a", "b", "c"} {
			if res.Issues[i].Column != want {
				t.Fatalf("run %d: issue %d is for column %s, want %s", run, i, res.Issues[i].Column, want)
			}
		}
	}
}

func TestParseRules(t *testing.T) {
	raw := []byte(`{"required_columns":["a"],"columns":{"a":{"kind":"numeric","min":0,"max":10}}}`)
	rules, err := ParseRules(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules.RequiredColumns) != 1 || rules.Columns["a"].Min == nil {
		t.Fatalf("rules = %+v", rules)
	}
	if _, err := ParseRules([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
