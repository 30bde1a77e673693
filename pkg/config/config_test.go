package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/gridedit/pkg/disable"
	"github.com/vanderheijden86/gridedit/pkg/schema"
	"github.com/vanderheijden86/gridedit/pkg/validate"
)

const minimalGrid = `
data: rows.json
columns:
  - id: name
`

const fullGrid = `
title: Budget
data: data/rows.json
columns:
  - id: name
    header: Name
    width: 20
  - accessor: rate
    type: number
    rules: gte=0,lte=10000
  - id: amount
    type: Number
    rules: gte=0
    messages:
      gte: cannot be negative
  - id: bonus
    type: number
    optional: true
  - id: code
    rules: max=4
    message: too long
disabled_rows:
  A: [0]
disabled_columns: [code]
footer:
  label: Total
  values:
    amount: 1500
allow_add: true
expand_depth: 2
state_dir: state
`

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	path := writeGrid(t, root, fullGrid)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Title != "Budget" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if got, want := cfg.DataPath(), filepath.Join(root, "data", "rows.json"); got != want {
		t.Errorf("DataPath() = %q, want %q", got, want)
	}
	if got, want := cfg.StatePath(), filepath.Join(root, "state"); got != want {
		t.Errorf("StatePath() = %q, want %q", got, want)
	}
	if cfg.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", cfg.Depth())
	}
	if !cfg.AllowAdd || cfg.AllowRemove {
		t.Errorf("allow flags = %v/%v", cfg.AllowAdd, cfg.AllowRemove)
	}
	if cfg.Columns[2].Type != TypeNumber {
		t.Errorf("type should be normalized, got %q", cfg.Columns[2].Type)
	}
	if cfg.Columns[0].Type != TypeText {
		t.Errorf("type should default to text, got %q", cfg.Columns[0].Type)
	}
	if cfg.Footer.Label != "Total" || cfg.Footer.Values["amount"] != 1500 {
		t.Errorf("footer = %+v", cfg.Footer)
	}
}

func TestConfigRegistry(t *testing.T) {
	cfg, err := Parse([]byte(fullGrid))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}

	if got := reg.Keys(); len(got) != 5 || got[1] != "rate" {
		t.Fatalf("Keys() = %v", got)
	}

	name, _ := reg.ByKey("name")
	if name.Validator != nil {
		t.Error("plain text column should have no validator")
	}
	if name.Sizing.Width != 20 {
		t.Errorf("width = %d", name.Sizing.Width)
	}

	rate, _ := reg.ByKey("rate")
	if !schema.IsNumeric(rate) {
		t.Error("rate should be numeric")
	}
	if res := validate.ParseAndValidate("15000", rate); res.Message != "must be at most 10000" {
		t.Errorf("rate message = %q", res.Message)
	}

	amount, _ := reg.ByKey("amount")
	if res := validate.ParseAndValidate("", amount); res.Message != "is required" {
		t.Errorf("amount message = %q", res.Message)
	}
	if res := validate.ParseAndValidate("-3", amount); res.Message != "cannot be negative" {
		t.Errorf("amount tag message = %q", res.Message)
	}

	bonus, _ := reg.ByKey("bonus")
	if res := validate.ParseAndValidate("", bonus); !res.Valid() {
		t.Errorf("optional bonus rejected blank: %q", res.Message)
	}

	code, _ := reg.ByKey("code")
	if res := validate.ParseAndValidate("abcdef", code); res.Message != "too long" {
		t.Errorf("code message = %q", res.Message)
	}
}

func TestConfigPolicy(t *testing.T) {
	cfg, err := Parse([]byte(fullGrid))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := cfg.Policy()
	if _, ok := p.Rows.(disable.GroupRows); !ok {
		t.Fatalf("expected group rows, got %T", p.Rows)
	}
	if !p.IsCellDisabled("A", 0, "rate") {
		t.Error("A/0 should be disabled")
	}
	if p.IsCellDisabled("B", 0, "rate") {
		t.Error("B/0 should be enabled")
	}
	if !p.IsCellDisabled("B", 3, "code") {
		t.Error("code column should be disabled")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalGrid))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Depth() != DefaultExpandDepth {
		t.Errorf("Depth() = %d", cfg.Depth())
	}
	if cfg.Policy().Rows != nil {
		t.Errorf("expected no disabled rows, got %v", cfg.Policy().Rows)
	}
	if got := cfg.StatePath(); got != filepath.Join(".", configDir) {
		t.Errorf("StatePath() = %q", got)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"duplicate key", "columns: [{id: a}, {accessor: a}]", "columns[1]"},
		{"missing key", "columns: [{header: A}]", "columns[0]"},
		{"unknown type", "columns: [{id: a, type: date}]", "columns[0].type"},
		{"bad rule", "columns: [{id: a, type: number, rules: bogus}]", "columns[0].rules"},
		{"widths", "columns: [{id: a, min_width: 9, max_width: 3}]", "columns[0]"},
		{"disabled column", "columns: [{id: a}]\ndisabled_columns: [b]", "disabled_columns[0]"},
		{"footer column", "columns: [{id: a}]\nfooter: {values: {b: 1}}", "footer.values"},
		{"depth", "columns: [{id: a}]\nexpand_depth: -1", "expand_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestValidateNoColumns(t *testing.T) {
	_, err := Parse([]byte("data: x.json\n"))
	if !errors.Is(err, ErrNoColumns) {
		t.Errorf("expected ErrNoColumns, got %v", err)
	}
}

func TestParseBadYAML(t *testing.T) {
	if _, err := Parse([]byte("columns: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Parse([]byte("columns: [{id: a}]\ndisabled_rows: yes")); err == nil {
		t.Error("expected disabled_rows scalar to be rejected")
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
