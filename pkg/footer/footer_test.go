package footer

import (
	"testing"

	"github.com/vanderheijden86/gridedit/pkg/schema"
)

func columns(keys ...string) []schema.Column {
	cols := make([]schema.Column, len(keys))
	for i, k := range keys {
		cols[i] = schema.Column{ID: k}
	}
	return cols
}

// TestRowAlignment verifies values follow column order and gaps stay empty.
func TestRowAlignment(t *testing.T) {
	cols := columns("name", "rate", "amount")

	tests := []struct {
		name   string
		values map[string]any
		label  string
		want   []string
	}{
		{
			name:   "label fills first column",
			values: map[string]any{"amount": 1500.0},
			label:  "Total",
			want:   []string{"Total", "", "1,500"},
		},
		{
			name:   "first column value wins over label",
			values: map[string]any{"name": "Sum", "rate": 3},
			label:  "Total",
			want:   []string{"Sum", "3", ""},
		},
		{
			name:  "no values",
			label: "Total",
			want:  []string{"Total", "", ""},
		},
		{
			name:   "no label",
			values: map[string]any{"rate": 1234567.25},
			want:   []string{"", "1,234,567.25", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := Row(cols, tt.values, tt.label)
			got := Values(cells)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d cells, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("cell %d = %q, want %q", i, got[i], tt.want[i])
				}
				if cells[i].Column != schema.KeyOf(cols[i]) {
					t.Errorf("cell %d column = %q", i, cells[i].Column)
				}
			}
		})
	}
}

func TestRowMarksLabel(t *testing.T) {
	cells := Row(columns("a", "b"), nil, "Total")
	if !cells[0].Label {
		t.Error("expected first cell to be marked as label")
	}
	if cells[1].Label {
		t.Error("second cell should not be a label")
	}
}

func TestRowEmptyColumns(t *testing.T) {
	if got := Row(nil, map[string]any{"a": 1}, "Total"); len(got) != 0 {
		t.Errorf("Row(nil) = %v, want empty", got)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{0.0, "0"},
		{-9876543.0, "-9,876,543"},
		{12.5, "12.5"},
		{int64(1000000), "1,000,000"},
		{999, "999"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Display(Cell{Value: tt.in}); got != tt.want {
			t.Errorf("Display(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
