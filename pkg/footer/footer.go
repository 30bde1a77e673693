// Package footer aligns host-supplied totals with the grid's columns.
package footer

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/vanderheijden86/gridedit/pkg/model"
	"github.com/vanderheijden86/gridedit/pkg/schema"
)

// Cell is one footer position.
type Cell struct {
	Column string
	Value  any
	// Label is set when the cell shows the caller's label instead of a value.
	Label bool
}

// Row builds one footer cell per column, in column order. A column missing
// from values shows label if it is the first column and nothing otherwise.
// Values are shown as given; no totals are computed here.
func Row(columns []schema.Column, values map[string]any, label string) []Cell {
	out := make([]Cell, len(columns))
	for i, col := range columns {
		key := schema.KeyOf(col)
		out[i] = Cell{Column: key}
		if v, ok := values[key]; ok {
			out[i].Value = v
			continue
		}
		if i == 0 && label != "" {
			out[i].Value = label
			out[i].Label = true
		}
	}
	return out
}

// Display renders a footer cell. Numbers get thousands separators.
func Display(c Cell) string {
	switch v := c.Value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.FormatValue(v)
		}
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return humanize.Comma(int64(v))
		}
		return humanize.Commaf(v)
	case float32:
		return Display(Cell{Value: float64(v)})
	case int:
		return humanize.Comma(int64(v))
	case int64:
		return humanize.Comma(v)
	default:
		return model.FormatValue(v)
	}
}

// Values renders the whole row.
func Values(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = Display(c)
	}
	return out
}
