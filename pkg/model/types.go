package model

import (
	"fmt"
	"strconv"
)

// Ungrouped is the reserved group key for rows that carry no group. The
// ungrouped partition is rendered without a label row.
const Ungrouped = ""

// Record is one row as supplied by the host. Records may be nested through
// Children, linked flat through ParentID, or a mix of both.
type Record struct {
	ID       string         `json:"id" yaml:"id"`
	GroupKey string         `json:"group,omitempty" yaml:"group,omitempty"`
	ParentID string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Fields   map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	Children []Record       `json:"children,omitempty" yaml:"children,omitempty"`
}

// RowNode is one addressable record in the row tree.
//
// Nodes reachable from a published tree are never mutated in place; every
// change produces a new tree that copies the root-to-node path and shares the
// rest by reference.
type RowNode struct {
	ID       string
	Fields   map[string]any
	GroupKey string
	Children []*RowNode
}

// IsLeaf reports whether the node has no sub-rows.
func (n *RowNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Field returns the committed value for a column key, or nil when absent.
func (n *RowNode) Field(key string) any {
	if n == nil || n.Fields == nil {
		return nil
	}
	return n.Fields[key]
}

// Text returns the displayed text for a column key.
func (n *RowNode) Text(key string) string {
	return FormatValue(n.Field(key))
}

// ShallowCopy returns a copy of the node that shares Fields and Children with
// the original. Callers replace whichever of the two they intend to change.
func (n *RowNode) ShallowCopy() *RowNode {
	c := *n
	return &c
}

// WithField returns a copy of the node with one field replaced. The original
// field map is left untouched.
func (n *RowNode) WithField(key string, value any) *RowNode {
	c := n.ShallowCopy()
	c.Fields = make(map[string]any, len(n.Fields)+1)
	for k, v := range n.Fields {
		c.Fields[k] = v
	}
	if value == nil {
		delete(c.Fields, key)
	} else {
		c.Fields[key] = value
	}
	return c
}

// Validate checks that the record carries the data a row needs.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record ID cannot be empty")
	}
	if r.ParentID != "" && r.ParentID == r.ID {
		return fmt.Errorf("record %s cannot be its own parent", r.ID)
	}
	return nil
}

// FormatValue renders a committed value the way a cell displays it. Absent
// values render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
