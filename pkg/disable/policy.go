// Package disable decides which rows and columns of the grid accept edits.
package disable

import (
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// RowSpec selects disabled row positions. It is a closed variant: either
// FlatRows, applying within every group, or GroupRows, applying only within
// the named groups.
type RowSpec interface {
	rowSpec()
}

// FlatRows disables the listed row positions in every group.
type FlatRows []int

// GroupRows disables row positions per group key.
type GroupRows map[string][]int

func (FlatRows) rowSpec()  {}
func (GroupRows) rowSpec() {}

// IsRowDisabled reports whether the row at index within group is disabled.
// A nil spec disables nothing; a group missing from GroupRows has no
// disabled rows.
func IsRowDisabled(spec RowSpec, group string, index int) bool {
	switch s := spec.(type) {
	case nil:
		return false
	case FlatRows:
		return slices.Contains(s, index)
	case GroupRows:
		rows, ok := s[group]
		if !ok {
			return false
		}
		return slices.Contains(rows, index)
	default:
		return false
	}
}

// IsColumnDisabled reports whether key is in the disabled column list.
func IsColumnDisabled(keys []string, key string) bool {
	return slices.Contains(keys, key)
}

// Policy combines row and column disablement.
type Policy struct {
	Rows    RowSpec
	Columns []string
}

// IsCellDisabled reports whether either the row or the column is disabled.
func (p Policy) IsCellDisabled(group string, index int, key string) bool {
	return IsRowDisabled(p.Rows, group, index) || IsColumnDisabled(p.Columns, key)
}

// IsRowDisabled is the row half of IsCellDisabled.
func (p Policy) IsRowDisabled(group string, index int) bool {
	return IsRowDisabled(p.Rows, group, index)
}

// Spec wraps a RowSpec for YAML decoding: a sequence decodes to FlatRows and
// a mapping decodes to GroupRows.
type Spec struct {
	RowSpec
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Spec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var flat []int
		if err := node.Decode(&flat); err != nil {
			return fmt.Errorf("disabled rows list: %w", err)
		}
		s.RowSpec = FlatRows(flat)
	case yaml.MappingNode:
		var groups map[string][]int
		if err := node.Decode(&groups); err != nil {
			return fmt.Errorf("disabled rows map: %w", err)
		}
		s.RowSpec = GroupRows(groups)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			s.RowSpec = nil
			return nil
		}
		return fmt.Errorf("line %d: disabled rows must be a list or a map, got %q", node.Line, node.Value)
	default:
		return fmt.Errorf("line %d: disabled rows must be a list or a map", node.Line)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Spec) MarshalYAML() (any, error) {
	switch v := s.RowSpec.(type) {
	case nil:
		return nil, nil
	case FlatRows:
		return []int(v), nil
	case GroupRows:
		return map[string][]int(v), nil
	default:
		return nil, fmt.Errorf("unknown row spec %T", v)
	}
}

// Describe renders the spec for logs and robot output.
func Describe(spec RowSpec) string {
	switch s := spec.(type) {
	case nil:
		return "none"
	case FlatRows:
		return fmt.Sprintf("rows %v in every group", []int(s))
	case GroupRows:
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := ""
		for i, k := range keys {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%q: %v", k, s[k])
		}
		return "rows {" + out + "}"
	default:
		return fmt.Sprintf("%T", spec)
	}
}
