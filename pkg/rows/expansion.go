package rows

import (
	"log"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/gridedit/pkg/model"
)

// Expansion answers whether a node's children are visible.
type Expansion interface {
	IsExpanded(n *model.RowNode, depth int) bool
}

// ExpandAll is an Expansion that shows every sub-row.
type ExpandAll struct{}

// IsExpanded implements Expansion.
func (ExpandAll) IsExpanded(*model.RowNode, int) bool { return true }

// FlatRow is one visible row produced by Flatten.
type FlatRow struct {
	Node     *model.RowNode
	Depth    int
	Index    int
	ParentID string
	Expanded bool
}

// Flatten lists visible rows depth-first. Children of a collapsed node are
// skipped; the collapsed node itself is still listed.
func Flatten(tree []*model.RowNode, exp Expansion) []FlatRow {
	if exp == nil {
		exp = ExpandAll{}
	}
	var out []FlatRow
	var walk func(nodes []*model.RowNode, depth int, parentID string)
	walk = func(nodes []*model.RowNode, depth int, parentID string) {
		for i, n := range nodes {
			if n == nil {
				continue
			}
			expanded := len(n.Children) > 0 && exp.IsExpanded(n, depth)
			out = append(out, FlatRow{
				Node:     n,
				Depth:    depth,
				Index:    i,
				ParentID: parentID,
				Expanded: expanded,
			})
			if expanded {
				walk(n.Children, depth+1, n.ID)
			}
		}
	}
	walk(tree, 0, "")
	return out
}

// ExpansionStateVersion is the current schema version of the state file.
const ExpansionStateVersion = 1

// expansionFileName is the filename for persisted expansion state.
const expansionFileName = "expansion.json"

// ExpansionState records explicit expand/collapse choices keyed by row id.
// Rows without an explicit choice are expanded when their depth is below
// DefaultDepth.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "row-1": true,
//	    "row-7": false
//	  }
//	}
//
// A missing or corrupt file means defaults; write failures are logged and
// never interrupt editing.
type ExpansionState struct {
	Version      int             `json:"version"`
	Expanded     map[string]bool `json:"expanded"`
	DefaultDepth int             `json:"-"`

	dir string
}

// NewExpansionState returns an empty state. An empty dir disables
// persistence.
func NewExpansionState(dir string, defaultDepth int) *ExpansionState {
	return &ExpansionState{
		Version:      ExpansionStateVersion,
		Expanded:     make(map[string]bool),
		DefaultDepth: defaultDepth,
		dir:          dir,
	}
}

// ExpansionStatePath returns the state file location inside dir.
func ExpansionStatePath(dir string) string {
	return filepath.Join(dir, expansionFileName)
}

// IsExpanded implements Expansion.
func (s *ExpansionState) IsExpanded(n *model.RowNode, depth int) bool {
	if s == nil {
		return true
	}
	if v, ok := s.Expanded[n.ID]; ok {
		return v
	}
	return depth < s.DefaultDepth
}

// Set records an explicit choice for one row and persists it.
func (s *ExpansionState) Set(id string, expanded bool) {
	s.Expanded[id] = expanded
	s.Save()
}

// Toggle flips the row's visible state given its depth.
func (s *ExpansionState) Toggle(n *model.RowNode, depth int) {
	if n == nil || len(n.Children) == 0 {
		return
	}
	s.Set(n.ID, !s.IsExpanded(n, depth))
}

// SetAll records the same choice for every node with children.
func (s *ExpansionState) SetAll(tree []*model.RowNode, expanded bool) {
	Walk(tree, func(n *model.RowNode, _ int) bool {
		if len(n.Children) > 0 {
			s.Expanded[n.ID] = expanded
		}
		return true
	})
	s.Save()
}

// ExpandAll opens every row with children.
func (s *ExpansionState) ExpandAll(tree []*model.RowNode) { s.SetAll(tree, true) }

// CollapseAll closes every row with children.
func (s *ExpansionState) CollapseAll(tree []*model.RowNode) { s.SetAll(tree, false) }

// Forget drops choices for ids no longer in the tree.
func (s *ExpansionState) Forget(tree []*model.RowNode) {
	live := make(map[string]bool)
	Walk(tree, func(n *model.RowNode, _ int) bool {
		live[n.ID] = true
		return true
	})
	for id := range s.Expanded {
		if !live[id] {
			delete(s.Expanded, id)
		}
	}
}

// Save writes the state file. Errors are logged, not returned.
func (s *ExpansionState) Save() {
	if s.dir == "" {
		return
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Printf("warning: failed to marshal expansion state: %v", err)
		return
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		log.Printf("warning: failed to create state directory %s: %v", s.dir, err)
		return
	}

	path := ExpansionStatePath(s.dir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("warning: failed to write expansion state to %s: %v", path, err)
	}
}

// Load restores explicit choices from disk. A missing file is the first run;
// a corrupt file or an unknown version falls back to defaults.
func (s *ExpansionState) Load() {
	if s.dir == "" {
		return
	}
	data, err := os.ReadFile(ExpansionStatePath(s.dir))
	if err != nil {
		return
	}

	var stored ExpansionState
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("warning: invalid expansion state file, using defaults: %v", err)
		return
	}
	if stored.Version != ExpansionStateVersion {
		log.Printf("warning: expansion state version %d not supported, using defaults", stored.Version)
		return
	}
	for id, v := range stored.Expanded {
		s.Expanded[id] = v
	}
}
