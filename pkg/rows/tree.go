// Package rows builds and edits the immutable row tree behind the grid.
//
// Trees are slices of *model.RowNode. Every operation that changes a tree
// returns a new slice; nodes reachable from an earlier tree are never
// modified, so a renderer may keep reading an old snapshot while a new one is
// being built.
package rows

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/gridedit/pkg/model"
)

// ErrDuplicateID is returned when two records share an ID anywhere in the
// tree, nested or not.
var ErrDuplicateID = errors.New("duplicate row id")

// BuildTree converts host records into row nodes.
//
// Nested Children are kept as given. Flat records are attached under the
// record named by ParentID; a record whose parent is not present becomes a
// top-level row rather than disappearing. Parent cycles are broken by
// promoting the first record of the cycle to the top level.
func BuildTree(records []model.Record) ([]*model.RowNode, error) {
	if len(records) == 0 {
		return nil, nil
	}

	// Step 1: flatten nested input and index every record by id.
	var flat []model.Record
	var collect func(rec model.Record, parentID string)
	collect = func(rec model.Record, parentID string) {
		if rec.ParentID == "" {
			rec.ParentID = parentID
		}
		kids := rec.Children
		rec.Children = nil
		flat = append(flat, rec)
		for _, kid := range kids {
			collect(kid, rec.ID)
		}
	}
	for _, rec := range records {
		collect(rec, "")
	}

	byID := make(map[string]int, len(flat))
	for i, rec := range flat {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		byID[rec.ID] = i
	}

	// Step 2: parent -> children index, in input order.
	childrenOf := make(map[string][]int)
	var rootIdx []int
	for i, rec := range flat {
		if _, ok := byID[rec.ParentID]; rec.ParentID != "" && ok {
			childrenOf[rec.ParentID] = append(childrenOf[rec.ParentID], i)
			continue
		}
		rootIdx = append(rootIdx, i)
	}

	// Step 3: build recursively. Records never reached from a root are part
	// of a parent cycle; the first of them is promoted and the walk repeats.
	placed := make(map[string]bool, len(flat))
	var build func(i int, path map[string]bool) *model.RowNode
	build = func(i int, path map[string]bool) *model.RowNode {
		rec := flat[i]
		placed[rec.ID] = true
		path[rec.ID] = true
		defer delete(path, rec.ID)

		node := &model.RowNode{
			ID:       rec.ID,
			Fields:   copyFields(rec.Fields),
			GroupKey: rec.GroupKey,
		}
		for _, ci := range childrenOf[rec.ID] {
			if path[flat[ci].ID] || placed[flat[ci].ID] {
				continue
			}
			node.Children = append(node.Children, build(ci, path))
		}
		return node
	}

	var roots []*model.RowNode
	for _, i := range rootIdx {
		roots = append(roots, build(i, make(map[string]bool)))
	}
	for i, rec := range flat {
		if !placed[rec.ID] {
			roots = append(roots, build(i, make(map[string]bool)))
		}
	}

	return roots, nil
}

func copyFields(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Find returns the node with the given id using a depth-first search that
// includes collapsed subtrees.
func Find(tree []*model.RowNode, id string) (*model.RowNode, bool) {
	loc, ok := Locate(tree, id)
	if !ok {
		return nil, false
	}
	return loc.Node, true
}

// Location describes where a node sits in its tree.
type Location struct {
	Node *model.RowNode
	// Depth is 0 for top-level rows.
	Depth int
	// Index is the node's position among its siblings.
	Index int
	// Ancestors runs from the top-level row down to the direct parent.
	Ancestors []*model.RowNode
}

// Top returns the top-level row the node belongs to.
func (l Location) Top() *model.RowNode {
	if len(l.Ancestors) > 0 {
		return l.Ancestors[0]
	}
	return l.Node
}

// ParentID returns the direct parent's id, or "" for top-level rows.
func (l Location) ParentID() string {
	if len(l.Ancestors) == 0 {
		return ""
	}
	return l.Ancestors[len(l.Ancestors)-1].ID
}

// Locate finds a node and its position by depth-first search.
func Locate(tree []*model.RowNode, id string) (Location, bool) {
	var path []*model.RowNode
	var walk func(nodes []*model.RowNode) (Location, bool)
	walk = func(nodes []*model.RowNode) (Location, bool) {
		for i, n := range nodes {
			if n == nil {
				continue
			}
			if n.ID == id {
				return Location{
					Node:      n,
					Depth:     len(path),
					Index:     i,
					Ancestors: append([]*model.RowNode(nil), path...),
				}, true
			}
			if len(n.Children) == 0 {
				continue
			}
			path = append(path, n)
			if loc, ok := walk(n.Children); ok {
				return loc, true
			}
			path = path[:len(path)-1]
		}
		return Location{}, false
	}
	return walk(tree)
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn stops the walk.
func Walk(tree []*model.RowNode, fn func(n *model.RowNode, depth int) bool) {
	var walk func(nodes []*model.RowNode, depth int) bool
	walk = func(nodes []*model.RowNode, depth int) bool {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(tree, 0)
}

// IDs returns every id in the tree, depth-first.
func IDs(tree []*model.RowNode) []string {
	var ids []string
	Walk(tree, func(n *model.RowNode, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree.
func Count(tree []*model.RowNode) int {
	count := 0
	Walk(tree, func(*model.RowNode, int) bool {
		count++
		return true
	})
	return count
}

// CheckUnique returns ErrDuplicateID if any id occurs twice.
func CheckUnique(tree []*model.RowNode) error {
	seen := make(map[string]bool)
	var dup string
	Walk(tree, func(n *model.RowNode, _ int) bool {
		if seen[n.ID] {
			dup = n.ID
			return false
		}
		seen[n.ID] = true
		return true
	})
	if dup != "" {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	return nil
}
