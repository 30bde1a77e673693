package rows

import (
	"github.com/google/uuid"

	"github.com/vanderheijden86/gridedit/pkg/model"
)

// Mutator inserts and removes rows. The zero value generates UUID ids and
// leaves new rows empty.
type Mutator struct {
	// NewID returns a fresh row id. It must not return an id already in use
	// or one removed earlier in the session.
	NewID func() string
	// Defaults returns the initial fields of a sub-row created under parent.
	Defaults func(parent *model.RowNode) map[string]any
}

var defaultMutator Mutator

// AddSubRow appends an empty child under parentID using UUID ids.
func AddSubRow(tree []*model.RowNode, parentID string) ([]*model.RowNode, *model.RowNode) {
	return defaultMutator.AddSubRow(tree, parentID)
}

// RemoveRow drops targetID and its subtree wherever it sits.
func RemoveRow(tree []*model.RowNode, targetID string) []*model.RowNode {
	return defaultMutator.RemoveRow(tree, targetID)
}

// AddSubRow appends a new child to the node with id parentID and returns the
// new tree and the inserted child. Ancestors along the path are copied;
// everything else is shared. When parentID is not in the tree the original
// slice is returned with a nil child.
func (m Mutator) AddSubRow(tree []*model.RowNode, parentID string) ([]*model.RowNode, *model.RowNode) {
	loc, ok := Locate(tree, parentID)
	if !ok {
		return tree, nil
	}

	parent := loc.Node
	child := &model.RowNode{
		ID:       m.freshID(tree),
		Fields:   m.defaults(parent),
		GroupKey: parent.GroupKey,
	}

	updated := parent.ShallowCopy()
	updated.Children = make([]*model.RowNode, len(parent.Children), len(parent.Children)+1)
	copy(updated.Children, parent.Children)
	updated.Children = append(updated.Children, child)

	return replacePath(tree, loc, updated), child
}

// RemoveRow filters out the node with id targetID at every level and
// rebuilds the ancestors that lost a child. The original slice is returned
// when nothing matched.
func (m Mutator) RemoveRow(tree []*model.RowNode, targetID string) []*model.RowNode {
	out, changed := removeFrom(tree, targetID)
	if !changed {
		return tree
	}
	return out
}

func removeFrom(nodes []*model.RowNode, targetID string) ([]*model.RowNode, bool) {
	var out []*model.RowNode
	changed := false
	for i, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == targetID {
			if !changed {
				out = append(make([]*model.RowNode, 0, len(nodes)), nodes[:i]...)
				changed = true
			}
			continue
		}
		kept := n
		if len(n.Children) > 0 {
			if kids, ok := removeFrom(n.Children, targetID); ok {
				kept = n.ShallowCopy()
				kept.Children = kids
				if !changed {
					out = append(make([]*model.RowNode, 0, len(nodes)), nodes[:i]...)
					changed = true
				}
			}
		}
		if changed {
			out = append(out, kept)
		}
	}
	if !changed {
		return nodes, false
	}
	return out, true
}

// UpdateField returns a tree where one field of the node id holds value.
// A nil value removes the field. Unknown ids return the original slice.
func UpdateField(tree []*model.RowNode, id, key string, value any) []*model.RowNode {
	loc, ok := Locate(tree, id)
	if !ok {
		return tree
	}
	return replacePath(tree, loc, loc.Node.WithField(key, value))
}

// replacePath swaps loc.Node for updated, copying each ancestor on the way
// back to the top level.
func replacePath(tree []*model.RowNode, loc Location, updated *model.RowNode) []*model.RowNode {
	replacement := updated
	target := loc.Node
	for i := len(loc.Ancestors) - 1; i >= 0; i-- {
		anc := loc.Ancestors[i]
		c := anc.ShallowCopy()
		c.Children = replaceIn(anc.Children, target, replacement)
		target, replacement = anc, c
	}
	return replaceIn(tree, target, replacement)
}

func replaceIn(nodes []*model.RowNode, target, replacement *model.RowNode) []*model.RowNode {
	out := make([]*model.RowNode, len(nodes))
	copy(out, nodes)
	for i, n := range out {
		if n == target {
			out[i] = replacement
			break
		}
	}
	return out
}

// freshID asks the generator until it returns an id not present in tree.
func (m Mutator) freshID(tree []*model.RowNode) string {
	for {
		id := m.newID()
		if _, taken := Find(tree, id); !taken && id != "" {
			return id
		}
	}
}

func (m Mutator) newID() string {
	if m.NewID != nil {
		return m.NewID()
	}
	return DefaultID()
}

// DefaultID returns a random UUID row id.
func DefaultID() string {
	return uuid.NewString()
}

func (m Mutator) defaults(parent *model.RowNode) map[string]any {
	if m.Defaults != nil {
		if f := m.Defaults(parent); f != nil {
			return f
		}
	}
	return map[string]any{}
}
