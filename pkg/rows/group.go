package rows

import "github.com/vanderheijden86/gridedit/pkg/model"

// Group is a partition of top-level rows sharing a group key.
type Group struct {
	Key  string
	Rows []*model.RowNode
}

// Labeled reports whether the group is rendered with a label row. The
// ungrouped partition has none.
func (g Group) Labeled() bool {
	return g.Key != model.Ungrouped
}

// Groups is an ordered set of groups.
type Groups []Group

// GroupBy partitions top-level nodes by GroupKey. Groups appear in the order
// their first row appears; rows keep their input order within a group.
// Nesting is not consulted: sub-rows stay under their parent regardless of
// their own GroupKey.
func GroupBy(nodes []*model.RowNode) Groups {
	var groups Groups
	index := make(map[string]int)
	for _, n := range nodes {
		if n == nil {
			continue
		}
		i, ok := index[n.GroupKey]
		if !ok {
			i = len(groups)
			index[n.GroupKey] = i
			groups = append(groups, Group{Key: n.GroupKey})
		}
		groups[i].Rows = append(groups[i].Rows, n)
	}
	return groups
}

// Get returns the group with the given key.
func (gs Groups) Get(key string) (Group, bool) {
	for _, g := range gs {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Keys returns the group keys in display order.
func (gs Groups) Keys() []string {
	keys := make([]string, len(gs))
	for i, g := range gs {
		keys[i] = g.Key
	}
	return keys
}

// Snapshot is an immutable view of one tree together with its grouping.
// Hosts publish a new snapshot after every change.
type Snapshot struct {
	tree     []*model.RowNode
	groups   Groups
	revision uint64
}

// NewSnapshot groups tree and wraps it.
func NewSnapshot(tree []*model.RowNode, revision uint64) *Snapshot {
	return &Snapshot{tree: tree, groups: GroupBy(tree), revision: revision}
}

// Tree returns the top-level rows in input order.
func (s *Snapshot) Tree() []*model.RowNode {
	if s == nil {
		return nil
	}
	return s.tree
}

// Groups returns the grouping of the top-level rows.
func (s *Snapshot) Groups() Groups {
	if s == nil {
		return nil
	}
	return s.groups
}

// Revision identifies the snapshot within a host session.
func (s *Snapshot) Revision() uint64 {
	if s == nil {
		return 0
	}
	return s.revision
}

// Locate finds a row inside one group. Indexes are positions among
// siblings, so a top-level row's index is its position within the group.
func (s *Snapshot) Locate(group, id string) (Location, bool) {
	if s == nil {
		return Location{}, false
	}
	g, ok := s.groups.Get(group)
	if !ok {
		return Location{}, false
	}
	return Locate(g.Rows, id)
}

// Find looks a row up anywhere in the snapshot.
func (s *Snapshot) Find(id string) (*model.RowNode, bool) {
	if s == nil {
		return nil, false
	}
	return Find(s.tree, id)
}
