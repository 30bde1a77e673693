// Package sheet is the host side of the grid: it owns the canonical rows,
// applies committed edits and row mutations, and publishes snapshots.
package sheet

import (
	"fmt"
	"sync"

	"github.com/vanderheijden86/gridedit/pkg/model"
	"github.com/vanderheijden86/gridedit/pkg/rows"
)

// Options configures a Sheet.
type Options struct {
	// AllowAdd and AllowRemove gate the row mutation affordances.
	AllowAdd    bool
	AllowRemove bool
	// Mutator generates ids and defaults for inserted rows.
	Mutator rows.Mutator
}

// Sheet holds the current tree. It is safe for concurrent use; the file
// watcher replaces data from its own goroutine.
type Sheet struct {
	mu       sync.RWMutex
	tree     []*model.RowNode
	revision uint64
	retired  map[string]bool
	mutator  rows.Mutator
	opts     Options
}

// New wraps an already built tree.
func New(tree []*model.RowNode, opts Options) *Sheet {
	s := &Sheet{
		tree:     tree,
		revision: 1,
		retired:  make(map[string]bool),
		opts:     opts,
	}
	s.mutator = opts.Mutator
	base := opts.Mutator.NewID
	s.mutator.NewID = func() string {
		for {
			var id string
			if base != nil {
				id = base()
			} else {
				id = rows.DefaultID()
			}
			if !s.retired[id] {
				return id
			}
		}
	}
	return s
}

// FromRecords builds the tree from host records.
func FromRecords(records []model.Record, opts Options) (*Sheet, error) {
	tree, err := rows.BuildTree(records)
	if err != nil {
		return nil, fmt.Errorf("building rows: %w", err)
	}
	return New(tree, opts), nil
}

// Snapshot returns the current rows.
func (s *Sheet) Snapshot() *rows.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rows.NewSnapshot(s.tree, s.revision)
}

// Revision increases on every change.
func (s *Sheet) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// CanAdd reports whether sub-rows may be inserted.
func (s *Sheet) CanAdd() bool { return s.opts.AllowAdd }

// CanRemove reports whether rows may be removed.
func (s *Sheet) CanRemove() bool { return s.opts.AllowRemove }

// ApplyEdit writes one committed value. It has the edit callback's shape so
// it can be handed to the controller directly. Unknown rows are ignored.
func (s *Sheet) ApplyEdit(rowID, columnKey string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := rows.Find(s.tree, rowID); !ok {
		return
	}
	s.tree = rows.UpdateField(s.tree, rowID, columnKey, value)
	s.revision++
}

// AddRow appends a sub-row under parentID and returns its id. ok is false
// when adding is not allowed or the parent is gone.
func (s *Sheet) AddRow(parentID string) (id string, ok bool) {
	if !s.opts.AllowAdd {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, child := s.mutator.AddSubRow(s.tree, parentID)
	if child == nil {
		return "", false
	}
	s.tree = tree
	s.revision++
	return child.ID, true
}

// RemoveRow drops a row and its descendants. Removed ids are never handed
// out again by AddRow.
func (s *Sheet) RemoveRow(id string) bool {
	if !s.opts.AllowRemove {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, found := rows.Locate(s.tree, id)
	if !found {
		return false
	}
	for _, gone := range rows.IDs([]*model.RowNode{loc.Node}) {
		s.retired[gone] = true
	}
	s.tree = s.mutator.RemoveRow(s.tree, id)
	s.revision++
	return true
}

// Replace swaps in a freshly loaded tree. A tree with duplicate ids is
// refused and the current rows stay in place.
func (s *Sheet) Replace(tree []*model.RowNode) error {
	if err := rows.CheckUnique(tree); err != nil {
		return fmt.Errorf("replacing rows: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	s.revision++
	return nil
}
