// Package edit implements the per-cell editing state machine of the grid.
//
// A cell is Idle until it is focused. While Editing, every input event is
// validated and its error recorded, but nothing reaches the host. Blur ends
// the session: unchanged text is discarded silently, changed text is
// validated once more and committed through the host callback only when
// valid. All state lives in maps keyed by (group, row id, column key) and is
// replaced wholesale on every change, so a renderer reading Errors between
// events never sees a partial update.
package edit

import (
	"sync/atomic"

	"github.com/vanderheijden86/gridedit/pkg/disable"
	"github.com/vanderheijden86/gridedit/pkg/rows"
	"github.com/vanderheijden86/gridedit/pkg/schema"
	"github.com/vanderheijden86/gridedit/pkg/validate"
)

// EditFunc receives one committed edit.
type EditFunc func(rowID, columnKey string, value any)

// Config configures a Controller.
type Config struct {
	Columns *schema.Registry
	Policy  disable.Policy
	OnEdit  EditFunc
	// Metrics is optional; nil uses unregistered counters.
	Metrics *Metrics
}

// Controller owns edit sessions and the error map for one grid.
type Controller struct {
	columns *schema.Registry
	policy  disable.Policy
	onEdit  EditFunc
	metrics *Metrics

	snapshot *rows.Snapshot
	errors   atomic.Pointer[ErrorMap]
	sessions atomic.Pointer[sessionMap]
}

// New creates a controller with no rows. Call SetSnapshot before use.
func New(cfg Config) *Controller {
	c := &Controller{
		columns: cfg.Columns,
		policy:  cfg.Policy,
		onEdit:  cfg.OnEdit,
		metrics: cfg.Metrics,
	}
	if c.metrics == nil {
		c.metrics = mustMetrics()
	}
	c.errors.Store(&ErrorMap{})
	c.sessions.Store(&sessionMap{})
	return c
}

// SetSnapshot supplies the rows the controller resolves cells against. The
// host calls it whenever it publishes new data.
func (c *Controller) SetSnapshot(s *rows.Snapshot) {
	c.snapshot = s
}

// SetPolicy replaces the disablement policy.
func (c *Controller) SetPolicy(p disable.Policy) {
	c.policy = p
}

// Errors returns the current error map snapshot.
func (c *Controller) Errors() ErrorMap {
	return *c.errors.Load()
}

// Session returns the open session for a cell.
func (c *Controller) Session(cell CellKey) (Session, bool) {
	s, ok := (*c.sessions.Load())[cell]
	return s, ok
}

// Editing reports whether the cell has an open session.
func (c *Controller) Editing(cell CellKey) bool {
	_, ok := c.Session(cell)
	return ok
}

// Disabled reports whether the cell accepts no edits. Cells whose row
// cannot be found are reported enabled; every event on them is a no-op.
func (c *Controller) Disabled(cell CellKey) bool {
	loc, ok := c.snapshot.Locate(cell.Group, cell.RowID)
	if !ok {
		return false
	}
	return c.policy.IsCellDisabled(cell.Group, loc.Index, cell.Column)
}

// target resolves the column of an editable cell. ok is false when the row
// or column is missing or the cell is disabled.
func (c *Controller) target(cell CellKey) (schema.Column, bool) {
	loc, found := c.snapshot.Locate(cell.Group, cell.RowID)
	if !found {
		return schema.Column{}, false
	}
	col, found := c.columns.ByKey(cell.Column)
	if !found {
		return schema.Column{}, false
	}
	if c.policy.IsCellDisabled(cell.Group, loc.Index, cell.Column) {
		return schema.Column{}, false
	}
	return col, true
}

// Focus opens a session capturing the currently displayed text.
func (c *Controller) Focus(cell CellKey, displayed string) {
	if _, ok := c.target(cell); !ok {
		return
	}
	c.putSession(Session{Cell: cell, OriginalText: displayed})
	if errs := c.Errors(); !errs.Known(cell) {
		c.putError(cell, "")
	}
}

// Input validates in-progress text and records the outcome. It never
// commits. The returned message is empty when the text is valid.
func (c *Controller) Input(cell CellKey, text string) string {
	sess, ok := c.Session(cell)
	if !ok {
		return ""
	}
	col, ok := c.target(cell)
	if !ok {
		return ""
	}
	res := validate.ParseAndValidate(text, col)
	sess.Message = res.Message
	c.putSession(sess)
	c.putError(cell, res.Message)
	return res.Message
}

// KeyDown reports whether a keystroke may modify the cell. Numeric columns
// only accept digits, '.', '-', navigation keys and the copy, cut,
// select-all, undo and paste accelerators. Disabled cells accept nothing and
// are not filtered.
func (c *Controller) KeyDown(cell CellKey, k Key) bool {
	col, ok := c.target(cell)
	if !ok {
		return false
	}
	if !schema.IsNumeric(col) {
		return true
	}
	c.metrics.KeystrokesChecked.Inc()
	if AllowNumericKey(k) {
		return true
	}
	c.metrics.KeystrokesBlocked.Inc()
	return false
}

// Paste reports whether clipboard text may be inserted. Numeric columns
// reject anything that is not a signed decimal. A rejected paste is not a
// validation error and leaves the error map untouched.
func (c *Controller) Paste(cell CellKey, text string) bool {
	col, ok := c.target(cell)
	if !ok {
		return false
	}
	if !schema.IsNumeric(col) {
		return true
	}
	if IsSignedDecimal(text) {
		c.metrics.Pastes.WithLabelValues("accepted").Inc()
		return true
	}
	c.metrics.Pastes.WithLabelValues("rejected").Inc()
	return false
}

// Blur closes the session. It returns true when an edit was committed.
//
// Unchanged text is discarded with no side effect. Changed text is
// validated; the error map is updated and the host callback runs only when
// the value is valid. If the row disappeared since focus, the session is
// dropped without committing.
func (c *Controller) Blur(cell CellKey, text string) bool {
	sess, ok := c.Session(cell)
	if !ok {
		return false
	}
	c.dropSession(cell)

	if text == sess.OriginalText {
		c.metrics.SkippedBlurs.Inc()
		return false
	}

	col, ok := c.target(cell)
	if !ok {
		return false
	}

	res := validate.ParseAndValidate(text, col)
	c.putError(cell, res.Message)
	if !res.Valid() {
		c.metrics.RejectedCommits.Inc()
		return false
	}

	if c.onEdit != nil {
		c.onEdit(cell.RowID, cell.Column, res.Value)
	}
	c.metrics.Commits.Inc()
	return true
}

// Prune forgets error and session state for rows missing from the current
// snapshot.
func (c *Controller) Prune() {
	live := func(k CellKey) bool {
		_, ok := c.snapshot.Locate(k.Group, k.RowID)
		return ok
	}
	next := c.Errors().filter(live)
	c.errors.Store(&next)

	sessions := *c.sessions.Load()
	for k := range sessions {
		if !live(k) {
			sessions = sessions.without(k)
		}
	}
	c.sessions.Store(&sessions)
}

func (c *Controller) putError(cell CellKey, msg string) {
	next := c.Errors().with(cell, msg)
	c.errors.Store(&next)
}

func (c *Controller) putSession(s Session) {
	next := c.sessions.Load().with(s.Cell, s)
	c.sessions.Store(&next)
}

func (c *Controller) dropSession(cell CellKey) {
	next := c.sessions.Load().without(cell)
	c.sessions.Store(&next)
}
