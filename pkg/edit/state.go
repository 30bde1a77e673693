package edit

// CellKey addresses one cell. Edit state is tracked independently per key.
type CellKey struct {
	Group  string
	RowID  string
	Column string
}

// ErrorMap is an immutable snapshot of per-cell validation state. A cell is
// present once it has been focused; an empty message means currently valid.
// Absence means no error is known.
type ErrorMap struct {
	cells map[CellKey]string
}

// Message returns the error message for a cell, or "".
func (m ErrorMap) Message(k CellKey) string {
	return m.cells[k]
}

// Known reports whether the cell has been focused at least once.
func (m ErrorMap) Known(k CellKey) bool {
	_, ok := m.cells[k]
	return ok
}

// HasError reports whether the cell currently carries an error.
func (m ErrorMap) HasError(k CellKey) bool {
	return m.cells[k] != ""
}

// RowHasError reports whether any cell of the row carries an error.
func (m ErrorMap) RowHasError(group, rowID string) bool {
	for k, msg := range m.cells {
		if msg != "" && k.Group == group && k.RowID == rowID {
			return true
		}
	}
	return false
}

// Len returns the number of known cells.
func (m ErrorMap) Len() int {
	return len(m.cells)
}

// Errors returns every cell currently carrying an error.
func (m ErrorMap) Errors() map[CellKey]string {
	out := make(map[CellKey]string)
	for k, msg := range m.cells {
		if msg != "" {
			out[k] = msg
		}
	}
	return out
}

// with returns a copy of the map with one cell set.
func (m ErrorMap) with(k CellKey, msg string) ErrorMap {
	next := make(map[CellKey]string, len(m.cells)+1)
	for key, v := range m.cells {
		next[key] = v
	}
	next[k] = msg
	return ErrorMap{cells: next}
}

// filter returns a copy keeping only cells for which keep returns true.
func (m ErrorMap) filter(keep func(CellKey) bool) ErrorMap {
	next := make(map[CellKey]string, len(m.cells))
	for key, v := range m.cells {
		if keep(key) {
			next[key] = v
		}
	}
	return ErrorMap{cells: next}
}

// Session is the ephemeral state of one cell between focus and blur.
type Session struct {
	Cell         CellKey
	OriginalText string
	Message      string
}

type sessionMap map[CellKey]Session

func (s sessionMap) with(k CellKey, sess Session) sessionMap {
	next := make(sessionMap, len(s)+1)
	for key, v := range s {
		next[key] = v
	}
	next[k] = sess
	return next
}

func (s sessionMap) without(k CellKey) sessionMap {
	if _, ok := s[k]; !ok {
		return s
	}
	next := make(sessionMap, len(s))
	for key, v := range s {
		if key != k {
			next[key] = v
		}
	}
	return next
}
