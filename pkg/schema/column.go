// Package schema normalizes column definitions for the grid. It performs no
// validation itself; it only resolves stable keys and exposes the validator
// and numeric flag the other packages consume.
package schema

import "fmt"

// Primitive is the value type a validator declares.
type Primitive int

const (
	PrimitiveText Primitive = iota
	PrimitiveNumber
)

func (p Primitive) String() string {
	switch p {
	case PrimitiveNumber:
		return "number"
	default:
		return "text"
	}
}

// Validator checks a coerced cell value. Validate returns nil when the value
// is acceptable; otherwise the error lists the issues in reporting order.
type Validator interface {
	Primitive() Primitive
	Validate(value any) error
}

// Sizing is display-only width information.
type Sizing struct {
	Width    int
	MinWidth int
	MaxWidth int
}

// Column describes one grid column.
type Column struct {
	ID        string
	Accessor  string
	Header    string
	Validator Validator
	Sizing    Sizing
}

// KeyOf resolves the stable key of a column: explicit ID first, then the
// accessor name, then the empty string.
func KeyOf(c Column) string {
	if c.ID != "" {
		return c.ID
	}
	if c.Accessor != "" {
		return c.Accessor
	}
	return ""
}

// IsNumeric reports whether the column declares a validator whose primitive
// type is numeric.
func IsNumeric(c Column) bool {
	return c.Validator != nil && c.Validator.Primitive() == PrimitiveNumber
}

// Title returns the header text, falling back to the key.
func (c Column) Title() string {
	if c.Header != "" {
		return c.Header
	}
	return KeyOf(c)
}

// Registry holds the ordered column list. Column order defines display and
// footer order.
type Registry struct {
	columns []Column
	byKey   map[string]int
}

// NewRegistry creates a registry and registers the given columns in order.
func NewRegistry(cols ...Column) (*Registry, error) {
	r := &Registry{byKey: make(map[string]int)}
	for _, c := range cols {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a column. Two columns may not resolve to the same key.
func (r *Registry) Register(c Column) error {
	key := KeyOf(c)
	if _, dup := r.byKey[key]; dup {
		return fmt.Errorf("duplicate column key %q", key)
	}
	r.byKey[key] = len(r.columns)
	r.columns = append(r.columns, c)
	return nil
}

// ByKey returns the column registered under key.
func (r *Registry) ByKey(key string) (Column, bool) {
	if r == nil {
		return Column{}, false
	}
	i, ok := r.byKey[key]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// Columns returns the columns in display order.
func (r *Registry) Columns() []Column {
	if r == nil {
		return nil
	}
	return r.columns
}

// Keys returns the column keys in display order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.columns))
	for i, c := range r.columns {
		keys[i] = KeyOf(c)
	}
	return keys
}

// Len returns the number of registered columns.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.columns)
}
