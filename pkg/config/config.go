// Package config loads grid definitions from .gridedit/grid.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/gridedit/pkg/disable"
	"github.com/vanderheijden86/gridedit/pkg/schema"
	"github.com/vanderheijden86/gridedit/pkg/validate"
)

// ErrNoColumns is returned for a grid without columns.
var ErrNoColumns = errors.New("grid must declare at least one column")

// Column types.
const (
	TypeText   = "text"
	TypeNumber = "number"
)

// DefaultExpandDepth opens top-level rows on first display.
const DefaultExpandDepth = 1

// Config is one grid file.
type Config struct {
	// Title is shown above the grid
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Data is the JSON records file, relative to the config's project root
	Data string `yaml:"data" json:"data"`

	Columns []ColumnConfig `yaml:"columns" json:"columns"`

	// DisabledRows is either a list of row positions or a map of group key
	// to positions
	DisabledRows    disable.Spec `yaml:"disabled_rows,omitempty" json:"-"`
	DisabledColumns []string     `yaml:"disabled_columns,omitempty" json:"disabled_columns,omitempty"`

	Footer FooterConfig `yaml:"footer,omitempty" json:"footer,omitempty"`

	AllowAdd    bool `yaml:"allow_add,omitempty" json:"allow_add,omitempty"`
	AllowRemove bool `yaml:"allow_remove,omitempty" json:"allow_remove,omitempty"`

	// ExpandDepth is how many levels start expanded (default: 1)
	ExpandDepth *int `yaml:"expand_depth,omitempty" json:"expand_depth,omitempty"`

	// StateDir holds expansion state (default: the config's directory)
	StateDir string `yaml:"state_dir,omitempty" json:"state_dir,omitempty"`

	// root is the directory paths are resolved against
	root string
}

// ColumnConfig declares one column.
type ColumnConfig struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	Accessor string `yaml:"accessor,omitempty" json:"accessor,omitempty"`
	Header   string `yaml:"header,omitempty" json:"header,omitempty"`

	// Type is "text" or "number" (default: text)
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	// Rules is a validator tag chain, e.g. "gte=0,lte=10000"
	Rules    string `yaml:"rules,omitempty" json:"rules,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Message  string `yaml:"message,omitempty" json:"message,omitempty"`

	// Messages overrides the message of individual tags, e.g. lte: "too high"
	Messages map[string]string `yaml:"messages,omitempty" json:"messages,omitempty"`

	Width    int `yaml:"width,omitempty" json:"width,omitempty"`
	MinWidth int `yaml:"min_width,omitempty" json:"min_width,omitempty"`
	MaxWidth int `yaml:"max_width,omitempty" json:"max_width,omitempty"`
}

// FooterConfig carries precomputed totals.
type FooterConfig struct {
	Label  string         `yaml:"label,omitempty" json:"label,omitempty"`
	Values map[string]any `yaml:"values,omitempty" json:"values,omitempty"`
}

// FieldError points at the offending field of an invalid config.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Msg
}

// Key returns the column's resolved key.
func (c ColumnConfig) Key() string {
	return schema.KeyOf(schema.Column{ID: c.ID, Accessor: c.Accessor})
}

// Rule builds the column's validator. Text columns without rules have none
// and commit raw text.
func (c ColumnConfig) Rule() *validate.Rule {
	p := schema.PrimitiveText
	if c.Type == TypeNumber {
		p = schema.PrimitiveNumber
	} else if c.Rules == "" && !c.Optional && c.Message == "" && len(c.Messages) == 0 {
		return nil
	}

	r := validate.Tag(p, c.Rules)
	if c.Optional {
		r.Optional()
	}
	if c.Message != "" {
		r.Message(c.Message)
	}
	for tag, msg := range c.Messages {
		r.MessageFor(tag, msg)
	}
	return r
}

// Column converts the declaration.
func (c ColumnConfig) Column() schema.Column {
	col := schema.Column{
		ID:       c.ID,
		Accessor: c.Accessor,
		Header:   c.Header,
		Sizing: schema.Sizing{
			Width:    c.Width,
			MinWidth: c.MinWidth,
			MaxWidth: c.MaxWidth,
		},
	}
	if r := c.Rule(); r != nil {
		col.Validator = r
	}
	return col
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return ErrNoColumns
	}

	seen := make(map[string]bool)
	for i, col := range c.Columns {
		field := fmt.Sprintf("columns[%d]", i)
		key := col.Key()
		if key == "" {
			return &FieldError{Field: field, Msg: "id or accessor is required"}
		}
		if seen[key] {
			return &FieldError{Field: field, Msg: fmt.Sprintf("duplicate key %q", key)}
		}
		seen[key] = true

		if col.Type != "" && col.Type != TypeText && col.Type != TypeNumber {
			return &FieldError{Field: field + ".type", Msg: fmt.Sprintf("unknown type %q", col.Type)}
		}
		if r := col.Rule(); r != nil {
			if err := r.Check(); err != nil {
				return &FieldError{Field: field + ".rules", Msg: err.Error()}
			}
		}
		if col.MinWidth > 0 && col.MaxWidth > 0 && col.MinWidth > col.MaxWidth {
			return &FieldError{Field: field, Msg: "min_width exceeds max_width"}
		}
	}

	for i, key := range c.DisabledColumns {
		if !seen[key] {
			return &FieldError{Field: fmt.Sprintf("disabled_columns[%d]", i), Msg: fmt.Sprintf("unknown column %q", key)}
		}
	}
	for key := range c.Footer.Values {
		if !seen[key] {
			return &FieldError{Field: "footer.values", Msg: fmt.Sprintf("unknown column %q", key)}
		}
	}
	if c.ExpandDepth != nil && *c.ExpandDepth < 0 {
		return &FieldError{Field: "expand_depth", Msg: "must not be negative"}
	}
	return nil
}

// Registry builds the column registry in declaration order.
func (c *Config) Registry() (*schema.Registry, error) {
	cols := make([]schema.Column, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = col.Column()
	}
	return schema.NewRegistry(cols...)
}

// Policy returns the disablement policy.
func (c *Config) Policy() disable.Policy {
	return disable.Policy{
		Rows:    c.DisabledRows.RowSpec,
		Columns: c.DisabledColumns,
	}
}

// Depth returns the effective expand depth.
func (c *Config) Depth() int {
	if c.ExpandDepth == nil {
		return DefaultExpandDepth
	}
	return *c.ExpandDepth
}

// Root returns the directory relative paths resolve against.
func (c *Config) Root() string {
	return c.root
}

// DataPath resolves Data against Root.
func (c *Config) DataPath() string {
	return c.resolve(c.Data)
}

// StatePath resolves StateDir against Root.
func (c *Config) StatePath() string {
	if c.StateDir == "" {
		return filepath.Join(c.root, configDir)
	}
	return c.resolve(c.StateDir)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// LoadConfig loads a grid file. Relative paths inside it resolve against the
// directory containing .gridedit/, or the file's own directory otherwise.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if filepath.Base(dir) == configDir {
		dir = filepath.Dir(dir)
	}
	cfg.root = dir
	return cfg, nil
}

// Parse decodes and validates grid YAML. Paths resolve against the working
// directory.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing grid config: %w", err)
	}

	// Apply defaults
	for i := range cfg.Columns {
		cfg.Columns[i].Type = strings.ToLower(strings.TrimSpace(cfg.Columns[i].Type))
		if cfg.Columns[i].Type == "" {
			cfg.Columns[i].Type = TypeText
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid config: %w", err)
	}
	cfg.root = "."
	return &cfg, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
