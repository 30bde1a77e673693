package edit

import (
	"strings"
	"unicode/utf8"

	"github.com/vanderheijden86/gridedit/pkg/validate"
)

// Key is one keystroke as seen by the controller. Name is either a single
// printable character ("7", ".", "a") or a named key ("backspace", "left").
type Key struct {
	Name string
	Ctrl bool
	Meta bool
}

// ParseKey reads the "ctrl+v" / "alt+x" / "left" notation used by terminal
// key events. "alt" and "cmd" both map to Meta.
func ParseKey(s string) Key {
	var k Key
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+") && len(s) > len("ctrl+"):
			k.Ctrl = true
			s = s[len("ctrl+"):]
			continue
		case strings.HasPrefix(s, "alt+") && len(s) > len("alt+"):
			k.Meta = true
			s = s[len("alt+"):]
			continue
		case strings.HasPrefix(s, "cmd+") && len(s) > len("cmd+"):
			k.Meta = true
			s = s[len("cmd+"):]
			continue
		}
		break
	}
	k.Name = s
	return k
}

func (k Key) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("ctrl+")
	}
	if k.Meta {
		b.WriteString("alt+")
	}
	b.WriteString(k.Name)
	return b.String()
}

// navigationKeys pass through numeric filtering.
var navigationKeys = map[string]bool{
	"backspace": true,
	"delete":    true,
	"left":      true,
	"right":     true,
	"up":        true,
	"down":      true,
	"tab":       true,
	"shift+tab": true,
	"home":      true,
	"end":       true,
}

// acceleratorKeys are copy, cut, select-all, undo and paste.
var acceleratorKeys = map[string]bool{
	"c": true,
	"x": true,
	"a": true,
	"z": true,
	"v": true,
}

// AllowNumericKey reports whether a keystroke may reach a numeric cell.
func AllowNumericKey(k Key) bool {
	if k.Ctrl || k.Meta {
		return acceleratorKeys[strings.ToLower(k.Name)]
	}
	if navigationKeys[k.Name] {
		return true
	}
	if utf8.RuneCountInString(k.Name) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(k.Name)
	return (r >= '0' && r <= '9') || r == '.' || r == '-'
}

// IsSignedDecimal reports whether clipboard text may enter a numeric cell.
// It accepts exactly what a numeric cell parses as a number.
func IsSignedDecimal(text string) bool {
	return validate.IsDecimal(text)
}
