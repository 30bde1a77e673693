package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/vanderheijden86/gridedit/pkg/schema"
)

// Result is the outcome of parsing and validating one piece of cell text.
// Message is empty when the value is valid.
type Result struct {
	Value   any
	Message string
}

// Valid reports whether no issue was found.
func (r Result) Valid() bool {
	return r.Message == ""
}

// ParseAndValidate coerces raw cell text for the column and runs the column's
// validator on the result.
//
// Columns without a validator take the text unmodified. Numeric columns map
// blank text to nil (absent) and otherwise parse a plain decimal; text that
// does not parse is handed to the validator unchanged so that its own message
// surfaces. Whether absent is acceptable is the validator's decision.
func ParseAndValidate(raw string, col schema.Column) Result {
	if col.Validator == nil {
		return Result{Value: raw}
	}

	var value any = raw
	if schema.IsNumeric(col) {
		value = coerceNumber(raw)
	}

	if err := col.Validator.Validate(value); err != nil {
		return Result{Value: value, Message: FirstMessage(err)}
	}
	return Result{Value: value}
}

// FirstMessage returns the first issue of a validation error. Issues are
// never concatenated.
func FirstMessage(err error) string {
	if err == nil {
		return ""
	}
	var issues Issues
	if errors.As(err, &issues) && len(issues) > 0 {
		return issues[0].Message
	}
	return err.Error()
}

// decimal is the number grammar of a cell: an optional minus sign, digits
// and an optional fraction. Exponents, hex floats, a leading plus, NaN and
// Inf are not numbers here.
var decimal = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// IsDecimal reports whether text is a plain signed decimal number.
func IsDecimal(text string) bool {
	return decimal.MatchString(text)
}

func coerceNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if !IsDecimal(trimmed) {
		return raw
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return raw
	}
	return f
}
