// Package validate turns raw cell text into committed values. Column rules are
// expressed as go-playground/validator tag chains and report their issues in
// chain order, so the first failing tag is always the first issue.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vanderheijden86/gridedit/pkg/model"
	"github.com/vanderheijden86/gridedit/pkg/schema"
)

// tagValidate is shared by every rule. validator.Validate caches parsed tag
// chains, so reusing one instance keeps repeated keystrokes cheap.
var tagValidate *validator.Validate

// patterns caches compiled "pattern" tag params.
var patterns sync.Map

func init() {
	tagValidate = validator.New()
	if err := tagValidate.RegisterValidation("pattern", matchPattern); err != nil {
		panic(err)
	}
}

// matchPattern backs the "pattern" tag. An expression that does not compile
// never matches; Rule.Check reports it up front.
func matchPattern(fl validator.FieldLevel) bool {
	re, err := compilePattern(fl.Param())
	if err != nil {
		return false
	}
	return re.MatchString(fl.Field().String())
}

func compilePattern(expr string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patterns.Store(expr, re)
	return re, nil
}

// Issue is one reported validation problem.
type Issue struct {
	Tag     string
	Param   string
	Message string
}

// Issues is the error returned by Rule.Validate.
type Issues []Issue

func (is Issues) Error() string {
	msgs := make([]string, len(is))
	for i, issue := range is {
		msgs[i] = issue.Message
	}
	return strings.Join(msgs, "; ")
}

// Rule is a schema.Validator backed by a validator tag chain.
type Rule struct {
	primitive schema.Primitive
	optional  bool
	tags      []string
	message   string
	messages  map[string]string
}

var _ schema.Validator = (*Rule)(nil)

// Number returns a required numeric rule. Chain Optional to accept absent
// values.
func Number() *Rule {
	return &Rule{primitive: schema.PrimitiveNumber}
}

// Text returns a required text rule.
func Text() *Rule {
	return &Rule{primitive: schema.PrimitiveText}
}

// Tag builds a rule from a raw validator tag chain such as
// "omitempty,gte=0,lte=100". A leading "omitempty" or "required" sets the
// optional flag; the remaining tags are kept in order.
func Tag(p schema.Primitive, chain string) *Rule {
	r := &Rule{primitive: p}
	for _, tag := range strings.Split(chain, ",") {
		tag = strings.TrimSpace(tag)
		switch tag {
		case "":
		case "omitempty":
			r.optional = true
		case "required":
			r.optional = false
		case "number":
			// implied for numeric rules
			if p != schema.PrimitiveNumber {
				r.tags = append(r.tags, tag)
			}
		default:
			r.tags = append(r.tags, tag)
		}
	}
	return r
}

// Optional lets the rule accept absent values.
func (r *Rule) Optional() *Rule {
	r.optional = true
	return r
}

// Min requires numbers >= v.
func (r *Rule) Min(v float64) *Rule { return r.add("gte=" + formatParam(v)) }

// Max requires numbers <= v.
func (r *Rule) Max(v float64) *Rule { return r.add("lte=" + formatParam(v)) }

// GreaterThan requires numbers > v.
func (r *Rule) GreaterThan(v float64) *Rule { return r.add("gt=" + formatParam(v)) }

// LessThan requires numbers < v.
func (r *Rule) LessThan(v float64) *Rule { return r.add("lt=" + formatParam(v)) }

// MinLen requires text of at least n characters.
func (r *Rule) MinLen(n int) *Rule { return r.add("min=" + strconv.Itoa(n)) }

// MaxLen requires text of at most n characters.
func (r *Rule) MaxLen(n int) *Rule { return r.add("max=" + strconv.Itoa(n)) }

// OneOf restricts text to a fixed set of space-free values.
func (r *Rule) OneOf(values ...string) *Rule {
	return r.add("oneof=" + strings.Join(values, " "))
}

// Message replaces every issue message reported by this rule.
func (r *Rule) Message(msg string) *Rule {
	r.message = msg
	return r
}

// MessageFor replaces the message reported for one tag.
func (r *Rule) MessageFor(tag, msg string) *Rule {
	if r.messages == nil {
		r.messages = make(map[string]string)
	}
	r.messages[tag] = msg
	return r
}

// Pattern requires text matching the regular expression. Commas and pipes
// are escaped for the tag chain.
func (r *Rule) Pattern(expr string) *Rule {
	expr = strings.NewReplacer(",", "0x2C", "|", "0x7C").Replace(expr)
	return r.add("pattern=" + expr)
}

func (r *Rule) add(tag string) *Rule {
	r.tags = append(r.tags, tag)
	return r
}

// Primitive implements schema.Validator.
func (r *Rule) Primitive() schema.Primitive {
	return r.primitive
}

// IsOptional reports whether absent values are accepted.
func (r *Rule) IsOptional() bool {
	return r.optional
}

// Chain returns the full validator tag chain the rule evaluates.
func (r *Rule) Chain() string {
	parts := make([]string, 0, len(r.tags)+2)
	if r.optional {
		parts = append(parts, "omitempty")
	} else {
		parts = append(parts, "required")
	}
	if r.primitive == schema.PrimitiveNumber {
		parts = append(parts, "number")
	}
	parts = append(parts, r.tags...)
	return strings.Join(parts, ",")
}

// Validate implements schema.Validator. Numbers are passed as *float64 so
// that zero counts as a present value; anything else that reaches a numeric
// rule (unparseable text) is checked as-is and fails the number tag.
func (r *Rule) Validate(value any) error {
	field := r.field(value)
	err := tagValidate.Var(field, r.Chain())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{{Tag: "invalid", Message: err.Error()}}
	}

	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: r.messageFor(fe.Tag(), fe.Param()),
		})
	}
	return issues
}

// Check reports whether the tag chain only uses known tags and compilable
// patterns. The validator panics on unknown tags when it first parses a chain.
func (r *Rule) Check() (err error) {
	for _, tag := range r.tags {
		if expr, ok := strings.CutPrefix(tag, "pattern="); ok {
			expr = strings.NewReplacer("0x2C", ",", "0x7C", "|").Replace(expr)
			if _, err := compilePattern(expr); err != nil {
				return fmt.Errorf("invalid rule %q: %w", r.Chain(), err)
			}
		}
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("invalid rule %q: %v", r.Chain(), p)
		}
	}()
	_ = r.Validate(nil)
	return nil
}

func (r *Rule) field(value any) any {
	if r.primitive == schema.PrimitiveNumber {
		switch v := value.(type) {
		case nil:
			return (*float64)(nil)
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		default:
			return value
		}
	}
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return model.FormatValue(value)
}

func (r *Rule) messageFor(tag, param string) string {
	if r.message != "" {
		return r.message
	}
	if msg, ok := r.messages[tag]; ok {
		return msg
	}
	return defaultMessage(r.primitive, tag, param)
}

func defaultMessage(p schema.Primitive, tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "number", "numeric":
		return "must be a number"
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "min":
		if p == schema.PrimitiveNumber {
			return "must be at least " + param
		}
		return fmt.Sprintf("must be at least %s characters", param)
	case "max":
		if p == schema.PrimitiveNumber {
			return "must be at most " + param
		}
		return fmt.Sprintf("must be at most %s characters", param)
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "email":
		return "must be a valid email address"
	case "pattern":
		return "has an invalid format"
	default:
		return fmt.Sprintf("failed %s check", tag)
	}
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
