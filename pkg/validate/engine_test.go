package validate

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/gridedit/pkg/schema"
)

func numberCol(r *Rule) schema.Column {
	return schema.Column{ID: "n", Validator: r}
}

func TestParseAndValidateNoValidator(t *testing.T) {
	col := schema.Column{ID: "note"}
	for _, raw := range []string{"", "  ", "12", "hello"} {
		res := ParseAndValidate(raw, col)
		if res.Value != raw {
			t.Errorf("ParseAndValidate(%q) value = %v, want raw text", raw, res.Value)
		}
		if !res.Valid() {
			t.Errorf("ParseAndValidate(%q) message = %q, want none", raw, res.Message)
		}
	}
}

func TestParseAndValidateNumeric(t *testing.T) {
	tests := []struct {
		name      string
		rule      *Rule
		raw       string
		wantValue any
		wantMsg   string
	}{
		{"RequiredEmpty", Number().Min(0), "", nil, "is required"},
		{"RequiredWhitespace", Number().Min(0), "   ", nil, "is required"},
		{"OptionalEmpty", Number().Min(0).Optional(), "", nil, ""},
		{"Zero", Number().Min(0), "0", 0.0, ""},
		{"Negative", Number().Min(0), "-1", -1.0, "must be at least 0"},
		{"OverMax", Number().Min(0).Max(10000), "15000", 15000.0, "must be at most 10000"},
		{"WithinRange", Number().Min(0).Max(10000), "93", 93.0, ""},
		{"Decimal", Number(), " 1.5 ", 1.5, ""},
		{"NotANumber", Number(), "abc", "abc", "must be a number"},
		{"OptionalNotANumber", Number().Optional(), "abc", "abc", "must be a number"},
		{"NaNIsText", Number(), "NaN", "NaN", "must be a number"},
		{"HexFloatIsText", Number(), "0x1p4", "0x1p4", "must be a number"},
		{"ExponentIsText", Number(), "1e3", "1e3", "must be a number"},
		{"LeadingPlusIsText", Number(), "+5", "+5", "must be a number"},
		{"LeadingDot", Number(), "-.5", -0.5, ""},
		{"CustomMessage", Number().Max(5).Message("too big"), "6", 6.0, "too big"},
		{"TagMessage", Number().Max(5).MessageFor("lte", "max five"), "6", 6.0, "max five"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseAndValidate(tt.raw, numberCol(tt.rule))
			if res.Value != tt.wantValue {
				t.Errorf("value = %#v, want %#v", res.Value, tt.wantValue)
			}
			if res.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMsg)
			}
		})
	}
}

func TestParseAndValidateText(t *testing.T) {
	tests := []struct {
		name    string
		rule    *Rule
		raw     string
		wantMsg string
	}{
		{"RequiredEmpty", Text(), "", "is required"},
		{"OptionalEmpty", Text().Optional().MaxLen(3), "", ""},
		{"TooLong", Text().MaxLen(3), "abcd", "must be at most 3 characters"},
		{"TooShort", Text().MinLen(2), "a", "must be at least 2 characters"},
		{"OneOfMiss", Text().OneOf("open", "closed"), "pending", "must be one of: open, closed"},
		{"OneOfHit", Text().OneOf("open", "closed"), "open", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := schema.Column{ID: "t", Validator: tt.rule}
			res := ParseAndValidate(tt.raw, col)
			if res.Value != tt.raw {
				t.Errorf("text value = %#v, want %q", res.Value, tt.raw)
			}
			if res.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMsg)
			}
		})
	}
}

func TestTagChainParsing(t *testing.T) {
	r := Tag(schema.PrimitiveNumber, "omitempty, number, gte=0,lte=100")
	if !r.IsOptional() {
		t.Error("expected omitempty to mark rule optional")
	}
	if got, want := r.Chain(), "omitempty,number,gte=0,lte=100"; got != want {
		t.Errorf("Chain() = %q, want %q", got, want)
	}

	res := ParseAndValidate("101", numberCol(r))
	if res.Message != "must be at most 100" {
		t.Errorf("unexpected message %q", res.Message)
	}
}

// Only the first failing tag is reported, never a concatenation.
func TestFirstIssueWins(t *testing.T) {
	r := Number().Min(10).Max(5)
	res := ParseAndValidate("7", numberCol(r))
	if res.Message != "must be at least 10" {
		t.Errorf("message = %q", res.Message)
	}

	err := Issues{{Message: "first"}, {Message: "second"}}
	if got := FirstMessage(err); got != "first" {
		t.Errorf("FirstMessage = %q, want first", got)
	}
	if got := FirstMessage(errors.New("plain")); got != "plain" {
		t.Errorf("FirstMessage(plain) = %q", got)
	}
	if FirstMessage(nil) != "" {
		t.Error("FirstMessage(nil) should be empty")
	}
}

func TestRequiredNumericEmptyAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(-1000, 1000).Draw(t, "lo")
		blank := rapid.StringMatching(`[ \t]{0,4}`).Draw(t, "blank")
		res := ParseAndValidate(blank, numberCol(Number().Min(lo)))
		if res.Valid() {
			t.Fatalf("blank %q accepted by required numeric rule", blank)
		}
		if res.Value != nil {
			t.Fatalf("blank coerced to %#v, want nil", res.Value)
		}
	})
}

func TestOptionalNumericEmptyNeverErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(-1000, 1000).Draw(t, "lo")
		blank := rapid.StringMatching(`[ \t]{0,4}`).Draw(t, "blank")
		res := ParseAndValidate(blank, numberCol(Number().Min(lo).Optional()))
		if !res.Valid() {
			t.Fatalf("blank %q rejected by optional numeric rule: %s", blank, res.Message)
		}
	})
}

func TestRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(-20000, 20000).Draw(t, "v")
		res := ParseAndValidate(formatParam(float64(v)), numberCol(Number().Min(0).Max(10000)))
		inRange := v >= 0 && v <= 10000
		if res.Valid() != inRange {
			t.Fatalf("value %d valid=%v, want %v (%s)", v, res.Valid(), inRange, res.Message)
		}
	})
}

func TestRuleCheck(t *testing.T) {
	if err := Tag(schema.PrimitiveText, "max=4,alpha").Check(); err != nil {
		t.Errorf("known tags rejected: %v", err)
	}
	if err := Tag(schema.PrimitiveNumber, "gte=0,notatag").Check(); err == nil {
		t.Error("expected unknown tag to be reported")
	}
}

func TestPattern(t *testing.T) {
	col := schema.Column{ID: "code", Validator: Text().Pattern(`^[A-Z]{2,3}-\d+$`)}

	tests := []struct {
		raw   string
		valid bool
	}{
		{"AB-12", true},
		{"ABC-1", true},
		{"ab-12", false},
		{"ABCD-1", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := ParseAndValidate(tt.raw, col)
			if res.Valid() != tt.valid {
				t.Errorf("ParseAndValidate(%q) valid = %v, message %q", tt.raw, res.Valid(), res.Message)
			}
		})
	}

	res := ParseAndValidate("nope", col)
	if res.Message != "has an invalid format" {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestPatternCheck(t *testing.T) {
	if err := Text().Pattern(`^(a|b),c$`).Check(); err != nil {
		t.Errorf("valid pattern rejected: %v", err)
	}
	if err := Text().Pattern(`(unclosed`).Check(); err == nil {
		t.Error("expected invalid pattern to be reported")
	}
	if err := Tag(schema.PrimitiveText, `pattern=^x+$`).Check(); err != nil {
		t.Errorf("tag pattern rejected: %v", err)
	}
}
