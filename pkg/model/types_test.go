package model

import (
	"testing"

	"pgregory.net/rapid"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, ""},
		{"String", "abc", "abc"},
		{"Float", 93.0, "93"},
		{"Fraction", 1.25, "1.25"},
		{"Negative", -4.5, "-4.5"},
		{"Int", 7, "7"},
		{"Int64", int64(12), "12"},
		{"Bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"Valid", Record{ID: "r1"}, false},
		{"EmptyID", Record{}, true},
		{"SelfParent", Record{ID: "r1", ParentID: "r1"}, true},
		{"WithParent", Record{ID: "r2", ParentID: "r1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithFieldLeavesOriginal(t *testing.T) {
	orig := &RowNode{ID: "r1", Fields: map[string]any{"rate": 93.0}}
	next := orig.WithField("rate", 15.0)

	if orig.Field("rate") != 93.0 {
		t.Errorf("original mutated: rate = %v", orig.Field("rate"))
	}
	if next.Field("rate") != 15.0 {
		t.Errorf("expected rate 15, got %v", next.Field("rate"))
	}
	if next == orig {
		t.Error("WithField must return a new node")
	}
}

func TestWithFieldNilRemoves(t *testing.T) {
	orig := &RowNode{ID: "r1", Fields: map[string]any{"amount": 5.0}}
	next := orig.WithField("amount", nil)
	if _, ok := next.Fields["amount"]; ok {
		t.Error("expected amount to be removed")
	}
	if next.Text("amount") != "" {
		t.Errorf("expected empty text, got %q", next.Text("amount"))
	}
}

func TestWithFieldProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{1,6}`), rapid.ID[string]).Draw(t, "keys")
		fields := make(map[string]any, len(keys))
		for _, k := range keys {
			fields[k] = rapid.Float64Range(-1e6, 1e6).Draw(t, "v")
		}
		node := &RowNode{ID: "n", Fields: fields}
		key := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "key")
		val := rapid.Float64Range(-1e6, 1e6).Draw(t, "val")

		before := len(node.Fields)
		next := node.WithField(key, val)

		if len(node.Fields) != before {
			t.Fatalf("original field count changed: %d -> %d", before, len(node.Fields))
		}
		if next.Field(key) != val {
			t.Fatalf("field %q = %v, want %v", key, next.Field(key), val)
		}
	})
}
