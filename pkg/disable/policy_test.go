package disable

import (
	"testing"

	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"
)

func TestIsRowDisabled(t *testing.T) {
	tests := []struct {
		name  string
		spec  RowSpec
		group string
		index int
		want  bool
	}{
		{"NilSpec", nil, "A", 0, false},
		{"FlatHit", FlatRows{0, 2}, "A", 2, true},
		{"FlatHitOtherGroup", FlatRows{0, 2}, "B", 0, true},
		{"FlatMiss", FlatRows{0, 2}, "A", 1, false},
		{"GroupHit", GroupRows{"A": {0}}, "A", 0, true},
		{"GroupOtherGroup", GroupRows{"A": {0}}, "B", 0, false},
		{"GroupMissIndex", GroupRows{"A": {0}}, "A", 1, false},
		{"GroupUngrouped", GroupRows{"": {1}}, "", 1, true},
		{"EmptyFlat", FlatRows{}, "A", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRowDisabled(tt.spec, tt.group, tt.index); got != tt.want {
				t.Errorf("IsRowDisabled(%v, %q, %d) = %v, want %v", tt.spec, tt.group, tt.index, got, tt.want)
			}
		})
	}
}

// Groups "A" and "B"; only row 0 of "A" is disabled.
func TestPerGroupScenario(t *testing.T) {
	spec := GroupRows{"A": {0}}
	if !IsRowDisabled(spec, "A", 0) {
		t.Error("row 0 of group A should be disabled")
	}
	if IsRowDisabled(spec, "B", 0) {
		t.Error("row 0 of group B should not be disabled")
	}
}

func TestIsCellDisabled(t *testing.T) {
	p := Policy{Rows: FlatRows{1}, Columns: []string{"total"}}

	if !p.IsCellDisabled("A", 1, "rate") {
		t.Error("disabled row should disable every cell")
	}
	if !p.IsCellDisabled("A", 0, "total") {
		t.Error("disabled column should disable every cell")
	}
	if p.IsCellDisabled("A", 0, "rate") {
		t.Error("cell with enabled row and column should be enabled")
	}
	if IsColumnDisabled(nil, "rate") {
		t.Error("nil column list should disable nothing")
	}
}

func TestFlatAppliesToEveryGroup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.SliceOf(rapid.IntRange(0, 20)).Draw(t, "rows")
		group := rapid.StringMatching(`[A-Z]{0,3}`).Draw(t, "group")
		index := rapid.IntRange(0, 20).Draw(t, "index")

		want := false
		for _, r := range rows {
			if r == index {
				want = true
			}
		}
		if got := IsRowDisabled(FlatRows(rows), group, index); got != want {
			t.Fatalf("IsRowDisabled(%v, %q, %d) = %v, want %v", rows, group, index, got, want)
		}
	})
}

func TestSpecUnmarshalYAML(t *testing.T) {
	type doc struct {
		Disabled Spec `yaml:"disabled_rows"`
	}

	var flat doc
	if err := yaml.Unmarshal([]byte("disabled_rows: [0, 3]\n"), &flat); err != nil {
		t.Fatalf("flat: %v", err)
	}
	f, ok := flat.Disabled.RowSpec.(FlatRows)
	if !ok || len(f) != 2 || f[1] != 3 {
		t.Fatalf("expected FlatRows{0,3}, got %#v", flat.Disabled.RowSpec)
	}

	var grouped doc
	if err := yaml.Unmarshal([]byte("disabled_rows:\n  A: [0]\n  B: [1, 2]\n"), &grouped); err != nil {
		t.Fatalf("grouped: %v", err)
	}
	g, ok := grouped.Disabled.RowSpec.(GroupRows)
	if !ok || len(g["B"]) != 2 {
		t.Fatalf("expected GroupRows, got %#v", grouped.Disabled.RowSpec)
	}

	var bad doc
	if err := yaml.Unmarshal([]byte("disabled_rows: yes\n"), &bad); err == nil {
		t.Error("expected scalar spec to be rejected")
	}

	var empty doc
	if err := yaml.Unmarshal([]byte("title: x\n"), &empty); err != nil {
		t.Fatalf("empty: %v", err)
	}
	if empty.Disabled.RowSpec != nil {
		t.Errorf("expected nil spec, got %#v", empty.Disabled.RowSpec)
	}
}

func TestSpecMarshalRoundTrip(t *testing.T) {
	in := struct {
		Disabled Spec `yaml:"disabled_rows"`
	}{Disabled: Spec{GroupRows{"A": {0}}}}

	out, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back struct {
		Disabled Spec `yaml:"disabled_rows"`
	}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !IsRowDisabled(back.Disabled.RowSpec, "A", 0) {
		t.Errorf("round trip lost the group spec: %s", out)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "none" {
		t.Errorf("Describe(nil) = %q", got)
	}
	if got := Describe(GroupRows{"B": {1}, "A": {0}}); got != `rows {"A": [0], "B": [1]}` {
		t.Errorf("Describe(groups) = %q", got)
	}
}
