package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	want := []struct {
		name    string
		trigger Trigger
	}{
		{"Curiosity Gap", TriggerCuriosity},
		{"Transformation", TriggerTransformation},
		{"Authority Insider", TriggerAuthority},
		{"Time-Bound", TriggerUrgency},
		{"Question Hook", TriggerCuriosity},
	}
	if c.Len() != len(want) {
		t.Fatalf("Len: want=%d got=%d", len(want), c.Len())
	}
	for i, w := range want {
		f := c.At(i)
		if f.Name != w.name || f.Trigger != w.trigger {
			t.Fatalf("At(%d): want=%s/%s got=%s/%s", i, w.name, w.trigger, f.Name, f.Trigger)
		}
	}
	if got := c.PowerWords(TriggerUrgency); len(got) != 8 || got[1] != "Don't" {
		t.Fatalf("PowerWords(urgency): unexpected %v", got)
	}
}

func TestAtCycles(t *testing.T) {
	c := MustDefault()
	for i := 0; i < 12; i++ {
		if c.At(i) != c.At(i+c.Len()) {
			t.Fatalf("At(%d) != At(%d)", i, i+c.Len())
		}
	}
	if c.At(-1) != c.At(c.Len()-1) {
		t.Fatalf("At(-1) should wrap to the last formula")
	}
}

func TestCatalogIsCopiedOut(t *testing.T) {
	c := MustDefault()
	fs := c.Formulas()
	fs[0].Name = "mutated"
	if c.At(0).Name == "mutated" {
		t.Fatalf("Formulas leaked internal slice")
	}
	words := c.PowerWords(TriggerValue)
	words[0] = "mutated"
	if c.PowerWords(TriggerValue)[0] == "mutated" {
		t.Fatalf("PowerWords leaked internal slice")
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	cases := []struct {
		name     string
		formulas []Formula
		words    map[Trigger][]string
	}{
		{name: "empty"},
		{name: "missing_name", formulas: []Formula{{Trigger: TriggerValue}}},
		{name: "bad_trigger", formulas: []Formula{{Name: "X", Trigger: "fear"}}},
		{name: "duplicate", formulas: []Formula{{Name: "X", Trigger: TriggerValue}, {Name: "X", Trigger: TriggerUrgency}}},
		{name: "bad_power_word_trigger", formulas: []Formula{{Name: "X", Trigger: TriggerValue}}, words: map[Trigger][]string{"fear": {"Boo"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.formulas, tc.words); err == nil {
				t.Fatalf("New: expected error")
			}
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("formulas: [")); err == nil {
		t.Fatalf("Parse: expected error")
	}
}
