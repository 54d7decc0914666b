package services

import (
	"errors"
	"testing"

	"github.com/yungbote/titleforge-backend/internal/catalog"
)

func TestValidateFiveLines(t *testing.T) {
	v := NewOutputValidator(catalog.MustDefault())
	batch, err := v.Validate("A\nB\nC\nD\nE")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("len: want=%d got=%d", 5, len(batch))
	}
	wantFormulas := []string{"Curiosity Gap", "Transformation", "Authority Insider", "Time-Bound", "Question Hook"}
	for i, tv := range batch {
		wantID := "title-" + string(rune('1'+i))
		if tv.ID != wantID {
			t.Fatalf("id[%d]: want=%q got=%q", i, wantID, tv.ID)
		}
		if tv.Text != string(rune('A'+i)) {
			t.Fatalf("text[%d]: got=%q", i, tv.Text)
		}
		if tv.CharacterCount != 1 {
			t.Fatalf("characterCount[%d]: want=1 got=%d", i, tv.CharacterCount)
		}
		if tv.Formula != wantFormulas[i] {
			t.Fatalf("formula[%d]: want=%q got=%q", i, wantFormulas[i], tv.Formula)
		}
	}
}

func TestValidateLineHandling(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		count int
		err   bool
	}{
		{name: "crlf", raw: "a\r\nb\r\nc\r\nd\r\ne\r\n", count: 5},
		{name: "bare_cr", raw: "a\rb\rc\rd\re", count: 5},
		{name: "blank_lines_dropped", raw: "\n  a \n\n b\n\t\nc\nd\n\ne\n\n", count: 5},
		{name: "three_lines", raw: "a\nb\nc", err: true},
		{name: "six_lines", raw: "a\nb\nc\nd\ne\nf", err: true},
		{name: "empty", raw: "", err: true},
		{name: "whitespace_only", raw: " \n\t\n ", err: true},
	}
	v := NewOutputValidator(catalog.MustDefault())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := v.Validate(tc.raw)
			if tc.err {
				var mo *MalformedOutputError
				if !errors.As(err, &mo) {
					t.Fatalf("Validate: want MalformedOutputError, got %v", err)
				}
				if mo.Expected != 5 {
					t.Fatalf("expected: want=5 got=%d", mo.Expected)
				}
				if !errors.Is(err, ErrMalformedOutput) {
					t.Fatalf("errors.Is(ErrMalformedOutput) = false")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if len(batch) != tc.count {
				t.Fatalf("len: want=%d got=%d", tc.count, len(batch))
			}
			for _, tv := range batch {
				if tv.Text != "a" && tv.Text != "b" && tv.Text != "c" && tv.Text != "d" && tv.Text != "e" {
					t.Fatalf("untrimmed text %q", tv.Text)
				}
			}
		})
	}
}

func TestValidateReportsGotCount(t *testing.T) {
	_, err := NewOutputValidator(catalog.MustDefault()).Validate("a\nb\nc")
	var mo *MalformedOutputError
	if !errors.As(err, &mo) || mo.Got != 3 {
		t.Fatalf("want Got=3, got %v", err)
	}
}

func TestValidateCountsRunes(t *testing.T) {
	v := NewOutputValidator(catalog.MustDefault())
	batch, err := v.Validate("café\nb\nc\nd\n日本語")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if batch[0].CharacterCount != 4 || batch[4].CharacterCount != 3 {
		t.Fatalf("rune counts: got %d and %d", batch[0].CharacterCount, batch[4].CharacterCount)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewOutputValidator(catalog.MustDefault())
	raw := "one\ntwo\nthree\nfour\nfive"
	a, err := v.Validate(raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	b, _ := v.Validate(raw)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("batch[%d] differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestValidateRoundRobinOnShortCatalog(t *testing.T) {
	c, err := catalog.New([]catalog.Formula{
		{Name: "One", Trigger: catalog.TriggerValue},
		{Name: "Two", Trigger: catalog.TriggerUrgency},
	}, nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	batch, err := NewOutputValidator(c).Validate("a\nb\nc\nd\ne")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := []string{"One", "Two", "One", "Two", "One"}
	for i, tv := range batch {
		if tv.Formula != want[i] {
			t.Fatalf("formula[%d]: want=%q got=%q", i, want[i], tv.Formula)
		}
	}
	if batch[1].Trigger != catalog.TriggerUrgency {
		t.Fatalf("trigger[1]: got %q", batch[1].Trigger)
	}
}
