package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/domain/titles"
)

// OutputValidator turns raw generator text into an annotated batch. Formula
// labels are assigned round robin by position; line content is never inspected.
type OutputValidator interface {
	Validate(raw string) ([]titles.TitleVariation, error)
}

type outputValidator struct {
	catalog  *catalog.Catalog
	expected int
}

func NewOutputValidator(c *catalog.Catalog) OutputValidator {
	return &outputValidator{catalog: c, expected: titles.BatchSize}
}

func (v *outputValidator) Validate(raw string) ([]titles.TitleVariation, error) {
	lines := nonEmptyLines(raw)
	if len(lines) != v.expected {
		return nil, &MalformedOutputError{Expected: v.expected, Got: len(lines)}
	}
	out := make([]titles.TitleVariation, 0, len(lines))
	for i, line := range lines {
		f := v.catalog.At(i)
		out = append(out, titles.TitleVariation{
			ID:             fmt.Sprintf("title-%d", i+1),
			Text:           line,
			CharacterCount: utf8.RuneCountInString(line),
			Formula:        f.Name,
			Trigger:        f.Trigger,
		})
	}
	return out, nil
}

func nonEmptyLines(raw string) []string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	var out []string
	for _, line := range strings.Split(normalized, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
