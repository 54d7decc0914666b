package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/titleforge-backend/internal/catalog"
	"github.com/yungbote/titleforge-backend/internal/domain/titles"
)

// PromptBuilder renders the single-turn prompt sent to the title generator.
type PromptBuilder struct {
	catalog *catalog.Catalog
}

func NewPromptBuilder(c *catalog.Catalog) *PromptBuilder {
	return &PromptBuilder{catalog: c}
}

func (p *PromptBuilder) Build(description string) string {
	formulas := p.catalog.Formulas()
	names := make([]string, 0, len(formulas))
	for _, f := range formulas {
		names = append(names, strings.ToLower(f.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a YouTube title expert specializing in viral content. Generate exactly %d high-converting YouTube titles for the following video description. Each title must be between %d-%d characters.\n\n",
		titles.BatchSize, titles.TargetMinChars, titles.TargetMaxChars)
	fmt.Fprintf(&b, "Video Description: %q\n\n", strings.TrimSpace(description))
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- Each title must be %d-%d characters long\n", titles.TargetMinChars, titles.TargetMaxChars)
	fmt.Fprintf(&b, "- Use proven viral formulas (%s)\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "- Include psychological triggers (%s)\n", strings.Join(triggerNames(p.catalog.Triggers()), ", "))
	b.WriteString("- Front-load keywords in the first 5 words\n")
	b.WriteString("- Target 4-8% CTR through compelling hooks\n\n")

	b.WriteString("Viral formulas to apply:\n")
	for i, f := range formulas {
		fmt.Fprintf(&b, "%d. %s: %q\n", i+1, f.Name, f.Pattern)
	}

	if words := p.powerWords(3); len(words) > 0 {
		fmt.Fprintf(&b, "\nPower words to consider: %s\n", strings.Join(words, ", "))
	}

	fmt.Fprintf(&b, "\nPlease respond with exactly %d titles, one per line, with no numbering or additional text.", titles.BatchSize)
	return b.String()
}

// powerWords takes the first perTrigger words of every trigger list.
func (p *PromptBuilder) powerWords(perTrigger int) []string {
	var out []string
	for _, t := range p.catalog.Triggers() {
		words := p.catalog.PowerWords(t)
		if len(words) > perTrigger {
			words = words[:perTrigger]
		}
		out = append(out, words...)
	}
	return out
}

func triggerNames(ts []catalog.Trigger) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, string(t))
	}
	return out
}
