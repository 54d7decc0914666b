package titles

import "github.com/yungbote/titleforge-backend/internal/catalog"

// BatchSize is the number of titles a successful generation always yields.
const BatchSize = 5

// Target length the prompt asks the generator for. Display signal only.
const (
	TargetMinChars = 55
	TargetMaxChars = 70
)

// TitleVariation is one annotated title of a generation batch.
type TitleVariation struct {
	ID             string          `json:"id"`
	Text           string          `json:"title"`
	CharacterCount int             `json:"characterCount"`
	Formula        string          `json:"formula"`
	Trigger        catalog.Trigger `json:"trigger"`
}

// WithinTarget reports whether the title landed in the requested length band.
func (t TitleVariation) WithinTarget() bool {
	return t.CharacterCount >= TargetMinChars && t.CharacterCount <= TargetMaxChars
}

// Texts returns the bare title strings of a batch.
func Texts(batch []TitleVariation) []string {
	out := make([]string, 0, len(batch))
	for _, t := range batch {
		out = append(out, t.Text)
	}
	return out
}
