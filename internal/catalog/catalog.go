// Package catalog holds the viral title formulas and power words. The data is
// embedded, parsed once at start-up and never mutated afterwards; callers get
// copies so a Catalog can be shared freely between goroutines.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed formulas.yaml
var defaultYAML []byte

type Trigger string

const (
	TriggerCuriosity      Trigger = "curiosity"
	TriggerUrgency        Trigger = "urgency"
	TriggerValue          Trigger = "value"
	TriggerTransformation Trigger = "transformation"
	TriggerAuthority      Trigger = "authority"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerCuriosity, TriggerUrgency, TriggerValue, TriggerTransformation, TriggerAuthority:
		return true
	default:
		return false
	}
}

type Formula struct {
	Name        string  `yaml:"name" json:"name"`
	Pattern     string  `yaml:"pattern" json:"pattern"`
	Description string  `yaml:"description" json:"description"`
	Trigger     Trigger `yaml:"trigger" json:"trigger"`
}

type Catalog struct {
	formulas   []Formula
	powerWords map[Trigger][]string
}

var ErrEmptyCatalog = errors.New("catalog has no formulas")

type yamlCatalog struct {
	Formulas   []Formula            `yaml:"formulas"`
	PowerWords map[Trigger][]string `yaml:"power_words"`
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// MustDefault is Default for process start-up, where a broken embedded
// document is a build defect.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded formulas invalid: %v", err))
	}
	return c
}

func Parse(raw []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Formulas, doc.PowerWords)
}

// New validates and copies the given formulas and power words.
func New(formulas []Formula, powerWords map[Trigger][]string) (*Catalog, error) {
	if len(formulas) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		formulas:   make([]Formula, 0, len(formulas)),
		powerWords: make(map[Trigger][]string, len(powerWords)),
	}
	seen := make(map[string]struct{}, len(formulas))
	for i, f := range formulas {
		f.Name = strings.TrimSpace(f.Name)
		f.Pattern = strings.TrimSpace(f.Pattern)
		f.Description = strings.TrimSpace(f.Description)
		if f.Name == "" {
			return nil, fmt.Errorf("formula %d: name required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("formula %d: duplicate name %q", i, f.Name)
		}
		seen[f.Name] = struct{}{}
		if !f.Trigger.Valid() {
			return nil, fmt.Errorf("formula %q: unknown trigger %q", f.Name, f.Trigger)
		}
		c.formulas = append(c.formulas, f)
	}
	for trig, words := range powerWords {
		if !trig.Valid() {
			return nil, fmt.Errorf("power words: unknown trigger %q", trig)
		}
		c.powerWords[trig] = append([]string(nil), words...)
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.formulas) }

// At returns the formula for position i, cycling through the catalog.
func (c *Catalog) At(i int) Formula {
	n := len(c.formulas)
	idx := i % n
	if idx < 0 {
		idx += n
	}
	return c.formulas[idx]
}

func (c *Catalog) Formulas() []Formula {
	return append([]Formula(nil), c.formulas...)
}

func (c *Catalog) PowerWords(t Trigger) []string {
	return append([]string(nil), c.powerWords[t]...)
}

// AllPowerWords returns a copy of every power word list keyed by trigger.
func (c *Catalog) AllPowerWords() map[Trigger][]string {
	out := make(map[Trigger][]string, len(c.powerWords))
	for t, words := range c.powerWords {
		out[t] = append([]string(nil), words...)
	}
	return out
}

// Triggers lists the triggers that have power words, sorted for stable output.
func (c *Catalog) Triggers() []Trigger {
	out := make([]Trigger, 0, len(c.powerWords))
	for t := range c.powerWords {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
