package standards

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// pairKey identifies an unordered discipline pair. Keys are normalized so
// (a, b) and (b, a) address the same entry.
type pairKey struct {
	first, second model.Discipline
}

// normalizePair orders a discipline pair lexicographically
func normalizePair(a, b model.Discipline) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{first: a, second: b}
}

// ClearanceRules holds the required gap between elements of each discipline
// pair, with a default for unlisted pairs. Immutable once built.
type ClearanceRules struct {
	pairs            map[pairKey]float64
	defaultClearance float64
}

// PairClearance is the YAML shape for one discipline-pair clearance entry
type PairClearance struct {
	DisciplineA model.Discipline `yaml:"discipline_a"`
	DisciplineB model.Discipline `yaml:"discipline_b"`
	Clearance   float64          `yaml:"clearance"`
}

// NewClearanceRules builds a rule set from pair entries and a default
// clearance for unlisted pairs
func NewClearanceRules(entries []PairClearance, defaultClearance float64) (*ClearanceRules, error) {
	if defaultClearance < 0 {
		return nil, fmt.Errorf("default clearance must be non-negative, got %.3f", defaultClearance)
	}
	pairs := make(map[pairKey]float64, len(entries))
	for _, entry := range entries {
		if entry.Clearance < 0 {
			return nil, fmt.Errorf("clearance for %s/%s must be non-negative, got %.3f",
				entry.DisciplineA, entry.DisciplineB, entry.Clearance)
		}
		pairs[normalizePair(entry.DisciplineA, entry.DisciplineB)] = entry.Clearance
	}
	return &ClearanceRules{pairs: pairs, defaultClearance: defaultClearance}, nil
}

// Clearance returns the required gap for a discipline pair, falling back
// to the default for unlisted pairs
func (cr *ClearanceRules) Clearance(a, b model.Discipline) float64 {
	if c, ok := cr.pairs[normalizePair(a, b)]; ok {
		return c
	}
	return cr.defaultClearance
}

// Default returns the fallback clearance for unlisted pairs
func (cr *ClearanceRules) Default() float64 {
	return cr.defaultClearance
}

// clearanceFile is the YAML document shape for clearance rules
type clearanceFile struct {
	DefaultClearance float64         `yaml:"default_clearance"`
	Pairs            []PairClearance `yaml:"pairs"`
}

// LoadClearanceRules reads discipline-pair clearance rules from YAML
func LoadClearanceRules(r io.Reader) (*ClearanceRules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read clearance rules: %w", err)
	}

	var file clearanceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse clearance rules: %w", err)
	}

	return NewClearanceRules(file.Pairs, file.DefaultClearance)
}

// DefaultClearanceRules returns the built-in clearance rule set: piped
// services need wrench access around ducts, cabling keeps a smaller gap.
func DefaultClearanceRules() *ClearanceRules {
	rules, err := NewClearanceRules([]PairClearance{
		{DisciplineA: model.FireProtection, DisciplineB: model.Ventilation, Clearance: 0.15},
		{DisciplineA: model.FireProtection, DisciplineB: model.Power, Clearance: 0.1},
		{DisciplineA: model.Plumbing, DisciplineB: model.Ventilation, Clearance: 0.15},
		{DisciplineA: model.Plumbing, DisciplineB: model.Power, Clearance: 0.1},
		{DisciplineA: model.Power, DisciplineB: model.Ventilation, Clearance: 0.1},
		{DisciplineA: model.FireProtection, DisciplineB: model.Plumbing, Clearance: 0.1},
	}, 0.05)
	if err != nil {
		panic(fmt.Sprintf("built-in clearance rules invalid: %v", err))
	}
	return rules
}
