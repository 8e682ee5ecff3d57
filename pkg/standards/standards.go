// Package standards holds the immutable reference tables that drive
// coordination: placement standards, discipline-pair clearances, and
// discipline height rules. Tables are loaded once and shared read-only,
// which keeps per-bucket and per-zone parallelism safe without locking.
package standards

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// validate is a singleton validator instance
var validate = validator.New()

// PlacementStandard holds the code-compliance placement rules for one
// (discipline, element class) pair. All distances are meters, areas m².
type PlacementStandard struct {
	Discipline          model.Discipline   `yaml:"discipline" validate:"required"`
	Class               model.ElementClass `yaml:"class" validate:"required"`
	MinSpacing          float64            `yaml:"min_spacing" validate:"gt=0"`
	MaxSpacing          float64            `yaml:"max_spacing" validate:"gt=0"`
	OptimalSpacing      float64            `yaml:"optimal_spacing" validate:"gt=0"`
	MaxCoverageArea     float64            `yaml:"max_coverage_area" validate:"gt=0"`
	OptimalCoverageArea float64            `yaml:"optimal_coverage_area" validate:"gte=0"`
	MaxWallDistance     float64            `yaml:"max_wall_distance" validate:"gte=0"`
	MinWallClearance    float64            `yaml:"min_wall_clearance" validate:"gte=0"`
}

// Validate checks struct tags plus the cross-field ordering invariants
// min_spacing <= optimal_spacing <= max_spacing and
// min_wall_clearance <= max_wall_distance.
func (s *PlacementStandard) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("standard %s/%s: %w", s.Discipline, s.Class, err)
	}
	if s.MinSpacing > s.OptimalSpacing || s.OptimalSpacing > s.MaxSpacing {
		return fmt.Errorf("standard %s/%s: spacing bounds must satisfy min <= optimal <= max (%.3f, %.3f, %.3f)",
			s.Discipline, s.Class, s.MinSpacing, s.OptimalSpacing, s.MaxSpacing)
	}
	if s.MinWallClearance > s.MaxWallDistance {
		return fmt.Errorf("standard %s/%s: min_wall_clearance %.3f exceeds max_wall_distance %.3f",
			s.Discipline, s.Class, s.MinWallClearance, s.MaxWallDistance)
	}
	return nil
}

// ruleKey identifies one (discipline, class) table entry
type ruleKey struct {
	discipline model.Discipline
	class      model.ElementClass
}

// Table is an immutable lookup of placement standards keyed by
// (discipline, element class)
type Table struct {
	standards map[ruleKey]PlacementStandard
}

// NewTable builds a table from the given entries, validating each one.
// Later entries for the same key override earlier ones, which is how
// external configuration merges over the built-in defaults.
func NewTable(entries []PlacementStandard) (*Table, error) {
	standards := make(map[ruleKey]PlacementStandard, len(entries))
	for i := range entries {
		entry := entries[i]
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		standards[ruleKey{entry.Discipline, entry.Class}] = entry
	}
	return &Table{standards: standards}, nil
}

// Lookup returns the standard for a (discipline, class) pair
func (t *Table) Lookup(d model.Discipline, c model.ElementClass) (PlacementStandard, bool) {
	std, ok := t.standards[ruleKey{d, c}]
	return std, ok
}

// Len returns the number of entries in the table
func (t *Table) Len() int {
	return len(t.standards)
}

// tableFile is the YAML document shape for a standards table
type tableFile struct {
	Standards []PlacementStandard `yaml:"standards"`
}

// LoadTable reads a standards table from YAML. Entries merge over the
// built-in defaults so partial tables only need to list overrides.
func LoadTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read standards table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse standards table: %w", err)
	}

	entries := append(defaultStandards(), file.Standards...)
	return NewTable(entries)
}

// DefaultTable returns the built-in standards table
func DefaultTable() *Table {
	table, err := NewTable(defaultStandards())
	if err != nil {
		// Built-in defaults are validated by tests; a failure here is a bug
		panic(fmt.Sprintf("built-in standards table invalid: %v", err))
	}
	return table
}
