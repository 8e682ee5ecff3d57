package standards

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// MountPolicy describes how a height rule anchors an element vertically
type MountPolicy string

const (
	// MountCeilingOffset places the element Offset meters below the ceiling
	MountCeilingOffset MountPolicy = "ceiling-offset"
	// MountAbsolute places the element Offset meters above the floor,
	// regardless of ceiling height
	MountAbsolute MountPolicy = "absolute"
)

// HeightRule gives the nominal elevation policy for one
// (discipline, element class) pair
type HeightRule struct {
	Discipline model.Discipline   `yaml:"discipline"`
	Class      model.ElementClass `yaml:"class"`
	Mount      MountPolicy        `yaml:"mount"`
	Offset     float64            `yaml:"offset"`
}

// BuildingProfile carries the per-building parameters that scale the
// height rules
type BuildingProfile struct {
	CeilingHeight float64 `yaml:"ceiling_height" validate:"gt=0"`
	BuildingType  string  `yaml:"building_type"`
}

// Validate checks the profile fields
func (p *BuildingProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("building profile: %w", err)
	}
	return nil
}

// HeightTable is an immutable lookup of height rules keyed by
// (discipline, element class)
type HeightTable struct {
	rules map[ruleKey]HeightRule
}

// NewHeightTable builds a height table from rule entries. Later entries
// for the same key override earlier ones.
func NewHeightTable(entries []HeightRule) (*HeightTable, error) {
	rules := make(map[ruleKey]HeightRule, len(entries))
	for _, entry := range entries {
		switch entry.Mount {
		case MountCeilingOffset, MountAbsolute:
		default:
			return nil, fmt.Errorf("height rule %s/%s: unknown mount policy %q",
				entry.Discipline, entry.Class, entry.Mount)
		}
		if entry.Offset < 0 {
			return nil, fmt.Errorf("height rule %s/%s: offset must be non-negative, got %.3f",
				entry.Discipline, entry.Class, entry.Offset)
		}
		rules[ruleKey{entry.Discipline, entry.Class}] = entry
	}
	return &HeightTable{rules: rules}, nil
}

// Lookup returns the height rule for a (discipline, class) pair
func (t *HeightTable) Lookup(d model.Discipline, c model.ElementClass) (HeightRule, bool) {
	rule, ok := t.rules[ruleKey{d, c}]
	return rule, ok
}

// heightFile is the YAML document shape for a height table
type heightFile struct {
	Rules []HeightRule `yaml:"height_rules"`
}

// LoadHeightTable reads height rules from YAML, merged over the built-in
// defaults
func LoadHeightTable(r io.Reader) (*HeightTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read height table: %w", err)
	}

	var file heightFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse height table: %w", err)
	}

	return NewHeightTable(append(defaultHeightRules(), file.Rules...))
}

// DefaultHeightTable returns the built-in height rule table
func DefaultHeightTable() *HeightTable {
	table, err := NewHeightTable(defaultHeightRules())
	if err != nil {
		panic(fmt.Sprintf("built-in height table invalid: %v", err))
	}
	return table
}

// defaultHeightRules encodes the fixed vertical ordering policy inside the
// ceiling void. Heavier and less accessible services sit lowest, then
// slope-sensitive drainage, then bulky air distribution, then cabling,
// with life-safety piping highest so it is the last to be obstructed.
// Floor equipment and wall boards use absolute offsets.
func defaultHeightRules() []HeightRule {
	return []HeightRule{
		// Chilled water and heavy piped services, lowest in the void
		{Discipline: model.Plumbing, Class: model.PipeSegment, Mount: MountCeilingOffset, Offset: 0.9},
		// Ventilation ducts, bulky but above piped services
		{Discipline: model.Ventilation, Class: model.DuctSegment, Mount: MountCeilingOffset, Offset: 0.6},
		// Cable trays above ducts
		{Discipline: model.Power, Class: model.CableTray, Mount: MountCeilingOffset, Offset: 0.35},
		// Sprinkler mains closest to the ceiling
		{Discipline: model.FireProtection, Class: model.PipeSegment, Mount: MountCeilingOffset, Offset: 0.1},
		// Ceiling-mounted terminal devices sit at the ceiling plane
		{Discipline: model.FireProtection, Class: model.TerminalDevice, Mount: MountCeilingOffset, Offset: 0.05},
		{Discipline: model.Ventilation, Class: model.TerminalDevice, Mount: MountCeilingOffset, Offset: 0.0},
		{Discipline: model.Power, Class: model.TerminalDevice, Mount: MountCeilingOffset, Offset: 0.05},
		// Wall-mounted boards and floor equipment use absolute heights
		{Discipline: model.Power, Class: model.PanelBoard, Mount: MountAbsolute, Offset: 1.5},
		{Discipline: model.Plumbing, Class: model.Equipment, Mount: MountAbsolute, Offset: 0.0},
		{Discipline: model.Ventilation, Class: model.Equipment, Mount: MountAbsolute, Offset: 0.0},
	}
}
