package standards

import (
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// defaultStandards returns the built-in placement rules for common
// discipline/class pairs. Values follow the usual code tables for
// light-hazard occupancies: sprinkler spacing per NFPA 13, detector
// spacing per the 9-meter rule of thumb, diffusers and luminaires by
// coverage-driven layout practice.
func defaultStandards() []PlacementStandard {
	return []PlacementStandard{
		{
			// Quick-response sprinkler heads, light hazard
			Discipline:          model.FireProtection,
			Class:               model.TerminalDevice,
			MinSpacing:          1.83,
			MaxSpacing:          4.572,
			OptimalSpacing:      3.5,
			MaxCoverageArea:     12.08,
			OptimalCoverageArea: 11.0,
			MaxWallDistance:     2.286,
			MinWallClearance:    0.1,
		},
		{
			// Smoke detectors
			Discipline:          model.Power,
			Class:               model.TerminalDevice,
			MinSpacing:          3.0,
			MaxSpacing:          9.1,
			OptimalSpacing:      7.0,
			MaxCoverageArea:     81.0,
			OptimalCoverageArea: 49.0,
			MaxWallDistance:     4.5,
			MinWallClearance:    0.3,
		},
		{
			// Supply air diffusers
			Discipline:          model.Ventilation,
			Class:               model.TerminalDevice,
			MinSpacing:          2.0,
			MaxSpacing:          6.0,
			OptimalSpacing:      4.0,
			MaxCoverageArea:     25.0,
			OptimalCoverageArea: 16.0,
			MaxWallDistance:     3.0,
			MinWallClearance:    0.5,
		},
		{
			// Floor drains and cleanouts
			Discipline:          model.Plumbing,
			Class:               model.TerminalDevice,
			MinSpacing:          3.0,
			MaxSpacing:          15.0,
			OptimalSpacing:      8.0,
			MaxCoverageArea:     100.0,
			OptimalCoverageArea: 64.0,
			MaxWallDistance:     7.5,
			MinWallClearance:    0.3,
		},
	}
}
