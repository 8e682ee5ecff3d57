package model

import (
	"fmt"
)

// Discipline is a building-services category tag
type Discipline string

const (
	FireProtection Discipline = "fire-protection"
	Power          Discipline = "power"
	Ventilation    Discipline = "ventilation"
	Plumbing       Discipline = "plumbing"
	Structure      Discipline = "structure"
	Architecture   Discipline = "architecture"
)

// ElementClass is a taxonomy tag describing the physical kind of an element
type ElementClass string

const (
	PipeSegment    ElementClass = "pipe-segment"
	DuctSegment    ElementClass = "duct-segment"
	CableTray      ElementClass = "cable-tray"
	TerminalDevice ElementClass = "terminal-device"
	PanelBoard     ElementClass = "panel-board"
	Equipment      ElementClass = "equipment"
	Wall           ElementClass = "wall"
)

// Kind is the tagged variant over element kinds. Components switch on Kind
// instead of probing for the presence of optional attributes.
type Kind int

const (
	KindPipeLike Kind = iota // Linear runs: pipes, cable trays
	KindDuctLike             // Bulky linear runs: ducts
	KindDevice               // Point devices: sprinkler heads, detectors, boards
	KindPlanar               // Walls, slabs and other planar construction
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case KindPipeLike:
		return "pipe-like"
	case KindDuctLike:
		return "duct-like"
	case KindDevice:
		return "device"
	case KindPlanar:
		return "planar"
	default:
		return "unknown"
	}
}

// KindForClass maps an element class to its kind tag
func KindForClass(class ElementClass) Kind {
	switch class {
	case PipeSegment, CableTray:
		return KindPipeLike
	case DuctSegment:
		return KindDuctLike
	case TerminalDevice, PanelBoard, Equipment:
		return KindDevice
	case Wall:
		return KindPlanar
	default:
		return KindDevice
	}
}

// SpatialElement represents one physical item extracted from a floor plan.
// Elevation starts unassigned; once assigned it only ever moves upward so
// that clearances established earlier in the pipeline stay valid.
type SpatialElement struct {
	ID          string       `json:"id"`
	Discipline  Discipline   `json:"discipline"`
	Class       ElementClass `json:"class"`
	Anchor      Point        `json:"anchor"`
	Extent      Extent       `json:"extent"`
	Height      float64      `json:"height"` // Vertical extent
	Elevation   *float64     `json:"elevation,omitempty"`
	Annotations []string     `json:"annotations,omitempty"`
}

// ErrDownwardMove is returned when a caller attempts to lower an assigned elevation
var ErrDownwardMove = fmt.Errorf("elevation adjustments must be upward")

// Kind returns the tagged kind variant for the element's class
func (e *SpatialElement) Kind() Kind {
	return KindForClass(e.Class)
}

// HasElevation reports whether an elevation has been assigned
func (e *SpatialElement) HasElevation() bool {
	return e.Elevation != nil
}

// ElevationOrZero returns the assigned elevation, or 0 when unassigned
func (e *SpatialElement) ElevationOrZero() float64 {
	if e.Elevation == nil {
		return 0
	}
	return *e.Elevation
}

// SetElevation assigns the initial elevation. Re-assignment to the same value
// is a no-op; re-assignment downward is rejected.
func (e *SpatialElement) SetElevation(z float64) error {
	if e.Elevation == nil {
		v := z
		e.Elevation = &v
		return nil
	}
	if z < *e.Elevation {
		return ErrDownwardMove
	}
	*e.Elevation = z
	return nil
}

// Raise nudges the assigned elevation upward by delta. Negative deltas are
// rejected to preserve the monotonic-upward invariant.
func (e *SpatialElement) Raise(delta float64) error {
	if e.Elevation == nil {
		return fmt.Errorf("element %s has no elevation to raise", e.ID)
	}
	if delta < 0 {
		return ErrDownwardMove
	}
	*e.Elevation += delta
	return nil
}

// Annotate appends a traceability note recording an automatic adjustment
func (e *SpatialElement) Annotate(format string, args ...any) {
	e.Annotations = append(e.Annotations, fmt.Sprintf(format, args...))
}

// Top returns the top of the element's vertical extent (elevation is the centerline)
func (e *SpatialElement) Top() float64 {
	return e.ElevationOrZero() + e.Height/2
}

// Bottom returns the bottom of the element's vertical extent
func (e *SpatialElement) Bottom() float64 {
	return e.ElevationOrZero() - e.Height/2
}
