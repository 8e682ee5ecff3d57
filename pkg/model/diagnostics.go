package model

import (
	"fmt"
)

// Severity indicates the importance of a diagnostic
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// DiagnosticType categorizes a coordination diagnostic
type DiagnosticType int

const (
	UnmappedConfiguration DiagnosticType = iota // Discipline/class pair absent from a rule table
	ComplianceViolation                         // Generated grid cannot satisfy spacing/coverage bounds
	ConnectivityFallback                        // Device routed standalone, no corridor in range
	TopologyFailure                             // Zone corridor subgraph disconnected from its supply
	VerticalCascade                             // Separation nudges exceeded the configured ceiling
)

func (dt DiagnosticType) String() string {
	switch dt {
	case UnmappedConfiguration:
		return "UnmappedConfiguration"
	case ComplianceViolation:
		return "ComplianceViolation"
	case ConnectivityFallback:
		return "ConnectivityFallback"
	case TopologyFailure:
		return "TopologyFailure"
	case VerticalCascade:
		return "VerticalCascade"
	default:
		return "Unknown"
	}
}

// Diagnostic represents one non-fatal condition absorbed during coordination.
// Fatal conditions (per-zone topology failures) are returned as errors instead;
// everything else lands here so no element is ever silently dropped.
type Diagnostic struct {
	Type      DiagnosticType
	Severity  Severity
	ElementID string // Affected element, empty for region/zone level diagnostics
	ZoneID    string // Affected zone, empty outside the router
	Message   string
}

// Diagnostics is an ordered collection of diagnostics
type Diagnostics []Diagnostic

// Add appends a diagnostic built from a format string
func (d *Diagnostics) Add(dt DiagnosticType, sev Severity, elementID, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Type:      dt,
		Severity:  sev,
		ElementID: elementID,
		Message:   fmt.Sprintf(format, args...),
	})
}

// AddZone appends a zone-scoped diagnostic
func (d *Diagnostics) AddZone(dt DiagnosticType, sev Severity, zoneID, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Type:     dt,
		Severity: sev,
		ZoneID:   zoneID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Append merges another diagnostics collection into this one
func (d *Diagnostics) Append(other Diagnostics) {
	*d = append(*d, other...)
}

// OfType returns the diagnostics matching the given type
func (d Diagnostics) OfType(dt DiagnosticType) Diagnostics {
	matched := make(Diagnostics, 0)
	for _, diag := range d {
		if diag.Type == dt {
			matched = append(matched, diag)
		}
	}
	return matched
}

// HasErrors reports whether any diagnostic carries Error severity
func (d Diagnostics) HasErrors() bool {
	for _, diag := range d {
		if diag.Severity == Error {
			return true
		}
	}
	return false
}
