// Package separation resolves vertical conflicts between elements that share
// a horizontal footprint, nudging upper elements upward until a minimum
// clearance is satisfied.
package separation

import (
	"math"
	"sort"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

const (
	// DefaultCellSize is the horizontal proximity grid cell in meters.
	// Elements whose anchors fall in the same cell are treated as sharing
	// a location.
	DefaultCellSize = 1.0

	// DefaultCascadeCeiling is the cumulative nudge above which an element
	// is flagged for manual coordination instead of being floated silently.
	DefaultCascadeCeiling = 1.0

	// clearanceEpsilon absorbs float rounding so re-resolving an already
	// separated stack never applies vanishing nudges
	clearanceEpsilon = 1e-9
)

// Resolver groups elements into horizontal-proximity buckets and separates
// each bucket bottom-to-top
type Resolver struct {
	CellSize       float64 // Proximity grid cell size, defaults to DefaultCellSize
	MinClearance   float64 // Required gap between adjacent vertical extents
	CascadeCeiling float64 // Cumulative nudge flagging threshold
	logger         logging.Logger
}

// NewResolver creates a resolver with the given minimum clearance. Zero-value
// cell size and cascade ceiling fall back to the package defaults.
func NewResolver(minClearance float64, logger logging.Logger) *Resolver {
	return &Resolver{
		CellSize:       DefaultCellSize,
		MinClearance:   minClearance,
		CascadeCeiling: DefaultCascadeCeiling,
		logger:         logging.OrNop(logger),
	}
}

// cellKey identifies one horizontal proximity cell
type cellKey struct {
	col, row int
}

// Buckets partitions elements with assigned elevations into horizontal
// proximity groups. Elements without an elevation are skipped; the resolver
// only runs after the height assigner. Bucket contents keep a deterministic
// order (elevation ascending, then ID) so resolution is reproducible.
func (r *Resolver) Buckets(elements []*model.SpatialElement) [][]*model.SpatialElement {
	cell := r.CellSize
	if cell <= 0 {
		cell = DefaultCellSize
	}

	grouped := make(map[cellKey][]*model.SpatialElement)
	order := make([]cellKey, 0)
	for _, el := range elements {
		if !el.HasElevation() {
			continue
		}
		key := cellKey{
			col: int(math.Floor(el.Anchor.X / cell)),
			row: int(math.Floor(el.Anchor.Y / cell)),
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], el)
	}

	// Keys ordered by first appearance keeps output deterministic across runs
	buckets := make([][]*model.SpatialElement, 0, len(order))
	for _, key := range order {
		bucket := grouped[key]
		if len(bucket) < 2 {
			continue
		}
		sortBucket(bucket)
		buckets = append(buckets, bucket)
	}
	return buckets
}

// sortBucket orders a bucket by elevation ascending, ties broken by ID
func sortBucket(bucket []*model.SpatialElement) {
	sort.Slice(bucket, func(i, j int) bool {
		zi, zj := bucket[i].ElevationOrZero(), bucket[j].ElevationOrZero()
		if zi != zj {
			return zi < zj
		}
		return bucket[i].ID < bucket[j].ID
	})
}

// Outcome reports what one resolution pass did: the diagnostics raised and
// the magnitude of every nudge applied, in application order
type Outcome struct {
	Diagnostics model.Diagnostics
	Nudges      []float64
}

// merge folds another outcome into this one
func (o *Outcome) merge(other Outcome) {
	o.Diagnostics.Append(other.Diagnostics)
	o.Nudges = append(o.Nudges, other.Nudges...)
}

// ResolveBucket sweeps one sorted bucket bottom-to-top, raising each upper
// element until the pair clearance holds. Nudges are strictly upward, so a
// single sweep suffices and earlier pair clearances stay valid.
func (r *Resolver) ResolveBucket(bucket []*model.SpatialElement) Outcome {
	diags := make(model.Diagnostics, 0)
	nudges := make([]float64, 0)
	raised := make(map[string]float64, len(bucket))

	for i := 1; i < len(bucket); i++ {
		lower, upper := bucket[i-1], bucket[i]
		gap := upper.ElevationOrZero() - lower.ElevationOrZero()
		need := lower.Height/2 + upper.Height/2 + r.MinClearance
		if gap+clearanceEpsilon >= need {
			continue
		}

		shortfall := need - gap
		if err := upper.Raise(shortfall); err != nil {
			// Raise only fails for unassigned elevations, which Buckets excludes
			diags.Add(model.VerticalCascade, model.Error, upper.ID, "cannot raise element: %v", err)
			continue
		}
		upper.Annotate("raised %.4f m above %s for %.3f m clearance", shortfall, lower.ID, r.MinClearance)
		raised[upper.ID] += shortfall
		nudges = append(nudges, shortfall)

		r.logger.Debug("vertical nudge",
			logging.String("element", upper.ID),
			logging.String("below", lower.ID),
			logging.Float64("shortfall", shortfall))
	}

	// Cascading nudges in crowded cells can float the topmost elements high
	// enough to need manual coordination
	ceiling := r.CascadeCeiling
	if ceiling <= 0 {
		ceiling = DefaultCascadeCeiling
	}
	for _, el := range bucket {
		if total := raised[el.ID]; total > ceiling {
			el.Annotate("cumulative nudge %.4f m exceeds %.3f m ceiling, flagged for manual coordination", total, ceiling)
			diags.Add(model.VerticalCascade, model.Warning, el.ID,
				"cumulative nudge %.4f m exceeds ceiling %.3f m", total, ceiling)
		}
	}
	return Outcome{Diagnostics: diags, Nudges: nudges}
}

// Resolve buckets the elements and resolves every bucket in place,
// returning the combined outcome
func (r *Resolver) Resolve(elements []*model.SpatialElement) Outcome {
	outcome := Outcome{Diagnostics: make(model.Diagnostics, 0)}
	buckets := r.Buckets(elements)
	for _, bucket := range buckets {
		outcome.merge(r.ResolveBucket(bucket))
	}
	r.logger.Debug("separation resolved",
		logging.Int("elements", len(elements)),
		logging.Int("buckets", len(buckets)))
	return outcome
}
