package s57

import (
	"github.com/dhconnelly/rtreego"

	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/topology"
)

// Dataset is a parsed S-57 cell: an entity-component World plus a spatial
// index over its features' resolved geometry, and the dataset-level
// metadata declared in its DSID/DSPM records.
//
// Unlike the flat, eagerly-materialized chart this replaces, a Dataset
// stores no resolved geometry: each Feature.Geometry call resolves it afresh
// from the feature's exact-rational vector chain. The spatial index is built
// eagerly at construction time (Build/ParseFile), which resolves every
// feature's geometry once, since every viewport query needs it and
// resolving geometry once up front is cheaper than resolving it again on
// every query.
type Dataset struct {
	world  *ecs.World
	index  *rtreego.Rtree
	bounds Bounds
	traversal TraversalOptions

	features []*Feature
}

// Build constructs a Dataset from an already-ingested World, resolving
// every feature's geometry once to build the spatial index. TraversalOptions
// governs how ambiguous topology (cycles, endpoint mismatches) is handled
// during that resolution.
func Build(world *ecs.World, traversal TraversalOptions) (*Dataset, error) {
	d := &Dataset{world: world, traversal: traversal}

	entities := world.EntitiesOfType(ecs.EntityFeature)
	d.features = make([]*Feature, 0, len(entities))
	for _, e := range entities {
		meta, ok := world.FeatureMeta[e]
		if !ok {
			continue
		}
		d.features = append(d.features, &Feature{dataset: d, entity: e, meta: meta})
	}

	d.buildSpatialIndex()
	return d, nil
}

func (d *Dataset) traversalContext() *topology.TraversalContext {
	return topology.NewTraversalContext(d.world).
		WithCyclePolicy(d.traversal.CyclePolicy).
		WithContinuityPolicy(d.traversal.ContinuityPolicy)
}

// World exposes the underlying entity-component store, for callers that
// need direct access beyond the Feature/Geometry view - walking FFPT
// cross-references between features, for instance.
func (d *Dataset) World() *ecs.World { return d.world }

// Features returns every feature in the dataset, in ingestion order.
func (d *Dataset) Features() []*Feature { return d.features }

// FeatureCount returns the number of features in the dataset.
func (d *Dataset) FeatureCount() int { return len(d.features) }

// Bounds returns the dataset's geographic coverage, preferring the M_COVR
// metadata feature's extent when present over the union of every feature's
// bounding box.
func (d *Dataset) Bounds() Bounds { return d.bounds }

// FeaturesInBounds returns every feature whose resolved geometry intersects
// bounds, using the R-tree spatial index for an O(log n) query.
func (d *Dataset) FeaturesInBounds(bounds Bounds) []*Feature {
	if d.index == nil {
		return nil
	}
	rect := rectOf(bounds)
	spatials := d.index.SearchIntersect(rect)
	out := make([]*Feature, 0, len(spatials))
	for _, sp := range spatials {
		out = append(out, sp.(*indexedFeature).feature)
	}
	return out
}

// indexedFeature wraps a Feature with its precomputed bounds for R-tree
// storage, since rtreego.Spatial needs a cheap Bounds() and resolving
// geometry on every query would defeat the point of indexing.
type indexedFeature struct {
	feature *Feature
	bounds  Bounds
}

const indexEpsilon = 0.0001 // ~11m at the equator; rtreego needs non-zero extents

func (f *indexedFeature) Bounds() rtreego.Rect {
	lonLen := f.bounds.MaxLon - f.bounds.MinLon
	latLen := f.bounds.MaxLat - f.bounds.MinLat
	if lonLen < indexEpsilon {
		lonLen = indexEpsilon
	}
	if latLen < indexEpsilon {
		latLen = indexEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{f.bounds.MinLon, f.bounds.MinLat}, []float64{lonLen, latLen})
	return rect
}

func rectOf(b Bounds) rtreego.Rect {
	lonLen := b.MaxLon - b.MinLon
	latLen := b.MaxLat - b.MinLat
	if lonLen <= 0 {
		lonLen = indexEpsilon
	}
	if latLen <= 0 {
		latLen = indexEpsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, []float64{lonLen, latLen})
	return rect
}

// buildSpatialIndex resolves every feature's geometry once and inserts it
// into an R-tree, preferring M_COVR's extent for the dataset's overall
// Bounds when present - M_COVR is the chart's own statement of its
// coverage area, more authoritative than a box fitted around whatever
// features happened to digitize inside it.
func (d *Dataset) buildSpatialIndex() {
	if len(d.features) == 0 {
		return
	}

	rtree := rtreego.NewTree(2, 25, 50)
	var covrBounds *Bounds
	var fallback Bounds

	for _, f := range d.features {
		geom, err := f.Geometry()
		if err != nil || geom.Type == GeometryTypeNone {
			continue
		}

		fb := geometryBounds(geom)
		rtree.Insert(&indexedFeature{feature: f, bounds: fb})

		if f.ObjectClass() == "M_COVR" {
			if covrBounds == nil {
				b := fb
				covrBounds = &b
			} else {
				*covrBounds = covrBounds.Union(fb)
			}
			continue
		}
		fallback = fallback.Union(fb)
	}

	d.index = rtree
	if covrBounds != nil {
		d.bounds = *covrBounds
	} else {
		d.bounds = fallback
	}
}

func geometryBounds(g Geometry) Bounds {
	if g.Type == GeometryTypePolygon {
		if len(g.Rings) == 0 {
			return Bounds{}
		}
		b := boundsOfCoords(g.Rings[0])
		for _, ring := range g.Rings[1:] {
			b = b.Union(boundsOfCoords(ring))
		}
		return b
	}
	return boundsOfCoords(g.Coordinates)
}

// DatasetName returns the cell identifier, e.g. "US5MA22M".
func (d *Dataset) DatasetName() string { return d.identity().DSNM }

// Edition returns the edition number.
func (d *Dataset) Edition() string { return d.identity().EDTN }

// UpdateNumber returns the update number ("0" for an unmodified base cell).
func (d *Dataset) UpdateNumber() string { return d.identity().UPDN }

// UpdateApplicationDate returns the UADT field, YYYYMMDD.
func (d *Dataset) UpdateApplicationDate() string { return d.identity().UADT }

// IssueDate returns the ISDT field, YYYYMMDD.
func (d *Dataset) IssueDate() string { return d.identity().ISDT }

// S57Edition returns the STED field, e.g. "03.1".
func (d *Dataset) S57Edition() string { return d.identity().STED }

// ProducingAgency returns the AGEN field, e.g. 550 for NOAA.
func (d *Dataset) ProducingAgency() uint16 { return d.identity().AGEN }

// Comment returns the DSID comment field.
func (d *Dataset) Comment() string { return d.identity().COMT }

// ExchangePurpose returns the EXPP field: 1=new, 2=revision.
func (d *Dataset) ExchangePurpose() uint8 { return d.identity().EXPP }

// ProductSpecificationEdition returns the PRED field.
func (d *Dataset) ProductSpecificationEdition() string { return d.identity().PRED }

// UsageBand returns the dataset's intended usage band, decoded from the
// DSID INTU field.
func (d *Dataset) UsageBand() UsageBand { return UsageBand(d.identity().INTU) }

// CompilationScale returns the CSCL field from DSPM, the scale denominator
// the chart was compiled at (e.g. 50000 for 1:50,000). Zero if DSPM was
// never ingested.
func (d *Dataset) CompilationScale() uint32 {
	if d.world.DatasetParams == nil {
		return 0
	}
	return d.world.DatasetParams.CSCL
}

// HorizontalDatum returns the HDAT field from DSPM.
func (d *Dataset) HorizontalDatum() uint16 {
	if d.world.DatasetParams == nil {
		return 0
	}
	return d.world.DatasetParams.HDAT
}

func (d *Dataset) identity() ecs.DatasetIdentity {
	if d.world.DatasetIdentity == nil {
		return ecs.DatasetIdentity{}
	}
	return *d.world.DatasetIdentity
}

// CoordinateUnits indicates how a chart's raw coordinates are encoded.
// S-57 Part 3 Table 3.2.
type CoordinateUnits int

const (
	CoordinateUnitsUnknown   CoordinateUnits = 0
	CoordinateUnitsLatLon    CoordinateUnits = 1
	CoordinateUnitsEastNorth CoordinateUnits = 2
)

func (c CoordinateUnits) String() string {
	switch c {
	case CoordinateUnitsLatLon:
		return "Latitude/Longitude (WGS-84)"
	case CoordinateUnitsEastNorth:
		return "Easting/Northing (Projected)"
	default:
		return "Unknown"
	}
}

// UsageBand is the ENC usage band (intended navigational purpose) declared
// in DSID's INTU field. S-57 Part 3 Table 3.1, S-52 Section 3.4.
type UsageBand int

const (
	UsageBandUnknown   UsageBand = 0
	UsageBandOverview  UsageBand = 1
	UsageBandGeneral   UsageBand = 2
	UsageBandCoastal   UsageBand = 3
	UsageBandApproach  UsageBand = 4
	UsageBandHarbour   UsageBand = 5
	UsageBandBerthing  UsageBand = 6
)

func (ub UsageBand) String() string {
	switch ub {
	case UsageBandOverview:
		return "Overview"
	case UsageBandGeneral:
		return "General"
	case UsageBandCoastal:
		return "Coastal"
	case UsageBandApproach:
		return "Approach"
	case UsageBandHarbour:
		return "Harbour"
	case UsageBandBerthing:
		return "Berthing"
	default:
		return "Unknown"
	}
}

// ScaleRange returns the recommended (min, max) scale denominators for this
// usage band. Overview and berthing are open-ended on one side.
func (ub UsageBand) ScaleRange() (min, max int) {
	switch ub {
	case UsageBandOverview:
		return 1500000, 0
	case UsageBandGeneral:
		return 350000, 1500000
	case UsageBandCoastal:
		return 90000, 350000
	case UsageBandApproach:
		return 22000, 90000
	case UsageBandHarbour:
		return 4000, 22000
	case UsageBandBerthing:
		return 0, 4000
	default:
		return 0, 0
	}
}
