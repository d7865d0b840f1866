package ecs

import (
	"math/big"

	"github.com/orcacharts/s57/internal/key"
)

// DatasetParams holds the global scaling/units parameters declared in the
// dataset's DSPM record. COMF and SOMF convert raw integer coordinates into
// exact lat/lon/depth values; every other field is descriptive.
type DatasetParams struct {
	COMF *big.Rat // coordinate multiplication factor
	SOMF *big.Rat // sounding (depth) multiplication factor
	DUNI uint16   // units of depth
	HUNI uint16   // units of height
	PUNI uint16   // units of positional accuracy
	HDAT uint16   // horizontal geodetic datum
	VDAT uint16   // vertical datum
	SDAT uint16   // sounding datum
	CSCL uint32   // compilation scale
}

// DatasetIdentity holds the dataset-level metadata declared in the file's
// DSID record: the cell identifier, edition/update bookkeeping, and the
// producing agency. Populated once per World, same as DatasetParams.
type DatasetIdentity struct {
	RCNM uint8
	RCID uint32
	EXPP uint8  // exchange purpose: 1=new, 2=revision
	INTU uint8  // intended usage (usage band)
	DSNM string // dataset name, e.g. "US5MA22M"
	EDTN string // edition number
	UPDN string // update number ("0" for a base cell)
	UADT string // update application date, YYYYMMDD
	ISDT string // issue date, YYYYMMDD
	STED string // S-57 edition, e.g. "03.1"
	PRSP uint8  // product specification: 1=ENC, 2=ODD
	PSDN string // product specification description
	PRED string // product specification edition
	PROF uint8  // application profile: 1=EN, 2=ER, 3=DD
	AGEN uint16 // producing agency code
	COMT string // comment
}

// VectorMeta is the metadata every vector (VRID) record carries.
type VectorMeta struct {
	Name key.NameKey
	RVER uint16
	RUIN uint8 // 1=insert, 2=delete, 3=modify
}

// VectorTopology records a vector's VRPT neighbor pointers, resolved to
// entities rather than left as raw NameKeys: everything downstream (the
// topology walker) needs to dereference these, and resolving once at
// ingestion time means a dangling pointer is caught there instead of being
// rediscovered by every traversal that follows it.
type VectorTopology struct {
	Neighbors []VectorNeighbor
}

// VectorNeighbor is one VRPT entry: a pointer to a neighboring vector plus
// the orientation/usage/topology/masking flags controlling how it's used.
type VectorNeighbor struct {
	Vector Entity
	ORNT   uint8 // 1=forward, 2=reverse, 255=not relevant
	USAG   uint8 // 1=exterior, 2=interior, 3=exterior boundary truncated
	TOPI   uint8 // 1=begin node, 2=end node, 3=left face, 4=right face, ...
	MASK   uint8 // 1=mask, 2=show, 255=not relevant
}

// FeatureMeta is the metadata every feature (FRID/FOID) record carries.
type FeatureMeta struct {
	FOID key.FoidKey
	PRIM uint8 // 1=point, 2=line, 3=area, 255=not applicable
	GRUP uint8 // 1=geo, 2=meta, 3=collection, 4=national, 5=chart
	OBJL uint16
	RVER uint16
	RUIN uint8
}

// FeatureAttributes holds decoded ATTF/NATF label-value pairs.
type FeatureAttributes struct {
	ATTF []Attribute
	NATF []Attribute
}

// Attribute is one ATTF/NATF entry: an attribute code plus its string value.
type Attribute struct {
	Code  uint16
	Value string
}

// FeaturePointers holds a feature's FFPT (feature-to-feature) and FSPT
// (feature-to-spatial) cross-references, resolved to entities for the same
// reason VectorTopology resolves its neighbors eagerly.
type FeaturePointers struct {
	RelatedFeatures []Entity
	SpatialRefs     []SpatialRef
}

// SpatialRef is one FSPT entry: a pointer to the vector record carrying a
// feature's geometry.
type SpatialRef struct {
	Vector Entity
	ORNT   uint8
	USAG   uint8
	MASK   uint8
}

// ExactPositions holds a vector's coordinates as exact rationals, computed
// from SG2D/SG3D raw integers divided by DatasetParams.COMF. Conversion to
// float64 happens only at the rendering boundary, never mid-pipeline.
type ExactPositions struct {
	Lat []*big.Rat
	Lon []*big.Rat
}

// ToFloat64 converts to float64 for rendering. Not cached: callers that need
// repeated access should convert once and hold the result themselves.
func (p ExactPositions) ToFloat64() (lat, lon []float64) {
	lat = make([]float64, len(p.Lat))
	lon = make([]float64, len(p.Lon))
	for i, r := range p.Lat {
		lat[i], _ = r.Float64()
	}
	for i, r := range p.Lon {
		lon[i], _ = r.Float64()
	}
	return lat, lon
}

// ExactDepths holds a vector's 3D soundings as exact rationals, computed
// from SG3D raw integers divided by DatasetParams.SOMF.
type ExactDepths struct {
	Depth []*big.Rat
	Units uint16 // from DUNI: 1=metres, 2=fathoms/feet, ...
}

// ToFloat64 converts to float64 for rendering.
func (d ExactDepths) ToFloat64() []float64 {
	out := make([]float64, len(d.Depth))
	for i, r := range d.Depth {
		out[i], _ = r.Float64()
	}
	return out
}
