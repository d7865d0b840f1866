package s57

import (
	"fmt"

	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
	"github.com/orcacharts/s57/internal/topology"
	"github.com/orcacharts/s57/pkg/catalog"
)

// Feature is a navigational object resolved from a Dataset's entity-
// component store: depth contours, buoys, lights, hazards, and every other
// object class the S-57 Object Catalogue defines.
//
// A Feature is a thin view over its owning Dataset; it holds no geometry,
// and each Geometry() call walks the topology graph again to resolve an
// area or line feature's boundary. Build calls Geometry() once for every
// feature to fill the spatial index.
type Feature struct {
	dataset *Dataset
	entity  ecs.Entity
	meta    ecs.FeatureMeta
}

// FOID returns the feature's object identifier (AGEN:FIDN:FIDS).
func (f *Feature) FOID() key.FoidKey { return f.meta.FOID }

// ID returns a numeric identifier derived from the feature's FOID, unique
// within the producing agency's dataset but not across agencies.
func (f *Feature) ID() uint32 { return f.meta.FOID.FIDN }

// ObjectClassCode returns the feature's raw OBJL code.
func (f *Feature) ObjectClassCode() uint16 { return f.meta.OBJL }

// ObjectClass returns the feature's object class acronym (e.g. "DEPARE",
// "LIGHTS"), looked up in the non-normative catalog package. An unrecognized
// code renders as "OBJL_<code>" rather than failing.
func (f *Feature) ObjectClass() string {
	if name, ok := catalog.ObjectClassName(int(f.meta.OBJL)); ok {
		return name
	}
	return fmt.Sprintf("OBJL_%d", f.meta.OBJL)
}

// Primitive reports the feature's geometric primitive: 1=point, 2=line,
// 3=area, 255=not applicable (metadata/collection features carry no
// geometry of their own).
func (f *Feature) Primitive() uint8 { return f.meta.PRIM }

// Attributes returns the feature's ATTF (IHO-standard) attribute values,
// keyed by acronym via the catalog package.
func (f *Feature) Attributes() map[string]string {
	return f.attributesFrom(false)
}

// NationalAttributes returns the feature's NATF (producer-defined national)
// attribute values. Unlike ATTF codes these aren't in the IHO catalogue, so
// they're keyed by their raw numeric code.
func (f *Feature) NationalAttributes() map[string]string {
	return f.attributesFrom(true)
}

func (f *Feature) attributesFrom(national bool) map[string]string {
	attrs, ok := f.dataset.world.FeatureAttrs[f.entity]
	if !ok {
		return nil
	}
	list := attrs.ATTF
	if national {
		list = attrs.NATF
	}
	if len(list) == 0 {
		return nil
	}
	out := make(map[string]string, len(list))
	for _, a := range list {
		key := fmt.Sprintf("ATTR_%d", a.Code)
		if !national {
			if name, ok := catalog.AttributeName(int(a.Code)); ok {
				key = name
			}
		}
		out[key] = a.Value
	}
	return out
}

// Attribute returns a single ATTF attribute's value by acronym.
func (f *Feature) Attribute(name string) (string, bool) {
	v, ok := f.Attributes()[name]
	return v, ok
}

// Geometry resolves the feature's spatial representation.
//
// A point feature's geometry comes directly from its one spatial
// reference's coordinates (or all of them, for a multipoint sounding). A
// line feature's geometry is assembled by walking every VRPT chain its FSPT
// references name, in FSPT order. An area feature's geometry is assembled
// by resolving its exterior and interior boundary rings. A feature with no
// spatial references (PRIM=255, typically a metadata or collection feature)
// resolves to GeometryTypeNone with an empty Coordinates/Rings.
func (f *Feature) Geometry() (Geometry, error) {
	pointers, ok := f.dataset.world.FeaturePointers[f.entity]
	if !ok || len(pointers.SpatialRefs) == 0 {
		return Geometry{Type: GeometryTypeNone}, nil
	}

	switch f.meta.PRIM {
	case 1:
		return f.resolvePointGeometry(pointers.SpatialRefs)
	case 2:
		return f.resolveLineGeometry(pointers.SpatialRefs)
	case 3:
		return f.resolveAreaGeometry()
	default:
		return Geometry{Type: GeometryTypeNone}, nil
	}
}

func (f *Feature) resolvePointGeometry(refs []ecs.SpatialRef) (Geometry, error) {
	var coords [][]float64
	for _, ref := range refs {
		positions, ok := f.dataset.world.ExactPositions[ref.Vector]
		if !ok {
			continue
		}
		lat, lon := positions.ToFloat64()
		for i := range lat {
			coords = append(coords, []float64{lon[i], lat[i]})
		}
	}
	if len(coords) == 0 {
		return Geometry{Type: GeometryTypeNone}, nil
	}
	if len(coords) == 1 {
		return Geometry{Type: GeometryTypePoint, Coordinates: coords}, nil
	}
	return Geometry{Type: GeometryTypeMultiPoint, Coordinates: coords}, nil
}

func (f *Feature) resolveLineGeometry(refs []ecs.SpatialRef) (Geometry, error) {
	walker := topology.NewEdgeWalker(f.dataset.traversalContext())

	var coords [][]float64
	for _, ref := range refs {
		meta, ok := f.dataset.world.VectorMeta[ref.Vector]
		if !ok {
			return Geometry{}, fmt.Errorf("feature %s: spatial reference to unindexed vector", f.meta.FOID)
		}
		pts, err := walker.ResolveLine2D(meta.Name)
		if err != nil {
			return Geometry{}, err
		}
		if topology.OrientationFromORNT(ref.ORNT).ShouldReverse() {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		for _, p := range pts {
			lat, _ := p.Lat.Float64()
			lon, _ := p.Lon.Float64()
			coords = append(coords, []float64{lon, lat})
		}
	}
	return Geometry{Type: GeometryTypeLineString, Coordinates: coords}, nil
}

func (f *Feature) resolveAreaGeometry() (Geometry, error) {
	cursor := topology.NewFeatureBoundaryCursor(f.dataset.traversalContext(), f.meta.FOID)
	rawRings, err := cursor.ResolveRings()
	if err != nil {
		return Geometry{}, err
	}
	rings := make([][][]float64, len(rawRings))
	for i, ring := range rawRings {
		coords := make([][]float64, len(ring))
		for j, p := range ring {
			lat, _ := p.Lat.Float64()
			lon, _ := p.Lon.Float64()
			coords[j] = []float64{lon, lat}
		}
		rings[i] = coords
	}
	return Geometry{Type: GeometryTypePolygon, Rings: rings}, nil
}
