package topology

import (
	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
)

// FeatureBoundaryCursor resolves the boundary rings of an area feature: one
// exterior ring assembled from its USAG=1 FSPT references, followed by one
// ring per USAG=2 (interior) reference.
type FeatureBoundaryCursor struct {
	ctx  *TraversalContext
	foid key.FoidKey
}

// NewFeatureBoundaryCursor returns a cursor for the feature identified by foid.
func NewFeatureBoundaryCursor(ctx *TraversalContext, foid key.FoidKey) *FeatureBoundaryCursor {
	return &FeatureBoundaryCursor{ctx: ctx, foid: foid}
}

// ResolveRings returns every boundary ring for the feature: the exterior
// ring first (if any), then interior rings in FSPT order. Each ring is
// closed (first point equals last). Empty if the feature has no spatial
// references.
func (c *FeatureBoundaryCursor) ResolveRings() ([][]Point, error) {
	entity, ok := c.ctx.World.LookupByFoid(c.foid)
	if !ok {
		return nil, noGeometry(key.NameKey{RCNM: 100, RCID: c.foid.FIDN})
	}

	pointers, ok := c.ctx.World.FeaturePointers[entity]
	if !ok || len(pointers.SpatialRefs) == 0 {
		return nil, nil
	}

	walker := NewEdgeWalker(c.ctx)

	var exterior, interior []ecs.SpatialRef
	for _, ref := range pointers.SpatialRefs {
		switch ref.USAG {
		case 1:
			exterior = append(exterior, ref)
		case 2:
			interior = append(interior, ref)
		}
	}

	var rings [][]Point

	if len(exterior) > 0 {
		ring, err := c.resolveRingFromRefs(walker, exterior)
		if err != nil {
			return nil, err
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}

	// Each interior reference is resolved as its own ring: a complex island
	// boundary spanning multiple FSPT entries would need a connectivity
	// pass to group them, which this cursor does not perform (see DESIGN.md).
	for _, ref := range interior {
		ring, err := c.resolveRingFromRefs(walker, []ecs.SpatialRef{ref})
		if err != nil {
			return nil, err
		}
		if len(ring) > 0 {
			rings = append(rings, ring)
		}
	}

	return rings, nil
}

func (c *FeatureBoundaryCursor) resolveRingFromRefs(walker *EdgeWalker, refs []ecs.SpatialRef) ([]Point, error) {
	var ring []Point

	for idx, ref := range refs {
		meta, ok := c.ctx.World.VectorMeta[ref.Vector]
		if !ok {
			return nil, danglingReference(key.NameKey{RCNM: 100, RCID: c.foid.FIDN}, key.NameKey{})
		}

		edgeCoords, err := walker.ResolveLine2D(meta.Name)
		if err != nil {
			return nil, err
		}
		if OrientationFromORNT(ref.ORNT).ShouldReverse() {
			reversePoints(edgeCoords)
		}
		if len(edgeCoords) == 0 {
			continue
		}

		if len(ring) > 0 {
			lhsEnd := ring[len(ring)-1]
			rhsStart := edgeCoords[0]
			dup, err := walker.checkContinuity(lhsEnd, rhsStart, meta.Name, idx)
			if err != nil {
				return nil, err
			}
			if dup {
				ring = append(ring, edgeCoords[1:]...)
			} else {
				ring = append(ring, edgeCoords...)
			}
		} else {
			ring = append(ring, edgeCoords...)
		}
	}

	if len(ring) > 0 && !isClosed(ring) {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

func isClosed(ring []Point) bool {
	if len(ring) < 2 {
		return false
	}
	return pointsEqual(ring[0], ring[len(ring)-1])
}
