package topology

import (
	"math/big"

	"github.com/orcacharts/s57/internal/ecs"
	"github.com/orcacharts/s57/internal/key"
)

// MaxDepth is the hard recursion ceiling for resolve_line_2d: a VRPT chain
// longer than this fails with MaxDepthExceeded rather than blowing the Go
// call stack on a pathological or corrupt chart.
const MaxDepth = 100

// EdgeWalker recursively resolves a vector's coordinates, following VRPT
// chains when the vector has no direct geometry. It never mutates the
// World it walks.
type EdgeWalker struct {
	ctx         *TraversalContext
	visitCounts map[key.NameKey]int
	depth       int
	chain       []key.NameKey
}

// NewEdgeWalker returns a walker bound to ctx. A walker accumulates visit
// counts across every call to ResolveLine2D made on it, so cycle detection
// spans the whole traversal the caller performs with it, not just one call.
func NewEdgeWalker(ctx *TraversalContext) *EdgeWalker {
	return &EdgeWalker{ctx: ctx, visitCounts: make(map[key.NameKey]int)}
}

// ResolveLine2D resolves name to a coordinate list: a copy of its direct
// ExactPositions if present, or the stitched result of recursively resolving
// its VRPT neighbors in order, applying orientation and the continuity
// policy between successive segments.
func (w *EdgeWalker) ResolveLine2D(name key.NameKey) ([]Point, error) {
	if w.depth >= MaxDepth {
		return nil, maxDepthExceeded(MaxDepth, w.chain)
	}
	truncate, err := w.checkCycle(name)
	if err != nil {
		return nil, err
	}
	if truncate {
		return nil, nil
	}

	w.chain = append(w.chain, name)
	w.depth++
	w.visitCounts[name]++
	defer func() {
		w.depth--
		w.chain = w.chain[:len(w.chain)-1]
	}()

	entity, ok := w.ctx.World.LookupByName(name)
	if !ok {
		from := name
		if len(w.chain) >= 2 {
			from = w.chain[len(w.chain)-2]
		}
		return nil, danglingReference(from, name)
	}

	if positions, ok := w.ctx.World.ExactPositions[entity]; ok {
		return pointsFromPositions(positions), nil
	}

	topo, ok := w.ctx.World.VectorTopology[entity]
	if !ok || len(topo.Neighbors) == 0 {
		return nil, noGeometry(name)
	}

	var result []Point
	for idx, neighbor := range topo.Neighbors {
		neighborMeta, ok := w.ctx.World.VectorMeta[neighbor.Vector]
		if !ok {
			return nil, danglingReference(name, key.NameKey{})
		}
		neighborName := neighborMeta.Name
		if w.ctx.CyclePolicy.kind == cycleTruncate && w.visitCounts[neighborName] > 0 {
			break
		}

		ornt := OrientationFromORNT(neighbor.ORNT)
		childCoords, err := w.ResolveLine2D(neighborName)
		if err != nil {
			return nil, err
		}
		if ornt.ShouldReverse() {
			reversePoints(childCoords)
		}
		if len(childCoords) == 0 {
			continue
		}

		if len(result) > 0 {
			lhsEnd := result[len(result)-1]
			rhsStart := childCoords[0]
			dup, err := w.checkContinuity(lhsEnd, rhsStart, neighborName, idx)
			if err != nil {
				return nil, err
			}
			if dup {
				result = append(result, childCoords[1:]...)
			} else {
				result = append(result, childCoords...)
			}
		} else {
			result = append(result, childCoords...)
		}
	}

	return result, nil
}

// checkCycle reports whether resolving name would violate the cycle policy.
// Truncate asks the caller to stop here without error, returning whatever
// has already been accumulated; Error and AllowVisitCount(N) fail outright
// once their respective thresholds are crossed.
func (w *EdgeWalker) checkCycle(name key.NameKey) (truncate bool, err error) {
	visits := w.visitCounts[name]
	switch w.ctx.CyclePolicy.kind {
	case cycleError:
		if visits > 0 {
			return false, cycleDetected(append(append([]key.NameKey(nil), w.chain...), name))
		}
	case cycleTruncate:
		if visits > 0 {
			return true, nil
		}
	case cycleAllowVisitCount:
		if visits >= w.ctx.CyclePolicy.maxVisits {
			return false, cycleDetected(append(append([]key.NameKey(nil), w.chain...), name))
		}
	}
	return false, nil
}

// checkContinuity decides whether rhsStart should be treated as a duplicate
// of lhsEnd and skipped when stitching, or raises ContinuityBreak if the
// policy rejects the gap outright. dup is only meaningful when err is nil.
func (w *EdgeWalker) checkContinuity(lhsEnd, rhsStart Point, child key.NameKey, index int) (dup bool, err error) {
	if pointsEqual(lhsEnd, rhsStart) {
		return true, nil
	}
	switch w.ctx.ContinuityPolicy.kind {
	case continuityError:
		return false, continuityBreak(index, lhsEnd, rhsStart, child)
	case continuitySnapWithinTolerance:
		tolerance := big.NewRat(1, w.ctx.ContinuityPolicy.denominator)
		dLat := new(big.Rat).Sub(lhsEnd.Lat, rhsStart.Lat)
		dLon := new(big.Rat).Sub(lhsEnd.Lon, rhsStart.Lon)
		if absRat(dLat).Cmp(tolerance) < 0 && absRat(dLon).Cmp(tolerance) < 0 {
			return true, nil
		}
		return false, continuityBreak(index, lhsEnd, rhsStart, child)
	case continuityInsertGapMarker:
		return false, nil
	default:
		return false, continuityBreak(index, lhsEnd, rhsStart, child)
	}
}

func pointsEqual(a, b Point) bool {
	return a.Lat.Cmp(b.Lat) == 0 && a.Lon.Cmp(b.Lon) == 0
}

func absRat(r *big.Rat) *big.Rat {
	if r.Sign() < 0 {
		return new(big.Rat).Neg(r)
	}
	return r
}

func reversePoints(pts []Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func pointsFromPositions(p ecs.ExactPositions) []Point {
	out := make([]Point, len(p.Lat))
	for i := range p.Lat {
		out[i] = Point{Lat: new(big.Rat).Set(p.Lat[i]), Lon: new(big.Rat).Set(p.Lon[i])}
	}
	return out
}
