// Package topology resolves renderable geometry for vectors and features
// whose coordinates aren't stored directly: it follows VRPT chains to
// assemble polylines (EdgeWalker) and FSPT references to assemble polygon
// rings (FeatureBoundaryCursor), entirely as a read-only walk over a World
// built by the internal/systems ingestion pass.
package topology

import (
	"fmt"
	"math/big"

	"github.com/orcacharts/s57/internal/key"
)

// ErrorKind discriminates the topology-level error taxonomy. Most kinds
// carry the record names, reference chain or coordinate pair explaining
// where resolution went wrong (MissingDatasetParams carries nothing), unlike
// the byte-level iso8211 errors, which carry offsets.
type ErrorKind int

const (
	KindDanglingReference ErrorKind = iota
	KindCycleDetected
	KindContinuityBreak
	KindMixedDimensionality
	KindMaxDepthExceeded
	KindNoGeometry
	KindMissingDatasetParams
)

// Point is a (lat, lon) pair of exact rationals: the element type of the
// coordinate lists EdgeWalker and FeatureBoundaryCursor return, and of the
// ContinuityBreak payload.
type Point struct {
	Lat, Lon *big.Rat
}

// Error is the shared error type for every topology-traversal failure.
type Error struct {
	Kind ErrorKind

	From, To     key.NameKey // DanglingReference (vector-to-vector)
	FromFeature  key.FoidKey // DanglingReference (feature-to-feature)
	ToFeature    key.FoidKey // DanglingReference (feature-to-feature)
	byFeature    bool
	Chain    []key.NameKey // CycleDetected, MaxDepthExceeded

	AtIndex        int          // ContinuityBreak
	LHSEnd, RHSStart Point      // ContinuityBreak
	Child          key.NameKey  // ContinuityBreak

	Expected, Found string      // MixedDimensionality
	At              key.NameKey // MixedDimensionality

	MaxDepth int // MaxDepthExceeded

	Vector key.NameKey // NoGeometry
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindDanglingReference:
		if e.byFeature {
			return fmt.Sprintf("dangling reference from %s to %s", e.FromFeature, e.ToFeature)
		}
		return fmt.Sprintf("dangling reference from %s to %s", e.From, e.To)
	case KindCycleDetected:
		return fmt.Sprintf("cycle detected in chain: %s", formatChain(e.Chain))
	case KindContinuityBreak:
		return fmt.Sprintf("continuity break at index %d (child %s): end %s != start %s",
			e.AtIndex, e.Child, formatPoint(e.LHSEnd), formatPoint(e.RHSStart))
	case KindMixedDimensionality:
		return fmt.Sprintf("mixed dimensionality at %s: expected %s, found %s", e.At, e.Expected, e.Found)
	case KindMaxDepthExceeded:
		return fmt.Sprintf("maximum recursion depth %d exceeded, chain length %d", e.MaxDepth, len(e.Chain))
	case KindNoGeometry:
		return fmt.Sprintf("vector %s has no geometry", e.Vector)
	case KindMissingDatasetParams:
		return "dataset parameters (DSPM) not available"
	default:
		return "topology error"
	}
}

func formatChain(chain []key.NameKey) string {
	s := ""
	for i, n := range chain {
		if i > 0 {
			s += " -> "
		}
		s += n.String()
	}
	return s
}

func formatPoint(p Point) string {
	if p.Lat == nil || p.Lon == nil {
		return "(?, ?)"
	}
	return fmt.Sprintf("(%s, %s)", p.Lat.RatString(), p.Lon.RatString())
}

func danglingReference(from, to key.NameKey) error {
	return &Error{Kind: KindDanglingReference, From: from, To: to}
}

func danglingFeatureReference(from, to key.FoidKey) error {
	return &Error{Kind: KindDanglingReference, FromFeature: from, ToFeature: to, byFeature: true}
}

func cycleDetected(chain []key.NameKey) error {
	return &Error{Kind: KindCycleDetected, Chain: append([]key.NameKey(nil), chain...)}
}

func continuityBreak(index int, lhsEnd, rhsStart Point, child key.NameKey) error {
	return &Error{Kind: KindContinuityBreak, AtIndex: index, LHSEnd: lhsEnd, RHSStart: rhsStart, Child: child}
}

func maxDepthExceeded(maxDepth int, chain []key.NameKey) error {
	return &Error{Kind: KindMaxDepthExceeded, MaxDepth: maxDepth, Chain: append([]key.NameKey(nil), chain...)}
}

func mixedDimensionality(expected, found string, at key.NameKey) error {
	return &Error{Kind: KindMixedDimensionality, Expected: expected, Found: found, At: at}
}

func noGeometry(vector key.NameKey) error {
	return &Error{Kind: KindNoGeometry, Vector: vector}
}

func missingDatasetParams() error {
	return &Error{Kind: KindMissingDatasetParams}
}

// ErrMissingDatasetParams reports that geometry decoding was attempted
// before a DSPM field set DatasetParams on the World. Exported so the C7
// ingestion systems (GeometryDecode) raise this package's error kind; the
// walker reads already-decoded positions and never raises it.
func ErrMissingDatasetParams() error { return missingDatasetParams() }

// NewDanglingReferenceError reports that a VRPT, FSPT, or FFPT pointer names
// a record that was never ingested. Exported so the C7 ingestion systems
// (TopologyDecode, FeatureBind) can raise the same error kind the C8 walker
// raises when it independently rediscovers a missing NAME.
func NewDanglingReferenceError(from, to key.NameKey) error {
	return danglingReference(from, to)
}

// NewDanglingFeatureReferenceError reports that an FFPT pointer names a
// feature (by FOID) that was never ingested.
func NewDanglingFeatureReferenceError(from, to key.FoidKey) error {
	return danglingFeatureReference(from, to)
}
