package topology

import "github.com/orcacharts/s57/internal/ecs"

// TraversalContext bundles a World with the policies governing how its
// topology is walked. NewTraversalContext sets both policies to Error, the
// strictest choice, and the chainable With* setters override either one, so
// a caller can leave a policy at its default without naming it.
type TraversalContext struct {
	World            *ecs.World
	CyclePolicy      CyclePolicy
	ContinuityPolicy ContinuityPolicy
}

// NewTraversalContext returns a context defaulting to CyclePolicyError and
// ContinuityPolicyError, the strictest combination.
func NewTraversalContext(world *ecs.World) *TraversalContext {
	return &TraversalContext{
		World:            world,
		CyclePolicy:      CyclePolicyError(),
		ContinuityPolicy: ContinuityPolicyError(),
	}
}

// WithCyclePolicy sets the cycle policy and returns the context for chaining.
func (c *TraversalContext) WithCyclePolicy(p CyclePolicy) *TraversalContext {
	c.CyclePolicy = p
	return c
}

// WithContinuityPolicy sets the continuity policy and returns the context
// for chaining.
func (c *TraversalContext) WithContinuityPolicy(p ContinuityPolicy) *TraversalContext {
	c.ContinuityPolicy = p
	return c
}

// Orientation is the decoded form of an ORNT byte on a VRPT/FSPT pointer.
type Orientation int

const (
	OrientationNA Orientation = iota
	OrientationForward
	OrientationReverse
)

// OrientationFromORNT maps the raw ORNT byte (1=forward, 2=reverse,
// 255=not relevant) to an Orientation, defaulting unknown values to NA.
func OrientationFromORNT(ornt uint8) Orientation {
	switch ornt {
	case 1:
		return OrientationForward
	case 2:
		return OrientationReverse
	default:
		return OrientationNA
	}
}

// ShouldReverse reports whether coordinates resolved through this pointer
// must be reversed before use.
func (o Orientation) ShouldReverse() bool { return o == OrientationReverse }
