package s57

import (
	"github.com/orcacharts/s57/internal/systems"
	"github.com/orcacharts/s57/internal/topology"
)

// Logger receives one line per skipped record during ingestion, and is the
// same seam internal/systems.Build writes to.
type Logger = systems.Logger

// ParseOptions configures dataset ingestion.
type ParseOptions struct {
	// Logger receives a line for every record skipped during ingestion.
	// Defaults to a no-op.
	Logger Logger

	// Strict aborts the whole parse on the first record-level error
	// instead of logging and skipping it.
	Strict bool

	// ApplyUpdates controls whether ParseFile automatically discovers and
	// applies sequential update files (.001, .002, ...) found alongside a
	// base cell (.000). Default true.
	ApplyUpdates bool
}

// DefaultParseOptions returns the tolerant, update-applying default.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{ApplyUpdates: true}
}

func (o ParseOptions) buildOptions() systems.BuildOptions {
	return systems.BuildOptions{Logger: o.Logger, Strict: o.Strict}
}

// TraversalOptions configures how a Dataset's features resolve their
// geometry: the cycle and continuity policies handed to every EdgeWalker
// and FeatureBoundaryCursor the dataset builds internally.
type TraversalOptions struct {
	CyclePolicy      topology.CyclePolicy
	ContinuityPolicy topology.ContinuityPolicy
}

// DefaultTraversalOptions returns the strictest combination: any cycle or
// endpoint mismatch is an error. Callers loading production charts that
// tolerate minor digitizing slop typically relax ContinuityPolicy with
// WithContinuityPolicy(topology.ContinuityPolicySnapWithinTolerance(...)).
func DefaultTraversalOptions() TraversalOptions {
	return TraversalOptions{
		CyclePolicy:      topology.CyclePolicyError(),
		ContinuityPolicy: topology.ContinuityPolicyError(),
	}
}

// WithCyclePolicy returns opts with its CyclePolicy replaced.
func (opts TraversalOptions) WithCyclePolicy(p topology.CyclePolicy) TraversalOptions {
	opts.CyclePolicy = p
	return opts
}

// WithContinuityPolicy returns opts with its ContinuityPolicy replaced.
func (opts TraversalOptions) WithContinuityPolicy(p topology.ContinuityPolicy) TraversalOptions {
	opts.ContinuityPolicy = p
	return opts
}
