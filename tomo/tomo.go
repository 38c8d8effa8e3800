// Package tomo reconstructs density matrices from quantum measurement counts.
//
// The pipeline has three stages. BuildProjectors enumerates the n-qubit
// projector set for a measurement basis and stacks its flattened projectors
// into the measurement matrix M. AssembleFitterData converts the outcome
// counts of an experiment into a probability vector aligned with the rows of
// M, together with shot-derived weights. LinearInversionFit and
// ConstrainedFit then solve the resulting linear system, the latter under the
// physicality constraints tr(ρ)=1 and ρ ⪰ 0. ReduceProcessToState extends
// the same pipeline to process tomography over the Choi-matrix space.
//
// Counts are produced externally, by hardware or by a simulator such as the
// sampler subpackage; this package never executes circuits.
package tomo

var (
	// DefaultCondThreshold is the largest acceptable 2-norm condition number
	// of the measurement matrix before a fit is rejected as rank deficient.
	DefaultCondThreshold = 1e8
	// DefaultMaxIters bounds the constrained fitter's iteration count.
	DefaultMaxIters = 10000
	// DefaultTol is the relative iterate-change tolerance at which the
	// constrained fitter declares convergence.
	DefaultTol = 1e-9
)
