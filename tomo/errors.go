package tomo

import "errors"

var (
	// ErrConfiguration indicates an invalid qubit count or a malformed
	// measurement-basis specification.
	ErrConfiguration = errors.New("tomo: invalid tomography configuration")
	// ErrInsufficientData indicates measurement counts that cannot be
	// normalized, e.g. an empty count map or a setting with zero shots.
	ErrInsufficientData = errors.New("tomo: insufficient measurement data")
	// ErrRankDeficiency indicates a projector set that is not tomographically
	// complete: the measurement matrix does not span the operator space, or is
	// conditioned too poorly to invert.
	ErrRankDeficiency = errors.New("tomo: projector set is not tomographically complete")
	// ErrConvergence indicates that the constrained fitter exhausted its
	// iteration or time budget. The returned error is a *ConvergenceError
	// carrying the best available iterate.
	ErrConvergence = errors.New("tomo: constrained fit failed to converge")
	// ErrDimensionMismatch indicates inconsistently sized fit inputs, e.g. a
	// probability vector whose length differs from the measurement matrix row
	// count.
	ErrDimensionMismatch = errors.New("tomo: dimension mismatch")
)
