package tomo

import (
	"errors"
	"fmt"
	"math"

	"github.com/qubitools/tomo/tomo/operator"
)

// LinearOpts tunes the linear-inversion solver. The zero value requests the
// package defaults.
type LinearOpts struct {
	// CondThreshold is the largest acceptable 2-norm condition number of M.
	// Zero selects DefaultCondThreshold.
	CondThreshold float64
	// PseudoInverse falls back to the SVD least-norm solution when M is
	// conditioned beyond the threshold, instead of failing with
	// ErrRankDeficiency.
	PseudoInverse bool
}

// LinearInversionFit reconstructs a density-matrix estimate by unweighted
// least squares: ρ̂ = unvec((M†M)⁻¹·M†·p).
//
// The estimate is exact (up to rounding) when p holds noiseless Born
// probabilities, but finite-sample noise can push it outside the physical
// set; ConstrainedFit restores physicality. M must be tomographically
// complete, i.e. have full column rank, or the fit fails with
// ErrRankDeficiency.
func LinearInversionFit(p []float64, m *operator.Dense, opts LinearOpts) (*operator.Dense, error) {
	rows, cols := m.Dims()
	if len(p) != rows {
		return nil, fmt.Errorf("%w: %d probabilities for %d measurement rows", ErrDimensionMismatch, len(p), rows)
	}
	d := int(math.Round(math.Sqrt(float64(cols))))
	if d < 1 || d*d != cols {
		return nil, fmt.Errorf("%w: measurement matrix has %d columns, not a squared dimension", ErrDimensionMismatch, cols)
	}
	if rows < cols && !opts.PseudoInverse {
		return nil, fmt.Errorf("%w: %d projectors cannot span a %d-dimensional operator space", ErrRankDeficiency, rows, cols)
	}

	thr := opts.CondThreshold
	if thr == 0 {
		thr = DefaultCondThreshold
	}
	b := make([]complex128, len(p))
	for i, v := range p {
		b[i] = complex(v, 0)
	}
	x, err := operator.Lstsq(m, b, thr, opts.PseudoInverse)
	if err != nil {
		if errors.Is(err, operator.ErrIllConditioned) {
			return nil, fmt.Errorf("%w: %v", ErrRankDeficiency, err)
		}
		return nil, err
	}
	rho, err := operator.Unvec(x, d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	}
	return rho, nil
}
