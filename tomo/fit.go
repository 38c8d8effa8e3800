package tomo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/qubitools/tomo/tomo/operator"
)

// A Method selects the constrained-fitting strategy. Both satisfy the same
// contract, a Hermitian, trace-1, positive-semidefinite estimate, but they
// are distinct algorithms and generally return similar rather than identical
// matrices.
type Method int

const (
	// MethodSDP solves the constrained program directly: projected gradient
	// descent on ‖W(Mρ−p)‖₂² over the spectahedron {ρ = ρ†, tr ρ = 1, ρ ⪰ 0}.
	MethodSDP Method = iota
	// MethodProjection solves the unconstrained weighted least-squares
	// problem, then projects onto the physical set by clipping negative
	// eigenvalues at zero and renormalizing the trace. A designed
	// approximation of the constrained optimum, not an error path.
	MethodProjection
)

// String returns the method's flag-friendly name.
func (m Method) String() string {
	switch m {
	case MethodSDP:
		return "sdp"
	case MethodProjection:
		return "projection"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// FitOpts tunes ConstrainedFit. The zero value requests MethodSDP with the
// package defaults and no wall-clock bound.
type FitOpts struct {
	Method Method
	// MaxIters bounds the optimizer's iterations. Zero selects
	// DefaultMaxIters.
	MaxIters int
	// Tol is the relative iterate-change threshold for declaring
	// convergence. Zero selects DefaultTol.
	Tol float64
	// Timeout bounds the optimizer's wall-clock time. Zero means unbounded.
	Timeout time.Duration
	// CondThreshold is passed through to the least-squares solver. Zero
	// selects DefaultCondThreshold.
	CondThreshold float64
}

// A ConvergenceError reports an optimizer that exhausted its iteration or
// time budget. It wraps ErrConvergence and carries the best iterate reached,
// already projected onto the physical set, along with that iterate's
// residual constraint violation.
type ConvergenceError struct {
	// Iters is the number of iterations performed.
	Iters int
	// Best is the last projected iterate, the best available estimate.
	Best *operator.Dense
	// Violation is max(|tr(Best)−1|, −λmin(Best), asymmetry of Best).
	Violation float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("tomo: constrained fit stopped after %d iterations without converging (constraint violation %.3g)", e.Iters, e.Violation)
}

// Unwrap makes errors.Is(err, ErrConvergence) hold for *ConvergenceError.
func (e *ConvergenceError) Unwrap() error { return ErrConvergence }

// ConstrainedFit reconstructs a physically valid density-matrix estimate:
// the returned operator is Hermitian, has unit trace, and is positive
// semidefinite, all within numerical tolerance. weights may be nil for an
// unweighted fit; otherwise weights[i] scales row i of M and p[i] together.
func ConstrainedFit(p []float64, m *operator.Dense, weights []float64, opts FitOpts) (*operator.Dense, error) {
	rows, cols := m.Dims()
	if len(p) != rows {
		return nil, fmt.Errorf("%w: %d probabilities for %d measurement rows", ErrDimensionMismatch, len(p), rows)
	}
	if weights != nil && len(weights) != rows {
		return nil, fmt.Errorf("%w: %d weights for %d measurement rows", ErrDimensionMismatch, len(weights), rows)
	}
	d := int(math.Round(math.Sqrt(float64(cols))))
	if d < 1 || d*d != cols {
		return nil, fmt.Errorf("%w: measurement matrix has %d columns, not a squared dimension", ErrDimensionMismatch, cols)
	}

	mw, bw := applyWeights(p, m, weights)
	switch opts.Method {
	case MethodProjection:
		return projectionFit(bw, mw, d, opts)
	case MethodSDP:
		return sdpFit(bw, mw, d, opts)
	default:
		return nil, fmt.Errorf("%w: unknown fit method %d", ErrConfiguration, int(opts.Method))
	}
}

// applyWeights scales each row of m and entry of p by its weight, so that the
// unweighted residual of the scaled system equals the weighted residual of
// the original.
func applyWeights(p []float64, m *operator.Dense, weights []float64) (*operator.Dense, []complex128) {
	rows, cols := m.Dims()
	b := make([]complex128, rows)
	if weights == nil {
		for i, v := range p {
			b[i] = complex(v, 0)
		}
		return m, b
	}
	mw := operator.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		w := complex(weights[i], 0)
		b[i] = w * complex(p[i], 0)
		for j := 0; j < cols; j++ {
			mw.Set(i, j, w*m.At(i, j))
		}
	}
	return mw, b
}

// projectionFit is the unconstrained-fit-then-project strategy: weighted
// least squares followed by eigenvalue clipping and trace renormalization.
func projectionFit(b []complex128, m *operator.Dense, d int, opts FitOpts) (*operator.Dense, error) {
	thr := opts.CondThreshold
	if thr == 0 {
		thr = DefaultCondThreshold
	}
	rows, cols := m.Dims()
	if rows < cols {
		return nil, fmt.Errorf("%w: %d projectors cannot span a %d-dimensional operator space", ErrRankDeficiency, rows, cols)
	}
	x, err := operator.Lstsq(m, b, thr, false)
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
	clipped, err := operator.SpectralMap(rho.Hermitize(), func(l float64) float64 {
		if l < 0 {
			return 0
		}
		return l
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConvergence, err)
	}
	tr := real(clipped.Trace())
	if tr <= 0 {
		return nil, fmt.Errorf("%w: estimate has no positive eigenvalue mass", ErrConvergence)
	}
	return clipped.Scale(complex(1/tr, 0)), nil
}

// sdpFit solves the constrained program directly by projected gradient
// descent. The objective ½‖Mx−b‖₂² is smooth with gradient Lipschitz
// constant σmax(M)², so a fixed 1/σmax² step converges; every iterate is
// projected onto the spectahedron, so feasibility holds throughout.
func sdpFit(b []complex128, m *operator.Dense, d int, opts FitOpts) (*operator.Dense, error) {
	maxIters := opts.MaxIters
	if maxIters == 0 {
		maxIters = DefaultMaxIters
	}
	tol := opts.Tol
	if tol == 0 {
		tol = DefaultTol
	}
	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	sigma := operator.Norm2(m)
	if sigma == 0 || math.IsNaN(sigma) {
		return nil, fmt.Errorf("%w: measurement matrix is zero or non-finite", ErrConfiguration)
	}
	step := complex(1/(sigma*sigma), 0)
	md := m.Dagger()

	// Start from the maximally mixed state, the analytic center of the
	// feasible set.
	rho := operator.Identity(d).Scale(complex(1/float64(d), 0))
	x := rho.Vec()
	iters := 0
	for ; iters < maxIters; iters++ {
		r := m.MulVec(x)
		for i := range r {
			r[i] -= b[i]
		}
		g := md.MulVec(r)
		for i := range x {
			x[i] -= step * g[i]
		}
		next, err := operator.Unvec(x, d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
		}
		next, err = projectSpectahedron(next.Hermitize())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConvergence, err)
		}
		delta := operator.Norm(next.Sub(rho))
		rho = next
		x = rho.Vec()
		if delta <= tol*(1+operator.Norm(rho)) {
			return rho, nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			iters++
			break
		}
	}
	viol, verr := constraintViolation(rho)
	if verr != nil {
		viol = math.NaN()
	}
	return nil, &ConvergenceError{Iters: iters, Best: rho, Violation: viol}
}

// projectSpectahedron returns the Euclidean projection of a Hermitian
// operator onto {ρ ⪰ 0, tr ρ = 1}: its eigenvalues are projected onto the
// probability simplex while its eigenbasis is kept.
func projectSpectahedron(a *operator.Dense) (*operator.Dense, error) {
	vals, err := operator.EigvalsHermitian(a)
	if err != nil {
		return nil, err
	}
	tau := simplexThreshold(vals)
	return operator.SpectralMap(a, func(l float64) float64 {
		if l <= tau {
			return 0
		}
		return l - tau
	})
}

// simplexThreshold computes the shift τ such that Σ max(λ−τ, 0) = 1, for
// eigenvalues sorted in ascending order.
func simplexThreshold(ascending []float64) float64 {
	n := len(ascending)
	css := 0.0
	tau := 0.0
	k := 0
	// Walk the eigenvalues from the largest down; stop once the candidate
	// shift overtakes the next eigenvalue.
	for i := n - 1; i >= 0; i-- {
		k++
		css += ascending[i]
		t := (css - 1) / float64(k)
		if i == 0 || ascending[i-1] <= t {
			tau = t
			break
		}
	}
	return tau
}

// constraintViolation measures how far rho sits from the physical set.
func constraintViolation(rho *operator.Dense) (float64, error) {
	vals, err := operator.EigvalsHermitian(rho.Hermitize())
	if err != nil {
		return 0, err
	}
	v := math.Abs(real(rho.Trace()) - 1)
	if neg := -vals[0]; neg > v {
		v = neg
	}
	if asym := operator.Norm(rho.Sub(rho.Dagger())); asym > v {
		v = asym
	}
	return v, nil
}
