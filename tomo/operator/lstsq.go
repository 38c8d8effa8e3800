package operator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrIllConditioned indicates a least-squares system whose condition number
// exceeds the caller's threshold, or one that is outright singular.
var ErrIllConditioned = errors.New("operator: matrix is ill-conditioned")

// Lstsq solves the complex least-squares problem min ‖a·x − b‖₂ by embedding
// the system into an equivalent real one and solving the normal equations
// with gonum. condThreshold bounds the acceptable 2-norm condition number of
// a; beyond it Lstsq returns ErrIllConditioned, unless pinv is set, in which
// case it falls back to the SVD pseudo-inverse (least-norm) solution.
func Lstsq(a *Dense, b []complex128, condThreshold float64, pinv bool) ([]complex128, error) {
	if len(b) != a.rows {
		panic(ErrShape)
	}
	if condThreshold <= 0 {
		panic("operator: condition threshold must be positive")
	}
	re := realEmbed(a)
	rb := realEmbedVec(b)

	cond := mat.Cond(re, 2)
	if math.IsInf(cond, 1) || cond > condThreshold {
		if !pinv {
			return nil, fmt.Errorf("%w: condition number %.3g exceeds %.3g", ErrIllConditioned, cond, condThreshold)
		}
		return pinvSolve(a.cols, re, rb)
	}

	var normal mat.Dense
	normal.Mul(re.T(), re)
	var rhs mat.VecDense
	rhs.MulVec(re.T(), rb)
	var x mat.VecDense
	if err := x.SolveVec(&normal, &rhs); err != nil {
		if !pinv {
			return nil, fmt.Errorf("%w: %v", ErrIllConditioned, err)
		}
		return pinvSolve(a.cols, re, rb)
	}
	return unembedVec(&x, a.cols), nil
}

// pinvSolve computes the least-norm least-squares solution of the embedded
// real system re·x = rb via a thin SVD, discarding singular values below the
// standard numerical-rank cutoff.
func pinvSolve(cols int, re *mat.Dense, rb *mat.VecDense) ([]complex128, error) {
	var svd mat.SVD
	if !svd.Factorize(re, mat.SVDThin) {
		return nil, fmt.Errorf("%w: SVD did not converge", ErrIllConditioned)
	}
	vals := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	m, n := re.Dims()
	larger := m
	if n > larger {
		larger = n
	}
	cutoff := 0.0
	if len(vals) > 0 {
		cutoff = vals[0] * float64(larger) * 2.220446049250313e-16
	}

	x := mat.NewVecDense(n, nil)
	for k, s := range vals {
		if s <= cutoff {
			continue
		}
		var dot float64
		for i := 0; i < m; i++ {
			dot += u.At(i, k) * rb.AtVec(i)
		}
		dot /= s
		for j := 0; j < n; j++ {
			x.SetVec(j, x.AtVec(j)+dot*v.At(j, k))
		}
	}
	return unembedVec(x, cols), nil
}

// unembedVec folds a stacked real solution vector (Re x, Im x) back into a
// complex vector of length cols.
func unembedVec(x *mat.VecDense, cols int) []complex128 {
	out := make([]complex128, cols)
	for i := range out {
		out[i] = complex(x.AtVec(i), x.AtVec(cols+i))
	}
	return out
}

// Norm2 returns the spectral norm (largest singular value) of a.
func Norm2(a *Dense) float64 {
	var svd mat.SVD
	if !svd.Factorize(realEmbed(a), mat.SVDNone) {
		return math.NaN()
	}
	return svd.Values(nil)[0]
}

// Cond2 returns the 2-norm condition number of a.
func Cond2(a *Dense) float64 {
	return mat.Cond(realEmbed(a), 2)
}
