package operator

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEigenFailed indicates that the underlying symmetric eigensolver did not
// converge. In practice this only occurs on non-finite input.
var ErrEigenFailed = errors.New("operator: eigendecomposition failed")

// realEmbed maps a complex r×c matrix a = X + iY onto the real 2r×2c matrix
//
//	( X  −Y )
//	( Y   X )
//
// The embedding is an algebra homomorphism: it preserves products, sums,
// transposition-with-conjugation and singular values (each repeated twice),
// and it carries Hermitian matrices to symmetric ones. All gonum-backed
// numerics in this package run on the embedded real system.
func realEmbed(a *Dense) *mat.Dense {
	r, c := a.rows, a.cols
	out := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			re, im := real(a.data[i*c+j]), imag(a.data[i*c+j])
			out.Set(i, j, re)
			out.Set(i, c+j, -im)
			out.Set(r+i, j, im)
			out.Set(r+i, c+j, re)
		}
	}
	return out
}

// realEmbedVec maps a complex vector b onto the stacked real vector
// (Re b, Im b).
func realEmbedVec(b []complex128) *mat.VecDense {
	out := mat.NewVecDense(2*len(b), nil)
	for i, v := range b {
		out.SetVec(i, real(v))
		out.SetVec(len(b)+i, imag(v))
	}
	return out
}

// embedSym builds the symmetric real embedding of a Hermitian operator,
// averaging the off-diagonal pairs to absorb floating-point asymmetry.
func embedSym(a *Dense) *mat.SymDense {
	e := realEmbed(a)
	n := 2 * a.rows
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(e.At(i, j)+e.At(j, i)))
		}
	}
	return s
}

// hermEigen factorizes the symmetric embedding of a Hermitian d×d operator.
// The returned values are the eigenvalues of a in ascending order, each
// appearing twice.
func hermEigen(a *Dense, vectors bool) (*mat.EigenSym, error) {
	if a.rows != a.cols {
		panic(ErrShape)
	}
	var es mat.EigenSym
	if !es.Factorize(embedSym(a), vectors) {
		return nil, ErrEigenFailed
	}
	return &es, nil
}

// EigvalsHermitian returns the d eigenvalues of a Hermitian operator in
// ascending order. The input must be Hermitian; no symmetrization beyond
// rounding-error absorption is applied.
func EigvalsHermitian(a *Dense) ([]float64, error) {
	es, err := hermEigen(a, false)
	if err != nil {
		return nil, err
	}
	doubled := es.Values(nil)
	vals := make([]float64, a.rows)
	for i := range vals {
		// Eigenvalues of the embedding come in adjacent identical pairs;
		// averaging the pair sheds half a rounding error.
		vals[i] = 0.5 * (doubled[2*i] + doubled[2*i+1])
	}
	return vals, nil
}

// SpectralMap applies the scalar function f to a Hermitian operator through
// its spectral decomposition: for a = Σ λ·u·u†, it returns Σ f(λ)·u·u†.
func SpectralMap(a *Dense, f func(float64) float64) (*Dense, error) {
	es, err := hermEigen(a, true)
	if err != nil {
		return nil, err
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	d := a.rows
	out := NewDense(d, d, nil)
	u := make([]complex128, d)
	for k := 0; k < 2*d; k++ {
		fl := f(vals[k])
		if fl == 0 {
			continue
		}
		// A unit eigenvector (x, y) of the embedding lifts to the unit
		// eigenvector x + iy of a; the doubled spectrum makes each rank-one
		// term appear twice, hence the 0.5 weight.
		for i := 0; i < d; i++ {
			u[i] = complex(vecs.At(i, k), vecs.At(d+i, k))
		}
		for i := 0; i < d; i++ {
			w := 0.5 * complex(fl, 0) * u[i]
			for j := 0; j < d; j++ {
				out.data[i*d+j] += w * complex(real(u[j]), -imag(u[j]))
			}
		}
	}
	return out, nil
}

// SqrtPSD returns the principal square root of a Hermitian positive
// semidefinite operator. Slightly negative eigenvalues from rounding are
// clipped to zero.
func SqrtPSD(a *Dense) (*Dense, error) {
	return SpectralMap(a, func(l float64) float64 {
		if l < 0 {
			return 0
		}
		return math.Sqrt(l)
	})
}
