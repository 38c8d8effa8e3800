// Package operator implements the dense complex matrix algebra underlying
// quantum tomography: operator products, Kronecker products, vectorization,
// partial traces, Hermitian spectral calculus, and complex least squares.
//
// Operators are treated as immutable once built: every arithmetic method
// returns a fresh value, so operators are safe to share read-only across
// goroutines. Shape mismatches are programmer errors and panic with ErrShape,
// following gonum's convention; only operations whose failure depends on
// caller-supplied data return errors.
package operator

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrShape is the panic value for operations on incompatibly shaped operators.
var ErrShape = errors.New("operator: dimension mismatch")

// A Dense is a dense complex matrix stored in row-major order.
type Dense struct {
	rows, cols int
	data       []complex128
}

// NewDense builds an r×c operator from row-major data. A nil data slice
// yields a zero operator. The data slice is copied, never aliased.
func NewDense(r, c int, data []complex128) *Dense {
	if r <= 0 || c <= 0 {
		panic(ErrShape)
	}
	if data != nil && len(data) != r*c {
		panic(ErrShape)
	}
	d := &Dense{rows: r, cols: c, data: make([]complex128, r*c)}
	copy(d.data, data)
	return d
}

// Identity returns the n×n identity operator.
func Identity(n int) *Dense {
	d := NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.data[i*n+i] = 1
	}
	return d
}

// Dims returns the row and column counts of d.
func (d *Dense) Dims() (rows, cols int) { return d.rows, d.cols }

// At returns the element at row i, column j.
func (d *Dense) At(i, j int) complex128 {
	if i < 0 || i >= d.rows || j < 0 || j >= d.cols {
		panic(ErrShape)
	}
	return d.data[i*d.cols+j]
}

// Set assigns the element at row i, column j. It is intended for use while an
// operator is being constructed; a shared operator must not be mutated.
func (d *Dense) Set(i, j int, v complex128) {
	if i < 0 || i >= d.rows || j < 0 || j >= d.cols {
		panic(ErrShape)
	}
	d.data[i*d.cols+j] = v
}

// Clone returns a deep copy of d.
func (d *Dense) Clone() *Dense {
	return NewDense(d.rows, d.cols, d.data)
}

// Add returns d + b.
func (d *Dense) Add(b *Dense) *Dense {
	if d.rows != b.rows || d.cols != b.cols {
		panic(ErrShape)
	}
	out := NewDense(d.rows, d.cols, d.data)
	for i := range out.data {
		out.data[i] += b.data[i]
	}
	return out
}

// Sub returns d − b.
func (d *Dense) Sub(b *Dense) *Dense {
	if d.rows != b.rows || d.cols != b.cols {
		panic(ErrShape)
	}
	out := NewDense(d.rows, d.cols, d.data)
	for i := range out.data {
		out.data[i] -= b.data[i]
	}
	return out
}

// Scale returns z·d.
func (d *Dense) Scale(z complex128) *Dense {
	out := NewDense(d.rows, d.cols, d.data)
	for i := range out.data {
		out.data[i] *= z
	}
	return out
}

// Mul returns the matrix product d·b.
func (d *Dense) Mul(b *Dense) *Dense {
	if d.cols != b.rows {
		panic(ErrShape)
	}
	out := NewDense(d.rows, b.cols, nil)
	for i := 0; i < d.rows; i++ {
		for k := 0; k < d.cols; k++ {
			a := d.data[i*d.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*b.cols+j] += a * b.data[k*b.cols+j]
			}
		}
	}
	return out
}

// MulVec returns the matrix-vector product d·v.
func (d *Dense) MulVec(v []complex128) []complex128 {
	if d.cols != len(v) {
		panic(ErrShape)
	}
	out := make([]complex128, d.rows)
	for i := 0; i < d.rows; i++ {
		var s complex128
		for j := 0; j < d.cols; j++ {
			s += d.data[i*d.cols+j] * v[j]
		}
		out[i] = s
	}
	return out
}

// Transpose returns dᵀ.
func (d *Dense) Transpose() *Dense {
	out := NewDense(d.cols, d.rows, nil)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			out.data[j*d.rows+i] = d.data[i*d.cols+j]
		}
	}
	return out
}

// Conj returns the element-wise complex conjugate of d.
func (d *Dense) Conj() *Dense {
	out := NewDense(d.rows, d.cols, d.data)
	for i := range out.data {
		out.data[i] = cmplx.Conj(out.data[i])
	}
	return out
}

// Dagger returns the conjugate transpose d†.
func (d *Dense) Dagger() *Dense {
	out := NewDense(d.cols, d.rows, nil)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			out.data[j*d.rows+i] = cmplx.Conj(d.data[i*d.cols+j])
		}
	}
	return out
}

// Kron returns the Kronecker product d ⊗ b.
func (d *Dense) Kron(b *Dense) *Dense {
	out := NewDense(d.rows*b.rows, d.cols*b.cols, nil)
	oc := d.cols * b.cols
	for i1 := 0; i1 < d.rows; i1++ {
		for j1 := 0; j1 < d.cols; j1++ {
			a := d.data[i1*d.cols+j1]
			if a == 0 {
				continue
			}
			for i2 := 0; i2 < b.rows; i2++ {
				for j2 := 0; j2 < b.cols; j2++ {
					out.data[(i1*b.rows+i2)*oc+j1*b.cols+j2] = a * b.data[i2*b.cols+j2]
				}
			}
		}
	}
	return out
}

// Trace returns the trace of a square operator.
func (d *Dense) Trace() complex128 {
	if d.rows != d.cols {
		panic(ErrShape)
	}
	var t complex128
	for i := 0; i < d.rows; i++ {
		t += d.data[i*d.cols+i]
	}
	return t
}

// Vec returns the row-major flattening of d as a fresh slice.
func (d *Dense) Vec() []complex128 {
	out := make([]complex128, len(d.data))
	copy(out, d.data)
	return out
}

// Hermitize returns (d + d†)/2, the nearest Hermitian operator to d in
// Frobenius distance.
func (d *Dense) Hermitize() *Dense {
	return d.Add(d.Dagger()).Scale(0.5)
}

// Unvec reshapes a length-d² vector back into a d×d operator, inverting Vec.
func Unvec(v []complex128, d int) (*Dense, error) {
	if d < 1 || len(v) != d*d {
		return nil, fmt.Errorf("operator: cannot reshape length-%d vector into %d×%d matrix", len(v), d, d)
	}
	return NewDense(d, d, v), nil
}

// HSInner returns the Hilbert-Schmidt inner product 0.5·tr(b†·a) of two
// square operators of equal dimension.
func HSInner(a, b *Dense) complex128 {
	if a.rows != a.cols || b.rows != b.cols || a.rows != b.rows {
		panic(ErrShape)
	}
	var s complex128
	for i := range a.data {
		s += cmplx.Conj(b.data[i]) * a.data[i]
	}
	return 0.5 * s
}

// TraceProduct returns tr(a·b) without forming the product.
func TraceProduct(a, b *Dense) complex128 {
	if a.cols != b.rows || a.rows != b.cols {
		panic(ErrShape)
	}
	var s complex128
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			s += a.data[i*a.cols+k] * b.data[k*b.cols+i]
		}
	}
	return s
}

// PartialTrace traces subsystem sys (0 or 1) out of an operator a acting on a
// d1⊗d2 tensor-product space.
func PartialTrace(a *Dense, d1, d2, sys int) (*Dense, error) {
	if d1 < 1 || d2 < 1 || a.rows != a.cols || a.rows != d1*d2 {
		return nil, fmt.Errorf("operator: cannot trace %d×%d matrix as a %d⊗%d system", a.rows, a.cols, d1, d2)
	}
	switch sys {
	case 0:
		out := NewDense(d2, d2, nil)
		for i2 := 0; i2 < d2; i2++ {
			for j2 := 0; j2 < d2; j2++ {
				var s complex128
				for i1 := 0; i1 < d1; i1++ {
					s += a.data[(i1*d2+i2)*a.cols+i1*d2+j2]
				}
				out.data[i2*d2+j2] = s
			}
		}
		return out, nil
	case 1:
		out := NewDense(d1, d1, nil)
		for i1 := 0; i1 < d1; i1++ {
			for j1 := 0; j1 < d1; j1++ {
				var s complex128
				for i2 := 0; i2 < d2; i2++ {
					s += a.data[(i1*d2+i2)*a.cols+j1*d2+i2]
				}
				out.data[i1*d1+j1] = s
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("operator: subsystem must be 0 or 1, got %d", sys)
	}
}

// Norm returns the Frobenius norm of d.
func Norm(d *Dense) float64 {
	var s float64
	for _, v := range d.data {
		s += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(s)
}

// Equalish reports whether a and b have the same shape and agree element-wise
// within tol.
func Equalish(a, b *Dense, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i := range a.data {
		if cmplx.Abs(a.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// IsHermitian reports whether a square operator equals its conjugate
// transpose within tol.
func IsHermitian(a *Dense, tol float64) bool {
	if a.rows != a.cols {
		return false
	}
	return Equalish(a, a.Dagger(), tol)
}
