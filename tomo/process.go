package tomo

import (
	"fmt"

	"github.com/qubitools/tomo/tomo/operator"
)

// ReduceProcessToState reduces process tomography to state tomography over
// the Choi-matrix space. For every preparation state ρᵢ and measurement
// projector Pⱼ it forms the combined projector conj(ρᵢ) ⊗ Pⱼ; reconstructing
// the "state" measured by these projectors, with probability p_{ij} being the
// frequency of outcome j after preparing ρᵢ, yields the process's Choi
// matrix.
//
// Projectors are ordered with j varying fastest, and the stacked measurement
// matrix over the enlarged space is returned alongside them. Both input sets
// together must be tomographically complete for the doubled operator space
// for the downstream inversion to succeed.
func ReduceProcessToState(inputs, meas []*operator.Dense) ([]*operator.Dense, *operator.Dense, error) {
	if len(inputs) == 0 || len(meas) == 0 {
		return nil, nil, fmt.Errorf("%w: process reduction needs at least one input state and one measurement projector", ErrConfiguration)
	}
	di, err := commonDim(inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: input states: %v", ErrDimensionMismatch, err)
	}
	dm, err := commonDim(meas)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: measurement projectors: %v", ErrDimensionMismatch, err)
	}

	dc := di * dm
	projs := make([]*operator.Dense, 0, len(inputs)*len(meas))
	m := operator.NewDense(len(inputs)*len(meas), dc*dc, nil)
	row := 0
	for _, in := range inputs {
		cin := in.Conj()
		for _, pj := range meas {
			proj := cin.Kron(pj)
			projs = append(projs, proj)
			for col, z := range proj.Conj().Vec() {
				m.Set(row, col, z)
			}
			row++
		}
	}
	return projs, m, nil
}

// ApplyChoi evaluates the process described by a Choi matrix on a state:
// ℰ(ρ) = tr₁[(ρᵀ ⊗ I)·Λ].
func ApplyChoi(choi, rho *operator.Dense) (*operator.Dense, error) {
	d, dc := rho.Dims()
	if d != dc {
		return nil, fmt.Errorf("%w: state is %d×%d, want square", ErrDimensionMismatch, d, dc)
	}
	cr, cc := choi.Dims()
	if cr != cc || cr != d*d {
		return nil, fmt.Errorf("%w: Choi matrix is %d×%d for a dimension-%d state", ErrDimensionMismatch, cr, cc, d)
	}
	t := rho.Transpose().Kron(operator.Identity(d)).Mul(choi)
	out, err := operator.PartialTrace(t, d, d, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	}
	return out, nil
}

// commonDim returns the shared square dimension of a non-empty operator
// list, or an error if any member disagrees.
func commonDim(ops []*operator.Dense) (int, error) {
	d := 0
	for i, op := range ops {
		if op == nil {
			return 0, fmt.Errorf("operator %d is nil", i)
		}
		r, c := op.Dims()
		if r != c {
			return 0, fmt.Errorf("operator %d is %d×%d, want square", i, r, c)
		}
		if d == 0 {
			d = r
		} else if r != d {
			return 0, fmt.Errorf("operator %d has dimension %d, want %d", i, r, d)
		}
	}
	return d, nil
}
