// Package sampler simulates the measurement collaborator of a tomography
// experiment: it draws outcome counts from the Born-rule distribution of a
// known density operator, standing in for real hardware in tests and
// benchmarks.
package sampler

import (
	"math"
	"math/cmplx"

	"github.com/qubitools/tomo/tomo/operator"
)

// A Sampler produces outcome counts for one measurement setting, the shape of
// data a tomography experiment feeds to the fitters. Implementations may be
// simulators or adapters over real hardware.
type Sampler interface {
	// Counts returns observed-bitstring counts for shots repetitions of the
	// given measurement setting.
	Counts(setting string, shots int) (map[string]int, error)
}

// PureState builds the density operator |ψ⟩⟨ψ| of a pure state from its
// amplitude vector, normalizing along the way.
func PureState(amps []complex128) (*operator.Dense, error) {
	n := 0.0
	for _, a := range amps {
		n += real(a)*real(a) + imag(a)*imag(a)
	}
	if len(amps) == 0 || n == 0 {
		return nil, errZeroState
	}
	scale := complex(1/math.Sqrt(n), 0)
	d := len(amps)
	rho := operator.NewDense(d, d, nil)
	for i, ai := range amps {
		for j, aj := range amps {
			rho.Set(i, j, scale*ai*cmplx.Conj(scale*aj))
		}
	}
	return rho, nil
}

// BellPhiPlus returns the density operator of the two-qubit Bell state
// (|00⟩ + |11⟩)/√2.
func BellPhiPlus() *operator.Dense {
	rho, err := PureState([]complex128{1, 0, 0, 1})
	if err != nil {
		panic(err)
	}
	return rho
}
