package tomo

import (
	"fmt"

	"github.com/qubitools/tomo/tomo/operator"
)

// Fidelity returns the Uhlmann fidelity between two density operators,
// F(a, b) = (tr √(√a·b·√a))². F is 1 for identical states and 0 for states
// with orthogonal support. Used to validate reconstructions against a
// reference state; it plays no role in the fit itself.
func Fidelity(a, b *operator.Dense) (float64, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != ac || br != bc || ar != br {
		return 0, fmt.Errorf("%w: fidelity needs square operators of equal dimension, got %d×%d and %d×%d", ErrDimensionMismatch, ar, ac, br, bc)
	}
	sa, err := operator.SqrtPSD(a.Hermitize())
	if err != nil {
		return 0, err
	}
	inner := sa.Mul(b).Mul(sa)
	s, err := operator.SqrtPSD(inner.Hermitize())
	if err != nil {
		return 0, err
	}
	f := real(s.Trace())
	return f * f, nil
}
