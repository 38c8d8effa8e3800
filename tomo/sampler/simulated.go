package sampler

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/qubitools/tomo/tomo"
	"github.com/qubitools/tomo/tomo/operator"
)

var errZeroState = errors.New("sampler: state has zero norm")

// A Simulated samples measurement outcomes from the exact Born-rule
// distribution tr(Π·ρ) of a reference state. The caller supplies the
// randomness source, so runs are reproducible under a fixed seed.
type Simulated struct {
	rho *operator.Dense
	ps  *tomo.ProjectorSet
	rng *rand.Rand
}

// NewSimulated builds a simulated sampler for the given reference state and
// projector set.
func NewSimulated(rho *operator.Dense, ps *tomo.ProjectorSet, rng *rand.Rand) (*Simulated, error) {
	if rho == nil || ps == nil {
		return nil, fmt.Errorf("%w: must provide a state and a projector set", tomo.ErrConfiguration)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: must provide a randomness source", tomo.ErrConfiguration)
	}
	r, c := rho.Dims()
	if r != c || r != ps.Dim() {
		return nil, fmt.Errorf("%w: state is %d×%d for a dimension-%d projector set", tomo.ErrDimensionMismatch, r, c, ps.Dim())
	}
	return &Simulated{rho: rho, ps: ps, rng: rng}, nil
}

// Probabilities returns the exact Born probabilities of every outcome
// bitstring under one measurement setting, in lexicographic bitstring order.
// These are the infinite-shot frequencies the fitters converge to.
func (s *Simulated) Probabilities(setting string) ([]float64, error) {
	d := s.ps.Dim()
	base, err := s.ps.RowIndex(setting, fmt.Sprintf("%0*b", s.ps.NQubits(), 0))
	if err != nil {
		return nil, err
	}
	probs := make([]float64, d)
	total := 0.0
	for bits := 0; bits < d; bits++ {
		pr := real(operator.TraceProduct(s.ps.Projector(base+bits), s.rho))
		if pr < 0 {
			// Rounding can push an exact zero slightly negative.
			pr = 0
		}
		probs[bits] = pr
		total += pr
	}
	if total == 0 {
		return nil, errZeroState
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs, nil
}

// Counts draws shots outcomes for one measurement setting. Only observed
// bitstrings appear in the result, as with real hardware.
func (s *Simulated) Counts(setting string, shots int) (map[string]int, error) {
	if shots < 1 {
		return nil, fmt.Errorf("%w: shots must be at least 1, got %d", tomo.ErrConfiguration, shots)
	}
	probs, err := s.Probabilities(setting)
	if err != nil {
		return nil, err
	}
	n := s.ps.NQubits()
	out := make(map[string]int)
	for i := 0; i < shots; i++ {
		u := s.rng.Float64()
		acc := 0.0
		bits := len(probs) - 1
		for b, pr := range probs {
			acc += pr
			if u < acc {
				bits = b
				break
			}
		}
		out[fmt.Sprintf("%0*b", n, bits)]++
	}
	return out, nil
}

// CountsAll runs every measurement setting of the projector set with the same
// shot budget, producing the full counts map AssembleFitterData consumes.
func (s *Simulated) CountsAll(shots int) (map[string]map[string]int, error) {
	out := make(map[string]map[string]int, len(s.ps.Settings()))
	for _, setting := range s.ps.Settings() {
		c, err := s.Counts(setting, shots)
		if err != nil {
			return nil, err
		}
		out[setting] = c
	}
	return out, nil
}
