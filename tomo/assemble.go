package tomo

import (
	"fmt"
	"math"

	"github.com/qubitools/tomo/tomo/operator"
)

// AssembleFitterData converts raw outcome counts, keyed by measurement
// setting and then by observed bitstring, into the (p, M, weights) triple
// consumed by the fitters.
//
// Settings are visited in the projector set's enumeration order; settings
// absent from counts contribute no rows. Within a setting every possible
// bitstring contributes one row, in lexicographic order, with unobserved
// outcomes entering p as zero frequency. Each row's weight is the square root
// of the setting's total shots. p, the rows of M, and weights share one index
// space; that alignment is the invariant every downstream solver relies on.
func AssembleFitterData(counts map[string]map[string]int, ps *ProjectorSet) (p []float64, m *operator.Dense, weights []float64, err error) {
	if ps == nil {
		return nil, nil, nil, fmt.Errorf("%w: nil projector set", ErrConfiguration)
	}
	if len(counts) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no measurement settings in counts", ErrInsufficientData)
	}
	known := make(map[string]bool, len(ps.settings))
	for _, s := range ps.settings {
		known[s] = true
	}
	for s := range counts {
		if !known[s] {
			return nil, nil, nil, fmt.Errorf("%w: unknown measurement setting %q", ErrConfiguration, s)
		}
	}

	d := ps.Dim()
	var rows []int
	for sIdx, setting := range ps.settings {
		byOutcome, ok := counts[setting]
		if !ok {
			continue
		}
		total := 0
		for bs, c := range byOutcome {
			if _, err := parseBitstring(bs, ps.n); err != nil {
				return nil, nil, nil, err
			}
			if c < 0 {
				return nil, nil, nil, fmt.Errorf("%w: negative count %d for setting %q outcome %q", ErrConfiguration, c, setting, bs)
			}
			total += c
		}
		if total == 0 {
			return nil, nil, nil, fmt.Errorf("%w: setting %q has zero total shots", ErrInsufficientData, setting)
		}
		w := math.Sqrt(float64(total))
		for bits := 0; bits < d; bits++ {
			bs := fmt.Sprintf("%0*b", ps.n, bits)
			p = append(p, float64(byOutcome[bs])/float64(total))
			weights = append(weights, w)
			rows = append(rows, sIdx*d+bits)
		}
	}

	m = operator.NewDense(len(rows), d*d, nil)
	for i, r := range rows {
		for col := 0; col < d*d; col++ {
			m.Set(i, col, ps.m.At(r, col))
		}
	}
	return p, m, weights, nil
}
