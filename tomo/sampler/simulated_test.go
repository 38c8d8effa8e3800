package sampler

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/qubitools/tomo/tomo"
	"github.com/qubitools/tomo/tomo/operator"
)

func TestProbabilitiesBell(t *testing.T) {
	ps, err := tomo.BuildProjectors(2, tomo.PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sim, err := NewSimulated(BellPhiPlus(), ps, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tcs := []struct {
		setting string
		want    []float64
	}{
		// Bell-state correlations: perfectly correlated along Z and X,
		// anti-correlated along Y, uniform when the axes differ.
		{setting: "ZZ", want: []float64{0.5, 0, 0, 0.5}},
		{setting: "XX", want: []float64{0.5, 0, 0, 0.5}},
		{setting: "YY", want: []float64{0, 0.5, 0.5, 0}},
		{setting: "XZ", want: []float64{0.25, 0.25, 0.25, 0.25}},
	}
	for _, tc := range tcs {
		t.Run(tc.setting, func(t *testing.T) {
			got, err := sim.Probabilities(tc.setting)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-10 {
					t.Errorf("p[%d] = %g, want %g", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestCounts(t *testing.T) {
	ps, err := tomo.BuildProjectors(2, tomo.PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sim, err := NewSimulated(BellPhiPlus(), ps, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const shots = 5000
	counts, err := sim.Counts("XX", shots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for bs, c := range counts {
		if len(bs) != 2 {
			t.Errorf("bitstring %q has wrong length", bs)
		}
		if c <= 0 {
			t.Errorf("bitstring %q has non-positive count %d", bs, c)
		}
		total += c
	}
	if total != shots {
		t.Errorf("counts sum to %d, want %d", total, shots)
	}
	// Outcomes 01 and 10 have zero Born probability for the Bell state.
	if c := counts["01"]; c != 0 {
		t.Errorf("impossible outcome 01 observed %d times", c)
	}
	if c := counts["10"]; c != 0 {
		t.Errorf("impossible outcome 10 observed %d times", c)
	}
}

func TestCountsAll(t *testing.T) {
	ps, err := tomo.BuildProjectors(2, tomo.PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sim, err := NewSimulated(BellPhiPlus(), ps, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts, err := sim.CountsAll(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 9 {
		t.Fatalf("got %d settings, want 9", len(counts))
	}
	for _, setting := range ps.Settings() {
		if _, ok := counts[setting]; !ok {
			t.Errorf("missing setting %q", setting)
		}
	}
}

func TestNewSimulatedErrors(t *testing.T) {
	ps, err := tomo.BuildProjectors(2, tomo.PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewSimulated(BellPhiPlus(), ps, nil); !errors.Is(err, tomo.ErrConfiguration) {
		t.Errorf("nil rng: expected ErrConfiguration, got %v", err)
	}
	oneQubit := operator.Identity(2).Scale(0.5)
	if _, err := NewSimulated(oneQubit, ps, rand.New(rand.NewSource(4))); !errors.Is(err, tomo.ErrDimensionMismatch) {
		t.Errorf("wrong state dimension: expected ErrDimensionMismatch, got %v", err)
	}
	sim, err := NewSimulated(BellPhiPlus(), ps, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sim.Counts("XX", 0); !errors.Is(err, tomo.ErrConfiguration) {
		t.Errorf("zero shots: expected ErrConfiguration, got %v", err)
	}
}

func TestPureState(t *testing.T) {
	// Unnormalized amplitudes are accepted and normalized.
	rho, err := PureState([]complex128{2, 0, 0, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !operator.Equalish(rho, BellPhiPlus(), 1e-12) {
		t.Errorf("PureState(2,0,0,2) = %v, want Bell density", rho)
	}
	if math.Abs(real(rho.Trace())-1) > 1e-12 {
		t.Errorf("trace = %v, want 1", rho.Trace())
	}
	if _, err := PureState([]complex128{0, 0}); err == nil {
		t.Errorf("expected error for zero state")
	}
	if _, err := PureState(nil); err == nil {
		t.Errorf("expected error for empty amplitude vector")
	}
}
