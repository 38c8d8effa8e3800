package tomo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/qubitools/tomo/tomo/operator"
)

func TestPauliBasisProjectors(t *testing.T) {
	b := PauliBasis()
	if b.NumAxes() != 3 {
		t.Fatalf("pauli basis has %d axes, want 3", b.NumAxes())
	}
	id := operator.Identity(2)
	for _, ax := range b.Axes() {
		for o, p := range ax.Proj {
			if !operator.IsHermitian(p, 1e-12) {
				t.Errorf("%s%d is not Hermitian", ax.Name, o)
			}
			if !operator.Equalish(p.Mul(p), p, 1e-12) {
				t.Errorf("%s%d is not idempotent", ax.Name, o)
			}
		}
		if !operator.Equalish(ax.Proj[0].Add(ax.Proj[1]), id, 1e-12) {
			t.Errorf("%s projectors do not sum to identity", ax.Name)
		}
	}
}

func TestNewBasisValidation(t *testing.T) {
	z0 := operator.NewDense(2, 2, []complex128{1, 0, 0, 0})
	z1 := operator.NewDense(2, 2, []complex128{0, 0, 0, 1})
	tcs := []struct {
		name  string
		bname string
		axes  []Axis
	}{
		{name: "empty name", bname: "", axes: []Axis{{Name: "Z", Proj: [2]*operator.Dense{z0, z1}}}},
		{name: "no axes", bname: "b", axes: nil},
		{name: "multi-rune axis name", bname: "b", axes: []Axis{{Name: "ZZ", Proj: [2]*operator.Dense{z0, z1}}}},
		{name: "duplicate axis names", bname: "b", axes: []Axis{
			{Name: "Z", Proj: [2]*operator.Dense{z0, z1}},
			{Name: "Z", Proj: [2]*operator.Dense{z0, z1}},
		}},
		{name: "nil projector", bname: "b", axes: []Axis{{Name: "Z", Proj: [2]*operator.Dense{z0, nil}}}},
		{name: "incomplete pair", bname: "b", axes: []Axis{{Name: "Z", Proj: [2]*operator.Dense{z0, z0}}}},
		{name: "wrong dimension", bname: "b", axes: []Axis{{Name: "Z", Proj: [2]*operator.Dense{operator.Identity(3), z1}}}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBasis(tc.bname, tc.axes); !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestBuildProjectorsShape(t *testing.T) {
	tcs := []struct {
		n        int
		settings int
		rows     int
		dim      int
	}{
		{n: 1, settings: 3, rows: 6, dim: 2},
		{n: 2, settings: 9, rows: 36, dim: 4},
		{n: 3, settings: 27, rows: 216, dim: 8},
	}
	for _, tc := range tcs {
		t.Run(fmt.Sprintf("n=%d", tc.n), func(t *testing.T) {
			ps, err := BuildProjectors(tc.n, PauliBasis())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(ps.Settings()); got != tc.settings {
				t.Errorf("got %d settings, want %d", got, tc.settings)
			}
			if got := ps.Rows(); got != tc.rows {
				t.Errorf("got %d projectors, want %d", got, tc.rows)
			}
			if got := ps.Dim(); got != tc.dim {
				t.Errorf("got dimension %d, want %d", got, tc.dim)
			}
			if r, c := ps.M().Dims(); r != tc.rows || c != tc.dim*tc.dim {
				t.Errorf("M is %dx%d, want %dx%d", r, c, tc.rows, tc.dim*tc.dim)
			}
		})
	}
}

func TestBuildProjectorsOrdering(t *testing.T) {
	ps, err := BuildProjectors(2, PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"XX", "XY", "XZ", "YX", "YY", "YZ", "ZX", "ZY", "ZZ"}
	for i, s := range ps.Settings() {
		if s != want[i] {
			t.Errorf("settings[%d] = %q, want %q", i, s, want[i])
		}
	}

	// Row for setting "XZ", outcome "01" must be X0 ⊗ Z1.
	axes := PauliBasis().Axes()
	r, err := ps.RowIndex("XZ", "01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != 2*4+1 {
		t.Errorf("RowIndex(XZ, 01) = %d, want 9", r)
	}
	want2 := axes[0].Proj[0].Kron(axes[2].Proj[1])
	if !operator.Equalish(ps.Projector(r), want2, 1e-12) {
		t.Errorf("projector for (XZ, 01) is not X0⊗Z1")
	}
}

func TestBuildProjectorsCached(t *testing.T) {
	a, err := BuildProjectors(2, PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := BuildProjectors(2, PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected cached projector set to be reused")
	}
}

func TestBuildProjectorsErrors(t *testing.T) {
	if _, err := BuildProjectors(0, PauliBasis()); !errors.Is(err, ErrConfiguration) {
		t.Errorf("n=0: expected ErrConfiguration, got %v", err)
	}
	if _, err := BuildProjectors(2, Basis{}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero basis: expected ErrConfiguration, got %v", err)
	}
}

// For a single qubit under Pauli measurement, M†M has the closed form
// I₄ + vec(I)·vec(I)†.
func TestNormalMatrixClosedForm(t *testing.T) {
	ps, err := BuildProjectors(1, PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := ps.M()
	normal := m.Dagger().Mul(m)

	want := operator.Identity(4)
	vecI := operator.Identity(2).Vec()
	for i, vi := range vecI {
		for j, vj := range vecI {
			want.Set(i, j, want.At(i, j)+vi*vj)
		}
	}
	if !operator.Equalish(normal, want, 1e-12) {
		t.Errorf("M†M = %v, want I + vec(I)vec(I)†", normal)
	}
	if cond := operator.Cond2(m); cond > 10 {
		t.Errorf("1-qubit Pauli measurement matrix has condition number %g, want small", cond)
	}
}

func TestRowIndexErrors(t *testing.T) {
	ps, err := BuildProjectors(1, PauliBasis())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ps.RowIndex("Q", "0"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("unknown setting: expected ErrConfiguration, got %v", err)
	}
	if _, err := ps.RowIndex("Z", "00"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("wrong bitstring length: expected ErrConfiguration, got %v", err)
	}
	if _, err := ps.RowIndex("Z", "2"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("malformed bitstring: expected ErrConfiguration, got %v", err)
	}
}
