package tomo

import (
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/qubitools/tomo/tomo/operator"
)

// An Axis is one single-qubit measurement direction: a named pair of rank-1
// projectors, one per outcome, summing to the identity.
type Axis struct {
	// Name labels the axis in measurement-setting strings, e.g. "X". Must be
	// a single rune so that setting labels decompose unambiguously.
	Name string
	// Proj holds the outcome-0 and outcome-1 projectors, in that order.
	Proj [2]*operator.Dense
}

// A Basis is a validated, ordered collection of measurement axes for a single
// qubit. The zero Basis is not valid; construct one with NewBasis or use
// PauliBasis.
type Basis struct {
	name string
	axes []Axis
}

// completenessTol bounds how far each axis's projector pair may deviate from
// summing to the identity.
const completenessTol = 1e-9

// NewBasis validates and returns a measurement basis. The basis name
// identifies it in the projector-set cache, so distinct bases must carry
// distinct names. Each axis must have a single-rune name, unique within the
// basis, and 2×2 projectors summing to the identity.
func NewBasis(name string, axes []Axis) (Basis, error) {
	if name == "" {
		return Basis{}, fmt.Errorf("%w: basis name must be non-empty", ErrConfiguration)
	}
	if len(axes) == 0 {
		return Basis{}, fmt.Errorf("%w: basis must contain at least one axis", ErrConfiguration)
	}
	seen := make(map[string]bool, len(axes))
	id := operator.Identity(2)
	for _, ax := range axes {
		if utf8.RuneCountInString(ax.Name) != 1 {
			return Basis{}, fmt.Errorf("%w: axis name %q must be a single rune", ErrConfiguration, ax.Name)
		}
		if seen[ax.Name] {
			return Basis{}, fmt.Errorf("%w: duplicate axis name %q", ErrConfiguration, ax.Name)
		}
		seen[ax.Name] = true
		for _, p := range ax.Proj {
			if p == nil {
				return Basis{}, fmt.Errorf("%w: axis %q has a nil projector", ErrConfiguration, ax.Name)
			}
			if r, c := p.Dims(); r != 2 || c != 2 {
				return Basis{}, fmt.Errorf("%w: axis %q projector is %d×%d, want 2×2", ErrConfiguration, ax.Name, r, c)
			}
		}
		if !operator.Equalish(ax.Proj[0].Add(ax.Proj[1]), id, completenessTol) {
			return Basis{}, fmt.Errorf("%w: axis %q projectors do not sum to identity", ErrConfiguration, ax.Name)
		}
	}
	cp := make([]Axis, len(axes))
	copy(cp, axes)
	return Basis{name: name, axes: cp}, nil
}

// Name returns the basis's cache-identifying name.
func (b Basis) Name() string { return b.name }

// NumAxes returns the number of measurement axes per qubit.
func (b Basis) NumAxes() int { return len(b.axes) }

// Axes returns a copy of the basis's axis list.
func (b Basis) Axes() []Axis {
	cp := make([]Axis, len(b.axes))
	copy(cp, b.axes)
	return cp
}

// PauliBasis returns the standard X/Y/Z measurement basis, six rank-1
// projectors onto the ±1 eigenstates of the Pauli operators.
func PauliBasis() Basis {
	h := complex(0.5, 0)
	i := complex(0, 0.5)
	b, err := NewBasis("pauli", []Axis{
		{Name: "X", Proj: [2]*operator.Dense{
			operator.NewDense(2, 2, []complex128{h, h, h, h}),
			operator.NewDense(2, 2, []complex128{h, -h, -h, h}),
		}},
		{Name: "Y", Proj: [2]*operator.Dense{
			operator.NewDense(2, 2, []complex128{h, -i, i, h}),
			operator.NewDense(2, 2, []complex128{h, i, -i, h}),
		}},
		{Name: "Z", Proj: [2]*operator.Dense{
			operator.NewDense(2, 2, []complex128{1, 0, 0, 0}),
			operator.NewDense(2, 2, []complex128{0, 0, 0, 1}),
		}},
	})
	if err != nil {
		panic(err)
	}
	return b
}

// A ProjectorSet is the full n-qubit measurement configuration for a basis:
// every tensor product of per-qubit projectors, enumerated lexicographically
// by measurement setting and then by outcome bitstring, together with the
// stacked measurement matrix M. A ProjectorSet is immutable and safe to share
// across goroutines.
type ProjectorSet struct {
	n          int
	basis      Basis
	settings   []string
	projectors []*operator.Dense
	m          *operator.Dense
}

type projKey struct {
	n     int
	basis string
}

var projCache = struct {
	sync.Mutex
	sets map[projKey]*ProjectorSet
}{sets: make(map[projKey]*ProjectorSet)}

// BuildProjectors enumerates the projector set for n qubits under the given
// basis and stacks the measurement matrix. Results are memoized process-wide
// by (n, basis name), so repeated calls for the same configuration are cheap.
func BuildProjectors(n int, basis Basis) (*ProjectorSet, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: qubit count must be at least 1, got %d", ErrConfiguration, n)
	}
	if basis.name == "" {
		return nil, fmt.Errorf("%w: basis is not initialized", ErrConfiguration)
	}

	key := projKey{n: n, basis: basis.name}
	projCache.Lock()
	defer projCache.Unlock()
	if ps, ok := projCache.sets[key]; ok {
		return ps, nil
	}

	numAxes := len(basis.axes)
	numSettings := 1
	for q := 0; q < n; q++ {
		numSettings *= numAxes
	}
	d := 1 << n

	ps := &ProjectorSet{
		n:          n,
		basis:      basis,
		settings:   make([]string, 0, numSettings),
		projectors: make([]*operator.Dense, 0, numSettings*d),
		m:          operator.NewDense(numSettings*d, d*d, nil),
	}
	digits := make([]int, n)
	row := 0
	for s := 0; s < numSettings; s++ {
		rem := s
		label := ""
		// Qubit 0 is the most significant digit of the setting index and the
		// leftmost factor of every tensor product.
		for q := n - 1; q >= 0; q-- {
			digits[q] = rem % numAxes
			rem /= numAxes
		}
		for q := 0; q < n; q++ {
			label += basis.axes[digits[q]].Name
		}
		ps.settings = append(ps.settings, label)

		for bits := 0; bits < d; bits++ {
			proj := basis.axes[digits[0]].Proj[bits>>(n-1)&1]
			for q := 1; q < n; q++ {
				proj = proj.Kron(basis.axes[digits[q]].Proj[bits>>(n-1-q)&1])
			}
			ps.projectors = append(ps.projectors, proj)
			// Row r is the conjugated flattening of projector r, so that
			// M·vec(ρ) stacks the Born probabilities tr(Π_r·ρ).
			v := proj.Conj().Vec()
			for col, z := range v {
				ps.m.Set(row, col, z)
			}
			row++
		}
	}
	projCache.sets[key] = ps
	return ps, nil
}

// NQubits returns the number of qubits the set measures.
func (ps *ProjectorSet) NQubits() int { return ps.n }

// Dim returns the Hilbert-space dimension 2ⁿ.
func (ps *ProjectorSet) Dim() int { return 1 << ps.n }

// Rows returns the number of projectors, i.e. rows of M.
func (ps *ProjectorSet) Rows() int { return len(ps.projectors) }

// Basis returns the basis the set was built from.
func (ps *ProjectorSet) Basis() Basis { return ps.basis }

// Settings returns the ordered measurement-setting labels. The returned slice
// must not be modified.
func (ps *ProjectorSet) Settings() []string { return ps.settings }

// Projector returns the r-th projector in enumeration order. The returned
// operator must not be modified.
func (ps *ProjectorSet) Projector(r int) *operator.Dense { return ps.projectors[r] }

// M returns the stacked measurement matrix. The returned operator must not be
// modified.
func (ps *ProjectorSet) M() *operator.Dense { return ps.m }

// RowIndex returns the row of M corresponding to observing bitstring under
// the given measurement setting.
func (ps *ProjectorSet) RowIndex(setting, bitstring string) (int, error) {
	sIdx := -1
	for i, s := range ps.settings {
		if s == setting {
			sIdx = i
			break
		}
	}
	if sIdx < 0 {
		return 0, fmt.Errorf("%w: unknown measurement setting %q", ErrConfiguration, setting)
	}
	bits, err := parseBitstring(bitstring, ps.n)
	if err != nil {
		return 0, err
	}
	return sIdx*ps.Dim() + bits, nil
}

// parseBitstring converts an n-character binary outcome string, leftmost
// character qubit 0, into its integer value.
func parseBitstring(bs string, n int) (int, error) {
	if len(bs) != n {
		return 0, fmt.Errorf("%w: bitstring %q has length %d, want %d", ErrConfiguration, bs, len(bs), n)
	}
	v, err := strconv.ParseUint(bs, 2, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed bitstring %q", ErrConfiguration, bs)
	}
	return int(v), nil
}
