package space

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/matrix"
	"github.com/katalvlaran/cthyb/operators"
)

// Subspace is one invariant subspace of the local Hamiltonian.
type Subspace struct {
	// States lists the Fock states spanning the subspace, ascending.
	States []uint32
	// Energies are the eigenvalues, ascending, shifted by the global ground energy.
	Energies []float64
	// Vectors holds the eigenvectors as columns, rows indexed like States.
	Vectors *matrix.Dense
}

// Dim returns the subspace dimension.
func (s *Subspace) Dim() int { return len(s.States) }

// MinEnergy returns the lowest (shifted) energy of the subspace.
func (s *Subspace) MinEnergy() float64 { return s.Energies[0] }

// Space is the diagonalized local Hilbert space. Immutable after New.
type Space struct {
	fops         *operators.FundamentalSet
	subspaces    []*Subspace
	groundEnergy float64

	// conn[d][p][A] is the subspace reached from A by c†_p (d=1) or c_p (d=0),
	// −1 when every image vanishes.
	conn [2][][]int
	// mats[d][p][A] is the operator block (dim B × dim A) in the eigenbases.
	mats [2][][]*matrix.Dense
}

// New builds the local space of h over fops.
//
// Implementation:
//   - Stage 1: check hermiticity and the orbital bound; resolve terms.
//   - Stage 2: sparse Fock columns of h, the quantum numbers and every c_p, c†_p.
//   - Stage 3: partition (components → sectors → operator merge).
//   - Stage 4: diagonalize each subspace; shift energies.
//   - Stage 5: rotate operator blocks into the eigenbases.
//
// Errors: ErrNotHermitian, ErrTooManyOrbitals, ErrUnknownOperator,
// ErrNotDiagonal, matrix errors from the diagonalization.
func New(h operators.Expression, fops *operators.FundamentalSet, opts ...Option) (*Space, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !h.IsHermitian(o.Epsilon) {
		return nil, ErrNotHermitian
	}
	nOrb := fops.Len()
	if nOrb > MaxOrbitals {
		return nil, fmt.Errorf("%d orbitals: %w", nOrb, ErrTooManyOrbitals)
	}
	nStates := 1 << uint(nOrb)

	// Stage 2
	hTerms, err := resolve(h, fops)
	if err != nil {
		return nil, err
	}
	hcols := sparseColumns(hTerms, nStates)
	qcols := make([][][]entry, len(o.QuantumNumbers))
	for q, qn := range o.QuantumNumbers {
		qt, err := resolve(qn, fops)
		if err != nil {
			return nil, err
		}
		qcols[q] = sparseColumns(qt, nStates)
	}
	var opcols [2][][][]entry
	for d := 0; d < 2; d++ {
		opcols[d] = make([][][]entry, nOrb)
		for p := 0; p < nOrb; p++ {
			opcols[d][p] = sparseColumns([]resolvedTerm{{coef: 1, dagger: []bool{d == 1}, bit: []uint{uint(p)}}}, nStates)
		}
	}

	// Stage 3
	label, nComp := components(hcols)
	uf := newUnionFind(nComp)
	if len(qcols) > 0 {
		if err = quantumSectors(uf, label, qcols, o.Epsilon*1e3); err != nil {
			return nil, err
		}
	}
	mergeByOperators(uf, label, append(append([][][]entry{}, opcols[0]...), opcols[1]...))
	groups := collect(uf, label)

	sp := &Space{fops: fops, subspaces: make([]*Subspace, len(groups))}
	subOf := make([]int, nStates)
	local := make([]int, nStates)
	for a, states := range groups {
		for i, s := range states {
			subOf[s], local[s] = a, i
		}
	}

	// Stage 4
	sp.groundEnergy = math.Inf(1)
	for a, states := range groups {
		sub, err := diagonalize(states, hcols, local, o)
		if err != nil {
			return nil, fmt.Errorf("subspace %d: %w", a, err)
		}
		sp.subspaces[a] = sub
		if sub.Energies[0] < sp.groundEnergy {
			sp.groundEnergy = sub.Energies[0]
		}
	}
	for _, sub := range sp.subspaces {
		for i := range sub.Energies {
			sub.Energies[i] -= sp.groundEnergy
		}
	}

	// Stage 5
	for d := 0; d < 2; d++ {
		sp.conn[d] = make([][]int, nOrb)
		sp.mats[d] = make([][]*matrix.Dense, nOrb)
		for p := 0; p < nOrb; p++ {
			if sp.conn[d][p], sp.mats[d][p], err = sp.rotate(opcols[d][p], subOf, local); err != nil {
				return nil, err
			}
		}
	}

	return sp, nil
}

// diagonalize builds and diagonalizes the Hamiltonian block of one subspace.
func diagonalize(states []uint32, hcols [][]entry, local []int, o Options) (*Subspace, error) {
	dim := len(states)
	hb, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	data := hb.Data()
	for j, s := range states {
		for _, e := range hcols[s] {
			data[local[e.to]*dim+j] += e.v
		}
	}
	vals, vecs, err := matrix.Eigen(hb, o.Epsilon, o.EigenSweeps)
	if err != nil {
		return nil, err
	}

	return &Subspace{States: states, Energies: vals, Vectors: vecs}, nil
}

// rotate computes connections and eigenbasis blocks V_Bᵀ·F·V_A of one operator.
func (sp *Space) rotate(cols [][]entry, subOf, local []int) ([]int, []*matrix.Dense, error) {
	conn := make([]int, len(sp.subspaces))
	mats := make([]*matrix.Dense, len(sp.subspaces))
	for a, src := range sp.subspaces {
		conn[a] = -1
		for _, s := range src.States {
			if len(cols[s]) > 0 {
				conn[a] = subOf[cols[s][0].to]
				break
			}
		}
		if conn[a] < 0 {
			continue
		}
		dst := sp.subspaces[conn[a]]
		f, err := matrix.NewDense(dst.Dim(), src.Dim())
		if err != nil {
			return nil, nil, err
		}
		for j, s := range src.States {
			for _, e := range cols[s] {
				_ = f.Set(local[e.to], j, e.v)
			}
		}
		vt, err := matrix.Transpose(dst.Vectors)
		if err != nil {
			return nil, nil, err
		}
		fv, err := matrix.Mul(f, src.Vectors)
		if err != nil {
			return nil, nil, err
		}
		if mats[a], err = matrix.Mul(vt, fv); err != nil {
			return nil, nil, err
		}
	}

	return conn, mats, nil
}

// NumSubspaces returns the number of invariant subspaces.
func (sp *Space) NumSubspaces() int { return len(sp.subspaces) }

// Subspace returns subspace a.
func (sp *Space) Subspace(a int) *Subspace { return sp.subspaces[a] }

// Dim returns the full Hilbert-space dimension.
func (sp *Space) Dim() int { return 1 << uint(sp.fops.Len()) }

// GroundEnergy returns the unshifted ground-state energy.
func (sp *Space) GroundEnergy() float64 { return sp.groundEnergy }

// Fundamental returns the fundamental set the space was built over.
func (sp *Space) Fundamental() *operators.FundamentalSet { return sp.fops }

// Connection returns the subspace reached from a by c†_p (dagger) or c_p,
// −1 when the operator annihilates the whole subspace.
func (sp *Space) Connection(p int, dagger bool, a int) int {
	return sp.conn[b2i(dagger)][p][a]
}

// OperatorMatrix returns the eigenbasis block of c†_p or c_p acting on a,
// nil when Connection is −1. The result must not be modified.
func (sp *Space) OperatorMatrix(p int, dagger bool, a int) *matrix.Dense {
	return sp.mats[b2i(dagger)][p][a]
}

func b2i(b bool) int {
	if b {
		return 1
	}

	return 0
}

// FundamentalFromStructure lists every (block, index) of s in block order.
func FundamentalFromStructure(s gf.Structure) *operators.FundamentalSet {
	fops := operators.NewFundamentalSet()
	for b := 0; b < s.Len(); b++ {
		blk := s.Block(b)
		for _, ix := range blk.Indices {
			// Structure guarantees uniqueness, so Insert cannot fail.
			_, _ = fops.Insert(blk.Name, ix)
		}
	}

	return fops
}
