package space_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/space"
)

func spinStructure(t *testing.T) gf.Structure {
	t.Helper()
	s, err := gf.NewStructure(gf.Block{Name: "up", Indices: []int{0}}, gf.Block{Name: "dn", Indices: []int{0}})
	require.NoError(t, err)

	return s
}

func hubbardAtom(u, mu float64) operators.Expression {
	nu, nd := operators.N("up", 0), operators.N("dn", 0)
	return nu.Mul(nd).Scale(u).Sub(nu.Add(nd).Scale(mu))
}

func TestSingleLevel_AtomicGreenFunction(t *testing.T) {
	const (
		beta = 5.0
		eps  = 0.3
	)
	s, err := gf.NewStructure(gf.Block{Name: "d", Indices: []int{0}})
	require.NoError(t, err)
	sp, err := space.New(operators.N("d", 0).Scale(eps), space.FundamentalFromStructure(s))
	require.NoError(t, err)
	require.Equal(t, 2, sp.NumSubspaces())
	require.InDelta(t, 0.0, sp.GroundEnergy(), 1e-15)

	mesh, err := gf.NewTauMesh(beta, 51)
	require.NoError(t, err)
	g, err := sp.AtomicGreenFunction(s, mesh)
	require.NoError(t, err)
	for k := 0; k < mesh.N; k++ {
		tau := mesh.Point(k)
		want := -math.Exp(-eps*tau) / (1 + math.Exp(-beta*eps))
		require.InDelta(t, want, g.Value(0, k, 0, 0), 1e-12)
	}
}

func TestHubbardAtom_Partition(t *testing.T) {
	const u = 2.0
	s := spinStructure(t)
	fops := space.FundamentalFromStructure(s)
	sp, err := space.New(hubbardAtom(u, u/2), fops)
	require.NoError(t, err)
	require.Equal(t, 4, sp.NumSubspaces())
	require.InDelta(t, -u/2, sp.GroundEnergy(), 1e-12)
	require.Equal(t, 4, sp.Dim())

	// Vacuum is subspace 0 (lowest Fock state); c†_up leads out of it and c_up kills it.
	require.Equal(t, []uint32{0}, sp.Subspace(0).States)
	require.GreaterOrEqual(t, sp.Connection(0, true, 0), 0)
	require.Equal(t, -1, sp.Connection(0, false, 0))
	require.Nil(t, sp.OperatorMatrix(0, false, 0))

	// Quantum-number partition groups by particle number.
	nTot := operators.N("up", 0).Add(operators.N("dn", 0))
	spq, err := space.New(hubbardAtom(u, u/2), fops, space.WithQuantumNumbers(nTot))
	require.NoError(t, err)
	require.Equal(t, 3, spq.NumSubspaces())
	require.Equal(t, 2, spq.Subspace(1).Dim())
}

func TestHubbardAtom_GreenFunctionSymmetries(t *testing.T) {
	const (
		u    = 3.0
		beta = 4.0
	)
	s := spinStructure(t)
	sp, err := space.New(hubbardAtom(u, u/2), space.FundamentalFromStructure(s))
	require.NoError(t, err)
	mesh, err := gf.NewTauMesh(beta, 41)
	require.NoError(t, err)
	g, err := sp.AtomicGreenFunction(s, mesh)
	require.NoError(t, err)

	for b := 0; b < 2; b++ {
		// G(0+) + G(β−) = −⟨{c, c†}⟩ = −1
		require.InDelta(t, -1.0, g.Value(b, 0, 0, 0)+g.Value(b, mesh.N-1, 0, 0), 1e-12)
		// particle-hole symmetry at half filling
		for k := 0; k < mesh.N; k++ {
			require.InDelta(t, g.Value(b, k, 0, 0), g.Value(b, mesh.N-1-k, 0, 0), 1e-12)
		}
	}
	// Shifted energies E0 = E2 = u/2, E1 = 0 give G(β/2) = −2e^{−βu/4}/(2 + 2e^{−βu/2}).
	want := -2 * math.Exp(-beta*u/4) / (2 + 2*math.Exp(-beta*u/2))
	require.InDelta(t, want, g.Value(0, (mesh.N-1)/2, 0, 0), 1e-12)
}

func TestHopping_TwoOrbitalBlock(t *testing.T) {
	const hop = 0.5
	s, err := gf.NewStructure(gf.Block{Name: "b", Indices: []int{0, 1}})
	require.NoError(t, err)
	h := operators.CDag("b", 0).Mul(operators.C("b", 1))
	h = h.Add(h.Dagger()).Scale(-hop)
	sp, err := space.New(h, space.FundamentalFromStructure(s))
	require.NoError(t, err)
	require.Equal(t, 3, sp.NumSubspaces())

	// One-particle sector holds the bonding/antibonding pair.
	one := sp.Subspace(1)
	require.Equal(t, 2, one.Dim())
	require.InDelta(t, 0.0, one.Energies[0], 1e-12)
	require.InDelta(t, 2*hop, one.Energies[1], 1e-12)
	require.InDelta(t, -hop, sp.GroundEnergy(), 1e-12)

	// c†_0 on the vacuum lands in the one-particle sector with unit norm.
	require.Equal(t, 1, sp.Connection(0, true, 0))
	m := sp.OperatorMatrix(0, true, 0)
	norm := 0.0
	for _, v := range m.Data() {
		norm += v * v
	}
	require.InDelta(t, 1.0, norm, 1e-12)
}

func TestNew_Errors(t *testing.T) {
	fops := operators.NewFundamentalSet()
	_, _ = fops.Insert("a", 0)
	_, err := space.New(operators.CDag("a", 0), fops)
	require.ErrorIs(t, err, space.ErrNotHermitian)

	_, err = space.New(operators.N("zz", 0), fops)
	require.ErrorIs(t, err, space.ErrUnknownOperator)

	big := operators.NewFundamentalSet()
	for i := 0; i <= space.MaxOrbitals; i++ {
		_, _ = big.Insert("x", i)
	}
	_, err = space.New(operators.Expression{}, big)
	require.ErrorIs(t, err, space.ErrTooManyOrbitals)

	_, err = space.New(operators.N("a", 0), fops, space.WithQuantumNumbers(operators.CDag("a", 0).Add(operators.C("a", 0))))
	require.ErrorIs(t, err, space.ErrNotDiagonal)

	require.Panics(t, func() { space.WithEpsilon(-1) })
}
