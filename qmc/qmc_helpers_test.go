package qmc_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/qmc"
	"github.com/katalvlaran/cthyb/space"
)

const (
	beta = 4.0
	nTau = 101
)

// move is the driver-facing surface shared by InsertMove and RemoveMove.
type move interface {
	Propose(rng *rand.Rand) float64
	Accept() float64
	Reject()
}

// build returns a configuration for delta and h.
func build(t testing.TB, delta *gf.TimeBlockGF, h operators.Expression, opts ...qmc.Option) *qmc.Configuration {
	t.Helper()
	m, err := hyb.FromDeltaTau(delta, h)
	require.NoError(t, err)
	sp, err := space.New(h, space.FundamentalFromStructure(delta.Structure))
	require.NoError(t, err)
	cfg, err := qmc.NewConfiguration(m, sp, opts...)
	require.NoError(t, err)

	return cfg
}

// hubbard is the half-filled Hubbard atom with flat Δ = −0.5 per spin.
func hubbard(t testing.TB, opts ...qmc.Option) *qmc.Configuration {
	t.Helper()
	s, err := gf.NewStructure(gf.Block{Name: "up", Indices: []int{0}}, gf.Block{Name: "dn", Indices: []int{0}})
	require.NoError(t, err)
	mesh, err := gf.NewTauMesh(beta, nTau)
	require.NoError(t, err)
	nu, nd := operators.N("up", 0), operators.N("dn", 0)
	h := nu.Mul(nd).Scale(2).Sub(nu.Add(nd))

	return build(t, hyb.FlatDelta(s, mesh, -0.5), h, opts...)
}

// twoOrbital is one block of two coupled orbitals with an off-diagonal,
// τ-dependent Δ, so determinant and trace signs vary.
func twoOrbital(t testing.TB) *qmc.Configuration {
	t.Helper()
	s, err := gf.NewStructure(gf.Block{Name: "orb", Indices: []int{0, 1}})
	require.NoError(t, err)
	mesh, err := gf.NewTauMesh(beta, nTau)
	require.NoError(t, err)
	delta := gf.NewTimeBlockGF(s, mesh)
	for k := 0; k < mesh.N; k++ {
		x := mesh.Point(k) / beta
		delta.SetValue(0, k, 0, 0, -0.4)
		delta.SetValue(0, k, 1, 1, -0.3-0.1*x)
		delta.SetValue(0, k, 0, 1, 0.15)
		delta.SetValue(0, k, 1, 0, 0.15)
	}
	n0, n1 := operators.N("orb", 0), operators.N("orb", 1)
	hop := operators.CDag("orb", 0).Mul(operators.C("orb", 1))
	h := hop.Add(hop.Dagger()).Scale(-0.2).
		Add(n0.Scale(-0.3)).Add(n1.Scale(0.1)).
		Add(n0.Mul(n1).Scale(1.5))

	return build(t, delta, h)
}

func buildSpace(t testing.TB, h operators.Expression, s gf.Structure) *space.Space {
	t.Helper()
	sp, err := space.New(h, space.FundamentalFromStructure(s))
	require.NoError(t, err)

	return sp
}

func movesOf(cfg *qmc.Configuration) []move {
	var out []move
	for b := 0; b < cfg.NumBlocks(); b++ {
		out = append(out, qmc.NewInsertMove(cfg, b), qmc.NewRemoveMove(cfg, b))
	}

	return out
}

// step runs one Metropolis step and returns the sign factor (1 on rejection).
func step(rng *rand.Rand, m move) (float64, bool) {
	r := m.Propose(rng)
	if r != 0 && rng.Float64() < math.Min(1, math.Abs(r)) {
		return m.Accept(), true
	}
	m.Reject()

	return 1, false
}

// warm walks cfg for n steps and returns the running sign.
func warm(rng *rand.Rand, cfg *qmc.Configuration, n int) float64 {
	moves := movesOf(cfg)
	sign := 1.0
	for i := 0; i < n; i++ {
		f, _ := step(rng, moves[rng.Intn(len(moves))])
		sign *= f
	}

	return sign
}
