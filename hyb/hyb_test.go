package hyb_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/operators"
)

const (
	beta     = 10.0
	nIw      = 200
	nTau     = 401
	epsD     = 0.2
	bathE    = 0.3
	bathV    = 0.6
	deltaTol = 1e-3
)

func oneOrbital(t *testing.T) gf.Structure {
	t.Helper()
	s, err := gf.NewStructure(gf.Block{Name: "d", Indices: []int{0}})
	require.NoError(t, err)

	return s
}

func bathWeiss(t *testing.T, levels []float64, v []float64) *gf.FreqBlockGF {
	t.Helper()
	mesh, err := gf.NewFreqMesh(beta, nIw)
	require.NoError(t, err)
	cpl := make([][]float64, len(v))
	for p := range v {
		cpl[p] = []float64{v[p]}
	}
	g0, err := hyb.WeissFieldFromBath(oneOrbital(t), mesh, [][]float64{{epsD}}, []hyb.Bath{{Levels: levels, Couplings: cpl}})
	require.NoError(t, err)

	return g0
}

func exactDelta(tau float64) float64 {
	return -bathV * bathV * math.Exp(-bathE*tau) / (1 + math.Exp(-beta*bathE))
}

func TestCheckMesh(t *testing.T) {
	require.ErrorIs(t, hyb.CheckMesh(50, 99), hyb.ErrInsufficientTauPoints)
	require.NoError(t, hyb.CheckMesh(50, 100))
	require.NoError(t, hyb.CheckMesh(50, 200))

	g0 := bathWeiss(t, []float64{bathE}, []float64{bathV})
	_, err := hyb.New(g0, operators.Expression{}, 2*nIw-1)
	require.ErrorIs(t, err, hyb.ErrInsufficientTauPoints)
}

func TestNew_BathWithExactTail(t *testing.T) {
	g0 := bathWeiss(t, []float64{bathE}, []float64{bathV})
	require.Equal(t, 6, g0.Tails[0].MaxOrder())
	m, err := hyb.New(g0, operators.Expression{}, nTau)
	require.NoError(t, err)

	require.InDelta(t, epsD, m.Epsilon[0][0], 1e-12)
	require.True(t, m.HLoc.Sub(operators.N("d", 0).Scale(epsD)).IsZero())
	require.InDelta(t, bathV*bathV, m.DeltaIw.Tails[0].Element(1, 0, 0), 1e-12)

	mesh := m.TauMesh()
	for k := 0; k < mesh.N; k += 20 {
		tau := mesh.Point(k)
		require.InDelta(t, exactDelta(tau), m.DeltaTau.Value(0, k, 0, 0), deltaTol, "tau=%g", tau)
	}
	// Antiperiodic extension.
	require.InDelta(t, -m.Delta(0, 2.5, 0, 0), m.Delta(0, 2.5-beta, 0, 0), 1e-12)
	require.False(t, m.IsZero(1e-6))

	// Rebuilt Weiss field reproduces the input.
	for n := 0; n < nIw; n += 37 {
		require.InDelta(t, real(g0.Value(0, n, 0, 0)), real(m.G0Iw.Value(0, n, 0, 0)), 1e-10)
		require.InDelta(t, imag(g0.Value(0, n, 0, 0)), imag(m.G0Iw.Value(0, n, 0, 0)), 1e-10)
	}
}

func TestNew_FittedTail(t *testing.T) {
	g0 := bathWeiss(t, []float64{bathE}, []float64{bathV})
	g0.Tails[0] = nil
	m, err := hyb.New(g0, operators.Expression{}, nTau)
	require.NoError(t, err)
	require.InDelta(t, epsD, m.Epsilon[0][0], 1e-3)
	require.InDelta(t, exactDelta(0), m.DeltaTau.Value(0, 0, 0, 0), 5e-3)
	require.InDelta(t, exactDelta(beta/2), m.DeltaTau.Value(0, (nTau-1)/2, 0, 0), 5e-3)
}

func TestNew_NoBathIsZero(t *testing.T) {
	g0 := bathWeiss(t, nil, nil)
	m, err := hyb.New(g0, operators.Expression{}, nTau)
	require.NoError(t, err)
	require.True(t, m.IsZero(1e-10))
}

func TestFromDeltaTau_Flat(t *testing.T) {
	s := oneOrbital(t)
	mesh, err := gf.NewTauMesh(beta, nTau)
	require.NoError(t, err)
	m, err := hyb.FromDeltaTau(hyb.FlatDelta(s, mesh, -0.5), operators.Expression{})
	require.NoError(t, err)
	require.InDelta(t, -0.5, m.Delta(0, 3.3, 0, 0), 1e-15)
	require.InDelta(t, 0.5, m.Delta(0, -3.3, 0, 0), 1e-15)
	require.Nil(t, m.DeltaIw)

	_, err = hyb.FromDeltaTau(nil, operators.Expression{})
	require.ErrorIs(t, err, hyb.ErrShapeMismatch)
}
