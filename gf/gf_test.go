package gf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/gf"
)

func TestTauMesh(t *testing.T) {
	m, err := gf.NewTauMesh(10, 201)
	require.NoError(t, err)
	require.InDelta(t, 0.05, m.Delta(), 1e-15)

	sum := 0.0
	for k := 0; k < m.N; k++ {
		sum += m.BinWidth(k)
	}
	require.InDelta(t, 10.0, sum, 1e-12)

	require.Equal(t, 0, m.Index(0))
	require.Equal(t, 0, m.Index(0.02))
	require.Equal(t, 1, m.Index(0.03))
	require.Equal(t, 200, m.Index(10))
	require.Equal(t, 200, m.Index(11))

	_, err = gf.NewTauMesh(0, 10)
	require.ErrorIs(t, err, gf.ErrBadMesh)
	_, err = gf.NewTauMesh(1, 1)
	require.ErrorIs(t, err, gf.ErrBadMesh)
	_, err = gf.NewFreqMesh(-1, 10)
	require.ErrorIs(t, err, gf.ErrBadMesh)
}

func TestStructureValidation(t *testing.T) {
	_, err := gf.NewStructure()
	require.ErrorIs(t, err, gf.ErrEmptyStructure)
	_, err = gf.NewStructure(gf.Block{Name: "a", Indices: []int{0}}, gf.Block{Name: "a", Indices: []int{1}})
	require.ErrorIs(t, err, gf.ErrDuplicateBlock)
	_, err = gf.NewStructure(gf.Block{Name: "a"})
	require.ErrorIs(t, err, gf.ErrEmptyBlock)
	_, err = gf.NewStructure(gf.Block{Name: "a", Indices: []int{0, 0}})
	require.ErrorIs(t, err, gf.ErrDuplicateIndex)

	s, err := gf.NewStructure(gf.Block{Name: "up", Indices: []int{0, 1}}, gf.Block{Name: "dn", Indices: []int{0, 1}})
	require.NoError(t, err)
	b, err := s.Lookup("dn")
	require.NoError(t, err)
	require.Equal(t, 1, b)
	require.Equal(t, 2, s.Size(b))
	_, err = s.Lookup("x")
	require.ErrorIs(t, err, gf.ErrUnknownBlock)
}

func TestTimeBlockGF_Antiperiodic(t *testing.T) {
	s, err := gf.NewStructure(gf.Block{Name: "d", Indices: []int{0}})
	require.NoError(t, err)
	m, err := gf.NewTauMesh(2, 3)
	require.NoError(t, err)
	g := gf.NewTimeBlockGF(s, m)
	g.SetValue(0, 0, 0, 0, -0.8)
	g.SetValue(0, 1, 0, 0, -0.5)
	g.SetValue(0, 2, 0, 0, -0.2)

	require.InDelta(t, -0.65, g.At(0, 0.5, 0, 0), 1e-15)
	require.InDelta(t, 0.65, g.At(0, -1.5, 0, 0), 1e-15)
	require.InDelta(t, -0.2, g.At(0, 2, 0, 0), 1e-15)
	require.InDelta(t, -g.At(0, 0.3, 0, 0), g.At(0, 0.3-2, 0, 0), 1e-12)
}

func TestTailInverse_SingleLevel(t *testing.T) {
	const eps = 0.7
	tail := gf.NewTail(1, 4, 1)
	for k := 1; k <= 4; k++ {
		v := 1.0
		for p := 1; p < k; p++ {
			v *= eps
		}
		require.NoError(t, tail.SetMoment(k, []float64{v}))
	}
	inv, err := tail.Inverse()
	require.NoError(t, err)
	require.Equal(t, -1, inv.MinOrder)
	require.Equal(t, 2, inv.MaxOrder())
	require.InDelta(t, 1.0, inv.Element(-1, 0, 0), 1e-14)
	require.InDelta(t, -eps, inv.Element(0, 0, 0), 1e-14)
	require.InDelta(t, 0.0, inv.Element(1, 0, 0), 1e-14)
	require.InDelta(t, 0.0, inv.Element(2, 0, 0), 1e-14)
}

func TestFitTail_SingleLevel(t *testing.T) {
	const eps = 0.5
	g := singleLevel(t, 10, eps, 500)
	tail, err := gf.FitTail(g, 0, 4, 100)
	require.NoError(t, err)
	require.InDelta(t, 1.0, tail.Element(1, 0, 0), 1e-5)
	require.InDelta(t, eps, tail.Element(2, 0, 0), 1e-3)

	_, err = gf.FitTail(g, 0, 4, 1)
	require.ErrorIs(t, err, gf.ErrShapeMismatch)
}

func TestInverseFourier_SingleLevel(t *testing.T) {
	const (
		beta = 10.0
		eps  = 0.5
	)
	g := singleLevel(t, beta, eps, 200)
	exact := gf.NewTail(1, 3, 1)
	require.NoError(t, exact.SetMoment(1, []float64{1}))
	require.NoError(t, exact.SetMoment(2, []float64{eps}))
	require.NoError(t, exact.SetMoment(3, []float64{eps * eps}))
	g.Tails[0] = exact

	mesh, err := gf.NewTauMesh(beta, 101)
	require.NoError(t, err)
	gt, err := gf.InverseFourier(g, nil, mesh)
	require.NoError(t, err)
	for k := 0; k < mesh.N; k += 10 {
		require.InDelta(t, singleLevelTau(beta, eps, mesh.Point(k)), gt.Value(0, k, 0, 0), 1e-3, "tau=%g", mesh.Point(k))
	}

	// Fitted tail gives the same function to a looser tolerance.
	g.Tails[0] = nil
	gt, err = gf.InverseFourier(g, nil, mesh)
	require.NoError(t, err)
	require.InDelta(t, singleLevelTau(beta, eps, 0), gt.Value(0, 0, 0, 0), 5e-3)

	_, err = gf.InverseFourier(g, nil, gf.TauMesh{Beta: 5, N: 10})
	require.ErrorIs(t, err, gf.ErrShapeMismatch)
}
