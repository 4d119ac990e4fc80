package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/config"
	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/operators"
)

func TestLoad_Hubbard(t *testing.T) {
	c, err := config.Load(filepath.Join("testdata", "hubbard.yaml"))
	require.NoError(t, err)
	require.Equal(t, 10.0, c.Beta)
	require.Equal(t, 20000, c.Solve.NCycles)
	require.Equal(t, 2000, c.Solve.NWarmupCycles)
	require.Equal(t, 2, c.Solve.Workers)
	require.True(t, c.Solve.MeasurePertOrder)
	require.True(t, c.Solve.MakeHistograms)
	require.Equal(t, "pcg", c.Solve.RandomName)
	// untouched keys keep their defaults
	require.Equal(t, 50, c.Solve.LengthCycle)
	require.Equal(t, int64(34788), c.Solve.RandomSeed)
	require.True(t, c.Solve.MeasureGTau)
	require.Equal(t, "hubbard.prom", c.Out.Metrics)

	s, err := c.Structure()
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	nu, nd := operators.N("up", 0), operators.N("dn", 0)
	want := nu.Mul(nd).Scale(2).Sub(nu.Add(nd))
	require.True(t, c.Hamiltonian().Sub(want).IsZero())

	mesh, err := gf.NewFreqMesh(c.Beta, c.NIw)
	require.NoError(t, err)
	g0, err := c.WeissField(s, mesh)
	require.NoError(t, err)
	// G0 = iω/((iω)² − 1) for a level at zero coupled to a bath level at zero
	iw := mesh.IW(3)
	require.InDelta(t, imag(iw/(iw*iw-1)), imag(g0.Value(1, 3, 0, 0)), 1e-12)
}

func TestParse_EnvOverlay(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "hubbard.yaml"))
	require.NoError(t, err)
	t.Setenv("CTHYB_N_CYCLES", "77")
	t.Setenv("CTHYB_RANDOM_SEED", "5")
	t.Setenv("CTHYB_USE_TRACE_ESTIMATOR", "true")
	c, err := config.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 77, c.Solve.NCycles)
	require.Equal(t, int64(5), c.Solve.RandomSeed)
	require.True(t, c.Solve.UseTraceEstimator)

	t.Setenv("CTHYB_WORKERS", "many")
	_, err = config.Parse(raw)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestParse_Invalid(t *testing.T) {
	base := `
beta: 5
n_iw: 20
n_tau: 41
blocks: [{name: d, indices: [0]}]
solve: {n_cycles: 10}
`
	_, err := config.Parse([]byte(base))
	require.NoError(t, err)

	cases := map[string]string{
		"coarse tau mesh": `
beta: 5
n_iw: 20
n_tau: 39
blocks: [{name: d, indices: [0]}]
solve: {n_cycles: 10}
`,
		"missing cycles": `
beta: 5
n_iw: 20
n_tau: 41
blocks: [{name: d, indices: [0]}]
`,
		"unknown orbital": base + `
h_loc:
  density: [{a: {block: d, index: 0}, b: {block: x, index: 0}, value: 1}]
`,
		"unknown bath block": base + `
bath: [{block: x, levels: [0], couplings: [[1]]}]
`,
		"duplicate block": `
beta: 5
n_iw: 20
n_tau: 41
blocks: [{name: d, indices: [0]}, {name: d, indices: [1]}]
solve: {n_cycles: 10}
`,
		"negative beta": `
beta: -5
n_iw: 20
n_tau: 41
blocks: [{name: d, indices: [0]}]
solve: {n_cycles: 10}
`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(raw))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}

	_, err = config.Parse([]byte(cases["coarse tau mesh"]))
	require.ErrorIs(t, err, hyb.ErrInsufficientTauPoints)
}

func TestWeissField_ShapeMismatch(t *testing.T) {
	c, err := config.Parse([]byte(`
beta: 5
n_iw: 20
n_tau: 41
blocks: [{name: d, indices: [0]}]
bath: [{block: d, eps: [[0, 1]], levels: [0], couplings: [[1]]}]
solve: {n_cycles: 10}
`))
	require.NoError(t, err)
	s, err := c.Structure()
	require.NoError(t, err)
	_, err = c.WeissField(s, gf.FreqMesh{Beta: 5, N: 20})
	require.ErrorIs(t, err, hyb.ErrShapeMismatch)
}
