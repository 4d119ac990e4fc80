package gf_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/gf"
)

// singleLevel builds G(iω) = 1/(iω − eps) on one 1×1 block named "d".
func singleLevel(t *testing.T, beta, eps float64, nIw int) *gf.FreqBlockGF {
	t.Helper()
	s, err := gf.NewStructure(gf.Block{Name: "d", Indices: []int{0}})
	require.NoError(t, err)
	m, err := gf.NewFreqMesh(beta, nIw)
	require.NoError(t, err)
	g := gf.NewFreqBlockGF(s, m)
	for n := 0; n < nIw; n++ {
		g.SetValue(0, n, 0, 0, 1/(m.IW(n)-complex(eps, 0)))
	}

	return g
}

// singleLevelTau is the exact transform −e^{−ετ}/(1+e^{−βε}).
func singleLevelTau(beta, eps, tau float64) float64 {
	return -math.Exp(-eps*tau) / (1 + math.Exp(-beta*eps))
}
