package qmc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/space"
)

func hubbardSpace(t *testing.T) *space.Space {
	t.Helper()
	fops := operators.NewFundamentalSet()
	_, err := fops.Insert("up", 0)
	require.NoError(t, err)
	_, err = fops.Insert("dn", 0)
	require.NoError(t, err)
	nu, nd := operators.N("up", 0), operators.N("dn", 0)
	sp, err := space.New(nu.Mul(nd).Scale(2).Sub(nu.Add(nd)), fops)
	require.NoError(t, err)

	return sp
}

func TestTrace_EmptyIsPartitionFunction(t *testing.T) {
	const beta = 2.0
	sp := hubbardSpace(t)
	tr, err := newTraceEstimator(sp, beta, [][]int{{0}, {1}}, false, DefaultMinProbability)
	require.NoError(t, err)
	require.Equal(t, 1.0, tr.value.sign)
	require.InDelta(t, math.Log(sp.PartitionFunction(beta)), tr.value.logAbs, 1e-12)
}

func TestTrace_PrefixCacheMatchesScratch(t *testing.T) {
	const beta = 2.0
	sp := hubbardSpace(t)
	tr, err := newTraceEstimator(sp, beta, [][]int{{0}, {1}}, false, DefaultMinProbability)
	require.NoError(t, err)

	ops := []Operator{
		{Tau: 0.2, Block: 0, Dagger: true},
		{Tau: 0.5, Block: 1, Dagger: true},
		{Tau: 1.1, Block: 0},
		{Tau: 1.7, Block: 1},
	}
	p, err := tr.propose(ops, 0, nil)
	require.NoError(t, err)
	tr.commit(p)

	next, first := withInserted(ops, Operator{Tau: 1.3, Block: 0, Dagger: true}, Operator{Tau: 1.5, Block: 0})
	require.Equal(t, 3, first)
	cached, err := tr.propose(next, first, nil)
	require.NoError(t, err)
	scratch, err := tr.exact(next)
	require.NoError(t, err)
	require.Equal(t, scratch.sign, cached.value.sign)
	require.InDelta(t, scratch.logAbs, cached.value.logAbs, 1e-12)
}

func TestTrace_EstimatorIsUnbiased(t *testing.T) {
	const (
		beta  = 2.0
		draws = 20000
	)
	sp := hubbardSpace(t)
	tr, err := newTraceEstimator(sp, beta, [][]int{{0}, {1}}, true, DefaultMinProbability)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(21))

	exact := sp.PartitionFunction(beta)
	sum := 0.0
	for i := 0; i < draws; i++ {
		v, err := tr.estimate(nil, rng)
		require.NoError(t, err)
		sum += v.sign * math.Exp(v.logAbs)
	}
	require.InDelta(t, 1.0, sum/draws/exact, 0.01)
}

func TestDetBlock_UpdatesMatchInverse(t *testing.T) {
	// Gaussian kernel in shifted coordinates: strictly totally positive, so
	// every D built from distinct times is non-singular.
	delta := func(tau float64, i, j int) float64 {
		x := tau + 0.7*float64(i) - 0.4*float64(j)
		return -math.Exp(-3 * x * x)
	}
	d := newDetBlock(2)
	rng := rand.New(rand.NewSource(4))
	for n := 0; n < 5; n++ {
		p := d.proposeInsert(delta, rng.Float64()*3, rng.Intn(2), rng.Float64()*3, rng.Intn(2))
		require.False(t, p.singular())
		d = d.commitInsert(p)
		requireInverse(t, d, delta)
	}
	for d.order() > 1 {
		i, j := rng.Intn(d.order()), rng.Intn(d.order())
		require.False(t, d.removeSingular(i, j))
		d = d.commitRemove(i, j)
		requireInverse(t, d, delta)
	}
}

func TestDetBlock_SingularInsertRejected(t *testing.T) {
	// Constant Δ with every creator later than every annihilator: D is all
	// equal entries and any second pair makes it singular.
	delta := func(float64, int, int) float64 { return -0.3 }
	d := newDetBlock(1)
	p := d.proposeInsert(delta, 3.0, 0, 1.0, 0)
	require.False(t, p.singular())
	d = d.commitInsert(p)

	p = d.proposeInsert(delta, 3.5, 0, 0.5, 0)
	require.InDelta(t, 0.0, p.s, 1e-15)
	require.True(t, p.singular())

	zero := func(float64, int, int) float64 { return 0 }
	require.True(t, newDetBlock(1).proposeInsert(zero, 1, 0, 2, 0).singular())
}

func TestDetBlock_SingularRemoveRejected(t *testing.T) {
	d := &detBlock{
		size:     1,
		rowTau:   []float64{0.5, 1.5},
		rowInner: []int{0, 0},
		colTau:   []float64{1.0, 2.0},
		colInner: []int{0, 0},
		m:        []float64{1.2, 1e-17, -0.7, 2.1},
	}
	require.True(t, d.removeSingular(1, 0))
	require.False(t, d.removeSingular(0, 0))
	require.False(t, d.removeSingular(0, 1))
}

func requireInverse(t *testing.T, d *detBlock, delta deltaFunc) {
	t.Helper()
	fresh, err := d.refreshed(delta)
	require.NoError(t, err)
	require.Len(t, d.m, len(fresh.m))
	scale := 1.0
	for _, v := range fresh.m {
		scale = math.Max(scale, math.Abs(v))
	}
	for i := range d.m {
		require.InDelta(t, fresh.m[i], d.m[i], 1e-8*scale)
	}
}
