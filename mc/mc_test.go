package mc_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/mc"
)

func TestDriver_SamplesTargetDistribution(t *testing.T) {
	ring := &ringMove{w: []float64{1, 2, 3, 4}}
	v := &visits{ring: ring, counts: make([]int, 4)}
	d := mc.New(mc.NewRand(1), mc.WithLengthCycle(5), mc.WithWarmupCycles(100))
	d.AddMove("ring", ring, 1)
	d.AddMeasure("visits", v)

	const cycles = 40000
	st, err := d.Run(context.Background(), cycles)
	require.NoError(t, err)
	require.Equal(t, cycles, st.Cycles)
	require.Equal(t, 100, st.WarmupCycles)
	require.Equal(t, int64(cycles), st.Measurements)
	require.False(t, st.StoppedEarly)
	require.Equal(t, 1.0, st.AverageSign)
	require.Len(t, st.Moves, 1)
	require.Equal(t, int64(5*(cycles+100)), st.Moves[0].Proposed)
	require.Greater(t, st.Moves[0].AcceptanceRate(), 0.5)

	for i, n := range v.counts {
		require.InDelta(t, ring.w[i]/10, float64(n)/cycles, 0.02, "state %d", i)
	}
}

func TestDriver_TracksSign(t *testing.T) {
	ring := &ringMove{w: []float64{1, -1}}
	v := &visits{ring: ring, counts: make([]int, 2)}
	d := mc.New(mc.NewRand(2), mc.WithLengthCycle(3), mc.WithWarmupCycles(0))
	d.AddMove("flip", ring, 1)
	d.AddMeasure("visits", v)
	_, err := d.Run(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, v.signs, 50)
	// every proposal is accepted, so the state flips on each step
	for i, s := range v.signs {
		want := 1.0
		if (3*(i+1))%2 == 1 {
			want = -1
		}
		require.Equal(t, want, s, "measurement %d", i)
	}
	require.Equal(t, ring.w[ring.x], d.Sign())
}

func TestDriver_Errors(t *testing.T) {
	d := mc.New(mc.NewRand(1))
	_, err := d.Run(context.Background(), 10)
	require.ErrorIs(t, err, mc.ErrNoMoves)

	d.AddMove("ring", &ringMove{w: []float64{1, 1}}, 1)
	_, err = d.Run(context.Background(), 0)
	require.ErrorIs(t, err, mc.ErrBadCycles)

	require.Panics(t, func() { d.AddMove("bad", &ringMove{w: []float64{1}}, 0) })
	require.Panics(t, func() { mc.WithLengthCycle(0)(&mc.Options{}) })
	require.Panics(t, func() { mc.WithWarmupCycles(-1)(&mc.Options{}) })
	require.Panics(t, func() { mc.WithRefresh(0, func() error { return nil })(&mc.Options{}) })
}

func TestDriver_TimeBudget(t *testing.T) {
	d := mc.New(mc.NewRand(1), mc.WithWarmupCycles(0), mc.WithMaxTime(time.Nanosecond))
	d.AddMove("ring", &ringMove{w: []float64{1, 1}}, 1)
	st, err := d.Run(context.Background(), 1<<30)
	require.NoError(t, err)
	require.True(t, st.StoppedEarly)
	require.Less(t, st.Cycles, 1<<30)
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := mc.New(mc.NewRand(1))
	d.AddMove("ring", &ringMove{w: []float64{1, 1}}, 1)
	st, err := d.Run(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, st.StoppedEarly)
}

func TestDriver_Refresh(t *testing.T) {
	calls := 0
	d := mc.New(mc.NewRand(1), mc.WithWarmupCycles(10), mc.WithRefresh(5, func() error {
		calls++
		return nil
	}))
	d.AddMove("ring", &ringMove{w: []float64{1, 1}}, 1)
	_, err := d.Run(context.Background(), 20)
	require.NoError(t, err)
	require.Equal(t, 2+4, calls)

	boom := errors.New("boom")
	d = mc.New(mc.NewRand(1), mc.WithWarmupCycles(0), mc.WithRefresh(1, func() error { return boom }))
	d.AddMove("ring", &ringMove{w: []float64{1, 1}}, 1)
	_, err = d.Run(context.Background(), 20)
	require.ErrorIs(t, err, boom)
}

func TestDriver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := mc.NewMetrics(reg)
	ring := &ringMove{w: []float64{1, 2}}
	d := mc.New(mc.NewRand(3), mc.WithMetrics(m), mc.WithLengthCycle(4), mc.WithWarmupCycles(0), mc.WithWorker(1))
	d.AddMove("ring", ring, 1)
	d.AddMeasure("visits", &visits{ring: ring, counts: make([]int, 2)})
	st, err := d.Run(context.Background(), 25)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				got[f.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				got[f.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	require.Equal(t, 100.0, got["cthyb_move_proposed_total"])
	require.Equal(t, float64(st.Moves[0].Accepted), got["cthyb_move_accepted_total"])
	require.Equal(t, 25.0, got["cthyb_measurements_total"])
	require.Equal(t, 1.0, got["cthyb_average_sign"])
}

func TestRunWorkers(t *testing.T) {
	var n atomic.Int64
	err := mc.RunWorkers(context.Background(), 4, func(_ context.Context, w int) error {
		n.Add(int64(w + 1))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), n.Load())

	boom := errors.New("boom")
	err = mc.RunWorkers(context.Background(), 3, func(ctx context.Context, w int) error {
		if w == 1 {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, boom)
}

func TestRand_Deterministic(t *testing.T) {
	a, b := mc.NewRand(42), mc.NewRand(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Int63(), b.Int63())
	}
	require.NotEqual(t, mc.NewRand(0).Int63(), mc.NewRand(mc.DefaultSeed).Int63())
	require.NotEqual(t, mc.NewRand(1).Int63(), mc.NewRand(2).Int63())
	require.Equal(t, int64(34788+2*928374), mc.WorkerSeed(34788, 2))
	require.NotEqual(t, mc.DeriveSeed(1, 0), mc.DeriveSeed(1, 1))
}

func TestNewRandFrom(t *testing.T) {
	first := map[string]int64{}
	for _, name := range []string{"", mc.GeneratorALFG, mc.GeneratorPCG, mc.GeneratorChaCha8} {
		x, err := mc.NewRandFrom(name, 7)
		require.NoError(t, err)
		y, err := mc.NewRandFrom(name, 7)
		require.NoError(t, err)
		z, err := mc.NewRandFrom(name, 8)
		require.NoError(t, err)
		vx, vz := x.Int63(), z.Int63()
		require.Equal(t, vx, y.Int63(), name)
		require.NotEqual(t, vx, vz, name)
		for i := 0; i < 100; i++ {
			f := x.Float64()
			require.True(t, f >= 0 && f < 1)
		}
		first[name] = vx
	}
	require.Equal(t, first[""], first[mc.GeneratorALFG])
	require.NotEqual(t, first[mc.GeneratorALFG], first[mc.GeneratorPCG])
	require.NotEqual(t, first[mc.GeneratorPCG], first[mc.GeneratorChaCha8])

	_, err := mc.NewRandFrom("mt19937", 1)
	require.ErrorIs(t, err, mc.ErrUnknownGenerator)
}
