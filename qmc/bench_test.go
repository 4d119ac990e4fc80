package qmc_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/cthyb/qmc"
)

var sinkF float64

// BenchmarkWalk measures full Metropolis steps on a warmed configuration.
func BenchmarkWalk(b *testing.B) {
	for _, tc := range []struct {
		name string
		cfg  func(testing.TB) *qmc.Configuration
	}{
		{"hubbard", func(t testing.TB) *qmc.Configuration { return hubbard(t) }},
		{"hubbard_estimator", func(t testing.TB) *qmc.Configuration { return hubbard(t, qmc.WithTraceEstimator(0.05)) }},
		{"two_orbital", twoOrbital},
	} {
		b.Run(tc.name, func(b *testing.B) {
			cfg := tc.cfg(b)
			rng := rand.New(rand.NewSource(1337))
			warm(rng, cfg, 2000)
			moves := movesOf(cfg)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				f, _ := step(rng, moves[rng.Intn(len(moves))])
				sinkF = f
			}
		})
	}
}

// BenchmarkWeight measures the from-scratch weight evaluation.
func BenchmarkWeight(b *testing.B) {
	cfg := twoOrbital(b)
	warm(rand.New(rand.NewSource(4242)), cfg, 2000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, l, err := cfg.Weight()
		if err != nil {
			b.Fatal(err)
		}
		sinkF = l
	}
}
