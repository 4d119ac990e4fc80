package qmc

// Options configures a Configuration.
type Options struct {
	// UseTraceEstimator switches the trace from exact summation over starting
	// subspaces to the Russian-roulette estimate.
	UseTraceEstimator bool

	// MinProbability is the floor p_min of the estimator's keep probability.
	MinProbability float64
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns exact trace evaluation.
func DefaultOptions() Options {
	return Options{MinProbability: DefaultMinProbability}
}

// WithTraceEstimator enables estimator mode with floor pMin ∈ (0, 1].
// Panics on an out-of-range pMin.
func WithTraceEstimator(pMin float64) Option {
	return func(o *Options) {
		if !(pMin > 0 && pMin <= 1) {
			panic("qmc: WithTraceEstimator: pMin must lie in (0, 1]")
		}
		o.UseTraceEstimator = true
		o.MinProbability = pMin
	}
}
