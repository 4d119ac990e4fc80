package solver

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/cthyb/mc"
	"github.com/katalvlaran/cthyb/space"
)

// SolveOptions configures Solve beyond Params.
type SolveOptions struct {
	Logger              logrus.FieldLogger
	Metrics             *mc.Metrics
	SpaceOptions        []space.Option
	MinTraceProbability float64
}

// SolveOption mutates SolveOptions.
type SolveOption func(*SolveOptions)

// DefaultSolveOptions discards logs and exports no metrics.
func DefaultSolveOptions() SolveOptions {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return SolveOptions{Logger: l, MinTraceProbability: 0.01}
}

// WithLogger sets the logger; nil is ignored.
func WithLogger(l logrus.FieldLogger) SolveOption {
	return func(o *SolveOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics exports driver counters of every worker.
func WithMetrics(m *mc.Metrics) SolveOption {
	return func(o *SolveOptions) { o.Metrics = m }
}

// WithSpaceOptions forwards options to the local-space construction,
// e.g. space.WithQuantumNumbers.
func WithSpaceOptions(opts ...space.Option) SolveOption {
	return func(o *SolveOptions) { o.SpaceOptions = append(o.SpaceOptions, opts...) }
}

// WithMinTraceProbability sets the estimator floor used when
// Params.UseTraceEstimator is on. Panics outside (0, 1].
func WithMinTraceProbability(p float64) SolveOption {
	return func(o *SolveOptions) {
		if !(p > 0 && p <= 1) {
			panic("solver: WithMinTraceProbability: p must lie in (0, 1]")
		}
		o.MinTraceProbability = p
	}
}
