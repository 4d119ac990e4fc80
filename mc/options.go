package mc

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultLengthCycle is the number of move attempts between measurements.
	DefaultLengthCycle = 50

	// DefaultWarmupCycles is the number of cycles discarded before sampling.
	DefaultWarmupCycles = 5000
)

// Options configures a Driver.
type Options struct {
	LengthCycle  int
	WarmupCycles int

	// MaxTime bounds the wall time of Run; ≤ 0 means unbounded.
	MaxTime time.Duration

	// RefreshEvery calls Refresh after every RefreshEvery cycles; 0 disables it.
	RefreshEvery int
	Refresh      func() error

	Worker  int
	Logger  logrus.FieldLogger
	Metrics *Metrics
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the default cycle lengths, no time budget and a
// logger that discards its output.
func DefaultOptions() Options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return Options{
		LengthCycle:  DefaultLengthCycle,
		WarmupCycles: DefaultWarmupCycles,
		Logger:       l,
	}
}

// WithLengthCycle sets the moves per cycle. Panics if n < 1.
func WithLengthCycle(n int) Option {
	return func(o *Options) {
		if n < 1 {
			panic("mc: WithLengthCycle: n must be ≥ 1")
		}
		o.LengthCycle = n
	}
}

// WithWarmupCycles sets the discarded cycles. Panics if n < 0.
func WithWarmupCycles(n int) Option {
	return func(o *Options) {
		if n < 0 {
			panic("mc: WithWarmupCycles: n must be ≥ 0")
		}
		o.WarmupCycles = n
	}
}

// WithMaxTime sets the wall-time budget; d ≤ 0 disables it.
func WithMaxTime(d time.Duration) Option {
	return func(o *Options) { o.MaxTime = d }
}

// WithRefresh calls fn after every `every` cycles. Panics if every < 1 or fn is nil.
func WithRefresh(every int, fn func() error) Option {
	return func(o *Options) {
		if every < 1 || fn == nil {
			panic("mc: WithRefresh: need every ≥ 1 and a non-nil function")
		}
		o.RefreshEvery, o.Refresh = every, fn
	}
}

// WithWorker labels logs and metrics with the worker index.
func WithWorker(w int) Option {
	return func(o *Options) { o.Worker = w }
}

// WithLogger sets the progress logger. A nil logger is ignored.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics enables prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}
