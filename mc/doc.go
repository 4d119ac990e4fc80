// Package mc is a generic Metropolis driver: a weighted set of moves, a set
// of measurements, and a cycle loop with warmup, time budget and
// cancellation.
//
// A Move proposes a change and returns the signed acceptance ratio R; the
// driver accepts with probability min(1, |R|), calls Accept (which returns
// the sign factor to multiply into the running sign) or Reject. Moves must
// not modify their state inside Propose. A Measure records the current state
// with the running sign once per cycle.
//
// Every Driver owns an explicit *rand.Rand; there is no package-level
// generator. Independent chains run in separate goroutines via RunWorkers,
// each with its own Driver, rng and measurements, and results are combined by
// the caller after all workers return.
//
// Counters and gauges are exported through Metrics on a caller-supplied
// prometheus.Registerer. Progress is logged through a logrus.FieldLogger.
package mc
