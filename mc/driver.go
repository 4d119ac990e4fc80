package mc

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Move is one Monte Carlo update. Propose returns the signed acceptance
// ratio without changing state; 0 is a rejection. Accept commits the last
// proposal and returns its sign factor.
type Move interface {
	Propose(rng *rand.Rand) float64
	Accept() float64
	Reject()
}

// Measure records the current state with the running sign.
type Measure interface {
	Record(sign float64)
}

type moveEntry struct {
	name     string
	move     Move
	weight   float64
	proposed int64
	accepted int64

	cProposed prometheus.Counter
	cAccepted prometheus.Counter
}

type measureEntry struct {
	name     string
	measure  Measure
	cMeasure prometheus.Counter
}

// MoveStats are the per-move counters of a run.
type MoveStats struct {
	Name     string
	Proposed int64
	Accepted int64
}

// AcceptanceRate returns Accepted/Proposed, 0 when nothing was proposed.
func (s MoveStats) AcceptanceRate() float64 {
	if s.Proposed == 0 {
		return 0
	}

	return float64(s.Accepted) / float64(s.Proposed)
}

// Stats summarize one Run.
type Stats struct {
	WarmupCycles int
	Cycles       int
	Measurements int64
	AverageSign  float64
	Moves        []MoveStats
	StoppedEarly bool
	Duration     time.Duration
}

// Driver runs a Metropolis chain. It is not safe for concurrent use.
type Driver struct {
	opts     Options
	rng      *rand.Rand
	log      logrus.FieldLogger
	moves    []*moveEntry
	measures []*measureEntry
	total    float64

	sign    float64
	signSum float64
	nMeas   int64
}

// New returns a driver drawing from rng.
func New(rng *rand.Rand, opts ...Option) *Driver {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Driver{
		opts: o,
		rng:  rng,
		log:  o.Logger.WithField("worker", o.Worker),
		sign: 1,
	}
}

// AddMove registers m under name with a positive selection weight.
// Panics on a non-positive weight.
func (d *Driver) AddMove(name string, m Move, weight float64) {
	if !(weight > 0) {
		panic("mc: AddMove: weight must be positive")
	}
	e := &moveEntry{name: name, move: m, weight: weight}
	if d.opts.Metrics != nil {
		e.cProposed = d.opts.Metrics.proposed.WithLabelValues(name)
		e.cAccepted = d.opts.Metrics.accepted.WithLabelValues(name)
	}
	d.moves = append(d.moves, e)
	d.total += weight
}

// AddMeasure registers m under name.
func (d *Driver) AddMeasure(name string, m Measure) {
	e := &measureEntry{name: name, measure: m}
	if d.opts.Metrics != nil {
		e.cMeasure = d.opts.Metrics.measured.WithLabelValues(name)
	}
	d.measures = append(d.measures, e)
}

// Sign returns the current running sign.
func (d *Driver) Sign() float64 { return d.sign }

// pick selects a move with probability proportional to its weight.
func (d *Driver) pick() *moveEntry {
	r := d.rng.Float64() * d.total
	for _, e := range d.moves {
		if r < e.weight {
			return e
		}
		r -= e.weight
	}

	return d.moves[len(d.moves)-1]
}

// step performs one Metropolis update.
func (d *Driver) step() {
	e := d.pick()
	e.proposed++
	if e.cProposed != nil {
		e.cProposed.Inc()
	}
	r := e.move.Propose(d.rng)
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) || d.rng.Float64() >= math.Min(1, math.Abs(r)) {
		e.move.Reject()
		return
	}
	d.sign *= e.move.Accept()
	e.accepted++
	if e.cAccepted != nil {
		e.cAccepted.Inc()
	}
}

func (d *Driver) measure() {
	for _, e := range d.measures {
		e.measure.Record(d.sign)
		if e.cMeasure != nil {
			e.cMeasure.Inc()
		}
	}
	d.signSum += d.sign
	d.nMeas++
}

// cycle runs LengthCycle steps and the periodic refresh.
func (d *Driver) cycle(n int) error {
	for i := 0; i < d.opts.LengthCycle; i++ {
		d.step()
	}
	if d.opts.RefreshEvery > 0 && (n+1)%d.opts.RefreshEvery == 0 {
		if err := d.opts.Refresh(); err != nil {
			return fmt.Errorf("mc: refresh: %w", err)
		}
	}

	return nil
}

// Run performs WarmupCycles unmeasured cycles, then nCycles cycles each
// followed by one round of measurements.
//
// The context and the time budget are checked between cycles. An expired
// budget ends the run normally with StoppedEarly set; a cancelled context
// returns its error together with the partial Stats.
//
// Errors: ErrNoMoves, ErrBadCycles, context errors, refresh errors.
func (d *Driver) Run(ctx context.Context, nCycles int) (Stats, error) {
	if len(d.moves) == 0 {
		return Stats{}, ErrNoMoves
	}
	if nCycles <= 0 {
		return Stats{}, fmt.Errorf("nCycles = %d: %w", nCycles, ErrBadCycles)
	}
	start := time.Now()
	st := Stats{}
	expired := func() bool {
		return d.opts.MaxTime > 0 && time.Since(start) > d.opts.MaxTime
	}
	finish := func(err error) (Stats, error) {
		st.Duration = time.Since(start)
		st.Measurements = d.nMeas
		if d.nMeas > 0 {
			st.AverageSign = d.signSum / float64(d.nMeas)
		}
		st.Moves = make([]MoveStats, len(d.moves))
		for i, e := range d.moves {
			st.Moves[i] = MoveStats{Name: e.name, Proposed: e.proposed, Accepted: e.accepted}
		}
		if d.opts.Metrics != nil {
			d.opts.Metrics.sign.WithLabelValues(strconv.Itoa(d.opts.Worker)).Set(st.AverageSign)
		}
		d.log.WithFields(logrus.Fields{
			"cycles":        st.Cycles,
			"average_sign":  st.AverageSign,
			"stopped_early": st.StoppedEarly,
			"duration":      st.Duration,
		}).Info("sampling finished")

		return st, err
	}

	d.log.WithField("cycles", d.opts.WarmupCycles).Info("warming up")
	for ; st.WarmupCycles < d.opts.WarmupCycles; st.WarmupCycles++ {
		if err := ctx.Err(); err != nil {
			st.StoppedEarly = true
			return finish(err)
		}
		if expired() {
			st.StoppedEarly = true
			d.log.Warn("time budget exhausted during warmup")
			return finish(nil)
		}
		if err := d.cycle(st.WarmupCycles); err != nil {
			return finish(err)
		}
	}

	d.log.WithField("cycles", nCycles).Info("sampling")
	report := nCycles / 10
	for ; st.Cycles < nCycles; st.Cycles++ {
		if err := ctx.Err(); err != nil {
			st.StoppedEarly = true
			return finish(err)
		}
		if expired() {
			st.StoppedEarly = true
			d.log.Warn("time budget exhausted")
			return finish(nil)
		}
		if err := d.cycle(st.Cycles); err != nil {
			return finish(err)
		}
		d.measure()
		if report > 0 && (st.Cycles+1)%report == 0 {
			d.log.WithFields(logrus.Fields{
				"done": st.Cycles + 1,
				"sign": d.signSum / float64(d.nMeas),
			}).Debug("progress")
		}
	}

	return finish(nil)
}
