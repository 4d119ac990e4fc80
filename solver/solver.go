package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/mc"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/qmc"
	"github.com/katalvlaran/cthyb/space"
)

// zeroDeltaTol is the |Δ(τ)| below which the hybridization counts as absent.
const zeroDeltaTol = 1e-10

// Solver holds one impurity setup and the result of the last Solve.
type Solver struct {
	beta      float64
	structure gf.Structure
	nIw, nTau int

	g0     *gf.FreqBlockGF
	model  *hyb.Model
	result *Result
}

// New validates the setup.
//
// Errors: hyb.ErrInsufficientTauPoints when nTau < 2·nIw; gf.ErrBadMesh for
// β ≤ 0 or nIw < 1.
func New(beta float64, s gf.Structure, nIw, nTau int) (*Solver, error) {
	if err := hyb.CheckMesh(nIw, nTau); err != nil {
		return nil, fmt.Errorf("solver.New: %w", err)
	}
	if _, err := gf.NewFreqMesh(beta, nIw); err != nil {
		return nil, fmt.Errorf("solver.New: %w", err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("solver.New: %w", gf.ErrEmptyStructure)
	}

	return &Solver{beta: beta, structure: s, nIw: nIw, nTau: nTau}, nil
}

// Beta returns the inverse temperature.
func (s *Solver) Beta() float64 { return s.beta }

// Structure returns the block structure.
func (s *Solver) Structure() gf.Structure { return s.structure }

// FreqMesh returns the Matsubara mesh the Weiss field must live on.
func (s *Solver) FreqMesh() gf.FreqMesh { return gf.FreqMesh{Beta: s.beta, N: s.nIw} }

// TauMesh returns the imaginary-time mesh of the results.
func (s *Solver) TauMesh() gf.TauMesh { return gf.TauMesh{Beta: s.beta, N: s.nTau} }

// SetG0 installs the Weiss field.
// Errors: gf.ErrShapeMismatch when structure or mesh differ from the setup.
func (s *Solver) SetG0(g0 *gf.FreqBlockGF) error {
	if g0 == nil || !g0.Structure.Equal(s.structure) || g0.Mesh != s.FreqMesh() {
		return fmt.Errorf("SetG0: %w", gf.ErrShapeMismatch)
	}
	s.g0 = g0

	return nil
}

// worker is the private state of one chain.
type worker struct {
	greens []*qmc.GreenAccumulator
	hists  []*qmc.OrderHistogram
	props  []*qmc.ProposalHistogram
	stats  mc.Stats
}

// Solve samples G(τ) for the local Hamiltonian hLoc.
//
// Implementation:
//   - Stage 1: validate params; build the hybridization model and the local space.
//   - Stage 2: zero hybridization ⇒ atomic G(τ), no sampling.
//   - Stage 3: run Params.Workers chains (mc.RunWorkers), each with its own
//     rng (mc.WorkerSeed), Configuration, moves and measurements.
//   - Stage 4: merge accumulators; per-bin standard error across workers.
//
// A time budget that runs out is not an error: the partial statistics are
// reduced normally. A cancelled ctx aborts with its error.
//
// Errors: ErrInvalidParams, ErrNoWeissField, hyb/space/qmc setup errors, ctx errors.
func (s *Solver) Solve(ctx context.Context, hLoc operators.Expression, p Params, opts ...SolveOption) (*Result, error) {
	o := DefaultSolveOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.g0 == nil {
		return nil, ErrNoWeissField
	}
	runID := uuid.NewString()
	log := o.Logger.WithField("run_id", runID)

	// Stage 1
	model, err := hyb.New(s.g0, hLoc, s.nTau)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	s.model = model
	sp, err := space.New(model.HLoc, space.FundamentalFromStructure(s.structure), o.SpaceOptions...)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	log.WithFields(logrus.Fields{
		"beta":         s.beta,
		"blocks":       s.structure.Len(),
		"subspaces":    sp.NumSubspaces(),
		"ground_state": sp.GroundEnergy(),
	}).Info("local problem ready")

	// Stage 2
	if model.IsZero(zeroDeltaTol) {
		g, err := sp.AtomicGreenFunction(s.structure, model.TauMesh())
		if err != nil {
			return nil, fmt.Errorf("Solve: %w", err)
		}
		log.Warn("hybridization vanishes, returning the atomic Green's function")
		s.result = &Result{RunID: runID, GTau: g, Atomic: true, AverageSign: 1}
		if p.MeasurePertOrder {
			if s.result.Histograms, err = atomicHistograms(model, sp, p); err != nil {
				return nil, fmt.Errorf("Solve: %w", err)
			}
		}

		return s.result, nil
	}

	// Stage 3
	start := time.Now()
	workers := make([]*worker, p.Workers)
	err = mc.RunWorkers(ctx, p.Workers, func(ctx context.Context, w int) error {
		wk, err := s.runWorker(ctx, model, sp, p, o, log, w)
		if err != nil {
			return fmt.Errorf("worker %d: %w", w, err)
		}
		workers[w] = wk

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}

	// Stage 4
	res, err := reduce(workers, s.structure, model.TauMesh(), p)
	if err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	res.RunID = runID
	log.WithFields(logrus.Fields{
		"workers":      p.Workers,
		"average_sign": res.AverageSign,
		"duration":     time.Since(start),
	}).Info("solve finished")
	s.result = res

	return res, nil
}

// atomicHistograms returns histograms holding every measurement at order 0,
// the only order reachable without hybridization.
func atomicHistograms(model *hyb.Model, sp *space.Space, p Params) ([]*qmc.OrderHistogram, error) {
	cfg, err := qmc.NewConfiguration(model, sp)
	if err != nil {
		return nil, err
	}
	out := make([]*qmc.OrderHistogram, cfg.NumBlocks())
	for b := range out {
		out[b] = qmc.NewOrderHistogram(cfg, b)
		for n := 0; n < p.Workers*p.NCycles; n++ {
			out[b].Record(1)
		}
	}

	return out, nil
}

// runWorker builds and runs one chain.
func (s *Solver) runWorker(ctx context.Context, model *hyb.Model, sp *space.Space, p Params, o SolveOptions,
	log logrus.FieldLogger, w int) (*worker, error) {
	var qopts []qmc.Option
	if p.UseTraceEstimator {
		qopts = append(qopts, qmc.WithTraceEstimator(o.MinTraceProbability))
	}
	cfg, err := qmc.NewConfiguration(model, sp, qopts...)
	if err != nil {
		return nil, err
	}
	dopts := []mc.Option{
		mc.WithLengthCycle(p.LengthCycle),
		mc.WithWarmupCycles(p.NWarmupCycles),
		mc.WithMaxTime(p.budget()),
		mc.WithWorker(w),
		mc.WithLogger(log),
		mc.WithMetrics(o.Metrics),
	}
	if p.RefreshEvery > 0 {
		dopts = append(dopts, mc.WithRefresh(p.RefreshEvery, cfg.Refresh))
	}
	rng, err := mc.NewRandFrom(p.RandomName, mc.WorkerSeed(p.RandomSeed, w))
	if err != nil {
		return nil, err
	}
	d := mc.New(rng, dopts...)

	wk := &worker{}
	for b := 0; b < cfg.NumBlocks(); b++ {
		ins, rem := qmc.NewInsertMove(cfg, b), qmc.NewRemoveMove(cfg, b)
		d.AddMove(ins.Name(), ins, 1)
		d.AddMove(rem.Name(), rem, 1)
		if p.MakeHistograms {
			wk.props = append(wk.props, ins.EnableHistogram(), rem.EnableHistogram())
		}
		if p.MeasureGTau {
			g := qmc.NewGreenAccumulator(cfg, b, model.TauMesh())
			d.AddMeasure(g.Name(), g)
			wk.greens = append(wk.greens, g)
		}
		if p.MeasurePertOrder {
			h := qmc.NewOrderHistogram(cfg, b)
			d.AddMeasure(h.Name(), h)
			wk.hists = append(wk.hists, h)
		}
	}
	if wk.stats, err = d.Run(ctx, p.NCycles); err != nil {
		return nil, err
	}

	return wk, nil
}
