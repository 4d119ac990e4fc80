package solver

import (
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/mc"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/qmc"
)

// Result is the reduced output of one Solve.
type Result struct {
	// RunID identifies the run in logs and result files.
	RunID string

	// GTau is G_b(τ) normalized by the total sign; nil when not measured.
	GTau *gf.TimeBlockGF
	// GTauError is the per-bin standard error of the worker means; nil for a
	// single worker.
	GTauError *gf.TimeBlockGF

	// Histograms are the merged expansion-order histograms per block; nil
	// when not measured.
	Histograms []*qmc.OrderHistogram
	// Proposals are the merged move diagnostics, insert then remove per
	// block; nil unless Params.MakeHistograms.
	Proposals []*qmc.ProposalHistogram

	// Stats are the driver statistics per worker.
	Stats []mc.Stats
	// AverageSign is the measurement-weighted mean sign over all workers.
	AverageSign float64
	// Atomic reports that Δ vanished and GTau is the atomic Green's function.
	Atomic bool
}

// reduce merges the worker accumulators into worker 0's.
func reduce(workers []*worker, s gf.Structure, mesh gf.TauMesh, p Params) (*Result, error) {
	res := &Result{Stats: make([]mc.Stats, len(workers))}
	signSum, nMeas := 0.0, int64(0)
	for w, wk := range workers {
		res.Stats[w] = wk.stats
		signSum += wk.stats.AverageSign * float64(wk.stats.Measurements)
		nMeas += wk.stats.Measurements
	}
	if nMeas > 0 {
		res.AverageSign = signSum / float64(nMeas)
	}

	if p.MeasureGTau {
		res.GTau = gf.NewTimeBlockGF(s, mesh)
		if len(workers) > 1 {
			res.GTauError = gf.NewTimeBlockGF(s, mesh)
		}
		for b := 0; b < s.Len(); b++ {
			if res.GTauError != nil {
				standardError(workers, b, res.GTauError.Data(b))
			}
			total := workers[0].greens[b]
			for _, wk := range workers[1:] {
				if err := total.Merge(wk.greens[b]); err != nil {
					return nil, err
				}
			}
			if err := total.Fill(res.GTau, b); err != nil {
				return nil, err
			}
		}
	}

	if p.MeasurePertOrder {
		res.Histograms = make([]*qmc.OrderHistogram, s.Len())
		for b := range res.Histograms {
			total := workers[0].hists[b]
			for _, wk := range workers[1:] {
				total.Merge(wk.hists[b])
			}
			res.Histograms[b] = total
		}
	}

	if p.MakeHistograms {
		res.Proposals = workers[0].props
		for _, wk := range workers[1:] {
			for i, h := range wk.props {
				if err := res.Proposals[i].Merge(h); err != nil {
					return nil, err
				}
			}
		}
	}

	return res, nil
}

// standardError writes the standard error of the per-worker normalized bins
// of block b into dst.
func standardError(workers []*worker, b int, dst []float64) {
	per := make([][]float64, len(workers))
	for w, wk := range workers {
		per[w] = wk.greens[b].Normalized()
	}
	x := make([]float64, len(workers))
	n := float64(len(workers))
	for k := range dst {
		for w := range per {
			x[w] = per[w][k]
		}
		_, std := stat.MeanStdDev(x, nil)
		dst[k] = stat.StdErr(std, n)
	}
}

// GTau returns the measured or atomic G(τ) of the last Solve.
func (s *Solver) GTau() (*gf.TimeBlockGF, error) {
	if s.result == nil || s.result.GTau == nil {
		return nil, ErrNotSolved
	}

	return s.result.GTau, nil
}

// Histograms returns the expansion-order histograms of the last Solve.
func (s *Solver) Histograms() ([]*qmc.OrderHistogram, error) {
	if s.result == nil || s.result.Histograms == nil {
		return nil, ErrNotSolved
	}

	return s.result.Histograms, nil
}

// Proposals returns the move diagnostics of the last Solve.
func (s *Solver) Proposals() ([]*qmc.ProposalHistogram, error) {
	if s.result == nil || s.result.Proposals == nil {
		return nil, ErrNotSolved
	}

	return s.result.Proposals, nil
}

// DeltaTau returns Δ(τ) of the last Solve.
func (s *Solver) DeltaTau() (*gf.TimeBlockGF, error) {
	if s.model == nil {
		return nil, ErrNotSolved
	}

	return s.model.DeltaTau, nil
}

// G0Iw returns the Weiss field rebuilt from Δ as (iω + s₀ − Δ)⁻¹.
func (s *Solver) G0Iw() (*gf.FreqBlockGF, error) {
	if s.model == nil || s.model.G0Iw == nil {
		return nil, ErrNotSolved
	}

	return s.model.G0Iw, nil
}

// HLoc returns the local Hamiltonian including the quadratic correction.
func (s *Solver) HLoc() (operators.Expression, error) {
	if s.model == nil {
		return operators.Expression{}, ErrNotSolved
	}

	return s.model.HLoc, nil
}
