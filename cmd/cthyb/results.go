package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/cthyb/config"
	"github.com/katalvlaran/cthyb/solver"
)

type seriesFile struct {
	I      int       `yaml:"i"`
	J      int       `yaml:"j"`
	Values []float64 `yaml:"values,flow"`
	Errors []float64 `yaml:"errors,flow,omitempty"`
}

type proposalFile struct {
	Move       string    `yaml:"move"`
	Total      int64     `yaml:"total"`
	Vanished   int64     `yaml:"vanished"`
	Proposed   []int64   `yaml:"length_proposed,flow"`
	Acceptance []float64 `yaml:"length_acceptance,flow"`
	TraceRatio []int64   `yaml:"log10_trace_ratio,flow"`
}

type blockFile struct {
	Name      string         `yaml:"name"`
	GTau      []seriesFile   `yaml:"g_tau,omitempty"`
	Histogram []int64        `yaml:"pert_order,flow,omitempty"`
	AvgOrder  float64        `yaml:"average_order,omitempty"`
	Proposals []proposalFile `yaml:"proposals,omitempty"`
}

type workerFile struct {
	Cycles       int                `yaml:"cycles"`
	AverageSign  float64            `yaml:"average_sign"`
	StoppedEarly bool               `yaml:"stopped_early"`
	Seconds      float64            `yaml:"seconds"`
	Acceptance   map[string]float64 `yaml:"acceptance"`
}

type resultFile struct {
	RunID       string       `yaml:"run_id"`
	Beta        float64      `yaml:"beta"`
	Atomic      bool         `yaml:"atomic"`
	AverageSign float64      `yaml:"average_sign"`
	Tau         []float64    `yaml:"tau,flow,omitempty"`
	Blocks      []blockFile  `yaml:"blocks"`
	Workers     []workerFile `yaml:"workers,omitempty"`
}

// buildResultFile flattens a solver result into the file layout.
func buildResultFile(c *config.Config, res *solver.Result) resultFile {
	out := resultFile{RunID: res.RunID, Beta: c.Beta, Atomic: res.Atomic, AverageSign: res.AverageSign}
	if res.GTau != nil {
		mesh := res.GTau.Mesh
		out.Tau = make([]float64, mesh.N)
		for k := range out.Tau {
			out.Tau[k] = mesh.Point(k)
		}
	}
	for b, blk := range c.Blocks {
		bf := blockFile{Name: blk.Name}
		if res.GTau != nil {
			d := len(blk.Indices)
			for i := 0; i < d; i++ {
				for j := 0; j < d; j++ {
					sf := seriesFile{I: blk.Indices[i], J: blk.Indices[j], Values: make([]float64, res.GTau.Mesh.N)}
					if res.GTauError != nil {
						sf.Errors = make([]float64, res.GTau.Mesh.N)
					}
					for k := range sf.Values {
						sf.Values[k] = res.GTau.Value(b, k, i, j)
						if sf.Errors != nil {
							sf.Errors[k] = res.GTauError.Value(b, k, i, j)
						}
					}
					bf.GTau = append(bf.GTau, sf)
				}
			}
		}
		if res.Histograms != nil {
			h := res.Histograms[b]
			bf.Histogram = h.Counts()
			for k, p := range h.Normalized() {
				bf.AvgOrder += float64(k) * p
			}
		}
		for _, h := range res.Proposals {
			if h.Block() != b {
				continue
			}
			bf.Proposals = append(bf.Proposals, proposalFile{
				Move:       h.Name(),
				Total:      h.Total(),
				Vanished:   h.Vanished(),
				Proposed:   h.Proposed(),
				Acceptance: h.AcceptanceByLength(),
				TraceRatio: h.TraceRatio(),
			})
		}
		out.Blocks = append(out.Blocks, bf)
	}
	for _, st := range res.Stats {
		wf := workerFile{
			Cycles:       st.Cycles,
			AverageSign:  st.AverageSign,
			StoppedEarly: st.StoppedEarly,
			Seconds:      st.Duration.Seconds(),
			Acceptance:   make(map[string]float64, len(st.Moves)),
		}
		for _, m := range st.Moves {
			wf.Acceptance[m.Name] = m.AcceptanceRate()
		}
		out.Workers = append(out.Workers, wf)
	}

	return out
}

// writeResults encodes the result file at path.
func writeResults(path string, c *config.Config, res *solver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err = enc.Encode(buildResultFile(c, res)); err != nil {
		_ = f.Close()
		return fmt.Errorf("results: %w", err)
	}
	if err = enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("results: %w", err)
	}

	return f.Close()
}
