package qmc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/cthyb/gf"
)

// GreenAccumulator measures G_b(τ) on a τ mesh by binning the inverse
// hybridization matrix:
//
//	G_{a'_j a_i}(τ) += −sign · M_ji · f / (β h_k),  Δτ = τ_j − τ_i^†,
//
// with Δτ folded into [0, β) (f = −1 when folded) and h_k the width of bin k.
// The configuration is only read.
type GreenAccumulator struct {
	cfg   *Configuration
	block int
	mesh  gf.TauMesh
	dim   int

	bins    []float64 // N × dim × dim, signed sums
	signSum float64
	count   int64
}

// NewGreenAccumulator returns an empty accumulator of block b on mesh.
func NewGreenAccumulator(cfg *Configuration, b int, mesh gf.TauMesh) *GreenAccumulator {
	d := cfg.blocks[b].size

	return &GreenAccumulator{
		cfg:   cfg,
		block: b,
		mesh:  mesh,
		dim:   d,
		bins:  make([]float64, mesh.N*d*d),
	}
}

// Name identifies the measurement.
func (g *GreenAccumulator) Name() string {
	return "g_tau_" + g.cfg.model.Structure.Block(g.block).Name
}

// Record adds the current configuration with weight sign.
// Complexity: O(k_b²).
func (g *GreenAccumulator) Record(sign float64) {
	g.signSum += sign
	g.count++
	blk := g.cfg.blocks[g.block]
	k := blk.order()
	beta := g.cfg.beta
	var (
		i, j, bin int
		dt, f     float64
	)
	for j = 0; j < k; j++ {
		for i = 0; i < k; i++ {
			dt, f = blk.colTau[j]-blk.rowTau[i], 1
			if dt < 0 {
				dt, f = dt+beta, -1
			}
			bin = g.mesh.Index(dt)
			g.bins[(bin*g.dim+blk.colInner[j])*g.dim+blk.rowInner[i]] +=
				-sign * blk.m[j*k+i] * f / (beta * g.mesh.BinWidth(bin))
		}
	}
}

// Block returns the block index.
func (g *GreenAccumulator) Block() int { return g.block }

// Count returns the number of Record calls.
func (g *GreenAccumulator) Count() int64 { return g.count }

// SignSum returns Σ sign over recorded configurations.
func (g *GreenAccumulator) SignSum() float64 { return g.signSum }

// Merge adds the sums of o.
// Errors: ErrBlockMismatch when mesh or block dimension differ.
func (g *GreenAccumulator) Merge(o *GreenAccumulator) error {
	if o.mesh != g.mesh || o.dim != g.dim {
		return fmt.Errorf("GreenAccumulator.Merge: %w", ErrBlockMismatch)
	}
	floats.Add(g.bins, o.bins)
	g.signSum += o.signSum
	g.count += o.count

	return nil
}

// Normalized returns the bins divided by the total sign, N × dim × dim
// row-major; zeros when nothing was recorded.
func (g *GreenAccumulator) Normalized() []float64 {
	out := append([]float64(nil), g.bins...)
	if g.signSum != 0 {
		floats.Scale(1/g.signSum, out)
	}

	return out
}

// At returns the normalized G(τ)[i][j] at the bin of τ ∈ (−β, β),
// using G(τ−β) = −G(τ).
func (g *GreenAccumulator) At(tau float64, i, j int) float64 {
	if g.signSum == 0 {
		return 0
	}
	s := 1.0
	if tau < 0 {
		tau, s = tau+g.mesh.Beta, -1
	}
	bin := g.mesh.Index(tau)

	return s * g.bins[(bin*g.dim+i)*g.dim+j] / g.signSum
}

// Fill writes the normalized result into block b of dst.
// Errors: ErrBlockMismatch when dst has a different mesh or block size.
func (g *GreenAccumulator) Fill(dst *gf.TimeBlockGF, b int) error {
	if dst.Mesh != g.mesh || dst.Structure.Size(b) != g.dim {
		return fmt.Errorf("GreenAccumulator.Fill: %w", ErrBlockMismatch)
	}
	copy(dst.Data(b), g.Normalized())

	return nil
}
