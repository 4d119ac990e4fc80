package hyb

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/matrix"
	"github.com/katalvlaran/cthyb/operators"
)

// exactTailOrder is the minimal G0 tail order that pins Δ's first three moments.
const exactTailOrder = 5

// Model is the immutable hybridization setup shared by every worker.
type Model struct {
	Beta      float64
	Structure gf.Structure

	// DeltaTau is Δ_b(τ) on [0, β]; Delta extends it antiperiodically.
	DeltaTau *gf.TimeBlockGF
	// DeltaIw is Δ_b(iω); nil when built from Δ(τ) directly.
	DeltaIw *gf.FreqBlockGF
	// G0Iw is the Weiss field rebuilt as (iω + s₀ − Δ)⁻¹; nil when built from Δ(τ).
	G0Iw *gf.FreqBlockGF
	// HLoc is the local Hamiltonian including the quadratic correction.
	HLoc operators.Expression
	// Epsilon[b] is the d×d quadratic correction folded into HLoc.
	Epsilon [][]float64
}

// CheckMesh enforces n_tau ≥ 2·n_iw.
func CheckMesh(nIw, nTau int) error {
	if nTau < 2*nIw {
		return fmt.Errorf("n_iw = %d but n_tau = %d: %w", nIw, nTau, ErrInsufficientTauPoints)
	}

	return nil
}

// New builds the model from the Weiss field g0 and the bare local Hamiltonian.
//
// Implementation:
//   - Stage 1: CheckMesh; per block obtain the G0 tail (attached or fitted)
//     and invert it to get s₋₁, s₀ and the moments of Δ.
//   - Stage 2: fold ε = m₂(G0) into h_loc.
//   - Stage 3: Δ(iω) = iω·s₋₁ + s₀ − G0⁻¹(iω) per frequency (matrix.InverseComplex).
//   - Stage 4: Δ(τ) by inverse Fourier with the Δ tail.
//
// Errors: ErrInsufficientTauPoints, gf/matrix errors from fitting and inversion.
func New(g0 *gf.FreqBlockGF, hLoc operators.Expression, nTau int) (*Model, error) {
	if err := CheckMesh(g0.Mesh.N, nTau); err != nil {
		return nil, err
	}
	tauMesh, err := gf.NewTauMesh(g0.Mesh.Beta, nTau)
	if err != nil {
		return nil, fmt.Errorf("hyb.New: %w", err)
	}
	s := g0.Structure
	m := &Model{
		Beta:      g0.Mesh.Beta,
		Structure: s,
		DeltaIw:   gf.NewFreqBlockGF(s, g0.Mesh),
		G0Iw:      gf.NewFreqBlockGF(s, g0.Mesh),
		HLoc:      hLoc,
		Epsilon:   make([][]float64, s.Len()),
	}
	deltaTails := make([]*gf.Tail, s.Len())

	var (
		b, n, i, j int
		d          int
		tail, inv  *gf.Tail
		g0inv, dm  []complex128
	)
	for b = 0; b < s.Len(); b++ {
		d = s.Size(b)
		blk := s.Block(b)

		// Stage 1
		if tail = g0.Tails[b]; tail == nil {
			if tail, err = gf.FitTail(g0, b, 4, fitWindow(g0.Mesh.N)); err != nil {
				return nil, fmt.Errorf("hyb.New block %q: %w", blk.Name, err)
			}
		}
		if tail.Dim != d {
			return nil, fmt.Errorf("hyb.New block %q tail: %w", blk.Name, ErrShapeMismatch)
		}
		if inv, err = tail.Inverse(); err != nil {
			return nil, fmt.Errorf("hyb.New block %q: %w", blk.Name, err)
		}
		sm1, s0 := inv.Moment(-1), inv.Moment(0)

		// Stage 2
		eps := append([]float64(nil), tail.Moment(2)...)
		m.Epsilon[b] = eps
		for i = 0; i < d; i++ {
			for j = 0; j < d; j++ {
				if eps[i*d+j] != 0 {
					m.HLoc = m.HLoc.Add(operators.CDag(blk.Name, blk.Indices[i]).Mul(operators.C(blk.Name, blk.Indices[j])).Scale(eps[i*d+j]))
				}
			}
		}

		// Stage 3
		dm = make([]complex128, d*d)
		for n = 0; n < g0.Mesh.N; n++ {
			if g0inv, err = matrix.InverseComplex(g0.Matrix(b, n), d); err != nil {
				return nil, fmt.Errorf("hyb.New block %q at n=%d: %w", blk.Name, n, err)
			}
			iw := g0.Mesh.IW(n)
			for i = 0; i < d*d; i++ {
				dm[i] = iw*complex(sm1[i], 0) + complex(s0[i], 0) - g0inv[i]
			}
			_ = m.DeltaIw.SetMatrix(b, n, dm)
			// G0 = (iω + s₀ − Δ)⁻¹
			for i = 0; i < d; i++ {
				for j = 0; j < d; j++ {
					v := complex(s0[i*d+j], 0) - dm[i*d+j]
					if i == j {
						v += iw
					}
					g0inv[i*d+j] = v
				}
			}
			if g0inv, err = matrix.InverseComplex(g0inv, d); err != nil {
				return nil, fmt.Errorf("hyb.New block %q at n=%d: %w", blk.Name, n, err)
			}
			_ = m.G0Iw.SetMatrix(b, n, g0inv)
		}
		m.G0Iw.Tails[b] = tail

		// Stage 4 tail of Δ
		if tail.MaxOrder() >= exactTailOrder {
			dt := gf.NewTail(1, 3, d)
			for k := 1; k <= 3; k++ {
				mk := inv.Moment(k)
				neg := make([]float64, len(mk))
				for i = range mk {
					neg[i] = -mk[i]
				}
				_ = dt.SetMoment(k, neg)
			}
			deltaTails[b] = dt
		} else if deltaTails[b], err = gf.FitTail(m.DeltaIw, b, 3, fitWindow(g0.Mesh.N)); err != nil {
			return nil, fmt.Errorf("hyb.New block %q: %w", blk.Name, err)
		}
		m.DeltaIw.Tails[b] = deltaTails[b]
	}

	if m.DeltaTau, err = gf.InverseFourier(m.DeltaIw, deltaTails, tauMesh); err != nil {
		return nil, fmt.Errorf("hyb.New: %w", err)
	}

	return m, nil
}

// fitWindow picks the last quarter of the mesh, at least 4 points.
func fitWindow(n int) int {
	w := n / 4
	if w < 4 {
		w = 4
	}
	if w > n {
		w = n
	}

	return w
}

// FromDeltaTau wraps a directly supplied Δ(τ) and an already corrected h_loc.
func FromDeltaTau(delta *gf.TimeBlockGF, hLoc operators.Expression) (*Model, error) {
	if delta == nil {
		return nil, fmt.Errorf("FromDeltaTau: nil delta: %w", ErrShapeMismatch)
	}
	if !(delta.Mesh.Beta > 0) || math.IsInf(delta.Mesh.Beta, 0) {
		return nil, ErrBadBeta
	}
	eps := make([][]float64, delta.Structure.Len())
	for b := range eps {
		d := delta.Structure.Size(b)
		eps[b] = make([]float64, d*d)
	}

	return &Model{
		Beta:      delta.Mesh.Beta,
		Structure: delta.Structure,
		DeltaTau:  delta,
		HLoc:      hLoc,
		Epsilon:   eps,
	}, nil
}

// Delta returns Δ_b(τ)[i][j] for τ ∈ (−β, β), using Δ(τ−β) = −Δ(τ).
func (m *Model) Delta(b int, tau float64, i, j int) float64 {
	return m.DeltaTau.At(b, tau, i, j)
}

// TauMesh returns the mesh of Δ(τ).
func (m *Model) TauMesh() gf.TauMesh { return m.DeltaTau.Mesh }

// IsZero reports whether |Δ(τ)| ≤ tol on every mesh point of every block.
func (m *Model) IsZero(tol float64) bool {
	for b := 0; b < m.Structure.Len(); b++ {
		for _, v := range m.DeltaTau.Data(b) {
			if math.Abs(v) > tol {
				return false
			}
		}
	}

	return true
}
