package hyb

import (
	"fmt"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/matrix"
)

// Bath describes a discrete bath coupled to one block.
type Bath struct {
	// Levels are the bath energies e_p.
	Levels []float64
	// Couplings[p] is the d-vector V_p coupling level p to the block orbitals.
	Couplings [][]float64
}

// WeissFieldFromBath builds G0 per block from local levels eps[b] (d×d flat)
// and a discrete bath:
//
//	G0⁻¹(iω) = iω − ε − Σ_p V_p V_pᵀ / (iω − e_p)
//
// The exact tail of G0 up to order 6 is attached, from the series
// G0⁻¹ = x⁻¹ − ε − Σ_k x^k Σ_p e_p^{k−1} V_p V_pᵀ with x = 1/(iω).
//
// Errors: ErrShapeMismatch for inconsistent dimensions; matrix.ErrSingular.
func WeissFieldFromBath(s gf.Structure, mesh gf.FreqMesh, eps [][]float64, baths []Bath) (*gf.FreqBlockGF, error) {
	if len(eps) != s.Len() || len(baths) != s.Len() {
		return nil, fmt.Errorf("WeissFieldFromBath: %w", ErrShapeMismatch)
	}
	g0 := gf.NewFreqBlockGF(s, mesh)
	var (
		b, n, p, i, j, k int
		err              error
	)
	for b = 0; b < s.Len(); b++ {
		d := s.Size(b)
		bath := baths[b]
		if len(eps[b]) != d*d || len(bath.Levels) != len(bath.Couplings) {
			return nil, fmt.Errorf("WeissFieldFromBath block %d: %w", b, ErrShapeMismatch)
		}
		for p = range bath.Couplings {
			if len(bath.Couplings[p]) != d {
				return nil, fmt.Errorf("WeissFieldFromBath block %d level %d: %w", b, p, ErrShapeMismatch)
			}
		}

		inv := make([]complex128, d*d)
		for n = 0; n < mesh.N; n++ {
			iw := mesh.IW(n)
			for i = 0; i < d; i++ {
				for j = 0; j < d; j++ {
					v := complex(-eps[b][i*d+j], 0)
					if i == j {
						v += iw
					}
					for p = range bath.Levels {
						v -= complex(bath.Couplings[p][i]*bath.Couplings[p][j], 0) / (iw - complex(bath.Levels[p], 0))
					}
					inv[i*d+j] = v
				}
			}
			g, err := matrix.InverseComplex(inv, d)
			if err != nil {
				return nil, fmt.Errorf("WeissFieldFromBath block %d n=%d: %w", b, n, err)
			}
			_ = g0.SetMatrix(b, n, g)
		}

		// exact tail of G0⁻¹ (orders −1..4), inverted to G0 (orders 1..6)
		invTail := gf.NewTail(-1, 4, d)
		id := make([]float64, d*d)
		for i = 0; i < d; i++ {
			id[i*d+i] = 1
		}
		_ = invTail.SetMoment(-1, id)
		m0 := make([]float64, d*d)
		for i = range m0 {
			m0[i] = -eps[b][i]
		}
		_ = invTail.SetMoment(0, m0)
		for k = 1; k <= 4; k++ {
			mk := make([]float64, d*d)
			for p = range bath.Levels {
				w := 1.0
				for e := 1; e < k; e++ {
					w *= bath.Levels[p]
				}
				for i = 0; i < d; i++ {
					for j = 0; j < d; j++ {
						mk[i*d+j] -= w * bath.Couplings[p][i] * bath.Couplings[p][j]
					}
				}
			}
			_ = invTail.SetMoment(k, mk)
		}
		if g0.Tails[b], err = invTail.Inverse(); err != nil {
			return nil, fmt.Errorf("WeissFieldFromBath block %d tail: %w", b, err)
		}
	}

	return g0, nil
}

// FlatDelta returns Δ_b(τ) = value·𝟙 on every block, the constant
// hybridization of a single bath level at zero energy with V² = −2·value.
func FlatDelta(s gf.Structure, mesh gf.TauMesh, value float64) *gf.TimeBlockGF {
	g := gf.NewTimeBlockGF(s, mesh)
	for b := 0; b < s.Len(); b++ {
		d := s.Size(b)
		for k := 0; k < mesh.N; k++ {
			for i := 0; i < d; i++ {
				g.SetValue(b, k, i, i, value)
			}
		}
	}

	return g
}
