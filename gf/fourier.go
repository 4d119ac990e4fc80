package gf

import (
	"fmt"
	"math/cmplx"
)

// tailTransform returns the imaginary-time image of 1/(iω)^k for k = 1..3,
// valid on 0 < τ < β (one-sided limits at the ends).
func tailTransform(k int, tau, beta float64) float64 {
	switch k {
	case 1:
		return -0.5
	case 2:
		return (2*tau - beta) / 4
	case 3:
		return (beta*tau - tau*tau) / 4
	default:
		return 0
	}
}

// InverseFourier transforms g to imaginary time on mesh.
//
// Implementation:
//   - Stage 1: subtract the 1/(iω), 1/(iω)², 1/(iω)³ terms of tails[b]
//     (fitted from the last quarter of the mesh when tails[b] is nil).
//   - Stage 2: G(τ) = (2/β) Σ_{n≥0} Re[e^{−iω_n τ} (G − T)(iω_n)].
//   - Stage 3: add the analytic transform of the subtracted terms.
//
// Errors: ErrShapeMismatch when β differs between meshes or a tail has the
// wrong dimension.
// Complexity: O(blocks · d² · N_τ · N_ω).
func InverseFourier(g *FreqBlockGF, tails []*Tail, mesh TauMesh) (*TimeBlockGF, error) {
	if g.Mesh.Beta != mesh.Beta {
		return nil, fmt.Errorf("InverseFourier: beta %g vs %g: %w", g.Mesh.Beta, mesh.Beta, ErrShapeMismatch)
	}
	if tails != nil && len(tails) != g.Structure.Len() {
		return nil, fmt.Errorf("InverseFourier: %d tails for %d blocks: %w", len(tails), g.Structure.Len(), ErrShapeMismatch)
	}
	out := NewTimeBlockGF(g.Structure, mesh)
	beta := mesh.Beta

	var (
		b, i, j, n, k int
		tau, w, acc   float64
		t             *Tail
		err           error
		resid         = make([]complex128, g.Mesh.N)
	)
	for b = 0; b < g.Structure.Len(); b++ {
		d := g.Structure.Size(b)
		t = nil
		if tails != nil {
			t = tails[b]
		}
		if t == nil {
			t = g.Tails[b]
		}
		if t == nil {
			nFit := g.Mesh.N / 4
			if nFit < 2 {
				nFit = g.Mesh.N
			}
			if t, err = FitTail(g, b, 3, nFit); err != nil {
				return nil, fmt.Errorf("InverseFourier: %w", err)
			}
		}
		if t.Dim != d {
			return nil, fmt.Errorf("InverseFourier: tail dim %d for block %d: %w", t.Dim, b, ErrShapeMismatch)
		}
		for i = 0; i < d; i++ {
			for j = 0; j < d; j++ {
				for n = 0; n < g.Mesh.N; n++ {
					w = g.Mesh.Point(n)
					resid[n] = g.Value(b, n, i, j) - t.Eval(w, i, j, 1, 3)
				}
				for k = 0; k < mesh.N; k++ {
					tau = mesh.Point(k)
					acc = 0
					for n = 0; n < g.Mesh.N; n++ {
						acc += real(cmplx.Exp(complex(0, -g.Mesh.Point(n)*tau)) * resid[n])
					}
					acc *= 2 / beta
					acc += t.Element(1, i, j)*tailTransform(1, tau, beta) +
						t.Element(2, i, j)*tailTransform(2, tau, beta) +
						t.Element(3, i, j)*tailTransform(3, tau, beta)
					out.SetValue(b, k, i, j, acc)
				}
			}
		}
	}

	return out, nil
}
