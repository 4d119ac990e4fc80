package space

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cthyb/gf"
	"github.com/katalvlaran/cthyb/operators"
)

// PartitionFunction returns Z = Σ e^{−β E} over shifted energies.
func (sp *Space) PartitionFunction(beta float64) float64 {
	z := 0.0
	for _, sub := range sp.subspaces {
		for _, e := range sub.Energies {
			z += math.Exp(-beta * e)
		}
	}

	return z
}

// AtomicGreenFunction returns G_ab(τ) = −⟨T c_a(τ) c†_b(0)⟩ of the local
// Hamiltonian alone, per block of s, on mesh:
//
//	G_ab(τ) = −(1/Z) Σ_{m∈A, n∈B} e^{−(β−τ)E_m} e^{−τ E_n} ⟨m|c_a|n⟩⟨n|c†_b|m⟩.
//
// Errors: ErrUnknownOperator when s names an orbital outside the space.
func (sp *Space) AtomicGreenFunction(s gf.Structure, mesh gf.TauMesh) (*gf.TimeBlockGF, error) {
	beta := mesh.Beta
	z := sp.PartitionFunction(beta)
	out := gf.NewTimeBlockGF(s, mesh)

	var (
		b, i, j, k, m, n int
		pa, pb           int
		err              error
	)
	for b = 0; b < s.Len(); b++ {
		blk := s.Block(b)
		pos := make([]int, blk.Size())
		for i = range pos {
			if pos[i], err = sp.fops.Position(operators.Index{Block: blk.Name, Inner: blk.Indices[i]}); err != nil {
				return nil, fmt.Errorf("AtomicGreenFunction: %w", ErrUnknownOperator)
			}
		}
		for i = 0; i < blk.Size(); i++ {
			for j = 0; j < blk.Size(); j++ {
				pa, pb = pos[i], pos[j]
				for a, subA := range sp.subspaces {
					bIdx := sp.Connection(pb, true, a)
					if bIdx < 0 || sp.Connection(pa, false, bIdx) != a {
						continue
					}
					subB := sp.subspaces[bIdx]
					cdag := sp.OperatorMatrix(pb, true, a).Data()  // dim B × dim A
					c := sp.OperatorMatrix(pa, false, bIdx).Data() // dim A × dim B
					dA, dB := subA.Dim(), subB.Dim()
					for k = 0; k < mesh.N; k++ {
						tau := mesh.Point(k)
						acc := 0.0
						for m = 0; m < dA; m++ {
							wm := math.Exp(-(beta - tau) * subA.Energies[m])
							for n = 0; n < dB; n++ {
								acc += wm * math.Exp(-tau*subB.Energies[n]) * c[m*dB+n] * cdag[n*dA+m]
							}
						}
						out.SetValue(b, k, i, j, out.Value(b, k, i, j)-acc/z)
					}
				}
			}
		}
	}

	return out, nil
}
