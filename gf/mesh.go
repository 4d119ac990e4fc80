package gf

import (
	"fmt"
	"math"
)

// TauMesh is the uniform imaginary-time mesh on [0, β] with half-width end bins.
type TauMesh struct {
	Beta float64
	N    int
}

// NewTauMesh validates β > 0 and N ≥ 2.
func NewTauMesh(beta float64, n int) (TauMesh, error) {
	if !(beta > 0) || math.IsInf(beta, 0) || n < 2 {
		return TauMesh{}, fmt.Errorf("NewTauMesh(beta=%g, n=%d): %w", beta, n, ErrBadMesh)
	}

	return TauMesh{Beta: beta, N: n}, nil
}

// Delta returns the point spacing β/(N−1).
func (m TauMesh) Delta() float64 { return m.Beta / float64(m.N-1) }

// Point returns τ_k.
func (m TauMesh) Point(k int) float64 { return float64(k) * m.Delta() }

// Index maps τ ∈ [0, β] to the nearest mesh point. Out-of-range input is clamped.
func (m TauMesh) Index(tau float64) int {
	k := int(math.Floor(tau/m.Delta() + 0.5))
	if k < 0 {
		return 0
	}
	if k > m.N-1 {
		return m.N - 1
	}

	return k
}

// BinWidth returns the width of the bin owned by point k.
func (m TauMesh) BinWidth(k int) float64 {
	if k == 0 || k == m.N-1 {
		return 0.5 * m.Delta()
	}

	return m.Delta()
}

// FreqMesh holds the non-negative fermionic Matsubara frequencies.
type FreqMesh struct {
	Beta float64
	N    int
}

// NewFreqMesh validates β > 0 and N ≥ 1.
func NewFreqMesh(beta float64, n int) (FreqMesh, error) {
	if !(beta > 0) || math.IsInf(beta, 0) || n < 1 {
		return FreqMesh{}, fmt.Errorf("NewFreqMesh(beta=%g, n=%d): %w", beta, n, ErrBadMesh)
	}

	return FreqMesh{Beta: beta, N: n}, nil
}

// Point returns ω_n = (2n+1)π/β.
func (m FreqMesh) Point(n int) float64 { return float64(2*n+1) * math.Pi / m.Beta }

// IW returns iω_n as a complex number.
func (m FreqMesh) IW(n int) complex128 { return complex(0, m.Point(n)) }
