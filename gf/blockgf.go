package gf

import "fmt"

// TimeBlockGF is a block-diagonal real matrix-valued function on a TauMesh.
type TimeBlockGF struct {
	Mesh      TauMesh
	Structure Structure
	data      [][]float64 // [b][k*n*n + i*n + j]
}

// NewTimeBlockGF allocates a zero function.
func NewTimeBlockGF(s Structure, m TauMesh) *TimeBlockGF {
	g := &TimeBlockGF{Mesh: m, Structure: s, data: make([][]float64, s.Len())}
	for b := 0; b < s.Len(); b++ {
		n := s.Size(b)
		g.data[b] = make([]float64, m.N*n*n)
	}

	return g
}

// Value returns G_b(τ_k)[i][j].
func (g *TimeBlockGF) Value(b, k, i, j int) float64 {
	n := g.Structure.Size(b)
	return g.data[b][k*n*n+i*n+j]
}

// SetValue stores G_b(τ_k)[i][j] = v.
func (g *TimeBlockGF) SetValue(b, k, i, j int, v float64) {
	n := g.Structure.Size(b)
	g.data[b][k*n*n+i*n+j] = v
}

// Data exposes the flat storage of block b.
func (g *TimeBlockGF) Data(b int) []float64 { return g.data[b] }

// At evaluates G_b(τ)[i][j] for τ ∈ (−β, β] by linear interpolation between
// mesh points, using G(τ) = −G(τ+β) for negative arguments.
func (g *TimeBlockGF) At(b int, tau float64, i, j int) float64 {
	sign := 1.0
	if tau < 0 {
		tau += g.Mesh.Beta
		sign = -1
	}
	if tau >= g.Mesh.Beta {
		return sign * g.Value(b, g.Mesh.N-1, i, j)
	}
	x := tau / g.Mesh.Delta()
	k := int(x)
	if k >= g.Mesh.N-1 {
		k = g.Mesh.N - 2
	}
	w := x - float64(k)

	return sign * ((1-w)*g.Value(b, k, i, j) + w*g.Value(b, k+1, i, j))
}

// Clone returns a deep copy.
func (g *TimeBlockGF) Clone() *TimeBlockGF {
	out := &TimeBlockGF{Mesh: g.Mesh, Structure: g.Structure, data: make([][]float64, len(g.data))}
	for b := range g.data {
		out.data[b] = append([]float64(nil), g.data[b]...)
	}

	return out
}

// FreqBlockGF is a block-diagonal complex matrix-valued function on a FreqMesh,
// optionally carrying a known high-frequency tail per block.
type FreqBlockGF struct {
	Mesh      FreqMesh
	Structure Structure
	Tails     []*Tail // nil entries mean "unknown, fit when needed"
	data      [][]complex128
}

// NewFreqBlockGF allocates a zero function without tails.
func NewFreqBlockGF(s Structure, m FreqMesh) *FreqBlockGF {
	g := &FreqBlockGF{Mesh: m, Structure: s, Tails: make([]*Tail, s.Len()), data: make([][]complex128, s.Len())}
	for b := 0; b < s.Len(); b++ {
		n := s.Size(b)
		g.data[b] = make([]complex128, m.N*n*n)
	}

	return g
}

// Value returns G_b(iω_n)[i][j].
func (g *FreqBlockGF) Value(b, n, i, j int) complex128 {
	d := g.Structure.Size(b)
	return g.data[b][n*d*d+i*d+j]
}

// SetValue stores G_b(iω_n)[i][j] = v.
func (g *FreqBlockGF) SetValue(b, n, i, j int, v complex128) {
	d := g.Structure.Size(b)
	g.data[b][n*d*d+i*d+j] = v
}

// Matrix returns a copy of the d×d matrix at frequency n of block b.
func (g *FreqBlockGF) Matrix(b, n int) []complex128 {
	d := g.Structure.Size(b)
	return append([]complex128(nil), g.data[b][n*d*d:(n+1)*d*d]...)
}

// SetMatrix overwrites the d×d matrix at frequency n of block b.
func (g *FreqBlockGF) SetMatrix(b, n int, m []complex128) error {
	d := g.Structure.Size(b)
	if len(m) != d*d {
		return fmt.Errorf("SetMatrix(block %d): %w", b, ErrShapeMismatch)
	}
	copy(g.data[b][n*d*d:(n+1)*d*d], m)

	return nil
}
