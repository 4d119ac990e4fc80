package gf

import (
	"fmt"

	"github.com/katalvlaran/cthyb/matrix"
)

// Tail holds real matrix moments of a high-frequency expansion
//
//	G(iω) ≈ Σ_{k=MinOrder..MaxOrder} m_k / (iω)^k
//
// for one block of dimension Dim. Moments are flat row-major Dim×Dim slices.
type Tail struct {
	MinOrder int
	Dim      int
	moments  [][]float64
}

// NewTail allocates zero moments for orders minOrder..maxOrder.
func NewTail(minOrder, maxOrder, dim int) *Tail {
	t := &Tail{MinOrder: minOrder, Dim: dim, moments: make([][]float64, maxOrder-minOrder+1)}
	for k := range t.moments {
		t.moments[k] = make([]float64, dim*dim)
	}

	return t
}

// MaxOrder returns the highest stored order.
func (t *Tail) MaxOrder() int { return t.MinOrder + len(t.moments) - 1 }

// Moment returns m_k; orders outside the stored range read as zero.
// The returned slice must not be modified.
func (t *Tail) Moment(k int) []float64 {
	if k < t.MinOrder || k > t.MaxOrder() {
		return make([]float64, t.Dim*t.Dim)
	}

	return t.moments[k-t.MinOrder]
}

// SetMoment overwrites m_k. k must lie within [MinOrder, MaxOrder].
func (t *Tail) SetMoment(k int, m []float64) error {
	if k < t.MinOrder || k > t.MaxOrder() || len(m) != t.Dim*t.Dim {
		return fmt.Errorf("SetMoment(%d): %w", k, ErrShapeMismatch)
	}
	copy(t.moments[k-t.MinOrder], m)

	return nil
}

// Element returns m_k[i][j].
func (t *Tail) Element(k, i, j int) float64 { return t.Moment(k)[i*t.Dim+j] }

// Eval returns Σ_k m_k[i][j] / (iω)^k for the orders in [from, to].
func (t *Tail) Eval(omega float64, i, j, from, to int) complex128 {
	iw := complex(0, omega)
	var s complex128
	for k := from; k <= to; k++ {
		s += complex(t.Element(k, i, j), 0) * ipow(iw, -k)
	}

	return s
}

// ipow returns z^p for integer p.
func ipow(z complex128, p int) complex128 {
	if p < 0 {
		z, p = 1/z, -p
	}
	r := complex(1, 0)
	for ; p > 0; p-- {
		r *= z
	}

	return r
}

// Inverse returns the tail of G⁻¹ by formal series inversion.
//
// Implementation:
//   - Write G = x^m Σ_k a_k x^k with x = 1/(iω), m = MinOrder.
//   - Then G⁻¹ = x^{-m} Σ_k b_k x^k with b_0 = a_0⁻¹ and
//     b_n = −a_0⁻¹ Σ_{j=1..n} a_j b_{n−j}.
//
// The result keeps the number of stored orders: −MinOrder .. −MinOrder+len−1.
//
// Errors: matrix.ErrSingular when the leading moment is not invertible.
func (t *Tail) Inverse() (*Tail, error) {
	k := len(t.moments)
	out := NewTail(-t.MinOrder, -t.MinOrder+k-1, t.Dim)
	a := make([]*matrix.Dense, k)
	var err error
	for i := range a {
		if a[i], err = toDense(t.moments[i], t.Dim); err != nil {
			return nil, err
		}
	}
	a0inv, err := matrix.Inverse(a[0])
	if err != nil {
		return nil, fmt.Errorf("Tail.Inverse: %w", err)
	}
	b := make([]*matrix.Dense, k)
	b[0] = a0inv
	var (
		n, j int
		acc  *matrix.Dense
		prod *matrix.Dense
	)
	for n = 1; n < k; n++ {
		if acc, err = matrix.NewDense(t.Dim, t.Dim); err != nil {
			return nil, err
		}
		for j = 1; j <= n; j++ {
			if prod, err = matrix.Mul(a[j], b[n-j]); err != nil {
				return nil, err
			}
			for i, v := range prod.Data() {
				acc.Data()[i] += v
			}
		}
		if prod, err = matrix.Mul(a0inv, acc); err != nil {
			return nil, err
		}
		if b[n], err = matrix.Scale(prod, -1); err != nil {
			return nil, err
		}
	}
	for n = 0; n < k; n++ {
		copy(out.moments[n], b[n].Data())
	}

	return out, nil
}

func toDense(flat []float64, dim int) (*matrix.Dense, error) {
	m, err := matrix.NewDense(dim, dim)
	if err != nil {
		return nil, err
	}
	copy(m.Data(), flat)

	return m, nil
}

// FitTail fits moments 1..maxOrder of block b to the last nFit Matsubara points.
//
// Implementation:
//   - 1/(iω)^k = (−i)^k / ω^k, so odd orders live in the imaginary part and
//     even orders in the real part; each part is an independent linear
//     least-squares problem per element (matrix.LeastSquares) in the scaled
//     variable u = ω_first/ω.
//
// Errors: ErrShapeMismatch when nFit is smaller than the number of unknowns
// in either part or larger than the mesh.
func FitTail(g *FreqBlockGF, b, maxOrder, nFit int) (*Tail, error) {
	nOdd, nEven := (maxOrder+1)/2, maxOrder/2
	if nFit > g.Mesh.N || nFit < nOdd || nFit < nEven || maxOrder < 1 {
		return nil, fmt.Errorf("FitTail(order=%d, nFit=%d): %w", maxOrder, nFit, ErrShapeMismatch)
	}
	d := g.Structure.Size(b)
	tail := NewTail(1, maxOrder, d)
	first := g.Mesh.N - nFit
	// Columns are expressed in u = wRef/ω ∈ (0, 1] to keep the normal equations well conditioned.
	wRef := g.Mesh.Point(first)

	design := func(parity int) (*matrix.Dense, []int, error) {
		var orders []int
		for k := 1; k <= maxOrder; k++ {
			if k%2 == parity {
				orders = append(orders, k)
			}
		}
		a, err := matrix.NewDense(nFit, len(orders))
		if err != nil {
			return nil, nil, err
		}
		for r := 0; r < nFit; r++ {
			u := wRef / g.Mesh.Point(first+r)
			for c, k := range orders {
				// coefficient of m_k/wRef^k in the Im (odd) or Re (even) part
				v := ipow(complex(0, -1), k)
				if parity == 1 {
					_ = a.Set(r, c, imag(v)*powf(u, k))
				} else {
					_ = a.Set(r, c, real(v)*powf(u, k))
				}
			}
		}

		return a, orders, nil
	}

	var (
		i, j, r int
		rhs     = make([]float64, nFit)
	)
	for parity := 0; parity <= 1; parity++ {
		a, orders, err := design(parity)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			continue
		}
		for i = 0; i < d; i++ {
			for j = 0; j < d; j++ {
				for r = 0; r < nFit; r++ {
					v := g.Value(b, first+r, i, j)
					if parity == 1 {
						rhs[r] = imag(v)
					} else {
						rhs[r] = real(v)
					}
				}
				coef, err := matrix.LeastSquares(a, rhs)
				if err != nil {
					return nil, fmt.Errorf("FitTail: %w", err)
				}
				for c, k := range orders {
					tail.moments[k-1][i*d+j] = coef[c] * powf(wRef, k)
				}
			}
		}
	}

	return tail, nil
}

func powf(x float64, k int) float64 {
	r := 1.0
	for ; k > 0; k-- {
		r *= x
	}

	return r
}
