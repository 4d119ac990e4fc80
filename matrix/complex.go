// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"math/cmplx"
)

const opInverseComplex = "InverseComplex"

// InverseComplex inverts the n×n complex matrix stored row-major in a.
//
// Implementation:
//   - Stage 1: embed A+iB as the real 2n×2n matrix [[A, -B], [B, A]].
//   - Stage 2: invert with LUP; the inverse has the same structure
//     [[X, -Y], [Y, X]] with (A+iB)⁻¹ = X+iY.
//
// Errors:
//   - ErrDimensionMismatch when len(a) != n*n; ErrInvalidDimensions for n ≤ 0;
//     ErrNaNInf for non-finite entries; ErrSingular.
//
// Complexity: O(8n³).
func InverseComplex(a []complex128, n int) ([]complex128, error) {
	if n <= 0 {
		return nil, matrixErrorf(opInverseComplex, ErrInvalidDimensions)
	}
	if len(a) != n*n {
		return nil, matrixErrorf(opInverseComplex, ErrDimensionMismatch)
	}
	// 1x1 fast path
	if n == 1 {
		if a[0] == 0 {
			return nil, matrixErrorf(opInverseComplex, ErrSingular)
		}
		if cmplx.IsNaN(a[0]) || cmplx.IsInf(a[0]) {
			return nil, matrixErrorf(opInverseComplex, ErrNaNInf)
		}

		return []complex128{1 / a[0]}, nil
	}

	m2 := 2 * n
	emb, err := NewDense(m2, m2)
	if err != nil {
		return nil, matrixErrorf(opInverseComplex, err)
	}
	var (
		i, j   int
		re, im float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			re, im = real(a[i*n+j]), imag(a[i*n+j])
			if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
				return nil, matrixErrorf(opInverseComplex, ErrNaNInf)
			}
			emb.data[i*m2+j] = re
			emb.data[(i+n)*m2+j+n] = re
			emb.data[i*m2+j+n] = -im
			emb.data[(i+n)*m2+j] = im
		}
	}
	inv, err := Inverse(emb)
	if err != nil {
		return nil, matrixErrorf(opInverseComplex, err)
	}
	out := make([]complex128, n*n)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			out[i*n+j] = complex(inv.data[i*m2+j], inv.data[(i+n)*m2+j])
		}
	}

	return out, nil
}
