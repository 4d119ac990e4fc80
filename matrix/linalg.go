// SPDX-License-Identifier: MIT
// Package matrix: linear-algebra kernels.
//
// Purpose:
//   - Products (Mul, MatVec), shape helpers (Transpose, Scale).
//   - LUP factorization with partial pivoting and everything built on it
//     (Det, LogDet, Solve, Inverse).
//   - Cyclic Jacobi eigen-decomposition for symmetric input.
//   - Linear least squares via the normal equations.
//
// Notes:
//   - Every kernel validates first, then works on a *Dense view; non-Dense
//     inputs are copied once through At.
//   - Inputs are never mutated; results are freshly allocated.

package matrix

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Operation tags for uniform error wrapping.
const (
	opMul          = "Mul"
	opTranspose    = "Transpose"
	opScale        = "Scale"
	opMatVec       = "MatVec"
	opLUP          = "LUP"
	opDet          = "Det"
	opLogDet       = "LogDet"
	opSolve        = "Solve"
	opInverse      = "Inverse"
	opEigen        = "Eigen"
	opLeastSquares = "LeastSquares"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Call only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Mul returns the product a×b.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible.
//   - Stage 2: i→k→j loop order on flat buffers so the inner loop streams rows of b.
//
// Complexity: O(r*k*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	bd, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out, err := NewDense(ad.r, bd.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var (
		i, k, j int
		aik     float64
		row     []float64
	)
	for i = 0; i < ad.r; i++ {
		row = out.data[i*out.c : (i+1)*out.c]
		for k = 0; k < ad.c; k++ {
			aik = ad.data[i*ad.c+k]
			if aik == 0 {
				continue
			}
			for j = 0; j < bd.c; j++ {
				row[j] += aik * bd.data[k*bd.c+j]
			}
		}
	}

	return out, nil
}

// Transpose returns mᵀ.
// Complexity: O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	md, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out, err := NewDense(md.c, md.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	var i, j int
	for i = 0; i < md.r; i++ {
		for j = 0; j < md.c; j++ {
			out.data[j*out.c+i] = md.data[i*md.c+j]
		}
	}

	return out, nil
}

// Scale returns alpha*m.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, matrixErrorf(opScale, ErrNaNInf)
	}
	md, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := md.CloneDense()
	for i := range out.data {
		out.data[i] *= alpha
	}

	return out, nil
}

// MatVec returns y = m·x.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch (len(x) != Cols).
// Complexity: O(r*c).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	md, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, md.r)
	var (
		i, j int
		sum  float64
	)
	for i = 0; i < md.r; i++ {
		sum = ZeroSum
		for j = 0; j < md.c; j++ {
			sum += md.data[i*md.c+j] * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// LUPFactors holds a packed P·A = L·U factorization.
//   - LU stores U on and above the diagonal and the unit-lower L strictly below.
//   - Perm[i] is the source row of A placed at row i.
//   - Sign is the parity of Perm (+1 or -1).
type LUPFactors struct {
	LU   *Dense
	Perm []int
	Sign float64
}

// LUP factorizes a square matrix with partial (row) pivoting.
//
// Implementation:
//   - Stage 1: ValidateSquareNonNil; copy into a working buffer.
//   - Stage 2: for each column k pick the row with max |a_ik| (i ≥ k), swap,
//     then eliminate below the pivot in place.
//
// Errors:
//   - ErrSingular when a column has no non-zero pivot.
//
// Determinism: ties in pivot magnitude resolve to the lowest row index.
// Complexity: O(n³).
func LUP(m Matrix) (*LUPFactors, error) {
	if err := ValidateSquareNonNil(m); err != nil {
		return nil, matrixErrorf(opLUP, err)
	}
	md, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opLUP, err)
	}
	lu := md.CloneDense()
	n := lu.r
	perm := make([]int, n)
	sign := 1.0

	var (
		i, j, k, p int
		maxAbs, v  float64
		pivot, f   float64
		d          = lu.data
	)
	for i = 0; i < n; i++ {
		perm[i] = i
	}
	for k = 0; k < n; k++ {
		// Stage 2a: pivot search
		p, maxAbs = k, math.Abs(d[k*n+k])
		for i = k + 1; i < n; i++ {
			if v = math.Abs(d[i*n+k]); v > maxAbs {
				p, maxAbs = i, v
			}
		}
		if maxAbs == ZeroPivot {
			return nil, matrixErrorf(opLUP, ErrSingular)
		}
		if p != k {
			for j = 0; j < n; j++ {
				d[k*n+j], d[p*n+j] = d[p*n+j], d[k*n+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
			sign = -sign
		}
		// Stage 2b: elimination
		pivot = d[k*n+k]
		for i = k + 1; i < n; i++ {
			f = d[i*n+k] / pivot
			d[i*n+k] = f
			if f == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				d[i*n+j] -= f * d[k*n+j]
			}
		}
	}

	return &LUPFactors{LU: lu, Perm: perm, Sign: sign}, nil
}

// Det returns det(L·U) = Sign·Π U_ii.
func (f *LUPFactors) Det() float64 {
	n := f.LU.r
	det := f.Sign
	for i := 0; i < n; i++ {
		det *= f.LU.data[i*n+i]
	}

	return det
}

// LogDet returns (log|det|, sign(det)).
func (f *LUPFactors) LogDet() (float64, float64) {
	n := f.LU.r
	var (
		logAbs float64
		sign   = f.Sign
		u      float64
	)
	for i := 0; i < n; i++ {
		u = f.LU.data[i*n+i]
		if u < 0 {
			sign = -sign
		}
		logAbs += math.Log(math.Abs(u))
	}

	return logAbs, sign
}

// SolveVec solves A·x = b with the stored factors.
// Complexity: O(n²).
func (f *LUPFactors) SolveVec(b []float64) ([]float64, error) {
	n := f.LU.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	x := make([]float64, n)
	d := f.LU.data
	var (
		i, j int
		sum  float64
	)
	// forward: L·y = P·b (unit diagonal)
	for i = 0; i < n; i++ {
		sum = b[f.Perm[i]]
		for j = 0; j < i; j++ {
			sum -= d[i*n+j] * x[j]
		}
		x[i] = sum
	}
	// backward: U·x = y
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for j = i + 1; j < n; j++ {
			sum -= d[i*n+j] * x[j]
		}
		x[i] = sum / d[i*n+i]
	}

	return x, nil
}

// Det returns the determinant of a square matrix.
// A singular matrix yields (0, nil), not an error.
func Det(m Matrix) (float64, error) {
	f, err := LUP(m)
	if errors.Is(err, ErrSingular) {
		return 0, nil
	}
	if err != nil {
		return 0, matrixErrorf(opDet, err)
	}

	return f.Det(), nil
}

// LogDet returns (log|det m|, sign). A singular matrix yields (-Inf, 0, nil).
func LogDet(m Matrix) (float64, float64, error) {
	f, err := LUP(m)
	if errors.Is(err, ErrSingular) {
		return math.Inf(-1), 0, nil
	}
	if err != nil {
		return 0, 0, matrixErrorf(opLogDet, err)
	}
	l, s := f.LogDet()

	return l, s, nil
}

// Solve returns x with m·x = b.
func Solve(m Matrix, b []float64) ([]float64, error) {
	f, err := LUP(m)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	return f.SolveVec(b)
}

// Inverse returns m⁻¹ by solving against each unit column.
//
// Errors: ErrSingular, ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(n³).
func Inverse(m Matrix) (*Dense, error) {
	f, err := LUP(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	n := f.LU.r
	inv, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	e := make([]float64, n)
	var (
		i, j int
		col  []float64
	)
	for j = 0; j < n; j++ {
		for i = range e {
			e[i] = 0
		}
		e[j] = 1
		if col, err = f.SolveVec(e); err != nil {
			return nil, matrixErrorf(opInverse, err)
		}
		for i = 0; i < n; i++ {
			inv.data[i*n+j] = col[i]
		}
	}

	return inv, nil
}

// Eigen computes eigenvalues and orthonormal eigenvectors of a symmetric matrix
// using cyclic Jacobi rotations.
//
// Implementation:
//   - Stage 1: ValidateSymmetric(m, tol); copy into A, set Q = I.
//   - Stage 2: sweep all (p,q), p<q, rotating away A[p,q] until
//     max|A[p,q]| ≤ tol or maxSweeps is exhausted.
//   - Stage 3: sort eigenpairs by ascending eigenvalue.
//
// Returns:
//   - values: ascending eigenvalues.
//   - vectors: Q with column k the eigenvector of values[k].
//
// Errors:
//   - ErrAsymmetry, ErrDimensionMismatch, ErrNilMatrix, ErrEigenFailed.
//
// Determinism: fixed sweep order; sort is stable on equal eigenvalues.
// Complexity: O(sweeps·n³).
func Eigen(m Matrix, tol float64, maxSweeps int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	md, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	a := md.CloneDense()
	n := a.r
	q, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		sweep, i, p, r     int
		diag               bool
		apq, app, aqq      float64
		theta, t, c, s     float64
		arp, arq, qrp, qrq float64
		A                  = a.data
		Q                  = q.data
	)
	for sweep = 0; ; sweep++ {
		if diag, err = IsZeroOffDiagonal(a, tol); err != nil {
			return nil, nil, matrixErrorf(opEigen, err)
		}
		if diag {
			break
		}
		if sweep == maxSweeps {
			return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
		}
		for p = 0; p < n; p++ {
			for r = p + 1; r < n; r++ {
				apq = A[p*n+r]
				if apq == 0 {
					continue
				}
				app, aqq = A[p*n+p], A[r*n+r]
				theta = (aqq - app) / (2 * apq)
				t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
				c = 1.0 / math.Sqrt(t*t+1)
				s = t * c
				for i = 0; i < n; i++ {
					if i == p || i == r {
						continue
					}
					arp, arq = A[i*n+p], A[i*n+r]
					A[i*n+p] = c*arp - s*arq
					A[p*n+i] = A[i*n+p]
					A[i*n+r] = s*arp + c*arq
					A[r*n+i] = A[i*n+r]
				}
				A[p*n+p] = app - t*apq
				A[r*n+r] = aqq + t*apq
				A[p*n+r], A[r*n+p] = 0, 0
				for i = 0; i < n; i++ {
					qrp, qrq = Q[i*n+p], Q[i*n+r]
					Q[i*n+p] = c*qrp - s*qrq
					Q[i*n+r] = s*qrp + c*qrq
				}
			}
		}
	}

	// Stage 3: ascending order
	order := make([]int, n)
	for i = range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return A[order[x]*n+order[x]] < A[order[y]*n+order[y]] })
	values := make([]float64, n)
	vectors, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for i = 0; i < n; i++ {
		values[i] = A[order[i]*n+order[i]]
		for r = 0; r < n; r++ {
			vectors.data[r*n+i] = Q[r*n+order[i]]
		}
	}

	return values, vectors, nil
}

// LeastSquares returns x minimizing ‖A·x − b‖₂ via AᵀA·x = Aᵀb.
//
// Errors:
//   - ErrUnderdetermined when Rows < Cols.
//   - ErrSingular when the columns of A are linearly dependent.
//
// Complexity: O(r·c² + c³).
func LeastSquares(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	if err := ValidateVecLen(b, a.Rows()); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	if a.Rows() < a.Cols() {
		return nil, matrixErrorf(opLeastSquares, ErrUnderdetermined)
	}
	at, err := Transpose(a)
	if err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	ata, err := Mul(at, a)
	if err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	atb, err := MatVec(at, b)
	if err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	x, err := Solve(ata, atb)
	if err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}

	return x, nil
}
