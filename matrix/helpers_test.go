// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Provide small deterministic fixtures for the kernels.
//   - Keep all data finite and well-formed.

package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cthyb/matrix"
)

// hide wraps any Matrix to mask its concrete type and force the At/Set copy path.
type hide struct{ matrix.Matrix }

// mustDense builds a *Dense from rows or fails the test.
func mustDense(tb testing.TB, rows [][]float64) *matrix.Dense {
	tb.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(tb, err)

	return m
}

// mustAt reads (i,j) or fails the test.
func mustAt(tb testing.TB, m matrix.Matrix, i, j int) float64 {
	tb.Helper()
	v, err := m.At(i, j)
	require.NoError(tb, err)

	return v
}

// randomSymmetric returns a deterministic n×n symmetric matrix.
func randomSymmetric(tb testing.TB, n int, seed int64) *matrix.Dense {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := matrix.NewDense(n, n)
	require.NoError(tb, err)
	var (
		i, j int
		v    float64
	)
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			v = rng.Float64()*2 - 1
			require.NoError(tb, m.Set(i, j, v))
			require.NoError(tb, m.Set(j, i, v))
		}
	}

	return m
}

// randomSquare returns a deterministic, diagonally shifted n×n matrix.
func randomSquare(tb testing.TB, n int, seed int64) *matrix.Dense {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := matrix.NewDense(n, n)
	require.NoError(tb, err)
	d := m.Data()
	for i := range d {
		d[i] = rng.Float64()*2 - 1
	}
	for i := 0; i < n; i++ {
		d[i*n+i] += float64(n)
	}

	return m
}

// requireClose asserts element-wise |a-b| ≤ tol.
func requireClose(tb testing.TB, a, b matrix.Matrix, tol float64) {
	tb.Helper()
	require.Equal(tb, a.Rows(), b.Rows())
	require.Equal(tb, a.Cols(), b.Cols())
	var i, j int
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			require.InDelta(tb, mustAt(tb, a, i, j), mustAt(tb, b, i, j), tol, "at [%d,%d]", i, j)
		}
	}
}
