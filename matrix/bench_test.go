// SPDX-License-Identifier: MIT
// Package matrix_test provides benchmarks for the hot kernels at the sizes the
// solver uses (hybridization blocks and local subspaces).
package matrix_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/cthyb/matrix"
)

var benchSizes = []int{8, 32, 64}

// sinks to defeat dead-code elimination
var (
	sinkM *matrix.Dense
	sinkF float64
	sinkV []float64
)

func BenchmarkInverse(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := randomSquare(b, n, 1337)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m, err := matrix.Inverse(a)
				if err != nil {
					b.Fatal(err)
				}
				sinkM = m
			}
		})
	}
}

func BenchmarkDet(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := randomSquare(b, n, 4242)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				d, err := matrix.Det(a)
				if err != nil {
					b.Fatal(err)
				}
				sinkF = d
			}
		})
	}
}

func BenchmarkEigen(b *testing.B) {
	b.ReportAllocs()
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			a := randomSymmetric(b, n, 7)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				v, _, err := matrix.Eigen(a, 1e-10, matrix.DefaultEigenSweeps)
				if err != nil {
					b.Fatal(err)
				}
				sinkV = v
			}
		})
	}
}
