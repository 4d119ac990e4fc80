// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/cthyb/matrix"
)

// ExampleEigen diagonalizes a two-level Hamiltonian with hopping 1.
func ExampleEigen() {
	h, _ := matrix.NewDenseFrom([][]float64{{0, 1}, {1, 0}})
	vals, _, _ := matrix.Eigen(h, matrix.DefaultEpsilon, matrix.DefaultEigenSweeps)
	fmt.Printf("%.3f %.3f\n", vals[0], vals[1])
	// Output:
	// -1.000 1.000
}

// ExampleDet shows that row pivoting keeps the sign right.
func ExampleDet() {
	m, _ := matrix.NewDenseFrom([][]float64{{0, 2}, {3, 0}})
	d, _ := matrix.Det(m)
	fmt.Println(d)
	// Output:
	// -6
}
