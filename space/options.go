package space

import (
	"math"

	"github.com/katalvlaran/cthyb/matrix"
	"github.com/katalvlaran/cthyb/operators"
)

// MaxOrbitals bounds the Fock basis at 2^16 states.
const MaxOrbitals = 16

// Options configures New.
type Options struct {
	// QuantumNumbers, when non-empty, group Fock states into sectors of equal
	// eigenvalues before the operator-connectivity merge.
	QuantumNumbers []operators.Expression

	// Epsilon is the hermiticity and Jacobi convergence tolerance.
	Epsilon float64

	// EigenSweeps bounds the Jacobi sweeps per subspace.
	EigenSweeps int
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns automatic partitioning with Epsilon = 1e-12.
func DefaultOptions() Options {
	return Options{Epsilon: 1e-12, EigenSweeps: matrix.DefaultEigenSweeps}
}

// WithQuantumNumbers selects partitioning by the given conserved operators.
func WithQuantumNumbers(qs ...operators.Expression) Option {
	return func(o *Options) { o.QuantumNumbers = append(o.QuantumNumbers, qs...) }
}

// WithEpsilon overrides the numeric tolerance.
// Panics if eps is not a positive finite number.
func WithEpsilon(eps float64) Option {
	if !(eps > 0) || math.IsInf(eps, 0) {
		panic("space: WithEpsilon requires a positive finite tolerance")
	}

	return func(o *Options) { o.Epsilon = eps }
}
