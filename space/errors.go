package space

import "errors"

var (
	// ErrUnknownOperator indicates a Hamiltonian term on an orbital absent
	// from the fundamental set.
	ErrUnknownOperator = errors.New("space: operator outside the fundamental set")

	// ErrTooManyOrbitals indicates more fundamental operators than MaxOrbitals.
	ErrTooManyOrbitals = errors.New("space: too many orbitals for a Fock basis")

	// ErrNotHermitian indicates a Hamiltonian that differs from its conjugate.
	ErrNotHermitian = errors.New("space: hamiltonian is not hermitian")

	// ErrNotDiagonal indicates a quantum-number operator with off-diagonal
	// Fock matrix elements.
	ErrNotDiagonal = errors.New("space: quantum number is not diagonal in the Fock basis")
)
