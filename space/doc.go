// Package space builds the local (impurity) Hilbert space of a Hamiltonian
// expressed with the operators package.
//
// Pipeline:
//
//  1. Fock basis: every occupation bitmask over the N fundamental operators
//     (N ≤ MaxOrbitals). Fermionic signs follow the Jordan–Wigner ordering of
//     the FundamentalSet: c†_p and c_p pick up (−1)^{#occupied q < p}.
//  2. Partition: connected components of the Hamiltonian graph (states linked
//     by a non-zero matrix element), found with a breadth-first walk, then
//     merged until every c_p and c†_p maps each subspace into at most one
//     subspace. Optional quantum-number operators (diagonal in the Fock basis)
//     coarsen the initial components into their sectors.
//  3. Per subspace: dense Hamiltonian block, Jacobi diagonalization
//     (matrix.Eigen), energies shifted by the global ground-state energy.
//  4. Operator matrices of every c_p and c†_p between connected subspaces,
//     rotated into the eigenbases.
//
// AtomicGreenFunction evaluates the Lehmann representation of the impurity
// Green's function of the local Hamiltonian alone.
//
// Complexity:
//
//	– Basis and partition: O(2^N · T) with T the number of Hamiltonian terms.
//	– Diagonalization: O(Σ_A d_A³) over subspace dimensions d_A.
package space
