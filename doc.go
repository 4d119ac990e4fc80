// Package cthyb is a continuous-time quantum Monte Carlo solver for quantum
// impurity problems in the hybridization expansion.
//
// Given a Weiss field G0(iω) per block and a local Hamiltonian, it samples the
// expansion of the partition function in the hybridization Δ and measures the
// imaginary-time Green's function G(τ) and the expansion-order histograms.
//
// Layout:
//
//	matrix/    dense kernels: LU, determinants, inverses, Jacobi eigen, least squares
//	operators/ second-quantized operator expressions in c and c†
//	space/     local Fock space, invariant subspaces, eigenbasis operator matrices
//	gf/        meshes, block structures, block Green's functions, tails, Fourier
//	hyb/       Weiss field to Δ(τ) and the corrected local Hamiltonian
//	qmc/       configuration, determinant blocks, trace, moves, measurements
//	mc/        Metropolis driver, seeds, metrics, worker pool
//	solver/    public entry point: setup, Solve, reduction across workers
//	config/    YAML run description
//	cmd/cthyb  command line: check and run
//
// Quick start:
//
//	s, _ := gf.NewStructure(gf.Block{Name: "up", Indices: []int{0}}, gf.Block{Name: "dn", Indices: []int{0}})
//	slv, _ := solver.New(10, s, 50, 201)
//	_ = slv.SetG0(g0)
//	res, err := slv.Solve(ctx, hLoc, solver.Params{NCycles: 100000, ...})
package cthyb
