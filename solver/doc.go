// Package solver wires the hybridization-expansion solver together.
//
// A Solver is created once per setup (β, block structure, mesh sizes); the
// caller supplies the Weiss field with SetG0 and runs Solve with the local
// Hamiltonian and Params. Solve builds the hybridization model and the local
// space, runs Params.Workers independent Markov chains through the mc driver,
// and reduces their accumulators into G(τ), its per-bin standard error and
// the expansion-order histograms.
//
// When the hybridization vanishes the expansion has no diagram beyond order
// zero, so Solve returns the atomic Green's function of h_loc instead of
// sampling.
package solver
