// Package qmc is the sampling core of the hybridization-expansion solver.
//
// A Configuration is a time-ordered list of creation and annihilation
// operators on [0, β). Its weight is
//
//	w = s_perm · (−1)^k · Tr[e^{−βH} T Π O(τ)] · Π_b det D_b
//
// where D_b[i][j] = Δ_b(τ_i^† − τ_j)[a_i][a'_j] (rows are creators, columns
// annihilators, both in insertion order) and s_perm is the sign of the
// permutation from the reference product Π_b Π_i c†_{b,i} c_{b,i} to time
// order. The product s_perm·det is independent of the labelling of rows and
// columns, so removals may reshuffle indices freely.
//
// Moves (InsertMove, RemoveMove) never mutate state while proposing: every
// Propose builds a pending snapshot (new operator list, determinant update,
// trace chains) that Accept installs and Reject drops. A rejected proposal
// leaves the Configuration bit-identical.
//
// Identical times are forbidden: a proposal that draws a time already present
// (or equal creation and annihilation times) is rejected before any ratio is
// evaluated. τ = 0 is therefore valid and Δ is only evaluated at non-zero
// differences, extended to (−β, 0) by Δ(τ−β) = −Δ(τ).
//
// TraceEstimator evaluates the local trace in the eigenbasis of the space
// package, one chain per starting subspace, rescaled into (sign, log|·|) at
// every step. Exact mode caches every chain prefix and recomputes only from
// the first modified operator. Estimator mode always evaluates the dominant
// chain and keeps every other chain with probability p ≥ pMin, weighting it
// by 1/p; the estimate is stored with the configuration and reused in ratios.
//
// GreenAccumulator and OrderHistogram are the measurements; both read the
// configuration and never modify it, and both expose Merge for reduction
// across independent workers.
package qmc
