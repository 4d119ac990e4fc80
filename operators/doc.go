// Package operators provides many-body operator expressions built from
// fermionic creation (c†) and annihilation (c) operators.
//
// An Expression is a finite sum of monomials with real coefficients. Every
// monomial is kept in canonical normal order:
//
//	c†_{i1} c†_{i2} … c_{j1} c_{j2} …   with i1 < i2 < …  and  j1 > j2 > …
//
// Products are reduced to that form with the canonical anticommutation
// relations {c_i, c†_j} = δ_ij, {c_i, c_j} = {c†_i, c†_j} = 0, tracking the
// fermionic sign of every transposition. Two expressions that represent the
// same operator therefore compare equal term by term.
//
// FundamentalSet assigns a dense linear index to every (block, inner) pair in
// block-structure order; the space package uses it to map operators onto bits
// of a Fock state.
//
// Errors (sentinel):
//
//	– ErrDuplicateIndex  when a FundamentalSet receives the same index twice.
//	– ErrUnknownIndex    when a lookup misses.
//
// Example:
//
//	n := operators.N("up", 0).Mul(operators.N("dn", 0)).Scale(U)
//	h := n.Add(operators.N("up", 0).Scale(-mu))
package operators
