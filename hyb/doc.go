// Package hyb derives the hybridization function Δ(τ) and the corrected local
// Hamiltonian from a Weiss field G0(iω).
//
// With the high-frequency expansion G0⁻¹(iω) = iω·s₋₁ + s₀ + O(1/iω):
//
//	Δ(iω) = iω·s₋₁ + s₀ − G0⁻¹(iω)
//	h_loc → h_loc + Σ_ab ε_ab c†_a c_b,   ε = 1/(iω)² moment of G0
//
// Δ(τ) is obtained with gf.InverseFourier using the exact 1/(iω)..1/(iω)³
// moments of Δ when the Weiss field carries a known tail of order ≥ 5 (as
// produced by WeissFieldFromBath), and fitted moments otherwise.
//
// Precondition: n_τ ≥ 2·n_ω (CheckMesh). Fewer time points alias the
// transform and are rejected with ErrInsufficientTauPoints.
package hyb
