// Package config loads a solver run description from YAML.
//
// Loading order: defaults, then the file, then CTHYB_* environment variables
// for the sampling parameters, then validation (struct tags plus the mesh
// precondition n_tau ≥ 2·n_iw). The Config builds the block structure, the
// local Hamiltonian and the Weiss field of a discrete bath.
package config
