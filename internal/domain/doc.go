// Package domain maintains the neighbor structure: a regular grid of cells
// covering the simulation bounds, rebuilt when particle motion threatens
// the skin margin.
//
// Candidate pairs are enumerated once per rebuild and routed to the force
// handler, which stores them in per-plugin verlet lists. Between rebuilds
// the grid is read-only; [Domain.PreForces] decides each step whether a
// rebuild is due, either from sampled particle motion or on a fixed step
// cadence.
package domain
