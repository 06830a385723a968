// Package sim holds the time-stepping engine and the lifecycle contracts
// its collaborators implement.
//
// One step fans the phases out in a fixed order:
//
//	pre-step < pre-exchange < pre-forces (integrator) < pre-forces (handler)
//	< clear forces < boundary forces < interactions < halo fold-back
//	< post-forces (integrator) < post-step < wrap
//
// The central types:
//
//   - [Ctx]: context handle passed into every lifecycle call; typed access
//     to the particle store, bounds, boundary conditions and registry scalars
//   - [Engine]: owns the collaborators and sequences the phases
//   - [Lifecycle]: the phase hook contract; embed [NopLifecycle] to
//     implement only the phases you need
//
// Engines are single-threaded within one domain. Distributed runs launch
// one engine per domain and coordinate through the ReduceRunning and
// ReduceDT hooks.
package sim
