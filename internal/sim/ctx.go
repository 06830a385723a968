package sim

import (
	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/particle"
)

// Default physical constants.
const (
	DefaultRepulsion = 10.0
	DefaultTimeStep  = 0.001
)

// Ctx is the context handle passed into every lifecycle call. Collaborators
// obtain typed access to the particle store, bounds and registry scalars
// from it; ownership lives at the Engine.
type Ctx struct {
	Store  *particle.Store
	Bounds geom.Bounds
	BCs    []geom.BCFlag
	Dim    int

	Integrator Integrator
	Forces     ForceHandler
	Handler    Handler
	Timers     *PhaseTimers

	// Elapsed is the time simulated in the current run, Total across all
	// runs, Iter the step counter of the current run.
	Elapsed float64
	Total   float64
	Iter    int64

	// Running is the loop flag; any collaborator may clear it. The engine
	// checks it at the termination point of every step.
	Running bool

	// Boundary interaction parameters and per-step accumulators.
	Repulsion        float64
	Dissipation      float64
	CenterAttraction float64
	BoundaryForce    float64
	BoundaryEnergy   float64

	// StartRecTime gates observers: before this elapsed time only the
	// pre/post-integrate hooks fire.
	StartRecTime float64

	err error
}

// NewCtx builds a context over a store with the given bounds. Boundary
// conditions default to wrap on every axis.
func NewCtx(store *particle.Store, bounds geom.Bounds) *Ctx {
	dim := store.Dim()
	bcs := make([]geom.BCFlag, dim)
	for d := range bcs {
		bcs[d] = geom.Wrap
	}
	return &Ctx{
		Store:     store,
		Bounds:    bounds,
		BCs:       bcs,
		Dim:       dim,
		Timers:    &PhaseTimers{},
		Repulsion: DefaultRepulsion,
	}
}

// SetAllBCs sets the same boundary condition on every axis.
func (c *Ctx) SetAllBCs(f geom.BCFlag) {
	for d := range c.BCs {
		c.BCs[d] = f
	}
}

// DT reports the integrator's current time step.
func (c *Ctx) DT() float64 {
	if c.Integrator == nil {
		return 0
	}
	return c.Integrator.DT()
}

// Fail records a fatal error and stops the loop. The first error wins.
func (c *Ctx) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
	c.Running = false
}

// Err returns the recorded fatal error, if any.
func (c *Ctx) Err() error { return c.err }

// Displacement writes x-y into dis, minimum-imaged on wrap axes.
func (c *Ctx) Displacement(x, y, dis []float64) {
	geom.Displacement(x, y, dis, c.Bounds, c.BCs)
}

// MinimumImage folds dis into the nearest periodic image.
func (c *Ctx) MinimumImage(dis []float64) {
	geom.MinimumImage(dis, c.Bounds, c.BCs)
}
