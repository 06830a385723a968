package integrators

import "github.com/san-kum/granule/internal/sim"

// DefaultDamping is the overdamped mobility constant.
const DefaultDamping = 0.1

// Overdamped is the first-order integrator for strongly damped media:
// displacement follows force directly and velocity is not a degree of
// freedom.
type Overdamped struct {
	controller
	damping float64
}

func NewOverdamped() *Overdamped {
	o := &Overdamped{controller: newController(), damping: DefaultDamping}
	// No velocities to bound dt with; use acceleration instead.
	o.useV = false
	o.useA = true
	return o
}

func (o *Overdamped) SetDamping(d float64) {
	if d > 0 {
		o.damping = d
	}
}

// PostForces moves every particle along its accumulated force.
func (o *Overdamped) PostForces(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	total := s.Size() * dim
	xs, fs := s.Xs(), s.Fs()
	ims := s.Ims()
	gdt := o.damping * o.dt

	for i := 0; i < total; i++ {
		xs[i] += gdt * ims[i/dim] * fs[i]
	}
}
