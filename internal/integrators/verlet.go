package integrators

import (
	"math"

	"github.com/san-kum/granule/internal/sim"
)

// VelocityVerlet is the symplectic second-order integrator: half kick and
// drift before forces, half kick after. Loops run over the flat field
// arrays, vectorizing across particles rather than dimensions.
type VelocityVerlet struct {
	controller
}

func NewVelocityVerlet() *VelocityVerlet {
	return &VelocityVerlet{controller: newController()}
}

// PreForces applies the first half kick and the drift, then checks for NaN
// positions before the neighbor structure consumes them.
func (vv *VelocityVerlet) PreForces(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	total := s.Size() * dim
	xs, vs, fs := s.Xs(), s.Vs(), s.Fs()
	ims := s.Ims()
	hdt := 0.5 * vv.dt

	for i := 0; i < total; i++ {
		vs[i] += hdt * ims[i/dim] * fs[i]
	}
	// Separate drift loop keeps both passes contiguous.
	dt := vv.dt
	for i := 0; i < total; i++ {
		xs[i] += dt * vs[i]
	}

	for i := 0; i < total; i++ {
		if math.IsNaN(xs[i]) {
			c.Fail(sim.ErrNaN)
			return
		}
	}
}

// PostForces applies the second half kick.
func (vv *VelocityVerlet) PostForces(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	total := s.Size() * dim
	vs, fs := s.Vs(), s.Fs()
	ims := s.Ims()
	hdt := 0.5 * vv.dt

	for i := 0; i < total; i++ {
		vs[i] += hdt * ims[i/dim] * fs[i]
	}
}
