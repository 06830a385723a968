package sim

import (
	"github.com/san-kum/granule/internal/geom"
)

// Boundary application. Wrap runs at domain construction and at step end;
// reflect and repulse run inside pre-forces after the force buffer is
// cleared, so repulse forces accumulate into the fresh buffer.

// WrapPositions maps every particle onto its canonical image on wrap axes.
func (c *Ctx) WrapPositions() {
	s := c.Store
	xs := s.Xs()
	size, dim := s.Size(), c.Dim
	for d := 0; d < dim; d++ {
		if c.BCs[d] != geom.Wrap {
			continue
		}
		for n := 0; n < size; n++ {
			xs[n*dim+d] = c.Bounds.Wrap(xs[n*dim+d], d)
		}
	}
}

// ReflectPositions mirrors particles that crossed a reflect axis and flips
// the normal velocity component.
func (c *Ctx) ReflectPositions() {
	s := c.Store
	xs, vs := s.Xs(), s.Vs()
	size, dim := s.Size(), c.Dim
	for d := 0; d < dim; d++ {
		if c.BCs[d] != geom.Reflect {
			continue
		}
		min, max := c.Bounds.Min[d], c.Bounds.Max[d]
		for n := 0; n < size; n++ {
			x := xs[n*dim+d]
			if x < min {
				xs[n*dim+d] = 2*min - x
				vs[n*dim+d] = -vs[n*dim+d]
			} else if max < x {
				xs[n*dim+d] = 2*max - x
				vs[n*dim+d] = -vs[n*dim+d]
			}
		}
	}
}

// RepulsePositions applies an inward spring plus dissipation force to
// particles beyond a repulse axis, accumulating the observed boundary force
// and potential energy.
func (c *Ctx) RepulsePositions() {
	s := c.Store
	xs, vs, fs := s.Xs(), s.Vs(), s.Fs()
	size, dim := s.Size(), c.Dim
	c.BoundaryForce = 0
	c.BoundaryEnergy = 0
	for d := 0; d < dim; d++ {
		if c.BCs[d] != geom.Repulse {
			continue
		}
		min, max := c.Bounds.Min[d], c.Bounds.Max[d]
		for n := 0; n < size; n++ {
			x := xs[n*dim+d]
			if x < min {
				dx := min - x
				F := c.Repulsion*dx + c.Dissipation*clampPositive(-vs[n*dim+d])
				fs[n*dim+d] += F
				c.BoundaryForce += F
				c.BoundaryEnergy += 0.5 * c.Repulsion * dx * dx
			} else if max < x {
				dx := x - max
				F := c.Repulsion*dx + c.Dissipation*clampPositive(vs[n*dim+d])
				fs[n*dim+d] -= F
				c.BoundaryForce += F
				c.BoundaryEnergy += 0.5 * c.Repulsion * dx * dx
			}
		}
	}
}

// AttractPositions pulls every live particle toward the center of the
// bounds with constant acceleration CenterAttraction.
func (c *Ctx) AttractPositions() {
	if c.CenterAttraction == 0 {
		return
	}
	s := c.Store
	dim := c.Dim
	center := make([]float64, dim)
	dx := make([]float64, dim)
	c.Bounds.Center(center)
	ims := s.Ims()
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) || ims[n] == 0 {
			continue
		}
		x := s.X(n)
		for d := 0; d < dim; d++ {
			dx[d] = center[d] - x[d]
		}
		r := geom.Norm(dx)
		if r == 0 {
			continue
		}
		f := s.F(n)
		scale := c.CenterAttraction / (ims[n] * r)
		for d := 0; d < dim; d++ {
			f[d] += scale * dx[d]
		}
	}
}

// CheckBounds verifies that every live particle lies inside the bounds
// extended by pad on every side. Returns false after recording a fatal error.
func (c *Ctx) CheckBounds(pad float64) bool {
	ext := c.Bounds.Expanded(pad)
	s := c.Store
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		if !ext.Contains(s.X(n)) {
			c.Fail(ErrOutOfBounds)
			return false
		}
	}
	return true
}

func clampPositive(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
