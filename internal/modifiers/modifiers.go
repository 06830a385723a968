package modifiers

import "github.com/san-kum/granule/internal/sim"

// base carries the removal flag shared by the concrete modifiers.
type base struct {
	sim.NopLifecycle
	remove bool
}

func (b *base) Remove() bool { return b.remove }
func (b *base) MarkRemove() { b.remove = true }

// ConstantVelocity pins every particle of one type to a fixed velocity:
// forces on them are discarded after evaluation and the velocity is
// restored each step.
type ConstantVelocity struct {
	base
	typ int
	v   []float64
}

func NewConstantVelocity(typ int, v []float64) *ConstantVelocity {
	return &ConstantVelocity{typ: typ, v: append([]float64(nil), v...)}
}

func (cv *ConstantVelocity) PostForces(c *sim.Ctx) {
	s := c.Store
	for n := 0; n < s.Size(); n++ {
		if s.Type(n) != cv.typ {
			continue
		}
		f := s.F(n)
		for d := range f {
			f[d] = 0
		}
	}
}

func (cv *ConstantVelocity) PostStep(c *sim.Ctx) {
	s := c.Store
	for n := 0; n < s.Size(); n++ {
		if s.Type(n) != cv.typ {
			continue
		}
		copy(s.V(n), cv.v)
	}
}

// LinearDrag applies a viscous force -gamma·v to every live particle,
// modeling a background medium. It expires at StopTime when set.
type LinearDrag struct {
	base
	gamma    float64
	stopTime float64
}

func NewLinearDrag(gamma float64) *LinearDrag {
	return &LinearDrag{gamma: gamma}
}

// SetStopTime schedules removal once the elapsed time passes t.
func (ld *LinearDrag) SetStopTime(t float64) { ld.stopTime = t }

func (ld *LinearDrag) PostForces(c *sim.Ctx) {
	s := c.Store
	vs, fs := s.Vs(), s.Fs()
	dim := c.Dim
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		for d := 0; d < dim; d++ {
			fs[n*dim+d] -= ld.gamma * vs[n*dim+d]
		}
	}
}

func (ld *LinearDrag) PostStep(c *sim.Ctx) {
	if ld.stopTime > 0 && c.Elapsed >= ld.stopTime {
		ld.MarkRemove()
	}
}
