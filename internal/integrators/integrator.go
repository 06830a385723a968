package integrators

import (
	"math"

	"github.com/san-kum/granule/internal/sim"
)

// Controller defaults.
const (
	DefaultMinDT       = 1e-6
	DefaultMaxDT       = 0.002
	DefaultTargetSteps = 20
	DefaultStepDelay   = 10
)

// controller is the adaptive time-step machinery shared by the integrator
// variants. It is embedded, not exported; variants own the stepping itself.
type controller struct {
	sim.NopLifecycle

	dt       float64
	adjustDT bool
	minDT    float64
	maxDT    float64

	targetSteps int
	stepDelay   int
	stepCount   int

	useV bool
	useA bool

	// characteristic length: mean live-particle radius, recomputed at
	// pre-integrate.
	charLength float64

	// ReduceDT synchronizes dt across domains in a distributed run; nil
	// means single domain.
	ReduceDT func(float64) float64
}

func newController() controller {
	return controller{
		dt:          sim.DefaultTimeStep,
		adjustDT:    true,
		minDT:       DefaultMinDT,
		maxDT:       DefaultMaxDT,
		targetSteps: DefaultTargetSteps,
		stepDelay:   DefaultStepDelay,
		useV:        true,
		charLength:  0.05,
	}
}

func (ct *controller) DT() float64      { return ct.dt }
func (ct *controller) SetDT(dt float64) { ct.dt = dt }

func (ct *controller) SetAdjustDT(a bool) { ct.adjustDT = a }
func (ct *controller) SetMinDT(dt float64) {
	if dt > 0 {
		ct.minDT = dt
	}
}
func (ct *controller) SetMaxDT(dt float64) {
	if dt > 0 {
		ct.maxDT = dt
	}
}
func (ct *controller) SetTargetSteps(s int) {
	if s < 1 {
		s = 1
	}
	ct.targetSteps = s
}
func (ct *controller) SetStepDelay(s int) {
	if s < 0 {
		s = 0
	}
	ct.stepDelay = s
}
func (ct *controller) SetUseV(u bool) { ct.useV = u }
func (ct *controller) SetUseA(u bool) { ct.useA = u }

func (ct *controller) MinDT() float64 { return ct.minDT }
func (ct *controller) MaxDT() float64 { return ct.maxDT }

// PreIntegrate primes the controller: the first eligible step adjusts, dt
// starts at the minimum, and the characteristic length is recomputed as the
// mean radius of the live particles.
func (ct *controller) PreIntegrate(c *sim.Ctx) {
	ct.stepCount = ct.stepDelay
	s := c.Store
	sum := 0.0
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		sum += s.Sg(n)
	}
	if s.Number() > 0 {
		ct.charLength = sum / float64(s.Number())
	}
	if ct.adjustDT {
		ct.dt = ct.minDT
	}
}

// PreStep runs the adaptive time-step update, gated by the step delay.
// The candidate drops immediately but rises through asymmetric smoothing,
// so collisions shrink dt fast and quiet stretches recover it slowly.
func (ct *controller) PreStep(c *sim.Ctx) {
	if !ct.adjustDT {
		return
	}
	if ct.stepCount < ct.stepDelay {
		ct.stepCount++
		return
	}
	ct.stepCount = 0

	maxV, maxA := -1.0, -1.0
	dtV, dtA := 1.0, 1.0
	if ct.useV {
		maxV = maxVelocity(c)
		dtV = ct.charLength / (maxV * float64(ct.targetSteps))
	}
	if ct.useA {
		maxA = maxAcceleration(c)
		dtA = 10 * math.Sqrt(ct.charLength) / (maxA * float64(ct.targetSteps))
	}
	// No information yet. Maybe this is the start of a run.
	if maxV == 0 && maxA == 0 {
		return
	}
	if math.IsNaN(maxV) || math.IsNaN(maxA) {
		c.Fail(sim.ErrNaN)
		return
	}

	dtC := math.Min(dtV, dtA)
	if dtC < ct.dt {
		ct.dt = dtC
	} else {
		ct.dt = 0.9*ct.dt + 0.1*dtC
	}

	if ct.dt > ct.maxDT {
		ct.dt = ct.maxDT
	} else if ct.dt < ct.minDT {
		ct.dt = ct.minDT
	}

	if ct.ReduceDT != nil {
		ct.dt = ct.ReduceDT(ct.dt)
	}
}

// maxVelocity is the largest absolute velocity component over all
// particles, scaled by sqrt(dim) to bound the true speed.
func maxVelocity(c *sim.Ctx) float64 {
	vs := c.Store.Vs()
	maxV := 0.0
	for _, v := range vs {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if a := math.Abs(v); a > maxV {
			maxV = a
		}
	}
	return maxV * math.Sqrt(float64(c.Dim))
}

// maxAcceleration is the largest |F·Im| component, scaled by sqrt(dim).
func maxAcceleration(c *sim.Ctx) float64 {
	fs := c.Store.Fs()
	ims := c.Store.Ims()
	dim := c.Dim
	maxA := 0.0
	for i, f := range fs {
		a := math.Abs(f * ims[i/dim])
		if math.IsNaN(a) {
			return math.NaN()
		}
		if a > maxA {
			maxA = a
		}
	}
	return maxA * math.Sqrt(float64(dim))
}
