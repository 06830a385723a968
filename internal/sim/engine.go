package sim

import (
	"context"
	"fmt"
)

// Engine sequences the per-step phases and fans them out to the integrator,
// the neighbor handler, the force handler, modifiers and observers. It owns
// the context handle that every collaborator receives.
type Engine struct {
	c *Ctx

	integrator Integrator
	additional []Integrator
	handler    Handler
	forces     ForceHandler
	bonded     []Bonded
	modifiers  []Modifier
	observers  []Observer

	useForces bool

	requestedTime  float64
	totalRequested float64

	prepared bool

	// ReduceRunning coordinates the loop flag across domains in a
	// distributed run; nil means single domain.
	ReduceRunning func(bool) bool
}

// NewEngine wires an engine over the given context handle.
func NewEngine(c *Ctx, integrator Integrator, handler Handler, forces ForceHandler) *Engine {
	c.Integrator = integrator
	c.Handler = handler
	c.Forces = forces
	return &Engine{
		c:          c,
		integrator: integrator,
		handler:    handler,
		forces:     forces,
		useForces:  true,
	}
}

func (e *Engine) Ctx() *Ctx { return e.c }

func (e *Engine) AddModifier(m Modifier)      { e.modifiers = append(e.modifiers, m) }
func (e *Engine) AddObserver(o Observer)      { e.observers = append(e.observers, o) }
func (e *Engine) AddBonded(b Bonded)          { e.bonded = append(e.bonded, b) }
func (e *Engine) AddIntegrator(it Integrator) { e.additional = append(e.additional, it) }
func (e *Engine) SetUseForces(u bool)         { e.useForces = u }

func (e *Engine) Observers() []Observer { return e.observers }

// TotalRequestedTime is the sum of requested times across all runs.
func (e *Engine) TotalRequestedTime() float64 { return e.totalRequested }

// Run advances the simulation for the requested amount of simulated time.
// The context cancels the run between steps; no partial step is discarded.
func (e *Engine) Run(ctx context.Context, requested float64) error {
	if err := e.Prepare(requested); err != nil {
		return err
	}
	if !e.prepared {
		return nil
	}
	defer e.Finish()

	c := e.c
	for c.Running && e.requestedTime > 0 {
		select {
		case <-ctx.Done():
			c.Fail(ErrCanceled)
			return c.Err()
		default:
		}

		e.step()

		if c.Err() != nil {
			return c.Err()
		}
	}
	return c.Err()
}

// Prepare readies a run without stepping; interactive drivers pair it with
// StepN and Finish. A run over an empty store completes immediately.
func (e *Engine) Prepare(requested float64) error {
	if requested < 0 {
		return fmt.Errorf("%w: negative requested time %g", ErrBadConfig, requested)
	}
	e.requestedTime = requested
	e.totalRequested += requested
	c := e.c

	if c.Store.Number() == 0 {
		c.Elapsed += requested
		c.Total += requested
		e.prepared = false
		return nil
	}

	c.Running = true
	c.Elapsed = 0
	c.Iter = 0
	c.Timers.StartRun()
	e.preIntegrate()
	e.prepared = true
	return nil
}

// StepN advances at most n steps and reports whether the run can continue.
func (e *Engine) StepN(n int) bool {
	if !e.prepared {
		return false
	}
	c := e.c
	for i := 0; i < n && c.Running && e.requestedTime > 0; i++ {
		e.step()
	}
	return c.Running && e.requestedTime > 0 && c.Err() == nil
}

// Finish runs the post-integrate phase of a prepared run. Idempotent.
func (e *Engine) Finish() error {
	if e.prepared {
		e.postIntegrate()
		e.prepared = false
	}
	return e.c.Err()
}

// step runs one full phase cycle.
func (e *Engine) step() {
	c := e.c

	// --- Pre-step: adaptive dt, modifier state machines.
	for _, m := range e.modifiers {
		m.PreStep(c)
	}
	e.integrator.PreStep(c)
	for _, it := range e.additional {
		it.PreStep(c)
	}
	e.eachObserver(func(o Observer) { o.PreStep(c) })
	e.handler.PreStep(c)

	// --- Pre-exchange: inter-domain migration hook (single domain: no-op).
	for _, m := range e.modifiers {
		m.PreExchange(c)
	}
	e.integrator.PreExchange(c)
	for _, it := range e.additional {
		it.PreExchange(c)
	}
	e.eachObserver(func(o Observer) { o.PreExchange(c) })
	e.handler.PreExchange(c)

	// --- Pre-forces: first half kick + drift, then neighbor maintenance.
	c.Timers.Start(PhasePreForces)
	e.integrator.PreForces(c)
	for _, it := range e.additional {
		it.PreForces(c)
	}
	c.Timers.Stop(PhasePreForces)

	c.Timers.Start(PhaseDomain)
	if e.useForces {
		e.handler.PreForces(c)
	}
	c.Timers.Stop(PhaseDomain)

	// Clear force buffers, then boundary forces into the fresh buffer.
	c.Store.ClearForces()
	if e.forces != nil {
		e.forces.ResetAccumulators()
	}
	c.ReflectPositions()
	c.RepulsePositions()
	c.AttractPositions()

	for _, m := range e.modifiers {
		m.PreForces(c)
	}
	e.eachObserver(func(o Observer) { o.PreForces(c) })

	// --- Interactions.
	if e.useForces && e.forces != nil {
		c.Timers.Start(PhaseInteractions)
		e.forces.Interact(c)
		c.Timers.Stop(PhaseInteractions)
		if len(e.bonded) > 0 {
			c.Timers.Start(PhaseBonded)
			for _, b := range e.bonded {
				b.Interact(c)
			}
			c.Timers.Stop(PhaseBonded)
		}
	}

	// --- Post-forces: halo fold-back, then second half kick.
	for _, m := range e.modifiers {
		m.PostForces(c)
	}
	c.Store.UpdateHaloForces()
	c.Timers.Start(PhasePostForces)
	e.integrator.PostForces(c)
	for _, it := range e.additional {
		it.PostForces(c)
	}
	c.Timers.Stop(PhasePostForces)
	c.Timers.Start(PhaseObservers)
	e.eachObserver(func(o Observer) { o.PostForces(c) })
	c.Timers.Stop(PhaseObservers)
	e.handler.PostForces(c)

	// --- Post-step and termination check. The comparison allows for
	// rounding in the accumulated elapsed time.
	if e.requestedTime-c.Elapsed <= 1e-12*e.requestedTime {
		c.Running = false
	}
	for _, m := range e.modifiers {
		m.PostStep(c)
	}
	e.integrator.PostStep(c)
	for _, it := range e.additional {
		it.PostStep(c)
	}
	c.Timers.Start(PhaseObservers)
	e.eachObserver(func(o Observer) { o.PostStep(c) })
	c.Timers.Stop(PhaseObservers)
	e.handler.PostStep(c)

	c.WrapPositions()
	e.reapModifiers()

	c.Iter++
	dt := e.integrator.DT()
	c.Elapsed += dt
	c.Total += dt
	if c.Total-dt == c.Total {
		c.Fail(ErrPrecisionLoss)
	}
	c.Store.SetNeedsRemake(false)

	if e.ReduceRunning != nil {
		c.Running = e.ReduceRunning(c.Running)
	}
}

func (e *Engine) preIntegrate() {
	c := e.c
	for _, m := range e.modifiers {
		m.PreIntegrate(c)
	}
	e.integrator.PreIntegrate(c)
	for _, it := range e.additional {
		it.PreIntegrate(c)
	}
	e.handler.PreIntegrate(c)
	for _, o := range e.observers {
		o.PreIntegrate(c)
	}
}

func (e *Engine) postIntegrate() {
	c := e.c
	e.requestedTime = 0
	e.integrator.PostIntegrate(c)
	for _, it := range e.additional {
		it.PostIntegrate(c)
	}
	e.handler.PostIntegrate(c)
	for _, o := range e.observers {
		o.PostIntegrate(c)
	}
	for _, m := range e.modifiers {
		m.PostIntegrate(c)
	}
	c.Timers.StopRun()
}

// eachObserver fans a mid-run hook out to the observers, gated by the
// start-record time.
func (e *Engine) eachObserver(fn func(Observer)) {
	if e.c.Elapsed < e.c.StartRecTime {
		return
	}
	for _, o := range e.observers {
		fn(o)
	}
}

func (e *Engine) reapModifiers() {
	kept := e.modifiers[:0]
	for _, m := range e.modifiers {
		if !m.Remove() {
			kept = append(kept, m)
		}
	}
	e.modifiers = kept
}
