package sim

// Lifecycle is the per-step capability contract shared by integrators, the
// neighbor handler, modifiers and observers. The engine fans each phase out
// to every collaborator in a fixed order; see Engine.Run.
type Lifecycle interface {
	PreIntegrate(c *Ctx)
	PreStep(c *Ctx)
	PreExchange(c *Ctx)
	PreForces(c *Ctx)
	PostForces(c *Ctx)
	PostStep(c *Ctx)
	PostIntegrate(c *Ctx)
}

// NopLifecycle provides no-op phase hooks for embedding, so collaborators
// only implement the phases they care about.
type NopLifecycle struct{}

func (NopLifecycle) PreIntegrate(*Ctx)  {}
func (NopLifecycle) PreStep(*Ctx)       {}
func (NopLifecycle) PreExchange(*Ctx)   {}
func (NopLifecycle) PreForces(*Ctx)     {}
func (NopLifecycle) PostForces(*Ctx)    {}
func (NopLifecycle) PostStep(*Ctx)      {}
func (NopLifecycle) PostIntegrate(*Ctx) {}

// Integrator advances particle state. PreForces holds the first half kick
// and drift for velocity-Verlet; PostForces the second half kick, or the
// whole displacement step for overdamped dynamics. PreStep runs the
// adaptive time-step controller.
type Integrator interface {
	Lifecycle
	DT() float64
	SetDT(float64)
}

// Handler owns the neighbor structure. Construct rebins all particles and
// rebuilds interaction pair lists; PreForces decides whether a rebuild is
// needed this step.
type Handler interface {
	Lifecycle
	Construct(c *Ctx)
}

// ForceHandler routes candidate pairs to interaction plugins and evaluates
// them. AddPair is called by the handler during Construct; Interact is
// called by the engine each step.
type ForceHandler interface {
	AddPair(c *Ctx, i, j int)
	ClearPairs()
	Interact(c *Ctx)
	ResetAccumulators()
	// MaxCutoff reports the largest cutoff factor declared by any plugin
	// handling pairs (typ, _). Multiplied by radius to give interaction reach.
	MaxCutoff(typ int) float64
	TypeInteracts(typ int) bool
	NTypes() int
	NumInteractions() int
	Virial() float64
	Potential() float64
}

// Bonded evaluates fixed-topology interactions (bonds, angle chains) each
// step, independent of the neighbor structure.
type Bonded interface {
	Interact(c *Ctx)
}

// Modifier mutates particle state at designated phases. A modifier whose
// Remove returns true is reaped at the end of the step.
type Modifier interface {
	Lifecycle
	Remove() bool
}

// Observer records data on lifecycle hooks and writes it out at the end of
// a run.
type Observer interface {
	Lifecycle
	Name() string
	Write(dir string) error
}
