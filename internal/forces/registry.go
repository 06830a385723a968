package forces

import (
	"github.com/san-kum/granule/internal/sim"
)

// Interaction is the pair-force plugin contract. The domain feeds candidate
// pairs through AddPair during rebuilds; Compute evaluates the accumulated
// pair list each step.
type Interaction interface {
	// Cutoff is the factor multiplying particle radius to give interaction
	// reach. Declared before first use; drives cell sizing.
	Cutoff() float64
	AddPair(i, j int)
	ClearPairs()
	Compute(c *sim.Ctx)
	Virial() float64
	Potential() float64
	ResetAccumulators()
	SetDoVirial(bool)
	SetDoPotential(bool)
}

// Registry maps ordered type pairs to interaction plugins and routes
// candidate pairs to them. It implements sim.ForceHandler.
type Registry struct {
	ntypes int
	table  [][]Interaction
	maxCut []float64
	does   []bool

	interactions []Interaction

	doVirial    bool
	doPotential bool
}

// NewRegistry creates a registry for ntypes particle types with no
// interactions.
func NewRegistry(ntypes int) *Registry {
	r := &Registry{
		ntypes: ntypes,
		table:  make([][]Interaction, ntypes),
		maxCut: make([]float64, ntypes),
		does:   make([]bool, ntypes),
	}
	for t := range r.table {
		r.table[t] = make([]Interaction, ntypes)
	}
	return r
}

// Register installs in for both orderings of (t1, t2).
func (r *Registry) Register(t1, t2 int, in Interaction) {
	r.RegisterOrdered(t1, t2, in)
	if t1 != t2 {
		r.RegisterOrdered(t2, t1, in)
	}
}

// RegisterOrdered installs in for the ordered pair (t1, t2) only.
func (r *Registry) RegisterOrdered(t1, t2 int, in Interaction) {
	r.table[t1][t2] = in
	if in == nil {
		return
	}
	r.does[t1] = true
	if in.Cutoff() > r.maxCut[t1] {
		r.maxCut[t1] = in.Cutoff()
	}
	for _, have := range r.interactions {
		if have == in {
			return
		}
	}
	in.SetDoVirial(r.doVirial)
	in.SetDoPotential(r.doPotential)
	r.interactions = append(r.interactions, in)
}

// SetDoVirial toggles virial accumulation on every plugin.
func (r *Registry) SetDoVirial(v bool) {
	r.doVirial = v
	for _, in := range r.interactions {
		in.SetDoVirial(v)
	}
}

// SetDoPotential toggles potential accumulation on every plugin.
func (r *Registry) SetDoPotential(v bool) {
	r.doPotential = v
	for _, in := range r.interactions {
		in.SetDoPotential(v)
	}
}

// AddPair routes a candidate pair to the plugin registered for its type
// pair, if any.
func (r *Registry) AddPair(c *sim.Ctx, i, j int) {
	t1, t2 := c.Store.Type(i), c.Store.Type(j)
	if t1 < 0 || t2 < 0 || t1 >= r.ntypes || t2 >= r.ntypes {
		return
	}
	if in := r.table[t1][t2]; in != nil {
		in.AddPair(i, j)
	}
}

// ClearPairs resets every plugin's pair list; called on domain rebuild.
func (r *Registry) ClearPairs() {
	for _, in := range r.interactions {
		in.ClearPairs()
	}
}

// Interact evaluates every plugin over its accumulated pairs.
func (r *Registry) Interact(c *sim.Ctx) {
	for _, in := range r.interactions {
		in.Compute(c)
	}
}

// ResetAccumulators zeros the per-step virial and potential sums.
func (r *Registry) ResetAccumulators() {
	for _, in := range r.interactions {
		in.ResetAccumulators()
	}
}

// MaxCutoff reports the largest cutoff factor declared by any plugin
// handling pairs (typ, _).
func (r *Registry) MaxCutoff(typ int) float64 {
	if typ < 0 || typ >= r.ntypes {
		return 0
	}
	return r.maxCut[typ]
}

// TypeInteracts reports whether any plugin handles type typ.
func (r *Registry) TypeInteracts(typ int) bool {
	if typ < 0 || typ >= r.ntypes {
		return false
	}
	return r.does[typ]
}

func (r *Registry) NTypes() int          { return r.ntypes }
func (r *Registry) NumInteractions() int { return len(r.interactions) }

// Virial sums the virial over all plugins.
func (r *Registry) Virial() float64 {
	sum := 0.0
	for _, in := range r.interactions {
		sum += in.Virial()
	}
	return sum
}

// Potential sums the potential energy over all plugins.
func (r *Registry) Potential() float64 {
	sum := 0.0
	for _, in := range r.interactions {
		sum += in.Potential()
	}
	return sum
}
