package forces

import (
	"math"

	"github.com/san-kum/granule/internal/sim"
)

// DefaultRepulsion is the hard-sphere spring stiffness.
const DefaultRepulsion = 10.0

// pairAccumulator holds the verlet pair list and the per-step scalar
// accumulators shared by the pair-force plugins.
type pairAccumulator struct {
	pairs []int

	virial      float64
	potential   float64
	doVirial    bool
	doPotential bool
}

func (p *pairAccumulator) AddPair(i, j int)      { p.pairs = append(p.pairs, i, j) }
func (p *pairAccumulator) ClearPairs()           { p.pairs = p.pairs[:0] }
func (p *pairAccumulator) Virial() float64       { return p.virial }
func (p *pairAccumulator) Potential() float64    { return p.potential }
func (p *pairAccumulator) SetDoVirial(v bool)    { p.doVirial = v }
func (p *pairAccumulator) SetDoPotential(v bool) { p.doPotential = v }
func (p *pairAccumulator) ResetAccumulators() {
	p.virial = 0
	p.potential = 0
}

// NumPairs reports the current verlet list length.
func (p *pairAccumulator) NumPairs() int { return len(p.pairs) / 2 }

// HardSphere is a linear spring repulsion active while particles overlap.
// Momentum transfer is symmetric: equal and opposite force on both ids.
type HardSphere struct {
	pairAccumulator
	repulsion float64
}

func NewHardSphere() *HardSphere {
	return &HardSphere{repulsion: DefaultRepulsion}
}

func (hs *HardSphere) SetRepulsion(r float64) {
	if r > 0 {
		hs.repulsion = r
	}
}

// Cutoff is 1: hard spheres interact only within contact distance.
func (hs *HardSphere) Cutoff() float64 { return 1 }

func (hs *HardSphere) Compute(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	dis := make([]float64, dim)
	for p := 0; p < len(hs.pairs); p += 2 {
		i, j := hs.pairs[p], hs.pairs[p+1]
		if !s.Alive(i) || !s.Alive(j) {
			continue
		}
		c.Displacement(s.X(i), s.X(j), dis)
		dsqr := 0.0
		for _, d := range dis {
			dsqr += d * d
		}
		contact := s.Sg(i) + s.Sg(j)
		if dsqr >= contact*contact || dsqr == 0 {
			continue
		}
		dist := math.Sqrt(dsqr)
		overlap := contact - dist
		mag := hs.repulsion * overlap
		fi, fj := s.F(i), s.F(j)
		for d := 0; d < dim; d++ {
			fd := mag * dis[d] / dist
			fi[d] += fd
			fj[d] -= fd
		}
		if hs.doVirial {
			hs.virial += mag * dist
		}
		if hs.doPotential {
			hs.potential += 0.5 * hs.repulsion * overlap * overlap
		}
	}
}
