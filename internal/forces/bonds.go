package forces

import (
	"math"

	"github.com/san-kum/granule/internal/particle"
	"github.com/san-kum/granule/internal/sim"
)

// DefaultSpringK is the harmonic bond stiffness.
const DefaultSpringK = 10.0

// HarmonicBonds is a fixed-topology bonded interaction: springs between
// particle pairs, addressed by global id so compaction cannot break them.
// It implements sim.Bonded.
type HarmonicBonds struct {
	k       float64
	ids     []int // global id pairs
	lengths []float64
}

func NewHarmonicBonds(k float64) *HarmonicBonds {
	if k <= 0 {
		k = DefaultSpringK
	}
	return &HarmonicBonds{k: k}
}

// AddBond links the particles with global ids g1 and g2 by a spring with
// the given rest length.
func (hb *HarmonicBonds) AddBond(g1, g2 int, rest float64) {
	hb.ids = append(hb.ids, g1, g2)
	hb.lengths = append(hb.lengths, rest)
}

func (hb *HarmonicBonds) NumBonds() int { return len(hb.lengths) }

func (hb *HarmonicBonds) Interact(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	dis := make([]float64, dim)
	for b := 0; b < len(hb.lengths); b++ {
		i := s.LocalOf(hb.ids[2*b])
		j := s.LocalOf(hb.ids[2*b+1])
		if i == particle.NoID || j == particle.NoID {
			continue
		}
		c.Displacement(s.X(i), s.X(j), dis)
		dsqr := 0.0
		for _, d := range dis {
			dsqr += d * d
		}
		if dsqr == 0 {
			continue
		}
		dist := math.Sqrt(dsqr)
		// Restoring force toward the rest length.
		mag := -hb.k * (dist - hb.lengths[b])
		fi, fj := s.F(i), s.F(j)
		for d := 0; d < dim; d++ {
			fd := mag * dis[d] / dist
			fi[d] += fd
			fj[d] -= fd
		}
	}
}

// AngleChains penalizes curvature along bead triples: the middle bead is
// pulled toward the midpoint of its neighbors, the neighbors share the
// opposite force. Triples are addressed by global id.
type AngleChains struct {
	k   float64
	ids []int // global id triples (a, b, c), b is the middle bead
}

func NewAngleChains(k float64) *AngleChains {
	return &AngleChains{k: k}
}

// AddAngle registers the triple (a, b, c) with b as the middle bead.
func (ac *AngleChains) AddAngle(a, b, c int) {
	ac.ids = append(ac.ids, a, b, c)
}

func (ac *AngleChains) NumAngles() int { return len(ac.ids) / 3 }

func (ac *AngleChains) Interact(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	da := make([]float64, dim)
	dc := make([]float64, dim)
	for t := 0; t < len(ac.ids); t += 3 {
		ia := s.LocalOf(ac.ids[t])
		ib := s.LocalOf(ac.ids[t+1])
		ic := s.LocalOf(ac.ids[t+2])
		if ia == particle.NoID || ib == particle.NoID || ic == particle.NoID {
			continue
		}
		// Neighbor displacements from the middle bead, minimum-imaged.
		c.Displacement(s.X(ia), s.X(ib), da)
		c.Displacement(s.X(ic), s.X(ib), dc)
		fa, fb, fc := s.F(ia), s.F(ib), s.F(ic)
		for d := 0; d < dim; d++ {
			// Pull b toward the midpoint of a and c.
			f := ac.k * 0.5 * (da[d] + dc[d])
			fb[d] += f
			fa[d] -= 0.5 * f
			fc[d] -= 0.5 * f
		}
	}
}
