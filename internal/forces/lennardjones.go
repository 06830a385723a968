package forces

import (
	"math"

	"github.com/san-kum/granule/internal/sim"
)

// Lennard-Jones defaults: epsilon strength and the cutoff as a multiple of
// the contact distance.
const (
	DefaultLJStrength = 0.01
	DefaultLJCutoff   = 2.5
)

// LennardJones applies the 12-6 potential, truncated and shifted at the
// cutoff so the potential is continuous there.
type LennardJones struct {
	pairAccumulator
	strength float64
	cutoff   float64
}

func NewLennardJones() *LennardJones {
	return &LennardJones{strength: DefaultLJStrength, cutoff: DefaultLJCutoff}
}

// SetStrength sets the epsilon parameter. Must be non-negative.
func (lj *LennardJones) SetStrength(e float64) {
	if e >= 0 {
		lj.strength = e
	}
}

// SetCutoff sets the cutoff in units of contact distance. Must be at
// least 1.
func (lj *LennardJones) SetCutoff(cf float64) {
	if cf >= 1 {
		lj.cutoff = cf
	}
}

func (lj *LennardJones) Cutoff() float64 { return lj.cutoff }

func (lj *LennardJones) Compute(c *sim.Ctx) {
	s := c.Store
	dim := c.Dim
	dis := make([]float64, dim)

	// Potential shift so V(cutoff) = 0.
	ic6 := math.Pow(1/lj.cutoff, 6)
	vShift := 4 * lj.strength * (ic6*ic6 - ic6)

	for p := 0; p < len(lj.pairs); p += 2 {
		i, j := lj.pairs[p], lj.pairs[p+1]
		if !s.Alive(i) || !s.Alive(j) {
			continue
		}
		c.Displacement(s.X(i), s.X(j), dis)
		dsqr := 0.0
		for _, d := range dis {
			dsqr += d * d
		}
		sigma := s.Sg(i) + s.Sg(j)
		maxR := lj.cutoff * sigma
		if dsqr >= maxR*maxR || dsqr == 0 {
			continue
		}
		dist := math.Sqrt(dsqr)
		inv := sigma / dist
		inv6 := inv * inv * inv * inv * inv * inv
		inv12 := inv6 * inv6
		// F(r) = 24 eps (2 (s/r)^12 - (s/r)^6) / r, along the normal.
		mag := 24 * lj.strength * (2*inv12 - inv6) / dist
		fi, fj := s.F(i), s.F(j)
		for d := 0; d < dim; d++ {
			fd := mag * dis[d] / dist
			fi[d] += fd
			fj[d] -= fd
		}
		if lj.doVirial {
			lj.virial += mag * dist
		}
		if lj.doPotential {
			lj.potential += 4*lj.strength*(inv12-inv6) - vShift
		}
	}
}
