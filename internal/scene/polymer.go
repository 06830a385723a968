package scene

import (
	"fmt"

	"github.com/san-kum/granule/internal/forces"
	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/particle"
)

// Polymer lays a chain of beads along a direction, linked by harmonic
// bonds, with optional curvature stiffness along consecutive triples.
type Polymer struct {
	Start    []float64
	Dir      []float64 // need not be normalized
	Beads    int
	Spacing  float64
	Template Template
	BondK    float64
	AngleK   float64 // 0 disables the angle chain
}

// Create adds the beads and registers their bonds. The returned bonded
// interactions must be added to the engine.
func (p Polymer) Create(s *particle.Store) ([]int, *forces.HarmonicBonds, *forces.AngleChains, error) {
	if p.Beads < 2 {
		return nil, nil, nil, fmt.Errorf("scene: polymer needs at least 2 beads, got %d", p.Beads)
	}
	if len(p.Start) != len(p.Dir) {
		return nil, nil, nil, fmt.Errorf("scene: polymer start/dir dimension mismatch")
	}
	if p.Spacing <= 0 {
		return nil, nil, nil, fmt.Errorf("scene: polymer spacing must be positive")
	}
	norm := geom.Norm(p.Dir)
	if norm == 0 {
		return nil, nil, nil, fmt.Errorf("scene: polymer direction is zero")
	}

	dim := len(p.Start)
	x := make([]float64, dim)
	v := make([]float64, dim)
	ids := make([]int, 0, p.Beads)
	for b := 0; b < p.Beads; b++ {
		for d := 0; d < dim; d++ {
			x[d] = p.Start[d] + float64(b)*p.Spacing*p.Dir[d]/norm
		}
		ids = append(ids, s.Add(x, v, p.Template.Radius, p.Template.Im(), p.Template.Type))
	}

	bonds := forces.NewHarmonicBonds(p.BondK)
	for b := 0; b+1 < len(ids); b++ {
		bonds.AddBond(ids[b], ids[b+1], p.Spacing)
	}

	var angles *forces.AngleChains
	if p.AngleK > 0 && p.Beads >= 3 {
		angles = forces.NewAngleChains(p.AngleK)
		for b := 0; b+2 < len(ids); b++ {
			angles.AddAngle(ids[b], ids[b+1], ids[b+2])
		}
	}
	return ids, bonds, angles, nil
}
