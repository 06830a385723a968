package record

import (
	"github.com/san-kum/granule/internal/sim"
)

// KineticEnergy computes the true kinetic energy of the live particles,
// ½·m·v² summed over all components. Immovable particles (Im == 0) carry
// none.
func KineticEnergy(c *sim.Ctx) float64 {
	s := c.Store
	dim := c.Dim
	vs := s.Vs()
	ims := s.Ims()
	ke := 0.0
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) || ims[n] == 0 {
			continue
		}
		vsqr := 0.0
		for d := 0; d < dim; d++ {
			v := vs[n*dim+d]
			vsqr += v * v
		}
		ke += 0.5 * vsqr / ims[n]
	}
	return ke
}

// KineticEnergyData graphs total kinetic energy against time.
type KineticEnergyData struct {
	graphData
}

func NewKineticEnergyData() *KineticEnergyData {
	return &KineticEnergyData{graphData{name: "KE"}}
}

func (ke *KineticEnergyData) PostStep(c *sim.Ctx) {
	if !ke.due(c.Elapsed) {
		return
	}
	ke.record(c.Elapsed, KineticEnergy(c))
}

// PressureData graphs pressure from the kinetic and virial contributions:
// P = (2·KE + W) / (d·V).
type PressureData struct {
	graphData
}

func NewPressureData() *PressureData {
	return &PressureData{graphData{name: "Pressure"}}
}

func (pr *PressureData) PostStep(c *sim.Ctx) {
	if !pr.due(c.Elapsed) {
		return
	}
	vol := c.Bounds.Volume()
	if vol == 0 || c.Forces == nil {
		return
	}
	p := (2*KineticEnergy(c) + c.Forces.Virial()) / (float64(c.Dim) * vol)
	pr.record(c.Elapsed, p)
}

// NumberData graphs the live particle count against time.
type NumberData struct {
	graphData
}

func NewNumberData() *NumberData {
	return &NumberData{graphData{name: "Number"}}
}

func (nd *NumberData) PostStep(c *sim.Ctx) {
	if !nd.due(c.Elapsed) {
		return
	}
	nd.record(c.Elapsed, float64(c.Store.Number()))
}

// BoundaryEnergyData graphs the energy stored in repulse boundaries.
type BoundaryEnergyData struct {
	graphData
}

func NewBoundaryEnergyData() *BoundaryEnergyData {
	return &BoundaryEnergyData{graphData{name: "BoundaryEnergy"}}
}

func (be *BoundaryEnergyData) PostStep(c *sim.Ctx) {
	if !be.due(c.Elapsed) {
		return
	}
	be.record(c.Elapsed, c.BoundaryEnergy)
}
