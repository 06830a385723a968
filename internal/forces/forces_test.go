package forces

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/particle"
	"github.com/san-kum/granule/internal/sim"
)

func pairCtx(t *testing.T, x1, x2 []float64, sg float64) *sim.Ctx {
	t.Helper()
	s := particle.NewStore(2)
	s.Add(x1, []float64{0, 0}, sg, 1, 0)
	s.Add(x2, []float64{0, 0}, sg, 1, 0)
	return sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{10, 10}))
}

func TestHardSphereOverlapForce(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{1.15, 1}, 0.1)
	hs := NewHardSphere()
	hs.SetRepulsion(100)
	hs.SetDoVirial(true)
	hs.SetDoPotential(true)
	hs.AddPair(0, 1)
	hs.Compute(c)

	// Overlap 0.05, force 100*0.05 = 5 along -x on particle 0.
	s := c.Store
	assert.InDelta(t, -5.0, s.F(0)[0], 1e-9)
	assert.InDelta(t, 5.0, s.F(1)[0], 1e-9)
	assert.InDelta(t, 0.0, s.F(0)[1], 1e-12)

	// Newton's third law: total momentum transfer zero.
	assert.InDelta(t, 0.0, s.F(0)[0]+s.F(1)[0], 1e-12)

	assert.InDelta(t, 5*0.15, hs.Virial(), 1e-9)
	assert.InDelta(t, 0.5*100*0.05*0.05, hs.Potential(), 1e-9)
}

func TestHardSphereNoOverlapNoForce(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{2, 1}, 0.1)
	hs := NewHardSphere()
	hs.AddPair(0, 1)
	hs.Compute(c)
	assert.Equal(t, 0.0, c.Store.F(0)[0])
	assert.Equal(t, 0.0, c.Store.F(1)[0])
}

func TestHardSphereAccumulatorReset(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{1.1, 1}, 0.1)
	hs := NewHardSphere()
	hs.SetDoPotential(true)
	hs.AddPair(0, 1)
	hs.Compute(c)
	require.Greater(t, hs.Potential(), 0.0)
	hs.ResetAccumulators()
	assert.Equal(t, 0.0, hs.Potential())
	assert.Equal(t, 0.0, hs.Virial())
}

func TestLennardJonesForceZeroAtMinimum(t *testing.T) {
	// The 12-6 minimum sits at r = 2^(1/6) * sigma.
	sigma := 0.2
	r := math.Pow(2, 1.0/6.0) * sigma
	c := pairCtx(t, []float64{1, 1}, []float64{1 + r, 1}, 0.1)
	lj := NewLennardJones()
	lj.SetStrength(1)
	lj.AddPair(0, 1)
	lj.Compute(c)
	assert.InDelta(t, 0.0, c.Store.F(0)[0], 1e-9)
}

func TestLennardJonesRepelsInsideAttractsOutside(t *testing.T) {
	lj := NewLennardJones()
	lj.SetStrength(1)

	inside := pairCtx(t, []float64{1, 1}, []float64{1.19, 1}, 0.1)
	lj.AddPair(0, 1)
	lj.Compute(inside)
	assert.Negative(t, inside.Store.F(0)[0], "inside the minimum: repulsion")

	outside := pairCtx(t, []float64{1, 1}, []float64{1.3, 1}, 0.1)
	lj.Compute(outside)
	assert.Positive(t, outside.Store.F(0)[0], "outside the minimum: attraction")
}

func TestLennardJonesCutoff(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{1.6, 1}, 0.1)
	lj := NewLennardJones() // cutoff 2.5 * 0.2 = 0.5
	lj.AddPair(0, 1)
	lj.Compute(c)
	assert.Equal(t, 0.0, c.Store.F(0)[0])
}

func TestRegistryRouting(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{1, 1}, []float64{0, 0}, 0.1, 1, 0)
	s.Add([]float64{1.1, 1}, []float64{0, 0}, 0.1, 1, 1)
	s.Add([]float64{1.2, 1}, []float64{0, 0}, 0.1, 1, 2)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{10, 10}))

	hs := NewHardSphere()
	r := NewRegistry(3)
	r.Register(0, 1, hs)

	assert.True(t, r.TypeInteracts(0))
	assert.True(t, r.TypeInteracts(1))
	assert.False(t, r.TypeInteracts(2))
	assert.Equal(t, 1.0, r.MaxCutoff(0))
	assert.Equal(t, 0.0, r.MaxCutoff(2))
	assert.Equal(t, 1, r.NumInteractions())

	r.AddPair(c, 0, 1)
	r.AddPair(c, 1, 0) // reversed ordering routes too
	r.AddPair(c, 0, 2) // no plugin: dropped
	assert.Equal(t, 2, hs.NumPairs())

	r.ClearPairs()
	assert.Equal(t, 0, hs.NumPairs())
}

func TestRegistryScalars(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{1.1, 1}, 0.1)
	hs := NewHardSphere()
	r := NewRegistry(1)
	r.SetDoVirial(true)
	r.SetDoPotential(true)
	r.Register(0, 0, hs)
	r.AddPair(c, 0, 1)
	r.Interact(c)

	assert.Greater(t, r.Virial(), 0.0)
	assert.Greater(t, r.Potential(), 0.0)
	r.ResetAccumulators()
	assert.Equal(t, 0.0, r.Virial())
}

func TestHarmonicBondRestoring(t *testing.T) {
	c := pairCtx(t, []float64{1, 1}, []float64{1.5, 1}, 0.05)
	s := c.Store

	hb := NewHarmonicBonds(20)
	hb.AddBond(s.ID(0), s.ID(1), 0.3)
	require.Equal(t, 1, hb.NumBonds())
	hb.Interact(c)

	// Stretched by 0.2: particle 0 pulled toward particle 1 (+x).
	assert.InDelta(t, 20*0.2, s.F(0)[0], 1e-9)
	assert.InDelta(t, -20*0.2, s.F(1)[0], 1e-9)
}

func TestHarmonicBondSurvivesCompaction(t *testing.T) {
	s := particle.NewStore(2)
	doomed := s.Add([]float64{5, 5}, []float64{0, 0}, 0.05, 1, 0)
	a := s.Add([]float64{1, 1}, []float64{0, 0}, 0.05, 1, 0)
	b := s.Add([]float64{1.5, 1}, []float64{0, 0}, 0.05, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{10, 10}))

	hb := NewHarmonicBonds(20)
	hb.AddBond(a, b, 0.3)

	s.MarkForRemoval(s.LocalOf(doomed))
	s.Compact()

	hb.Interact(c)
	i := s.LocalOf(a)
	assert.InDelta(t, 20*0.2, s.F(i)[0], 1e-9, "bond follows global ids across moves")
}

func TestAngleChainStraightensBend(t *testing.T) {
	s := particle.NewStore(2)
	a := s.Add([]float64{1, 1}, []float64{0, 0}, 0.05, 1, 0)
	b := s.Add([]float64{1.2, 1.2}, []float64{0, 0}, 0.05, 1, 0)
	cc := s.Add([]float64{1.4, 1}, []float64{0, 0}, 0.05, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{10, 10}))

	ac := NewAngleChains(5)
	ac.AddAngle(a, b, cc)
	require.Equal(t, 1, ac.NumAngles())
	ac.Interact(c)

	ib := s.LocalOf(b)
	assert.Negative(t, c.Store.F(ib)[1], "middle bead pushed toward the line")
	assert.InDelta(t, 0.0, c.Store.F(ib)[0], 1e-12)

	// The reaction on the ends balances the middle bead force.
	fy := c.Store.F(s.LocalOf(a))[1] + c.Store.F(ib)[1] + c.Store.F(s.LocalOf(cc))[1]
	assert.InDelta(t, 0.0, fy, 1e-12, "no net force on the triple")
}
