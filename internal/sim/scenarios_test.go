package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/granule/internal/domain"
	"github.com/san-kum/granule/internal/forces"
	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/integrators"
	"github.com/san-kum/granule/internal/particle"
	"github.com/san-kum/granule/internal/record"
	"github.com/san-kum/granule/internal/sim"
)

// TestFreeParticleUnderWrap: one particle drifting across a periodic box
// re-enters with continuous velocity.
func TestFreeParticleUnderWrap(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.9, 0.5}, []float64{1, 0}, 0.05, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))

	vv := integrators.NewVelocityVerlet()
	vv.SetAdjustDT(false)
	vv.SetDT(0.1)
	eng := sim.NewEngine(c, vv, domain.New(), nil)

	require.NoError(t, eng.Prepare(100))
	require.True(t, eng.StepN(1))
	assert.InDelta(t, 0.0, s.X(0)[0], 1e-9)
	assert.InDelta(t, 0.5, s.X(0)[1], 1e-12)
	assert.Equal(t, []float64{1, 0}, s.V(0))

	eng.StepN(9)
	require.NoError(t, eng.Finish())
	assert.InDelta(t, 0.9, s.X(0)[0], 1e-9)
	assert.Equal(t, []float64{1, 0}, s.V(0))
}

// TestRepulseBoundaryEnergy: a particle rebounding off a repulse wall
// leaves with its kinetic energy intact (no dissipation), and the boundary
// energy at the apex matches the spring energy of the overshoot.
func TestRepulseBoundaryEnergy(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.01, 0.5}, []float64{-2, 0}, 0.005, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))
	c.SetAllBCs(geom.Repulse)
	c.Repulsion = 1000
	c.Dissipation = 0

	vv := integrators.NewVelocityVerlet()
	vv.SetAdjustDT(false)
	vv.SetDT(1e-5)
	eng := sim.NewEngine(c, vv, domain.New(), nil)

	keIn := record.KineticEnergy(c)

	require.NoError(t, eng.Prepare(10))
	minX := 1.0
	apexEnergy := 0.0
	for i := 0; i < 20000; i++ {
		require.True(t, eng.StepN(1))
		x := s.X(0)[0]
		if x < minX {
			minX = x
			apexEnergy = c.BoundaryEnergy
		}
		if x > 0.01 && s.V(0)[0] > 0 {
			break
		}
	}
	require.NoError(t, eng.Finish())

	require.Less(t, minX, 0.0, "particle must overshoot the wall")
	overshoot := -minX
	assert.InDelta(t, 0.5*1000*overshoot*overshoot, apexEnergy,
		0.02*apexEnergy, "apex boundary energy is the spring energy")

	keOut := record.KineticEnergy(c)
	assert.InDelta(t, keIn, keOut, 0.01*keIn, "no dissipation, energy conserved")
	assert.Greater(t, s.V(0)[0], 0.0, "particle rebounds")
}

// TestCheckpointResumeDeterminism: with dt adjustment off, n steps in one
// run equal n steps split across a checkpoint and resume, bit for bit. The
// colliding pairs are isolated so every force accumulator receives the
// same contributions regardless of pair-list ordering.
func TestCheckpointResumeDeterminism(t *testing.T) {
	build := func() (*sim.Engine, *particle.Store) {
		s := particle.NewStore(2)
		for _, y := range []float64{0.2, 0.5, 0.8} {
			s.Add([]float64{0.3, y}, []float64{2, 0}, 0.04, 1, 0)
			s.Add([]float64{0.7, y}, []float64{-2, 0}, 0.04, 1, 0)
		}
		c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))

		reg := forces.NewRegistry(1)
		reg.Register(0, 0, forces.NewHardSphere())

		vv := integrators.NewVelocityVerlet()
		vv.SetAdjustDT(false)
		vv.SetDT(1e-3)
		return sim.NewEngine(c, vv, domain.New(), reg), s
	}

	engA, storeA := build()
	require.NoError(t, engA.Prepare(100))
	engA.StepN(100)
	require.NoError(t, engA.Finish())

	engB, storeB := build()
	require.NoError(t, engB.Prepare(100))
	engB.StepN(90) // checkpoint mid-collision
	require.NoError(t, engB.Finish())
	require.NoError(t, engB.Prepare(100))
	engB.StepN(10)
	require.NoError(t, engB.Finish())

	xa, xb := storeA.Xs(), storeB.Xs()
	require.Equal(t, len(xa), len(xb))
	for i := range xa {
		if xa[i] != xb[i] {
			t.Fatalf("state diverged at component %d: %v != %v", i, xa[i], xb[i])
		}
	}
	va, vb := storeA.Vs(), storeB.Vs()
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("velocity diverged at component %d", i)
		}
	}
}
