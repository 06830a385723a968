package forces_test

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

// TestElasticHeadOnCollision: two equal spheres meeting head on exchange
// velocities, conserving kinetic energy to within the stiff spring's
// discretization tolerance.
func TestElasticHeadOnCollision(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.3, 0.5}, []float64{1, 0}, 0.1, 1, 0)
	s.Add([]float64{0.7, 0.5}, []float64{-1, 0}, 0.1, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))

	hs := forces.NewHardSphere()
	hs.SetRepulsion(10000)
	reg := forces.NewRegistry(1)
	reg.Register(0, 0, hs)

	vv := integrators.NewVelocityVerlet()
	vv.SetAdjustDT(false)
	vv.SetDT(1e-5)
	// Wide skin and a tight motion budget: the fast approach must never
	// outrun the candidate margin between rebuilds.
	dom := domain.New()
	dom.SetSkinDepth(0.1)
	dom.SetMotionFactor(0.5)
	eng := sim.NewEngine(c, vv, dom, reg)

	keIn := record.KineticEnergy(c)
	require.InDelta(t, 1.0, keIn, 1e-12, "two particles at speed 1, mass 1")

	require.NoError(t, eng.Prepare(10))
	separated := false
	for i := 0; i < 40000; i++ {
		require.True(t, eng.StepN(1))
		// Done once they are flying apart outside contact range.
		if s.V(0)[0] < 0 && s.X(1)[0]-s.X(0)[0] > 0.25 {
			separated = true
			break
		}
	}
	require.NoError(t, eng.Finish())
	require.True(t, separated, "collision did not complete")

	assert.InDelta(t, -1.0, s.V(0)[0], 0.02, "velocities exchange")
	assert.InDelta(t, 1.0, s.V(1)[0], 0.02)
	assert.InDelta(t, 0.0, s.V(0)[1], 1e-9)

	keOut := record.KineticEnergy(c)
	assert.InDelta(t, keIn, keOut, 0.01*keIn, "kinetic energy conserved")
}
