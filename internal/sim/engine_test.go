package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/particle"
)

// stubIntegrator advances positions with a fixed dt and logs its phases.
type stubIntegrator struct {
	NopLifecycle
	dt  float64
	log *[]string
}

func (s *stubIntegrator) DT() float64      { return s.dt }
func (s *stubIntegrator) SetDT(dt float64) { s.dt = dt }

func (s *stubIntegrator) PreStep(c *Ctx) { s.logf("integrator.preStep") }

func (s *stubIntegrator) PreForces(c *Ctx) {
	s.logf("integrator.preForces")
	st := c.Store
	dim := c.Dim
	xs, vs := st.Xs(), st.Vs()
	for i := range xs[:st.Size()*dim] {
		xs[i] += s.dt * vs[i]
	}
}

func (s *stubIntegrator) PostForces(c *Ctx) { s.logf("integrator.postForces") }

func (s *stubIntegrator) logf(msg string) {
	if s.log != nil {
		*s.log = append(*s.log, msg)
	}
}

// stubHandler is a no-op neighbor structure that logs its phases.
type stubHandler struct {
	NopLifecycle
	log *[]string
}

func (h *stubHandler) Construct(c *Ctx) {}
func (h *stubHandler) PreForces(c *Ctx) {
	if h.log != nil {
		*h.log = append(*h.log, "handler.preForces")
	}
}

// countingObserver counts hook invocations.
type countingObserver struct {
	NopLifecycle
	preIntegrate, postStep, postIntegrate int
}

func (o *countingObserver) Name() string           { return "count" }
func (o *countingObserver) Write(dir string) error { return nil }
func (o *countingObserver) PreIntegrate(c *Ctx)    { o.preIntegrate++ }
func (o *countingObserver) PostStep(c *Ctx)        { o.postStep++ }
func (o *countingObserver) PostIntegrate(c *Ctx)   { o.postIntegrate++ }

// flagModifier clears the running flag after a number of steps.
type flagModifier struct {
	NopLifecycle
	after  int
	count  int
	remove bool
}

func (m *flagModifier) Remove() bool { return m.remove }
func (m *flagModifier) PostStep(c *Ctx) {
	m.count++
	if m.count >= m.after {
		c.Running = false
	}
}

func testEngine(t *testing.T, n int) (*Engine, *stubIntegrator) {
	t.Helper()
	s := particle.NewStore(2)
	for i := 0; i < n; i++ {
		s.Add([]float64{0.1 + 0.05*float64(i), 0.5}, []float64{1, 0}, 0.02, 1, 0)
	}
	c := NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))
	it := &stubIntegrator{dt: 0.1}
	return NewEngine(c, it, &stubHandler{}, nil), it
}

func TestEngineRunsRequestedTime(t *testing.T) {
	eng, _ := testEngine(t, 1)
	err := eng.Run(context.Background(), 1.0)
	require.NoError(t, err)
	c := eng.Ctx()
	// The loop terminates on the step after elapsed reaches the request.
	assert.InDelta(t, 1.1, c.Elapsed, 1e-9)
	assert.Equal(t, int64(11), c.Iter)
	assert.InDelta(t, c.Elapsed, c.Total, 1e-12)
}

func TestEngineEmptyStore(t *testing.T) {
	eng, _ := testEngine(t, 0)
	err := eng.Run(context.Background(), 2.0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, eng.Ctx().Total)
	assert.Equal(t, int64(0), eng.Ctx().Iter)
}

func TestEngineContextCancel(t *testing.T) {
	eng, _ := testEngine(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := eng.Run(ctx, 1.0)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestEnginePrecisionLoss(t *testing.T) {
	eng, it := testEngine(t, 1)
	it.dt = 1e-300
	eng.Ctx().Total = 1.0
	err := eng.Run(context.Background(), 1.0)
	assert.ErrorIs(t, err, ErrPrecisionLoss)
}

func TestEngineRunningFlagStops(t *testing.T) {
	eng, _ := testEngine(t, 1)
	eng.AddModifier(&flagModifier{after: 3})
	err := eng.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), eng.Ctx().Iter)
}

func TestEngineModifierReaping(t *testing.T) {
	eng, _ := testEngine(t, 1)
	m := &flagModifier{after: 1 << 30}
	eng.AddModifier(m)
	require.NoError(t, eng.Prepare(100))
	eng.StepN(2)
	assert.Equal(t, 2, m.count)

	m.remove = true
	eng.StepN(2)
	// Reaped at the end of the first of the two steps.
	assert.Equal(t, 3, m.count)
	require.NoError(t, eng.Finish())
}

func TestEngineObserverGating(t *testing.T) {
	eng, _ := testEngine(t, 1)
	obs := &countingObserver{}
	eng.AddObserver(obs)
	eng.Ctx().StartRecTime = 0.55

	err := eng.Run(context.Background(), 1.0)
	require.NoError(t, err)

	assert.Equal(t, 1, obs.preIntegrate, "pre-integrate always fires")
	assert.Equal(t, 1, obs.postIntegrate)
	// Steps before the start-record time are skipped.
	assert.Equal(t, 5, obs.postStep)
}

func TestEngineStepEndWrap(t *testing.T) {
	eng, _ := testEngine(t, 1)
	c := eng.Ctx()
	c.Store.X(0)[0] = 0.95
	require.NoError(t, eng.Prepare(10))
	eng.StepN(1)
	require.NoError(t, eng.Finish())
	assert.InDelta(t, 0.05, c.Store.X(0)[0], 1e-9, "wrap applied at step end")
}

func TestEnginePhaseOrder(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.5, 0.5}, []float64{0, 0}, 0.02, 1, 0)
	c := NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))
	var log []string
	it := &stubIntegrator{dt: 0.1, log: &log}
	h := &stubHandler{log: &log}
	eng := NewEngine(c, it, h, nil)

	require.NoError(t, eng.Prepare(10))
	eng.StepN(1)
	require.NoError(t, eng.Finish())

	assert.Equal(t, []string{
		"integrator.preStep",
		"integrator.preForces",
		"handler.preForces",
		"integrator.postForces",
	}, log)
}

func TestEngineNegativeTime(t *testing.T) {
	eng, _ := testEngine(t, 1)
	err := eng.Run(context.Background(), -1)
	assert.ErrorIs(t, err, ErrBadConfig)
}
