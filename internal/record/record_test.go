package record_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
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

func smallEngine(t *testing.T) *sim.Engine {
	t.Helper()
	s := particle.NewStore(2)
	s.Add([]float64{0.25, 0.5}, []float64{0.5, 0}, 0.05, 1, 0)
	s.Add([]float64{0.75, 0.5}, []float64{-0.5, 0}, 0.05, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))

	reg := forces.NewRegistry(1)
	reg.Register(0, 0, forces.NewHardSphere())
	reg.SetDoVirial(true)

	vv := integrators.NewVelocityVerlet()
	vv.SetAdjustDT(false)
	vv.SetDT(1e-3)
	return sim.NewEngine(c, vv, domain.New(), reg)
}

func TestKineticEnergyTrueConvention(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.5, 0.5}, []float64{3, 4}, 0.05, 0.5, 0) // mass 2, |v| 5
	s.Add([]float64{0.2, 0.2}, []float64{9, 9}, 0.05, 0, 0)   // immovable
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))

	// ½ · m · v² = 0.5 * 2 * 25.
	assert.InDelta(t, 25.0, record.KineticEnergy(c), 1e-12)
}

func TestWriteRunArtifacts(t *testing.T) {
	eng := smallEngine(t)
	eng.AddObserver(record.NewPositionData())
	eng.AddObserver(record.NewKineticEnergyData())
	eng.AddObserver(record.NewPressureData())
	eng.AddObserver(record.NewNumberData())

	require.NoError(t, eng.Run(context.Background(), 0.05))

	dir := t.TempDir()
	require.NoError(t, record.WriteRun(dir, eng, []string{"granule", "run"}))

	// info.csv: dimensions then min,max per axis.
	info, err := os.ReadFile(filepath.Join(dir, "info.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(info)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2", lines[0])
	assert.Equal(t, "0,1", lines[1])

	// run_summary.txt carries the command and the domain block.
	summary, err := os.ReadFile(filepath.Join(dir, "run_summary.txt"))
	require.NoError(t, err)
	text := string(summary)
	assert.Contains(t, text, "granule run")
	assert.Contains(t, text, "Domain:")
	assert.Contains(t, text, "Remakes:")
	assert.Contains(t, text, "Particles:")

	// Each observer wrote its subdirectory.
	for _, name := range []string{"Pos", "KE", "Pressure", "Number"} {
		_, err := os.Stat(filepath.Join(dir, name, name+".csv"))
		assert.NoError(t, err, name)
	}
}

func TestPositionCSVHeader(t *testing.T) {
	eng := smallEngine(t)
	pos := record.NewPositionData()
	eng.AddObserver(pos)
	require.NoError(t, eng.Run(context.Background(), 0.01))
	require.Greater(t, pos.NumFrames(), 0)

	dir := t.TempDir()
	require.NoError(t, pos.Write(dir))

	f, err := os.Open(filepath.Join(dir, "Pos", "Pos.csv"))
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	// First row encodes (width, dims, frames, ntypes).
	require.GreaterOrEqual(t, len(records), 2)
	assert.Equal(t, []string{"4", "2", records[0][2], "1"}, records[0])
	// Frame rows: time + width values per particle.
	assert.Len(t, records[1], 1+2*4)
}

func TestObserverFPSGate(t *testing.T) {
	eng := smallEngine(t)
	ke := record.NewKineticEnergyData()
	ke.SetFPS(100) // one frame per 0.01 simulated time
	eng.AddObserver(ke)
	require.NoError(t, eng.Run(context.Background(), 0.1))

	dir := t.TempDir()
	require.NoError(t, ke.Write(dir))
	f, err := os.Open(filepath.Join(dir, "KE", "KE.csv"))
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	frames := len(records) - 1
	// ~100 steps at dt 1e-3 with a 0.01 gate: about 11 frames, far fewer
	// than one per step.
	assert.Less(t, frames, 20)
	assert.Greater(t, frames, 5)
}

func TestSummaryWrittenOnAbort(t *testing.T) {
	s := particle.NewStore(2)
	s.Add([]float64{0.5, 0.5}, []float64{1, 0}, 0.05, 1, 0)
	c := sim.NewCtx(s, geom.MakeBounds([]float64{0, 0}, []float64{1, 1}))
	c.Total = 1
	vv := integrators.NewVelocityVerlet()
	vv.SetAdjustDT(false)
	vv.SetDT(1e-300) // forces precision loss
	eng := sim.NewEngine(c, vv, domain.New(), nil)

	err := eng.Run(context.Background(), 1)
	require.ErrorIs(t, err, sim.ErrPrecisionLoss)

	dir := t.TempDir()
	require.NoError(t, record.WriteRun(dir, eng, nil))
	_, statErr := os.Stat(filepath.Join(dir, "run_summary.txt"))
	assert.NoError(t, statErr)
}
