package record

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/granule/internal/sim"
)

// sampler gates recording to a target frames-per-second of simulated time.
// fps <= 0 records every step.
type sampler struct {
	fps     float64
	lastRec float64
	started bool
}

func (s *sampler) SetFPS(fps float64) { s.fps = fps }

func (s *sampler) due(t float64) bool {
	if s.fps <= 0 {
		return true
	}
	if !s.started || t-s.lastRec >= 1/s.fps {
		s.started = true
		s.lastRec = t
		return true
	}
	return false
}

// graphData is the shared implementation of scalar-graph observers: one row
// per sample, written as a CSV whose first row encodes
// (width, dims, frames, ntypes).
type graphData struct {
	sim.NopLifecycle
	sampler
	name string
	rows [][]float64
}

func (g *graphData) Name() string { return g.name }

func (g *graphData) record(row ...float64) {
	g.rows = append(g.rows, row)
}

func (g *graphData) Write(dir string) error {
	width := 0
	if len(g.rows) > 0 {
		width = len(g.rows[0])
	}
	return writeFrameCSV(dir, g.name, width, 0, len(g.rows), 0, g.rows)
}

// writeFrameCSV writes an observer's frames into its subdirectory with the
// standard (width, dims, frames, ntypes) first row.
func writeFrameCSV(dir, name string, width, dims, frames, ntypes int, rows [][]float64) error {
	sub := filepath.Join(dir, name)
	if err := os.MkdirAll(sub, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(sub, name+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	head := []string{
		strconv.Itoa(width),
		strconv.Itoa(dims),
		strconv.Itoa(frames),
		strconv.Itoa(ntypes),
	}
	if err := w.Write(head); err != nil {
		return err
	}
	rec := make([]string, 0, width)
	for _, row := range rows {
		rec = rec[:0]
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("record: write %s: %w", name, err)
	}
	return nil
}
