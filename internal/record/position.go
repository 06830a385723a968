package record

import (
	"github.com/san-kum/granule/internal/sim"
)

// PositionData records per-frame particle positions, radii and types. Each
// frame row is the time followed by (x..., sg, type) per live particle.
type PositionData struct {
	sim.NopLifecycle
	sampler

	frames [][]float64
	dims   int
	ntypes int
}

func NewPositionData() *PositionData {
	return &PositionData{}
}

func (pd *PositionData) Name() string { return "Pos" }

func (pd *PositionData) PostStep(c *sim.Ctx) {
	if !pd.due(c.Elapsed) {
		return
	}
	s := c.Store
	dim := c.Dim
	pd.dims = dim
	if c.Forces != nil {
		pd.ntypes = c.Forces.NTypes()
	}
	row := make([]float64, 0, 1+s.Number()*(dim+2))
	row = append(row, c.Elapsed)
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		row = append(row, s.X(n)...)
		row = append(row, s.Sg(n), float64(s.Type(n)))
	}
	pd.frames = append(pd.frames, row)
}

func (pd *PositionData) NumFrames() int { return len(pd.frames) }

func (pd *PositionData) Write(dir string) error {
	// Width is the per-particle record length.
	width := pd.dims + 2
	return writeFrameCSV(dir, pd.Name(), width, pd.dims, len(pd.frames), pd.ntypes, pd.frames)
}
