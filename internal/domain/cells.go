package domain

import (
	"math"

	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/sim"
)

// Construct rebuilds the cell grid and the interaction pair lists from
// scratch. The grid is rebuilt atomically; between rebuilds it is read-only.
func (dm *Domain) Construct(c *sim.Ctx) {
	// Canonicalize the store: no halos, no holes, wrapped positions.
	c.Store.RemoveHalos()
	c.Store.Compact()
	c.WrapPositions()

	dm.calculateMaxSmallSigma(c)
	dm.minSmallCutoff = 2*dm.maxSmallSigma + dm.skinDepth

	dm.chooseDims(c)
	dm.binParticles(c)
	if c.Err() != nil {
		return
	}
	dm.fillSnapshot(c)

	dm.lastUpdate = c.Elapsed
	dm.stepsSinceRemake = 0
	dm.numberOfRemakes++
	dm.built = true

	if c.Forces != nil {
		c.Forces.ClearPairs()
		dm.enumeratePairs(c)
	}
	c.Store.SetNeedsRemake(false)
}

// calculateMaxSmallSigma finds the threshold radius below which a particle
// only needs to inspect adjacent cells: slightly above the largest
// interaction radius under the midpoint between mean and max.
func (dm *Domain) calculateMaxSmallSigma(c *sim.Ctx) {
	s := c.Store
	sigma, maxSigma := 0.0, 0.0
	count := 0
	for n := 0; n < s.Size(); n++ {
		typ := s.Type(n)
		if typ < 0 || (c.Forces != nil && !c.Forces.TypeInteracts(typ)) {
			continue
		}
		r := s.Sg(n) * dm.cutoffFactor(c, typ)
		sigma += r
		if r > maxSigma {
			maxSigma = r
		}
		count++
	}
	if count > 0 {
		sigma /= float64(count)
	} else if s.Size() > 0 {
		sigma = s.Sg(0) * dm.cutoffFactor(c, s.Type(0))
		maxSigma = sigma
	}

	threshold := 0.5 * (sigma + maxSigma)
	maxUnder := sigma
	if threshold != sigma {
		for n := 0; n < s.Size(); n++ {
			typ := s.Type(n)
			if typ < 0 || (c.Forces != nil && !c.Forces.TypeInteracts(typ)) {
				continue
			}
			r := s.Sg(n) * dm.cutoffFactor(c, typ)
			if r < threshold && maxUnder < r {
				maxUnder = r
			}
		}
	}
	dm.maxSmallSigma = smallSigmaFactor * maxUnder
}

func (dm *Domain) cutoffFactor(c *sim.Ctx, typ int) float64 {
	if c.Forces == nil {
		return 1
	}
	if cf := c.Forces.MaxCutoff(typ); cf > 0 {
		return cf
	}
	return 1
}

// chooseDims picks cell counts and widths so that w_k >= minSmallCutoff and
// dims_k * w_k equals the axis length exactly. Two cells on an axis are
// collapsed to one: with exactly two cells each cell is the other's
// neighbor in both directions, which double-counts periodic pairs.
func (dm *Domain) chooseDims(c *sim.Ctx) {
	dim := c.Dim
	if len(dm.dims) != dim {
		dm.dims = make([]int, dim)
		dm.widths = make([]float64, dim)
		dm.invW = make([]float64, dim)
	}
	for d := 0; d < dim; d++ {
		axis := c.Bounds.Wd(d)
		n := 1
		if dm.minSmallCutoff > 0 {
			n = int(axis / dm.minSmallCutoff)
		}
		if n < 1 {
			n = 1
		}
		if n == 2 {
			n = 1
		}
		dm.dims[d] = n
		dm.widths[d] = axis / float64(n)
		dm.invW[d] = 1 / dm.widths[d]
	}
	dm.halfOffsets = halfNeighborhood(dim)

	total := 1
	for _, n := range dm.dims {
		total *= n
	}
	if cap(dm.cells) < total {
		dm.cells = make([][]int, total)
	}
	dm.cells = dm.cells[:total]
	for i := range dm.cells {
		dm.cells[i] = dm.cells[i][:0]
	}
}

// halfNeighborhood returns the forward half of the 3^d offset cube,
// excluding the center, so every unordered cell pair is visited once.
func halfNeighborhood(dim int) [][]int {
	half := intPow(3, dim) / 2
	offsets := make([][]int, 0, half)
	for c := 0; c < half; c++ {
		o := make([]int, dim)
		c0 := c
		for d := 0; d < dim; d++ {
			o[d] = c0%3 - 1
			c0 /= 3
		}
		offsets = append(offsets, o)
	}
	return offsets
}

func intPow(b, e int) int {
	p := 1
	for i := 0; i < e; i++ {
		p *= b
	}
	return p
}

// binParticles inserts every live particle into the cell containing its
// position. A particle outside the bounds by more than one cell width is
// fatal.
func (dm *Domain) binParticles(c *sim.Ctx) {
	s := c.Store
	tuple := make([]int, c.Dim)
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		if !dm.cellTuple(c, s.X(n), tuple) {
			c.Fail(sim.ErrOutOfBounds)
			return
		}
		L := dm.tupleToLinear(tuple)
		dm.cells[L] = append(dm.cells[L], n)
	}
}

// cellTuple computes the cell coordinates for x, clamping positions within
// one cell width of the bounds (open and reflect axes may place particles
// slightly outside). Returns false for positions beyond that margin.
func (dm *Domain) cellTuple(c *sim.Ctx, x []float64, tuple []int) bool {
	for d := range tuple {
		k := int(math.Floor((x[d] - c.Bounds.Min[d]) * dm.invW[d]))
		if k < 0 {
			if x[d] < c.Bounds.Min[d]-dm.widths[d] {
				return false
			}
			k = 0
		} else if k >= dm.dims[d] {
			if x[d] > c.Bounds.Max[d]+dm.widths[d] {
				return false
			}
			k = dm.dims[d] - 1
		}
		tuple[d] = k
	}
	return true
}

func (dm *Domain) tupleToLinear(tuple []int) int {
	L := 0
	for d := 0; d < len(tuple); d++ {
		L = L*dm.dims[d] + tuple[d]
	}
	return L
}

func (dm *Domain) linearToTuple(L int, tuple []int) {
	for d := len(tuple) - 1; d >= 0; d-- {
		tuple[d] = L % dm.dims[d]
		L /= dm.dims[d]
	}
}

// enumeratePairs emits every candidate pair within cutoff to the force
// handler: in-cell pairs, forward-half neighbor cells for small particles,
// and a widened neighborhood for particles whose interaction radius
// exceeds maxSmallSigma.
func (dm *Domain) enumeratePairs(c *sim.Ctx) {
	dim := c.Dim
	tuple := make([]int, dim)
	other := make([]int, dim)
	neighbors := make([]int, 0, len(dm.halfOffsets))

	large := dm.largeParticles(c)

	for L := range dm.cells {
		cell := dm.cells[L]
		if len(cell) == 0 {
			continue
		}
		// In-cell pairs.
		for a := 0; a < len(cell); a++ {
			for b := a + 1; b < len(cell); b++ {
				dm.tryPair(c, cell[a], cell[b], large)
			}
		}
		// Forward-half neighbor cells, each visited once.
		dm.linearToTuple(L, tuple)
		neighbors = neighbors[:0]
		for _, off := range dm.halfOffsets {
			if !dm.shiftTuple(c, tuple, off, other) {
				continue
			}
			nl := dm.tupleToLinear(other)
			if nl == L || containsInt(neighbors, nl) {
				continue
			}
			neighbors = append(neighbors, nl)
		}
		for _, nl := range neighbors {
			for _, i := range cell {
				for _, j := range dm.cells[nl] {
					dm.tryPair(c, i, j, large)
				}
			}
		}
	}

	// Widened sweep for large particles.
	for i, reach := range large {
		if reach <= 0 {
			continue
		}
		dm.widePairs(c, i, reach, large)
	}
}

// largeParticles maps local index to interaction reach for particles whose
// reach exceeds maxSmallSigma; all others map to 0.
func (dm *Domain) largeParticles(c *sim.Ctx) []float64 {
	s := c.Store
	large := make([]float64, s.Size())
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		r := s.Sg(n) * dm.cutoffFactor(c, s.Type(n))
		if r > dm.maxSmallSigma {
			large[n] = r
		}
	}
	return large
}

// tryPair forwards (i, j) when both are small and within cutoff. Pairs
// involving a large particle are handled by the widened sweep.
func (dm *Domain) tryPair(c *sim.Ctx, i, j int, large []float64) {
	if large[i] > 0 || large[j] > 0 {
		return
	}
	dm.emitIfClose(c, i, j)
}

func (dm *Domain) emitIfClose(c *sim.Ctx, i, j int) {
	s := c.Store
	dim := c.Dim
	var buf [3]float64
	var dis []float64
	if dim <= len(buf) {
		dis = buf[:dim]
	} else {
		dis = make([]float64, dim)
	}
	c.Displacement(s.X(i), s.X(j), dis)
	dsqr := 0.0
	for _, d := range dis {
		dsqr += d * d
	}
	cut := s.Sg(i)*dm.cutoffFactor(c, s.Type(i)) + s.Sg(j)*dm.cutoffFactor(c, s.Type(j)) + dm.skinDepth
	if dsqr < cut*cut {
		c.Forces.AddPair(c, i, j)
	}
}

// widePairs scans all cells within ceil(reach/width) of particle i's cell.
// Large-large pairs are emitted only from the lower index to avoid double
// counting.
func (dm *Domain) widePairs(c *sim.Ctx, i int, reach float64, large []float64) {
	dim := c.Dim
	center := make([]int, dim)
	if !dm.cellTuple(c, c.Store.X(i), center) {
		c.Fail(sim.ErrOutOfBounds)
		return
	}
	radius := make([]int, dim)
	for d := 0; d < dim; d++ {
		radius[d] = int(math.Ceil(reach * dm.invW[d]))
	}

	tuple := make([]int, dim)
	visited := make(map[int]struct{})
	var scan func(d int)
	scan = func(d int) {
		if d == dim {
			nl := dm.tupleToLinear(tuple)
			if _, ok := visited[nl]; ok {
				return
			}
			visited[nl] = struct{}{}
			for _, j := range dm.cells[nl] {
				if j == i {
					continue
				}
				if large[j] > 0 && j < i {
					continue
				}
				dm.emitIfClose(c, i, j)
			}
			return
		}
		for o := -radius[d]; o <= radius[d]; o++ {
			k := center[d] + o
			if k < 0 || k >= dm.dims[d] {
				if c.BCs[d] != geom.Wrap {
					continue
				}
				k = ((k % dm.dims[d]) + dm.dims[d]) % dm.dims[d]
			}
			tuple[d] = k
			scan(d + 1)
		}
	}
	scan(0)
}

// shiftTuple adds off to tuple, wrapping on wrap axes and rejecting
// neighbors past open edges.
func (dm *Domain) shiftTuple(c *sim.Ctx, tuple, off, out []int) bool {
	for d := range tuple {
		k := tuple[d] + off[d]
		if k < 0 || k >= dm.dims[d] {
			if c.BCs[d] != geom.Wrap {
				return false
			}
			k = ((k % dm.dims[d]) + dm.dims[d]) % dm.dims[d]
		}
		out[d] = k
	}
	return true
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
