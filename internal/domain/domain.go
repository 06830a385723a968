package domain

import (
	"math"

	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/sim"
)

// UpdateDecision selects how the domain decides that pair lists are stale.
type UpdateDecision int

const (
	// ByMotion rebuilds when sampled particle motion threatens the skin.
	ByMotion UpdateDecision = iota
	// ByStepCount rebuilds every UpdateDelaySteps steps unconditionally.
	ByStepCount
)

// Defaults. MaxUpdateDelay bounds the time between motion checks.
const (
	DefaultSkinDepth        = 0.025
	DefaultMotionFactor     = 1.0
	DefaultMvRatioTolerance = 0.95
	DefaultMaxUpdateDelay   = 0.025
	initialUpdateDelay      = 1e-4
	smallSigmaFactor        = 1.025
)

// Domain partitions the simulation bounds into a regular grid of cells,
// bins particles by position, and routes candidate interaction pairs to the
// force handler. It decides when the pair lists must be rebuilt.
type Domain struct {
	sim.NopLifecycle

	skinDepth        float64
	motionFactor     float64
	mvRatioTolerance float64
	maxUpdateDelay   float64
	updateDelay      float64

	decision         UpdateDecision
	updateDelaySteps int
	stepsSinceRemake int
	sampleSize       int

	lastCheck  float64
	lastUpdate float64

	dims   []int
	widths []float64
	invW   []float64
	cells  [][]int

	// forward half of the 3^d neighborhood, as per-axis offsets
	halfOffsets [][]int

	maxSmallSigma  float64
	minSmallCutoff float64

	// positions at the last rebuild, sampled from the tail of the
	// particle range; consumed by the motion test
	snapshot  []float64
	snapshotN int

	numberOfRemakes int
	missedTarget    int
	aveMiss         float64

	built bool
}

// New creates a domain with default rebuild tuning.
func New() *Domain {
	return &Domain{
		skinDepth:        DefaultSkinDepth,
		motionFactor:     DefaultMotionFactor,
		mvRatioTolerance: DefaultMvRatioTolerance,
		maxUpdateDelay:   DefaultMaxUpdateDelay,
		updateDelay:      initialUpdateDelay,
	}
}

func (dm *Domain) SetSkinDepth(s float64) {
	if s > 0 {
		dm.skinDepth = s
	}
}

func (dm *Domain) SetMotionFactor(f float64) {
	if f > 0 && f <= 1 {
		dm.motionFactor = f
	}
}

func (dm *Domain) SetMvRatioTolerance(t float64) {
	if t > 0 && t <= 1 {
		dm.mvRatioTolerance = t
	}
}

func (dm *Domain) SetMaxUpdateDelay(d float64) {
	if d > 0 {
		dm.maxUpdateDelay = d
	}
}

func (dm *Domain) SetSampleSize(n int) { dm.sampleSize = n }

func (dm *Domain) SetUpdateDecision(d UpdateDecision) { dm.decision = d }

func (dm *Domain) SetUpdateDelaySteps(n int) {
	if n > 0 {
		dm.updateDelaySteps = n
	}
}

func (dm *Domain) SkinDepth() float64   { return dm.skinDepth }
func (dm *Domain) Cutoff() float64      { return dm.minSmallCutoff }
func (dm *Domain) Remakes() int         { return dm.numberOfRemakes }
func (dm *Domain) MissedTarget() int    { return dm.missedTarget }
func (dm *Domain) Dims() []int          { return dm.dims }
func (dm *Domain) Widths() []float64    { return dm.widths }
func (dm *Domain) UpdateDelay() float64 { return dm.updateDelay }

// AverageMiss is the mean motion ratio over all missed rebuild targets.
func (dm *Domain) AverageMiss() float64 {
	if dm.missedTarget == 0 {
		return 0
	}
	return dm.aveMiss / float64(dm.missedTarget)
}

// DomainStats reports the summary block for the run summary file.
func (dm *Domain) DomainStats() sim.DomainStats {
	return sim.DomainStats{
		Dims:         append([]int(nil), dm.dims...),
		Widths:       append([]float64(nil), dm.widths...),
		Cutoff:       dm.minSmallCutoff,
		SkinDepth:    dm.skinDepth,
		Remakes:      dm.numberOfRemakes,
		MissedTarget: dm.missedTarget,
		AverageMiss:  dm.AverageMiss(),
	}
}

// PreIntegrate resets the rebuild clock and performs the initial build.
func (dm *Domain) PreIntegrate(c *sim.Ctx) {
	dm.lastCheck = -1
	dm.lastUpdate = -1
	dm.updateDelay = initialUpdateDelay
	dm.stepsSinceRemake = 0
	dm.Construct(c)
}

// PreForces keeps the pair lists valid: it rebuilds when the store raised
// needs-remake, when the motion test flags that the skin may be breached,
// or on the fixed step cadence.
func (dm *Domain) PreForces(c *sim.Ctx) {
	dm.stepsSinceRemake++
	if c.Store.Number() < 1 {
		return
	}
	switch {
	case c.Store.NeedsRemake():
		dm.Construct(c)
	case dm.decision == ByMotion && c.Elapsed-dm.lastUpdate > dm.updateDelay:
		if c.Forces != nil && c.Forces.NumInteractions() > 0 && dm.checkNeedsRemake(c) {
			dm.Construct(c)
		}
	case dm.decision == ByStepCount && dm.updateDelaySteps > 0 && dm.updateDelaySteps <= dm.stepsSinceRemake:
		dm.Construct(c)
	}
}

// checkNeedsRemake samples particle motion against the snapshot and adapts
// the next check delay. Reports whether a rebuild is due.
func (dm *Domain) checkNeedsRemake(c *sim.Ctx) bool {
	dm.lastCheck = c.Elapsed
	// Don't go too long without updating.
	if dm.lastCheck-dm.lastUpdate > dm.maxUpdateDelay {
		return true
	}
	maxMotion := dm.maxMotion(c)
	motionRatio := maxMotion / dm.skinDepth
	if motionRatio <= 0 {
		dm.updateDelay = dm.maxUpdateDelay
		return false
	}
	dm.updateDelay = math.Min(dm.maxUpdateDelay,
		dm.mvRatioTolerance*dm.motionFactor*(dm.lastCheck-dm.lastUpdate)/motionRatio)
	if motionRatio > dm.motionFactor {
		dm.missedTarget++
		dm.aveMiss += motionRatio
	}
	return motionRatio > dm.mvRatioTolerance*dm.motionFactor
}

// maxMotion is the largest sampled displacement since the last rebuild.
// The worst case of two such particles approaching head-on is folded into
// the tolerance rather than doubled here. Straight subtraction is used;
// distances beyond (10·skin)² are wrap artifacts and discarded.
func (dm *Domain) maxMotion(c *sim.Ctx) float64 {
	maxPlausible := 10 * dm.skinDepth * 10 * dm.skinDepth
	number := c.Store.Number()
	dim := c.Dim
	maxDSqr := 0.0
	for i := 0; i < dm.snapshotN; i++ {
		n := number - 1 - i
		if n < 0 {
			break
		}
		dsqr := geom.DistSqrNoWrap(dm.snapshot[i*dim:(i+1)*dim], c.Store.X(n))
		if dsqr < maxPlausible && dsqr > maxDSqr {
			maxDSqr = dsqr
		}
	}
	return math.Sqrt(maxDSqr)
}

// fillSnapshot records current positions for the motion test. Sampling
// starts at the tail of the particle range so late additions are included.
func (dm *Domain) fillSnapshot(c *sim.Ctx) {
	number := c.Store.Number()
	samples := number
	if dm.sampleSize > 0 && dm.sampleSize < samples {
		samples = dm.sampleSize
	}
	dim := c.Dim
	if cap(dm.snapshot) < samples*dim {
		dm.snapshot = make([]float64, samples*dim)
	}
	dm.snapshot = dm.snapshot[:samples*dim]
	dm.snapshotN = samples
	for i := 0; i < samples; i++ {
		copy(dm.snapshot[i*dim:(i+1)*dim], c.Store.X(number-1-i))
	}
	// With few particles, use a tighter move tolerance.
	if samples < 10 {
		dm.mvRatioTolerance = 0.9
	}
}
