package geom

import "math"

// BCFlag selects the boundary condition applied along one axis.
type BCFlag int

const (
	Open BCFlag = iota
	Wrap
	Reflect
	Repulse
)

func (f BCFlag) String() string {
	switch f {
	case Open:
		return "open"
	case Wrap:
		return "wrap"
	case Reflect:
		return "reflect"
	case Repulse:
		return "repulse"
	}
	return "unknown"
}

// ParseBC maps a config string to a boundary flag.
func ParseBC(s string) (BCFlag, bool) {
	switch s {
	case "open":
		return Open, true
	case "wrap", "periodic":
		return Wrap, true
	case "reflect":
		return Reflect, true
	case "repulse":
		return Repulse, true
	}
	return Open, false
}

// MinimumImage folds the displacement dis into the nearest periodic image
// on every wrap axis.
func MinimumImage(dis []float64, b Bounds, bcs []BCFlag) {
	for d := range dis {
		if bcs[d] == Wrap {
			dx := b.Wd(d) - math.Abs(dis[d])
			if dx < math.Abs(dis[d]) {
				if dis[d] > 0 {
					dis[d] = -dx
				} else {
					dis[d] = dx
				}
			}
		}
	}
}

// Displacement writes x-y into dis, minimum-imaged on wrap axes.
func Displacement(x, y, dis []float64, b Bounds, bcs []BCFlag) {
	for d := range dis {
		dis[d] = x[d] - y[d]
	}
	MinimumImage(dis, b, bcs)
}

// DistSqrNoWrap is the straight squared distance between x and y, ignoring
// periodicity. Used by the domain motion test, where wrap artifacts are
// filtered by magnitude instead.
func DistSqrNoWrap(x, y []float64) float64 {
	sum := 0.0
	for d := range x {
		ds := x[d] - y[d]
		sum += ds * ds
	}
	return sum
}

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	sum := 0.0
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}
