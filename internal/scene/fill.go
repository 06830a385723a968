package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/particle"
)

// Template describes the particles a builder creates.
type Template struct {
	Radius float64
	Mass   float64 // 0 means immovable
	Type   int
}

// Im converts the template mass to an inverse mass.
func (t Template) Im() float64 {
	if t.Mass <= 0 {
		return 0
	}
	return 1 / t.Mass
}

// Fill places particles at uniform random positions inside a region.
// Either Number or Phi (target packing fraction) selects the count; Phi
// wins when positive.
type Fill struct {
	Region   geom.Bounds
	Number   int
	Phi      float64
	Template Template
	// Speed scales normally distributed random velocities; 0 leaves
	// particles at rest.
	Speed float64
}

// Create adds the particles to the store and returns their global ids.
func (f Fill) Create(s *particle.Store, rng *rand.Rand) ([]int, error) {
	n := f.Number
	if f.Phi > 0 {
		if f.Phi > 1 {
			return nil, fmt.Errorf("scene: packing fraction %g > 1", f.Phi)
		}
		if f.Template.Radius <= 0 {
			return nil, fmt.Errorf("scene: packing fraction needs a positive radius")
		}
		vp := sphereVolume(f.Region.Dim(), f.Template.Radius)
		n = int(f.Phi * f.Region.Volume() / vp)
	}
	if n <= 0 {
		return nil, fmt.Errorf("scene: nothing to create")
	}

	dim := f.Region.Dim()
	s.Reserve(s.Size() + n)
	x := make([]float64, dim)
	v := make([]float64, dim)
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			x[d] = f.Region.Min[d] + rng.Float64()*f.Region.Wd(d)
			if f.Speed > 0 {
				v[d] = rng.NormFloat64() * f.Speed
			} else {
				v[d] = 0
			}
		}
		ids = append(ids, s.Add(x, v, f.Template.Radius, f.Template.Im(), f.Template.Type))
	}
	return ids, nil
}

// sphereVolume is the d-ball volume for the dimensions the engine runs in.
func sphereVolume(dim int, r float64) float64 {
	switch dim {
	case 1:
		return 2 * r
	case 2:
		return math.Pi * r * r
	case 3:
		return 4.0 / 3.0 * math.Pi * r * r * r
	default:
		// Gamma-function form for higher dimensions.
		return math.Pow(math.Pi, float64(dim)/2) / math.Gamma(float64(dim)/2+1) * math.Pow(r, float64(dim))
	}
}
