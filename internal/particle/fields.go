package particle

// Field accessors expose the underlying flat layout so tight loops can run
// over contiguous slices.

// X returns the position of particle i as a dim-length subslice.
func (s *Store) X(i int) []float64 {
	s.checkIndex(i)
	return s.vec[VecX][i*s.dim : (i+1)*s.dim]
}

// V returns the velocity of particle i.
func (s *Store) V(i int) []float64 {
	s.checkIndex(i)
	return s.vec[VecV][i*s.dim : (i+1)*s.dim]
}

// F returns the force accumulator of particle i.
func (s *Store) F(i int) []float64 {
	s.checkIndex(i)
	return s.vec[VecF][i*s.dim : (i+1)*s.dim]
}

// Xs returns the flat position array covering [0, size).
func (s *Store) Xs() []float64 { return s.vec[VecX][:s.size*s.dim] }

// Vs returns the flat velocity array covering [0, size).
func (s *Store) Vs() []float64 { return s.vec[VecV][:s.size*s.dim] }

// Fs returns the flat force array covering [0, size).
func (s *Store) Fs() []float64 { return s.vec[VecF][:s.size*s.dim] }

// Sgs returns the radius array covering [0, size).
func (s *Store) Sgs() []float64 { return s.sca[ScaSg][:s.size] }

// Ims returns the inverse-mass array covering [0, size).
func (s *Store) Ims() []float64 { return s.sca[ScaIm][:s.size] }

// Types returns the type array covering [0, size).
func (s *Store) Types() []int { return s.ig[IntType][:s.size] }

// IDs returns the global-id array covering [0, size).
func (s *Store) IDs() []int { return s.ig[IntID][:s.size] }

func (s *Store) Sg(i int) float64 { s.checkIndex(i); return s.sca[ScaSg][i] }
func (s *Store) Im(i int) float64 { s.checkIndex(i); return s.sca[ScaIm][i] }
func (s *Store) Type(i int) int   { s.checkIndex(i); return s.ig[IntType][i] }
func (s *Store) ID(i int) int     { s.checkIndex(i); return s.ig[IntID][i] }

// Alive reports whether slot i holds a live particle.
func (s *Store) Alive(i int) bool { return s.ig[IntType][i] >= 0 }

// RequestVectorField registers a named dim-vector field and returns its
// slot. Requesting an existing name returns the existing slot.
func (s *Store) RequestVectorField(name string) int {
	if k, ok := s.vecNames[name]; ok {
		return k
	}
	k := len(s.vec)
	s.vec = append(s.vec, make([]float64, s.capacity*s.dim))
	s.vecNames[name] = k
	return k
}

// RequestScalarField registers a named scalar field and returns its slot.
func (s *Store) RequestScalarField(name string) int {
	if k, ok := s.scaNames[name]; ok {
		return k
	}
	k := len(s.sca)
	s.sca = append(s.sca, make([]float64, s.capacity))
	s.scaNames[name] = k
	return k
}

// RequestIntField registers a named integer field and returns its slot.
func (s *Store) RequestIntField(name string) int {
	if k, ok := s.igNames[name]; ok {
		return k
	}
	k := len(s.ig)
	s.ig = append(s.ig, make([]int, s.capacity))
	s.igNames[name] = k
	return k
}

// VectorField returns the flat array of a registered vector field.
func (s *Store) VectorField(slot int) []float64 {
	return s.vec[slot][:s.size*s.dim]
}

// ScalarField returns the array of a registered scalar field.
func (s *Store) ScalarField(slot int) []float64 {
	return s.sca[slot][:s.size]
}

// IntField returns the array of a registered integer field.
func (s *Store) IntField(slot int) []int {
	return s.ig[slot][:s.size]
}

// ClearScalar zeros a named scalar field if it exists.
func (s *Store) ClearScalar(name string) {
	k, ok := s.scaNames[name]
	if !ok {
		return
	}
	c := s.sca[k][:s.size]
	for i := range c {
		c[i] = 0
	}
}
