package particle

// Halo particles are read-only images of a primary particle placed at a
// shifted position (periodic images, or remote copies in a distributed
// run). They participate in force evaluation; UpdateHaloForces folds their
// accumulated force back into the primary.

// AddHalo appends a halo image of primary at position x and returns its
// local index. The halo shares the primary's radius, mass and type.
func (s *Store) AddHalo(primary int, x []float64) int {
	s.checkIndex(primary)
	typ := s.ig[IntType][primary]
	sg := s.sca[ScaSg][primary]
	im := s.sca[ScaIm][primary]
	v := make([]float64, s.dim)
	copy(v, s.V(primary))
	s.Add(x, v, sg, im, typ)
	halo := s.size - 1
	s.haloPairs = append(s.haloPairs, halo, primary)
	return halo
}

// NumHalos reports the number of registered halo images.
func (s *Store) NumHalos() int { return len(s.haloPairs) / 2 }

// UpdateHaloForces adds each halo's accumulated force to its primary and
// zeros the halo's accumulator.
func (s *Store) UpdateHaloForces() {
	for i := 0; i < len(s.haloPairs); i += 2 {
		halo, primary := s.haloPairs[i], s.haloPairs[i+1]
		hf := s.F(halo)
		pf := s.F(primary)
		for d := range hf {
			pf[d] += hf[d]
			hf[d] = 0
		}
	}
}

// RemoveHalos tombstones every halo image and clears the halo map. Callers
// compact afterwards, typically as part of a domain rebuild.
func (s *Store) RemoveHalos() {
	for i := 0; i < len(s.haloPairs); i += 2 {
		s.MarkForRemoval(s.haloPairs[i])
	}
	s.haloPairs = s.haloPairs[:0]
}
