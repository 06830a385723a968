package config

// Presets are ready-to-run configurations selectable by name.
var Presets = map[string]*Config{
	"gas": {
		Dimensions:  2,
		Bounds:      BoundsCfg{Min: []float64{0, 0}, Max: []float64{4, 4}},
		Boundary:    []string{"wrap", "wrap"},
		Integrator:  "velocity-verlet",
		Interaction: "hard-sphere",
		Duration:    10,
		SkinDepth:   DefaultSkinDepth,
		Fill:        &FillCfg{Number: 512, Radius: 0.05, Mass: 1, Speed: 0.25},
		Observers:   []string{"pos", "ke", "pressure"},
	},
	"packing": {
		Dimensions:  2,
		Bounds:      BoundsCfg{Min: []float64{0, 0}, Max: []float64{3, 3}},
		Boundary:    []string{"repulse", "repulse"},
		Integrator:  "overdamped",
		Interaction: "hard-sphere",
		Duration:    5,
		Fill:        &FillCfg{Phi: 0.6, Radius: 0.05, Mass: 1},
		Observers:   []string{"pos", "number", "boundary-energy"},
	},
	"droplet": {
		Dimensions:  2,
		Bounds:      BoundsCfg{Min: []float64{0, 0}, Max: []float64{6, 6}},
		Boundary:    []string{"wrap", "wrap"},
		Integrator:  "velocity-verlet",
		Interaction: "lennard-jones",
		Duration:    20,
		Strength:    0.01,
		Attraction:  0.05,
		Fill:        &FillCfg{Number: 400, Radius: 0.05, Mass: 1, Speed: 0.1},
		Observers:   []string{"pos", "ke"},
	},
	"polymer": {
		Dimensions:  2,
		Bounds:      BoundsCfg{Min: []float64{0, 0}, Max: []float64{5, 5}},
		Boundary:    []string{"wrap", "wrap"},
		Integrator:  "velocity-verlet",
		Interaction: "hard-sphere",
		Duration:    15,
		Polymer: &PolymerCfg{
			Start:   []float64{0.5, 2.5},
			Dir:     []float64{1, 0},
			Beads:   24,
			Spacing: 0.12,
			Radius:  0.05,
			Mass:    1,
			BondK:   25,
			AngleK:  2,
		},
		Observers: []string{"pos", "ke"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
