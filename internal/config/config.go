package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDimensions  = 2
	DefaultDuration    = 10.0
	DefaultSkinDepth   = 0.025
	DefaultTargetSteps = 20
	DefaultRepulsion   = 10.0
)

// Config is the YAML run configuration. Zero values fall back to the
// engine defaults.
type Config struct {
	Dimensions int       `yaml:"dimensions"`
	Bounds     BoundsCfg `yaml:"bounds"`
	Boundary   []string  `yaml:"boundary"` // per axis: open|wrap|reflect|repulse

	Integrator  string  `yaml:"integrator"`  // velocity-verlet | overdamped
	Interaction string  `yaml:"interaction"` // hard-sphere | lennard-jones | none
	Duration    float64 `yaml:"duration"`
	Seed        int64   `yaml:"seed"`

	Dt          float64 `yaml:"dt"`
	MinDt       float64 `yaml:"min_dt"`
	MaxDt       float64 `yaml:"max_dt"`
	AdjustDt    *bool   `yaml:"adjust_dt"`
	TargetSteps int     `yaml:"target_steps"`
	StepDelay   int     `yaml:"step_delay"`

	SkinDepth        float64 `yaml:"skin_depth"`
	MotionFactor     float64 `yaml:"motion_factor"`
	MaxUpdateDelay   float64 `yaml:"max_update_delay"`
	SampleSize       int     `yaml:"sample_size"`
	UpdateDecision   string  `yaml:"update_decision"` // motion | steps
	UpdateDelaySteps int     `yaml:"update_delay_steps"`

	Repulsion   float64 `yaml:"repulsion"`
	Dissipation float64 `yaml:"dissipation"`
	Attraction  float64 `yaml:"attraction"`
	Damping     float64 `yaml:"damping"`
	Strength    float64 `yaml:"strength"`  // interaction stiffness / epsilon
	LJCutoff    float64 `yaml:"lj_cutoff"` // multiple of contact distance

	Fill    *FillCfg    `yaml:"fill"`
	Polymer *PolymerCfg `yaml:"polymer"`

	Observers    []string `yaml:"observers"` // pos | ke | pressure | number | boundary-energy
	FPS          float64  `yaml:"fps"`
	StartRecTime float64  `yaml:"start_rec"`
}

type BoundsCfg struct {
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`
}

type FillCfg struct {
	Number int     `yaml:"number"`
	Phi    float64 `yaml:"phi"`
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
	Type   int     `yaml:"type"`
	Speed  float64 `yaml:"speed"`
}

type PolymerCfg struct {
	Start   []float64 `yaml:"start"`
	Dir     []float64 `yaml:"dir"`
	Beads   int       `yaml:"beads"`
	Spacing float64   `yaml:"spacing"`
	Radius  float64   `yaml:"radius"`
	Mass    float64   `yaml:"mass"`
	Type    int       `yaml:"type"`
	BondK   float64   `yaml:"bond_k"`
	AngleK  float64   `yaml:"angle_k"`
}

// DefaultConfig is a small hard-sphere gas in a wrapped square box.
func DefaultConfig() *Config {
	return &Config{
		Dimensions: DefaultDimensions,
		Bounds: BoundsCfg{
			Min: []float64{0, 0},
			Max: []float64{4, 4},
		},
		Boundary:    []string{"wrap", "wrap"},
		Integrator:  "velocity-verlet",
		Interaction: "hard-sphere",
		Duration:    DefaultDuration,
		SkinDepth:   DefaultSkinDepth,
		TargetSteps: DefaultTargetSteps,
		Repulsion:   DefaultRepulsion,
		Fill: &FillCfg{
			Number: 256,
			Radius: 0.05,
			Mass:   1,
			Speed:  0.25,
		},
		Observers: []string{"pos", "ke"},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on illegal parameters.
func (c *Config) Validate() error {
	if c.Dimensions < 1 {
		return fmt.Errorf("config: dimensions must be >= 1, got %d", c.Dimensions)
	}
	if len(c.Bounds.Min) != c.Dimensions || len(c.Bounds.Max) != c.Dimensions {
		return fmt.Errorf("config: bounds must have %d entries", c.Dimensions)
	}
	for d := range c.Bounds.Min {
		if c.Bounds.Max[d] <= c.Bounds.Min[d] {
			return fmt.Errorf("config: empty bounds on axis %d", d)
		}
	}
	if len(c.Boundary) != 0 && len(c.Boundary) != c.Dimensions {
		return fmt.Errorf("config: boundary needs one entry per axis")
	}
	for _, b := range c.Boundary {
		switch b {
		case "open", "wrap", "periodic", "reflect", "repulse":
		default:
			return fmt.Errorf("config: unknown boundary %q", b)
		}
	}
	switch c.Integrator {
	case "", "velocity-verlet", "overdamped":
	default:
		return fmt.Errorf("config: unknown integrator %q", c.Integrator)
	}
	switch c.Interaction {
	case "", "hard-sphere", "lennard-jones", "none":
	default:
		return fmt.Errorf("config: unknown interaction %q", c.Interaction)
	}
	switch c.UpdateDecision {
	case "", "motion", "steps":
	default:
		return fmt.Errorf("config: unknown update decision %q", c.UpdateDecision)
	}
	if c.Fill != nil && c.Fill.Phi > 1 {
		return fmt.Errorf("config: packing fraction %g > 1", c.Fill.Phi)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	for _, o := range c.Observers {
		switch o {
		case "pos", "ke", "pressure", "number", "boundary-energy":
		default:
			return fmt.Errorf("config: unknown observer %q", o)
		}
	}
	return nil
}
