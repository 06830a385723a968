package main

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/granule/internal/config"
	"github.com/san-kum/granule/internal/domain"
	"github.com/san-kum/granule/internal/forces"
	"github.com/san-kum/granule/internal/geom"
	"github.com/san-kum/granule/internal/integrators"
	"github.com/san-kum/granule/internal/particle"
	"github.com/san-kum/granule/internal/record"
	"github.com/san-kum/granule/internal/scene"
	"github.com/san-kum/granule/internal/sim"
)

// buildEngine assembles a ready-to-run engine from a validated config.
func buildEngine(cfg *config.Config) (*sim.Engine, error) {
	store := particle.NewStore(cfg.Dimensions)
	bounds := geom.MakeBounds(cfg.Bounds.Min, cfg.Bounds.Max)
	c := sim.NewCtx(store, bounds)

	for d, name := range cfg.Boundary {
		bc, ok := geom.ParseBC(name)
		if !ok {
			return nil, fmt.Errorf("unknown boundary %q", name)
		}
		c.BCs[d] = bc
	}
	if cfg.Repulsion > 0 {
		c.Repulsion = cfg.Repulsion
	}
	c.Dissipation = cfg.Dissipation
	c.CenterAttraction = cfg.Attraction
	c.StartRecTime = cfg.StartRecTime

	ntypes := 1
	if cfg.Fill != nil && cfg.Fill.Type+1 > ntypes {
		ntypes = cfg.Fill.Type + 1
	}
	if cfg.Polymer != nil && cfg.Polymer.Type+1 > ntypes {
		ntypes = cfg.Polymer.Type + 1
	}

	registry := forces.NewRegistry(ntypes)
	switch cfg.Interaction {
	case "", "hard-sphere":
		hs := forces.NewHardSphere()
		if cfg.Strength > 0 {
			hs.SetRepulsion(cfg.Strength)
		}
		registerAll(registry, ntypes, hs)
	case "lennard-jones":
		lj := forces.NewLennardJones()
		if cfg.Strength > 0 {
			lj.SetStrength(cfg.Strength)
		}
		if cfg.LJCutoff >= 1 {
			lj.SetCutoff(cfg.LJCutoff)
		}
		registerAll(registry, ntypes, lj)
	case "none":
	}
	for _, o := range cfg.Observers {
		if o == "pressure" {
			registry.SetDoVirial(true)
		}
	}
	registry.SetDoPotential(true)

	var integ sim.Integrator
	switch cfg.Integrator {
	case "", "velocity-verlet":
		integ = configureController(integrators.NewVelocityVerlet(), cfg)
	case "overdamped":
		od := integrators.NewOverdamped()
		if cfg.Damping > 0 {
			od.SetDamping(cfg.Damping)
		}
		integ = configureController(od, cfg)
	}

	dom := domain.New()
	if cfg.SkinDepth > 0 {
		dom.SetSkinDepth(cfg.SkinDepth)
	}
	if cfg.MotionFactor > 0 {
		dom.SetMotionFactor(cfg.MotionFactor)
	}
	if cfg.MaxUpdateDelay > 0 {
		dom.SetMaxUpdateDelay(cfg.MaxUpdateDelay)
	}
	if cfg.SampleSize > 0 {
		dom.SetSampleSize(cfg.SampleSize)
	}
	if cfg.UpdateDecision == "steps" {
		dom.SetUpdateDecision(domain.ByStepCount)
		dom.SetUpdateDelaySteps(cfg.UpdateDelaySteps)
	}

	eng := sim.NewEngine(c, integ, dom, registry)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Fill != nil {
		fill := scene.Fill{
			Region: bounds,
			Number: cfg.Fill.Number,
			Phi:    cfg.Fill.Phi,
			Template: scene.Template{
				Radius: cfg.Fill.Radius,
				Mass:   cfg.Fill.Mass,
				Type:   cfg.Fill.Type,
			},
			Speed: cfg.Fill.Speed,
		}
		if _, err := fill.Create(store, rng); err != nil {
			return nil, err
		}
	}
	if cfg.Polymer != nil {
		p := cfg.Polymer
		poly := scene.Polymer{
			Start:   p.Start,
			Dir:     p.Dir,
			Beads:   p.Beads,
			Spacing: p.Spacing,
			Template: scene.Template{
				Radius: p.Radius,
				Mass:   p.Mass,
				Type:   p.Type,
			},
			BondK:  p.BondK,
			AngleK: p.AngleK,
		}
		_, bonds, angles, err := poly.Create(store)
		if err != nil {
			return nil, err
		}
		eng.AddBonded(bonds)
		if angles != nil {
			eng.AddBonded(angles)
		}
	}

	for _, name := range cfg.Observers {
		var obs interface {
			sim.Observer
			SetFPS(float64)
		}
		switch name {
		case "pos":
			obs = record.NewPositionData()
		case "ke":
			obs = record.NewKineticEnergyData()
		case "pressure":
			obs = record.NewPressureData()
		case "number":
			obs = record.NewNumberData()
		case "boundary-energy":
			obs = record.NewBoundaryEnergyData()
		default:
			return nil, fmt.Errorf("unknown observer %q", name)
		}
		if cfg.FPS > 0 {
			obs.SetFPS(cfg.FPS)
		}
		eng.AddObserver(obs)
	}

	return eng, nil
}

func registerAll(r *forces.Registry, ntypes int, in forces.Interaction) {
	for t1 := 0; t1 < ntypes; t1++ {
		for t2 := t1; t2 < ntypes; t2++ {
			r.Register(t1, t2, in)
		}
	}
}

// dtConfigurable is the controller surface shared by the integrator
// variants.
type dtConfigurable interface {
	sim.Integrator
	SetAdjustDT(bool)
	SetDT(float64)
	SetMinDT(float64)
	SetMaxDT(float64)
	SetTargetSteps(int)
	SetStepDelay(int)
}

func configureController(it dtConfigurable, cfg *config.Config) sim.Integrator {
	if cfg.AdjustDt != nil {
		it.SetAdjustDT(*cfg.AdjustDt)
	}
	if cfg.Dt > 0 {
		it.SetDT(cfg.Dt)
	}
	if cfg.MinDt > 0 {
		it.SetMinDT(cfg.MinDt)
	}
	if cfg.MaxDt > 0 {
		it.SetMaxDT(cfg.MaxDt)
	}
	if cfg.TargetSteps > 0 {
		it.SetTargetSteps(cfg.TargetSteps)
	}
	if cfg.StepDelay > 0 {
		it.SetStepDelay(cfg.StepDelay)
	}
	return it
}
