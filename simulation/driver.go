package simulation

import (
	"fmt"

	kitlog "github.com/go-kit/kit/log"

	"github.com/ellipsesim/ellipsesim/collision"
	"github.com/ellipsesim/ellipsesim/geometry"
	"github.com/ellipsesim/ellipsesim/integrator"
	"github.com/ellipsesim/ellipsesim/particle"
	"github.com/ellipsesim/ellipsesim/predictor"
)

// Snapshot is one recorded instant of the simulation: the particle states
// at simulation time T.
type Snapshot struct {
	T         float64
	Particles []particle.Particle
}

func (s Snapshot) String() string {
	return fmt.Sprintf("snapshot(t=%.6g, n=%d)", s.T, len(s.Particles))
}

// SimulationData owns the ellipse constants, a dense ordered log of
// snapshots, per-step counters, and (for adaptive runs) the dt history.
// Nothing here is ever freed before the run ends; the caller drops the
// whole struct when done with it.
type SimulationData struct {
	Ellipse           geometry.Ellipse
	Snapshots         []Snapshot
	ConservationLog   []ConservationSample
	Collisions        int
	NonConservedCount int
	Steps             int
	DTHistory         []float64 // only populated in adaptive mode
	StepBudgetHit     bool      // true if the adaptive loop hit MaxSteps
}

// ConservedFraction returns the fraction of resolved collisions that were
// not reported non-conserved by the resolver (1 when there were none).
// Non-conservation accumulates in the per-step counters; it is never fatal.
func (d *SimulationData) ConservedFraction() float64 {
	if d.Collisions == 0 {
		return 1
	}
	return 1 - float64(d.NonConservedCount)/float64(d.Collisions)
}

// Summary returns a short human-readable report of the run.
func (d *SimulationData) Summary() string {
	return fmt.Sprintf("steps=%d collisions=%d conserved_fraction=%.6f snapshots=%d",
		d.Steps, d.Collisions, d.ConservedFraction(), len(d.Snapshots))
}

func (d *SimulationData) recordSnapshot(t float64, particles []particle.Particle) {
	cp := make([]particle.Particle, len(particles))
	copy(cp, particles)
	d.Snapshots = append(d.Snapshots, Snapshot{T: t, Particles: cp})
	d.ConservationLog = append(d.ConservationLog, ConservationSample{
		T:        t,
		Energy:   particle.TotalEnergy(d.Ellipse, particles),
		Momentum: particle.TotalConjugateMomentum(d.Ellipse, particles),
	})
}

// FixedStepOptions configures SimulateFixed.
type FixedStepOptions struct {
	NSteps    int
	DT        float64
	SaveEvery int
	Method    collision.Method
	Tolerance float64
	Logger    kitlog.Logger
}

// SimulateFixed advances every particle by one Forest–Ruth step of size DT,
// NSteps times; after each step it resolves every currently overlapping,
// approaching pair in one pass, in ascending (i, j) lexicographic order
// (see resolveOverlapping). A snapshot is
// recorded every SaveEvery steps.
func SimulateFixed(e geometry.Ellipse, particles []particle.Particle, opt FixedStepOptions) *SimulationData {
	log := opt.Logger
	if log == nil {
		log = kitlog.NewNopLogger()
	}
	data := &SimulationData{Ellipse: e}
	current := make([]particle.Particle, len(particles))
	copy(current, particles)
	data.recordSnapshot(0, current)

	for step := 1; step <= opt.NSteps; step++ {
		for i, p := range current {
			s := integrator.Step(e, integrator.State{Theta: p.Theta, ThetaDot: p.ThetaDot}, opt.DT)
			current[i] = p.WithState(s.Theta, s.ThetaDot, e)
		}
		resolveOverlapping(e, current, opt.Method, opt.Tolerance, data)
		data.Steps++
		if opt.SaveEvery > 0 && step%opt.SaveEvery == 0 {
			data.recordSnapshot(float64(step)*opt.DT, current)
		}
	}
	log.Log("level", "notice", "subsys", "sim", "status", "finished", "steps", data.Steps, "collisions", data.Collisions)
	return data
}

// resolveOverlapping applies the resolver to every currently overlapping
// pair in one pass, processed in ascending (i, j) order. Pairs that are
// overlapping but already receding are skipped: resolving them again would
// swap the pair back toward each other and lock it in contact forever, the
// fixed-step analogue of the predictor's stuck-pair rule.
func resolveOverlapping(e geometry.Ellipse, current []particle.Particle, method collision.Method, tol float64, data *SimulationData) {
	for i := 0; i < len(current); i++ {
		for j := i + 1; j < len(current); j++ {
			if !collision.InContact(e, current[i], current[j]) {
				continue
			}
			dtheta := geometry.ShortestDelta(current[j].Theta, current[i].Theta)
			if dtheta*(current[j].ThetaDot-current[i].ThetaDot) >= 0 {
				continue
			}
			res := collision.Resolve(e, current[i], current[j], method, tol)
			current[i] = res.P1
			current[j] = res.P2
			data.Collisions++
			if method == collision.ParallelTransport && !res.Conserved {
				data.NonConservedCount++
			}
		}
	}
}

// AdaptiveOptions configures SimulateAdaptive.
type AdaptiveOptions struct {
	MaxTime      float64
	DTMax        float64
	DTMin        float64
	SaveInterval float64
	Method       collision.Method
	Tolerance    float64
	MaxSteps     int
	Parallel     bool
	Workers      int
	Logger       kitlog.Logger
}

// defaultMaxSteps is the adaptive-loop safety cap used when the caller
// does not specify one.
const defaultMaxSteps = 10_000_000

// candidateHorizonCap bounds the doubling of the predictor's bisection
// search window, which starts at MaxTime.
const candidateHorizonCap = 1e6

// SimulateAdaptive loops until t >= MaxTime or step >= MaxSteps. Each
// iteration predicts the next collision, advances all particles by
// min(dt_c, DTMax, MaxTime-t) bounded below by DTMin, resolves the
// collision if it actually fired within the consumed interval, and records
// a snapshot whenever simulation time crosses the next save boundary.
// Snapshot cadence is driven by simulation time, not step count.
func SimulateAdaptive(e geometry.Ellipse, particles []particle.Particle, opt AdaptiveOptions) *SimulationData {
	log := opt.Logger
	if log == nil {
		log = kitlog.NewNopLogger()
	}
	maxSteps := opt.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	data := &SimulationData{Ellipse: e}
	current := make([]particle.Particle, len(particles))
	copy(current, particles)
	data.recordSnapshot(0, current)

	t := 0.0
	nextSave := opt.SaveInterval
	step := 0
	const epsilon = 1e-12

	for t < opt.MaxTime && step < maxSteps {
		pred := predict(e, current, opt)

		dt := opt.DTMax
		if pred.Found && pred.DT < dt {
			dt = pred.DT
		}
		if remaining := opt.MaxTime - t; remaining < dt {
			dt = remaining
		}
		if dt < opt.DTMin {
			dt = opt.DTMin
		}

		for i, p := range current {
			s := integrator.Step(e, integrator.State{Theta: p.Theta, ThetaDot: p.ThetaDot}, dt)
			current[i] = p.WithState(s.Theta, s.ThetaDot, e)
		}

		if pred.Found && dt >= pred.DT-epsilon {
			i, j := pred.Pair.I, pred.Pair.J
			res := collision.Resolve(e, current[i], current[j], opt.Method, opt.Tolerance)
			current[i] = res.P1
			current[j] = res.P2
			data.Collisions++
			if opt.Method == collision.ParallelTransport && !res.Conserved {
				data.NonConservedCount++
			}
		}

		t += dt
		data.DTHistory = append(data.DTHistory, dt)
		step++

		if t >= nextSave || t >= opt.MaxTime {
			data.recordSnapshot(t, current)
			nextSave += opt.SaveInterval
		}
	}

	data.Steps = step
	if step >= maxSteps && t < opt.MaxTime {
		data.StepBudgetHit = true
		log.Log("level", "warning", "subsys", "sim", "status", "step_budget_exhausted", "steps", step, "t", t)
	}
	log.Log("level", "notice", "subsys", "sim", "status", "finished", "steps", step, "t", t, "collisions", data.Collisions)
	return data
}

func predict(e geometry.Ellipse, current []particle.Particle, opt AdaptiveOptions) predictor.Prediction {
	tHi := opt.MaxTime
	if tHi <= 0 {
		tHi = 1
	}
	if opt.Parallel {
		workers := opt.Workers
		if workers <= 0 {
			workers = 4
		}
		return predictor.FindNextCollisionParallel(e, current, tHi, candidateHorizonCap, opt.DTMin, workers)
	}
	return predictor.FindNextCollision(e, current, tHi, candidateHorizonCap, opt.DTMin)
}
