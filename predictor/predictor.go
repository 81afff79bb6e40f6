// Package predictor implements the adaptive collision time-to-contact root
// finder and the global pair scan, including an optional threaded variant.
package predictor

import (
	"math"

	"github.com/gonum/floats"

	"github.com/ellipsesim/ellipsesim/geometry"
	"github.com/ellipsesim/ellipsesim/particle"
)

// bisectionTolFactor and maxBisectionIter bound the root-finding loop of
// TimeToContact: tolerance ~100·eps, up to ~50 iterations.
const (
	bisectionTolFactor = 100
	maxBisectionIter   = 50
	// artifactFloor discards roots this close to zero as numerical
	// artifacts rather than real imminent collisions.
	artifactFloor = 1e-12
	machineEps    = 2.220446049250313e-16
)

// Pair identifies an unordered pair of particle indices, i<j.
type Pair struct {
	I, J int
}

// TimeToContact predicts, under the first-order approximation
// θᵢ(t) ≈ θᵢ + θ̇ᵢ·t, the time until p1 and p2 make contact, searching the
// candidate interval [0, tHi] (doubled up to maxTHi if no sign change is
// found). Returns (time, found); found=false means "no collision in the
// horizon", reported as +Inf.
func TimeToContact(e geometry.Ellipse, p1, p2 particle.Particle, tHi, maxTHi float64) (float64, bool) {
	f := func(t float64) float64 {
		theta1 := p1.Theta + p1.ThetaDot*t
		theta2 := p2.Theta + p2.ThetaDot*t
		dtheta := geometry.ShortestDelta(theta2, theta1)
		thetaM := theta1 + dtheta/2
		return math.Sqrt(e.Metric(thetaM))*math.Abs(dtheta) - (p1.Radius + p2.Radius)
	}

	if f(0) <= 0 {
		// Already overlapping or touching: returning 0 here would cause
		// lock-up because post-collision geometry is still overlapping.
		// Let them separate naturally instead.
		return math.Inf(1), false
	}
	if floats.EqualWithinAbs(p2.ThetaDot-p1.ThetaDot, 0, 4*machineEps) {
		return math.Inf(1), false
	}

	hi := tHi
	f0 := f(0)
	fHi := f(hi)
	for f0*fHi > 0 && hi < maxTHi {
		hi *= 2
		fHi = f(hi)
	}
	if f0*fHi > 0 {
		// No sign change anywhere in the candidate interval.
		return math.Inf(1), false
	}

	lo := 0.0
	flo := f0
	tol := bisectionTolFactor * machineEps
	for i := 0; i < maxBisectionIter && hi-lo > tol; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if flo*fm <= 0 {
			hi = mid
		} else {
			lo = mid
			flo = fm
		}
	}
	root := (lo + hi) / 2
	if root < artifactFloor {
		return math.Inf(1), false
	}
	return root, true
}

// Prediction is the outcome of a single pair's time-to-contact evaluation.
type Prediction struct {
	DT    float64
	Pair  Pair
	Found bool
}

// FindNextCollision scans all unordered pairs i<j and returns the pair with
// the smallest predicted collision time. If the overall minimum is smaller
// than dtMin, it is raised to dtMin (the "stuck-pair" safety valve).
func FindNextCollision(e geometry.Ellipse, particles []particle.Particle, tHi, maxTHi, dtMin float64) Prediction {
	best := Prediction{DT: math.Inf(1), Found: false}
	for i := 0; i < len(particles); i++ {
		for j := i + 1; j < len(particles); j++ {
			dt, found := TimeToContact(e, particles[i], particles[j], tHi, maxTHi)
			if found && dt < best.DT {
				best = Prediction{DT: dt, Pair: Pair{I: i, J: j}, Found: true}
			}
		}
	}
	if best.Found && best.DT < dtMin {
		best.DT = dtMin
	}
	return best
}
