// Package collision implements the contact predicate and the three
// velocity-resolution procedures: simple, parallel_transport, and geodesic.
package collision

import (
	"fmt"
	"math"

	"github.com/gonum/floats"

	"github.com/ellipsesim/ellipsesim/geometry"
	"github.com/ellipsesim/ellipsesim/integrator"
	"github.com/ellipsesim/ellipsesim/particle"
	"github.com/ellipsesim/ellipsesim/transport"
)

// Method selects the resolution procedure, a tagged variant standing in for
// the host language's multiple dispatch.
type Method uint8

const (
	// Simple performs a parallel-transport velocity swap with no
	// post-hoc conservation report.
	Simple Method = iota + 1
	// ParallelTransport performs the same swap as Simple but additionally
	// reports whether the exchange conserved energy and momentum within
	// Tolerance. This is the default method.
	ParallelTransport
	// Geodesic exchanges angular velocities (or applies the unequal-mass
	// elastic formula), transports them to the estimated post-collision
	// position, then advances one Forest–Ruth sub-step. Experimental;
	// kept available for research, not the default.
	Geodesic
)

func (m Method) String() string {
	switch m {
	case Simple:
		return "simple"
	case ParallelTransport:
		return "parallel_transport"
	case Geodesic:
		return "geodesic"
	default:
		panic(fmt.Errorf("collision: unknown method %d", uint8(m)))
	}
}

// DefaultTolerance is the default conservation tolerance: both |ΔE|/E and
// |ΔP|/|P| must be below this for a ParallelTransport resolution to report
// conserved=true.
const DefaultTolerance = 1e-6

// InContact reports whether two particles are touching under the geodesic
// contact predicate: ℓ ≈ √g(θ_m)·Δθ ≤ r1+r2.
func InContact(e geometry.Ellipse, p1, p2 particle.Particle) bool {
	return e.ArcSeparation(p1.Theta, p2.Theta) <= p1.Radius+p2.Radius
}

// Result carries the post-collision particles and, for ParallelTransport,
// whether the exchange conserved energy and momentum within tolerance.
type Result struct {
	P1, P2    particle.Particle
	Conserved bool // only meaningful for ParallelTransport
}

// Resolve dispatches to the resolution procedure named by method.
func Resolve(e geometry.Ellipse, p1, p2 particle.Particle, method Method, tol float64) Result {
	switch method {
	case Simple:
		np1, np2 := parallelTransportSwap(e, p1, p2)
		return Result{P1: np1, P2: np2}
	case ParallelTransport:
		np1, np2 := parallelTransportSwap(e, p1, p2)
		conserved := isConserved(e, p1, p2, np1, np2, tol)
		return Result{P1: np1, P2: np2, Conserved: conserved}
	case Geodesic:
		np1, np2 := geodesicResolve(e, p1, p2)
		return Result{P1: np1, P2: np2}
	default:
		panic(fmt.Errorf("collision: unknown method %d", uint8(method)))
	}
}

// parallelTransportSwap implements the shared algebra of Simple and
// ParallelTransport: transport each particle's angular velocity to the
// other's position, then swap. Positions are unchanged by the resolution
// itself.
func parallelTransportSwap(e geometry.Ellipse, p1, p2 particle.Particle) (particle.Particle, particle.Particle) {
	v1AtTheta2 := transport.Transport(e, p1.Theta, p2.Theta, p1.ThetaDot)
	v2AtTheta1 := transport.Transport(e, p2.Theta, p1.Theta, p2.ThetaDot)
	np1 := p1.WithState(p1.Theta, v2AtTheta1, e)
	np2 := p2.WithState(p2.Theta, v1AtTheta2, e)
	return np1, np2
}

// geodesicResolve exchanges angular velocities directly (the unequal-mass
// elastic formula when masses differ), transports the result to an
// estimated post-collision position, then advances one Forest–Ruth
// sub-step. Its conservation guarantees under the curved metric are not
// rigorously established; kept as a secondary, experimental path.
func geodesicResolve(e geometry.Ellipse, p1, p2 particle.Particle) (particle.Particle, particle.Particle) {
	var newV1, newV2 float64
	if p1.Mass == p2.Mass {
		newV1, newV2 = p2.ThetaDot, p1.ThetaDot
	} else {
		m1, m2 := p1.Mass, p2.Mass
		u1, u2 := p1.ThetaDot, p2.ThetaDot
		newV1 = ((m1-m2)*u1 + 2*m2*u2) / (m1 + m2)
		newV2 = ((m2-m1)*u2 + 2*m1*u1) / (m1 + m2)
	}
	// The exchanged velocities originate at the other particle's side of
	// the contact; transport each to its new carrier's position.
	v1 := transport.Transport(e, p2.Theta, p1.Theta, newV1)
	v2 := transport.Transport(e, p1.Theta, p2.Theta, newV2)

	const subStep = 1e-6
	s1 := integrator.Step(e, integrator.State{Theta: p1.Theta, ThetaDot: v1}, subStep)
	s2 := integrator.Step(e, integrator.State{Theta: p2.Theta, ThetaDot: v2}, subStep)
	return p1.WithState(s1.Theta, s1.ThetaDot, e), p2.WithState(s2.Theta, s2.ThetaDot, e)
}

func isConserved(e geometry.Ellipse, p1, p2, np1, np2 particle.Particle, tol float64) bool {
	eBefore := p1.Energy(e) + p2.Energy(e)
	eAfter := np1.Energy(e) + np2.Energy(e)
	pBefore := p1.ConjugateMomentum(e) + p2.ConjugateMomentum(e)
	pAfter := np1.ConjugateMomentum(e) + np2.ConjugateMomentum(e)

	return floats.EqualWithinAbs(relError(eAfter, eBefore), 0, tol) &&
		floats.EqualWithinAbs(relError(pAfter, pBefore), 0, tol)
}

// relError returns the relative deviation of after from before, or the
// absolute deviation if before is zero.
func relError(after, before float64) float64 {
	if before == 0 {
		return math.Abs(after)
	}
	return math.Abs((after - before) / before)
}
