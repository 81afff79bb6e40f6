// Package transport parallel-transports a scalar tangent velocity along the
// ellipse manifold between two angular positions, by integrating
// dv/dθ = −Γ(θ) v with classical RK4. Forest–Ruth must not be used here:
// this ODE is not a separable Hamiltonian system and an earlier attempt at
// splitting it destroyed energy conservation.
package transport

import (
	"math"

	"github.com/ChristopherRabotin/ode"

	"github.com/ellipsesim/ellipsesim/geometry"
)

// SubSteps is the number of fixed RK4 sub-steps used to cover the interval
// [theta0, theta1].
const SubSteps = 10

// Transport moves the scalar velocity v from theta0 to theta1 along the
// manifold described by e, integrating the parallel-transport equation with
// classical RK4. A velocity transported once around a closed loop returns to
// itself up to O(dθ⁴) error.
func Transport(e geometry.Ellipse, theta0, theta1, v float64) float64 {
	span := theta1 - theta0
	if span == 0 {
		return v
	}
	// The integrator runs over the arc length s = |θ − theta0| with a
	// positive step, so transport towards smaller θ works the same way.
	dir := math.Copysign(1, span)
	step := math.Abs(span) / SubSteps
	eq := &equation{ellipse: e, theta0: theta0, dir: dir, theta: theta0, step: step, stepsLeft: SubSteps, v: v}
	ode.NewRK4(0, step, eq).Solve() // Blocking; SubSteps fixed sub-steps.
	return eq.v
}

// equation adapts the scalar transport ODE to the ode.Integrable interface
// (GetState/SetState/Func/Stop), using a 1-entry state vector carrying the
// transported velocity. Its independent variable is s, with θ = theta0 + dir·s.
type equation struct {
	ellipse   geometry.Ellipse
	theta0    float64
	dir       float64
	theta     float64
	step      float64
	stepsLeft int
	v         float64
}

// GetState returns the current transported velocity as a 1-vector.
func (eq *equation) GetState() []float64 {
	return []float64{eq.v}
}

// SetState records the integrator's updated velocity and advances θ by one
// sub-step.
func (eq *equation) SetState(arc float64, s []float64) {
	eq.v = s[0]
	eq.theta = eq.theta0 + eq.dir*arc
	eq.stepsLeft--
}

// Func evaluates dv/ds = −dir·Γ(θ) v, which is dv/dθ = −Γ(θ) v written in
// the arc variable s.
func (eq *equation) Func(arc float64, s []float64) []float64 {
	return []float64{-eq.dir * eq.ellipse.Christoffel(eq.theta0+eq.dir*arc) * s[0]}
}

// Stop reports whether the fixed sub-step budget has been consumed.
func (eq *equation) Stop(theta float64) bool {
	return eq.stepsLeft <= 0
}

// AroundLoop transports v once fully around the ellipse (θ → θ+2π) and
// returns the result; used by holonomy tests to check that it returns to v
// up to tolerance scaling with the sub-step.
func AroundLoop(e geometry.Ellipse, theta0, v float64) float64 {
	return Transport(e, theta0, theta0+geometry.TwoPi, v)
}

// HolonomyError transports v once around the loop and returns the absolute
// difference from v, a convenience used by tests when auditing transport
// accuracy.
func HolonomyError(e geometry.Ellipse, theta0, v float64) float64 {
	return math.Abs(AroundLoop(e, theta0, v) - v)
}
