// Package geometry implements the differential-geometric primitives of the
// ellipse manifold: the induced metric, the Christoffel symbol, and the
// coordinate maps between the angular chart θ and the ambient Cartesian
// plane. Every function here is pure and total: finite for all real θ.
package geometry

import (
	"fmt"
	"math"
)

// TwoPi is the period of the angular chart.
const TwoPi = 2 * math.Pi

// Ellipse holds the semi-axes of the manifold. It is never mutated after
// construction: every derived quantity is a function of (a, b) and the
// caller's θ.
type Ellipse struct {
	A, B float64
}

// New returns the ellipse with semi-axes a ≥ b > 0.
//
// Returns an error if either axis is non-positive or if a < b: a bad
// ellipse is a fatal configuration problem, surfaced to the caller and
// never retried internally.
func New(a, b float64) (Ellipse, error) {
	if a <= 0 || b <= 0 {
		return Ellipse{}, fmt.Errorf("geometry: semi-axes must be positive, got a=%g b=%g", a, b)
	}
	if a < b {
		return Ellipse{}, fmt.Errorf("geometry: semi-major axis a=%g must be >= semi-minor axis b=%g", a, b)
	}
	return Ellipse{A: a, B: b}, nil
}

// Wrap normalizes θ into [0, 2π).
func Wrap(theta float64) float64 {
	theta = math.Mod(theta, TwoPi)
	if theta < 0 {
		theta += TwoPi
	}
	return theta
}

// Metric returns g(θ) = a²sin²θ + b²cos²θ, the g_θθ coefficient of the
// induced Riemannian metric. g(θ) ≥ min(a,b)² > 0 for all θ.
func (e Ellipse) Metric(theta float64) float64 {
	s, c := math.Sincos(theta)
	return e.A*e.A*s*s + e.B*e.B*c*c
}

// Christoffel returns the single non-zero connection coefficient
// Γ(θ) = (a² − b²) sinθ cosθ / g(θ).
func (e Ellipse) Christoffel(theta float64) float64 {
	s, c := math.Sincos(theta)
	g := e.Metric(theta)
	return (e.A*e.A - e.B*e.B) * s * c / g
}

// Position returns the Cartesian point (a cosθ, b sinθ).
func (e Ellipse) Position(theta float64) (x, y float64) {
	s, c := math.Sincos(theta)
	return e.A * c, e.B * s
}

// Velocity returns the Cartesian tangent vector (−a θ̇ sinθ, b θ̇ cosθ)
// corresponding to the angular velocity thetaDot at theta.
func (e Ellipse) Velocity(theta, thetaDot float64) (vx, vy float64) {
	s, c := math.Sincos(theta)
	return -e.A * thetaDot * s, e.B * thetaDot * c
}

// ArcSeparation approximates the geodesic (arc-length) separation between
// two angular positions using the metric evaluated at their midpoint:
// ℓ ≈ √g(θ_m) · Δθ, with Δθ taken along the shorter arc. This is the
// contact predicate used to detect collisions.
func (e Ellipse) ArcSeparation(theta1, theta2 float64) float64 {
	dtheta := ShortestDelta(theta2, theta1)
	thetaM := theta1 + dtheta/2
	return math.Sqrt(e.Metric(thetaM)) * math.Abs(dtheta)
}

// ShortestDelta returns the signed angular difference theta2 − theta1 taken
// along the shorter arc, wraparound-safe: the result lies in [−π, π).
func ShortestDelta(theta2, theta1 float64) float64 {
	d := theta2 - theta1
	d = math.Mod(d+math.Pi, TwoPi)
	if d < 0 {
		d += TwoPi
	}
	return d - math.Pi
}

// CartesianSeparation returns the straight-line (chord) distance between the
// Cartesian positions at theta1 and theta2. Used only as a coarse filter,
// never as the contact predicate itself.
func (e Ellipse) CartesianSeparation(theta1, theta2 float64) float64 {
	x1, y1 := e.Position(theta1)
	x2, y2 := e.Position(theta2)
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}
