// Package particle defines the immutable Particle record and the derived
// energies/momenta that follow from it, plus the seeded random generator
// used to build initial conditions for many-body runs.
package particle

import (
	"fmt"

	"github.com/ellipsesim/ellipsesim/geometry"
)

// Particle is an atomic immutable record. pos/vel are a pure function of
// (Theta, ThetaDot, a, b); any update reconstructs a new Particle rather
// than mutating one in place, so sharing the old record is always safe.
type Particle struct {
	ID       int
	Mass     float64
	Radius   float64
	Theta    float64
	ThetaDot float64
	PosX     float64
	PosY     float64
	VelX     float64
	VelY     float64
}

// New constructs a Particle at (theta, thetaDot) on ellipse e, deriving its
// Cartesian position and velocity. Returns an error if mass is not strictly
// positive or radius is negative; a zero radius is allowed and gives a
// point particle.
func New(id int, mass, radius, theta, thetaDot float64, e geometry.Ellipse) (Particle, error) {
	if mass <= 0 {
		return Particle{}, fmt.Errorf("particle %d: mass must be positive, got %g", id, mass)
	}
	if radius < 0 {
		return Particle{}, fmt.Errorf("particle %d: radius must not be negative, got %g", id, radius)
	}
	return update(id, mass, radius, theta, thetaDot, e), nil
}

// update builds the Particle record, recomputing pos/vel from (theta,
// thetaDot). It never validates mass/radius since those are constant for
// the particle's lifetime and were checked once at construction.
func update(id int, mass, radius, theta, thetaDot float64, e geometry.Ellipse) Particle {
	theta = geometry.Wrap(theta)
	x, y := e.Position(theta)
	vx, vy := e.Velocity(theta, thetaDot)
	return Particle{
		ID: id, Mass: mass, Radius: radius,
		Theta: theta, ThetaDot: thetaDot,
		PosX: x, PosY: y, VelX: vx, VelY: vy,
	}
}

// WithState returns a new Particle sharing p's id/mass/radius but with the
// angular state (theta, thetaDot), recomputing its Cartesian fields.
func (p Particle) WithState(theta, thetaDot float64, e geometry.Ellipse) Particle {
	return update(p.ID, p.Mass, p.Radius, theta, thetaDot, e)
}

// Energy returns the kinetic energy ½ m g(θ) θ̇² of this particle.
func (p Particle) Energy(e geometry.Ellipse) float64 {
	g := e.Metric(p.Theta)
	return 0.5 * p.Mass * g * p.ThetaDot * p.ThetaDot
}

// ConjugateMomentum returns p_θ = m g(θ) θ̇.
func (p Particle) ConjugateMomentum(e geometry.Ellipse) float64 {
	return p.Mass * e.Metric(p.Theta) * p.ThetaDot
}

func (p Particle) String() string {
	return fmt.Sprintf("particle#%d(θ=%.6f, θ̇=%.6f, m=%.4g, r=%.4g)", p.ID, p.Theta, p.ThetaDot, p.Mass, p.Radius)
}

// TotalEnergy sums Energy across all particles.
func TotalEnergy(e geometry.Ellipse, particles []Particle) float64 {
	total := 0.0
	for _, p := range particles {
		total += p.Energy(e)
	}
	return total
}

// TotalConjugateMomentum sums ConjugateMomentum across all particles. Note
// this is not linear momentum Σmv: the ellipse has no translational
// symmetry, so Σmv is not conserved and must never be asserted as such.
func TotalConjugateMomentum(e geometry.Ellipse, particles []Particle) float64 {
	total := 0.0
	for _, p := range particles {
		total += p.ConjugateMomentum(e)
	}
	return total
}
