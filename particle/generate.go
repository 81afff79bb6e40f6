package particle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"

	"github.com/ellipsesim/ellipsesim/geometry"
)

// maxPlacementAttempts bounds the retry loop of GenerateRandom: past this
// many attempts at placing any one particle without overlap, generation
// fails rather than looping forever.
const maxPlacementAttempts = 200

// GenerateRandomOptions configures GenerateRandom. ThetaDotMin/Max bound a
// uniform angular-velocity draw; if GaussianJitter is true, zero-mean
// Gaussian noise is added on top.
type GenerateRandomOptions struct {
	N              int
	Mass           float64
	RadiusFraction float64 // radius = RadiusFraction * min(a, b)
	ThetaDotMin    float64
	ThetaDotMax    float64
	Seed           int64
	GaussianJitter bool
	JitterSigma    float64
}

// GenerateRandom places N particles with no initial overlap (measured by
// the geodesic contact predicate) and draws angular velocities uniformly
// in [ThetaDotMin, ThetaDotMax], optionally jittered by Gaussian noise.
// Placement retries up to maxPlacementAttempts times per particle before
// returning an initialization error.
func GenerateRandom(e geometry.Ellipse, opt GenerateRandomOptions) ([]Particle, error) {
	if opt.N <= 0 {
		return nil, fmt.Errorf("particle: n must be positive, got %d", opt.N)
	}
	radius := opt.RadiusFraction * math.Min(e.A, e.B)
	src := rand.New(rand.NewSource(opt.Seed))

	var jitter *distmv.Normal
	if opt.GaussianJitter {
		sigma := opt.JitterSigma
		if sigma <= 0 {
			sigma = 1e-3
		}
		n, ok := distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{sigma * sigma}), src)
		if !ok {
			return nil, fmt.Errorf("particle: could not construct jitter distribution")
		}
		jitter = n
	}

	particles := make([]Particle, 0, opt.N)
	for id := 0; id < opt.N; id++ {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			theta := src.Float64() * geometry.TwoPi
			if overlapsAny(e, theta, radius, particles) {
				continue
			}
			thetaDot := opt.ThetaDotMin + src.Float64()*(opt.ThetaDotMax-opt.ThetaDotMin)
			if jitter != nil {
				thetaDot += jitter.Rand(nil)[0]
			}
			p, err := New(id, opt.Mass, radius, theta, thetaDot, e)
			if err != nil {
				return nil, err
			}
			particles = append(particles, p)
			placed = true
			break
		}
		if !placed {
			return nil, fmt.Errorf("particle: could not place particle %d of %d without overlap after %d attempts", id, opt.N, maxPlacementAttempts)
		}
	}
	return particles, nil
}

func overlapsAny(e geometry.Ellipse, theta, radius float64, placed []Particle) bool {
	for _, p := range placed {
		if e.ArcSeparation(theta, p.Theta) <= radius+p.Radius {
			return true
		}
	}
	return false
}
