package predictor

import (
	"math/rand"
	"testing"

	"github.com/ellipsesim/ellipsesim/geometry"
	"github.com/ellipsesim/ellipsesim/particle"
)

func randomSwarm(n int, seed int64) []particle.Particle {
	e, _ := geometry.New(2, 1)
	src := rand.New(rand.NewSource(seed))
	particles := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		theta := src.Float64() * geometry.TwoPi
		thetaDot := -1 + 2*src.Float64()
		p, _ := particle.New(i, 1, 0.02, theta, thetaDot, e)
		particles[i] = p
	}
	return particles
}

func TestParallelMatchesSerialAcrossSizes(t *testing.T) {
	e, _ := geometry.New(2, 1)
	for _, n := range []int{10, 20, 30, 50} {
		particles := randomSwarm(n, int64(n)*17+3)
		serial := FindNextCollision(e, particles, 1.0, 1e6, 1e-9)
		parallel := FindNextCollisionParallel(e, particles, 1.0, 1e6, 1e-9, 4)
		if serial.Found != parallel.Found {
			t.Fatalf("n=%d: found mismatch serial=%v parallel=%v", n, serial.Found, parallel.Found)
		}
		if serial.Found && (serial.DT != parallel.DT || serial.Pair != parallel.Pair) {
			t.Fatalf("n=%d: serial=%+v parallel=%+v diverge", n, serial, parallel)
		}
	}
}

func TestParallelDeterministicAcrossRepeats(t *testing.T) {
	e, _ := geometry.New(2, 1)
	particles := randomSwarm(50, 99)
	first := FindNextCollisionParallel(e, particles, 1.0, 1e6, 1e-9, 8)
	for i := 0; i < 5; i++ {
		got := FindNextCollisionParallel(e, particles, 1.0, 1e6, 1e-9, 8)
		if got != first {
			t.Fatalf("repeat %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestParallelFallsBackToSerialForSmallN(t *testing.T) {
	e, _ := geometry.New(2, 1)
	particles := randomSwarm(10, 5)
	serial := FindNextCollision(e, particles, 1.0, 1e6, 1e-9)
	parallel := FindNextCollisionParallel(e, particles, 1.0, 1e6, 1e-9, 8)
	if serial != parallel {
		t.Fatalf("small-N parallel scan should equal serial: %+v vs %+v", parallel, serial)
	}
}
