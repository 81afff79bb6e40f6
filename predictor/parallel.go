package predictor

import (
	"math"
	"sync"

	"github.com/ellipsesim/ellipsesim/geometry"
	"github.com/ellipsesim/ellipsesim/particle"
)

// serialThreshold is the particle count below which the serial scan is
// used even when parallel scanning is requested: for small N the overhead
// of forking workers dominates.
const serialThreshold = 30

// linearToPair maps a 1-based linear index k in [1, N(N-1)/2] to the
// unordered pair (i, j), i<j, and pairToLinear is its inverse. Together
// they form a bijection on the domain of valid (N, k)/(N, i, j) inputs.
func linearToPair(k, n int) (i, j int) {
	k--
	for i = 0; i < n-1; i++ {
		rowLen := n - 1 - i
		if k < rowLen {
			return i, i + 1 + k
		}
		k -= rowLen
	}
	panic("predictor: linear index out of range")
}

func pairToLinear(i, j, n int) int {
	k := 0
	for r := 0; r < i; r++ {
		k += n - 1 - r
	}
	k += j - i
	return k
}

// FindNextCollisionParallel partitions the N(N-1)/2 unordered pairs across
// workers worker goroutines, each maintaining a private (tMin, pair)
// accumulator and scanning its slice independently with no shared mutable
// state; the final reduction picks the global minimum, ties broken by
// lexicographic (i, j) for determinism. Falls back to the serial scan for
// small N or a single worker, where fork/join overhead dominates.
//
// Each worker writes only to its own accumulator, so no atomics are needed
// and repeated runs on identical inputs are bit-for-bit identical.
func FindNextCollisionParallel(e geometry.Ellipse, particles []particle.Particle, tHi, maxTHi, dtMin float64, workers int) Prediction {
	n := len(particles)
	if workers <= 1 || n < serialThreshold {
		return FindNextCollision(e, particles, tHi, maxTHi, dtMin)
	}
	total := n * (n - 1) / 2

	results := make([]Prediction, workers)
	var wg sync.WaitGroup
	chunk := (total + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w*chunk + 1
		hi := lo + chunk - 1
		if hi > total {
			hi = total
		}
		if lo > total {
			results[w] = Prediction{DT: math.Inf(1), Found: false}
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			results[w] = scanRange(e, particles, n, lo, hi, tHi, maxTHi)
		}(w, lo, hi)
	}
	wg.Wait()

	best := Prediction{DT: math.Inf(1), Found: false}
	for _, r := range results {
		if r.Found && betterPrediction(r, best) {
			best = r
		}
	}
	if best.Found && best.DT < dtMin {
		best.DT = dtMin
	}
	return best
}

// scanRange evaluates TimeToContact for the linear pair indices [lo, hi]
// (inclusive, 1-based) and returns the local minimum.
func scanRange(e geometry.Ellipse, particles []particle.Particle, n, lo, hi int, tHi, maxTHi float64) Prediction {
	best := Prediction{DT: math.Inf(1), Found: false}
	for k := lo; k <= hi; k++ {
		i, j := linearToPair(k, n)
		dt, found := TimeToContact(e, particles[i], particles[j], tHi, maxTHi)
		if found {
			cand := Prediction{DT: dt, Pair: Pair{I: i, J: j}, Found: true}
			if betterPrediction(cand, best) {
				best = cand
			}
		}
	}
	return best
}

// betterPrediction reports whether cand should replace best: a strictly
// smaller time wins; exact ties are broken lexicographically on (i, j) for
// determinism across serial and parallel scans.
func betterPrediction(cand, best Prediction) bool {
	if !best.Found {
		return true
	}
	if cand.DT != best.DT {
		return cand.DT < best.DT
	}
	if cand.Pair.I != best.Pair.I {
		return cand.Pair.I < best.Pair.I
	}
	return cand.Pair.J < best.Pair.J
}
