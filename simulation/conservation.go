// Package simulation implements the fixed-step and adaptive drivers and
// the conservation log and invariant-analysis routines.
package simulation

import (
	"math"
)

// ConservationSample is a (t, E_total, P_conj_total) triple appended in
// time order on every recorded snapshot.
type ConservationSample struct {
	T        float64
	Energy   float64
	Momentum float64
}

// ConservationAnalysis summarizes a ConservationSample log: initial, final,
// mean, stddev, maximum relative deviation, drift, and a conserved verdict
// (relative deviation < 1e-4).
type ConservationAnalysis struct {
	Initial, Final, Mean, StdDev float64
	MaxRelDeviation              float64
	Drift                        float64
	Conserved                    bool
	Class                        string
}

// conservedThreshold is the relative-deviation bound below which a run is
// classified "conserved".
const conservedThreshold = 1e-4

// AnalyzeEnergyConservation summarizes the energy component of log.
func AnalyzeEnergyConservation(log []ConservationSample) ConservationAnalysis {
	return analyze(extract(log, func(s ConservationSample) float64 { return s.Energy }))
}

// AnalyzeConjugateMomentum summarizes the conjugate-momentum component of
// log. Note this is p_θ = m g(θ) θ̇ totalled across particles, never the
// linear momentum Σmv, which is not conserved on the ellipse.
func AnalyzeConjugateMomentum(log []ConservationSample) ConservationAnalysis {
	return analyze(extract(log, func(s ConservationSample) float64 { return s.Momentum }))
}

func extract(log []ConservationSample, field func(ConservationSample) float64) []float64 {
	values := make([]float64, len(log))
	for i, s := range log {
		values[i] = field(s)
	}
	return values
}

func analyze(values []float64) ConservationAnalysis {
	if len(values) == 0 {
		return ConservationAnalysis{}
	}
	initial := values[0]
	final := values[len(values)-1]

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	stddev := math.Sqrt(variance)

	maxRel := 0.0
	for _, v := range values {
		rel := relDeviation(v, initial)
		if rel > maxRel {
			maxRel = rel
		}
	}

	drift := 0.0
	if initial != 0 {
		drift = (final - initial) / initial
	}

	return ConservationAnalysis{
		Initial: initial, Final: final, Mean: mean, StdDev: stddev,
		MaxRelDeviation: maxRel, Drift: drift,
		Conserved: maxRel < conservedThreshold,
		Class:     classify(maxRel),
	}
}

func relDeviation(v, initial float64) float64 {
	if initial == 0 {
		return math.Abs(v)
	}
	return math.Abs((v - initial) / initial)
}

// classify buckets a maximum relative deviation into excellent/good/
// acceptable/poor bands.
func classify(maxRel float64) string {
	switch {
	case maxRel < 1e-6:
		return "excellent"
	case maxRel < 1e-4:
		return "good"
	case maxRel < 1e-2:
		return "acceptable"
	default:
		return "poor"
	}
}

// StepSizeStats summarizes an adaptive run's dt history: min, max, mean.
type StepSizeStats struct {
	Min, Max, Mean float64
	Count          int
}

// AnalyzeStepSizes reports the min/max/mean of the adaptive step-size
// history, useful for diagnosing step-size collapse in long runs.
func AnalyzeStepSizes(dtHistory []float64) StepSizeStats {
	if len(dtHistory) == 0 {
		return StepSizeStats{}
	}
	min, max, sum := dtHistory[0], dtHistory[0], 0.0
	for _, dt := range dtHistory {
		if dt < min {
			min = dt
		}
		if dt > max {
			max = dt
		}
		sum += dt
	}
	return StepSizeStats{Min: min, Max: max, Mean: sum / float64(len(dtHistory)), Count: len(dtHistory)}
}
