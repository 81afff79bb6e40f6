// Package config decodes the recognized TOML configuration options into
// the plain option structs the core simulation package consumes. It is a
// thin collaborator-facing layer: the core never imports it, it only
// produces the values the core's constructors and drivers already accept.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ellipsesim/ellipsesim/collision"
)

// Config mirrors the recognized options: geometry.*, simulation.*, and
// particles.*. output.* and analysis.* are deliberately not modeled here:
// they are purely for collaborators beyond this module.
type Config struct {
	Geometry   GeometryConfig
	Simulation SimulationConfig
	Particles  ParticlesConfig
}

// GeometryConfig carries geometry.a and geometry.b.
type GeometryConfig struct {
	A, B float64
}

// DriverMethod selects between the fixed and adaptive drivers.
type DriverMethod uint8

const (
	// Adaptive selects the adaptive-step driver (the primary mode).
	Adaptive DriverMethod = iota + 1
	// Fixed selects the fixed-step driver.
	Fixed
)

// SimulationConfig carries the simulation.* options.
type SimulationConfig struct {
	Method          DriverMethod
	MaxTime         float64
	DTMax           float64
	DTMin           float64
	DTFixed         float64
	SaveInterval    float64
	SaveEvery       int
	CollisionMethod collision.Method
	Tolerance       float64
	UseParallel     bool
	MaxSteps        int
}

// ParticlesConfig carries particles.random.* or particles.from_file.*.
// Exactly one of RandomN>0 or FromFile!="" is expected to be set; the
// caller (a collaborator) decides which generator to invoke.
type ParticlesConfig struct {
	RandomN           int
	RandomMass        float64
	RandomRadius      float64
	RandomThetaDotMin float64
	RandomThetaDotMax float64
	RandomSeed        int64
	FromFile          string
}

// Load reads a TOML configuration tree rooted at path (a directory
// containing a "conf" file, mirroring viper.AddConfigPath/SetConfigName)
// and decodes it into a Config. Returns an error instead of panicking:
// configuration parsing is a collaborator concern, and a malformed or
// missing file must be a recoverable, surfaced failure, not a crash.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: could not read conf.toml from %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	method, err := parseDriverMethod(v.GetString("simulation.method"))
	if err != nil {
		return Config{}, err
	}
	collMethod, err := parseCollisionMethod(v.GetString("simulation.collision_method"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Geometry: GeometryConfig{
			A: v.GetFloat64("geometry.a"),
			B: v.GetFloat64("geometry.b"),
		},
		Simulation: SimulationConfig{
			Method:          method,
			MaxTime:         v.GetFloat64("simulation.max_time"),
			DTMax:           v.GetFloat64("simulation.dt_max"),
			DTMin:           v.GetFloat64("simulation.dt_min"),
			DTFixed:         v.GetFloat64("simulation.dt_fixed"),
			SaveInterval:    v.GetFloat64("simulation.save_interval"),
			SaveEvery:       v.GetInt("simulation.save_every"),
			CollisionMethod: collMethod,
			Tolerance:       v.GetFloat64("simulation.tolerance"),
			UseParallel:     v.GetBool("simulation.use_parallel"),
			MaxSteps:        v.GetInt("simulation.max_steps"),
		},
		Particles: ParticlesConfig{
			RandomN:           v.GetInt("particles.random.n"),
			RandomMass:        v.GetFloat64("particles.random.mass"),
			RandomRadius:      v.GetFloat64("particles.random.radius"),
			RandomThetaDotMin: v.GetFloat64("particles.random.theta_dot_min"),
			RandomThetaDotMax: v.GetFloat64("particles.random.theta_dot_max"),
			RandomSeed:        v.GetInt64("particles.random.seed"),
			FromFile:          v.GetString("particles.from_file.filename"),
		},
	}

	if cfg.Simulation.Method == Adaptive && cfg.Simulation.DTMax > 0 && cfg.Simulation.DTMin >= cfg.Simulation.DTMax {
		return Config{}, fmt.Errorf("config: simulation.dt_min (%g) must be < simulation.dt_max (%g)", cfg.Simulation.DTMin, cfg.Simulation.DTMax)
	}
	return cfg, nil
}

func parseDriverMethod(s string) (DriverMethod, error) {
	switch s {
	case "", "adaptive":
		return Adaptive, nil
	case "fixed":
		return Fixed, nil
	default:
		return 0, fmt.Errorf("config: unknown simulation.method %q", s)
	}
}

func parseCollisionMethod(s string) (collision.Method, error) {
	switch s {
	case "", "parallel_transport":
		return collision.ParallelTransport, nil
	case "simple":
		return collision.Simple, nil
	case "geodesic":
		return collision.Geodesic, nil
	default:
		return 0, fmt.Errorf("config: unknown simulation.collision_method %q", s)
	}
}
