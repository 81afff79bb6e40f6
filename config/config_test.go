package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ellipsesim/ellipsesim/collision"
)

func fromTOML(t *testing.T, toml string) (Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(toml)); err != nil {
		t.Fatalf("ReadConfig: %s", err)
	}
	return decode(v)
}

func TestDecodeFullTree(t *testing.T) {
	cfg, err := fromTOML(t, `
[geometry]
a = 2.0
b = 1.0

[simulation]
method = "adaptive"
max_time = 10.0
dt_max = 1e-3
dt_min = 1e-9
save_interval = 0.1
collision_method = "simple"
tolerance = 1e-6
use_parallel = true
max_steps = 500000

[particles.random]
n = 20
mass = 1.0
radius = 0.01
theta_dot_min = -1.0
theta_dot_max = 1.0
seed = 42
`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Geometry.A != 2.0 || cfg.Geometry.B != 1.0 {
		t.Fatalf("geometry = %+v", cfg.Geometry)
	}
	if cfg.Simulation.Method != Adaptive {
		t.Fatalf("Method = %v, want Adaptive", cfg.Simulation.Method)
	}
	if cfg.Simulation.CollisionMethod != collision.Simple {
		t.Fatalf("CollisionMethod = %v, want Simple", cfg.Simulation.CollisionMethod)
	}
	if !cfg.Simulation.UseParallel {
		t.Fatal("UseParallel = false, want true")
	}
	if cfg.Particles.RandomN != 20 || cfg.Particles.RandomSeed != 42 {
		t.Fatalf("particles = %+v", cfg.Particles)
	}
}

func TestDecodeDefaultsWhenMethodsOmitted(t *testing.T) {
	cfg, err := fromTOML(t, `
[geometry]
a = 1.5
b = 1.0

[simulation]
max_time = 1.0
dt_max = 1e-3
dt_min = 1e-9
`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Simulation.Method != Adaptive {
		t.Fatalf("Method = %v, want default Adaptive", cfg.Simulation.Method)
	}
	if cfg.Simulation.CollisionMethod != collision.ParallelTransport {
		t.Fatalf("CollisionMethod = %v, want default ParallelTransport", cfg.Simulation.CollisionMethod)
	}
}

func TestDecodeRejectsUnknownMethod(t *testing.T) {
	_, err := fromTOML(t, `
[simulation]
method = "bogus"
`)
	if err == nil {
		t.Fatal("expected error for unknown simulation.method")
	}
}

func TestDecodeRejectsUnknownCollisionMethod(t *testing.T) {
	_, err := fromTOML(t, `
[simulation]
collision_method = "bogus"
`)
	if err == nil {
		t.Fatal("expected error for unknown simulation.collision_method")
	}
}

func TestDecodeRejectsInvertedStepBounds(t *testing.T) {
	_, err := fromTOML(t, `
[simulation]
method = "adaptive"
dt_max = 1e-9
dt_min = 1e-3
`)
	if err == nil {
		t.Fatal("expected error when dt_min >= dt_max in adaptive mode")
	}
}

func TestDecodeFromFileParticles(t *testing.T) {
	cfg, err := fromTOML(t, `
[particles.from_file]
filename = "swarm.json"
`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Particles.FromFile != "swarm.json" {
		t.Fatalf("FromFile = %q, want swarm.json", cfg.Particles.FromFile)
	}
}
