package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/controller"
)

func TestDefaultsMatchController(t *testing.T) {
	cfg := Default()
	if got, want := cfg.Controller(), controller.DefaultConfig(); got != want {
		t.Fatalf("Controller() = %+v, want %+v", got, want)
	}
	if cfg.Gravity() != (mgl64.Vec3{0, -9.81, 0}) {
		t.Fatalf("Gravity() = %v", cfg.Gravity())
	}
	if cfg.Teleport.ResetVelocity {
		t.Fatalf("teleport should keep velocity by default")
	}
	if cfg.Prefabs().Dir != "prefabs" {
		t.Fatalf("Prefabs().Dir = %q", cfg.Prefabs().Dir)
	}
	if _, err := cfg.Prefabs().LoadSceneSpec(cfg.Scene); err != nil {
		t.Fatalf("default scene should load: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "overrides",
			body: "player:\n  speed: 8\nteleport:\n  reset_velocity: true\ndebug: true\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Player.Speed != 8 || !cfg.Teleport.ResetVelocity || !cfg.Debug {
					t.Fatalf("overrides not applied: %+v", cfg)
				}
				if cfg.Player.SprintMultiplier != 3 {
					t.Fatalf("unset keys should keep defaults")
				}
			},
		},
		{
			name:    "bad_orbit_offset",
			body:    "camera:\n  orbit_offset: [1, 2]\n",
			wantErr: true,
		},
		{
			name:    "bad_step",
			body:    "physics:\n  fixed_step: 0\n",
			wantErr: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "overworld.yaml")
			if err := os.WriteFile(path, []byte(c.body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			cfg, err := Load(path)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			c.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("OVERWORLD_PLAYER_SPEED", "9")
	t.Setenv("OVERWORLD_LOG_LEVEL", "debug")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Player.Speed != 9 || cfg.LogLevel != "debug" {
		t.Fatalf("env not applied: speed=%v level=%v", cfg.Player.Speed, cfg.LogLevel)
	}
}
