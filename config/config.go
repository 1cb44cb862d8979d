package config

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/milk9111/overworld/camera"
	"github.com/milk9111/overworld/controller"
	"github.com/milk9111/overworld/prefabs"
)

const envPrefix = "OVERWORLD"

// Config holds runtime settings. Scene content lives in prefabs.
type Config struct {
	Scene     string         `mapstructure:"scene"`
	PrefabDir string         `mapstructure:"prefab_dir"`
	LogLevel  string         `mapstructure:"log_level"`
	Debug     bool           `mapstructure:"debug"`
	FreeCam   bool           `mapstructure:"freecam"`
	Watch     bool           `mapstructure:"watch"`
	Player    PlayerConfig   `mapstructure:"player"`
	Camera    CameraConfig   `mapstructure:"camera"`
	Teleport  TeleportConfig `mapstructure:"teleport"`
	Physics   PhysicsConfig  `mapstructure:"physics"`
}

type PlayerConfig struct {
	Speed            float64 `mapstructure:"speed"`
	SprintMultiplier float64 `mapstructure:"sprint_multiplier"`
}

type CameraConfig struct {
	Sensitivity  float64   `mapstructure:"sensitivity"`
	EyeHeight    float64   `mapstructure:"eye_height"`
	Smoothing    float64   `mapstructure:"smoothing"`
	OrbitOffset  []float64 `mapstructure:"orbit_offset"`
	PitchEpsilon float64   `mapstructure:"pitch_epsilon"`
}

type TeleportConfig struct {
	ResetVelocity bool `mapstructure:"reset_velocity"`
}

type PhysicsConfig struct {
	Gravity   []float64 `mapstructure:"gravity"`
	FixedStep float64   `mapstructure:"fixed_step"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scene", "scene.yaml")
	v.SetDefault("prefab_dir", "prefabs")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
	v.SetDefault("freecam", false)
	v.SetDefault("watch", false)
	v.SetDefault("player.speed", 6.0)
	v.SetDefault("player.sprint_multiplier", 3.0)
	v.SetDefault("camera.sensitivity", 0.002)
	v.SetDefault("camera.eye_height", 1.6)
	v.SetDefault("camera.smoothing", 0.12)
	v.SetDefault("camera.orbit_offset", []float64{0, 3, 6})
	v.SetDefault("camera.pitch_epsilon", 0.01)
	v.SetDefault("teleport.reset_velocity", false)
	v.SetDefault("physics.gravity", []float64{0, -9.81, 0})
	v.SetDefault("physics.fixed_step", 1.0/60.0)
}

// Load reads settings from path (optional) and OVERWORLD_* environment
// variables on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic("config: defaults invalid: " + err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	if len(c.Camera.OrbitOffset) != 3 {
		return fmt.Errorf("config: camera.orbit_offset needs 3 values, got %d", len(c.Camera.OrbitOffset))
	}
	if len(c.Physics.Gravity) != 3 {
		return fmt.Errorf("config: physics.gravity needs 3 values, got %d", len(c.Physics.Gravity))
	}
	if c.Physics.FixedStep <= 0 {
		return fmt.Errorf("config: physics.fixed_step must be positive")
	}
	return nil
}

func (c *Config) Controller() controller.Config {
	return controller.Config{
		Speed:            c.Player.Speed,
		SprintMultiplier: c.Player.SprintMultiplier,
		Camera: camera.Config{
			Sensitivity:  c.Camera.Sensitivity,
			EyeHeight:    c.Camera.EyeHeight,
			Smoothing:    c.Camera.Smoothing,
			OrbitOffset:  mgl64.Vec3{c.Camera.OrbitOffset[0], c.Camera.OrbitOffset[1], c.Camera.OrbitOffset[2]},
			PitchEpsilon: c.Camera.PitchEpsilon,
		},
	}
}

// Prefabs is the loader for scene and script files. PrefabDir overrides
// the embedded copies.
func (c *Config) Prefabs() prefabs.Loader {
	return prefabs.Loader{Dir: c.PrefabDir}
}

func (c *Config) Gravity() mgl64.Vec3 {
	return mgl64.Vec3{c.Physics.Gravity[0], c.Physics.Gravity[1], c.Physics.Gravity[2]}
}
