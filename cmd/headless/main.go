// Command headless runs a scene without a window, driving the player from
// a scripted input source and logging the pose as it goes.
package main

import (
	"flag"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/milk9111/overworld/config"
	"github.com/milk9111/overworld/input"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/scene"
)

var actionNames = map[string]input.Action{
	"forward":  input.ActionForward,
	"backward": input.ActionBackward,
	"left":     input.ActionLeft,
	"right":    input.ActionRight,
	"jump":     input.ActionJump,
	"crouch":   input.ActionCrouch,
	"sprint":   input.ActionSprint,
}

func main() {
	configPath := flag.String("config", "", "settings file")
	sceneName := flag.String("scene", "", "scene file in prefabs/ (overrides config)")
	ticks := flag.Int("ticks", 600, "number of fixed steps to run")
	every := flag.Int("every", 60, "log the pose every n ticks")
	hold := flag.String("hold", "forward", "comma separated actions held for the whole run")
	lookX := flag.Float64("look", 0, "pointer x delta applied each tick")
	freecam := flag.Bool("freecam", false, "run in free flight")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Fatal("loading config", "err", err)
	}
	if *sceneName != "" {
		cfg.Scene = *sceneName
	}
	logger := logging.New(cfg.LogLevel).WithPrefix("headless")

	loader := cfg.Prefabs()
	spec, err := loader.LoadSceneSpec(cfg.Scene)
	if err != nil {
		logger.Fatal("loading scene", "scene", cfg.Scene, "err", err)
	}

	src := input.NewVirtual()
	src.SetCaptured(true)
	for _, name := range strings.Split(*hold, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		a, ok := actionNames[name]
		if !ok {
			logger.Fatal("unknown action", "action", name)
		}
		src.Hold(a)
	}

	opts := scene.DefaultOptions()
	opts.Gravity = cfg.Gravity()
	opts.Controller = cfg.Controller()
	opts.Teleport.ResetVelocity = cfg.Teleport.ResetVelocity
	opts.Source = src
	opts.FreeFlight = *freecam || cfg.FreeCam
	opts.Logger = logger
	opts.LoadScript = loader.LoadScript
	s, err := scene.Build(spec, opts)
	if err != nil {
		logger.Fatal("building scene", "err", err)
	}
	defer s.Close()

	step := cfg.Physics.FixedStep
	for i := 1; i <= *ticks; i++ {
		if *lookX != 0 {
			src.Move(*lookX, 0)
		}
		s.Tick(step)
		if *every > 0 && i%*every == 0 {
			logPose(logger, s, i)
		}
	}
	if *every <= 0 || *ticks%*every != 0 {
		logPose(logger, s, *ticks)
	}
}

func logPose(logger *log.Logger, s *scene.Scene, tick int) {
	cam := s.Camera()
	kv := []any{"tick", tick, "camera", cam.Position}
	if p := s.Player(); p != nil {
		kv = append(kv, "player", p.Position(), "velocity", p.LinearVelocity())
	}
	for _, v := range s.Sensors() {
		if v.Active() {
			kv = append(kv, "inside", v.ID())
		}
	}
	logger.Info("pose", kv...)
}
