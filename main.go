package main

import (
	"flag"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/overworld/config"
	"github.com/milk9111/overworld/logging"
)

func main() {
	configPath := flag.String("config", "", "settings file (yaml, toml or json)")
	sceneName := flag.String("scene", "", "scene file in prefabs/ (overrides config)")
	debug := flag.Bool("debug", false, "start with the debug overlay")
	freecam := flag.Bool("freecam", false, "start in free flight")
	watch := flag.Bool("watch", false, "reload prefabs when they change on disk")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Fatal("loading config", "err", err)
	}
	if *sceneName != "" {
		cfg.Scene = *sceneName
	}
	cfg.Debug = cfg.Debug || *debug
	cfg.FreeCam = cfg.FreeCam || *freecam
	cfg.Watch = cfg.Watch || *watch

	logger := logging.New(cfg.LogLevel)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("overworld")
	ebiten.SetTPS(int(math.Round(1 / cfg.Physics.FixedStep)))

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("starting game", "err", err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		logger.Error("game exited", "err", err)
		game.Close()
		os.Exit(1)
	}
}
