package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/milk9111/overworld/config"
	"github.com/milk9111/overworld/input"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/scene"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int

	cfg     *config.Config
	log     *log.Logger
	scene   *scene.Scene
	watcher *prefabs.Watcher
	overlay *Overlay
	pauseUI *ebitenui.UI

	paused    bool
	quit      bool
	clipboard bool
	freecam   bool
	debug     bool
}

func NewGame(cfg *config.Config, logger *log.Logger) (*Game, error) {
	g := &Game{
		cfg:     cfg,
		log:     logger,
		overlay: NewOverlay(),
		freecam: cfg.FreeCam,
		debug:   cfg.Debug,
	}
	g.pauseUI = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable, pose copy disabled", "err", err)
	} else {
		g.clipboard = true
	}

	s, err := g.loadScene()
	if err != nil {
		return nil, err
	}
	g.scene = s

	if cfg.Watch {
		w, err := prefabs.NewWatcher(cfg.PrefabDir, filepath.Join(cfg.PrefabDir, "scripts"))
		if err != nil {
			logger.Warn("prefab watcher disabled", "err", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) loadScene() (*scene.Scene, error) {
	loader := g.cfg.Prefabs()
	spec, err := loader.LoadSceneSpec(g.cfg.Scene)
	if err != nil {
		return nil, err
	}
	opts := scene.DefaultOptions()
	opts.Gravity = g.cfg.Gravity()
	opts.Controller = g.cfg.Controller()
	opts.Teleport.ResetVelocity = g.cfg.Teleport.ResetVelocity
	opts.Source = input.NewEbitenSource()
	opts.FreeFlight = g.freecam
	opts.Debug = g.debug
	opts.Logger = g.log
	opts.LoadScript = loader.LoadScript
	return scene.Build(spec, opts)
}

func (g *Game) Update() error {
	g.frames++
	if g.quit {
		return ebiten.Termination
	}

	g.reloadIfChanged()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setPaused(!g.paused)
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	d := g.scene.Tick(g.cfg.Physics.FixedStep)
	if d.ToggleFreeFlight {
		g.freecam = !g.freecam
		g.scene.SetFreeFlight(g.freecam)
		g.log.Info("free flight", "on", g.freecam)
	}
	if d.ToggleDebug {
		g.debug = !g.debug
		g.scene.SetDebug(g.debug)
	}
	if d.CopyPose {
		g.copyPose()
	}
	return nil
}

func (g *Game) setPaused(p bool) {
	g.paused = p
	if p {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Changes:
			if !ok {
				g.watcher = nil
				return
			}
			s, err := g.loadScene()
			if err != nil {
				g.log.Warn("reload failed, keeping current scene", "path", change.Path, "err", err)
				continue
			}
			// Detach rather than Close: closing would release the cursor the
			// new scene's source has already inherited.
			g.scene.Detach()
			g.scene = s
			g.log.Info("scene reloaded", "changed", change.Kind, "path", change.Path)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("prefab watcher", "err", err)
			}
		default:
			return
		}
	}
}

func (g *Game) copyPose() {
	cam := g.scene.Camera()
	text := fmt.Sprintf("camera:\n  position: [%.3f, %.3f, %.3f]\n  orientation: [%.4f, %.4f, %.4f, %.4f]\n",
		cam.Position.X(), cam.Position.Y(), cam.Position.Z(),
		cam.Orientation.X(), cam.Orientation.Y(), cam.Orientation.Z(), cam.Orientation.W)
	if p := g.scene.Player(); p != nil {
		pos := p.Position()
		text += fmt.Sprintf("player:\n  position: [%.3f, %.3f, %.3f]\n", pos.X(), pos.Y(), pos.Z())
	}
	if !g.clipboard {
		g.log.Info("camera pose", "pose", text)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	g.log.Info("camera pose copied to clipboard")
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.scene.Debug() {
		g.overlay.Draw(screen, g.scene)
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()))
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
		g.watcher = nil
	}
	if g.scene != nil {
		_ = g.scene.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
