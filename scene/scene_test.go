package scene

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/camera"
	"github.com/milk9111/overworld/command"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/input"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/registry"
)

const dt = 1.0 / 60.0

const testScene = `
name: test
player:
  id: player
  tag: player
  position: [0, 2, 0]
  linear_damping: 0.5
  shapes:
    - {type: cylinder, half_height: 1, radius: 0.5}
    - {type: ball, radius: 0.5, offset: [0, 1, 0]}
    - {type: ball, radius: 0.5, offset: [0, -1, 0]}
bodies:
  - id: ground
    kind: fixed
    shapes:
      - {type: cuboid, half_extents: [100, 0.01, 100]}
sensors:
  - id: gate
    position: [0, 1.5, -3]
    scale: [2, 3, 2]
    subject: {id: player}
    script: |
      engine.log("gate", event)
  - id: killfloor
    position: [0, -15, 0]
    scale: [300, 5, 300]
    subject: {id: player}
    on_enter: respawn.tengo
`

func build(t *testing.T, src string, mutate func(o *Options)) *Scene {
	t.Helper()
	spec, err := prefabs.ParseSceneSpec([]byte(src))
	if err != nil {
		t.Fatalf("ParseSceneSpec: %v", err)
	}
	opts := DefaultOptions()
	opts.Logger = logging.Discard()
	if mutate != nil {
		mutate(&opts)
	}
	s, err := Build(spec, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuildRegistersEverything(t *testing.T) {
	s := build(t, testScene, nil)
	for _, id := range []string{"player", "ground", "gate", "killfloor"} {
		if _, ok := s.Registry().Lookup(id); !ok {
			t.Fatalf("%s not registered", id)
		}
	}
	if len(s.Sensors()) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(s.Sensors()))
	}
	if _, ok := s.World().First(component.CameraTagComponent.Kind()); !ok {
		t.Fatalf("camera entity missing")
	}
}

func TestBuildFailsOnMissingScript(t *testing.T) {
	spec, err := prefabs.ParseSceneSpec([]byte("sensors:\n  - id: zone\n    scale: [1, 1, 1]\n    on_enter: missing.tengo\n"))
	if err != nil {
		t.Fatalf("ParseSceneSpec: %v", err)
	}
	opts := DefaultOptions()
	opts.Logger = logging.Discard()
	if _, err := Build(spec, opts); err == nil {
		t.Fatalf("expected missing script error")
	}
}

func TestScenarioTeleportUnknownID(t *testing.T) {
	reg := registry.New()
	tp := command.NewTeleporter(reg, command.TeleportOptions{}, logging.Discard())
	if tp.Teleport("player", mgl64.Vec3{0, 10, 0}) {
		t.Fatalf("teleport on empty registry should report false")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry changed")
	}
}

func TestScenarioKillfloorRespawn(t *testing.T) {
	// The begin event is pushed by hand, standing in for a physics report.
	// The player sits below the floor volume so physics itself never pairs
	// them, and only a matching end event can clear the sensor.
	t.Run("injected_overlap", func(t *testing.T) {
		var buf bytes.Buffer
		s := build(t, testScene, func(o *Options) { o.Logger = log.New(&buf) })
		player := s.Player()
		player.SetPosition(mgl64.Vec3{0, -20, 0}, true)
		floor, _ := s.Registry().Lookup("killfloor")

		s.World().Events().Push(ecs.Event{
			Type: ecs.EventOverlap,
			Data: physics.OverlapEvent{Kind: physics.OverlapBegin, Sensor: floor, Other: player},
		})
		s.Tick(dt)

		volume := sensorByID(t, s, "killfloor")
		if !volume.Active() {
			t.Fatalf("killfloor should be active")
		}
		if got := player.Position(); got != (mgl64.Vec3{0, 10, 0}) {
			t.Fatalf("player at %v, want (0, 10, 0)", got)
		}

		s.Tick(dt)
		if !volume.Active() {
			t.Fatalf("killfloor cleared without an end event")
		}

		s.World().Events().Push(ecs.Event{
			Type: ecs.EventOverlap,
			Data: physics.OverlapEvent{Kind: physics.OverlapEnd, Sensor: floor, Other: player},
		})
		s.Tick(dt)
		if volume.Active() {
			t.Fatalf("killfloor should clear on the end event")
		}
		if n := strings.Count(buf.String(), "respawning player"); n != 1 {
			t.Fatalf("respawn ran %d times, want 1", n)
		}
	})

	t.Run("falling_through", func(t *testing.T) {
		s := build(t, testScene, nil)
		player := s.Player()
		player.SetPosition(mgl64.Vec3{0, -12, 0}, true)
		s.Tick(dt)

		if got := player.Position(); got != (mgl64.Vec3{0, 10, 0}) {
			t.Fatalf("player at %v, want (0, 10, 0)", got)
		}
		s.Tick(dt)
		if sensorByID(t, s, "killfloor").Active() {
			t.Fatalf("killfloor should clear once the player is gone")
		}
	})
}

func TestScenarioCameraToggle(t *testing.T) {
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) { o.Source = src })
	rig := s.Controller().Rig()
	rig.SetAngles(1.0, 0.2)
	src.SetCaptured(true)

	src.Tap(input.ActionToggleCamera)
	s.Tick(dt)
	if rig.Mode() != camera.FirstPerson {
		t.Fatalf("mode = %v, want first person", rig.Mode())
	}
	if rig.Yaw() != 1.0 || rig.Pitch() != 0.2 {
		t.Fatalf("toggle changed angles: %v/%v", rig.Yaw(), rig.Pitch())
	}

	src.Move(0, 10)
	s.Tick(dt)
	if !common.ApproxEqual(rig.Pitch(), 0.18, 1e-12) {
		t.Fatalf("first person pitch = %v, want 0.18", rig.Pitch())
	}
	if rig.Yaw() != 1.0 {
		t.Fatalf("yaw changed to %v", rig.Yaw())
	}

	// Holding the key must not toggle again.
	src.Hold(input.ActionToggleCamera)
	s.Tick(dt)
	s.Tick(dt)
	if rig.Mode() != camera.ThirdPerson {
		t.Fatalf("held key toggled more than once")
	}
}

func TestWalkingThroughGate(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) {
		o.Source = src
		o.Logger = logger
	})

	for i := 0; i < 30; i++ {
		s.Tick(dt)
	}
	src.Hold(input.ActionForward)
	for i := 0; i < 60; i++ {
		s.Tick(dt)
	}

	pos := s.Player().Position()
	if pos.Z() > -5.9 || pos.Z() < -6.01 {
		t.Fatalf("player z = %v, want about -6", pos.Z())
	}
	if pos.Y() < 1.5 || pos.Y() > 1.53 {
		t.Fatalf("player should stay on the ground, y = %v", pos.Y())
	}
	out := buf.String()
	if strings.Count(out, "gate enter") != 1 || strings.Count(out, "gate exit") != 1 {
		t.Fatalf("expected one enter and one exit, log:\n%s", out)
	}
	if cam := s.Camera().Position; cam.Z() <= pos.Z() {
		t.Fatalf("third person camera should trail the player, cam z = %v", cam.Z())
	}
}

func TestInputConsumedOnce(t *testing.T) {
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) { o.Source = src })
	src.Hold(input.ActionForward)
	s.Tick(dt)

	e, ok := s.World().First(component.PlayerTagComponent.Kind())
	if !ok {
		t.Fatalf("player entity missing")
	}
	in, _ := ecs.Get(s.World(), e, component.InputComponent)
	if in != (component.Input{}) {
		t.Fatalf("input left over after tick: %+v", in)
	}
}

func TestFreeFlightThroughScene(t *testing.T) {
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) {
		o.Source = src
		o.FreeFlight = true
	})
	if !s.FreeFlight() {
		t.Fatalf("scene should start in free flight")
	}
	start := s.Camera().Position
	src.Hold(input.ActionForward, input.ActionSprint)
	s.Tick(dt)

	moved := s.Camera().Position.Sub(start).Len()
	if !common.ApproxEqual(moved, 18*dt, 1e-9) {
		t.Fatalf("camera moved %v, want %v", moved, 18*dt)
	}
	if v := s.Player().LinearVelocity(); v.X() != 0 || v.Z() != 0 {
		t.Fatalf("free flight drove the body: %v", v)
	}

	s.SetFreeFlight(false)
	if s.FreeFlight() {
		t.Fatalf("mode switch ignored")
	}
}

func TestDebugDoesNotAffectSimulation(t *testing.T) {
	run := func(debug bool) mgl64.Vec3 {
		src := input.NewVirtual()
		s := build(t, testScene, func(o *Options) {
			o.Source = src
			o.Debug = debug
		})
		src.SetCaptured(true)
		src.Hold(input.ActionForward, input.ActionRight)
		for i := 0; i < 90; i++ {
			if i == 45 {
				src.Move(40, -10)
			}
			s.Tick(dt)
		}
		return s.Player().Position()
	}
	if a, b := run(false), run(true); a != b {
		t.Fatalf("debug changed the simulation: %v vs %v", a, b)
	}
}

func TestDespawnEndsOverlapAndPrunesRegistry(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	s := build(t, testScene, func(o *Options) { o.Logger = logger })
	s.Player().SetPosition(mgl64.Vec3{0, 1.51, -3}, true)
	s.Tick(dt)
	if !sensorByID(t, s, "gate").Active() {
		t.Fatalf("gate should be active")
	}

	if !s.Despawn("player") {
		t.Fatalf("Despawn should succeed")
	}
	s.Tick(dt)
	if sensorByID(t, s, "gate").Active() {
		t.Fatalf("gate should clear after despawn")
	}
	if _, ok := s.Registry().Lookup("player"); ok {
		t.Fatalf("registry still holds despawned body")
	}
	if !strings.Contains(buf.String(), "gate exit") {
		t.Fatalf("exit script did not run")
	}
	if s.Despawn("player") {
		t.Fatalf("second Despawn should fail")
	}
}

func TestDespawnOccupiedSensor(t *testing.T) {
	var buf bytes.Buffer
	s := build(t, testScene, func(o *Options) { o.Logger = log.New(&buf) })
	s.Player().SetPosition(mgl64.Vec3{0, 1.51, -3}, true)
	s.Tick(dt)
	gate := s.Sensors()[0]
	if gate.ID() != "gate" || !gate.Active() {
		t.Fatalf("gate should be active before despawn")
	}
	before := len(s.Sensors())

	if !s.Despawn("gate") {
		t.Fatalf("Despawn should succeed")
	}
	if gate.Active() {
		t.Fatalf("despawned gate still occupied")
	}
	if got := len(s.Sensors()); got != before-1 {
		t.Fatalf("sensors = %d, want %d", got, before-1)
	}
	for _, v := range s.Sensors() {
		if v == gate {
			t.Fatalf("despawned gate still listed")
		}
	}
	if _, ok := s.Registry().Lookup("gate"); ok {
		t.Fatalf("registry still holds the gate")
	}

	s.Tick(dt)
	s.Tick(dt)
	if n := strings.Count(buf.String(), "gate exit"); n != 1 {
		t.Fatalf("gate exit ran %d times, want 1, log:\n%s", n, buf.String())
	}
}

func TestCloseDetachesInput(t *testing.T) {
	var buf bytes.Buffer
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) {
		o.Source = src
		o.Logger = log.New(&buf)
	})
	s.Player().SetPosition(mgl64.Vec3{0, 1.51, -3}, true)
	s.Tick(dt)
	gate := sensorByID(t, s, "gate")

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.Closed() {
		t.Fatalf("source still attached")
	}
	if gate.Active() {
		t.Fatalf("Close should clear sensors")
	}
	if strings.Contains(buf.String(), "gate exit") {
		t.Fatalf("Close ran an exit script")
	}
}

func TestDetachKeepsSource(t *testing.T) {
	src := input.NewVirtual()
	src.SetCaptured(true)
	s := build(t, testScene, func(o *Options) { o.Source = src })
	s.Detach()

	if src.Closed() {
		t.Fatalf("Detach closed the source")
	}
	if !src.Captured() {
		t.Fatalf("Detach released capture")
	}

	src.Tap(input.ActionToggleFreeFlight)
	src.Hold(input.ActionForward)
	if d := s.Tick(dt); d.Any() {
		t.Fatalf("detached scene still read input: %+v", d)
	}
	if v := s.Player().LinearVelocity(); v.X() != 0 || v.Z() != 0 {
		t.Fatalf("detached scene moved the player: %v", v)
	}
}

func sensorByID(t *testing.T, s *Scene, id string) interface{ Active() bool } {
	t.Helper()
	for _, v := range s.Sensors() {
		if v.ID() == id {
			return v
		}
	}
	t.Fatalf("sensor %s not found", id)
	return nil
}

func TestTickReturnsOwnerDirectives(t *testing.T) {
	src := input.NewVirtual()
	s := build(t, testScene, func(o *Options) { o.Source = src })

	src.Tap(input.ActionToggleFreeFlight)
	src.Tap(input.ActionToggleCamera)
	d := s.Tick(dt)
	if !d.ToggleFreeFlight {
		t.Fatalf("free flight toggle not surfaced")
	}
	if d.ToggleCamera {
		t.Fatalf("camera toggle should be consumed by the scene")
	}
	if s.FreeFlight() {
		t.Fatalf("scene must not switch modes on its own")
	}
	if d := s.Tick(dt); d.Any() {
		t.Fatalf("directives repeated: %+v", d)
	}
}
