package scene

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/camera"
	"github.com/milk9111/overworld/command"
	"github.com/milk9111/overworld/controller"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/input"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/registry"
	"github.com/milk9111/overworld/script"
	"github.com/milk9111/overworld/sensor"
)

type Options struct {
	Gravity    mgl64.Vec3
	Controller controller.Config
	Teleport   command.TeleportOptions
	Source     input.Source
	FreeFlight bool
	Debug      bool
	Logger     *log.Logger
	// LoadScript resolves sensor script names. Defaults to prefabs.LoadScript.
	LoadScript func(name string) ([]byte, error)
}

func DefaultOptions() Options {
	return Options{
		Gravity:    mgl64.Vec3{0, -9.81, 0},
		Controller: controller.DefaultConfig(),
	}
}

// Scene is one play session: physics, registry, entities and the systems
// that tick them.
type Scene struct {
	name       string
	world      *ecs.World
	scheduler  *ecs.Scheduler
	physics    *physics.World
	registry   *registry.Registry
	teleporter *command.Teleporter
	engine     *script.Engine
	sampler    *input.Sampler
	inputs     *system.InputSystem
	controller *controller.Controller
	volumes    []*sensor.Volume
	colors     map[string]color.Color
	debug      bool
	log        *log.Logger
}

// Build creates every body first and registers it only once it exists.
func Build(spec prefabs.SceneSpec, opts Options) (*Scene, error) {
	logger := logging.OrDefault(opts.Logger)
	loadScript := opts.LoadScript
	if loadScript == nil {
		loadScript = prefabs.LoadScript
	}

	s := &Scene{
		name:     spec.Name,
		world:    ecs.NewWorld(),
		physics:  physics.NewWorld(opts.Gravity, logger),
		registry: registry.New(),
		colors:   make(map[string]color.Color),
		debug:    opts.Debug,
		log:      logger,
	}
	s.teleporter = command.NewTeleporter(s.registry, opts.Teleport, logger)
	s.engine = script.NewEngine(s.registry, s.teleporter, logger)

	for _, b := range spec.Bodies {
		desc, err := b.Desc()
		if err != nil {
			return nil, err
		}
		e, err := s.spawn(desc, b.Color.Or(nil))
		if err != nil {
			return nil, err
		}
		if desc.Kind == physics.Fixed {
			_ = ecs.Add(s.world, e, component.StaticTagComponent, component.StaticTag{})
		}
	}

	if err := s.spawnPlayer(spec.Player, opts); err != nil {
		return nil, err
	}

	for _, sn := range spec.Sensors {
		if err := s.spawnSensor(sn, loadScript); err != nil {
			return nil, err
		}
	}

	if opts.Source != nil {
		s.sampler = input.NewSampler(opts.Source, logger)
	}
	s.inputs = system.NewInputSystem(s.sampler)
	s.scheduler = ecs.NewScheduler(
		s.inputs,
		system.NewControllerSystem(),
		system.NewPhysicsSystem(s.physics),
		system.NewSensorSystem(),
		system.NewCameraSystem(),
	)

	s.log.Info("scene built", "name", spec.Name, "bodies", s.registry.Len(), "sensors", len(s.volumes))
	return s, nil
}

func (s *Scene) spawn(desc physics.BodyDesc, c color.Color) (ecs.Entity, error) {
	body, err := s.physics.CreateBody(desc)
	if err != nil {
		return 0, fmt.Errorf("scene: spawn: %w", err)
	}
	s.registry.Register(body.ID(), body)

	e := s.world.CreateEntity()
	_ = ecs.Add(s.world, e, component.NameComponent, component.Name{ID: body.ID()})
	_ = ecs.Add(s.world, e, component.PhysicsBodyComponent, component.PhysicsBody{Body: body})
	if c != nil {
		s.colors[body.ID()] = c
	}
	return e, nil
}

func (s *Scene) spawnPlayer(spec prefabs.PlayerSpec, opts Options) error {
	desc, err := spec.Desc()
	if err != nil {
		return err
	}
	e, err := s.spawn(desc, spec.Color.Or(nil))
	if err != nil {
		return err
	}

	cam := camera.NewCamera()
	s.controller = controller.New(opts.Controller, s.log)
	body, _ := s.registry.Lookup(desc.ID)
	s.controller.BindBody(body)
	s.controller.BindCamera(cam)
	s.controller.SetFreeFlight(opts.FreeFlight)

	_ = ecs.Add(s.world, e, component.PlayerTagComponent, component.PlayerTag{})
	_ = ecs.Add(s.world, e, component.InputComponent, component.Input{})
	_ = ecs.Add(s.world, e, component.CharacterControllerComponent, component.CharacterController{Controller: s.controller})

	camEnt := s.world.CreateEntity()
	_ = ecs.Add(s.world, camEnt, component.CameraTagComponent, component.CameraTag{})
	_ = ecs.Add(s.world, camEnt, component.CameraComponent, component.Camera{Camera: cam})
	return nil
}

func (s *Scene) spawnSensor(spec prefabs.SensorSpec, loadScript func(string) ([]byte, error)) error {
	enter, err := s.compile(spec.ID, spec.OnEnter, spec.Script, loadScript)
	if err != nil {
		return err
	}
	exit, err := s.compile(spec.ID, spec.OnExit, spec.Script, loadScript)
	if err != nil {
		return err
	}

	v := sensor.NewVolume(sensor.Config{
		ID:       spec.ID,
		Position: spec.Position.Vec(),
		Scale:    spec.Scale.Vec(),
		Subject:  sensor.Subject{ID: spec.Subject.ID, Tag: spec.Subject.Tag},
		OnEnter:  enter.Callback(script.EventEnter, spec.ID),
		OnExit:   exit.Callback(script.EventExit, spec.ID),
	})
	e, err := s.spawn(v.Desc(), spec.Color.Or(nil))
	if err != nil {
		return err
	}
	_ = ecs.Add(s.world, e, component.SensorComponent, component.Sensor{Volume: v})
	s.volumes = append(s.volumes, v)
	return nil
}

// compile picks the named file when set and falls back to inline source.
func (s *Scene) compile(sensorID, file, inline string, loadScript func(string) ([]byte, error)) (*script.Script, error) {
	switch {
	case file != "":
		src, err := loadScript(file)
		if err != nil {
			return nil, fmt.Errorf("scene: sensor %q: load %s: %w", sensorID, file, err)
		}
		return s.engine.Compile(file, src)
	case inline != "":
		return s.engine.Compile(sensorID, []byte(inline))
	default:
		return nil, nil
	}
}

// Tick advances the scene by dt seconds and returns the directives the
// scene itself does not act on. Camera toggles are consumed internally.
func (s *Scene) Tick(dt float64) input.Directives {
	if s == nil {
		return input.Directives{}
	}
	s.scheduler.Update(s.world, dt)
	d := s.inputs.Last()
	d.ToggleCamera = false
	return d
}

// SetFreeFlight is the owner's mode switch for the player controller.
func (s *Scene) SetFreeFlight(on bool) {
	s.controller.SetFreeFlight(on)
}

func (s *Scene) FreeFlight() bool {
	return s.controller.Mode() == controller.FreeFlight
}

// SetDebug only changes what gets drawn.
func (s *Scene) SetDebug(on bool) {
	s.debug = on
}

func (s *Scene) Debug() bool {
	return s.debug
}

// Despawn removes a body from physics, the registry and the world. A
// despawned sensor that was occupied fires its exit callback, since
// nothing can be inside a volume that no longer exists.
func (s *Scene) Despawn(id string) bool {
	e, ok := s.entityByName(id)
	if !ok {
		return false
	}
	if sc, ok := ecs.Get(s.world, e, component.SensorComponent); ok && sc.Volume != nil {
		s.removeVolume(sc.Volume)
		sc.Volume.Reconcile(nil)
	}
	if pb, ok := ecs.Get(s.world, e, component.PhysicsBodyComponent); ok && pb.Body != nil {
		s.physics.RemoveBody(pb.Body.ID())
	}
	s.registry.Unregister(id)
	s.world.DestroyEntity(e)
	if b := s.controller.Body(); b != nil && b.ID() == id {
		s.controller.BindBody(nil)
	}
	delete(s.colors, id)
	s.log.Debug("despawned", "id", id)
	return true
}

func (s *Scene) entityByName(id string) (ecs.Entity, bool) {
	for _, e := range s.world.Query(component.NameComponent.Kind()) {
		if n, ok := ecs.Get(s.world, e, component.NameComponent); ok && n.ID == id {
			return e, true
		}
	}
	return 0, false
}

func (s *Scene) removeVolume(v *sensor.Volume) {
	for i, have := range s.volumes {
		if have == v {
			s.volumes = append(s.volumes[:i], s.volumes[i+1:]...)
			return
		}
	}
}

// Close detaches input and releases it. Sensors are cleared without
// running their scripts. The scene must not be ticked afterwards.
func (s *Scene) Close() error {
	if s == nil {
		return errors.New("scene: nil scene")
	}
	if s.sampler != nil {
		s.sampler.Close()
	}
	for _, v := range s.volumes {
		v.Reset()
	}
	return nil
}

// Detach stops the scene sampling input but leaves the source as it is,
// for handing the platform over to a replacement scene.
func (s *Scene) Detach() {
	if s == nil || s.sampler == nil {
		return
	}
	s.sampler.Detach()
}

func (s *Scene) Name() string                       { return s.name }
func (s *Scene) World() *ecs.World                  { return s.world }
func (s *Scene) Physics() *physics.World            { return s.physics }
func (s *Scene) Registry() *registry.Registry       { return s.registry }
func (s *Scene) Teleporter() *command.Teleporter    { return s.teleporter }
func (s *Scene) Controller() *controller.Controller { return s.controller }
func (s *Scene) Sensors() []*sensor.Volume          { return s.volumes }

// Camera is the camera held by the scene's camera entity.
func (s *Scene) Camera() *camera.Camera {
	e, ok := s.world.First(component.CameraTagComponent.Kind())
	if !ok {
		return nil
	}
	c, _ := ecs.Get(s.world, e, component.CameraComponent)
	return c.Camera
}

// Color is the debug color for a body, if the scene file set one.
func (s *Scene) Color(id string) (color.Color, bool) {
	c, ok := s.colors[id]
	return c, ok
}

// Player returns the body the controller drives.
func (s *Scene) Player() physics.Body {
	return s.controller.Body()
}
