package script

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/command"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/registry"
)

const (
	EventEnter = "enter"
	EventExit  = "exit"
)

// Engine compiles sensor scripts against a shared set of bindings. Every
// script sees the globals `engine`, `event` and `sensor`.
type Engine struct {
	registry   *registry.Registry
	teleporter *command.Teleporter
	log        *log.Logger
	bindings   *tengo.ImmutableMap
}

func NewEngine(reg *registry.Registry, tp *command.Teleporter, logger *log.Logger) *Engine {
	e := &Engine{
		registry:   reg,
		teleporter: tp,
		log:        logging.OrDefault(logger).WithPrefix("script"),
	}
	e.bindings = e.buildBindings()
	return e
}

type Script struct {
	name     string
	compiled *tengo.Compiled
	log      *log.Logger
}

func (s *Script) Name() string {
	return s.name
}

func (e *Engine) Compile(name string, src []byte) (*Script, error) {
	sc := tengo.NewScript(src)
	sc.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	_ = sc.Add("engine", e.bindings)
	_ = sc.Add("event", "")
	_ = sc.Add("sensor", "")

	compiled, err := sc.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Script{name: name, compiled: compiled, log: e.log}, nil
}

// Run executes the script for one sensor event.
func (s *Script) Run(event, sensorID string) error {
	if s == nil || s.compiled == nil {
		return fmt.Errorf("script: nil script")
	}
	if err := s.compiled.Set("event", event); err != nil {
		return err
	}
	if err := s.compiled.Set("sensor", sensorID); err != nil {
		return err
	}
	if err := s.compiled.Run(); err != nil {
		return fmt.Errorf("script: run %s: %w", s.name, err)
	}
	return nil
}

// Callback adapts a script to a sensor callback. Failures are logged and
// never reach the caller.
func (s *Script) Callback(event, sensorID string) func() {
	if s == nil {
		return nil
	}
	return func() {
		if err := s.Run(event, sensorID); err != nil {
			s.log.Warn("sensor script failed", "script", s.name, "sensor", sensorID, "event", event, "err", err)
		}
	}
}

func (e *Engine) buildBindings() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["teleport"] = &tengo.UserFunction{Name: "teleport", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		target, ok := objectToVec3(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		if e.teleporter.Teleport(objectAsString(args[0]), target) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		body, ok := e.registry.Lookup(objectAsString(args[0]))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vec3ToObject(body.Position()), nil
	}}

	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		body, ok := e.registry.Lookup(objectAsString(args[0]))
		if !ok {
			return tengo.UndefinedValue, nil
		}
		return vec3ToObject(body.LinearVelocity()), nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		body, ok := e.registry.Lookup(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		v, ok := objectToVec3(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		body.SetLinearVelocity(v, true)
		return tengo.TrueValue, nil
	}}

	values["registered"] = &tengo.UserFunction{Name: "registered", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		if _, ok := e.registry.Lookup(objectAsString(args[0])); ok {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		e.log.Info(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// objectToVec3 accepts [x, y, z] or {x: .., y: .., z: ..}.
func objectToVec3(obj tengo.Object) (mgl64.Vec3, bool) {
	var items []tengo.Object
	switch v := obj.(type) {
	case *tengo.Array:
		items = v.Value
	case *tengo.ImmutableArray:
		items = v.Value
	case *tengo.Map:
		return mapToVec3(v.Value)
	case *tengo.ImmutableMap:
		return mapToVec3(v.Value)
	default:
		return mgl64.Vec3{}, false
	}
	if len(items) != 3 {
		return mgl64.Vec3{}, false
	}
	var out mgl64.Vec3
	for i, item := range items {
		f, ok := tengo.ToFloat64(item)
		if !ok {
			return mgl64.Vec3{}, false
		}
		out[i] = f
	}
	return out, true
}

func mapToVec3(m map[string]tengo.Object) (mgl64.Vec3, bool) {
	var out mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		obj, ok := m[key]
		if !ok {
			return mgl64.Vec3{}, false
		}
		f, ok := tengo.ToFloat64(obj)
		if !ok {
			return mgl64.Vec3{}, false
		}
		out[i] = f
	}
	return out, true
}

func vec3ToObject(v mgl64.Vec3) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X()},
		&tengo.Float{Value: v.Y()},
		&tengo.Float{Value: v.Z()},
	}}
}
