package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/overworld/physics"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	return LoadSpecFrom[T](DefaultLoader, filename)
}

func LoadSpecFrom[T any](l Loader, filename string) (T, error) {
	var zero T
	data, err := l.Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec describes everything a scene spawns.
type SceneSpec struct {
	Name    string       `yaml:"name"`
	Player  PlayerSpec   `yaml:"player"`
	Bodies  []BodySpec   `yaml:"bodies"`
	Sensors []SensorSpec `yaml:"sensors"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return DefaultLoader.LoadSceneSpec(filename)
}

func (l Loader) LoadSceneSpec(filename string) (SceneSpec, error) {
	spec, err := LoadSpecFrom[SceneSpec](l, filename)
	if err != nil {
		return SceneSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// ParseSceneSpec decodes and validates a scene from raw YAML.
func ParseSceneSpec(data []byte) (SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return SceneSpec{}, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return SceneSpec{}, err
	}
	return spec, nil
}

// Validate checks ids are unique and every body has a valid description.
func (s SceneSpec) Validate() error {
	seen := map[string]bool{}
	claim := func(id string) error {
		if id == "" {
			return nil
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidSpec, id)
		}
		seen[id] = true
		return nil
	}

	if err := claim(s.Player.ID); err != nil {
		return err
	}
	if _, err := s.Player.Desc(); err != nil {
		return err
	}
	for _, b := range s.Bodies {
		if err := claim(b.ID); err != nil {
			return err
		}
		if _, err := b.Desc(); err != nil {
			return err
		}
	}
	for _, sn := range s.Sensors {
		if sn.ID == "" {
			return fmt.Errorf("%w: sensor without id", ErrInvalidSpec)
		}
		if err := claim(sn.ID); err != nil {
			return err
		}
		if sn.Scale[0] <= 0 || sn.Scale[1] <= 0 || sn.Scale[2] <= 0 {
			return fmt.Errorf("%w: sensor %q needs a positive scale", ErrInvalidSpec, sn.ID)
		}
	}
	return nil
}

type PlayerSpec struct {
	ID            string      `yaml:"id"`
	Tag           string      `yaml:"tag"`
	Position      Vec3        `yaml:"position"`
	LinearDamping float64     `yaml:"linear_damping"`
	Shapes        []ShapeSpec `yaml:"shapes"`
	Color         *YAMLColor  `yaml:"color"`
}

func (p PlayerSpec) Desc() (physics.BodyDesc, error) {
	id := p.ID
	if id == "" {
		id = "player"
	}
	tag := p.Tag
	if tag == "" {
		tag = "player"
	}
	shapes, err := buildShapes(p.Shapes)
	if err != nil {
		return physics.BodyDesc{}, fmt.Errorf("player: %w", err)
	}
	return physics.BodyDesc{
		ID:            id,
		Tag:           tag,
		Kind:          physics.Dynamic,
		Position:      p.Position.Vec(),
		LinearDamping: p.LinearDamping,
		Shapes:        shapes,
	}, nil
}

type BodySpec struct {
	ID            string      `yaml:"id"`
	Tag           string      `yaml:"tag"`
	Kind          string      `yaml:"kind"`
	Position      Vec3        `yaml:"position"`
	Scale         Vec3        `yaml:"scale"`
	Shapes        []ShapeSpec `yaml:"shapes"`
	LinearDamping float64     `yaml:"linear_damping"`
	Color         *YAMLColor  `yaml:"color"`
}

// Desc converts the spec. A body without shapes but with a scale gets a
// single box of that full size.
func (b BodySpec) Desc() (physics.BodyDesc, error) {
	kind, err := parseKind(b.Kind)
	if err != nil {
		return physics.BodyDesc{}, fmt.Errorf("body %q: %w", b.ID, err)
	}
	shapes, err := buildShapes(b.Shapes)
	if err != nil {
		return physics.BodyDesc{}, fmt.Errorf("body %q: %w", b.ID, err)
	}
	if len(shapes) == 0 && b.Scale != (Vec3{}) {
		shapes = []physics.Shape{{Kind: physics.Cuboid, HalfExtents: b.Scale.Vec().Mul(0.5)}}
	}
	return physics.BodyDesc{
		ID:            b.ID,
		Tag:           b.Tag,
		Kind:          kind,
		Position:      b.Position.Vec(),
		Shapes:        shapes,
		LinearDamping: b.LinearDamping,
	}, nil
}

type ShapeSpec struct {
	Type        string  `yaml:"type"`
	HalfExtents Vec3    `yaml:"half_extents"`
	Radius      float64 `yaml:"radius"`
	HalfHeight  float64 `yaml:"half_height"`
	Offset      Vec3    `yaml:"offset"`
}

func (s ShapeSpec) Shape() (physics.Shape, error) {
	out := physics.Shape{
		HalfExtents: s.HalfExtents.Vec(),
		Radius:      s.Radius,
		HalfHeight:  s.HalfHeight,
		Offset:      s.Offset.Vec(),
	}
	switch strings.ToLower(s.Type) {
	case "cuboid", "box", "":
		out.Kind = physics.Cuboid
	case "ball", "sphere":
		out.Kind = physics.Ball
	case "cylinder":
		out.Kind = physics.Cylinder
	case "capsule":
		out.Kind = physics.Capsule
	default:
		return physics.Shape{}, fmt.Errorf("%w: unknown shape type %q", ErrInvalidSpec, s.Type)
	}
	return out, nil
}

type SubjectSpec struct {
	ID  string `yaml:"id"`
	Tag string `yaml:"tag"`
}

// SensorSpec is a trigger box. OnEnter and OnExit name script files;
// Script is inline source run for both events.
type SensorSpec struct {
	ID       string      `yaml:"id"`
	Position Vec3        `yaml:"position"`
	Scale    Vec3        `yaml:"scale"`
	Subject  SubjectSpec `yaml:"subject"`
	OnEnter  string      `yaml:"on_enter"`
	OnExit   string      `yaml:"on_exit"`
	Script   string      `yaml:"script"`
	Color    *YAMLColor  `yaml:"color"`
}

func buildShapes(specs []ShapeSpec) ([]physics.Shape, error) {
	shapes := make([]physics.Shape, 0, len(specs))
	for _, s := range specs {
		shape, err := s.Shape()
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

func parseKind(s string) (physics.Kind, error) {
	switch strings.ToLower(s) {
	case "fixed", "static", "":
		return physics.Fixed, nil
	case "dynamic":
		return physics.Dynamic, nil
	case "kinematic":
		return physics.Kinematic, nil
	default:
		return physics.Fixed, fmt.Errorf("%w: unknown body kind %q", ErrInvalidSpec, s)
	}
}

// Vec3 decodes from [x, y, z] or {x: .., y: .., z: ..}.
type Vec3 [3]float64

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("vector needs 3 values, got %d", len(xs))
		}
		*v = Vec3{xs[0], xs[1], xs[2]}
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{m.X, m.Y, m.Z}
		return nil
	default:
		return fmt.Errorf("vector must be a list or a map")
	}
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	var channels [4]uint8
	channels[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		channels[i] = uint8(v)
	}

	c.Color = color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}
	return nil
}

// Or returns the decoded color, or fallback when none was set.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
