package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/scene"
)

const overlayZoom = 12.0 // pixels per metre

// Overlay draws a top-down view of the x/z plane around the camera.
// Sensors turn green while something is inside them.
type Overlay struct {
	face ebtext.Face
}

func NewOverlay() *Overlay {
	return &Overlay{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

func (o *Overlay) Draw(screen *ebiten.Image, s *scene.Scene) {
	cam := s.Camera()
	if cam == nil {
		return
	}
	focus := cam.Position
	if p := s.Player(); p != nil && !s.FreeFlight() {
		focus = p.Position()
	}

	active := make(map[string]bool, len(s.Sensors()))
	for _, v := range s.Sensors() {
		active[v.ID()] = v.Active()
	}

	w := s.World()
	for _, e := range w.Query(component.PhysicsBodyComponent.Kind(), component.NameComponent.Kind()) {
		pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent)
		b, ok := pb.Body.(*physics.RigidBody)
		if !ok {
			continue
		}
		name, _ := ecs.Get(w, e, component.NameComponent)

		x, y, bw, bh := o.rect(b.Position(), b.HalfExtents(), focus)
		if bw > 2*baseWidth && bh > 2*baseHeight {
			continue
		}
		static := ecs.Has(w, e, component.StaticTagComponent)
		clr := bodyColor(s, b, static, active)
		vector.StrokeRect(screen, x, y, bw, bh, 1, clr, false)
		switch {
		case b.Sensor():
			o.label(screen, fmt.Sprintf("%s (%d)", name.ID, len(s.Physics().Overlapping(name.ID))), x, y-14, clr)
		case !static:
			o.label(screen, name.ID, x, y-14, clr)
		}
	}

	cx, cy := o.project(cam.Position, focus)
	fwd := cam.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
	vector.StrokeCircle(screen, cx, cy, 4, 1, colornames.Gold, true)
	vector.StrokeLine(screen, cx, cy, cx+float32(fwd.X()*20), cy+float32(fwd.Z()*20), 1, colornames.Gold, true)

	mode := "grounded"
	if s.FreeFlight() {
		mode = "free flight"
	}
	rig := s.Controller().Rig()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("scene %s  mode %s  camera %s  yaw %.2f  pitch %.2f",
		s.Name(), mode, rig.Mode(), rig.Yaw(), rig.Pitch()), 0, 16)
}

func (o *Overlay) project(p, focus mgl64.Vec3) (float32, float32) {
	x := (p.X()-focus.X())*overlayZoom + baseWidth/2
	y := (p.Z()-focus.Z())*overlayZoom + baseHeight/2
	return float32(x), float32(y)
}

func (o *Overlay) rect(center, half, focus mgl64.Vec3) (x, y, w, h float32) {
	corner := center.Sub(mgl64.Vec3{half.X(), 0, half.Z()})
	x, y = o.project(corner, focus)
	w = float32(math.Max(2*half.X()*overlayZoom, 1))
	h = float32(math.Max(2*half.Z()*overlayZoom, 1))
	return x, y, w, h
}

func (o *Overlay) label(screen *ebiten.Image, s string, x, y float32, clr color.Color) {
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	ebtext.Draw(screen, s, o.face, op)
}

// bodyColor keys off the sensor flag and static tag. Scene colors override
// everything but sensors.
func bodyColor(s *scene.Scene, b *physics.RigidBody, static bool, active map[string]bool) color.Color {
	if b.Sensor() {
		if active[b.ID()] {
			return colornames.Lime
		}
		return colornames.Darkgreen
	}
	if c, ok := s.Color(b.ID()); ok {
		return c
	}
	if static {
		return colornames.Lightgrey
	}
	switch b.Kind() {
	case physics.Dynamic:
		if b.Sleeping() {
			return colornames.Steelblue
		}
		return colornames.Crimson
	case physics.Kinematic:
		return colornames.Orange
	default:
		return colornames.Lightgrey
	}
}
