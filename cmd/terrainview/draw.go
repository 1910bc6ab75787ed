package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/terrain/terrain"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// camera maps y-up world space onto the y-down screen.
type camera struct {
	x, y   float64
	zoom   float64
	height float64
}

func (c camera) toScreen(v cp.Vector) (float32, float32) {
	return float32((v.X - c.x) * c.zoom), float32(c.height - (v.Y-c.y)*c.zoom)
}

func (c camera) toWorld(sx, sy int) cp.Vector {
	return cp.Vector{X: float64(sx)/c.zoom + c.x, Y: (c.height-float64(sy))/c.zoom + c.y}
}

// terrainDrawer fills terrain shapes with their material color and, in
// debug mode, outlines them.
type terrainDrawer struct {
	screen   *ebiten.Image
	world    *terrain.World
	cam      camera
	outlines bool
}

func (d *terrainDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *terrainDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *terrainDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *terrainDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.fillPolygon(verts[:count], fill)
	if d.outlines {
		d.drawPolygon(verts[:count], outline)
	}
}

func (d *terrainDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *terrainDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *terrainDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.1, G: 0.1, B: 0.1, A: 0.9}
}

func (d *terrainDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if s, ok := d.world.ShapeOf(shape); ok {
		c := toFColor(s.Material().Color)
		if g := d.world.Group(s.Group()); g != nil && g.IsDynamic() {
			c.R, c.G, c.B = c.R*0.8+0.2, c.G*0.8+0.2, c.B*0.8+0.2
		}
		return c
	}
	if a, ok := d.world.AnchorOf(shape); ok {
		return toFColor(a.Material().Color)
	}
	return cp.FColor{R: 1, G: 0, B: 1, A: 0.5}
}

func (d *terrainDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *terrainDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *terrainDrawer) Data() interface{} {
	return nil
}

func (d *terrainDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.cam.toScreen(a)
	x2, y2 := d.cam.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(c), false)
}

func (d *terrainDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *terrainDrawer) fillPolygon(verts []cp.Vector, c cp.FColor) {
	if len(verts) < 3 {
		return
	}
	var path vector.Path
	x, y := d.cam.toScreen(verts[0])
	path.MoveTo(x, y)
	for _, v := range verts[1:] {
		x, y = d.cam.toScreen(v)
		path.LineTo(x, y)
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = c.R
		vs[i].ColorG = c.G
		vs[i].ColorB = c.B
		vs[i].ColorA = c.A
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.FillRule = ebiten.FillRuleNonZero
	d.screen.DrawTriangles(vs, is, whiteImage(), op)
}

func (d *terrainDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

var whiteImageInstance *ebiten.Image

func whiteImage() *ebiten.Image {
	if whiteImageInstance == nil {
		whiteImageInstance = ebiten.NewImage(3, 3)
		whiteImageInstance.Fill(color.White)
	}
	return whiteImageInstance
}

func toFColor(c color.NRGBA) cp.FColor {
	return cp.FColor{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
