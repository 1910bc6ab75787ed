package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid body placement: rotate by Angle, then translate by Pos.
type Transform struct {
	Pos   Vec
	Angle float64
}

func Identity() Transform {
	return Transform{}
}

func (t Transform) Apply(v Vec) Vec {
	return v.Rotate(t.Angle).Add(t.Pos)
}

func (t Transform) ApplyInverse(v Vec) Vec {
	return v.Sub(t.Pos).Rotate(-t.Angle)
}

func (t Transform) ApplyPolygon(p Polygon) Polygon {
	return p.Map(t.Apply)
}

func (t Transform) ApplyInversePolygon(p Polygon) Polygon {
	return p.Map(t.ApplyInverse)
}

// Mul composes t after o: the result maps v to t.Apply(o.Apply(v)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{Pos: t.Apply(o.Pos), Angle: t.Angle + o.Angle}
}

func (t Transform) Inverse() Transform {
	return Transform{Pos: t.Pos.Neg().Rotate(-t.Angle), Angle: -t.Angle}
}

// Mat3 returns the homogeneous 2D matrix for t.
func (t Transform) Mat3() mgl64.Mat3 {
	return mgl64.Translate2D(t.Pos.X, t.Pos.Y).Mul3(mgl64.HomogRotate2D(t.Angle))
}

// ApplyMat3 maps v through a homogeneous 2D affine matrix.
func ApplyMat3(m mgl64.Mat3, v Vec) Vec {
	r := m.Mul3x1(mgl64.Vec3{v.X, v.Y, 1})
	return Vec{X: r[0], Y: r[1]}
}

// TransformFromMat3 extracts the rigid part of an affine matrix. Scale and
// shear are discarded.
func TransformFromMat3(m mgl64.Mat3) Transform {
	return Transform{
		Pos:   Vec{X: m.At(0, 2), Y: m.At(1, 2)},
		Angle: math.Atan2(m.At(1, 0), m.At(0, 0)),
	}
}
