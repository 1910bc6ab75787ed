package geom

import (
	"math"
	"math/rand/v2"

	"github.com/milk9111/terrain/common"
)

// Disk approximates a circle with a regular CCW polygon.
func Disk(center Vec, radius float64, segments int) Polygon {
	if radius <= 0 {
		return nil
	}
	if segments < 3 {
		segments = common.DefaultDiskSegments
	}
	out := make(Polygon, segments)
	for i := 0; i < segments; i++ {
		t := 2 * math.Pi * float64(i) / float64(segments)
		out[i] = Vec{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius}
	}
	return out
}

// Capsule sweeps a disk of the given radius along a-b. segments is the
// vertex budget of a full circle; each end cap gets half of it.
func Capsule(a, b Vec, radius float64, segments int) Polygon {
	if radius <= 0 {
		return nil
	}
	if a.Equal(b, common.Epsilon) {
		return Disk(a, radius, segments)
	}
	if segments < 4 {
		segments = common.DefaultDiskSegments
	}
	half := segments / 2
	dir := b.Sub(a).Normalize()
	base := math.Atan2(dir.Y, dir.X)

	out := make(Polygon, 0, 2*(half+1))
	// cap around b from -90 to +90 degrees, then around a from +90 to +270
	for i := 0; i <= half; i++ {
		t := base - math.Pi/2 + math.Pi*float64(i)/float64(half)
		out = append(out, Vec{X: b.X + math.Cos(t)*radius, Y: b.Y + math.Sin(t)*radius})
	}
	for i := 0; i <= half; i++ {
		t := base + math.Pi/2 + math.Pi*float64(i)/float64(half)
		out = append(out, Vec{X: a.X + math.Cos(t)*radius, Y: a.Y + math.Sin(t)*radius})
	}
	return out.Clean(1e-12)
}

// CrackParams shapes a radial crack cutter.
type CrackParams struct {
	Spokes   int
	Rings    int
	Variance float64
	Seed     uint64
}

// RadialCrack builds a jagged star polygon around center. Each spoke ends in
// a tip pushed out by up to Variance*radius; Rings controls how many notched
// vertices sit between neighbouring tips. The polygon is star-shaped about
// center, so RadialCrackParts can fan it into convex pieces.
func RadialCrack(center Vec, radius float64, p CrackParams) Polygon {
	if radius <= 0 {
		return nil
	}
	if p.Spokes < 3 {
		p.Spokes = 3
	}
	if p.Rings < 0 {
		p.Rings = 0
	}
	variance := common.Clamp(p.Variance, 0, 0.95)
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	step := 2 * math.Pi / float64(p.Spokes)
	out := make(Polygon, 0, p.Spokes*(p.Rings+1))
	for s := 0; s < p.Spokes; s++ {
		tipAngle := float64(s)*step + (rng.Float64()-0.5)*variance*step/float64(p.Rings+1)
		tipR := radius * (1 + variance*rng.Float64())
		out = append(out, polar(center, tipAngle, tipR))
		for r := 1; r <= p.Rings; r++ {
			t := float64(r) / float64(p.Rings+1)
			angle := float64(s)*step + step*t
			// notches dip toward the centre mid-way between tips
			dip := 1 - math.Sin(math.Pi*t)*variance*(0.5+0.5*rng.Float64())
			out = append(out, polar(center, angle, common.Lerp(radius*0.35, radius, dip)))
		}
	}
	return out.Clean(1e-12)
}

// RadialCrackParts fans a star-shaped polygon around center into convex
// pieces.
func RadialCrackParts(center Vec, star Polygon) []Polygon {
	tris := make([]Polygon, 0, len(star))
	for i := range star {
		a, b := star.Edge(i)
		t := Polygon{center, a, b}
		if t.SignedArea() > 1e-12 {
			tris = append(tris, t)
		}
	}
	return MergeConvex(tris)
}

func polar(c Vec, angle, r float64) Vec {
	return Vec{X: c.X + math.Cos(angle)*r, Y: c.Y + math.Sin(angle)*r}
}
