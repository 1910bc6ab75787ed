package svg

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ParseTransform parses an SVG transform list into a homogeneous 2D matrix.
// Transforms apply right to left, as in the markup.
func ParseTransform(s string) (mgl64.Mat3, error) {
	m := mgl64.Ident3()
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return m, fmt.Errorf("svg: malformed transform %q", s)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumbers(rest[open+1 : end])
		if err != nil {
			return m, fmt.Errorf("svg: transform %s: %w", name, err)
		}
		t, err := transformFor(name, args)
		if err != nil {
			return m, err
		}
		m = m.Mul3(t)
		rest = strings.TrimLeft(rest[end+1:], " \t\r\n,")
	}
	return m, nil
}

func transformFor(name string, a []float64) (mgl64.Mat3, error) {
	arg := func(i int, def float64) float64 {
		if i < len(a) {
			return a[i]
		}
		return def
	}
	if len(a) == 0 {
		return mgl64.Ident3(), fmt.Errorf("svg: transform %s has no arguments", name)
	}
	switch name {
	case "translate":
		return mgl64.Translate2D(a[0], arg(1, 0)), nil
	case "scale":
		return mgl64.Scale2D(a[0], arg(1, a[0])), nil
	case "rotate":
		r := mgl64.HomogRotate2D(mgl64.DegToRad(a[0]))
		if len(a) >= 3 {
			cx, cy := a[1], a[2]
			return mgl64.Translate2D(cx, cy).Mul3(r).Mul3(mgl64.Translate2D(-cx, -cy)), nil
		}
		return r, nil
	case "matrix":
		if len(a) != 6 {
			return mgl64.Ident3(), fmt.Errorf("svg: matrix needs 6 values, got %d", len(a))
		}
		return mgl64.Mat3{a[0], a[1], 0, a[2], a[3], 0, a[4], a[5], 1}, nil
	case "skewX":
		return mgl64.Mat3{1, 0, 0, math.Tan(mgl64.DegToRad(a[0])), 1, 0, 0, 0, 1}, nil
	case "skewY":
		return mgl64.Mat3{1, math.Tan(mgl64.DegToRad(a[0])), 0, 0, 1, 0, 0, 0, 1}, nil
	default:
		return mgl64.Ident3(), fmt.Errorf("svg: unknown transform %q", name)
	}
}
