package svg

import (
	"fmt"
	"strconv"

	"github.com/milk9111/terrain/geom"
)

const (
	cubicSteps = 12
	quadSteps  = 8
)

// scanner walks path data and number lists.
type scanner struct {
	s string
	i int
}

func (sc *scanner) skipSeparators() {
	for sc.i < len(sc.s) {
		switch sc.s[sc.i] {
		case ' ', '\t', '\r', '\n', ',':
			sc.i++
		default:
			return
		}
	}
}

func (sc *scanner) done() bool {
	sc.skipSeparators()
	return sc.i >= len(sc.s)
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

// hasNumber reports whether a number, not a command, comes next.
func (sc *scanner) hasNumber() bool {
	sc.skipSeparators()
	if sc.i >= len(sc.s) {
		return false
	}
	c := sc.s[sc.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (sc *scanner) number() (float64, error) {
	sc.skipSeparators()
	start := sc.i
	if sc.i < len(sc.s) && (sc.s[sc.i] == '-' || sc.s[sc.i] == '+') {
		sc.i++
	}
	dot := false
	for sc.i < len(sc.s) {
		c := sc.s[sc.i]
		if c >= '0' && c <= '9' {
			sc.i++
			continue
		}
		if c == '.' && !dot {
			dot = true
			sc.i++
			continue
		}
		break
	}
	if sc.i < len(sc.s) && (sc.s[sc.i] == 'e' || sc.s[sc.i] == 'E') {
		j := sc.i + 1
		if j < len(sc.s) && (sc.s[j] == '-' || sc.s[j] == '+') {
			j++
		}
		if j < len(sc.s) && sc.s[j] >= '0' && sc.s[j] <= '9' {
			sc.i = j
			for sc.i < len(sc.s) && sc.s[sc.i] >= '0' && sc.s[sc.i] <= '9' {
				sc.i++
			}
		}
	}
	if start == sc.i {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}
	v, err := strconv.ParseFloat(sc.s[start:sc.i], 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", sc.s[start:sc.i], err)
	}
	return v, nil
}

func (sc *scanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for k := range out {
		v, err := sc.number()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func parseNumbers(s string) ([]float64, error) {
	sc := &scanner{s: s}
	var out []float64
	for !sc.done() {
		v, err := sc.number()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// pathBuilder accumulates flattened subpaths.
type pathBuilder struct {
	loops [][]geom.Vec
	cur   []geom.Vec
	pos   geom.Vec
	start geom.Vec
	ctrl  geom.Vec
	prev  byte
}

func (b *pathBuilder) moveTo(p geom.Vec) {
	b.closeLoop()
	b.cur = []geom.Vec{p}
	b.pos = p
	b.start = p
}

func (b *pathBuilder) lineTo(p geom.Vec) {
	if len(b.cur) == 0 {
		b.cur = []geom.Vec{b.pos}
	}
	b.cur = append(b.cur, p)
	b.pos = p
}

func (b *pathBuilder) cubicTo(c1, c2, p geom.Vec) {
	p0 := b.pos
	for k := 1; k <= cubicSteps; k++ {
		t := float64(k) / cubicSteps
		u := 1 - t
		pt := p0.Scale(u * u * u).
			Add(c1.Scale(3 * u * u * t)).
			Add(c2.Scale(3 * u * t * t)).
			Add(p.Scale(t * t * t))
		b.lineTo(pt)
	}
	b.ctrl = c2
}

func (b *pathBuilder) quadTo(c, p geom.Vec) {
	p0 := b.pos
	for k := 1; k <= quadSteps; k++ {
		t := float64(k) / quadSteps
		u := 1 - t
		b.lineTo(p0.Scale(u * u).Add(c.Scale(2 * u * t)).Add(p.Scale(t * t)))
	}
	b.ctrl = c
}

func (b *pathBuilder) closeLoop() {
	if len(b.cur) >= 3 {
		b.loops = append(b.loops, b.cur)
	}
	b.cur = nil
	b.pos = b.start
}

// reflected is the implicit control point of S and T commands.
func (b *pathBuilder) reflected(smooth ...byte) geom.Vec {
	for _, c := range smooth {
		if b.prev == c {
			return b.pos.Scale(2).Sub(b.ctrl)
		}
	}
	return b.pos
}

// ParsePathData flattens SVG path data into closed loops. Open subpaths are
// closed implicitly; subpaths with fewer than three points are dropped.
// Elliptical arcs are approximated by their chord.
func ParsePathData(d string) ([][]geom.Vec, error) {
	sc := &scanner{s: d}
	b := &pathBuilder{}
	var cmd byte
	for !sc.done() {
		if c := sc.s[sc.i]; isCommand(c) {
			cmd = c
			sc.i++
		} else if cmd == 0 {
			return nil, fmt.Errorf("svg: path data must start with a command: %q", d)
		}
		rel := cmd >= 'a'
		at := func(x, y float64) geom.Vec {
			if rel {
				return b.pos.Add(geom.Vec{X: x, Y: y})
			}
			return geom.Vec{X: x, Y: y}
		}

		var err error
		var n []float64
		switch cmd {
		case 'Z', 'z':
			b.closeLoop()
		case 'M', 'm':
			if n, err = sc.numbers(2); err == nil {
				b.moveTo(at(n[0], n[1]))
				// further pairs are implicit line-tos
				if rel {
					cmd = 'l'
				} else {
					cmd = 'L'
				}
			}
		case 'L', 'l':
			if n, err = sc.numbers(2); err == nil {
				b.lineTo(at(n[0], n[1]))
			}
		case 'H', 'h':
			if n, err = sc.numbers(1); err == nil {
				x := n[0]
				if rel {
					x += b.pos.X
				}
				b.lineTo(geom.Vec{X: x, Y: b.pos.Y})
			}
		case 'V', 'v':
			if n, err = sc.numbers(1); err == nil {
				y := n[0]
				if rel {
					y += b.pos.Y
				}
				b.lineTo(geom.Vec{X: b.pos.X, Y: y})
			}
		case 'C', 'c':
			if n, err = sc.numbers(6); err == nil {
				b.cubicTo(at(n[0], n[1]), at(n[2], n[3]), at(n[4], n[5]))
			}
		case 'S', 's':
			if n, err = sc.numbers(4); err == nil {
				c1 := b.reflected('C', 'c', 'S', 's')
				b.cubicTo(c1, at(n[0], n[1]), at(n[2], n[3]))
			}
		case 'Q', 'q':
			if n, err = sc.numbers(4); err == nil {
				b.quadTo(at(n[0], n[1]), at(n[2], n[3]))
			}
		case 'T', 't':
			if n, err = sc.numbers(2); err == nil {
				c := b.reflected('Q', 'q', 'T', 't')
				b.quadTo(c, at(n[0], n[1]))
			}
		case 'A', 'a':
			if n, err = sc.numbers(7); err == nil {
				b.lineTo(at(n[5], n[6]))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("svg: path command %c: %w", cmd, err)
		}
		b.prev = cmd
		if (cmd == 'Z' || cmd == 'z') && sc.hasNumber() {
			return nil, fmt.Errorf("svg: numbers after close in %q", d)
		}
	}
	b.closeLoop()
	return b.loops, nil
}
