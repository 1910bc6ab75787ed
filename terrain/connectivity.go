package terrain

import (
	"sort"

	"github.com/milk9111/terrain/geom"
)

// graph is the adjacency of a set of polygons expressed in one frame: an
// edge joins two polygons iff their boundaries touch within tolerance. It is
// rebuilt whenever it is needed and never stored.
type graph struct {
	polys []geom.Polygon
	bbs   []geom.BB
	adj   [][]int
}

func buildGraph(polys []geom.Polygon, tol float64) *graph {
	g := &graph{
		polys: polys,
		bbs:   make([]geom.BB, len(polys)),
		adj:   make([][]int, len(polys)),
	}
	order := make([]int, len(polys))
	for i, p := range polys {
		g.bbs[i] = p.BB().Grow(tol / 2)
		order[i] = i
	}
	// sweep along x: only boxes whose x-extents overlap are tested
	sort.Slice(order, func(a, b int) bool { return g.bbs[order[a]].L < g.bbs[order[b]].L })
	for a := 0; a < len(order); a++ {
		i := order[a]
		for b := a + 1; b < len(order); b++ {
			j := order[b]
			if g.bbs[j].L > g.bbs[i].R {
				break
			}
			if !g.bbs[i].Intersects(g.bbs[j]) {
				continue
			}
			if geom.Touching(polys[i], polys[j], tol) {
				g.adj[i] = append(g.adj[i], j)
				g.adj[j] = append(g.adj[j], i)
			}
		}
	}
	return g
}

func (g *graph) edgeCount() int {
	n := 0
	for _, a := range g.adj {
		n += len(a)
	}
	return n / 2
}

// components returns the connected components as index lists, each sorted,
// ordered by their smallest index. When link is set, only edges it accepts
// join components.
func (g *graph) components(link func(i, j int) bool) [][]int {
	seen := make([]bool, len(g.polys))
	var out [][]int
	for start := range g.polys {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []int{start}
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range g.adj[cur] {
				if seen[n] || (link != nil && !link(cur, n)) {
					continue
				}
				seen[n] = true
				comp = append(comp, n)
				queue = append(queue, n)
			}
		}
		sort.Ints(comp)
		out = append(out, comp)
	}
	return out
}

// polysTouch reports whether any polygon of a touches any polygon of b.
func polysTouch(a []geom.Polygon, abb geom.BB, b []geom.Polygon, bbb geom.BB, tol float64) bool {
	if !abb.Grow(tol).Intersects(bbb) {
		return false
	}
	for _, p := range a {
		pbb := p.BB().Grow(tol)
		if !pbb.Intersects(bbb) {
			continue
		}
		for _, q := range b {
			if !pbb.Intersects(q.BB()) {
				continue
			}
			if geom.Touching(p, q, tol) {
				return true
			}
		}
	}
	return false
}

func bbOf(polys []geom.Polygon) geom.BB {
	bb := geom.EmptyBB()
	for _, p := range polys {
		bb = bb.Union(p.BB())
	}
	return bb
}
