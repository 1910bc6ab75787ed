package terrain

import (
	"math"
	"sort"

	"github.com/milk9111/terrain/common"
	"github.com/milk9111/terrain/geom"
)

type tileKey struct {
	x, y int
}

// Partition splits shapes into square tiles of side maxTileExtent laid out
// from origin. Shapes crossing a tile border are cut along it, so the total
// area is unchanged. Each returned set is one tile, in row-major order, with
// every ShapeDef's Tile set to the tile's index plus one. It returns nil when
// any input shape is degenerate.
func Partition(shapes []ShapeDef, origin geom.Vec, maxTileExtent float64) [][]ShapeDef {
	if maxTileExtent <= 0 {
		maxTileExtent = common.DefaultTileExtent
	}
	tiles := make(map[tileKey][]ShapeDef)
	for _, def := range shapes {
		region := def.Region.Normalized()
		if region.Outer.Degenerate() || region.Area() <= common.Epsilon {
			return nil
		}
		byTile := make(map[tileKey][]geom.Polygon)
		for _, part := range geom.ConvexDecompose(region) {
			for key, clipped := range clipToTiles(part, origin, maxTileExtent) {
				byTile[key] = append(byTile[key], clipped)
			}
		}
		for key, polys := range byTile {
			for _, p := range geom.MergeConvex(polys) {
				out := def
				out.Region = geom.Region{Outer: p}
				tiles[key] = append(tiles[key], out)
			}
		}
	}

	keys := make([]tileKey, 0, len(tiles))
	for k := range tiles {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].y != keys[j].y {
			return keys[i].y < keys[j].y
		}
		return keys[i].x < keys[j].x
	})
	out := make([][]ShapeDef, len(keys))
	for i, k := range keys {
		set := tiles[k]
		for j := range set {
			set[j].Tile = i + 1
		}
		sortDefs(set)
		out[i] = set
	}
	return out
}

// clipToTiles cuts a convex polygon along every tile line it crosses.
func clipToTiles(p geom.Polygon, origin geom.Vec, extent float64) map[tileKey]geom.Polygon {
	bb := p.BB()
	x0 := int(math.Floor((bb.L - origin.X) / extent))
	x1 := int(math.Floor((bb.R - origin.X) / extent))
	y0 := int(math.Floor((bb.B - origin.Y) / extent))
	y1 := int(math.Floor((bb.T - origin.Y) / extent))

	out := make(map[tileKey]geom.Polygon)
	for ix := x0; ix <= x1; ix++ {
		left := origin.X + float64(ix)*extent
		column := geom.ClipHalfPlane(p, geom.Vec{X: left}, geom.Vec{X: -1})
		column = geom.ClipHalfPlane(column, geom.Vec{X: left + extent}, geom.Vec{X: 1})
		if column == nil {
			continue
		}
		for iy := y0; iy <= y1; iy++ {
			bottom := origin.Y + float64(iy)*extent
			cell := geom.ClipHalfPlane(column, geom.Vec{Y: bottom}, geom.Vec{Y: -1})
			cell = geom.ClipHalfPlane(cell, geom.Vec{Y: bottom + extent}, geom.Vec{Y: 1})
			if cell == nil || cell.Area() <= common.Epsilon {
				continue
			}
			out[tileKey{x: ix, y: iy}] = cell
		}
	}
	return out
}

// sortDefs orders a tile's shapes by position so output does not depend on
// map iteration.
func sortDefs(defs []ShapeDef) {
	sort.SliceStable(defs, func(i, j int) bool {
		a, b := defs[i].Region.BB(), defs[j].Region.BB()
		if a.B != b.B {
			return a.B < b.B
		}
		return a.L < b.L
	})
}

// Partition splits shapes using the world's tile extent and the origin of
// the shapes' combined bounds.
func (w *World) Partition(shapes []ShapeDef) [][]ShapeDef {
	bb := geom.EmptyBB()
	for _, s := range shapes {
		bb = bb.Union(s.Region.BB())
	}
	origin := geom.Vec{}
	if !bb.Empty() {
		origin = geom.Vec{X: bb.L, Y: bb.B}
	}
	return Partition(shapes, origin, w.cfg.MaxTileExtent)
}
