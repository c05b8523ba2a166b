package render

import "math"

// edgeNode is one active edge of a polygon being scan-converted: the two
// polygon-vertex indices it spans, the scanline at which it expires, and
// its current x/interpolation-parameter plus their per-scanline deltas.
// Ordered by (x, dx) lexicographically, matching the spec's data model.
type edgeNode struct {
	vBot, vTop uint8
	yMax       int
	x, dx      float64
	coeff      float64
	dcoeff     float64
}

func edgeLess(a, b edgeNode) bool {
	return a.x < b.x || (a.x == b.x && a.dx < b.dx)
}

func sortEdges(es []edgeNode) {
	// insertion sort: the active edge list never holds more than a
	// handful of entries for a convex polygon.
	for i := 1; i < len(es); i++ {
		v := es[i]
		j := i - 1
		for j >= 0 && edgeLess(v, es[j]) {
			es[j+1] = es[j]
			j--
		}
		es[j+1] = v
	}
}

func insertSorted(row []edgeNode, n edgeNode) []edgeNode {
	i := len(row)
	row = append(row, n)
	for i > 0 && edgeLess(n, row[i-1]) {
		row[i] = row[i-1]
		i--
	}
	row[i] = n
	return row
}

func screenXY(v vertex, shift uint) (int, int) {
	x := int(math.Round(v.Pos.X))
	y := int(math.Round(v.Pos.Y))
	if shift > 0 {
		x >>= shift
		y >>= shift
	}
	return x, y
}

// buildEdgeTable walks the polygon's edges and inserts one edgeNode per
// non-horizontal edge into rows[ymin], where rows is indexed by the
// (shifted) scanline. maxY is the row count at this pyramid level, used to
// clamp ymin and ymax into range. The "P-pinch" correction: when the third
// vertex of the current edge pair has a smaller rounded y than ymin, bump
// ymin so the apex pixel of a pointed polygon isn't counted by two edges
// at once.
func buildEdgeTable(poly *polygon, shift uint, maxY int, rows [][]edgeNode) {
	n := poly.Count
	for i := 0; i < n; i++ {
		next := i + 1
		if next == n {
			next = 0
		}
		nn := next + 1
		if nn == n {
			nn = 0
		}

		x0, y0 := screenXY(poly.Verts[i], shift)
		x1, y1 := screenXY(poly.Verts[next], shift)
		if y0 == y1 {
			continue
		}

		bot, top := i, next
		by, ty, bx, tx := y0, y1, x0, x1
		if y0 > y1 {
			bot, top = next, i
			by, ty, bx, tx = y1, y0, x1, x0
		}

		node := edgeNode{vBot: uint8(bot), vTop: uint8(top)}
		node.yMax = ty
		if node.yMax >= maxY {
			node.yMax = maxY - 1
		}
		dy := float64(ty - by)
		node.dcoeff = 1 / dy
		node.x = float64(bx)
		node.dx = float64(tx-bx) / dy

		ymin := by
		_, nnY := screenXY(poly.Verts[nn], shift)
		if nnY < ymin {
			ymin++
		}
		if ymin >= maxY {
			ymin = maxY - 1
		}
		if ymin < 0 {
			ymin = 0
		}
		rows[ymin] = insertSorted(rows[ymin], node)
	}
}

// interpEdgeVertex blends the two endpoints of e by its current coeff,
// producing the vertex the active edge currently represents at this row.
func interpEdgeVertex(poly *polygon, e edgeNode) vertex {
	return lerpVertex(poly.Verts[e.vBot], poly.Verts[e.vTop], e.coeff)
}

// scanConvert sweeps rows[minY..maxY], maintaining the active edge list and
// invoking visit once per row that has two active edges (a convex polygon
// never has more). visit receives the row, the left/right edges (with
// their coeff already advanced for this row), and the inclusive pixel
// span [xStart,xEnd]; returning true stops the sweep immediately. rows is
// drained as it is consumed, matching the original's per-triangle
// allocate/clear discipline.
func scanConvert(minY, maxY, maxX int, rows [][]edgeNode, visit func(y int, L, R edgeNode, xStart, xEnd int) bool) {
	var active []edgeNode
	for y := minY; y <= maxY; y++ {
		for i := range active {
			active[i].x += active[i].dx
			active[i].coeff += active[i].dcoeff
		}
		if y >= 0 && y < len(rows) && len(rows[y]) > 0 {
			active = append(active, rows[y]...)
			rows[y] = rows[y][:0]
			sortEdges(active)
		}

		if len(active) >= 2 {
			L, R := active[0], active[1]
			xStart := int(math.Round(L.x))
			xEnd := int(math.Round(R.x))
			if xEnd >= maxX && maxX != 0 {
				xEnd = maxX - 1
			}
			if visit(y, L, R, xStart, xEnd) {
				return
			}
		}

		if len(active) > 0 {
			kept := active[:0]
			for _, e := range active {
				if e.yMax != y {
					kept = append(kept, e)
				}
			}
			active = kept
		}
	}
}
