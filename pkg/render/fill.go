package render

// fillPolygon is the real scanline fill shared by all three strategies
// (C2): it builds poly's edge table at level 0, sweeps it, and for every
// covered pixel runs the real depth test (rejects ties), recovers
// perspective-correct attributes, shades, and writes color. Unlike the
// Z-pyramid probes in pyramid.go, this mutates the pyramid and the
// framebuffer.
func fillPolygon(poly *polygon, mesh *MeshData, light Light, py *zPyramid, fb *Framebuffer) {
	w, h := py.width[0], py.height[0]
	rows := make([][]edgeNode, h)
	buildEdgeTable(poly, 0, h, rows)

	minY, maxY := h, -1
	for i := 0; i < poly.Count; i++ {
		_, y := screenXY(poly.Verts[i], 0)
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= h {
		maxY = h - 1
	}
	if minY > maxY {
		return
	}

	scanConvert(minY, maxY, w, rows, func(y int, L, R edgeNode, xStart, xEnd int) bool {
		if xStart < 0 {
			xStart = 0
		}
		if xEnd >= w {
			xEnd = w - 1
		}
		if xStart > xEnd {
			return false
		}

		Lv := interpEdgeVertex(poly, L)
		Rv := interpEdgeVertex(poly, R)
		denom := float64(xEnd - xStart)
		for x := xStart; x <= xEnd; x++ {
			s := 0.0
			if denom != 0 {
				s = float64(x-xStart) / denom
			}
			px := lerpVertex(Lv, Rv, s)
			depth := px.Pos.Z
			if !py.depthPasses(x, y, depth) {
				continue
			}
			recoveredW := 1 / px.Pos.W
			shaded := px
			shaded.Col = px.Col.Scale(recoveredW)
			shaded.UV = px.UV.Scale(recoveredW)
			shaded.Norm = px.Norm.Scale(recoveredW)
			shaded.WorldPos = px.WorldPos.Scale(recoveredW)
			fb.SetPixel(x, y, shadePixel(shaded, mesh, light))
		}
		return false
	})
}
