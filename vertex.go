package atlaskit

// FloatsPerVertex is the stride of AppendQuadVertices output: position (2),
// UV (2), premultiplied color (4).
const FloatsPerVertex = 8

// VerticesPerQuad is the number of vertices emitted per quad (two triangles).
const VerticesPerQuad = 6

// AppendQuadVertices appends two triangles for q to dst and returns the
// extended slice. Positions are screen pixels with a top-left origin; UVs
// come straight from the region, so the quad's top edge samples V2 and its
// bottom edge V1.
func AppendQuadVertices(dst []float32, q Quad) []float32 {
	x0 := float32(q.Dst.X)
	y0 := float32(q.Dst.Y)
	x1 := x0 + float32(q.Dst.Width)
	y1 := y0 + float32(q.Dst.Height)

	u1, u2 := q.Region.U1, q.Region.U2
	vTop, vBottom := q.Region.V2, q.Region.V1

	c := q.Color.orWhite()
	a := float32(clamp01(c.A))
	r := float32(clamp01(c.R)) * a
	g := float32(clamp01(c.G)) * a
	b := float32(clamp01(c.B)) * a

	return append(dst,
		x0, y0, u1, vTop, r, g, b, a,
		x1, y0, u2, vTop, r, g, b, a,
		x1, y1, u2, vBottom, r, g, b, a,
		x0, y0, u1, vTop, r, g, b, a,
		x1, y1, u2, vBottom, r, g, b, a,
		x0, y1, u1, vBottom, r, g, b, a,
	)
}

// AppendBatchVertices appends the vertices of every quad in b.
func AppendBatchVertices(dst []float32, b Batch) []float32 {
	for i := range b.Quads {
		dst = AppendQuadVertices(dst, b.Quads[i])
	}
	return dst
}
