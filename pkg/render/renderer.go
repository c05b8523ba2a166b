package render

import "github.com/taigrr/trophy/pkg/math3d"

// Strategy selects one of the three visibility algorithms a Renderer can
// run, matching the three variants named in spec §1/§6.
type Strategy int

const (
	// StrategyBaseline is a plain scanline Z-buffer fill (C7.1).
	StrategyBaseline Strategy = iota
	// StrategyHierSimple augments the baseline fill with a Z-pyramid
	// reject and per-triangle frame coherence (C7.2).
	StrategyHierSimple
	// StrategyHierOctree further groups triangles into a loose octree
	// rejected against the Z-pyramid at the node level (C7.3).
	StrategyHierOctree
)

// Renderer is the public object (C7): it owns the bound mesh, matrices,
// light, framebuffer, and Z-pyramid, and dispatches Render to whichever
// strategy it was constructed with. This replaces the source's diamond
// inheritance (a shared RasterizerImpl reused by three sibling
// interfaces) with composition: the state every strategy needs lives
// directly on Renderer, and each strategy type only adds what it
// specifically needs (octree, coherence cache) — see DESIGN.md.
type Renderer struct {
	strategy Strategy

	width, height int
	fb            *Framebuffer
	pyramid       *zPyramid

	mesh  MeshData
	light Light

	model, view, proj, mvp math3d.Mat4

	polys []polygon

	baseline *baselineStrategy
	simple   *simpleStrategy
	octree   *octreeStrategy
}

// NewRenderer creates a Renderer running the given strategy. Call
// SetRenderSize before the first Render.
func NewRenderer(strategy Strategy) *Renderer {
	r := &Renderer{
		strategy: strategy,
		model:    math3d.Identity(),
		view:     math3d.Identity(),
		proj:     math3d.Identity(),
		mvp:      math3d.Identity(),
		light:    DefaultLight(),
	}
	switch strategy {
	case StrategyBaseline:
		r.baseline = newBaselineStrategy()
	case StrategyHierSimple:
		r.simple = newSimpleStrategy()
	case StrategyHierOctree:
		r.octree = newOctreeStrategy()
	}
	return r
}

// SetRenderSize reallocates the color buffer, Z-pyramid, and all
// size-dependent scratch state, and clears frame-coherence caches.
func (r *Renderer) SetRenderSize(w, h int) {
	r.width, r.height = w, h
	r.fb = NewFramebuffer(w, h)
	r.pyramid = newZPyramid(w, h)
	switch r.strategy {
	case StrategyHierSimple:
		r.simple = newSimpleStrategy()
	case StrategyHierOctree:
		if r.octree != nil {
			r.octree.activeLeaves = make(map[int32]struct{})
		}
	}
}

// SetVertexData binds mesh geometry and attributes, derives the triangle
// count, and (for the octree strategy) rebuilds the spatial index. The
// caller retains ownership of the slices but must not mutate them while
// bound, matching spec §5's shared-read-only-ownership model.
func (r *Renderer) SetVertexData(mesh MeshData) {
	r.mesh = mesh
	r.polys = make([]polygon, mesh.TriangleCount())
	if r.strategy == StrategyHierOctree && r.octree != nil {
		r.octree.rebuild(&r.mesh, r.model)
	}
}

// SetTextureData attaches UV/normal attributes to the already-bound mesh.
func (r *Renderer) SetTextureData(uvs []math3d.Vec2, uvIndices []uint32, normals []math3d.Vec3, normalIndices []uint32) {
	r.mesh.UVs = uvs
	r.mesh.UVIndices = uvIndices
	r.mesh.Normals = normals
	r.mesh.NormalIndices = normalIndices
}

func (r *Renderer) recomputeMVP() {
	r.mvp = r.proj.Mul(r.view).Mul(r.model)
}

// SetModel stores the model matrix and recomputes MVP.
func (r *Renderer) SetModel(m math3d.Mat4) {
	r.model = m
	r.recomputeMVP()
	if r.strategy == StrategyHierOctree && r.octree != nil && r.mesh.TriangleCount() > 0 {
		r.octree.rebuild(&r.mesh, r.model)
	}
}

// SetView stores the view matrix and recomputes MVP.
func (r *Renderer) SetView(v math3d.Mat4) {
	r.view = v
	r.recomputeMVP()
}

// SetProjective stores the projection matrix and recomputes MVP.
func (r *Renderer) SetProjective(p math3d.Mat4) {
	r.proj = p
	r.recomputeMVP()
}

// SetLight stores the single point light used by the shader (C3).
func (r *Renderer) SetLight(light Light) {
	r.light = light
}

// Render runs the vertex pipeline over every bound triangle, then the
// strategy-specific visibility pass, producing a frame into the internal
// color buffer. Render is infallible provided SetRenderSize has been
// called at least once.
func (r *Renderer) Render() {
	r.fb.Clear(Color{})
	r.pyramid.clear()

	ps := &pipelineState{
		mesh:   &r.mesh,
		model:  r.model,
		mvp:    r.mvp,
		width:  r.width,
		height: r.height,
	}
	ps.runPreRasterization(r.polys, true)

	switch r.strategy {
	case StrategyBaseline:
		r.baseline.render(r.polys, &r.mesh, r.light, r.pyramid, r.fb)
	case StrategyHierSimple:
		r.simple.render(r.polys, &r.mesh, r.light, r.pyramid, r.fb)
	case StrategyHierOctree:
		r.octree.render(r.polys, &r.mesh, r.light, r.pyramid, r.fb, r.mvp)
	}
}

// GetColorOutput returns the rendered frame's RGBA8 pixels, row-major,
// length width*height. The returned slice is borrowed and is only valid
// until the next Render call.
func (r *Renderer) GetColorOutput() []Color {
	return r.fb.Pixels
}

// Width returns the renderer's current framebuffer width.
func (r *Renderer) Width() int { return r.width }

// Height returns the renderer's current framebuffer height.
func (r *Renderer) Height() int { return r.height }
