package math3d

import "math"

// AABB is an axis-aligned bounding box in world space.
//
// Min is initialised to +Inf and Max to -Inf by NewEmptyAABB so that the
// first ExpandPoint or Union call establishes real bounds; this avoids the original
// implementation's use of the smallest positive float as a stand-in for
// -infinity, which only happens to work when every coordinate is
// non-negative. See DESIGN.md for the reasoning behind this divergence.
type AABB struct {
	Min, Max Vec3
}

// NewAABB creates an AABB from explicit min and max points.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewEmptyAABB returns an AABB with inverted bounds, ready to be grown by
// ExpandPoint/Union calls.
func NewEmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{X: inf, Y: inf, Z: inf},
		Max: Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// ExpandPoint grows the AABB to include p, returning the updated box.
func (b AABB) ExpandPoint(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest AABB containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the midpoint of the AABB.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// HalfSize returns half the dimensions (extents from center).
func (b AABB) HalfSize() Vec3 {
	return b.Size().Scale(0.5)
}

// ContainsPoint returns true if p lies inside the AABB.
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns an AABB that bounds b after every corner is transformed
// by m — the standard (imprecise but safe) way to re-bound a box under an
// arbitrary affine transform.
func (b AABB) Transform(m Mat4) AABB {
	corners := b.Corners()
	transformed := m.MulVec3(corners[0])
	newMin := transformed
	newMax := transformed
	for i := 1; i < 8; i++ {
		transformed = m.MulVec3(corners[i])
		newMin = newMin.Min(transformed)
		newMax = newMax.Max(transformed)
	}
	return AABB{Min: newMin, Max: newMax}
}

// Contains reports whether o lies entirely within b.
func (b AABB) Contains(o AABB) bool {
	return o.Min.X >= b.Min.X && o.Min.Y >= b.Min.Y && o.Min.Z >= b.Min.Z &&
		o.Max.X <= b.Max.X && o.Max.Y <= b.Max.Y && o.Max.Z <= b.Max.Z
}

// Intersects reports whether b and o overlap on every axis.
func (b AABB) Intersects(o AABB) bool {
	return !(b.Max.X <= o.Min.X || b.Max.Y <= o.Min.Y || b.Max.Z <= o.Min.Z ||
		b.Min.X >= o.Max.X || b.Min.Y >= o.Max.Y || b.Min.Z >= o.Max.Z)
}

// IntersectionVolume returns the volume of the overlap between b and o, or
// 0 if they do not intersect. Used by the loose octree to choose which
// child an entry is routed to.
func (b AABB) IntersectionVolume(o AABB) float64 {
	if !b.Intersects(o) {
		return 0
	}
	min := b.Min.Max(o.Min)
	max := b.Max.Min(o.Max)
	d := max.Sub(min)
	return d.X * d.Y * d.Z
}

// Corners returns the 8 corner points of the AABB, ordered so that bit 0 of
// the index selects X (min/max), bit 1 selects Y, bit 2 selects Z.
func (b AABB) Corners() [8]Vec3 {
	var c [8]Vec3
	for i := range c {
		c[i] = Vec3{
			X: pick(i&1 != 0, b.Max.X, b.Min.X),
			Y: pick(i&2 != 0, b.Max.Y, b.Min.Y),
			Z: pick(i&4 != 0, b.Max.Z, b.Min.Z),
		}
	}
	return c
}

// Octant returns the AABB of the child octant chIdx (0..7, same bit
// convention as Corners) obtained by splitting b at mid.
func (b AABB) Octant(mid Vec3, chIdx uint8) AABB {
	var out AABB
	for axis := uint8(0); axis < 3; axis++ {
		bit := uint8(1) << axis
		lo, hi, midV := b.Min.Component(axis), b.Max.Component(axis), mid.Component(axis)
		if chIdx&bit == 0 {
			out.Min.SetComponent(axis, lo)
			out.Max.SetComponent(axis, midV)
		} else {
			out.Min.SetComponent(axis, midV)
			out.Max.SetComponent(axis, hi)
		}
	}
	return out
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// Component returns the axis-th coordinate (0=X, 1=Y, 2=Z).
func (a Vec3) Component(axis uint8) float64 {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// SetComponent sets the axis-th coordinate (0=X, 1=Y, 2=Z) in place.
func (a *Vec3) SetComponent(axis uint8, v float64) {
	switch axis {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		a.Z = v
	}
}
