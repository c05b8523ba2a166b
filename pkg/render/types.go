package render

import (
	"github.com/taigrr/trophy/pkg/math3d"
)

// Color is declared in framebuffer.go as an alias for color.RGBA; reused
// here as the renderer's pixel type.

// Light describes the single point light the shader (C3) supports.
type Light struct {
	AmbientStrength float64
	AmbientColor    math3d.Vec3
	Position        math3d.Vec3
	Color           math3d.Vec3
}

// DefaultLight returns a light with a modest ambient term and a white
// diffuse contribution, a reasonable starting point for callers that don't
// care about lighting setup.
func DefaultLight() Light {
	return Light{
		AmbientStrength: 0.15,
		AmbientColor:    math3d.V3(1, 1, 1),
		Position:        math3d.V3(0, 5, 5),
		Color:           math3d.V3(1, 1, 1),
	}
}
