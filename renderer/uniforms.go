package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidglass/graphics"
)

// UniformFrame holds the values pushed to the program for one frame.
type UniformFrame struct {
	Time           float32    // seconds since the loop started
	Resolution     [2]float32 // backing store size in pixels
	Mouse          mgl32.Vec2 // smoothed pointer position, [0,1]², Y up
	MouseInfluence float32    // smoothed hover amount, [0,1]
}

// Upload pushes the frame to the current program, skipping uniforms that
// have no location.
func (f *UniformFrame) Upload(device graphics.Device, locs Locations) {
	if locs.Time != graphics.NoLocation {
		device.Uniform1f(locs.Time, f.Time)
	}
	if locs.Resolution != graphics.NoLocation {
		device.Uniform2f(locs.Resolution, f.Resolution[0], f.Resolution[1])
	}
	if locs.Mouse != graphics.NoLocation {
		device.Uniform2f(locs.Mouse, f.Mouse.X(), f.Mouse.Y())
	}
	if locs.MouseInfluence != graphics.NoLocation {
		device.Uniform1f(locs.MouseInfluence, f.MouseInfluence)
	}
}
