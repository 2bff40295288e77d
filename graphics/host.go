// Package graphics defines the host environment the liquid glass effect runs
// in and the GPU device it renders with. Everything the effect consumes from
// its surroundings comes through a Host.
package graphics

import "errors"

// ErrUnsupported is returned when the host cannot provide GPU rendering.
var ErrUnsupported = errors.New("gpu rendering unsupported")

// Rect is a layout box in logical (CSS-like) pixels.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Empty reports whether the box has no area.
func (r Rect) Empty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Capabilities are read-only facts about the host, queried on demand.
type Capabilities struct {
	ReducedMotion    bool
	ViewportWidth    float64
	DevicePixelRatio float64
	GPU              bool
}

// FrameID identifies a pending frame request.
type FrameID uint64

// FrameFunc is invoked once per displayed frame with the host time in seconds.
type FrameFunc func(now float64)

// SurfaceOptions select the pixel format of a rendering surface.
type SurfaceOptions struct {
	Alpha              bool
	Antialias          bool
	PremultipliedAlpha bool
}

// Host is the environment a single effect container lives in.
//
// All callbacks are delivered on the thread that runs frame callbacks; a Host
// never invokes a listener concurrently with a frame. Every On* method returns
// a func that removes the listener it registered. Hosts are used as map keys
// and must be comparable (pointer types in practice).
type Host interface {
	// CreateSurface inserts an input-transparent surface filling the
	// container as its first child. It returns ErrUnsupported when no GPU
	// context can be created.
	CreateSurface(opts SurfaceOptions) (Surface, error)
	// Measure returns the container's layout box.
	Measure() Rect
	OnResize(fn func()) (remove func())
	// OnPointerMove reports pointer positions inside the hit-region, in the
	// same coordinate space as Measure.
	OnPointerMove(fn func(x, y float64)) (remove func())
	OnPointerEnter(fn func()) (remove func())
	OnPointerLeave(fn func()) (remove func())
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	// Now returns monotonic host time in seconds.
	Now() float64
	Capabilities() Capabilities
	// HideFallback hides the non-GPU background shown while no effect runs.
	HideFallback()
}

// VisibilityReporter is implemented by hosts that know whether the container
// is currently on screen.
type VisibilityReporter interface {
	Visible() bool
}
