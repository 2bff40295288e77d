// Package surface owns the effect's rendering surface and keeps its backing
// store sized to the container.
package surface

import (
	"fmt"
	"math"

	"github.com/richinsley/goliquidglass/graphics"
)

// DefaultMaxPixelRatio bounds the backing store density to limit fill rate.
const DefaultMaxPixelRatio = 2.0

// PixelRatio clamps a host pixel ratio to (0, maxRatio]. Non-positive or
// NaN ratios are treated as 1.
func PixelRatio(dpr, maxRatio float64) float64 {
	if !(dpr > 0) {
		dpr = 1
	}
	if maxRatio > 0 && dpr > maxRatio {
		dpr = maxRatio
	}
	return dpr
}

// BackingSize returns the backing store size for a container box.
func BackingSize(box graphics.Rect, dpr, maxRatio float64) (width, height int) {
	if box.Empty() {
		return 0, 0
	}
	ratio := PixelRatio(dpr, maxRatio)
	return int(math.Round(box.Width * ratio)), int(math.Round(box.Height * ratio))
}

// Options configure a Manager.
type Options struct {
	MaxPixelRatio float64
	Surface       graphics.SurfaceOptions
}

// DefaultOptions match the page's canvas: transparent, antialiased, not
// premultiplied, density capped at 2.
func DefaultOptions() Options {
	return Options{
		MaxPixelRatio: DefaultMaxPixelRatio,
		Surface: graphics.SurfaceOptions{
			Alpha:     true,
			Antialias: true,
		},
	}
}

// Manager owns one surface inserted into the host's container.
type Manager struct {
	host     graphics.Host
	surface  graphics.Surface
	maxRatio float64

	removeResize func()
	width        int
	height       int
}

// Create inserts a surface into the host's container, sizes it and starts
// following resizes. It fails with graphics.ErrUnsupported when the host has
// no GPU context to offer.
func Create(host graphics.Host, opts Options) (*Manager, error) {
	s, err := host.CreateSurface(opts.Surface)
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("failed to create surface: %w", graphics.ErrUnsupported)
	}

	m := &Manager{
		host:     host,
		surface:  s,
		maxRatio: opts.MaxPixelRatio,
	}
	m.Resize()
	m.removeResize = host.OnResize(m.Resize)
	return m, nil
}

// Surface returns the managed surface.
func (m *Manager) Surface() graphics.Surface { return m.surface }

// Size returns the current backing store size.
func (m *Manager) Size() (int, int) { return m.width, m.height }

// Resize re-measures the container and pixel ratio and resizes the backing
// store and viewport.
func (m *Manager) Resize() {
	if m.surface == nil {
		return
	}
	dpr := m.host.Capabilities().DevicePixelRatio
	w, h := BackingSize(m.host.Measure(), dpr, m.maxRatio)
	m.width, m.height = w, h
	m.surface.SetBackingSize(w, h)
	m.surface.Device().Viewport(0, 0, int32(w), int32(h))
	graphics.Logger().Debug("surface resized", "width", w, "height", h, "dpr", dpr)
}

// Destroy stops following resizes and removes the surface. It is safe to
// call more than once.
func (m *Manager) Destroy() {
	if m == nil {
		return
	}
	if m.removeResize != nil {
		m.removeResize()
		m.removeResize = nil
	}
	if m.surface != nil {
		m.surface.Remove()
		m.surface = nil
	}
}
