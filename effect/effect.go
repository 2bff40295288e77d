// Package effect assembles the liquid glass background on a host and owns
// its lifetime.
package effect

import (
	"errors"
	"fmt"
	"sync"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/pointer"
	"github.com/richinsley/goliquidglass/renderer"
	"github.com/richinsley/goliquidglass/shader"
	"github.com/richinsley/goliquidglass/surface"
)

// DefaultMinViewportWidth is the narrowest viewport that gets the effect.
const DefaultMinViewportWidth = 768

var (
	ErrReducedMotion     = errors.New("host prefers reduced motion")
	ErrViewportTooNarrow = errors.New("viewport too narrow")
)

// Options configure a Controller.
type Options struct {
	Variant          shader.Variant
	MinViewportWidth float64
	Surface          surface.Options
	// Translator converts the variant's WebGL sources for the device. Nil
	// passes them through unchanged.
	Translator      renderer.Translator
	PauseWhenHidden bool
	OnFrame         func(frame renderer.UniformFrame)
}

// DefaultOptions returns options for the ribbon variant.
func DefaultOptions() Options {
	return Options{
		Variant:          shader.Ribbon,
		MinViewportWidth: DefaultMinViewportWidth,
		Surface:          surface.DefaultOptions(),
	}
}

// Controller owns one running effect.
type Controller struct {
	host    graphics.Host
	variant shader.Variant

	manager  *surface.Manager
	program  *renderer.Program
	geometry *renderer.Geometry
	pointer  *pointer.State
	loop     *renderer.Loop

	detach      []func()
	contextLost bool
	destroyed   bool
}

var (
	activeMu sync.Mutex
	active   = make(map[graphics.Host]*Controller)
)

// Create is New for callers that only care whether the effect runs. Any
// failure is logged and reported as a nil controller.
func Create(host graphics.Host, opts Options) *Controller {
	c, err := New(host, opts)
	if err != nil {
		graphics.Logger().Warn("liquid glass effect not started", "variant", opts.Variant.Name, "reason", err)
		return nil
	}
	return c
}

// New checks the host, builds the effect and starts it. A controller
// previously created on the same host is destroyed first. On error nothing
// is left behind on the host.
func New(host graphics.Host, opts Options) (*Controller, error) {
	if err := checkHost(host, opts); err != nil {
		return nil, err
	}

	evict(host)

	c := &Controller{host: host, variant: opts.Variant}
	if err := c.init(opts); err != nil {
		c.Destroy()
		return nil, err
	}
	host.HideFallback()

	activeMu.Lock()
	active[host] = c
	activeMu.Unlock()

	w, h := c.manager.Size()
	graphics.Logger().Info("liquid glass effect started", "variant", opts.Variant.Name, "width", w, "height", h)
	return c, nil
}

// checkHost applies the gates in order; the first failing one wins.
func checkHost(host graphics.Host, opts Options) error {
	caps := host.Capabilities()
	if caps.ReducedMotion {
		return ErrReducedMotion
	}
	if caps.ViewportWidth < opts.MinViewportWidth {
		return fmt.Errorf("%w: %.0fpx < %.0fpx", ErrViewportTooNarrow, caps.ViewportWidth, opts.MinViewportWidth)
	}
	if !caps.GPU {
		return graphics.ErrUnsupported
	}
	return nil
}

func evict(host graphics.Host) {
	activeMu.Lock()
	prior := active[host]
	activeMu.Unlock()
	if prior != nil {
		graphics.Logger().Debug("evicting previous effect", "variant", prior.variant.Name)
		prior.Destroy()
	}
}

func (c *Controller) init(opts Options) error {
	var err error
	c.manager, err = surface.Create(c.host, opts.Surface)
	if err != nil {
		return err
	}
	s := c.manager.Surface()

	builder := renderer.NewBuilder(s.Device(), opts.Translator)
	c.program, err = builder.Build(opts.Variant)
	if err != nil {
		return fmt.Errorf("failed to build %s program: %w", opts.Variant.Name, err)
	}

	c.geometry, err = renderer.NewGeometry(s.Device(), opts.Variant.Primitive, c.program.PositionLoc, c.program.TexCoordLoc)
	if err != nil {
		return fmt.Errorf("failed to create geometry: %w", err)
	}

	c.pointer, err = pointer.New(opts.Variant.PositionAlpha, opts.Variant.InfluenceAlpha)
	if err != nil {
		return err
	}
	c.detach = append(c.detach,
		c.pointer.Attach(c.host, c.host.Measure),
		s.OnContextLost(c.onContextLost),
	)

	cfg := renderer.LoopConfig{
		Scheduler: c.host,
		Surface:   s,
		Program:   c.program,
		Geometry:  c.geometry,
		Pointer:   c.pointer,
		OnFrame:   opts.OnFrame,
	}
	if opts.PauseWhenHidden {
		if vr, ok := c.host.(graphics.VisibilityReporter); ok {
			cfg.Visibility = vr
		}
	}
	c.loop = renderer.NewLoop(cfg)
	return c.loop.Start()
}

func (c *Controller) onContextLost() {
	if c.contextLost || c.destroyed {
		return
	}
	c.contextLost = true
	graphics.Logger().Warn("gpu context lost, stopping liquid glass effect", "variant", c.variant.Name)
	if c.loop != nil {
		c.loop.Stop()
	}
	// the objects died with the context
	c.program.Forget()
	c.geometry.Forget()
}

// Destroy stops the loop, removes every listener, releases the GPU objects
// and removes the surface. It is safe to call on a nil controller and more
// than once.
func (c *Controller) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true

	if c.loop != nil {
		c.loop.Stop()
	}
	for i := len(c.detach) - 1; i >= 0; i-- {
		c.detach[i]()
	}
	c.detach = nil

	c.geometry.Release()
	c.program.Release()
	c.manager.Destroy()

	activeMu.Lock()
	if active[c.host] == c {
		delete(active, c.host)
	}
	activeMu.Unlock()

	if c.loop != nil {
		graphics.Logger().Info("liquid glass effect destroyed", "variant", c.variant.Name, "frames", c.Frames())
	}
}

// State returns the loop state, or Stopped for a controller whose loop never
// started.
func (c *Controller) State() renderer.LoopState {
	if c == nil || c.loop == nil {
		return renderer.Stopped
	}
	return c.loop.State()
}

// Frames returns the number of frames drawn so far.
func (c *Controller) Frames() uint64 {
	if c == nil || c.loop == nil {
		return 0
	}
	return c.loop.Frames()
}

// Surface returns the rendering surface, or nil once destroyed.
func (c *Controller) Surface() graphics.Surface {
	if c == nil || c.manager == nil || c.destroyed {
		return nil
	}
	return c.manager.Surface()
}

// Pointer returns the pointer state.
func (c *Controller) Pointer() *pointer.State {
	if c == nil {
		return nil
	}
	return c.pointer
}

// Variant returns the variant being drawn.
func (c *Controller) Variant() shader.Variant { return c.variant }
