package glfwcontext

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goliquidglass/gldevice"
	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/shader"
)

// Options configure the window standing in for the effect's container.
type Options struct {
	Width       int
	Height      int
	Title       string
	Visible     bool
	Transparent bool
	VSync       bool
	// ReducedMotion is reported through Capabilities.
	ReducedMotion bool
	// FixedStep, when positive, makes Now advance by exactly this many
	// seconds per frame instead of following the wall clock.
	FixedStep float64
	// Fallback is the clear color shown until HideFallback is called.
	Fallback [3]float32
}

type listeners[T any] struct {
	next int
	m    map[int]T
}

func (l *listeners[T]) add(fn T) func() {
	if l.m == nil {
		l.m = make(map[int]T)
	}
	l.next++
	id := l.next
	l.m[id] = fn
	return func() { delete(l.m, id) }
}

func (l *listeners[T]) each(yield func(T)) {
	ids := make([]int, 0, len(l.m))
	for id := range l.m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := l.m[id]; ok {
			yield(fn)
		}
	}
}

// Host is a graphics.Host backed by a GLFW window. All methods must be called
// from the thread that called InitGraphics.
type Host struct {
	window *glfw.Window
	opts   Options

	device  *gldevice.Device
	surface *Surface
	blit    *blitter

	fallbackHidden bool
	iconified      bool

	resize listeners[func()]
	move   listeners[func(x, y float64)]
	enter  listeners[func()]
	leave  listeners[func()]

	frames    map[graphics.FrameID]graphics.FrameFunc
	nextFrame graphics.FrameID
	step      uint64

	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

var _ graphics.Host = (*Host)(nil)
var _ graphics.VisibilityReporter = (*Host)(nil)

// New creates the window and makes its context current.
func New(opts Options) (*Host, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if opts.Transparent {
		glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)
	}
	if opts.Visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	h := &Host{
		window:       win,
		opts:         opts,
		frames:       make(map[graphics.FrameID]graphics.FrameFunc),
		keyCallbacks: make(map[glfw.Key]func()),
	}

	win.SetKeyCallback(h.glfwKeyCallback)
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		h.move.each(func(fn func(x, y float64)) { fn(x, y) })
	})
	win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if entered {
			h.enter.each(func(fn func()) { fn() })
		} else {
			h.leave.each(func(fn func()) { fn() })
		}
	})
	win.SetSizeCallback(func(_ *glfw.Window, _, _ int) { h.notifyResize() })
	win.SetContentScaleCallback(func(_ *glfw.Window, _, _ float32) { h.notifyResize() })
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) { h.iconified = iconified })
	win.SetCloseCallback(func(_ *glfw.Window) {
		// the context goes with the window
		if h.surface != nil {
			h.surface.loseContext()
		}
	})

	return h, nil
}

func (h *Host) notifyResize() {
	h.resize.each(func(fn func()) { fn() })
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (h *Host) RegisterKeyCallback(key glfw.Key, f func()) {
	h.keyCallbacks[key] = f
}

func (h *Host) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := h.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// CreateSurface attaches an offscreen backing store to the window. It fails
// with graphics.ErrUnsupported when OpenGL cannot be loaded.
func (h *Host) CreateSurface(opts graphics.SurfaceOptions) (graphics.Surface, error) {
	dev, err := gldevice.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", graphics.ErrUnsupported, err)
	}
	h.device = dev
	if h.surface != nil {
		h.surface.Remove()
	}
	h.surface = &Surface{host: h, device: dev, opts: opts}
	return h.surface, nil
}

// Measure returns the window's content area in screen coordinates, the same
// space cursor positions are reported in.
func (h *Host) Measure() graphics.Rect {
	w, ht := h.window.GetSize()
	return graphics.Rect{Width: float64(w), Height: float64(ht)}
}

func (h *Host) OnResize(fn func()) func()                 { return h.resize.add(fn) }
func (h *Host) OnPointerMove(fn func(x, y float64)) func() { return h.move.add(fn) }
func (h *Host) OnPointerEnter(fn func()) func()            { return h.enter.add(fn) }
func (h *Host) OnPointerLeave(fn func()) func()            { return h.leave.add(fn) }

func (h *Host) RequestFrame(fn graphics.FrameFunc) graphics.FrameID {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	return h.nextFrame
}

func (h *Host) CancelFrame(id graphics.FrameID) {
	delete(h.frames, id)
}

// Now returns seconds since GLFW was initialized, or the fixed-step clock.
func (h *Host) Now() float64 {
	if h.opts.FixedStep > 0 {
		return float64(h.step) * h.opts.FixedStep
	}
	return glfw.GetTime()
}

func (h *Host) Capabilities() graphics.Capabilities {
	w, _ := h.window.GetSize()
	sx, _ := h.window.GetContentScale()
	return graphics.Capabilities{
		ReducedMotion:    h.opts.ReducedMotion,
		ViewportWidth:    float64(w),
		DevicePixelRatio: float64(sx),
		GPU:              gldevice.Init() == nil,
	}
}

func (h *Host) HideFallback() { h.fallbackHidden = true }

// Visible reports whether the window is shown and not minimized.
func (h *Host) Visible() bool {
	return !h.iconified && h.window.GetAttrib(glfw.Visible) == glfw.True
}

// Window returns the underlying *glfw.Window.
func (h *Host) Window() *glfw.Window {
	return h.window
}

func (h *Host) ShouldClose() bool {
	return h.window.ShouldClose()
}

// Close asks the run loop to finish.
func (h *Host) Close() {
	h.window.SetShouldClose(true)
}

// Frame delivers the frame callbacks requested so far, puts the backing
// store on screen and swaps buffers.
func (h *Host) Frame() {
	now := h.Now()
	due := make([]graphics.FrameID, 0, len(h.frames))
	for id := range h.frames {
		due = append(due, id)
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	for _, id := range due {
		fn, ok := h.frames[id]
		if !ok {
			continue
		}
		delete(h.frames, id)
		fn(now)
	}

	h.present()
	h.EndFrame()
	h.step++
}

func (h *Host) EndFrame() {
	h.window.SwapBuffers()
	glfw.PollEvents()
}

// Run calls Frame until the window closes or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	for !h.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		h.Frame()
	}
	return nil
}

func (h *Host) present() {
	fbw, fbh := h.window.GetFramebufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(fbw), int32(fbh))
	if h.fallbackHidden {
		gl.ClearColor(0, 0, 0, 0)
	} else {
		gl.ClearColor(h.opts.Fallback[0], h.opts.Fallback[1], h.opts.Fallback[2], 1)
	}
	gl.Clear(gl.COLOR_BUFFER_BIT)

	s := h.surface
	if s == nil || s.texture == 0 || s.lost {
		return
	}
	if h.blit == nil {
		b, err := newBlitter(h.device)
		if err != nil {
			graphics.Logger().Error("presentation disabled", "err", err)
			s.lost = true
			return
		}
		h.blit = b
	}
	h.blit.draw(s.texture)

	// later frames draw into the backing store again
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.Viewport(0, 0, int32(s.width), int32(s.height))
}

// Shutdown releases the surface and destroys the window.
func (h *Host) Shutdown() {
	if h.surface != nil {
		h.surface.Remove()
	}
	if h.blit != nil {
		h.blit.release()
		h.blit = nil
	}
	h.window.Destroy()
}

// blitter copies the backing store texture to the default framebuffer.
type blitter struct {
	device   *gldevice.Device
	program  uint32
	vao, vbo uint32
}

func newBlitter(dev *gldevice.Device) (*blitter, error) {
	src := shader.BlitSource()
	vs := dev.CreateShader(graphics.VertexStage)
	if ok, info := dev.CompileShader(vs, src.Vertex); !ok {
		dev.DeleteShader(vs)
		return nil, fmt.Errorf("failed to compile blit vertex shader: %s", info)
	}
	fs := dev.CreateShader(graphics.FragmentStage)
	if ok, info := dev.CompileShader(fs, src.Fragment); !ok {
		dev.DeleteShader(vs)
		dev.DeleteShader(fs)
		return nil, fmt.Errorf("failed to compile blit fragment shader: %s", info)
	}
	prog := dev.CreateProgram()
	ok, info := dev.LinkProgram(prog, vs, fs)
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)
	if !ok {
		dev.DeleteProgram(prog)
		return nil, fmt.Errorf("failed to link blit program: %s", info)
	}

	quad := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	vao, vbo := dev.CreateVertexArray(quad, 2, []graphics.VertexAttrib{{Location: 0, Size: 2}})
	return &blitter{device: dev, program: prog, vao: vao, vbo: vbo}, nil
}

func (b *blitter) draw(texture uint32) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	b.device.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.Uniform1i(b.device.UniformLocation(b.program, "u_texture"), 0)
	b.device.DrawArrays(b.vao, graphics.TriangleStrip, 4)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.BLEND)
}

func (b *blitter) release() {
	b.device.DeleteVertexArray(b.vao, b.vbo)
	b.device.DeleteProgram(b.program)
}

// Surface is an offscreen framebuffer the effect draws into. The host blits
// it to the window after every frame.
type Surface struct {
	host   *Host
	device *gldevice.Device
	opts   graphics.SurfaceOptions

	fbo     uint32
	texture uint32
	width   int
	height  int

	lostListeners listeners[func()]
	lost          bool
	removed       bool
}

var _ graphics.Surface = (*Surface)(nil)
var _ graphics.PixelReader = (*Surface)(nil)

func (s *Surface) Device() graphics.Device { return s.device }

// SetBackingSize reallocates the color texture and leaves the framebuffer
// bound for drawing.
func (s *Surface) SetBackingSize(width, height int) {
	if s.removed || s.lost {
		return
	}
	s.width, s.height = width, height
	if width <= 0 || height <= 0 {
		s.releaseStore()
		return
	}

	if s.fbo == 0 {
		gl.GenFramebuffers(1, &s.fbo)
	}
	if s.texture == 0 {
		gl.GenTextures(1, &s.texture)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.texture, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		log.Printf("backing store framebuffer is not complete at %dx%d", width, height)
	}
}

func (s *Surface) BackingSize() (int, int) { return s.width, s.height }

func (s *Surface) OnContextLost(fn func()) func() { return s.lostListeners.add(fn) }

func (s *Surface) loseContext() {
	if s.lost {
		return
	}
	s.lost = true
	s.lostListeners.each(func(fn func()) { fn() })
}

// ReadPixels reads the backing store as RGBA, bottom row first.
func (s *Surface) ReadPixels() ([]byte, int, int, error) {
	if s.removed || s.lost || s.fbo == 0 {
		return nil, 0, 0, fmt.Errorf("surface has no backing store")
	}
	pixels := make([]byte, s.width*s.height*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(s.width), int32(s.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, s.width, s.height, nil
}

func (s *Surface) releaseStore() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
		s.texture = 0
	}
	if s.fbo != 0 {
		gl.DeleteFramebuffers(1, &s.fbo)
		s.fbo = 0
	}
}

// Remove detaches the backing store from the window.
func (s *Surface) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	s.lostListeners = listeners[func()]{}
	if !s.lost {
		s.releaseStore()
	}
	if s.host.surface == s {
		s.host.surface = nil
	}
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
