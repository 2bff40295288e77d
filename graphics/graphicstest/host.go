package graphicstest

import (
	"sort"

	"github.com/richinsley/goliquidglass/graphics"
)

// FrameRate is the refresh rate simulated by Host.Tick.
const FrameRate = 60.0

// Node is a non-surface child of the fake container.
type Node string

// Host is a deterministic graphics.Host. The clock only advances in Tick.
type Host struct {
	Caps        graphics.Capabilities
	Box         graphics.Rect
	Clock       float64
	Unsupported bool
	Hidden      bool

	// Children holds the container's children in order; surfaces are
	// inserted at index 0.
	Children       []any
	FallbackHidden bool

	Device   *Device
	Surfaces []*Surface

	// Requested keeps every frame callback ever requested, including
	// cancelled ones, so tests can replay a late delivery.
	Requested []graphics.FrameFunc

	resize map[int]func()
	move   map[int]func(x, y float64)
	enter  map[int]func()
	leave  map[int]func()
	frames map[graphics.FrameID]graphics.FrameFunc

	nextListener int
	nextFrame    graphics.FrameID
}

// NewHost returns a host with a width×height container at the origin, a
// matching viewport, pixel ratio 1 and a working GPU.
func NewHost(width, height float64) *Host {
	return &Host{
		Caps: graphics.Capabilities{
			ViewportWidth:    width,
			DevicePixelRatio: 1,
			GPU:              true,
		},
		Box:      graphics.Rect{Width: width, Height: height},
		Children: []any{Node("content")},
		Device:   NewDevice(),
		resize:   make(map[int]func()),
		move:     make(map[int]func(x, y float64)),
		enter:    make(map[int]func()),
		leave:    make(map[int]func()),
		frames:   make(map[graphics.FrameID]graphics.FrameFunc),
	}
}

func (h *Host) CreateSurface(opts graphics.SurfaceOptions) (graphics.Surface, error) {
	if h.Unsupported {
		return nil, graphics.ErrUnsupported
	}
	s := &Surface{
		host:    h,
		device:  h.Device,
		Options: opts,
		lost:    make(map[int]func()),
	}
	h.Children = append([]any{s}, h.Children...)
	h.Surfaces = append(h.Surfaces, s)
	return s, nil
}

func (h *Host) Measure() graphics.Rect             { return h.Box }
func (h *Host) Now() float64                        { return h.Clock }
func (h *Host) Capabilities() graphics.Capabilities { return h.Caps }
func (h *Host) HideFallback()                       { h.FallbackHidden = true }
func (h *Host) Visible() bool                       { return !h.Hidden }

func (h *Host) listenerID() int {
	h.nextListener++
	return h.nextListener
}

func (h *Host) OnResize(fn func()) func() {
	id := h.listenerID()
	h.resize[id] = fn
	return func() { delete(h.resize, id) }
}

func (h *Host) OnPointerMove(fn func(x, y float64)) func() {
	id := h.listenerID()
	h.move[id] = fn
	return func() { delete(h.move, id) }
}

func (h *Host) OnPointerEnter(fn func()) func() {
	id := h.listenerID()
	h.enter[id] = fn
	return func() { delete(h.enter, id) }
}

func (h *Host) OnPointerLeave(fn func()) func() {
	id := h.listenerID()
	h.leave[id] = fn
	return func() { delete(h.leave, id) }
}

func (h *Host) RequestFrame(fn graphics.FrameFunc) graphics.FrameID {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	h.Requested = append(h.Requested, fn)
	return h.nextFrame
}

func (h *Host) CancelFrame(id graphics.FrameID) {
	delete(h.frames, id)
}

// Listeners returns the number of registered host and surface listeners.
func (h *Host) Listeners() int {
	n := len(h.resize) + len(h.move) + len(h.enter) + len(h.leave)
	for _, s := range h.Surfaces {
		n += len(s.lost)
	}
	return n
}

// PendingFrames returns the number of frame requests not yet delivered.
func (h *Host) PendingFrames() int {
	return len(h.frames)
}

// SurfaceCount returns the number of surfaces currently in the container.
func (h *Host) SurfaceCount() int {
	n := 0
	for _, c := range h.Children {
		if _, ok := c.(*Surface); ok {
			n++
		}
	}
	return n
}

// Tick advances the clock by one refresh interval and delivers every frame
// requested before the tick began, in request order.
func (h *Host) Tick() {
	h.Clock += 1 / FrameRate
	ids := make([]graphics.FrameID, 0, len(h.frames))
	for id := range h.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	due := make([]graphics.FrameFunc, 0, len(ids))
	for _, id := range ids {
		due = append(due, h.frames[id])
		delete(h.frames, id)
	}
	for _, fn := range due {
		fn(h.Clock)
	}
}

// TickN runs n ticks.
func (h *Host) TickN(n int) {
	for i := 0; i < n; i++ {
		h.Tick()
	}
}

// Resize changes the container box and pixel ratio and notifies listeners.
func (h *Host) Resize(width, height, dpr float64) {
	h.Box.Width = width
	h.Box.Height = height
	h.Caps.ViewportWidth = width
	h.Caps.DevicePixelRatio = dpr
	for _, fn := range h.resize {
		fn()
	}
}

// Move dispatches a pointer move at (x, y).
func (h *Host) Move(x, y float64) {
	for _, fn := range h.move {
		fn(x, y)
	}
}

// Enter dispatches a pointer enter.
func (h *Host) Enter() {
	for _, fn := range h.enter {
		fn()
	}
}

// Leave dispatches a pointer leave.
func (h *Host) Leave() {
	for _, fn := range h.leave {
		fn()
	}
}

// Surface is a fake rendering surface living in a Host's container.
type Surface struct {
	Options graphics.SurfaceOptions
	Width   int
	Height  int
	Removed bool

	host   *Host
	device *Device
	lost   map[int]func()
	nextID int
}

func (s *Surface) Device() graphics.Device { return s.device }

func (s *Surface) SetBackingSize(width, height int) {
	s.Width = width
	s.Height = height
}

func (s *Surface) BackingSize() (int, int) { return s.Width, s.Height }

func (s *Surface) OnContextLost(fn func()) func() {
	s.nextID++
	id := s.nextID
	s.lost[id] = fn
	return func() { delete(s.lost, id) }
}

func (s *Surface) Remove() {
	if s.Removed {
		return
	}
	s.Removed = true
	for i, c := range s.host.Children {
		if c == any(s) {
			s.host.Children = append(s.host.Children[:i], s.host.Children[i+1:]...)
			break
		}
	}
}

// LoseContext simulates the GPU context going away.
func (s *Surface) LoseContext() {
	for _, fn := range s.lost {
		fn()
	}
}

// ReadPixels returns a transparent frame of the backing size.
func (s *Surface) ReadPixels() ([]byte, int, int, error) {
	return make([]byte, s.Width*s.Height*4), s.Width, s.Height, nil
}
