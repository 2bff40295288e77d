package renderer

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidglass/graphics"
)

// LoopState is the lifecycle of an animation loop.
type LoopState int

const (
	Idle LoopState = iota
	Running
	Stopped
)

func (s LoopState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrNotIdle is returned when Start is called on a loop that already ran.
var ErrNotIdle = errors.New("animation loop is not idle")

// Scheduler is the frame pacing part of a host.
type Scheduler interface {
	RequestFrame(fn graphics.FrameFunc) graphics.FrameID
	CancelFrame(id graphics.FrameID)
	Now() float64
}

// Smoother produces the smoothed pointer values for each frame.
type Smoother interface {
	Step()
	Position() mgl32.Vec2
	Influence() float32
}

// LoopConfig wires the pieces a loop draws with.
type LoopConfig struct {
	Scheduler Scheduler
	Surface   graphics.Surface
	Program   *Program
	Geometry  *Geometry
	Pointer   Smoother
	// Visibility, when set, lets the loop skip GPU work while the surface
	// is off screen.
	Visibility graphics.VisibilityReporter
	// OnFrame is called after every frame is drawn.
	OnFrame func(frame UniformFrame)
}

// Loop draws one frame per host refresh until stopped.
type Loop struct {
	cfg    LoopConfig
	device graphics.Device

	state    LoopState
	start    float64
	last     float32
	pending  graphics.FrameID
	hasFrame bool
	frames   uint64
}

// NewLoop returns an idle loop.
func NewLoop(cfg LoopConfig) *Loop {
	return &Loop{
		cfg:    cfg,
		device: cfg.Surface.Device(),
		last:   -1,
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() LoopState { return l.state }

// Frames returns the number of frames drawn.
func (l *Loop) Frames() uint64 { return l.frames }

// Start records the start time and schedules the first frame.
func (l *Loop) Start() error {
	if l.state != Idle {
		return ErrNotIdle
	}
	l.state = Running
	l.start = l.cfg.Scheduler.Now()
	l.schedule()
	return nil
}

// Stop cancels the pending frame. Any frame delivered afterwards returns
// without drawing. Stop is idempotent.
func (l *Loop) Stop() {
	if l.state == Stopped {
		return
	}
	l.state = Stopped
	if l.hasFrame {
		l.cfg.Scheduler.CancelFrame(l.pending)
		l.hasFrame = false
	}
}

func (l *Loop) schedule() {
	l.pending = l.cfg.Scheduler.RequestFrame(l.tick)
	l.hasFrame = true
}

// elapsed returns seconds since start, strictly greater than the previous
// frame's time.
func (l *Loop) elapsed(now float64) float32 {
	t := float32(math.Max(0, now-l.start))
	if t <= l.last {
		t = math.Nextafter32(l.last, float32(math.Inf(1)))
	}
	l.last = t
	return t
}

func (l *Loop) tick(now float64) {
	if l.state != Running {
		return
	}
	l.hasFrame = false

	frame := UniformFrame{Time: l.elapsed(now)}
	l.cfg.Pointer.Step()
	frame.Mouse = l.cfg.Pointer.Position()
	frame.MouseInfluence = l.cfg.Pointer.Influence()
	w, h := l.cfg.Surface.BackingSize()
	frame.Resolution = [2]float32{float32(w), float32(h)}

	if l.cfg.Visibility == nil || l.cfg.Visibility.Visible() {
		l.draw(&frame)
	}

	// OnFrame may have stopped the loop
	if l.state == Running {
		l.schedule()
	}
}

func (l *Loop) draw(frame *UniformFrame) {
	l.cfg.Program.Use()
	frame.Upload(l.device, l.cfg.Program.Locations)

	// zero alpha so the page behind shows through
	l.device.Clear(0, 0, 0, 0)
	l.cfg.Geometry.Draw()
	l.frames++

	if l.cfg.OnFrame != nil {
		l.cfg.OnFrame(*frame)
	}
}
