package pointer

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/graphics/graphicstest"
)

func mustNew(t *testing.T, pos, infl float32) *State {
	t.Helper()
	s, err := New(pos, infl)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", pos, infl, err)
	}
	return s
}

func TestNewDefaults(t *testing.T) {
	s := mustNew(t, 0.03, 0.02)
	if s.Position() != Neutral || s.Target() != Neutral {
		t.Errorf("position = %v, target = %v, want %v", s.Position(), s.Target(), Neutral)
	}
	if s.Influence() != 0 || s.TargetInfluence() != 0 {
		t.Errorf("influence = %v, target influence = %v, want 0", s.Influence(), s.TargetInfluence())
	}

	// no events: stepping changes nothing
	for i := 0; i < 50; i++ {
		s.Step()
	}
	if s.Position() != Neutral || s.Influence() != 0 {
		t.Errorf("after idle steps got %v / %v", s.Position(), s.Influence())
	}
}

func TestNewInvalidAlpha(t *testing.T) {
	tests := []struct {
		name      string
		pos, infl float32
	}{
		{"zero position", 0, 0.5},
		{"negative influence", 0.5, -0.1},
		{"position above one", 1.5, 0.5},
		{"NaN", float32(math.NaN()), 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.pos, tt.infl); !errors.Is(err, ErrInvalidAlpha) {
				t.Errorf("New(%v, %v) error = %v, want ErrInvalidAlpha", tt.pos, tt.infl, err)
			}
		})
	}
	if _, err := New(1, 1); err != nil {
		t.Errorf("alpha 1 should be accepted: %v", err)
	}
}

func TestMoveTo(t *testing.T) {
	region := graphics.Rect{Left: 100, Top: 50, Width: 200, Height: 100}
	tests := []struct {
		name string
		x, y float64
		want mgl32.Vec2
	}{
		{"top left", 100, 50, mgl32.Vec2{0, 1}},
		{"bottom right", 300, 150, mgl32.Vec2{1, 0}},
		{"center", 200, 100, mgl32.Vec2{0.5, 0.5}},
		{"quarter", 150, 125, mgl32.Vec2{0.25, 0.25}},
		{"outside left above", 0, 0, mgl32.Vec2{0, 1}},
		{"outside right below", 1000, 1000, mgl32.Vec2{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, 0.03, 0.02)
			s.MoveTo(tt.x, tt.y, region)
			if !s.Target().ApproxEqual(tt.want) {
				t.Errorf("MoveTo(%v, %v) target = %v, want %v", tt.x, tt.y, s.Target(), tt.want)
			}
			if s.Position() != Neutral {
				t.Errorf("MoveTo changed the current position to %v", s.Position())
			}
		})
	}
}

func TestMoveToEmptyRegion(t *testing.T) {
	s := mustNew(t, 0.03, 0.02)
	s.MoveTo(10, 10, graphics.Rect{Width: 0, Height: 100})
	if s.Target() != Neutral {
		t.Errorf("target = %v, want unchanged %v", s.Target(), Neutral)
	}
}

func TestStepConvergesWithoutOvershoot(t *testing.T) {
	for _, alpha := range []float32{0.015, 0.02, 0.03, 0.5, 1} {
		s := mustNew(t, alpha, alpha)
		s.MoveTo(80, 80, graphics.Rect{Width: 100, Height: 100})
		target := s.Target()

		initial := s.Position().Sub(target).Len()
		prev := initial
		for n := 1; n <= 300; n++ {
			s.Step()
			d := s.Position().Sub(target).Len()
			if d > prev || d > initial {
				t.Fatalf("alpha %v step %d: distance %v grew from %v", alpha, n, d, prev)
			}
			if alpha < 1 && d > 0 && !(d < prev) && prev > 1e-6 {
				t.Fatalf("alpha %v step %d: distance %v did not decrease", alpha, n, d)
			}
			if s.Position().X() > target.X() || s.Position().Y() < target.Y() {
				t.Fatalf("alpha %v step %d: overshot to %v (target %v)", alpha, n, s.Position(), target)
			}
			prev = d
		}

		want := float64(initial) * math.Pow(1-float64(alpha), 300)
		if math.Abs(float64(prev)-want) > 1e-4 {
			t.Errorf("alpha %v: distance after 300 steps = %v, want ~%v", alpha, prev, want)
		}
	}
}

func TestHoverOutDecay(t *testing.T) {
	s := mustNew(t, 0.03, 0.02)
	s.Enter()
	for i := 0; i < 300; i++ {
		s.Step()
	}
	if s.Influence() < 0.99 {
		t.Fatalf("influence after hovering = %v, want close to 1", s.Influence())
	}

	s.Leave()
	if s.TargetInfluence() != 0 {
		t.Fatalf("target influence = %v after leave", s.TargetInfluence())
	}
	for i := 0; i < 250; i++ {
		s.Step()
	}
	if s.Influence() >= 0.01 {
		t.Errorf("influence = %v after 250 steps, want < 0.01", s.Influence())
	}
	if s.Influence() < 0 {
		t.Errorf("influence went negative: %v", s.Influence())
	}
}

func TestAttach(t *testing.T) {
	host := graphicstest.NewHost(400, 200)
	s := mustNew(t, 0.03, 0.02)

	detach := s.Attach(host, host.Measure)
	if got := host.Listeners(); got != 3 {
		t.Fatalf("listeners = %d, want 3", got)
	}

	host.Move(100, 50)
	if want := (mgl32.Vec2{0.25, 0.75}); !s.Target().ApproxEqual(want) {
		t.Errorf("target = %v, want %v", s.Target(), want)
	}
	host.Enter()
	if s.TargetInfluence() != 1 {
		t.Errorf("target influence = %v after enter", s.TargetInfluence())
	}

	// the region is re-read on every move
	host.Resize(800, 400, 1)
	host.Move(100, 50)
	if want := (mgl32.Vec2{0.125, 0.875}); !s.Target().ApproxEqual(want) {
		t.Errorf("target after resize = %v, want %v", s.Target(), want)
	}

	host.Leave()
	if s.TargetInfluence() != 0 {
		t.Errorf("target influence = %v after leave", s.TargetInfluence())
	}

	detach()
	detach()
	if got := host.Listeners(); got != 0 {
		t.Errorf("listeners after detach = %d, want 0", got)
	}
	host.Move(0, 0)
	if s.Target().X() == 0 {
		t.Error("detached state still receives moves")
	}
}
