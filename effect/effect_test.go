package effect

import (
	"errors"
	"math"
	"testing"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/graphics/graphicstest"
	"github.com/richinsley/goliquidglass/renderer"
	"github.com/richinsley/goliquidglass/shader"
)

func assertNothingCreated(t *testing.T, host *graphicstest.Host, baseline int) {
	t.Helper()
	if n := host.SurfaceCount(); n != 0 {
		t.Errorf("surfaces = %d, want 0", n)
	}
	if n := host.Listeners(); n != baseline {
		t.Errorf("listeners = %d, want baseline %d", n, baseline)
	}
	if n := host.PendingFrames(); n != 0 {
		t.Errorf("pending frames = %d, want 0", n)
	}
	if n := host.Device.Live(); n != 0 {
		t.Errorf("live GPU objects = %d, want 0", n)
	}
	if host.FallbackHidden {
		t.Error("fallback hidden although the effect did not start")
	}
}

func TestGates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *graphicstest.Host)
		want  error
	}{
		{"reduced motion", func(h *graphicstest.Host) { h.Caps.ReducedMotion = true }, ErrReducedMotion},
		{"narrow viewport", func(h *graphicstest.Host) { h.Caps.ViewportWidth = 767 }, ErrViewportTooNarrow},
		{"no gpu", func(h *graphicstest.Host) { h.Caps.GPU = false }, graphics.ErrUnsupported},
		{"surface unsupported", func(h *graphicstest.Host) { h.Unsupported = true }, graphics.ErrUnsupported},
		{
			// reduced motion wins over every other reason
			"reduced motion and narrow",
			func(h *graphicstest.Host) { h.Caps.ReducedMotion = true; h.Caps.ViewportWidth = 320 },
			ErrReducedMotion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := graphicstest.NewHost(1024, 768)
			tt.setup(host)
			baseline := host.Listeners()

			c, err := New(host, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if c != nil {
				t.Error("controller returned with error")
			}
			if Create(host, DefaultOptions()) != nil {
				t.Error("Create returned a controller")
			}
			assertNothingCreated(t, host, baseline)
		})
	}
}

func TestMinimumViewportWidthAccepted(t *testing.T) {
	host := graphicstest.NewHost(768, 600)
	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("768px viewport rejected")
	}
	c.Destroy()
}

func TestBuildFailureLeavesNothing(t *testing.T) {
	for _, fail := range []func(*graphicstest.Device){
		func(d *graphicstest.Device) { d.FailCompile[graphics.FragmentStage] = "0:1: syntax error" },
		func(d *graphicstest.Device) { d.FailLink = "link failed" },
	} {
		host := graphicstest.NewHost(1024, 768)
		fail(host.Device)
		baseline := host.Listeners()

		c, err := New(host, DefaultOptions())
		if err == nil || c != nil {
			t.Fatalf("New = %v, %v; want failure", c, err)
		}
		var stageErr *renderer.StageError
		var linkErr *renderer.LinkError
		if !errors.As(err, &stageErr) && !errors.As(err, &linkErr) {
			t.Errorf("err = %v, want a stage or link error", err)
		}
		assertNothingCreated(t, host, baseline)
		if len(host.Surfaces) != 1 || !host.Surfaces[0].Removed {
			t.Error("surface created during init was not removed")
		}
	}
}

func TestEndToEnd(t *testing.T) {
	for _, v := range []shader.Variant{shader.Ribbon, shader.Glass} {
		t.Run(v.Name, func(t *testing.T) {
			host := graphicstest.NewHost(1024, 768)
			opts := DefaultOptions()
			opts.Variant = v
			var frames []renderer.UniformFrame
			opts.OnFrame = func(f renderer.UniformFrame) { frames = append(frames, f) }

			c := Create(host, opts)
			if c == nil {
				t.Fatal("Create returned nil")
			}
			defer c.Destroy()

			if host.SurfaceCount() != 1 {
				t.Fatalf("surfaces = %d, want 1", host.SurfaceCount())
			}
			if host.Children[0] != c.Surface() {
				t.Errorf("surface is not the first child")
			}
			if len(host.Children) != 2 {
				t.Errorf("children = %v", host.Children)
			}
			if !host.FallbackHidden {
				t.Error("fallback still shown")
			}
			if c.State() != renderer.Running || c.Variant().Name != v.Name {
				t.Errorf("state = %v, variant = %s", c.State(), c.Variant().Name)
			}

			host.Enter()
			host.Move(256, 192) // (0.25, 0.75) after the Y flip
			target := c.Pointer().Target()

			host.TickN(100)
			if len(frames) != 100 || c.Frames() != 100 {
				t.Fatalf("frames = %d / %d, want 100", len(frames), c.Frames())
			}
			prev := float32(math.Inf(1))
			for i, f := range frames {
				if i > 0 && !(f.Time > frames[i-1].Time) {
					t.Fatalf("time[%d] = %v not after %v", i, f.Time, frames[i-1].Time)
				}
				d := f.Mouse.Sub(target).Len()
				if d > prev {
					t.Fatalf("mouse moved away from target at frame %d", i)
				}
				prev = d
				if f.Resolution != [2]float32{1024, 768} {
					t.Fatalf("resolution = %v", f.Resolution)
				}
			}

			// the fixed per-frame factor needs a few hundred frames to settle
			host.TickN(300)
			last := frames[len(frames)-1]
			if d := last.Mouse.Sub(target).Len(); d > 1e-3 {
				t.Errorf("mouse %v is %v from target %v", last.Mouse, d, target)
			}
			if got := host.Device.Value(v.Uniforms.Mouse); got[0] != last.Mouse.X() || got[1] != last.Mouse.Y() {
				t.Errorf("uploaded mouse = %v, want %v", got, last.Mouse)
			}
			if last.MouseInfluence < 0.99 {
				t.Errorf("influence = %v while hovering", last.MouseInfluence)
			}
		})
	}
}

func TestHoverOut(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("Create returned nil")
	}
	defer c.Destroy()

	host.Enter()
	host.TickN(300)
	host.Leave()
	if c.Pointer().TargetInfluence() != 0 {
		t.Fatalf("target influence = %v", c.Pointer().TargetInfluence())
	}
	host.TickN(250)
	if got := c.Pointer().Influence(); got >= 0.01 {
		t.Errorf("influence = %v, want < 0.01", got)
	}
}

func TestDestroy(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	baseline := host.Listeners()

	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("Create returned nil")
	}
	host.TickN(3)

	c.Destroy()
	c.Destroy()

	if c.State() != renderer.Stopped {
		t.Errorf("state = %v", c.State())
	}
	if host.Listeners() != baseline {
		t.Errorf("listeners = %d, want baseline %d", host.Listeners(), baseline)
	}
	if host.SurfaceCount() != 0 || host.PendingFrames() != 0 || host.Device.Live() != 0 {
		t.Errorf("left surfaces %d, pending %d, live %d", host.SurfaceCount(), host.PendingFrames(), host.Device.Live())
	}
	if c.Surface() != nil {
		t.Error("destroyed controller exposes its surface")
	}

	draws := len(host.Device.Draws)
	host.Requested[len(host.Requested)-1](host.Clock + 1)
	host.TickN(5)
	if len(host.Device.Draws) != draws {
		t.Error("drew after destroy")
	}

	var nilController *Controller
	nilController.Destroy()
	if nilController.State() != renderer.Stopped || nilController.Frames() != 0 {
		t.Error("nil controller reports activity")
	}
}

func TestDestroyBeforeFirstFrame(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	baseline := host.Listeners()
	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("Create returned nil")
	}
	c.Destroy()
	host.TickN(2)
	if host.Listeners() != baseline || host.PendingFrames() != 0 || c.Frames() != 0 {
		t.Errorf("listeners %d, pending %d, frames %d", host.Listeners(), host.PendingFrames(), c.Frames())
	}
}

func TestNewEvictsPrevious(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	baseline := host.Listeners()

	first := Create(host, DefaultOptions())
	opts := DefaultOptions()
	opts.Variant = shader.Glass
	second := Create(host, opts)
	if first == nil || second == nil {
		t.Fatal("Create returned nil")
	}
	defer second.Destroy()

	if first.State() != renderer.Stopped {
		t.Errorf("first effect state = %v", first.State())
	}
	if host.SurfaceCount() != 1 || host.Children[0] != second.Surface() {
		t.Errorf("children = %v", host.Children)
	}

	host.TickN(2)
	if first.Frames() != 0 || second.Frames() != 2 {
		t.Errorf("frames first %d, second %d", first.Frames(), second.Frames())
	}

	second.Destroy()
	if host.Listeners() != baseline {
		t.Errorf("listeners = %d, want baseline %d", host.Listeners(), baseline)
	}
	// destroying an evicted controller again is harmless
	first.Destroy()
}

func TestContextLost(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("Create returned nil")
	}
	host.TickN(2)

	host.Surfaces[0].LoseContext()
	if c.State() != renderer.Stopped {
		t.Fatalf("state = %v after context loss", c.State())
	}
	host.TickN(3)
	if c.Frames() != 2 {
		t.Errorf("frames = %d, want 2", c.Frames())
	}

	live := host.Device.Live()
	c.Destroy()
	// objects died with the context and are not deleted again
	if host.Device.Live() != live {
		t.Errorf("deleted %d objects of a lost context", live-host.Device.Live())
	}
	if host.SurfaceCount() != 0 || host.Listeners() != 0 {
		t.Errorf("surfaces %d, listeners %d", host.SurfaceCount(), host.Listeners())
	}
}

func TestPauseWhenHidden(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	opts := DefaultOptions()
	opts.PauseWhenHidden = true
	c := Create(host, opts)
	if c == nil {
		t.Fatal("Create returned nil")
	}
	defer c.Destroy()

	host.Hidden = true
	host.TickN(3)
	if c.Frames() != 0 {
		t.Errorf("drew %d frames while hidden", c.Frames())
	}
	host.Hidden = false
	host.TickN(3)
	if c.Frames() != 3 {
		t.Errorf("frames = %d, want 3", c.Frames())
	}
}

func TestResize(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	c := Create(host, DefaultOptions())
	if c == nil {
		t.Fatal("Create returned nil")
	}
	defer c.Destroy()

	host.Resize(1280, 800, 3)
	host.Tick()
	got := host.Device.Value(shader.Ribbon.Uniforms.Resolution)
	if len(got) != 2 || got[0] != 2560 || got[1] != 1600 {
		t.Errorf("resolution = %v, want [2560 1600]", got)
	}
}
