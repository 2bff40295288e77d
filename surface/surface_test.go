package surface

import (
	"errors"
	"math"
	"testing"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/graphics/graphicstest"
)

func TestPixelRatio(t *testing.T) {
	tests := []struct {
		name     string
		dpr, max float64
		want     float64
	}{
		{"one", 1, 2, 1},
		{"retina", 2, 2, 2},
		{"above cap", 3, 2, 2},
		{"fractional", 1.5, 2, 1.5},
		{"zero", 0, 2, 1},
		{"negative", -2, 2, 1},
		{"NaN", math.NaN(), 2, 1},
		{"no cap", 3, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelRatio(tt.dpr, tt.max); got != tt.want {
				t.Errorf("PixelRatio(%v, %v) = %v, want %v", tt.dpr, tt.max, got, tt.want)
			}
		})
	}
}

func TestBackingSize(t *testing.T) {
	tests := []struct {
		name  string
		w, h  float64
		dpr   float64
		wantW int
		wantH int
	}{
		{"dpr 1", 1024, 768, 1, 1024, 768},
		{"dpr 2", 1024, 768, 2, 2048, 1536},
		{"dpr 3 capped", 1024, 768, 3, 2048, 1536},
		{"dpr 1.25 rounds", 801, 601, 1.25, 1001, 751},
		{"invalid dpr", 640, 480, 0, 640, 480},
		{"empty box", 0, 480, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := BackingSize(graphics.Rect{Width: tt.w, Height: tt.h}, tt.dpr, DefaultMaxPixelRatio)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("BackingSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	host.Caps.DevicePixelRatio = 2

	m, err := Create(host, DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if host.SurfaceCount() != 1 {
		t.Fatalf("surfaces = %d, want 1", host.SurfaceCount())
	}
	if host.Children[0] != m.Surface() {
		t.Errorf("surface is not the first child: %v", host.Children)
	}
	s := host.Surfaces[0]
	if !s.Options.Alpha || !s.Options.Antialias || s.Options.PremultipliedAlpha {
		t.Errorf("surface options = %+v", s.Options)
	}
	if w, h := m.Size(); w != 2048 || h != 1536 {
		t.Errorf("size = %dx%d, want 2048x1536", w, h)
	}
	if s.Width != 2048 || s.Height != 1536 {
		t.Errorf("backing store = %dx%d", s.Width, s.Height)
	}
	if got := host.Device.Viewports; len(got) != 1 || got[0] != [4]int32{0, 0, 2048, 1536} {
		t.Errorf("viewports = %v", got)
	}
}

func TestResizeFollowsHost(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	m, err := Create(host, DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	host.Resize(1280, 720, 1.5)
	if w, h := m.Size(); w != 1920 || h != 1080 {
		t.Errorf("size after resize = %dx%d, want 1920x1080", w, h)
	}
	vp := host.Device.Viewports
	if last := vp[len(vp)-1]; last != [4]int32{0, 0, 1920, 1080} {
		t.Errorf("last viewport = %v", last)
	}
}

func TestCreateUnsupported(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	host.Unsupported = true

	m, err := Create(host, DefaultOptions())
	if !errors.Is(err, graphics.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if m != nil {
		t.Error("manager returned on failure")
	}
	if host.SurfaceCount() != 0 || host.Listeners() != 0 {
		t.Errorf("left %d surfaces and %d listeners behind", host.SurfaceCount(), host.Listeners())
	}
}

func TestDestroy(t *testing.T) {
	host := graphicstest.NewHost(1024, 768)
	baseline := host.Listeners()

	m, err := Create(host, DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s := host.Surfaces[0]

	m.Destroy()
	m.Destroy()

	if !s.Removed {
		t.Error("surface not removed")
	}
	if host.SurfaceCount() != 0 {
		t.Errorf("surfaces = %d after destroy", host.SurfaceCount())
	}
	if got := host.Listeners(); got != baseline {
		t.Errorf("listeners = %d, want baseline %d", got, baseline)
	}
	if m.Surface() != nil {
		t.Error("destroyed manager still exposes its surface")
	}

	// later resizes are ignored
	host.Resize(640, 480, 1)
	var nilManager *Manager
	nilManager.Destroy()
}
