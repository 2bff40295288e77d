package renderer

import (
	"testing"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/graphics/graphicstest"
)

func TestGeometry(t *testing.T) {
	tests := []struct {
		name      string
		primitive graphics.Primitive
		count     int32
	}{
		{"strip", graphics.TriangleStrip, 4},
		{"triangle", graphics.Triangles, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := graphicstest.NewDevice()
			g, err := NewGeometry(dev, tt.primitive, 0, 1)
			if err != nil {
				t.Fatalf("NewGeometry: %v", err)
			}
			if g.Count() != tt.count || g.Primitive() != tt.primitive {
				t.Errorf("count = %d, primitive = %v", g.Count(), g.Primitive())
			}
			if len(dev.VertexArrays) != 1 {
				t.Fatalf("vertex arrays = %d, want 1", len(dev.VertexArrays))
			}

			g.Draw()
			if len(dev.Draws) != 1 || dev.Draws[0].Count != tt.count || dev.Draws[0].Primitive != tt.primitive {
				t.Errorf("draws = %+v", dev.Draws)
			}

			g.Release()
			g.Release()
			if dev.Live() != 0 {
				t.Errorf("live objects = %d after release", dev.Live())
			}
		})
	}
}

func TestGeometryLayout(t *testing.T) {
	dev := graphicstest.NewDevice()
	if _, err := NewGeometry(dev, graphics.Triangles, 3, 7); err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	for vao, attribs := range dev.Attribs {
		want := []graphics.VertexAttrib{
			{Location: 3, Size: 2, Offset: 0},
			{Location: 7, Size: 2, Offset: 2},
		}
		if len(attribs) != len(want) {
			t.Fatalf("attribs = %+v", attribs)
		}
		for i := range want {
			if attribs[i] != want[i] {
				t.Errorf("attrib %d = %+v, want %+v", i, attribs[i], want[i])
			}
		}
		if got := len(dev.VertexArrays[vao]); got != 3*vertexStride {
			t.Errorf("floats uploaded = %d", got)
		}
	}
}

func TestGeometrySkipsUnusedAttribute(t *testing.T) {
	dev := graphicstest.NewDevice()
	if _, err := NewGeometry(dev, graphics.TriangleStrip, 0, graphics.NoLocation); err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	for _, attribs := range dev.Attribs {
		if len(attribs) != 1 || attribs[0].Location != 0 {
			t.Errorf("attribs = %+v, want only position", attribs)
		}
	}
}

func TestVerticesCoverViewport(t *testing.T) {
	// every corner of clip space must lie inside the drawn area
	for _, p := range []graphics.Primitive{graphics.TriangleStrip, graphics.Triangles} {
		data, err := Vertices(p)
		if err != nil {
			t.Fatalf("Vertices(%v): %v", p, err)
		}
		var minX, minY, maxX, maxY float32 = 10, 10, -10, -10
		for i := 0; i < len(data); i += vertexStride {
			x, y := data[i], data[i+1]
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
		if minX > -1 || minY > -1 || maxX < 1 || maxY < 1 {
			t.Errorf("%v spans [%v,%v]x[%v,%v]", p, minX, maxX, minY, maxY)
		}
	}

	if _, err := Vertices(graphics.Primitive(42)); err == nil {
		t.Error("unknown primitive accepted")
	}
}
