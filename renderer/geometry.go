package renderer

import (
	"fmt"

	"github.com/richinsley/goliquidglass/graphics"
)

// Interleaved x, y, u, v.
const vertexStride = 4

// quadVertices is a four vertex strip. The texture v coordinate is 1 at the
// bottom edge.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, 1, 1, 0,
}

// triangleVertices is one triangle covering the viewport and twice as large
// again, so there is no diagonal seam.
var triangleVertices = []float32{
	-1, -1, 0, 0,
	3, -1, 2, 0,
	-1, 3, 0, 2,
}

// Vertices returns the static vertex data for a primitive.
func Vertices(p graphics.Primitive) ([]float32, error) {
	switch p {
	case graphics.TriangleStrip:
		return quadVertices, nil
	case graphics.Triangles:
		return triangleVertices, nil
	default:
		return nil, fmt.Errorf("unsupported primitive %v", p)
	}
}

// Geometry is the write-once full viewport vertex buffer.
type Geometry struct {
	device    graphics.Device
	primitive graphics.Primitive
	vao       uint32
	vbo       uint32
	count     int32
}

// NewGeometry uploads the primitive's vertices. Attributes the program does
// not use (location -1) are left unbound.
func NewGeometry(device graphics.Device, primitive graphics.Primitive, positionLoc, texCoordLoc int32) (*Geometry, error) {
	data, err := Vertices(primitive)
	if err != nil {
		return nil, err
	}

	var attribs []graphics.VertexAttrib
	if positionLoc != graphics.NoLocation {
		attribs = append(attribs, graphics.VertexAttrib{Location: positionLoc, Size: 2, Offset: 0})
	}
	if texCoordLoc != graphics.NoLocation {
		attribs = append(attribs, graphics.VertexAttrib{Location: texCoordLoc, Size: 2, Offset: 2})
	}

	g := &Geometry{
		device:    device,
		primitive: primitive,
		count:     int32(len(data) / vertexStride),
	}
	g.vao, g.vbo = device.CreateVertexArray(data, vertexStride, attribs)
	graphics.Logger().Debug("geometry uploaded", "primitive", primitive, "vertices", g.count)
	return g, nil
}

// Count returns the number of vertices drawn.
func (g *Geometry) Count() int32 { return g.count }

// Primitive returns the topology.
func (g *Geometry) Primitive() graphics.Primitive { return g.primitive }

// Draw issues one draw call over the whole buffer.
func (g *Geometry) Draw() {
	g.device.DrawArrays(g.vao, g.primitive, g.count)
}

// Release deletes the buffer. It is safe to call more than once.
func (g *Geometry) Release() {
	if g == nil || g.vao == 0 {
		return
	}
	g.device.DeleteVertexArray(g.vao, g.vbo)
	g.vao, g.vbo = 0, 0
}

// Forget drops the handles without touching the device.
func (g *Geometry) Forget() {
	if g != nil {
		g.vao, g.vbo = 0, 0
	}
}
