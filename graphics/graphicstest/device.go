// Package graphicstest provides an in-memory Host, Surface and Device for
// exercising the effect without a window system or GPU.
package graphicstest

import (
	"github.com/richinsley/goliquidglass/graphics"
)

// Draw records one DrawArrays call.
type Draw struct {
	VAO       uint32
	Primitive graphics.Primitive
	Count     int32
}

// Device records every call made against it. Uniform and attribute names
// resolve to stable locations unless they are listed in Dropped, which
// mimics the linker optimizing an unused variable away.
type Device struct {
	FailCompile map[graphics.Stage]string
	FailLink    string
	Dropped     map[string]bool

	Shaders      map[uint32]graphics.Stage
	Sources      map[uint32]string
	Programs     map[uint32]bool
	VertexArrays map[uint32][]float32
	Attribs      map[uint32][]graphics.VertexAttrib

	Values    map[int32][]float32
	Uploads   int
	Clears    [][4]float32
	Draws     []Draw
	Viewports [][4]int32
	Used      uint32

	next      uint32
	locations map[string]int32
}

// NewDevice returns a device where every compile and link succeeds.
func NewDevice() *Device {
	return &Device{
		FailCompile:  make(map[graphics.Stage]string),
		Dropped:      make(map[string]bool),
		Shaders:      make(map[uint32]graphics.Stage),
		Sources:      make(map[uint32]string),
		Programs:     make(map[uint32]bool),
		VertexArrays: make(map[uint32][]float32),
		Attribs:      make(map[uint32][]graphics.VertexAttrib),
		Values:       make(map[int32][]float32),
		locations:    make(map[string]int32),
	}
}

// Live returns the number of GPU objects that were created and not deleted.
func (d *Device) Live() int {
	return len(d.Shaders) + len(d.Programs) + len(d.VertexArrays)
}

// Location returns the location a name resolved to, or NoLocation.
func (d *Device) Location(name string) int32 {
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	return graphics.NoLocation
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateShader(stage graphics.Stage) uint32 {
	h := d.handle()
	d.Shaders[h] = stage
	return h
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	d.Sources[shader] = source
	if msg, ok := d.FailCompile[d.Shaders[shader]]; ok {
		return false, msg
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) {
	delete(d.Shaders, shader)
	delete(d.Sources, shader)
}

func (d *Device) CreateProgram() uint32 {
	h := d.handle()
	d.Programs[h] = false
	return h
}

func (d *Device) LinkProgram(program uint32, shaders ...uint32) (bool, string) {
	if d.FailLink != "" {
		return false, d.FailLink
	}
	d.Programs[program] = true
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) {
	delete(d.Programs, program)
}

func (d *Device) UseProgram(program uint32) {
	d.Used = program
}

func (d *Device) resolve(name string) int32 {
	if d.Dropped[name] {
		return graphics.NoLocation
	}
	loc, ok := d.locations[name]
	if !ok {
		loc = int32(len(d.locations))
		d.locations[name] = loc
	}
	return loc
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	if !d.Programs[program] {
		return graphics.NoLocation
	}
	return d.resolve(name)
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	if !d.Programs[program] {
		return graphics.NoLocation
	}
	return d.resolve(name)
}

func (d *Device) CreateVertexArray(data []float32, stride int, attribs []graphics.VertexAttrib) (uint32, uint32) {
	vao := d.handle()
	vbo := d.handle()
	d.VertexArrays[vao] = append([]float32(nil), data...)
	d.Attribs[vao] = append([]graphics.VertexAttrib(nil), attribs...)
	return vao, vbo
}

func (d *Device) DeleteVertexArray(vao, vbo uint32) {
	delete(d.VertexArrays, vao)
	delete(d.Attribs, vao)
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.Uploads++
	d.Values[location] = []float32{v}
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.Uploads++
	d.Values[location] = []float32{x, y}
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.Viewports = append(d.Viewports, [4]int32{x, y, width, height})
}

func (d *Device) Clear(r, g, b, a float32) {
	d.Clears = append(d.Clears, [4]float32{r, g, b, a})
}

func (d *Device) DrawArrays(vao uint32, primitive graphics.Primitive, count int32) {
	d.Draws = append(d.Draws, Draw{VAO: vao, Primitive: primitive, Count: count})
}

// Value returns the last value uploaded for a uniform name.
func (d *Device) Value(name string) []float32 {
	loc := d.Location(name)
	if loc == graphics.NoLocation {
		return nil
	}
	return d.Values[loc]
}
