// Package gldevice drives an OpenGL 4.1 core context through go-gl.
package gldevice

import (
	"fmt"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goliquidglass/graphics"
)

var (
	glInitOnce sync.Once
	glInitErr  error
)

// Init loads the GL entry points for the current context. It only does work
// on the first call.
func Init() error {
	glInitOnce.Do(func() {
		if err := gl.Init(); err != nil {
			glInitErr = fmt.Errorf("failed to initialize OpenGL: %w", err)
			return
		}
		graphics.Logger().Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	})
	return glInitErr
}

// Device implements graphics.Device on the context current on the calling
// thread.
type Device struct{}

// New returns a Device. The GL context must already be current.
func New() (*Device, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return &Device{}, nil
}

var _ graphics.Device = (*Device)(nil)

func stageType(stage graphics.Stage) uint32 {
	if stage == graphics.VertexStage {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func (d *Device) CreateShader(stage graphics.Stage) uint32 {
	return gl.CreateShader(stageType(stage))
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return false, strings.TrimRight(logText, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) LinkProgram(program uint32, shaders ...uint32) (bool, string) {
	for _, sh := range shaders {
		gl.AttachShader(program, sh)
	}
	gl.LinkProgram(program)
	for _, sh := range shaders {
		gl.DetachShader(program, sh)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return false, strings.TrimRight(log, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// AttribLocation looks name up directly and then among the active attributes
// whose name ends in it, which covers prefixes added by the translator.
func (d *Device) AttribLocation(program uint32, name string) int32 {
	if loc := gl.GetAttribLocation(program, gl.Str(name+"\x00")); loc >= 0 {
		return loc
	}

	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)
	if maxLen <= 0 {
		return graphics.NoLocation
	}
	buf := make([]uint8, maxLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		active := string(buf[:length])
		if strings.HasSuffix(active, name) {
			return gl.GetAttribLocation(program, gl.Str(active+"\x00"))
		}
	}
	return graphics.NoLocation
}

func (d *Device) CreateVertexArray(data []float32, stride int, attribs []graphics.VertexAttrib) (uint32, uint32) {
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	for _, a := range attribs {
		loc := uint32(a.Location)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, a.Size, gl.FLOAT, false, int32(stride*4), gl.PtrOffset(a.Offset*4))
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

func (d *Device) DeleteVertexArray(vao, vbo uint32) {
	if vbo != 0 {
		gl.DeleteBuffers(1, &vbo)
	}
	if vao != 0 {
		gl.DeleteVertexArrays(1, &vao)
	}
}

func (d *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (d *Device) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawArrays(vao uint32, primitive graphics.Primitive, count int32) {
	mode := uint32(gl.TRIANGLES)
	if primitive == graphics.TriangleStrip {
		mode = gl.TRIANGLE_STRIP
	}
	gl.BindVertexArray(vao)
	gl.DrawArrays(mode, 0, count)
	gl.BindVertexArray(0)
}
