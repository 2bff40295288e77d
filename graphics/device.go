package graphics

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Primitive is the topology used to draw the full viewport.
type Primitive int

const (
	// TriangleStrip draws two triangles from four vertices.
	TriangleStrip Primitive = iota
	// Triangles draws one oversized triangle from three vertices.
	Triangles
)

func (p Primitive) String() string {
	switch p {
	case TriangleStrip:
		return "strip"
	case Triangles:
		return "triangle"
	default:
		return "unknown"
	}
}

// NoLocation is the location of a uniform or attribute the linker dropped.
const NoLocation int32 = -1

// VertexAttrib describes one float attribute inside an interleaved buffer.
type VertexAttrib struct {
	Location int32
	Size     int32 // components
	Offset   int   // in floats
}

// Device is the subset of an OpenGL-style context the effect drives. Handles
// are opaque; zero is never a valid object.
type Device interface {
	CreateShader(stage Stage) uint32
	// CompileShader uploads source and compiles it, returning the info log
	// when compilation fails.
	CompileShader(shader uint32, source string) (ok bool, infoLog string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	// LinkProgram attaches the shaders and links, returning the info log on
	// failure.
	LinkProgram(program uint32, shaders ...uint32) (ok bool, infoLog string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32

	// CreateVertexArray uploads data once as a static buffer and records the
	// attribute layout. stride is in floats.
	CreateVertexArray(data []float32, stride int, attribs []VertexAttrib) (vao, vbo uint32)
	DeleteVertexArray(vao, vbo uint32)

	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)

	Viewport(x, y, width, height int32)
	// Clear clears the color buffer to the given color.
	Clear(r, g, b, a float32)
	DrawArrays(vao uint32, primitive Primitive, count int32)
}
