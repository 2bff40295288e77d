package renderer

import (
	"fmt"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/shader"
)

// StageError reports a shader stage that failed to compile.
type StageError struct {
	Stage graphics.Stage
	Log   string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Translator converts a stage source to the device's dialect.
type Translator interface {
	Translate(source string, stage graphics.Stage) (shader.Translated, error)
}

// Locations holds the resolved uniform locations of a program.
type Locations struct {
	Time           int32
	Resolution     int32
	Mouse          int32
	MouseInfluence int32
}

// Program is a linked program and the locations it exposes.
type Program struct {
	device   graphics.Device
	handle   uint32
	uniforms map[string]int32

	Locations   Locations
	PositionLoc int32
	TexCoordLoc int32
}

// Handle returns the GPU program handle, or zero after Release.
func (p *Program) Handle() uint32 { return p.handle }

// Uniform returns the location for an untranslated uniform name.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return graphics.NoLocation
}

// Use makes the program current.
func (p *Program) Use() {
	p.device.UseProgram(p.handle)
}

// Release deletes the program. It is safe to call more than once.
func (p *Program) Release() {
	if p == nil || p.handle == 0 {
		return
	}
	p.device.DeleteProgram(p.handle)
	graphics.Logger().Debug("program released", "handle", p.handle)
	p.handle = 0
}

// Forget drops the handle without touching the device. Used once the context
// that owned the program is gone.
func (p *Program) Forget() {
	if p != nil {
		p.handle = 0
	}
}

// Builder compiles and links programs on one device.
type Builder struct {
	device     graphics.Device
	translator Translator
}

// NewBuilder returns a builder. A nil translator passes sources through.
func NewBuilder(device graphics.Device, translator Translator) *Builder {
	return &Builder{device: device, translator: translator}
}

// CompileStage compiles one stage. On failure the shader object is deleted
// and the error carries the info log.
func (b *Builder) CompileStage(source string, stage graphics.Stage) (uint32, error) {
	sh := b.device.CreateShader(stage)
	if ok, infoLog := b.device.CompileShader(sh, source); !ok {
		b.device.DeleteShader(sh)
		return 0, &StageError{Stage: stage, Log: infoLog}
	}
	return sh, nil
}

// Link links the two stages into a program. The stage objects are deleted
// whether or not linking succeeds.
func (b *Builder) Link(vertexShader, fragmentShader uint32) (uint32, error) {
	program := b.device.CreateProgram()
	ok, infoLog := b.device.LinkProgram(program, vertexShader, fragmentShader)

	b.device.DeleteShader(vertexShader)
	b.device.DeleteShader(fragmentShader)

	if !ok {
		b.device.DeleteProgram(program)
		return 0, &LinkError{Log: infoLog}
	}
	return program, nil
}

// LocateUniform returns the location of name, or graphics.NoLocation when
// the linker dropped it.
func (b *Builder) LocateUniform(program uint32, name string) int32 {
	return b.device.UniformLocation(program, name)
}

func (b *Builder) translate(source string, stage graphics.Stage) (shader.Translated, error) {
	if b.translator == nil {
		return shader.Translated{Code: source}, nil
	}
	return b.translator.Translate(source, stage)
}

// Build translates, compiles and links the variant's program and resolves
// its uniforms and attributes. Nothing is left allocated on failure.
func (b *Builder) Build(v shader.Variant) (*Program, error) {
	vsOut, err := b.translate(v.Source.Vertex, graphics.VertexStage)
	if err != nil {
		return nil, err
	}
	fsOut, err := b.translate(v.Source.Fragment, graphics.FragmentStage)
	if err != nil {
		return nil, err
	}

	vs, err := b.CompileStage(vsOut.Code, graphics.VertexStage)
	if err != nil {
		return nil, err
	}
	fs, err := b.CompileStage(fsOut.Code, graphics.FragmentStage)
	if err != nil {
		b.device.DeleteShader(vs)
		return nil, err
	}
	handle, err := b.Link(vs, fs)
	if err != nil {
		return nil, err
	}

	p := &Program{
		device:   b.device,
		handle:   handle,
		uniforms: make(map[string]int32, 4),
	}
	for _, name := range v.Uniforms.All() {
		loc := b.LocateUniform(handle, fsOut.Name(name))
		if loc == graphics.NoLocation {
			// the compiler may drop a uniform the shader never reads
			graphics.Logger().Debug("uniform not active", "variant", v.Name, "uniform", name)
		}
		p.uniforms[name] = loc
	}
	p.Locations = Locations{
		Time:           p.Uniform(v.Uniforms.Time),
		Resolution:     p.Uniform(v.Uniforms.Resolution),
		Mouse:          p.Uniform(v.Uniforms.Mouse),
		MouseInfluence: p.Uniform(v.Uniforms.MouseInfluence),
	}
	p.PositionLoc = b.device.AttribLocation(handle, vsOut.Name(v.Attributes.Position))
	p.TexCoordLoc = b.device.AttribLocation(handle, vsOut.Name(v.Attributes.TexCoord))

	graphics.Logger().Debug("program built", "variant", v.Name, "handle", handle)
	return p, nil
}
