package shader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/richinsley/goliquidglass/graphics"
)

// Source is the immutable pair of stage sources for one effect.
type Source struct {
	Vertex   string
	Fragment string
}

// Stage returns the source text for the given stage.
func (s Source) Stage(stage graphics.Stage) string {
	if stage == graphics.VertexStage {
		return s.Vertex
	}
	return s.Fragment
}

// UniformNames is the per-variant naming of the four uniforms every effect
// consumes.
type UniformNames struct {
	Time           string
	Resolution     string
	Mouse          string
	MouseInfluence string
}

// All returns the names in upload order.
func (u UniformNames) All() []string {
	return []string{u.Time, u.Resolution, u.Mouse, u.MouseInfluence}
}

// AttributeNames names the vertex inputs fed from the geometry buffer.
type AttributeNames struct {
	Position string
	TexCoord string
}

// Variant is everything that differs between two liquid glass effects.
type Variant struct {
	Name       string
	Source     Source
	Primitive  graphics.Primitive
	Uniforms   UniformNames
	Attributes AttributeNames
	// Per-tick smoothing factors for the pointer position and influence.
	PositionAlpha  float32
	InfluenceAlpha float32
}

// Glass is the flowing wave gradient drawn over a quad.
var Glass = Variant{
	Name:      "glass",
	Source:    Source{Vertex: glassVertex, Fragment: glassFragment},
	Primitive: graphics.TriangleStrip,
	Uniforms: UniformNames{
		Time:           "u_time",
		Resolution:     "u_resolution",
		Mouse:          "u_mouse",
		MouseInfluence: "u_mouseInfluence",
	},
	Attributes:     AttributeNames{Position: "a_position", TexCoord: "a_texCoord"},
	PositionAlpha:  0.02,
	InfluenceAlpha: 0.015,
}

// Ribbon is the frozen glass ribbon drawn with one oversized triangle.
var Ribbon = Variant{
	Name:      "ribbon",
	Source:    Source{Vertex: ribbonVertex, Fragment: ribbonFragment},
	Primitive: graphics.Triangles,
	Uniforms: UniformNames{
		Time:           "uTime",
		Resolution:     "uResolution",
		Mouse:          "uMouse",
		MouseInfluence: "uMouseInfluence",
	},
	Attributes:     AttributeNames{Position: "position", TexCoord: "uv"},
	PositionAlpha:  0.03,
	InfluenceAlpha: 0.02,
}

var variants = map[string]Variant{
	Glass.Name:  Glass,
	Ribbon.Name: Ribbon,
}

// Lookup returns the variant registered under name.
func Lookup(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("unknown shader variant %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return v, nil
}

// Names lists the registered variant names in sorted order.
func Names() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ────────────────────────────────── Desktop GL ──────────────────────────────────

// Presentation shaders used by the window host to put the backing store on
// screen. They are written for the 4.1 core context directly.

const blitVertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// BlitSource returns the program that copies a texture to the framebuffer.
func BlitSource() Source {
	return Source{Vertex: blitVertexShaderSourceGL, Fragment: blitFragmentShaderSourceGL}
}

// Translated is one stage after translation to the context's dialect.
type Translated struct {
	Code string
	// Names maps identifiers of the WebGL source to the names the
	// translator emitted for them.
	Names map[string]string
}

// Name returns the emitted name for a source identifier.
func (t Translated) Name(ident string) string {
	if mapped, ok := t.Names[ident]; ok && mapped != "" {
		return mapped
	}
	return ident
}
