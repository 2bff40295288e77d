// Package translator converts WebGL shader sources to the dialect of the
// desktop OpenGL context using the ANGLE-based goshadertranslator.
package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/shader"
	gst "github.com/richinsley/goshadertranslator"
)

// Translator translates GLSL ES sources. The underlying translator is
// created lazily on first use and shared.
type Translator struct {
	gles bool

	once sync.Once
	st   *gst.ShaderTranslator
	err  error
}

var (
	defaultOnce sync.Once
	defaultT    *Translator
)

// Default returns the shared translator emitting GLSL 4.10.
func Default() *Translator {
	defaultOnce.Do(func() {
		defaultT = New(false)
	})
	return defaultT
}

// New returns a translator emitting GLSL 4.10, or ESSL when gles is set.
func New(gles bool) *Translator {
	return &Translator{gles: gles}
}

func (t *Translator) init() error {
	t.once.Do(func() {
		t.st, t.err = gst.NewShaderTranslator(context.Background())
		if t.err != nil {
			t.err = fmt.Errorf("failed to start shader translator: %w", t.err)
		}
	})
	return t.err
}

// Translate converts source for the given stage.
func (t *Translator) Translate(source string, stage graphics.Stage) (shader.Translated, error) {
	if err := t.init(); err != nil {
		return shader.Translated{}, err
	}

	outputFormat := gst.OutputFormatGLSL410
	if t.gles {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := t.st.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return shader.Translated{}, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}

	names := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		names[name] = v.MappedName
	}
	return shader.Translated{Code: out.Code, Names: names}, nil
}
