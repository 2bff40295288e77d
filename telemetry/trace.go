// Package telemetry writes a per-frame CSV trace of the values the effect
// uploads to its shader.
package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/richinsley/goliquidglass/renderer"
)

// FrameRecord is one row of the trace.
type FrameRecord struct {
	Frame     uint64  `csv:"frame"`
	Time      float32 `csv:"time"`
	Width     float32 `csv:"width"`
	Height    float32 `csv:"height"`
	MouseX    float32 `csv:"mouse_x"`
	MouseY    float32 `csv:"mouse_y"`
	Influence float32 `csv:"influence"`
}

// NewFrameRecord flattens the uniforms of one frame.
func NewFrameRecord(frame uint64, u renderer.UniformFrame) FrameRecord {
	return FrameRecord{
		Frame:     frame,
		Time:      u.Time,
		Width:     u.Resolution[0],
		Height:    u.Resolution[1],
		MouseX:    u.Mouse.X(),
		MouseY:    u.Mouse.Y(),
		Influence: u.MouseInfluence,
	}
}

// Trace buffers frame records and writes them in batches. A nil *Trace
// ignores every call, so tracing can be switched off by not creating one.
type Trace struct {
	w      io.Writer
	closer io.Closer

	flushEvery    int
	pending       []FrameRecord
	frames        uint64
	headerWritten bool
}

// Create opens path for a new trace. An empty path returns nil, nil.
func Create(path string, flushEvery int) (*Trace, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace: %w", err)
	}
	t := NewTrace(f, flushEvery)
	t.closer = f
	return t, nil
}

// NewTrace writes to w, flushing every flushEvery records. Values below 1
// flush on every record.
func NewTrace(w io.Writer, flushEvery int) *Trace {
	if flushEvery < 1 {
		flushEvery = 1
	}
	return &Trace{w: w, flushEvery: flushEvery}
}

// Record appends one frame and writes the batch once it is full.
func (t *Trace) Record(u renderer.UniformFrame) error {
	if t == nil {
		return nil
	}
	t.frames++
	t.pending = append(t.pending, NewFrameRecord(t.frames, u))
	if len(t.pending) >= t.flushEvery {
		return t.Flush()
	}
	return nil
}

// Flush writes buffered records. The header goes out with the first batch.
func (t *Trace) Flush() error {
	if t == nil || len(t.pending) == 0 {
		return nil
	}
	if !t.headerWritten {
		if err := gocsv.Marshal(t.pending, t.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
		t.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(t.pending, t.w); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}
	t.pending = t.pending[:0]
	return nil
}

// Frames returns the number of frames recorded.
func (t *Trace) Frames() uint64 {
	if t == nil {
		return 0
	}
	return t.frames
}

// Close flushes and closes the underlying file, if Create opened one.
func (t *Trace) Close() error {
	if t == nil {
		return nil
	}
	err := t.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		t.closer = nil
	}
	return err
}
