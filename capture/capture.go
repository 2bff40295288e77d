// Package capture encodes frames read back from the backing store to a video
// file through ffmpeg.
package capture

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Config describes the output video.
type Config struct {
	Output     string
	Width      int
	Height     int
	FPS        int
	Codec      string // "h264" or "hevc"
	FFMPEGPath string
}

func (c Config) validate() error {
	var errs []error
	if c.Output == "" {
		errs = append(errs, errors.New("no output file"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Codec != "h264" && c.Codec != "hevc" {
		errs = append(errs, fmt.Errorf("unsupported codec %q", c.Codec))
	}
	return errors.Join(errs...)
}

// FrameSize is the byte length of one RGBA frame.
func (c Config) FrameSize() int { return c.Width * c.Height * 4 }

// encoderFor picks the video encoder for a codec on an operating system.
func encoderFor(codec, goos string) string {
	hevc := codec == "hevc"
	if goos == "darwin" {
		if hevc {
			return "hevc_videotoolbox"
		}
		return "h264_videotoolbox"
	}
	if hevc {
		return "libx265"
	}
	return "libx264"
}

// Args returns the ffmpeg input and output arguments for raw RGBA frames
// arriving bottom row first on stdin.
func Args(c Config, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", c.Width, c.Height),
		"r":       c.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		// GL rows start at the bottom
		"vf":      "vflip",
		"c:v":     encoderFor(c.Codec, goos),
		"pix_fmt": "yuv420p",
		"b:v":     "25M",
	}
	if c.Codec == "hevc" && strings.EqualFold(filepath.Ext(c.Output), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Recorder streams frames into a running ffmpeg process.
type Recorder struct {
	cfg    Config
	frames chan []byte
	done   chan error
	count  int
	closed bool
}

// Start launches ffmpeg and returns a recorder accepting frames of the
// configured size.
func Start(cfg Config) (*Recorder, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid capture config: %w", err)
	}

	r := &Recorder{
		cfg:    cfg,
		frames: make(chan []byte, 3),
		done:   make(chan error, 1),
	}
	go r.run()
	log.Printf("Recording %dx%d@%d to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.Output)
	return r, nil
}

func (r *Recorder) run() {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(r.cfg, runtime.GOOS)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(r.cfg.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if r.cfg.FFMPEGPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(r.cfg.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// unblock writers if ffmpeg exits early
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	var writeErr error
	for frame := range r.frames {
		if writeErr != nil {
			continue
		}
		if _, err := pipeWriter.Write(frame); err != nil {
			writeErr = fmt.Errorf("writing frame to ffmpeg: %w", err)
		}
	}
	pipeWriter.Close()

	if err := <-errc; err != nil {
		r.done <- fmt.Errorf("ffmpeg: %w", err)
		return
	}
	r.done <- writeErr
}

// WriteFrame queues one frame. pixels must hold exactly one frame.
func (r *Recorder) WriteFrame(pixels []byte) error {
	if r.closed {
		return errors.New("recorder is closed")
	}
	if len(pixels) != r.cfg.FrameSize() {
		return fmt.Errorf("frame is %d bytes, want %d", len(pixels), r.cfg.FrameSize())
	}
	r.frames <- pixels
	r.count++
	return nil
}

// Frames returns the number of frames written.
func (r *Recorder) Frames() int { return r.count }

// Close finishes the file and waits for ffmpeg to exit.
func (r *Recorder) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	close(r.frames)
	err := <-r.done
	log.Printf("Recorded %d frames to %s", r.count, r.cfg.Output)
	return err
}
