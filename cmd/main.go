package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/richinsley/goliquidglass/capture"
	"github.com/richinsley/goliquidglass/effect"
	"github.com/richinsley/goliquidglass/glfwcontext"
	"github.com/richinsley/goliquidglass/graphics"
	"github.com/richinsley/goliquidglass/options"
	"github.com/richinsley/goliquidglass/renderer"
	"github.com/richinsley/goliquidglass/shader"
	"github.com/richinsley/goliquidglass/surface"
	"github.com/richinsley/goliquidglass/telemetry"
	"github.com/richinsley/goliquidglass/translator"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var configPath = flag.String("config", "", "YAML configuration file (defaults are embedded)")
	var dumpConfig = flag.String("dump-config", "", "Write the effective configuration to this file and exit")
	var variant = flag.String("variant", "", "Effect variant: "+strings.Join(shader.Names(), ", "))
	var reducedMotion = flag.Bool("reduced-motion", false, "Pretend the user prefers reduced motion")
	var width = flag.Int("width", 0, "Window width")
	var height = flag.Int("height", 0, "Window height")
	var tracePath = flag.String("trace", "", "Write a per-frame CSV trace to this file")
	var verbose = flag.Bool("v", false, "Verbose logging")
	var help = flag.Bool("help", false, "Show help message")

	// Recording flags
	var record = flag.Bool("record", false, "Enable recording mode")
	var duration = flag.Float64("duration", 0, "Duration to record in seconds")
	var fps = flag.Int("fps", 0, "Frames per second for recording")
	var outputFile = flag.String("output", "", "Output file name for recording")
	var ffmpegPath = flag.String("ffmpeg", "", "Path to ffmpeg executable")

	flag.Parse()

	if *help {
		fmt.Println("Liquid Glass Background")
		flag.PrintDefaults()
		return
	}

	cfg, err := options.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variant":
			cfg.Variant = *variant
		case "reduced-motion":
			cfg.Gate.ReducedMotion = *reducedMotion
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "trace":
			cfg.Trace.Path = *tracePath
		case "duration":
			cfg.Record.Duration = *duration
		case "fps":
			cfg.Record.FPS = *fps
		case "output":
			cfg.Record.Output = *outputFile
		case "ffmpeg":
			cfg.Record.FFMPEGPath = *ffmpegPath
		}
	})
	if *record && cfg.Record.Output == "" {
		cfg.Record.Output = "output.mp4"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			log.Fatalf("Error writing configuration: %v", err)
		}
		log.Printf("Configuration written to %s", *dumpConfig)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetLogLoggerLevel(level)
	graphics.SetLogger(slog.Default())

	if err := run(cfg, *record); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(cfg *options.Config, record bool) error {
	v, err := cfg.ResolveVariant()
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	hostOpts := glfwcontext.Options{
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		Title:         cfg.Window.Title,
		Visible:       !record,
		Transparent:   cfg.Window.Transparent,
		VSync:         cfg.Window.VSync && !record,
		ReducedMotion: cfg.Gate.ReducedMotion,
		Fallback:      [3]float32{cfg.Window.Fallback[0], cfg.Window.Fallback[1], cfg.Window.Fallback[2]},
	}
	if record {
		hostOpts.FixedStep = 1 / float64(cfg.Record.FPS)
	}
	host, err := glfwcontext.New(hostOpts)
	if err != nil {
		return err
	}
	defer host.Shutdown()

	trace, err := telemetry.Create(cfg.Trace.Path, cfg.Trace.Flush)
	if err != nil {
		return err
	}
	defer func() {
		if err := trace.Close(); err != nil {
			log.Printf("Error closing trace: %v", err)
		}
	}()

	var rec *recording
	if record {
		rec = &recording{
			host:  host,
			limit: int(cfg.Record.Duration * float64(cfg.Record.FPS)),
			cfg: capture.Config{
				Output:     cfg.Record.Output,
				FPS:        cfg.Record.FPS,
				Codec:      cfg.Record.Codec,
				FFMPEGPath: cfg.Record.FFMPEGPath,
			},
		}
		defer rec.close()
	}

	opts := effect.Options{
		Variant:          v,
		MinViewportWidth: cfg.Gate.MinViewportWidth,
		Surface: surface.Options{
			MaxPixelRatio: cfg.Surface.MaxPixelRatio,
			Surface: graphics.SurfaceOptions{
				Alpha:     cfg.Window.Transparent,
				Antialias: true,
			},
		},
		Translator:      translator.Default(),
		PauseWhenHidden: cfg.Surface.PauseWhenHidden && !record,
	}

	var ctrl *effect.Controller
	opts.OnFrame = func(frame renderer.UniformFrame) {
		if err := trace.Record(frame); err != nil {
			log.Printf("Error writing trace: %v", err)
		}
		if rec != nil {
			rec.frame(ctrl)
		}
	}

	ctrl, err = effect.New(host, opts)
	if err != nil {
		if record {
			return fmt.Errorf("effect not started: %w", err)
		}
		// the window keeps its fallback background
		log.Printf("Effect not started, showing fallback: %v", err)
	}
	defer ctrl.Destroy()

	if record {
		log.Printf("Recording %d frames of %s...", rec.limit, v.Name)
	} else {
		log.Printf("Starting interactive render loop (%s)...", v.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := host.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	if rec != nil {
		return rec.close()
	}
	return nil
}

// recording feeds drawn frames to a capture.Recorder until it has enough.
type recording struct {
	host  *glfwcontext.Host
	cfg   capture.Config
	limit int

	recorder *capture.Recorder
	err      error
	closed   bool
}

func (r *recording) frame(ctrl *effect.Controller) {
	if r.err != nil || ctrl == nil {
		return
	}
	reader, ok := ctrl.Surface().(graphics.PixelReader)
	if !ok {
		r.fail(fmt.Errorf("surface cannot be read back"))
		return
	}
	pixels, w, h, err := reader.ReadPixels()
	if err != nil {
		r.fail(err)
		return
	}
	if r.recorder == nil {
		r.cfg.Width, r.cfg.Height = w, h
		r.recorder, err = capture.Start(r.cfg)
		if err != nil {
			r.fail(err)
			return
		}
	}
	if err := r.recorder.WriteFrame(pixels); err != nil {
		r.fail(err)
		return
	}
	if r.recorder.Frames() >= r.limit {
		r.host.Close()
	}
}

func (r *recording) fail(err error) {
	r.err = err
	log.Printf("Recording failed: %v", err)
	r.host.Close()
}

func (r *recording) close() error {
	if r.closed {
		return r.err
	}
	r.closed = true
	if err := r.recorder.Close(); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
