package capture

import (
	"strings"
	"testing"
)

func TestArgs(t *testing.T) {
	cfg := Config{Output: "out.mp4", Width: 1280, Height: 720, FPS: 30, Codec: "h264"}
	in, out := Args(cfg, "linux")

	if in["f"] != "rawvideo" || in["pix_fmt"] != "rgba" || in["s"] != "1280x720" || in["r"] != 30 {
		t.Errorf("input args = %v", in)
	}
	if out["vf"] != "vflip" || out["c:v"] != "libx264" || out["pix_fmt"] != "yuv420p" {
		t.Errorf("output args = %v", out)
	}
	if _, ok := out["tag:v"]; ok {
		t.Error("h264 output tagged hvc1")
	}
}

func TestEncoderFor(t *testing.T) {
	tests := []struct {
		codec, goos, want string
	}{
		{"h264", "linux", "libx264"},
		{"hevc", "linux", "libx265"},
		{"h264", "windows", "libx264"},
		{"h264", "darwin", "h264_videotoolbox"},
		{"hevc", "darwin", "hevc_videotoolbox"},
	}
	for _, tt := range tests {
		if got := encoderFor(tt.codec, tt.goos); got != tt.want {
			t.Errorf("encoderFor(%s, %s) = %s, want %s", tt.codec, tt.goos, got, tt.want)
		}
	}
}

func TestArgsHEVCTag(t *testing.T) {
	tests := []struct {
		output string
		tagged bool
	}{
		{"out.mp4", true},
		{"OUT.MP4", true},
		{"out.mkv", false},
	}
	for _, tt := range tests {
		_, out := Args(Config{Output: tt.output, Width: 2, Height: 2, FPS: 1, Codec: "hevc"}, "linux")
		if _, ok := out["tag:v"]; ok != tt.tagged {
			t.Errorf("%s: tagged = %v, want %v", tt.output, ok, tt.tagged)
		}
	}
}

func TestStartValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no output", Config{Width: 2, Height: 2, FPS: 30, Codec: "h264"}, "no output"},
		{"zero size", Config{Output: "a.mp4", FPS: 30, Codec: "h264"}, "frame size"},
		{"zero fps", Config{Output: "a.mp4", Width: 2, Height: 2, Codec: "h264"}, "fps"},
		{"codec", Config{Output: "a.mp4", Width: 2, Height: 2, FPS: 30, Codec: "vp9"}, "codec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Start(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Start() error = %v, want %q", err, tt.want)
			}
			if r != nil {
				t.Error("recorder returned with error")
			}
		})
	}
}

func TestFrameSize(t *testing.T) {
	if got := (Config{Width: 4, Height: 3}).FrameSize(); got != 48 {
		t.Errorf("FrameSize = %d, want 48", got)
	}
}
