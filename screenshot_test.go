package lantern

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-spawn", "after-spawn"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotQueueOrder(t *testing.T) {
	rt, _, _ := newTestRuntime(t, runtimeFS(t))
	rt.Screenshot("a")
	rt.Screenshot("b")
	rt.Screenshot("c")
	if len(rt.screenshots) != 3 {
		t.Fatalf("queue len = %d, want 3", len(rt.screenshots))
	}
	if rt.screenshots[0] != "a" || rt.screenshots[1] != "b" || rt.screenshots[2] != "c" {
		t.Errorf("queue = %v, want [a b c]", rt.screenshots)
	}
}

func TestFlushScreenshots(t *testing.T) {
	rt, _, _ := newTestRuntime(t, runtimeFS(t))
	rt.cfg.ScreenshotDir = filepath.Join(t.TempDir(), "shots")

	if got := rt.flushScreenshots(); got != nil {
		t.Fatalf("empty queue wrote %v", got)
	}

	rt.Dispatcher.Apply([]Command{Clear{Color: "#ff0000"}})
	rt.Screenshot("after spawn")
	written := rt.flushScreenshots()
	if len(written) != 1 {
		t.Fatalf("written = %v, want one file", written)
	}
	if !strings.HasSuffix(written[0], "_after_spawn.png") {
		t.Errorf("file name = %q", written[0])
	}

	f, err := os.Open(written[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("size = %v, want 16x16", b)
	}
	r, _, _, a := img.At(3, 3).RGBA()
	if r>>8 != 255 || a>>8 != 255 {
		t.Errorf("pixel = %v, want opaque red", img.At(3, 3))
	}
	if len(rt.screenshots) != 0 {
		t.Error("queue not drained")
	}
}
