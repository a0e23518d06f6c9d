package lantern

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Screenshot queues a labeled screenshot of the surface, taken after the
// current frame's batch has been applied. The PNG is written to the
// configured screenshot directory with a timestamped filename.
func (rt *Runtime) Screenshot(label string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.screenshots = append(rt.screenshots, label)
}

// flushScreenshots writes one PNG per queued label and returns the paths
// written.
func (rt *Runtime) flushScreenshots() []string {
	rt.mu.Lock()
	queue := rt.screenshots
	rt.screenshots = nil
	rt.mu.Unlock()
	if len(queue) == 0 {
		return nil
	}

	dir := rt.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		Logger().Error("screenshot: mkdir", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	img := rt.Surface.Image()
	stamp := time.Now().Format("20060102_150405")

	var written []string
	for _, label := range queue {
		p := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(p, img); err != nil {
			Logger().Error("screenshot", zap.Error(err))
			continue
		}
		written = append(written, p)
	}
	return written
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
