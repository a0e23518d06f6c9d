package lantern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	defaultFont     = "10px sans-serif"
	defaultFontSize = 10.0
)

type faceKey struct {
	family string
	size   float64
}

// fontBook resolves CSS font strings to gg text faces. Families come from
// registered font assets; anything unknown falls back to Go Regular.
type fontBook struct {
	sources  map[string]*text.FontSource
	fallback *text.FontSource
	faces    map[faceKey]text.Face
}

func newFontBook() *fontBook {
	fb := &fontBook{
		sources: make(map[string]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		Logger().Sugar().Warnf("default font unavailable: %v", err)
	} else {
		fb.fallback = src
	}
	return fb
}

// register parses font data and makes it available under family.
func (fb *fontBook) register(family string, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return fmt.Errorf("register font %q: %w", family, err)
	}
	key := strings.ToLower(family)
	if old, ok := fb.sources[key]; ok {
		_ = old.Close()
	}
	fb.sources[key] = src
	for k := range fb.faces {
		if k.family == key {
			delete(fb.faces, k)
		}
	}
	return nil
}

// face returns the face for a CSS font shorthand with its size multiplied by
// scale, or nil when no font at all is available.
func (fb *fontBook) face(spec string, scale float64) text.Face {
	size, families := parseFont(spec)
	if scale > 0 {
		size *= scale
	}
	family := ""
	src := fb.fallback
	for _, f := range families {
		if s, ok := fb.sources[f]; ok {
			family, src = f, s
			break
		}
	}
	if src == nil {
		return nil
	}
	key := faceKey{family: family, size: size}
	if f, ok := fb.faces[key]; ok {
		return f
	}
	f := src.Face(size)
	fb.faces[key] = f
	return f
}

func (fb *fontBook) close() {
	for _, s := range fb.sources {
		_ = s.Close()
	}
	clear(fb.sources)
	clear(fb.faces)
	if fb.fallback != nil {
		_ = fb.fallback.Close()
		fb.fallback = nil
	}
}

// parseFont extracts the pixel size and the lower-cased family list from a
// CSS font shorthand such as `italic bold 16px "Press Start", monospace`.
// Style and weight keywords are accepted and ignored.
func parseFont(spec string) (float64, []string) {
	fields := strings.Fields(spec)
	for i, f := range fields {
		size, ok := parseFontSize(f)
		if !ok {
			continue
		}
		rest := strings.Join(fields[i+1:], " ")
		var families []string
		for _, fam := range strings.Split(rest, ",") {
			fam = strings.Trim(strings.TrimSpace(fam), `"'`)
			if fam != "" {
				families = append(families, strings.ToLower(fam))
			}
		}
		return size, families
	}
	return defaultFontSize, nil
}

// parseFontSize accepts px, pt and em sizes, optionally followed by a
// "/line-height" suffix.
func parseFontSize(f string) (float64, bool) {
	if i := strings.IndexByte(f, '/'); i >= 0 {
		f = f[:i]
	}
	scale := 1.0
	switch {
	case strings.HasSuffix(f, "px"):
		f = strings.TrimSuffix(f, "px")
	case strings.HasSuffix(f, "pt"):
		f = strings.TrimSuffix(f, "pt")
		scale = 4.0 / 3.0
	case strings.HasSuffix(f, "em"):
		f = strings.TrimSuffix(f, "em")
		scale = 16
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * scale, true
}
