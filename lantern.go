package lantern

import "github.com/gogpu/gg"

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersect returns the overlap of r and other. The result has zero size
// when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.Width, other.X+other.Width)
	y1 := min(r.Y+r.Height, other.Y+other.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// RGBA8 is a straight-alpha pixel as stored in an image data buffer.
type RGBA8 struct {
	R, G, B, A uint8
}

// CompositeMode selects a compositing operation for subsequent draws.
type CompositeMode uint8

const (
	CompositeSourceOver CompositeMode = iota // standard alpha blending
	CompositeMultiply                        // source * destination; only darkens
	CompositeScreen                          // 1 - (1-src)*(1-dst); only brightens
	CompositeOverlay                         // multiply or screen by destination brightness
	CompositeLighter                         // additive; rendered as source-over
	CompositeDestinationOut                  // punch holes; rendered as source-over
	CompositeCopy                            // opaque copy; rendered as source-over
)

var compositeNames = map[string]CompositeMode{
	"source-over":     CompositeSourceOver,
	"multiply":        CompositeMultiply,
	"screen":          CompositeScreen,
	"overlay":         CompositeOverlay,
	"lighter":         CompositeLighter,
	"destination-out": CompositeDestinationOut,
	"copy":            CompositeCopy,
}

// ParseCompositeMode maps a canvas globalCompositeOperation name to a mode.
func ParseCompositeMode(name string) (CompositeMode, bool) {
	m, ok := compositeNames[name]
	return m, ok
}

// String returns the canvas name of the mode.
func (m CompositeMode) String() string {
	for name, v := range compositeNames {
		if v == m {
			return name
		}
	}
	return "source-over"
}

// ggBlend returns the gg layer blend mode for m. The second result is false
// when gg has no equivalent and the draw falls back to source-over.
func (m CompositeMode) ggBlend() (gg.BlendMode, bool) {
	switch m {
	case CompositeSourceOver:
		return gg.BlendNormal, true
	case CompositeMultiply:
		return gg.BlendMultiply, true
	case CompositeScreen:
		return gg.BlendScreen, true
	case CompositeOverlay:
		return gg.BlendOverlay, true
	default:
		return gg.BlendNormal, false
	}
}

// TextAlign controls horizontal text placement relative to the draw point.
type TextAlign uint8

const (
	TextAlignLeft   TextAlign = iota // also "start"
	TextAlignCenter                  // centered on x
	TextAlignRight                   // also "end"
)

// ParseTextAlign maps a canvas textAlign value.
func ParseTextAlign(s string) (TextAlign, bool) {
	switch s {
	case "left", "start":
		return TextAlignLeft, true
	case "center":
		return TextAlignCenter, true
	case "right", "end":
		return TextAlignRight, true
	}
	return TextAlignLeft, false
}

// TextBaseline controls vertical text placement relative to the draw point.
type TextBaseline uint8

const (
	TextBaselineAlphabetic TextBaseline = iota // also "ideographic"
	TextBaselineTop                            // also "hanging"
	TextBaselineMiddle
	TextBaselineBottom
)

// ParseTextBaseline maps a canvas textBaseline value.
func ParseTextBaseline(s string) (TextBaseline, bool) {
	switch s {
	case "alphabetic", "ideographic":
		return TextBaselineAlphabetic, true
	case "top", "hanging":
		return TextBaselineTop, true
	case "middle":
		return TextBaselineMiddle, true
	case "bottom":
		return TextBaselineBottom, true
	}
	return TextBaselineAlphabetic, false
}

// Mouse buttons as reported in InputSnapshot.
const (
	MouseButtonLeft   = 0
	MouseButtonMiddle = 1
	MouseButtonRight  = 2
)
