package lantern

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

// GradientKind selects the gradient geometry.
type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
	GradientConic  GradientKind = "conic"
)

// GradientStop is one color stop. Offset is in [0, 1].
type GradientStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// GradientDescriptor describes a gradient structurally so that equivalent
// gradients issued on different frames share one constructed brush.
//
// Linear: (X0, Y0) to (X1, Y1). Radial: circle (X0, Y0, R0) to circle
// (X1, Y1, R1), as createRadialGradient. Conic: center (X0, Y0), starting
// at Angle radians.
type GradientDescriptor struct {
	Kind  GradientKind   `json:"kind"`
	X0    float64        `json:"x0"`
	Y0    float64        `json:"y0"`
	R0    float64        `json:"r0,omitempty"`
	X1    float64        `json:"x1,omitempty"`
	Y1    float64        `json:"y1,omitempty"`
	R1    float64        `json:"r1,omitempty"`
	Angle float64        `json:"angle,omitempty"`
	Stops []GradientStop `json:"stops"`
}

// Key returns the deterministic serialization used as the cache key.
func (d GradientDescriptor) Key() string {
	var b strings.Builder
	b.Grow(64 + 24*len(d.Stops))
	b.WriteString(string(d.Kind))
	for _, v := range [...]float64{d.X0, d.Y0, d.R0, d.X1, d.Y1, d.R1, d.Angle} {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	for _, s := range d.Stops {
		b.WriteByte(';')
		b.WriteString(strconv.FormatFloat(s.Offset, 'g', -1, 64))
		b.WriteByte(':')
		b.WriteString(s.Color)
	}
	return b.String()
}

// GradientCache maps descriptor keys to constructed brushes for the lifetime
// of a session. Only Clear invalidates entries.
type GradientCache struct {
	entries map[string]gg.Brush
}

// NewGradientCache creates an empty cache.
func NewGradientCache() *GradientCache {
	return &GradientCache{entries: make(map[string]gg.Brush)}
}

// Resolve returns the brush for d, constructing it on first use. Two
// structurally identical descriptors return the same brush value.
func (c *GradientCache) Resolve(d GradientDescriptor) gg.Brush {
	key := d.Key()
	if b, ok := c.entries[key]; ok {
		return b
	}
	b := buildGradient(d)
	c.entries[key] = b
	return b
}

// Len returns the number of cached gradients.
func (c *GradientCache) Len() int {
	return len(c.entries)
}

// Clear drops every cached gradient.
func (c *GradientCache) Clear() {
	clear(c.entries)
}

func buildGradient(d GradientDescriptor) gg.Brush {
	switch d.Kind {
	case GradientRadial:
		g := gg.NewRadialGradientBrush(d.X1, d.Y1, d.R0, d.R1)
		if d.X0 != d.X1 || d.Y0 != d.Y1 {
			g.SetFocus(d.X0, d.Y0)
		}
		for _, s := range d.Stops {
			g.AddColorStop(s.Offset, stopColor(s))
		}
		return g
	case GradientConic:
		g := gg.NewSweepGradientBrush(d.X0, d.Y0, d.Angle)
		for _, s := range d.Stops {
			g.AddColorStop(s.Offset, stopColor(s))
		}
		return g
	default:
		g := gg.NewLinearGradientBrush(d.X0, d.Y0, d.X1, d.Y1)
		for _, s := range d.Stops {
			g.AddColorStop(s.Offset, stopColor(s))
		}
		return g
	}
}

// stopColor parses a stop color; invalid colors become transparent black.
func stopColor(s GradientStop) gg.RGBA {
	c, _ := parseColor(s.Color)
	return c
}
