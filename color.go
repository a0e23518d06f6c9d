package lantern

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// parseColor parses the CSS color forms scripts use: #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb(), rgba(), "transparent" and the CSS named colors.
func parseColor(s string) (gg.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return gg.RGBA{}, false
	case s == "transparent":
		return gg.RGBA{}, true
	case s[0] == '#':
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return gg.RGBA{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, true
	}
	return gg.RGBA{}, false
}

func parseHexColor(hex string) (gg.RGBA, bool) {
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, false
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return gg.RGBA{}, false
	}
	return gg.Hex(hex), true
}

// parseRGBFunc handles rgb(r, g, b) and rgba(r, g, b, a), with either comma
// or space separators and an optional "/ a" alpha.
func parseRGBFunc(s string) (gg.RGBA, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return gg.RGBA{}, false
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : len(s)-1])
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return gg.RGBA{}, false
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i], 255)
		if !ok {
			return gg.RGBA{}, false
		}
		ch[i] = v
	}
	a := 1.0
	if len(parts) == 4 {
		v, ok := parseChannel(parts[3], 1)
		if !ok {
			return gg.RGBA{}, false
		}
		a = v
	}
	return gg.RGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

// parseChannel parses a number or percentage and normalizes it to [0, 1]
// given the channel's full-scale value.
func parseChannel(p string, scale float64) (float64, bool) {
	pct := strings.HasSuffix(p, "%")
	if pct {
		p = strings.TrimSuffix(p, "%")
	}
	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, false
	}
	if pct {
		v /= 100
	} else {
		v /= scale
	}
	return min(max(v, 0), 1), true
}
