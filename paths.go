package lantern

import (
	"math"

	"github.com/gogpu/gg"
)

// PathRegistry owns path objects referenced by id from the script context.
// Every mutator on an unknown or disposed id is a silent no-op.
type PathRegistry struct {
	reg *registry[*gg.Path]
}

// NewPathRegistry creates an empty path registry.
func NewPathRegistry() *PathRegistry {
	return &PathRegistry{reg: newRegistry[*gg.Path]()}
}

// Create allocates an empty path and returns its id.
func (r *PathRegistry) Create() int {
	return r.reg.insert(gg.NewPath())
}

// CreateWithID registers an empty path under a script-allocated id. It
// reports false when id is not greater than every id already issued.
func (r *PathRegistry) CreateWithID(id int) bool {
	return r.reg.adopt(id, gg.NewPath())
}

// Clone deep-copies id into a new path and returns the new id. The second
// result is false when id is unknown.
func (r *PathRegistry) Clone(id int) (int, bool) {
	p, ok := r.reg.get(id)
	if !ok {
		return 0, false
	}
	return r.reg.insert(p.Clone()), true
}

// CloneWithID deep-copies src into a new path under a script-allocated id.
func (r *PathRegistry) CloneWithID(id, src int) bool {
	p, ok := r.reg.get(src)
	if !ok {
		return false
	}
	return r.reg.adopt(id, p.Clone())
}

// Dispose releases id. Disposing twice is harmless.
func (r *PathRegistry) Dispose(id int) {
	r.reg.remove(id)
}

// Get returns the path for id.
func (r *PathRegistry) Get(id int) (*gg.Path, bool) {
	return r.reg.get(id)
}

// Len returns the number of live paths.
func (r *PathRegistry) Len() int {
	return r.reg.len()
}

// Clear disposes every path.
func (r *PathRegistry) Clear() {
	r.reg.clear()
}

func (r *PathRegistry) MoveTo(id int, x, y float64) {
	if p, ok := r.reg.get(id); ok {
		p.MoveTo(x, y)
	}
}

// LineTo on a path with no current point behaves as MoveTo, as on a canvas.
func (r *PathRegistry) LineTo(id int, x, y float64) {
	p, ok := r.reg.get(id)
	if !ok {
		return
	}
	if !p.HasCurrentPoint() {
		p.MoveTo(x, y)
		return
	}
	p.LineTo(x, y)
}

func (r *PathRegistry) QuadraticTo(id int, cx, cy, x, y float64) {
	if p, ok := r.reg.get(id); ok {
		if !p.HasCurrentPoint() {
			p.MoveTo(cx, cy)
		}
		p.QuadraticTo(cx, cy, x, y)
	}
}

func (r *PathRegistry) CubicTo(id int, c1x, c1y, c2x, c2y, x, y float64) {
	if p, ok := r.reg.get(id); ok {
		if !p.HasCurrentPoint() {
			p.MoveTo(c1x, c1y)
		}
		p.CubicTo(c1x, c1y, c2x, c2y, x, y)
	}
}

// Arc appends a circular arc with canvas semantics: a line joins the current
// point to the arc start, and counterclockwise selects the sweep direction.
func (r *PathRegistry) Arc(id int, x, y, radius, start, end float64, ccw bool) {
	if p, ok := r.reg.get(id); ok {
		appendEllipse(p, x, y, radius, radius, 0, start, end, ccw)
	}
}

func (r *PathRegistry) Ellipse(id int, x, y, rx, ry, rotation, start, end float64, ccw bool) {
	if p, ok := r.reg.get(id); ok {
		appendEllipse(p, x, y, rx, ry, rotation, start, end, ccw)
	}
}

func (r *PathRegistry) Rect(id int, x, y, w, h float64) {
	if p, ok := r.reg.get(id); ok {
		p.Rectangle(x, y, w, h)
	}
}

func (r *PathRegistry) RoundRect(id int, x, y, w, h, radius float64) {
	if p, ok := r.reg.get(id); ok {
		p.RoundedRectangle(x, y, w, h, radius)
	}
}

func (r *PathRegistry) ClosePath(id int) {
	if p, ok := r.reg.get(id); ok {
		p.Close()
	}
}

// sweepAngles normalizes a canvas arc sweep. A sweep of 2π or more in the
// requested direction draws the full ellipse.
func sweepAngles(start, end float64, ccw bool) float64 {
	const twoPi = 2 * math.Pi
	sweep := end - start
	if !ccw {
		if sweep >= twoPi {
			return twoPi
		}
		sweep = math.Mod(sweep, twoPi)
		if sweep < 0 {
			sweep += twoPi
		}
		return sweep
	}
	if sweep <= -twoPi {
		return -twoPi
	}
	sweep = math.Mod(sweep, twoPi)
	if sweep > 0 {
		sweep -= twoPi
	}
	return sweep
}

// appendEllipse appends an elliptical arc to p as cubic Bézier segments of at
// most a quarter turn each.
func appendEllipse(p *gg.Path, cx, cy, rx, ry, rotation, start, end float64, ccw bool) {
	sweep := sweepAngles(start, end, ccw)
	cosR, sinR := math.Cos(rotation), math.Sin(rotation)
	point := func(a float64) (float64, float64) {
		px, py := rx*math.Cos(a), ry*math.Sin(a)
		return cx + px*cosR - py*sinR, cy + px*sinR + py*cosR
	}
	deriv := func(a float64) (float64, float64) {
		dx, dy := -rx*math.Sin(a), ry*math.Cos(a)
		return dx*cosR - dy*sinR, dx*sinR + dy*cosR
	}

	x0, y0 := point(start)
	if p.HasCurrentPoint() {
		p.LineTo(x0, y0)
	} else {
		p.MoveTo(x0, y0)
	}
	if sweep == 0 {
		return
	}

	segments := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	step := sweep / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := start
	for i := 0; i < segments; i++ {
		b := a + step
		ax, ay := point(a)
		bx, by := point(b)
		dax, day := deriv(a)
		dbx, dby := deriv(b)
		p.CubicTo(ax+k*dax, ay+k*day, bx-k*dbx, by-k*dby, bx, by)
		a = b
	}
}
