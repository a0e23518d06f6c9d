package lantern

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"go.uber.org/zap"
)

// drawState is the canvas state captured by Save and restored by Restore.
type drawState struct {
	matrix gg.Matrix

	fill   gg.Brush
	stroke gg.Brush

	lineWidth  float64
	lineCap    gg.LineCap
	lineJoin   gg.LineJoin
	miterLimit float64
	dash       []float64
	dashOffset float64

	font     string
	align    TextAlign
	baseline TextBaseline

	alpha     float64
	composite CompositeMode

	shadowColor gg.RGBA
	shadowBlur  float64
	shadowX     float64
	shadowY     float64

	filter    string
	smoothing bool
}

func defaultDrawState() drawState {
	return drawState{
		matrix:     gg.Identity(),
		fill:       gg.Solid(gg.Black),
		stroke:     gg.Solid(gg.Black),
		lineWidth:  1,
		miterLimit: 10,
		font:       defaultFont,
		alpha:      1,
		filter:     "none",
		smoothing:  true,
	}
}

// Surface is the drawable target of the command stream. It wraps a gg
// context and layers canvas semantics on top: a save/restore stack for the
// full drawing state, a current path, named images and fonts.
//
// The gg context's own matrix stays at identity. Paths are kept in device
// space, so brushes and stroke widths are resolved at draw time.
type Surface struct {
	dc    *gg.Context
	st    drawState
	stack []drawState
	path  *gg.Path

	images    map[string]*gg.ImageBuf
	fonts     *fontBook
	gradients *GradientCache

	warned map[CompositeMode]bool
}

// NewSurface creates a transparent surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{
		dc:        gg.NewContext(width, height),
		st:        defaultDrawState(),
		path:      gg.NewPath(),
		images:    make(map[string]*gg.ImageBuf),
		fonts:     newFontBook(),
		gradients: NewGradientCache(),
		warned:    make(map[CompositeMode]bool),
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.dc.Width() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.dc.Height() }

// Pixmap returns the backing pixel buffer after flushing pending work.
func (s *Surface) Pixmap() *gg.Pixmap {
	_ = s.dc.FlushGPU()
	return s.dc.ResizeTarget()
}

// Image returns a copy of the current pixels.
func (s *Surface) Image() image.Image {
	_ = s.dc.FlushGPU()
	return s.dc.Image()
}

// Gradients returns the surface's gradient cache.
func (s *Surface) Gradients() *GradientCache { return s.gradients }

// RegisterImage makes img drawable under name, replacing any previous image.
func (s *Surface) RegisterImage(name string, img image.Image) {
	s.images[name] = gg.ImageBufFromImage(img)
}

// HasImage reports whether name refers to a registered image.
func (s *Surface) HasImage(name string) bool {
	_, ok := s.images[name]
	return ok
}

// RegisterFont makes a TrueType/OpenType font usable as family in font
// strings.
func (s *Surface) RegisterFont(family string, data []byte) error {
	return s.fonts.register(family, data)
}

// Close releases fonts and the gg context.
func (s *Surface) Close() error {
	s.fonts.close()
	return s.dc.Close()
}

// Matrix returns the current transform.
func (s *Surface) Matrix() gg.Matrix { return s.st.matrix }

// Filter returns the stored filter string. Filters are not rendered.
func (s *Surface) Filter() string { return s.st.filter }

// GlobalAlpha returns the current global alpha.
func (s *Surface) GlobalAlpha() float64 { return s.st.alpha }

// Composite returns the current composite mode.
func (s *Surface) Composite() CompositeMode { return s.st.composite }

// --- state ---

func (s *Surface) SetFillColor(c string) {
	if col, ok := parseColor(c); ok {
		s.st.fill = gg.Solid(col)
	}
}

func (s *Surface) SetStrokeColor(c string) {
	if col, ok := parseColor(c); ok {
		s.st.stroke = gg.Solid(col)
	}
}

func (s *Surface) SetFillGradient(d GradientDescriptor) {
	s.st.fill = s.gradients.Resolve(d)
}

func (s *Surface) SetStrokeGradient(d GradientDescriptor) {
	s.st.stroke = s.gradients.Resolve(d)
}

func (s *Surface) SetLineWidth(w float64) {
	if finite(w) && w > 0 {
		s.st.lineWidth = w
	}
}

func (s *Surface) SetLineCap(c string) {
	switch c {
	case "butt":
		s.st.lineCap = gg.LineCapButt
	case "round":
		s.st.lineCap = gg.LineCapRound
	case "square":
		s.st.lineCap = gg.LineCapSquare
	}
}

func (s *Surface) SetLineJoin(j string) {
	switch j {
	case "miter":
		s.st.lineJoin = gg.LineJoinMiter
	case "round":
		s.st.lineJoin = gg.LineJoinRound
	case "bevel":
		s.st.lineJoin = gg.LineJoinBevel
	}
}

func (s *Surface) SetMiterLimit(l float64) {
	if finite(l) && l > 0 {
		s.st.miterLimit = l
	}
}

// SetLineDash sets the dash pattern. A list containing a negative or
// non-finite value is ignored; an empty list restores solid lines.
func (s *Surface) SetLineDash(segments []float64) {
	for _, v := range segments {
		if !finite(v) || v < 0 {
			return
		}
	}
	s.st.dash = append([]float64(nil), segments...)
}

func (s *Surface) SetLineDashOffset(o float64) {
	if finite(o) {
		s.st.dashOffset = o
	}
}

func (s *Surface) SetFont(f string) {
	if f != "" {
		s.st.font = f
	}
}

func (s *Surface) SetTextAlign(a string) {
	if v, ok := ParseTextAlign(a); ok {
		s.st.align = v
	}
}

func (s *Surface) SetTextBaseline(b string) {
	if v, ok := ParseTextBaseline(b); ok {
		s.st.baseline = v
	}
}

// SetGlobalAlpha ignores values outside [0, 1].
func (s *Surface) SetGlobalAlpha(a float64) {
	if finite(a) && a >= 0 && a <= 1 {
		s.st.alpha = a
	}
}

func (s *Surface) SetComposite(op string) {
	if m, ok := ParseCompositeMode(op); ok {
		s.st.composite = m
	}
}

func (s *Surface) SetShadowColor(c string) {
	if col, ok := parseColor(c); ok {
		s.st.shadowColor = col
	}
}

func (s *Surface) SetShadowBlur(b float64) {
	if finite(b) && b >= 0 {
		s.st.shadowBlur = b
	}
}

func (s *Surface) SetShadowOffset(x, y float64) {
	if finite(x) && finite(y) {
		s.st.shadowX, s.st.shadowY = x, y
	}
}

func (s *Surface) SetFilter(f string) {
	if f == "" {
		f = "none"
	}
	s.st.filter = f
}

func (s *Surface) SetImageSmoothing(enabled bool) {
	s.st.smoothing = enabled
}

// Save pushes the drawing state, including transform and clip.
func (s *Surface) Save() {
	saved := s.st
	saved.dash = append([]float64(nil), s.st.dash...)
	s.stack = append(s.stack, saved)
	s.dc.Push()
}

// Restore pops the most recently saved state. It does nothing when the
// stack is empty.
func (s *Surface) Restore() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	s.st = s.stack[n-1]
	s.stack = s.stack[:n-1]
	s.dc.Pop()
}

// --- transform ---

func (s *Surface) Translate(x, y float64) {
	s.st.matrix = s.st.matrix.Multiply(gg.Translate(x, y))
}

func (s *Surface) Rotate(angle float64) {
	s.st.matrix = s.st.matrix.Multiply(gg.Rotate(angle))
}

func (s *Surface) Scale(x, y float64) {
	s.st.matrix = s.st.matrix.Multiply(gg.Scale(x, y))
}

// Transform multiplies the current matrix by the canvas matrix
// [a c e; b d f; 0 0 1].
func (s *Surface) Transform(a, b, c, d, e, f float64) {
	s.st.matrix = s.st.matrix.Multiply(canvasMatrix(a, b, c, d, e, f))
}

func (s *Surface) SetTransform(a, b, c, d, e, f float64) {
	s.st.matrix = canvasMatrix(a, b, c, d, e, f)
}

func (s *Surface) ResetTransform() {
	s.st.matrix = gg.Identity()
}

func canvasMatrix(a, b, c, d, e, f float64) gg.Matrix {
	return gg.Matrix{A: a, B: c, C: e, D: b, E: d, F: f}
}

// matrixScale is the uniform scale factor of m, used for stroke widths and
// font sizes.
func matrixScale(m gg.Matrix) float64 {
	return math.Sqrt(math.Abs(m.A*m.E - m.B*m.D))
}

// --- current path ---

func (s *Surface) BeginPath() {
	s.path.Clear()
}

func (s *Surface) ClosePath() {
	if s.path.HasCurrentPoint() {
		s.path.Close()
	}
}

func (s *Surface) MoveTo(x, y float64) {
	p := s.st.matrix.TransformPoint(gg.Pt(x, y))
	s.path.MoveTo(p.X, p.Y)
}

func (s *Surface) LineTo(x, y float64) {
	p := s.st.matrix.TransformPoint(gg.Pt(x, y))
	if !s.path.HasCurrentPoint() {
		s.path.MoveTo(p.X, p.Y)
		return
	}
	s.path.LineTo(p.X, p.Y)
}

func (s *Surface) QuadraticTo(cx, cy, x, y float64) {
	m := s.st.matrix
	c := m.TransformPoint(gg.Pt(cx, cy))
	p := m.TransformPoint(gg.Pt(x, y))
	if !s.path.HasCurrentPoint() {
		s.path.MoveTo(c.X, c.Y)
	}
	s.path.QuadraticTo(c.X, c.Y, p.X, p.Y)
}

func (s *Surface) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	m := s.st.matrix
	c1 := m.TransformPoint(gg.Pt(c1x, c1y))
	c2 := m.TransformPoint(gg.Pt(c2x, c2y))
	p := m.TransformPoint(gg.Pt(x, y))
	if !s.path.HasCurrentPoint() {
		s.path.MoveTo(c1.X, c1.Y)
	}
	s.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (s *Surface) Arc(x, y, radius, start, end float64, ccw bool) {
	s.Ellipse(x, y, radius, radius, 0, start, end, ccw)
}

func (s *Surface) Ellipse(x, y, rx, ry, rotation, start, end float64, ccw bool) {
	if rx < 0 || ry < 0 {
		return
	}
	arc := gg.NewPath()
	appendEllipse(arc, x, y, rx, ry, rotation, start, end, ccw)
	appendPath(s.path, arc.Transform(s.st.matrix), true)
}

func (s *Surface) Rect(x, y, w, h float64) {
	r := gg.NewPath()
	r.Rectangle(x, y, w, h)
	appendPath(s.path, r.Transform(s.st.matrix), false)
}

func (s *Surface) RoundRect(x, y, w, h, radius float64) {
	r := gg.NewPath()
	r.RoundedRectangle(x, y, w, h, max(radius, 0))
	appendPath(s.path, r.Transform(s.st.matrix), false)
}

// appendPath copies src onto dst. With connect set, a leading move is
// turned into a line when dst already has a current point.
func appendPath(dst, src *gg.Path, connect bool) {
	for i, el := range src.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			if i == 0 && connect && dst.HasCurrentPoint() {
				dst.LineTo(e.Point.X, e.Point.Y)
			} else {
				dst.MoveTo(e.Point.X, e.Point.Y)
			}
		case gg.LineTo:
			dst.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dst.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dst.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			dst.Close()
		}
	}
}

// --- painting ---

// Fill fills the current path with the fill style.
func (s *Surface) Fill(rule string) {
	s.paint(s.path, true, parseFillRule(rule))
}

// Stroke strokes the current path with the stroke style.
func (s *Surface) Stroke() {
	s.paint(s.path, false, gg.FillRuleNonZero)
}

// Clip intersects the clip region with the current path.
func (s *Surface) Clip(rule string) {
	s.clip(s.path, parseFillRule(rule))
}

// FillPath fills a registered path, mapped through the current transform.
// The current path is left untouched.
func (s *Surface) FillPath(p *gg.Path, rule string) {
	s.paint(p.Transform(s.st.matrix), true, parseFillRule(rule))
}

func (s *Surface) StrokePath(p *gg.Path) {
	s.paint(p.Transform(s.st.matrix), false, gg.FillRuleNonZero)
}

func (s *Surface) ClipPath(p *gg.Path, rule string) {
	s.clip(p.Transform(s.st.matrix), parseFillRule(rule))
}

func (s *Surface) FillRect(x, y, w, h float64) {
	r := gg.NewPath()
	r.Rectangle(x, y, w, h)
	s.paint(r.Transform(s.st.matrix), true, gg.FillRuleNonZero)
}

func (s *Surface) StrokeRect(x, y, w, h float64) {
	r := gg.NewPath()
	r.Rectangle(x, y, w, h)
	s.paint(r.Transform(s.st.matrix), false, gg.FillRuleNonZero)
}

// ClearRect makes the device-space bounds of the transformed rectangle
// transparent. Clipping does not apply.
func (s *Surface) ClearRect(x, y, w, h float64) {
	m := s.st.matrix
	corners := [4]gg.Point{
		m.TransformPoint(gg.Pt(x, y)),
		m.TransformPoint(gg.Pt(x+w, y)),
		m.TransformPoint(gg.Pt(x, y+h)),
		m.TransformPoint(gg.Pt(x+w, y+h)),
	}
	x0, y0 := corners[0].X, corners[0].Y
	x1, y1 := x0, y0
	for _, c := range corners[1:] {
		x0, y0 = min(x0, c.X), min(y0, c.Y)
		x1, y1 = max(x1, c.X), max(y1, c.Y)
	}
	pm := s.Pixmap()
	ix0 := clampInt(int(math.Floor(x0)), 0, pm.Width())
	iy0 := clampInt(int(math.Floor(y0)), 0, pm.Height())
	ix1 := clampInt(int(math.Ceil(x1)), 0, pm.Width())
	iy1 := clampInt(int(math.Ceil(y1)), 0, pm.Height())
	if ix1 <= ix0 || iy1 <= iy0 {
		return
	}
	data := pm.Data()
	stride := pm.Width() * 4
	for row := iy0; row < iy1; row++ {
		clear(data[row*stride+ix0*4 : row*stride+ix1*4])
	}
}

// Clear fills the whole surface with color, or transparent when color is
// empty or invalid, and drops cached gradients.
func (s *Surface) Clear(color string) {
	col := gg.Transparent
	if color != "" {
		if c, ok := parseColor(color); ok {
			col = c
		}
	}
	s.dc.ClearWithColor(col)
	s.gradients.Clear()
}

// Reset returns the surface to its initial state: default drawing state,
// empty stack, no clip, empty path and transparent pixels.
func (s *Surface) Reset() {
	for range s.stack {
		s.dc.Pop()
	}
	s.stack = s.stack[:0]
	s.st = defaultDrawState()
	s.dc.ResetClip()
	s.path.Clear()
	s.dc.Clear()
	s.gradients.Clear()
}

// FillText draws text with the fill style. maxWidth > 0 shrinks the font
// so the text fits.
func (s *Surface) FillText(str string, x, y, maxWidth float64) {
	s.text(str, x, y, maxWidth, s.st.fill)
}

// StrokeText draws text in the stroke style. Glyphs are filled, not
// outlined.
func (s *Surface) StrokeText(str string, x, y, maxWidth float64) {
	s.text(str, x, y, maxWidth, s.st.stroke)
}

// DrawImage draws the named image at (dx, dy). Zero dw/dh use the source
// size; src selects a sub-rectangle. It reports false for unknown names.
// Rotation and skew in the current transform are not applied to images.
func (s *Surface) DrawImage(name string, dx, dy, dw, dh float64, src *Rect) bool {
	img, ok := s.images[name]
	if !ok {
		return false
	}
	if s.st.alpha == 0 {
		return true
	}
	sw, sh := img.Bounds()
	opts := gg.DrawImageOptions{Interpolation: gg.InterpNearest}
	if s.st.smoothing {
		opts.Interpolation = gg.InterpBilinear
	}
	if src != nil {
		r := image.Rect(int(src.X), int(src.Y), int(src.X+src.Width), int(src.Y+src.Height)).
			Intersect(image.Rect(0, 0, sw, sh))
		if r.Empty() {
			return true
		}
		opts.SrcRect = &r
		sw, sh = r.Dx(), r.Dy()
	}
	if dw == 0 {
		dw = float64(sw)
	}
	if dh == 0 {
		dh = float64(sh)
	}
	m := s.st.matrix
	p := m.TransformPoint(gg.Pt(dx, dy))
	opts.X, opts.Y = p.X, p.Y
	opts.DstWidth = dw * math.Hypot(m.A, m.D)
	opts.DstHeight = dh * math.Hypot(m.B, m.E)
	s.withLayer(func() {
		s.dc.DrawImageEx(img, opts)
	})
	return true
}

func (s *Surface) paint(p *gg.Path, fill bool, rule gg.FillRule) {
	if len(p.Elements()) == 0 || s.st.alpha == 0 {
		return
	}
	brush := s.st.stroke
	if fill {
		brush = s.st.fill
	}
	s.withLayer(func() {
		if s.hasShadow() {
			s.shape(p.Transform(gg.Translate(s.st.shadowX, s.st.shadowY)), fill, rule, gg.Solid(s.st.shadowColor))
		}
		s.shape(p, fill, rule, brush)
	})
}

func (s *Surface) shape(p *gg.Path, fill bool, rule gg.FillRule, brush gg.Brush) {
	s.replay(p)
	var err error
	if fill {
		s.dc.SetFillRule(rule)
		s.dc.SetFillBrush(brush)
		err = s.dc.Fill()
	} else {
		s.dc.SetStrokeBrush(brush)
		s.dc.SetStroke(s.strokeStyle())
		err = s.dc.Stroke()
	}
	if err != nil {
		Logger().Debug("draw failed", zap.Bool("fill", fill), zap.Error(err))
	}
}

func (s *Surface) clip(p *gg.Path, rule gg.FillRule) {
	s.replay(p)
	s.dc.SetFillRule(rule)
	s.dc.Clip()
}

func (s *Surface) replay(p *gg.Path) {
	s.dc.ClearPath()
	for _, el := range p.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			s.dc.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			s.dc.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			s.dc.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			s.dc.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			s.dc.ClosePath()
		}
	}
}

func (s *Surface) strokeStyle() gg.Stroke {
	k := matrixScale(s.st.matrix)
	st := gg.Stroke{
		Width:      s.st.lineWidth * k,
		Cap:        s.st.lineCap,
		Join:       s.st.lineJoin,
		MiterLimit: s.st.miterLimit,
	}
	if len(s.st.dash) > 0 {
		scaled := make([]float64, len(s.st.dash))
		for i, v := range s.st.dash {
			scaled[i] = v * k
		}
		st.Dash = gg.NewDash(scaled...).WithOffset(s.st.dashOffset * k)
	}
	return st
}

func (s *Surface) hasShadow() bool {
	return s.st.shadowColor.A > 0 &&
		(s.st.shadowX != 0 || s.st.shadowY != 0 || s.st.shadowBlur > 0)
}

// withLayer runs draw inside a gg layer when global alpha or the composite
// mode requires one.
func (s *Surface) withLayer(draw func()) {
	mode, ok := s.st.composite.ggBlend()
	if !ok && !s.warned[s.st.composite] {
		s.warned[s.st.composite] = true
		Logger().Warn("composite operation rendered as source-over",
			zap.Stringer("operation", s.st.composite))
	}
	if s.st.alpha >= 1 && mode == gg.BlendNormal {
		draw()
		return
	}
	s.dc.PushLayer(mode, s.st.alpha)
	draw()
	s.dc.PopLayer()
}

func (s *Surface) text(str string, x, y, maxWidth float64, brush gg.Brush) {
	if str == "" || s.st.alpha == 0 {
		return
	}
	k := matrixScale(s.st.matrix)
	face := s.fonts.face(s.st.font, k)
	if face == nil {
		return
	}
	s.dc.SetFont(face)
	w, _ := s.dc.MeasureString(str)
	if maxWidth > 0 && w > maxWidth*k {
		face = s.fonts.face(s.st.font, k*maxWidth*k/w)
		if face == nil {
			return
		}
		s.dc.SetFont(face)
		w, _ = s.dc.MeasureString(str)
	}

	p := s.st.matrix.TransformPoint(gg.Pt(x, y))
	switch s.st.align {
	case TextAlignCenter:
		p.X -= w / 2
	case TextAlignRight:
		p.X -= w
	}
	met := face.Metrics()
	switch s.st.baseline {
	case TextBaselineTop:
		p.Y += met.Ascent
	case TextBaselineMiddle:
		p.Y += (met.Ascent - met.Descent) / 2
	case TextBaselineBottom:
		p.Y -= met.Descent
	}

	s.withLayer(func() {
		if s.hasShadow() {
			s.dc.SetFillBrush(gg.Solid(s.st.shadowColor))
			s.dc.DrawString(str, p.X+s.st.shadowX, p.Y+s.st.shadowY)
		}
		// gg draws glyphs with a solid color only; gradients are sampled at
		// the text origin.
		s.dc.SetFillBrush(gg.Solid(brush.ColorAt(p.X, p.Y)))
		s.dc.DrawString(str, p.X, p.Y)
	})
}

func parseFillRule(rule string) gg.FillRule {
	if rule == "evenodd" {
		return gg.FillRuleEvenOdd
	}
	return gg.FillRuleNonZero
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
