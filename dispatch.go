package lantern

import "go.uber.org/zap"

// Dispatcher applies command batches to a Surface and its registries.
// Commands run strictly in order. A command naming an unknown path, pixel
// buffer or image is skipped without affecting the rest of the batch.
type Dispatcher struct {
	surface *Surface
	paths   *PathRegistry
	pixels  *PixelRegistry

	applied uint64
	skipped uint64
}

// NewDispatcher creates a dispatcher drawing onto s.
func NewDispatcher(s *Surface, paths *PathRegistry, pixels *PixelRegistry) *Dispatcher {
	return &Dispatcher{surface: s, paths: paths, pixels: pixels}
}

// Surface returns the target surface.
func (d *Dispatcher) Surface() *Surface { return d.surface }

// Paths returns the path registry.
func (d *Dispatcher) Paths() *PathRegistry { return d.paths }

// Pixels returns the pixel buffer registry.
func (d *Dispatcher) Pixels() *PixelRegistry { return d.pixels }

// Applied returns the number of commands applied since creation.
func (d *Dispatcher) Applied() uint64 { return d.applied }

// Skipped returns the number of commands dropped for unresolved references.
func (d *Dispatcher) Skipped() uint64 { return d.skipped }

// Apply executes batch in order.
func (d *Dispatcher) Apply(batch []Command) {
	for _, c := range batch {
		if d.apply(c) {
			d.applied++
			continue
		}
		d.skipped++
		Logger().Debug("command skipped", zap.String("kind", string(c.Kind())))
	}
}

// apply runs one command and reports false when it referenced something
// that does not exist.
func (d *Dispatcher) apply(c Command) bool {
	s := d.surface
	switch c := c.(type) {
	// state
	case SetFillStyle:
		s.SetFillColor(c.Color)
	case SetStrokeStyle:
		s.SetStrokeColor(c.Color)
	case SetFillGradient:
		s.SetFillGradient(c.Gradient)
	case SetStrokeGradient:
		s.SetStrokeGradient(c.Gradient)
	case SetLineWidth:
		s.SetLineWidth(c.Width)
	case SetLineCap:
		s.SetLineCap(c.Cap)
	case SetLineJoin:
		s.SetLineJoin(c.Join)
	case SetMiterLimit:
		s.SetMiterLimit(c.Limit)
	case SetLineDash:
		s.SetLineDash(c.Segments)
	case SetLineDashOffset:
		s.SetLineDashOffset(c.Offset)
	case SetFont:
		s.SetFont(c.Font)
	case SetTextAlign:
		s.SetTextAlign(c.Align)
	case SetTextBaseline:
		s.SetTextBaseline(c.Baseline)
	case SetGlobalAlpha:
		s.SetGlobalAlpha(c.Alpha)
	case SetCompositeOperation:
		s.SetComposite(c.Operation)
	case SetShadowColor:
		s.SetShadowColor(c.Color)
	case SetShadowBlur:
		s.SetShadowBlur(c.Blur)
	case SetShadowOffset:
		s.SetShadowOffset(c.X, c.Y)
	case SetFilter:
		s.SetFilter(c.Filter)
	case SetImageSmoothing:
		s.SetImageSmoothing(c.Enabled)

	// transform and state stack
	case Save:
		s.Save()
	case Restore:
		s.Restore()
	case Translate:
		s.Translate(c.X, c.Y)
	case Rotate:
		s.Rotate(c.Angle)
	case Scale:
		s.Scale(c.X, c.Y)
	case Transform:
		s.Transform(c.A, c.B, c.C, c.D, c.E, c.F)
	case SetTransform:
		s.SetTransform(c.A, c.B, c.C, c.D, c.E, c.F)
	case ResetTransform:
		s.ResetTransform()

	// current path
	case BeginPath:
		s.BeginPath()
	case ClosePath:
		s.ClosePath()
	case MoveTo:
		s.MoveTo(c.X, c.Y)
	case LineTo:
		s.LineTo(c.X, c.Y)
	case QuadraticCurveTo:
		s.QuadraticTo(c.CPX, c.CPY, c.X, c.Y)
	case BezierCurveTo:
		s.CubicTo(c.CP1X, c.CP1Y, c.CP2X, c.CP2Y, c.X, c.Y)
	case Arc:
		s.Arc(c.X, c.Y, c.Radius, c.StartAngle, c.EndAngle, c.CounterClockwise)
	case Ellipse:
		s.Ellipse(c.X, c.Y, c.RadiusX, c.RadiusY, c.Rotation, c.StartAngle, c.EndAngle, c.CounterClockwise)
	case AddRect:
		s.Rect(c.X, c.Y, c.Width, c.Height)
	case AddRoundRect:
		s.RoundRect(c.X, c.Y, c.Width, c.Height, c.Radius)
	case Fill:
		s.Fill(c.Rule)
	case Stroke:
		s.Stroke()
	case Clip:
		s.Clip(c.Rule)

	// drawing
	case Clear:
		s.Clear(c.Color)
	case Reset:
		s.Reset()
	case ClearRect:
		s.ClearRect(c.X, c.Y, c.Width, c.Height)
	case FillRect:
		s.FillRect(c.X, c.Y, c.Width, c.Height)
	case StrokeRect:
		s.StrokeRect(c.X, c.Y, c.Width, c.Height)
	case FillText:
		s.FillText(c.Text, c.X, c.Y, c.MaxWidth)
	case StrokeText:
		s.StrokeText(c.Text, c.X, c.Y, c.MaxWidth)
	case DrawImage:
		return s.DrawImage(c.Image, c.DX, c.DY, c.DW, c.DH, c.Src)

	// path registry
	case CreatePath:
		if c.ID > 0 {
			return d.paths.CreateWithID(c.ID)
		}
		d.paths.Create()
	case ClonePath:
		if c.ID > 0 {
			return d.paths.CloneWithID(c.ID, c.Source)
		}
		_, ok := d.paths.Clone(c.Source)
		return ok
	case DisposePath:
		d.paths.Dispose(c.ID)
	case PathMoveTo:
		return d.withPath(c.ID, func() { d.paths.MoveTo(c.ID, c.X, c.Y) })
	case PathLineTo:
		return d.withPath(c.ID, func() { d.paths.LineTo(c.ID, c.X, c.Y) })
	case PathQuadraticCurveTo:
		return d.withPath(c.ID, func() { d.paths.QuadraticTo(c.ID, c.CPX, c.CPY, c.X, c.Y) })
	case PathBezierCurveTo:
		return d.withPath(c.ID, func() {
			d.paths.CubicTo(c.ID, c.CP1X, c.CP1Y, c.CP2X, c.CP2Y, c.X, c.Y)
		})
	case PathArc:
		return d.withPath(c.ID, func() {
			d.paths.Arc(c.ID, c.X, c.Y, c.Radius, c.StartAngle, c.EndAngle, c.CounterClockwise)
		})
	case PathEllipse:
		return d.withPath(c.ID, func() {
			d.paths.Ellipse(c.ID, c.X, c.Y, c.RadiusX, c.RadiusY, c.Rotation, c.StartAngle, c.EndAngle, c.CounterClockwise)
		})
	case PathRect:
		return d.withPath(c.ID, func() { d.paths.Rect(c.ID, c.X, c.Y, c.Width, c.Height) })
	case PathRoundRect:
		return d.withPath(c.ID, func() { d.paths.RoundRect(c.ID, c.X, c.Y, c.Width, c.Height, c.Radius) })
	case PathClosePath:
		return d.withPath(c.ID, func() { d.paths.ClosePath(c.ID) })
	case FillPath:
		p, ok := d.paths.Get(c.ID)
		if !ok {
			return false
		}
		s.FillPath(p, c.Rule)
	case StrokePath:
		p, ok := d.paths.Get(c.ID)
		if !ok {
			return false
		}
		s.StrokePath(p)
	case ClipPath:
		p, ok := d.paths.Get(c.ID)
		if !ok {
			return false
		}
		s.ClipPath(p, c.Rule)

	// pixel buffers
	case CreateImageData:
		if c.ID > 0 {
			return d.pixels.AllocWithID(c.ID, c.Width, c.Height)
		}
		d.pixels.Alloc(c.Width, c.Height)
	case GetImageData:
		if c.ID > 0 {
			return d.pixels.CaptureWithID(c.ID, s.Pixmap(), c.X, c.Y, c.Width, c.Height)
		}
		d.pixels.CaptureFromSurface(s.Pixmap(), c.X, c.Y, c.Width, c.Height)
	case CloneImageData:
		if c.ID > 0 {
			return d.pixels.CloneWithID(c.ID, c.Source)
		}
		_, ok := d.pixels.Clone(c.Source)
		return ok
	case SetPixel:
		if _, ok := d.pixels.Get(c.ID); !ok {
			return false
		}
		d.pixels.SetPixel(c.ID, c.X, c.Y, RGBA8{R: c.R, G: c.G, B: c.B, A: c.A})
	case PutImageData:
		if _, ok := d.pixels.Get(c.ID); !ok {
			return false
		}
		d.pixels.WriteToSurface(c.ID, s.Pixmap(), c.DX, c.DY, c.Dirty)
	case DisposeImageData:
		d.pixels.Dispose(c.ID)

	default:
		return false
	}
	return true
}

func (d *Dispatcher) withPath(id int, fn func()) bool {
	if _, ok := d.paths.Get(id); !ok {
		return false
	}
	fn()
	return true
}

// Reset clears the surface and every registry.
func (d *Dispatcher) Reset() {
	d.surface.Reset()
	d.paths.Clear()
	d.pixels.Clear()
}
