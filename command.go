package lantern

// CommandKind is the wire tag of a command, e.g. "fillRect".
type CommandKind string

// Command is one drawing instruction emitted by the script context. The set of
// implementations is closed: every variant is a plain-data struct declared in
// this file, and the Dispatcher switches over all of them.
type Command interface {
	Kind() CommandKind
}

// Command kinds.
const (
	KindSetFillStyle          CommandKind = "setFillStyle"
	KindSetStrokeStyle        CommandKind = "setStrokeStyle"
	KindSetFillGradient       CommandKind = "setFillGradient"
	KindSetStrokeGradient     CommandKind = "setStrokeGradient"
	KindSetLineWidth          CommandKind = "setLineWidth"
	KindSetLineCap            CommandKind = "setLineCap"
	KindSetLineJoin           CommandKind = "setLineJoin"
	KindSetMiterLimit         CommandKind = "setMiterLimit"
	KindSetLineDash           CommandKind = "setLineDash"
	KindSetLineDashOffset     CommandKind = "setLineDashOffset"
	KindSetFont               CommandKind = "setFont"
	KindSetTextAlign          CommandKind = "setTextAlign"
	KindSetTextBaseline       CommandKind = "setTextBaseline"
	KindSetGlobalAlpha        CommandKind = "setGlobalAlpha"
	KindSetCompositeOperation CommandKind = "setCompositeOperation"
	KindSetShadowColor        CommandKind = "setShadowColor"
	KindSetShadowBlur         CommandKind = "setShadowBlur"
	KindSetShadowOffset       CommandKind = "setShadowOffset"
	KindSetFilter             CommandKind = "setFilter"
	KindSetImageSmoothing     CommandKind = "setImageSmoothing"

	KindSave           CommandKind = "save"
	KindRestore        CommandKind = "restore"
	KindTranslate      CommandKind = "translate"
	KindRotate         CommandKind = "rotate"
	KindScale          CommandKind = "scale"
	KindTransform      CommandKind = "transform"
	KindSetTransform   CommandKind = "setTransform"
	KindResetTransform CommandKind = "resetTransform"

	KindBeginPath        CommandKind = "beginPath"
	KindClosePath        CommandKind = "closePath"
	KindMoveTo           CommandKind = "moveTo"
	KindLineTo           CommandKind = "lineTo"
	KindQuadraticCurveTo CommandKind = "quadraticCurveTo"
	KindBezierCurveTo    CommandKind = "bezierCurveTo"
	KindArc              CommandKind = "arc"
	KindEllipse          CommandKind = "ellipse"
	KindRect             CommandKind = "rect"
	KindRoundRect        CommandKind = "roundRect"
	KindFill             CommandKind = "fill"
	KindStroke           CommandKind = "stroke"
	KindClip             CommandKind = "clip"

	KindClear      CommandKind = "clear"
	KindReset      CommandKind = "reset"
	KindClearRect  CommandKind = "clearRect"
	KindFillRect   CommandKind = "fillRect"
	KindStrokeRect CommandKind = "strokeRect"
	KindFillText   CommandKind = "fillText"
	KindStrokeText CommandKind = "strokeText"
	KindDrawImage  CommandKind = "drawImage"

	KindCreatePath           CommandKind = "createPath"
	KindClonePath            CommandKind = "clonePath"
	KindDisposePath          CommandKind = "disposePath"
	KindPathMoveTo           CommandKind = "pathMoveTo"
	KindPathLineTo           CommandKind = "pathLineTo"
	KindPathQuadraticCurveTo CommandKind = "pathQuadraticCurveTo"
	KindPathBezierCurveTo    CommandKind = "pathBezierCurveTo"
	KindPathArc              CommandKind = "pathArc"
	KindPathEllipse          CommandKind = "pathEllipse"
	KindPathRect             CommandKind = "pathRect"
	KindPathRoundRect        CommandKind = "pathRoundRect"
	KindPathClosePath        CommandKind = "pathClosePath"
	KindFillPath             CommandKind = "fillPath"
	KindStrokePath           CommandKind = "strokePath"
	KindClipPath             CommandKind = "clipPath"

	KindCreateImageData  CommandKind = "createImageData"
	KindGetImageData     CommandKind = "getImageData"
	KindCloneImageData   CommandKind = "cloneImageData"
	KindSetPixel         CommandKind = "setPixel"
	KindPutImageData     CommandKind = "putImageData"
	KindDisposeImageData CommandKind = "disposeImageData"
)

// --- State setters ---

// SetFillStyle sets a CSS color as the fill style.
type SetFillStyle struct {
	Color string `json:"color"`
}

// SetStrokeStyle sets a CSS color as the stroke style.
type SetStrokeStyle struct {
	Color string `json:"color"`
}

// SetFillGradient sets a gradient as the fill style.
type SetFillGradient struct {
	Gradient GradientDescriptor `json:"gradient"`
}

// SetStrokeGradient sets a gradient as the stroke style.
type SetStrokeGradient struct {
	Gradient GradientDescriptor `json:"gradient"`
}

type SetLineWidth struct {
	Width float64 `json:"width"`
}

// SetLineCap accepts "butt", "round" or "square".
type SetLineCap struct {
	Cap string `json:"cap"`
}

// SetLineJoin accepts "miter", "round" or "bevel".
type SetLineJoin struct {
	Join string `json:"join"`
}

type SetMiterLimit struct {
	Limit float64 `json:"limit"`
}

// SetLineDash sets the dash pattern. An empty list restores solid lines.
type SetLineDash struct {
	Segments []float64 `json:"segments"`
}

type SetLineDashOffset struct {
	Offset float64 `json:"offset"`
}

// SetFont takes a CSS font shorthand such as "bold 16px monospace".
type SetFont struct {
	Font string `json:"font"`
}

type SetTextAlign struct {
	Align string `json:"align"`
}

type SetTextBaseline struct {
	Baseline string `json:"baseline"`
}

type SetGlobalAlpha struct {
	Alpha float64 `json:"alpha"`
}

// SetCompositeOperation takes a canvas globalCompositeOperation name.
type SetCompositeOperation struct {
	Operation string `json:"operation"`
}

type SetShadowColor struct {
	Color string `json:"color"`
}

type SetShadowBlur struct {
	Blur float64 `json:"blur"`
}

type SetShadowOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SetFilter stores a CSS filter string. It is reported back but not rendered.
type SetFilter struct {
	Filter string `json:"filter"`
}

type SetImageSmoothing struct {
	Enabled bool `json:"enabled"`
}

// --- Transform and state stack ---

// Save pushes the drawing state (styles, transform, clip).
type Save struct{}

// Restore pops the drawing state. A no-op when nothing was saved.
type Restore struct{}

type Translate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rotate rotates by Angle radians, clockwise in screen space.
type Rotate struct {
	Angle float64 `json:"angle"`
}

type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform multiplies the current transform by the canvas-style matrix
// [a c e; b d f].
type Transform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// SetTransform replaces the current transform.
type SetTransform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

type ResetTransform struct{}

// --- Current path ---

type BeginPath struct{}

type ClosePath struct{}

type MoveTo struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LineTo struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type QuadraticCurveTo struct {
	CPX float64 `json:"cpx"`
	CPY float64 `json:"cpy"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

type BezierCurveTo struct {
	CP1X float64 `json:"cp1x"`
	CP1Y float64 `json:"cp1y"`
	CP2X float64 `json:"cp2x"`
	CP2Y float64 `json:"cp2y"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Arc appends a circular arc. Angles are in radians.
type Arc struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Radius           float64 `json:"radius"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	CounterClockwise bool    `json:"counterclockwise,omitempty"`
}

type Ellipse struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	RadiusX          float64 `json:"radiusX"`
	RadiusY          float64 `json:"radiusY"`
	Rotation         float64 `json:"rotation"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	CounterClockwise bool    `json:"counterclockwise,omitempty"`
}

// AddRect appends a closed rectangle subpath ("rect" on the wire).
type AddRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AddRoundRect appends a rounded rectangle subpath ("roundRect" on the wire).
type AddRoundRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// Fill fills the current path. Rule is "nonzero" (default) or "evenodd".
type Fill struct {
	Rule string `json:"rule,omitempty"`
}

type Stroke struct{}

// Clip intersects the clip region with the current path.
type Clip struct {
	Rule string `json:"rule,omitempty"`
}

// --- Draw ---

// Clear wipes the whole surface to Color (transparent when empty) and drops
// every cached gradient. Drawing state is kept.
type Clear struct {
	Color string `json:"color,omitempty"`
}

// Reset clears the surface and restores the default drawing state, dropping
// the save stack.
type Reset struct{}

type ClearRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type FillRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type StrokeRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FillText draws Text with the fill style. MaxWidth > 0 scales the text down
// horizontally to fit.
type FillText struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	MaxWidth float64 `json:"maxWidth,omitempty"`
}

// StrokeText draws Text with the stroke style.
type StrokeText struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	MaxWidth float64 `json:"maxWidth,omitempty"`
}

// DrawImage draws a registered image. Zero DW/DH use the source size; Src
// selects a source sub-rectangle.
type DrawImage struct {
	Image string  `json:"image"`
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
	DW    float64 `json:"dw,omitempty"`
	DH    float64 `json:"dh,omitempty"`
	Src   *Rect   `json:"src,omitempty"`
}

// --- Path registry ---

// CreatePath creates an empty path under a script-allocated ID.
type CreatePath struct {
	ID int `json:"pathId"`
}

// ClonePath deep-copies Source into a new path under ID.
type ClonePath struct {
	ID     int `json:"pathId"`
	Source int `json:"sourceId"`
}

type DisposePath struct {
	ID int `json:"pathId"`
}

type PathMoveTo struct {
	ID int     `json:"pathId"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type PathLineTo struct {
	ID int     `json:"pathId"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type PathQuadraticCurveTo struct {
	ID  int     `json:"pathId"`
	CPX float64 `json:"cpx"`
	CPY float64 `json:"cpy"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

type PathBezierCurveTo struct {
	ID   int     `json:"pathId"`
	CP1X float64 `json:"cp1x"`
	CP1Y float64 `json:"cp1y"`
	CP2X float64 `json:"cp2x"`
	CP2Y float64 `json:"cp2y"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type PathArc struct {
	ID               int     `json:"pathId"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Radius           float64 `json:"radius"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	CounterClockwise bool    `json:"counterclockwise,omitempty"`
}

type PathEllipse struct {
	ID               int     `json:"pathId"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	RadiusX          float64 `json:"radiusX"`
	RadiusY          float64 `json:"radiusY"`
	Rotation         float64 `json:"rotation"`
	StartAngle       float64 `json:"startAngle"`
	EndAngle         float64 `json:"endAngle"`
	CounterClockwise bool    `json:"counterclockwise,omitempty"`
}

type PathRect struct {
	ID     int     `json:"pathId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PathRoundRect struct {
	ID     int     `json:"pathId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

type PathClosePath struct {
	ID int `json:"pathId"`
}

// FillPath fills a registered path under the current transform.
type FillPath struct {
	ID   int    `json:"pathId"`
	Rule string `json:"rule,omitempty"`
}

type StrokePath struct {
	ID int `json:"pathId"`
}

type ClipPath struct {
	ID   int    `json:"pathId"`
	Rule string `json:"rule,omitempty"`
}

// --- Pixel buffers ---

// CreateImageData allocates a transparent Width x Height buffer under ID.
type CreateImageData struct {
	ID     int `json:"imageDataId"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetImageData snapshots a surface region into a new buffer under ID.
type GetImageData struct {
	ID     int `json:"imageDataId"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CloneImageData struct {
	ID     int `json:"imageDataId"`
	Source int `json:"sourceId"`
}

type SetPixel struct {
	ID int   `json:"imageDataId"`
	X  int   `json:"x"`
	Y  int   `json:"y"`
	R  uint8 `json:"r"`
	G  uint8 `json:"g"`
	B  uint8 `json:"b"`
	A  uint8 `json:"a"`
}

// PutImageData writes a buffer to the surface at (DX, DY), ignoring the
// transform. Dirty restricts the write to a sub-rectangle of the buffer.
type PutImageData struct {
	ID    int   `json:"imageDataId"`
	DX    int   `json:"dx"`
	DY    int   `json:"dy"`
	Dirty *Rect `json:"dirty,omitempty"`
}

type DisposeImageData struct {
	ID int `json:"imageDataId"`
}

// --- Kind implementations ---
func (SetFillStyle) Kind() CommandKind { return KindSetFillStyle }
func (SetStrokeStyle) Kind() CommandKind { return KindSetStrokeStyle }
func (SetFillGradient) Kind() CommandKind { return KindSetFillGradient }
func (SetStrokeGradient) Kind() CommandKind { return KindSetStrokeGradient }
func (SetLineWidth) Kind() CommandKind { return KindSetLineWidth }
func (SetLineCap) Kind() CommandKind { return KindSetLineCap }
func (SetLineJoin) Kind() CommandKind { return KindSetLineJoin }
func (SetMiterLimit) Kind() CommandKind { return KindSetMiterLimit }
func (SetLineDash) Kind() CommandKind { return KindSetLineDash }
func (SetLineDashOffset) Kind() CommandKind { return KindSetLineDashOffset }
func (SetFont) Kind() CommandKind { return KindSetFont }
func (SetTextAlign) Kind() CommandKind { return KindSetTextAlign }
func (SetTextBaseline) Kind() CommandKind { return KindSetTextBaseline }
func (SetGlobalAlpha) Kind() CommandKind { return KindSetGlobalAlpha }
func (SetCompositeOperation) Kind() CommandKind { return KindSetCompositeOperation }
func (SetShadowColor) Kind() CommandKind { return KindSetShadowColor }
func (SetShadowBlur) Kind() CommandKind { return KindSetShadowBlur }
func (SetShadowOffset) Kind() CommandKind { return KindSetShadowOffset }
func (SetFilter) Kind() CommandKind { return KindSetFilter }
func (SetImageSmoothing) Kind() CommandKind { return KindSetImageSmoothing }
func (Save) Kind() CommandKind { return KindSave }
func (Restore) Kind() CommandKind { return KindRestore }
func (Translate) Kind() CommandKind { return KindTranslate }
func (Rotate) Kind() CommandKind { return KindRotate }
func (Scale) Kind() CommandKind { return KindScale }
func (Transform) Kind() CommandKind { return KindTransform }
func (SetTransform) Kind() CommandKind { return KindSetTransform }
func (ResetTransform) Kind() CommandKind { return KindResetTransform }
func (BeginPath) Kind() CommandKind { return KindBeginPath }
func (ClosePath) Kind() CommandKind { return KindClosePath }
func (MoveTo) Kind() CommandKind { return KindMoveTo }
func (LineTo) Kind() CommandKind { return KindLineTo }
func (QuadraticCurveTo) Kind() CommandKind { return KindQuadraticCurveTo }
func (BezierCurveTo) Kind() CommandKind { return KindBezierCurveTo }
func (Arc) Kind() CommandKind { return KindArc }
func (Ellipse) Kind() CommandKind { return KindEllipse }
func (AddRect) Kind() CommandKind { return KindRect }
func (AddRoundRect) Kind() CommandKind { return KindRoundRect }
func (Fill) Kind() CommandKind { return KindFill }
func (Stroke) Kind() CommandKind { return KindStroke }
func (Clip) Kind() CommandKind { return KindClip }
func (Clear) Kind() CommandKind { return KindClear }
func (Reset) Kind() CommandKind { return KindReset }
func (ClearRect) Kind() CommandKind { return KindClearRect }
func (FillRect) Kind() CommandKind { return KindFillRect }
func (StrokeRect) Kind() CommandKind { return KindStrokeRect }
func (FillText) Kind() CommandKind { return KindFillText }
func (StrokeText) Kind() CommandKind { return KindStrokeText }
func (DrawImage) Kind() CommandKind { return KindDrawImage }
func (CreatePath) Kind() CommandKind { return KindCreatePath }
func (ClonePath) Kind() CommandKind { return KindClonePath }
func (DisposePath) Kind() CommandKind { return KindDisposePath }
func (PathMoveTo) Kind() CommandKind { return KindPathMoveTo }
func (PathLineTo) Kind() CommandKind { return KindPathLineTo }
func (PathQuadraticCurveTo) Kind() CommandKind { return KindPathQuadraticCurveTo }
func (PathBezierCurveTo) Kind() CommandKind { return KindPathBezierCurveTo }
func (PathArc) Kind() CommandKind { return KindPathArc }
func (PathEllipse) Kind() CommandKind { return KindPathEllipse }
func (PathRect) Kind() CommandKind { return KindPathRect }
func (PathRoundRect) Kind() CommandKind { return KindPathRoundRect }
func (PathClosePath) Kind() CommandKind { return KindPathClosePath }
func (FillPath) Kind() CommandKind { return KindFillPath }
func (StrokePath) Kind() CommandKind { return KindStrokePath }
func (ClipPath) Kind() CommandKind { return KindClipPath }
func (CreateImageData) Kind() CommandKind { return KindCreateImageData }
func (GetImageData) Kind() CommandKind { return KindGetImageData }
func (CloneImageData) Kind() CommandKind { return KindCloneImageData }
func (SetPixel) Kind() CommandKind { return KindSetPixel }
func (PutImageData) Kind() CommandKind { return KindPutImageData }
func (DisposeImageData) Kind() CommandKind { return KindDisposeImageData }
