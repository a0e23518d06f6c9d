package lantern

import "github.com/gogpu/gg"

// ImageData is a straight-alpha RGBA pixel buffer of Width*Height*4 bytes.
type ImageData struct {
	Width, Height int
	Data          []byte
}

// NewImageData allocates a transparent buffer. Non-positive sizes yield an
// empty buffer.
func NewImageData(w, h int) *ImageData {
	if w <= 0 || h <= 0 {
		return &ImageData{}
	}
	return &ImageData{Width: w, Height: h, Data: make([]byte, w*h*4)}
}

func (d *ImageData) offset(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0, false
	}
	return (y*d.Width + x) * 4, true
}

func (d *ImageData) clone() *ImageData {
	c := &ImageData{Width: d.Width, Height: d.Height, Data: make([]byte, len(d.Data))}
	copy(c.Data, d.Data)
	return c
}

// PixelRegistry owns pixel buffers referenced by id from the script context.
type PixelRegistry struct {
	reg *registry[*ImageData]
}

// NewPixelRegistry creates an empty pixel registry.
func NewPixelRegistry() *PixelRegistry {
	return &PixelRegistry{reg: newRegistry[*ImageData]()}
}

// Alloc creates a transparent w x h buffer and returns its id.
func (r *PixelRegistry) Alloc(w, h int) int {
	return r.reg.insert(NewImageData(w, h))
}

// AllocWithID creates a buffer under a script-allocated id.
func (r *PixelRegistry) AllocWithID(id, w, h int) bool {
	return r.reg.adopt(id, NewImageData(w, h))
}

// CaptureFromSurface copies the region (x, y, w, h) of pm into a new buffer.
// Pixels outside pm read as transparent.
func (r *PixelRegistry) CaptureFromSurface(pm *gg.Pixmap, x, y, w, h int) int {
	return r.reg.insert(capture(pm, x, y, w, h))
}

// CaptureWithID is CaptureFromSurface under a script-allocated id.
func (r *PixelRegistry) CaptureWithID(id int, pm *gg.Pixmap, x, y, w, h int) bool {
	return r.reg.adopt(id, capture(pm, x, y, w, h))
}

func capture(pm *gg.Pixmap, x, y, w, h int) *ImageData {
	d := NewImageData(w, h)
	if pm == nil || len(d.Data) == 0 {
		return d
	}
	src := pm.Data()
	pw, ph := pm.Width(), pm.Height()
	for row := 0; row < h; row++ {
		sy := y + row
		if sy < 0 || sy >= ph {
			continue
		}
		x0, x1 := max(x, 0), min(x+w, pw)
		if x1 <= x0 {
			continue
		}
		unpremultiply(d.Data[(row*w+(x0-x))*4:], src[(sy*pw+x0)*4:(sy*pw+x1)*4])
	}
	return d
}

// unpremultiply converts premultiplied surface pixels in src to straight
// alpha in dst.
func unpremultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		r, g, b, a := src[i], src[i+1], src[i+2], src[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
	}
}

// premultiply converts straight-alpha pixels in src for the surface.
func premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := int(src[i+3])
		dst[i] = uint8(int(src[i]) * a / 255)
		dst[i+1] = uint8(int(src[i+1]) * a / 255)
		dst[i+2] = uint8(int(src[i+2]) * a / 255)
		dst[i+3] = src[i+3]
	}
}

// Clone deep-copies id into a new buffer and returns the new id.
func (r *PixelRegistry) Clone(id int) (int, bool) {
	d, ok := r.reg.get(id)
	if !ok {
		return 0, false
	}
	return r.reg.insert(d.clone()), true
}

// CloneWithID deep-copies src under a script-allocated id.
func (r *PixelRegistry) CloneWithID(id, src int) bool {
	d, ok := r.reg.get(src)
	if !ok {
		return false
	}
	return r.reg.adopt(id, d.clone())
}

// Get returns the buffer for id.
func (r *PixelRegistry) Get(id int) (*ImageData, bool) {
	return r.reg.get(id)
}

// GetPixel reads one pixel. Unknown ids and out-of-bounds coordinates read
// as (0, 0, 0, 0).
func (r *PixelRegistry) GetPixel(id, x, y int) RGBA8 {
	d, ok := r.reg.get(id)
	if !ok {
		return RGBA8{}
	}
	i, ok := d.offset(x, y)
	if !ok {
		return RGBA8{}
	}
	return RGBA8{R: d.Data[i], G: d.Data[i+1], B: d.Data[i+2], A: d.Data[i+3]}
}

// SetPixel writes one pixel. Unknown ids and out-of-bounds writes are ignored.
func (r *PixelRegistry) SetPixel(id, x, y int, c RGBA8) {
	d, ok := r.reg.get(id)
	if !ok {
		return
	}
	i, ok := d.offset(x, y)
	if !ok {
		return
	}
	d.Data[i], d.Data[i+1], d.Data[i+2], d.Data[i+3] = c.R, c.G, c.B, c.A
}

// WriteToSurface copies buffer id onto pm with its top-left at (dx, dy).
// When dirty is non-nil only that sub-rectangle of the buffer is written.
// The transform and clip are ignored, as with putImageData.
func (r *PixelRegistry) WriteToSurface(id int, pm *gg.Pixmap, dx, dy int, dirty *Rect) {
	d, ok := r.reg.get(id)
	if !ok || pm == nil || len(d.Data) == 0 {
		return
	}
	sx0, sy0, sx1, sy1 := 0, 0, d.Width, d.Height
	if dirty != nil {
		sx0 = max(sx0, int(dirty.X))
		sy0 = max(sy0, int(dirty.Y))
		sx1 = min(sx1, int(dirty.X+dirty.Width))
		sy1 = min(sy1, int(dirty.Y+dirty.Height))
	}
	dst := pm.Data()
	pw, ph := pm.Width(), pm.Height()
	for sy := sy0; sy < sy1; sy++ {
		ty := dy + sy
		if ty < 0 || ty >= ph {
			continue
		}
		a, b := max(sx0, -dx), min(sx1, pw-dx)
		if b <= a {
			continue
		}
		premultiply(dst[(ty*pw+dx+a)*4:(ty*pw+dx+b)*4], d.Data[(sy*d.Width+a)*4:(sy*d.Width+b)*4])
	}
}

// Dispose releases id. Disposing twice is harmless.
func (r *PixelRegistry) Dispose(id int) {
	if d, ok := r.reg.remove(id); ok {
		d.Data = nil
	}
}

// Len returns the number of live buffers.
func (r *PixelRegistry) Len() int {
	return r.reg.len()
}

// Clear disposes every buffer.
func (r *PixelRegistry) Clear() {
	r.reg.clear()
}
