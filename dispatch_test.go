package lantern

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
)

func newTestDispatcher(t *testing.T, w, h int) *Dispatcher {
	t.Helper()
	s := NewSurface(w, h)
	t.Cleanup(func() { s.Close() })
	return NewDispatcher(s, NewPathRegistry(), NewPixelRegistry())
}

func pixelAt(d *Dispatcher, x, y int) gg.RGBA {
	return d.Surface().Pixmap().GetPixel(x, y)
}

func TestDispatcherAppliesInOrder(t *testing.T) {
	d := newTestDispatcher(t, 8, 8)
	d.Apply([]Command{
		SetFillStyle{Color: "#ff0000"},
		FillRect{Width: 8, Height: 8},
		SetFillStyle{Color: "#0000ff"},
		FillRect{Width: 4, Height: 8},
	})
	if c := pixelAt(d, 1, 1); c.B < 0.99 || c.R > 0.01 {
		t.Errorf("left pixel = %+v, want blue", c)
	}
	if c := pixelAt(d, 6, 1); c.R < 0.99 || c.B > 0.01 {
		t.Errorf("right pixel = %+v, want red", c)
	}
	if d.Applied() != 4 || d.Skipped() != 0 {
		t.Errorf("applied/skipped = %d/%d, want 4/0", d.Applied(), d.Skipped())
	}
}

func TestDispatcherSkipsUnknownReferences(t *testing.T) {
	d := newTestDispatcher(t, 4, 4)
	d.Apply([]Command{
		PathLineTo{ID: 9, X: 1, Y: 1},
		FillPath{ID: 9},
		StrokePath{ID: 9},
		ClipPath{ID: 9},
		ClonePath{ID: 10, Source: 9},
		SetPixel{ID: 4, A: 255},
		PutImageData{ID: 4},
		CloneImageData{ID: 5, Source: 4},
		DrawImage{Image: "missing"},
		DisposePath{ID: 9},
		DisposeImageData{ID: 4},
	})
	if d.Skipped() != 9 {
		t.Errorf("skipped = %d, want 9", d.Skipped())
	}
	if d.Applied() != 2 {
		t.Errorf("applied = %d, want 2 (disposals)", d.Applied())
	}
}

func TestDispatcherPathRegistry(t *testing.T) {
	d := newTestDispatcher(t, 10, 10)
	d.Apply([]Command{
		CreatePath{ID: 1},
		PathRect{ID: 1, X: 0, Y: 0, Width: 4, Height: 4},
		ClonePath{ID: 2, Source: 1},
		PathRect{ID: 2, X: 6, Y: 6, Width: 4, Height: 4},
		SetFillStyle{Color: "lime"},
		FillPath{ID: 1},
	})
	if c := pixelAt(d, 2, 2); c.G < 0.99 {
		t.Errorf("path 1 not filled: %+v", c)
	}
	if c := pixelAt(d, 8, 8); c.A != 0 {
		t.Errorf("clone mutation leaked into path 1: %+v", c)
	}
	d.Apply([]Command{FillPath{ID: 2}})
	if c := pixelAt(d, 8, 8); c.G < 0.99 {
		t.Errorf("path 2 not filled: %+v", c)
	}
}

func TestDispatcherStaleScriptIDIsSkipped(t *testing.T) {
	d := newTestDispatcher(t, 4, 4)
	d.Apply([]Command{CreatePath{ID: 3}, CreatePath{ID: 2}})
	if d.Skipped() != 1 {
		t.Errorf("skipped = %d, want 1 for a non-increasing id", d.Skipped())
	}
	if d.Paths().Len() != 1 {
		t.Errorf("paths = %d, want 1", d.Paths().Len())
	}
}

func TestDispatcherImageData(t *testing.T) {
	d := newTestDispatcher(t, 4, 4)
	d.Apply([]Command{
		SetFillStyle{Color: "#00ff00"},
		FillRect{Width: 2, Height: 2},
		GetImageData{ID: 1, X: 0, Y: 0, Width: 4, Height: 4},
		CreateImageData{ID: 2, Width: 1, Height: 1},
		SetPixel{ID: 2, X: 0, Y: 0, R: 255, A: 255},
		PutImageData{ID: 2, DX: 3, DY: 3},
	})
	if got := d.Pixels().GetPixel(1, 1, 1); got != (RGBA8{G: 255, A: 255}) {
		t.Errorf("captured pixel = %+v, want opaque green", got)
	}
	if got := d.Pixels().GetPixel(1, 3, 3); got != (RGBA8{}) {
		t.Errorf("captured empty pixel = %+v", got)
	}
	if c := pixelAt(d, 3, 3); c.R < 0.99 || c.A < 0.99 {
		t.Errorf("put pixel = %+v, want opaque red", c)
	}
}

func TestDispatcherDrawImage(t *testing.T) {
	d := newTestDispatcher(t, 8, 8)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			img.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	d.Surface().RegisterImage("tile", img)
	d.Apply([]Command{DrawImage{Image: "tile", DX: 4, DY: 4, DW: 4, DH: 4}})
	if d.Skipped() != 0 {
		t.Fatalf("registered image skipped")
	}
	if c := pixelAt(d, 6, 6); c.B < 0.9 {
		t.Errorf("drawn pixel = %+v, want blue", c)
	}
	if c := pixelAt(d, 1, 1); c.A != 0 {
		t.Errorf("pixel outside image = %+v", c)
	}
}
