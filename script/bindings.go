package script

import (
	"context"

	"github.com/dop251/goja"

	"github.com/phanxgames/lantern"
)

// getPixel returns [r, g, b, a] of buffer id as of the last applied frame.
func (h *Host) getPixel(id, x, y int) []int {
	c := h.rt.Pixels.GetPixel(id, x, y)
	return []int{int(c.R), int(c.G), int(c.B), int(c.A)}
}

// imageDataSize returns {width, height} of buffer id, or null when the id
// is unknown or the buffer was created this frame.
func (h *Host) imageDataSize(id int) goja.Value {
	d, ok := h.rt.Pixels.Get(id)
	if !ok {
		return goja.Null()
	}
	return h.vm.ToValue(map[string]int{"width": d.Width, "height": d.Height})
}

// inputObject exposes live input queries. Inside a tick they agree with
// the frame's input snapshot.
func (h *Host) inputObject() *goja.Object {
	in := h.rt.Input
	o := h.vm.NewObject()
	_ = o.Set("isKeyDown", func(code string) bool { return in.IsKeyDown(lantern.NormalizeKeyCode(code)) })
	_ = o.Set("isKeyPressed", func(code string) bool { return in.IsKeyPressed(lantern.NormalizeKeyCode(code)) })
	_ = o.Set("keysDown", in.KeysDown)
	_ = o.Set("keysPressed", in.KeysPressed)
	_ = o.Set("mouse", func() map[string]float64 {
		x, y := in.MousePosition()
		return map[string]float64{"x": x, "y": y}
	})
	_ = o.Set("wheel", func() map[string]float64 {
		dx, dy := in.Wheel()
		return map[string]float64{"x": dx, "y": dy}
	})
	_ = o.Set("isMouseDown", func(button int) bool { return in.IsMouseButtonDown(button) })
	_ = o.Set("isMousePressed", func(button int) bool { return in.IsMouseButtonPressed(button) })
	_ = o.Set("gamepad", func(i int) lantern.GamepadState { return in.Gamepad(i) })
	return o
}

// assetsObject exposes resolution, scanning and loading. Loading runs
// synchronously and throws on failure.
func (h *Host) assetsObject() *goja.Object {
	assets := h.rt.Assets
	o := h.vm.NewObject()
	_ = o.Set("resolve", assets.Resolve)
	_ = o.Set("scan", func(call goja.FunctionCall) goja.Value {
		var opts []lantern.ScanOption
		if p := call.Argument(1); !goja.IsUndefined(p) && !goja.IsNull(p) {
			opts = append(opts, lantern.WithPattern(p.String()))
		}
		if r := call.Argument(2); !goja.IsUndefined(r) {
			opts = append(opts, lantern.WithRecursive(r.ToBoolean()))
		}
		files, err := assets.ScanDirectory(call.Argument(0).String(), opts...)
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		return h.vm.ToValue(files)
	})
	_ = o.Set("load", func(name, path string) {
		def := lantern.AssetDefinition{Name: name, Path: path}
		if err := h.rt.Preload(context.Background(), []lantern.AssetDefinition{def}); err != nil {
			panic(h.vm.NewGoError(err))
		}
	})
	_ = o.Set("loadManifest", func(path string) {
		if err := h.rt.PreloadManifest(context.Background(), path); err != nil {
			panic(h.vm.NewGoError(err))
		}
	})
	return o
}
