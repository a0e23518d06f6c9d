package lantern

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var ebitenMouseButtons = [...]struct {
	host ebiten.MouseButton
	id   int
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	{ebiten.MouseButtonRight, MouseButtonRight},
}

// EbitenInput polls ebiten's input state. It must be polled from inside
// ebiten's Update callback.
type EbitenInput struct {
	keys     []ebiten.Key
	pads     []ebiten.GamepadID
	readings []GamepadReading
	focused  bool
}

// NewEbitenInput creates an ebiten-backed input source.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{focused: true}
}

// Poll feeds this frame's transitions into in. Losing window focus resets
// in so keys released elsewhere do not stay held.
func (e *EbitenInput) Poll(in *Input) {
	if !ebiten.IsFocused() {
		if e.focused {
			in.Reset()
			e.focused = false
		}
		return
	}
	e.focused = true

	e.keys = inpututil.AppendJustPressedKeys(e.keys[:0])
	for _, k := range e.keys {
		in.KeyDown(NormalizeKeyCode(k.String()))
	}
	e.keys = inpututil.AppendJustReleasedKeys(e.keys[:0])
	for _, k := range e.keys {
		in.KeyUp(NormalizeKeyCode(k.String()))
	}

	mx, my := ebiten.CursorPosition()
	in.MouseMove(float64(mx), float64(my))
	for _, b := range ebitenMouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.host) {
			in.MouseDown(b.id)
		}
		if inpututil.IsMouseButtonJustReleased(b.host) {
			in.MouseUp(b.id)
		}
	}
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		in.MouseWheel(wx, wy)
	}

	in.PollGamepads(e.pollGamepads())
}

func (e *EbitenInput) pollGamepads() []GamepadReading {
	e.pads = ebiten.AppendGamepadIDs(e.pads[:0])
	n := min(len(e.pads), MaxGamepads)
	if cap(e.readings) < MaxGamepads {
		e.readings = make([]GamepadReading, 0, MaxGamepads)
	}
	e.readings = e.readings[:n]
	for i, id := range e.pads[:n] {
		readGamepad(id, &e.readings[i])
	}
	return e.readings
}

// readGamepad samples one gamepad into r, reusing r's slices. The standard
// layout is preferred so button indices mean the same thing across devices.
func readGamepad(id ebiten.GamepadID, r *GamepadReading) {
	r.Connected = true
	r.ID = ebiten.GamepadName(id)
	if ebiten.IsStandardGamepadLayoutAvailable(id) {
		r.Buttons = resize(r.Buttons, int(ebiten.StandardGamepadButtonMax)+1)
		for b := range r.Buttons {
			r.Buttons[b] = ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButton(b))
		}
		r.Axes = resize(r.Axes, int(ebiten.StandardGamepadAxisMax)+1)
		for a := range r.Axes {
			r.Axes[a] = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxis(a))
		}
		return
	}
	r.Buttons = resize(r.Buttons, ebiten.GamepadButtonCount(id))
	for b := range r.Buttons {
		r.Buttons[b] = ebiten.IsGamepadButtonPressed(id, ebiten.GamepadButton(b))
	}
	r.Axes = resize(r.Axes, ebiten.GamepadAxisCount(id))
	for a := range r.Axes {
		r.Axes[a] = ebiten.GamepadAxisValue(id, ebiten.GamepadAxisType(a))
	}
}
