package lantern

import (
	"slices"
	"strings"
)

// MaxGamepads is the number of gamepad slots tracked by Input.
const MaxGamepads = 4

// GamepadReading is one frame's raw sample of a gamepad slot, as polled from
// the host. Gamepads emit no transition events; Input diffs consecutive
// readings to find presses.
type GamepadReading struct {
	Connected bool
	ID        string
	Buttons   []bool
	Axes      []float64
}

// GamepadState is the per-frame view of one gamepad slot.
type GamepadState struct {
	Connected          bool      `json:"connected"`
	ID                 string    `json:"id"`
	Buttons            []bool    `json:"buttons"`
	ButtonsJustPressed []bool    `json:"buttonsJustPressed"`
	Axes               []float64 `json:"axes"`
}

// InputSnapshot is the input state pushed to the script each frame. Slices
// are shared with Input's caches and must be treated as read-only.
type InputSnapshot struct {
	KeysDown            []string                  `json:"keysDown"`
	KeysPressed         []string                  `json:"keysPressed"`
	MouseX              float64                   `json:"mouseX"`
	MouseY              float64                   `json:"mouseY"`
	MouseButtonsDown    []int                     `json:"mouseButtonsDown"`
	MouseButtonsPressed []int                     `json:"mouseButtonsPressed"`
	WheelX              float64                   `json:"wheelX"`
	WheelY              float64                   `json:"wheelY"`
	Gamepads            [MaxGamepads]GamepadState `json:"gamepads"`
}

// InputSource feeds host input into an Input once per frame.
type InputSource interface {
	Poll(in *Input)
}

// dirty bits for the cached views.
const (
	dirtyKeysDown uint8 = 1 << iota
	dirtyKeysPressed
	dirtyButtonsDown
	dirtyButtonsPressed
)

// per-pad dirty bits.
const (
	padDirtyButtons uint8 = 1 << iota
	padDirtyPressed
	padDirtyAxes
)

// padState holds one slot. buttons, pressed and axes are reused across
// polls; the *View slices handed out by Gamepad are rebuilt only when the
// matching dirty bit is set.
type padState struct {
	connected bool
	id        string
	buttons   []bool
	pressed   []bool
	axes      []float64

	dirty       uint8
	buttonsView []bool
	pressedView []bool
	axesView    []float64
}

func (p *padState) poll(r GamepadReading) {
	p.connected = true
	p.id = r.ID

	if len(p.pressed) != len(r.Buttons) {
		p.pressed = resize(p.pressed, len(r.Buttons))
		p.dirty |= padDirtyPressed
	}
	for b, down := range r.Buttons {
		edge := down && !(b < len(p.buttons) && p.buttons[b])
		if p.pressed[b] != edge {
			p.pressed[b] = edge
			p.dirty |= padDirtyPressed
		}
	}
	var changed bool
	if p.buttons, changed = syncInto(p.buttons, r.Buttons); changed {
		p.dirty |= padDirtyButtons
	}
	if p.axes, changed = syncInto(p.axes, r.Axes); changed {
		p.dirty |= padDirtyAxes
	}
}

func (p *padState) refresh() {
	if p.dirty&padDirtyButtons != 0 {
		p.buttonsView = slices.Clone(p.buttons)
	}
	if p.dirty&padDirtyPressed != 0 {
		p.pressedView = slices.Clone(p.pressed)
	}
	if p.dirty&padDirtyAxes != 0 {
		p.axesView = slices.Clone(p.axes)
	}
	p.dirty = 0
}

// syncInto copies src into dst, reusing dst's storage, and reports whether
// anything differed.
func syncInto[T comparable](dst, src []T) ([]T, bool) {
	changed := len(dst) != len(src)
	dst = resize(dst, len(src))
	for i, v := range src {
		if dst[i] != v {
			dst[i] = v
			changed = true
		}
	}
	return dst, changed
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}

// Input tracks keyboard, mouse and gamepad state. The authoritative state is
// kept in sets; the sorted slices returned by the query methods are cached
// and rebuilt only after a mutation.
//
// Keys are identified by their physical key code ("KeyA", "ArrowLeft",
// "Space"). Mouse buttons use the MouseButton* constants.
type Input struct {
	keys        map[string]struct{}
	keysPressed map[string]struct{}

	buttons        map[int]struct{}
	buttonsPressed map[int]struct{}

	mouseX, mouseY float64
	wheelX, wheelY float64

	pads [MaxGamepads]padState

	dirty uint8

	keysDownView       []string
	keysPressedView    []string
	buttonsDownView    []int
	buttonsPressedView []int
}

// NewInput creates an empty input state.
func NewInput() *Input {
	return &Input{
		keys:           make(map[string]struct{}),
		keysPressed:    make(map[string]struct{}),
		buttons:        make(map[int]struct{}),
		buttonsPressed: make(map[int]struct{}),
	}
}

// --- Mutations ---

// KeyDown records a key press. A key already held does not produce a new
// just-pressed edge, so auto-repeat is ignored.
func (in *Input) KeyDown(code string) {
	if code == "" {
		return
	}
	if _, held := in.keys[code]; held {
		return
	}
	in.keys[code] = struct{}{}
	in.keysPressed[code] = struct{}{}
	in.dirty |= dirtyKeysDown | dirtyKeysPressed
}

// KeyUp records a key release. The just-pressed edge, if any, survives
// until Update.
func (in *Input) KeyUp(code string) {
	if _, held := in.keys[code]; !held {
		return
	}
	delete(in.keys, code)
	in.dirty |= dirtyKeysDown
}

// MouseMove records the cursor position in surface pixels.
func (in *Input) MouseMove(x, y float64) {
	in.mouseX, in.mouseY = x, y
}

func (in *Input) MouseDown(button int) {
	if _, held := in.buttons[button]; held {
		return
	}
	in.buttons[button] = struct{}{}
	in.buttonsPressed[button] = struct{}{}
	in.dirty |= dirtyButtonsDown | dirtyButtonsPressed
}

func (in *Input) MouseUp(button int) {
	if _, held := in.buttons[button]; !held {
		return
	}
	delete(in.buttons, button)
	in.dirty |= dirtyButtonsDown
}

// MouseWheel accumulates wheel movement for the current frame.
func (in *Input) MouseWheel(dx, dy float64) {
	in.wheelX += dx
	in.wheelY += dy
}

// PollGamepads replaces every slot's state with readings, in slot order.
// Missing readings mark their slots disconnected. A button is just pressed
// when it is down now and was not down in the previous poll. Readings are
// copied, so callers may reuse their slices.
func (in *Input) PollGamepads(readings []GamepadReading) {
	for i := range in.pads {
		var r GamepadReading
		if i < len(readings) {
			r = readings[i]
		}
		p := &in.pads[i]
		if !r.Connected {
			if p.connected {
				*p = padState{}
			}
			continue
		}
		p.poll(r)
	}
}

// Update clears edge state at the end of a frame. Held keys and buttons are
// kept.
func (in *Input) Update() {
	if len(in.keysPressed) > 0 {
		clear(in.keysPressed)
		in.dirty |= dirtyKeysPressed
	}
	if len(in.buttonsPressed) > 0 {
		clear(in.buttonsPressed)
		in.dirty |= dirtyButtonsPressed
	}
	in.wheelX, in.wheelY = 0, 0
	for i := range in.pads {
		p := &in.pads[i]
		if slices.Contains(p.pressed, true) {
			clear(p.pressed)
			p.dirty |= padDirtyPressed
		}
	}
}

// Reset clears all state, held keys included. Used on focus loss so keys
// released while unfocused do not stick.
func (in *Input) Reset() {
	clear(in.keys)
	clear(in.keysPressed)
	clear(in.buttons)
	clear(in.buttonsPressed)
	in.wheelX, in.wheelY = 0, 0
	in.pads = [MaxGamepads]padState{}
	in.dirty = dirtyKeysDown | dirtyKeysPressed | dirtyButtonsDown | dirtyButtonsPressed
}

// --- Queries ---

func (in *Input) IsKeyDown(code string) bool {
	_, ok := in.keys[code]
	return ok
}

// IsKeyPressed reports whether code went down during the current frame.
func (in *Input) IsKeyPressed(code string) bool {
	_, ok := in.keysPressed[code]
	return ok
}

// KeysDown returns the held keys in sorted order.
func (in *Input) KeysDown() []string {
	if in.dirty&dirtyKeysDown != 0 || in.keysDownView == nil {
		in.keysDownView = sortedKeys(in.keys)
		in.dirty &^= dirtyKeysDown
	}
	return in.keysDownView
}

// KeysPressed returns the keys pressed this frame in sorted order.
func (in *Input) KeysPressed() []string {
	if in.dirty&dirtyKeysPressed != 0 || in.keysPressedView == nil {
		in.keysPressedView = sortedKeys(in.keysPressed)
		in.dirty &^= dirtyKeysPressed
	}
	return in.keysPressedView
}

func (in *Input) MousePosition() (x, y float64) {
	return in.mouseX, in.mouseY
}

func (in *Input) Wheel() (dx, dy float64) {
	return in.wheelX, in.wheelY
}

func (in *Input) IsMouseButtonDown(button int) bool {
	_, ok := in.buttons[button]
	return ok
}

func (in *Input) IsMouseButtonPressed(button int) bool {
	_, ok := in.buttonsPressed[button]
	return ok
}

func (in *Input) MouseButtonsDown() []int {
	if in.dirty&dirtyButtonsDown != 0 || in.buttonsDownView == nil {
		in.buttonsDownView = sortedKeys(in.buttons)
		in.dirty &^= dirtyButtonsDown
	}
	return in.buttonsDownView
}

func (in *Input) MouseButtonsPressed() []int {
	if in.dirty&dirtyButtonsPressed != 0 || in.buttonsPressedView == nil {
		in.buttonsPressedView = sortedKeys(in.buttonsPressed)
		in.dirty &^= dirtyButtonsPressed
	}
	return in.buttonsPressedView
}

// Gamepad returns slot i. Out-of-range slots read as disconnected.
func (in *Input) Gamepad(i int) GamepadState {
	if i < 0 || i >= MaxGamepads {
		return GamepadState{}
	}
	p := &in.pads[i]
	p.refresh()
	return GamepadState{
		Connected:          p.connected,
		ID:                 p.id,
		Buttons:            p.buttonsView,
		ButtonsJustPressed: p.pressedView,
		Axes:               p.axesView,
	}
}

// Gamepads returns every slot.
func (in *Input) Gamepads() [MaxGamepads]GamepadState {
	var out [MaxGamepads]GamepadState
	for i := range out {
		out[i] = in.Gamepad(i)
	}
	return out
}

// Snapshot captures the current frame's input.
func (in *Input) Snapshot() InputSnapshot {
	return InputSnapshot{
		KeysDown:            in.KeysDown(),
		KeysPressed:         in.KeysPressed(),
		MouseX:              in.mouseX,
		MouseY:              in.mouseY,
		MouseButtonsDown:    in.MouseButtonsDown(),
		MouseButtonsPressed: in.MouseButtonsPressed(),
		WheelX:              in.wheelX,
		WheelY:              in.wheelY,
		Gamepads:            in.Gamepads(),
	}
}

// sortedKeys returns the keys of set in order. A fresh slice is returned so
// earlier snapshots keep their contents.
func sortedKeys[K interface{ ~int | ~string }](set map[K]struct{}) []K {
	out := make([]K, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// NormalizeKeyCode maps host key names to physical key codes: single
// letters become "KeyX", everything else is passed through.
func NormalizeKeyCode(name string) string {
	if len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return "Key" + strings.ToUpper(name)
	}
	if len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z' {
		return "Key" + name
	}
	return name
}
