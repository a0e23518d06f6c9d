package lantern

import (
	"slices"
	"testing"
)

func TestKeyDownPressedEdge(t *testing.T) {
	in := NewInput()
	in.KeyDown("KeyA")

	if !in.IsKeyDown("KeyA") {
		t.Error("KeyA should be down")
	}
	if !in.IsKeyPressed("KeyA") {
		t.Error("KeyA should be just pressed")
	}

	in.Update()
	if !in.IsKeyDown("KeyA") {
		t.Error("KeyA should still be down after Update")
	}
	if in.IsKeyPressed("KeyA") {
		t.Error("just-pressed should clear after Update")
	}
}

func TestKeyRepeatIgnored(t *testing.T) {
	in := NewInput()
	in.KeyDown("Space")
	in.Update()
	in.KeyDown("Space") // auto-repeat
	if in.IsKeyPressed("Space") {
		t.Error("repeat should not produce a new just-pressed edge")
	}
}

func TestKeyTapWithinFrame(t *testing.T) {
	in := NewInput()
	in.KeyDown("KeyQ")
	in.KeyUp("KeyQ")

	if in.IsKeyDown("KeyQ") {
		t.Error("KeyQ should be released")
	}
	if !in.IsKeyPressed("KeyQ") {
		t.Error("a press released in the same frame still counts as just pressed")
	}
}

func TestKeyUpUnknownIgnored(t *testing.T) {
	in := NewInput()
	in.KeyUp("KeyZ")
	if got := in.KeysDown(); len(got) != 0 {
		t.Errorf("KeysDown = %v, want empty", got)
	}
}

func TestKeysDownSorted(t *testing.T) {
	in := NewInput()
	for _, k := range []string{"KeyD", "ArrowLeft", "KeyA"} {
		in.KeyDown(k)
	}
	want := []string{"ArrowLeft", "KeyA", "KeyD"}
	if got := in.KeysDown(); !slices.Equal(got, want) {
		t.Errorf("KeysDown = %v, want %v", got, want)
	}
	if got := in.KeysPressed(); !slices.Equal(got, want) {
		t.Errorf("KeysPressed = %v, want %v", got, want)
	}
}

func TestKeysDownCachedUntilMutation(t *testing.T) {
	in := NewInput()
	in.KeyDown("KeyA")

	a := in.KeysDown()
	b := in.KeysDown()
	if &a[0] != &b[0] {
		t.Error("KeysDown should return the cached slice when nothing changed")
	}

	in.KeyDown("KeyB")
	c := in.KeysDown()
	if len(c) != 2 {
		t.Fatalf("KeysDown len = %d, want 2", len(c))
	}
	if len(a) != 1 {
		t.Errorf("earlier view changed to %v", a)
	}
}

func TestGamepadCachedUntilChange(t *testing.T) {
	in := NewInput()
	held := []GamepadReading{
		{Connected: true, ID: "pad", Buttons: []bool{true, false}, Axes: []float64{0.25, 0}},
	}
	in.PollGamepads(held)
	a := in.Gamepad(0)
	in.Update()
	in.PollGamepads(held)
	b := in.Gamepad(0)

	if &a.Buttons[0] != &b.Buttons[0] {
		t.Error("Buttons should keep the cached slice across an unchanged poll")
	}
	if &a.Axes[0] != &b.Axes[0] {
		t.Error("Axes should keep the cached slice across an unchanged poll")
	}
	if !a.ButtonsJustPressed[0] || b.ButtonsJustPressed[0] {
		t.Errorf("edges = %v then %v, want pressed then cleared", a.ButtonsJustPressed, b.ButtonsJustPressed)
	}

	held[0].Axes[0] = 0.75
	in.PollGamepads(held)
	c := in.Gamepad(0)
	if c.Axes[0] != 0.75 {
		t.Errorf("axis 0 = %v, want 0.75", c.Axes[0])
	}
	if a.Axes[0] != 0.25 {
		t.Errorf("earlier view changed to %v", a.Axes)
	}
}

func TestIdleFrameDoesNotAllocate(t *testing.T) {
	in := NewInput()
	in.KeyDown("KeyA")
	in.MouseDown(MouseButtonLeft)
	readings := []GamepadReading{
		{Connected: true, ID: "pad", Buttons: []bool{true, false, false}, Axes: []float64{0.5, -0.5}},
	}
	in.PollGamepads(readings)
	in.Snapshot()
	in.Update()

	allocs := testing.AllocsPerRun(100, func() {
		in.PollGamepads(readings)
		_ = in.Snapshot()
		in.Update()
	})
	if allocs != 0 {
		t.Errorf("allocs per idle frame = %v, want 0", allocs)
	}
}

func TestMouseButtons(t *testing.T) {
	in := NewInput()
	in.MouseMove(12, 34)
	in.MouseDown(MouseButtonRight)
	in.MouseDown(MouseButtonLeft)

	if x, y := in.MousePosition(); x != 12 || y != 34 {
		t.Errorf("MousePosition = (%v, %v), want (12, 34)", x, y)
	}
	want := []int{MouseButtonLeft, MouseButtonRight}
	if got := in.MouseButtonsDown(); !slices.Equal(got, want) {
		t.Errorf("MouseButtonsDown = %v, want %v", got, want)
	}
	if !in.IsMouseButtonPressed(MouseButtonLeft) {
		t.Error("left should be just pressed")
	}

	in.Update()
	in.MouseUp(MouseButtonRight)
	if in.IsMouseButtonDown(MouseButtonRight) {
		t.Error("right should be released")
	}
	if got := in.MouseButtonsPressed(); len(got) != 0 {
		t.Errorf("MouseButtonsPressed = %v, want empty", got)
	}
}

func TestWheelClearedOnUpdate(t *testing.T) {
	in := NewInput()
	in.MouseWheel(0, 1)
	in.MouseWheel(0, 2)
	if _, dy := in.Wheel(); dy != 3 {
		t.Errorf("wheel dy = %v, want 3", dy)
	}
	in.Update()
	if dx, dy := in.Wheel(); dx != 0 || dy != 0 {
		t.Errorf("wheel = (%v, %v) after Update, want 0", dx, dy)
	}
}

func TestGamepadJustPressed(t *testing.T) {
	in := NewInput()
	in.PollGamepads([]GamepadReading{
		{Connected: true, ID: "pad", Buttons: []bool{true, false}, Axes: []float64{0.5}},
	})

	p := in.Gamepad(0)
	if !p.Connected || p.ID != "pad" {
		t.Fatalf("gamepad 0 = %+v", p)
	}
	if !p.ButtonsJustPressed[0] {
		t.Error("button 0 should be just pressed on first poll")
	}
	if p.Axes[0] != 0.5 {
		t.Errorf("axis 0 = %v, want 0.5", p.Axes[0])
	}

	in.Update()
	in.PollGamepads([]GamepadReading{
		{Connected: true, ID: "pad", Buttons: []bool{true, true}},
	})
	p = in.Gamepad(0)
	if p.ButtonsJustPressed[0] {
		t.Error("held button 0 should not be just pressed again")
	}
	if !p.ButtonsJustPressed[1] {
		t.Error("button 1 should be just pressed")
	}
}

func TestGamepadSlots(t *testing.T) {
	in := NewInput()
	in.PollGamepads([]GamepadReading{{Connected: true, Buttons: []bool{true}}})
	in.PollGamepads(nil)

	if in.Gamepad(0).Connected {
		t.Error("slot 0 should disconnect when no reading is given")
	}
	for _, i := range []int{-1, MaxGamepads} {
		if in.Gamepad(i).Connected {
			t.Errorf("slot %d should read as disconnected", i)
		}
	}
}

func TestSnapshotStableAfterUpdate(t *testing.T) {
	in := NewInput()
	in.PollGamepads([]GamepadReading{{Connected: true, Buttons: []bool{true}}})
	in.KeyDown("KeyA")

	snap := in.Snapshot()
	in.Update()

	if len(snap.KeysPressed) != 1 {
		t.Errorf("snapshot KeysPressed = %v, want [KeyA]", snap.KeysPressed)
	}
	if !snap.Gamepads[0].ButtonsJustPressed[0] {
		t.Error("snapshot gamepad edge should survive Update")
	}
}

func TestInputReset(t *testing.T) {
	in := NewInput()
	in.KeyDown("KeyA")
	in.MouseDown(MouseButtonLeft)
	in.PollGamepads([]GamepadReading{{Connected: true}})
	in.Reset()

	if len(in.KeysDown()) != 0 || len(in.KeysPressed()) != 0 {
		t.Error("keys should be cleared")
	}
	if len(in.MouseButtonsDown()) != 0 {
		t.Error("buttons should be cleared")
	}
	if in.Gamepad(0).Connected {
		t.Error("gamepads should be cleared")
	}
}

func TestNormalizeKeyCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a", "KeyA"},
		{"Z", "KeyZ"},
		{"Escape", "Escape"},
		{"ArrowLeft", "ArrowLeft"},
		{"1", "1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeKeyCode(tt.in); got != tt.want {
			t.Errorf("NormalizeKeyCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
