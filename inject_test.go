package lantern

import "testing"

type countingSource struct{ polls int }

func (c *countingSource) Poll(in *Input) {
	c.polls++
	in.MouseMove(1, 1)
}

func TestInjectClick(t *testing.T) {
	q := NewInjectedInput(nil)
	in := NewInput()

	q.InjectClick(50, 60)
	if q.Pending() != 2 {
		t.Fatalf("expected 2 queued events, got %d", q.Pending())
	}

	// Frame 1: press
	q.Poll(in)
	if !in.IsMouseButtonPressed(MouseButtonLeft) {
		t.Error("left should be just pressed on the press frame")
	}
	if x, y := in.MousePosition(); x != 50 || y != 60 {
		t.Errorf("cursor = (%v, %v), want (50, 60)", x, y)
	}
	in.Update()

	// Frame 2: release
	q.Poll(in)
	if in.IsMouseButtonDown(MouseButtonLeft) {
		t.Error("left should be released on the release frame")
	}
	if q.Pending() != 0 {
		t.Errorf("expected 0 remaining events, got %d", q.Pending())
	}
}

func TestInjectDrag(t *testing.T) {
	q := NewInjectedInput(nil)
	in := NewInput()

	// frame 0: press at (10,10)
	// frames 1-3: moves
	// frame 4: release at (210,110)
	q.InjectDrag(10, 10, 210, 110, 5)
	if q.Pending() != 5 {
		t.Fatalf("expected 5 queued events, got %d", q.Pending())
	}

	var xs []float64
	for range 5 {
		q.Poll(in)
		x, _ := in.MousePosition()
		xs = append(xs, x)
		in.Update()
	}
	want := []float64{10, 60, 110, 160, 210}
	for i := range want {
		if xs[i] != want[i] {
			t.Errorf("frame %d x = %v, want %v", i, xs[i], want[i])
		}
	}
	if in.IsMouseButtonDown(MouseButtonLeft) {
		t.Error("button should be up after the drag")
	}
}

func TestInjectDragMinimumFrames(t *testing.T) {
	q := NewInjectedInput(nil)
	q.InjectDrag(0, 0, 10, 10, 0)
	if q.Pending() != 2 {
		t.Errorf("expected press+release only, got %d events", q.Pending())
	}
}

func TestInjectKeyTap(t *testing.T) {
	q := NewInjectedInput(nil)
	in := NewInput()
	q.InjectKeyTap("KeyW")

	q.Poll(in)
	if !in.IsKeyDown("KeyW") || !in.IsKeyPressed("KeyW") {
		t.Error("KeyW should be down and just pressed")
	}
	in.Update()
	q.Poll(in)
	if in.IsKeyDown("KeyW") {
		t.Error("KeyW should be up")
	}
}

func TestInjectedInputPollsSourceEveryFrame(t *testing.T) {
	src := &countingSource{}
	q := NewInjectedInput(src)
	in := NewInput()

	q.InjectMove(5, 5)
	q.Poll(in)
	if src.polls != 1 {
		t.Errorf("source polls = %d, want 1 while events are queued", src.polls)
	}
	if x, y := in.MousePosition(); x != 5 || y != 5 {
		t.Errorf("MousePosition = (%v, %v), want synthetic (5, 5)", x, y)
	}
	q.Poll(in)
	if src.polls != 2 {
		t.Errorf("source polls = %d, want 2", src.polls)
	}
	if x, y := in.MousePosition(); x != 1 || y != 1 {
		t.Errorf("MousePosition = (%v, %v), want host (1, 1)", x, y)
	}
}

// releaseSource reports a host key-up on its first poll.
type releaseSource struct{ key string }

func (r *releaseSource) Poll(in *Input) {
	if r.key != "" {
		in.KeyUp(r.key)
		r.key = ""
	}
}

func TestInjectedInputKeepsHostReleaseDuringSequence(t *testing.T) {
	in := NewInput()
	in.KeyDown("Space")
	in.Update()

	q := NewInjectedInput(&releaseSource{key: "Space"})
	q.InjectClick(3, 3)
	q.Poll(in)
	if in.IsKeyDown("Space") {
		t.Error("host key-up lost while synthetic events were queued")
	}
	if !in.IsMouseButtonDown(MouseButtonLeft) {
		t.Error("synthetic press not applied")
	}
}
