package lantern

type syntheticKind uint8

const (
	synthKeyDown syntheticKind = iota
	synthKeyUp
	synthMove
	synthPress
	synthRelease
)

// syntheticEvent is a single injected input event. Pointer events use
// surface coordinates, matching what a screenshot shows.
type syntheticEvent struct {
	kind   syntheticKind
	key    string
	x, y   float64
	button int
}

// InjectedInput wraps an InputSource and replays queued synthetic events,
// one per frame. The wrapped source is polled every frame first, so real
// transitions are never lost; a synthetic event is applied after it and
// wins for that frame.
type InjectedInput struct {
	source InputSource
	queue  []syntheticEvent
}

// NewInjectedInput wraps source, which may be nil.
func NewInjectedInput(source InputSource) *InjectedInput {
	return &InjectedInput{source: source}
}

// Pending returns the number of queued events.
func (q *InjectedInput) Pending() int { return len(q.queue) }

// InjectKeyDown queues a key press. The event is consumed on the next Poll.
func (q *InjectedInput) InjectKeyDown(code string) {
	q.queue = append(q.queue, syntheticEvent{kind: synthKeyDown, key: code})
}

// InjectKeyUp queues a key release.
func (q *InjectedInput) InjectKeyUp(code string) {
	q.queue = append(q.queue, syntheticEvent{kind: synthKeyUp, key: code})
}

// InjectKeyTap queues a press followed by a release. Consumes two frames.
func (q *InjectedInput) InjectKeyTap(code string) {
	q.InjectKeyDown(code)
	q.InjectKeyUp(code)
}

// InjectMove queues a cursor move.
func (q *InjectedInput) InjectMove(x, y float64) {
	q.queue = append(q.queue, syntheticEvent{kind: synthMove, x: x, y: y})
}

// InjectPress queues a left-button press at (x, y).
func (q *InjectedInput) InjectPress(x, y float64) {
	q.queue = append(q.queue, syntheticEvent{kind: synthPress, x: x, y: y, button: MouseButtonLeft})
}

// InjectRelease queues a left-button release at (x, y).
func (q *InjectedInput) InjectRelease(x, y float64) {
	q.queue = append(q.queue, syntheticEvent{kind: synthRelease, x: x, y: y, button: MouseButtonLeft})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same position. Consumes two frames.
func (q *InjectedInput) InjectClick(x, y float64) {
	q.InjectPress(x, y)
	q.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (q *InjectedInput) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	q.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		q.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	q.InjectRelease(toX, toY)
}

// Poll polls the wrapped source, then applies the next queued event.
func (q *InjectedInput) Poll(in *Input) {
	if q.source != nil {
		q.source.Poll(in)
	}
	if len(q.queue) == 0 {
		return
	}
	evt := q.queue[0]
	copy(q.queue, q.queue[1:])
	q.queue = q.queue[:len(q.queue)-1]

	switch evt.kind {
	case synthKeyDown:
		in.KeyDown(evt.key)
	case synthKeyUp:
		in.KeyUp(evt.key)
	case synthMove:
		in.MouseMove(evt.x, evt.y)
	case synthPress:
		in.MouseMove(evt.x, evt.y)
		in.MouseDown(evt.button)
	case synthRelease:
		in.MouseMove(evt.x, evt.y)
		in.MouseUp(evt.button)
	}
}
