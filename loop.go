package lantern

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler asks the host to call fn once on its next display refresh.
type Scheduler interface {
	RequestFrame(fn func(now time.Time))
}

// FrameState is the per-frame state handed to the tick callback.
type FrameState struct {
	DeltaTime   float64       `json:"deltaTime"`
	TotalTime   float64       `json:"totalTime"`
	FrameNumber uint64        `json:"frameNumber"`
	Input       InputSnapshot `json:"input"`
	Audio       MixerSnapshot `json:"audio"`
}

// Batch collects what a tick emits. It is applied in full after the tick
// returns, before the frame is presented.
type Batch struct {
	Commands []Command
	Audio    []AudioOp
}

// Push appends drawing commands.
func (b *Batch) Push(cmds ...Command) {
	b.Commands = append(b.Commands, cmds...)
}

// PushAudio appends audio operations.
func (b *Batch) PushAudio(ops ...AudioOp) {
	b.Audio = append(b.Audio, ops...)
}

func (b *Batch) reset() {
	clear(b.Commands)
	b.Commands = b.Commands[:0]
	b.Audio = b.Audio[:0]
}

// TickFunc is the script tick. A returned error or a panic is a script
// fault and stops the loop.
type TickFunc func(state *FrameState, batch *Batch) error

// LoopOption configures a FrameLoop.
type LoopOption func(*FrameLoop)

// WithInputSource sets the source polled at the start of each frame.
func WithInputSource(src InputSource) LoopOption {
	return func(l *FrameLoop) { l.source = src }
}

// WithDebug enables per-frame stats logging at debug level.
func WithDebug(on bool) LoopOption {
	return func(l *FrameLoop) { l.debug = on }
}

// FrameLoop drives the script tick from host refreshes. Each frame it
// polls input, runs the tick, applies the emitted batch, clears input edges
// and asks for the next refresh. At most one tick is in flight; a slow tick
// delays the next request instead of queueing frames.
type FrameLoop struct {
	sched      Scheduler
	dispatcher *Dispatcher
	input      *Input
	audio      *AudioEngine
	source     InputSource
	debug      bool

	mu      sync.Mutex
	tick    TickFunc
	running bool
	done    chan struct{}
	finish  *sync.Once
	err     error

	// owned by the frame callback
	frame uint64
	total float64
	last  time.Time
	batch Batch
}

// NewFrameLoop creates a stopped loop. audio may be nil.
func NewFrameLoop(sched Scheduler, d *Dispatcher, in *Input, audio *AudioEngine, opts ...LoopOption) *FrameLoop {
	l := &FrameLoop{
		sched:      sched,
		dispatcher: d,
		input:      in,
		audio:      audio,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RegisterTickCallback sets the tick. It may be replaced while running;
// the change applies from the next frame.
func (l *FrameLoop) RegisterTickCallback(fn TickFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick = fn
}

// Start begins scheduling frames and returns a channel closed exactly once
// when the loop stops, by Stop or by a script fault. Starting a running
// loop returns the current channel.
func (l *FrameLoop) Start() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return l.done
	}
	l.running = true
	l.done = make(chan struct{})
	l.finish = new(sync.Once)
	l.err = nil
	l.frame, l.total, l.last = 0, 0, time.Time{}
	l.sched.RequestFrame(l.step)
	Logger().Info("frame loop started")
	return l.done
}

// Stop halts the loop. Calling it again, from inside a tick or from
// another goroutine, is harmless.
func (l *FrameLoop) Stop() {
	l.stop(nil)
}

func (l *FrameLoop) stop(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finish == nil {
		return
	}
	l.finish.Do(func() {
		l.running = false
		l.err = err
		close(l.done)
		Logger().Info("frame loop stopped", zap.Uint64("frame", l.frame), zap.Bool("fault", err != nil))
	})
}

// IsRunning reports whether frames are being scheduled.
func (l *FrameLoop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Err returns the fault that stopped the loop, or nil.
func (l *FrameLoop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// FrameNumber returns the number of the last frame run.
func (l *FrameLoop) FrameNumber() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

func (l *FrameLoop) step(now time.Time) {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	tick := l.tick
	l.frame++
	frame := l.frame
	l.mu.Unlock()

	var dt float64
	if !l.last.IsZero() {
		dt = now.Sub(l.last).Seconds()
	}
	l.last = now
	l.total += dt

	if l.source != nil {
		l.source.Poll(l.input)
	}
	state := FrameState{
		DeltaTime:   dt,
		TotalTime:   l.total,
		FrameNumber: frame,
		Input:       l.input.Snapshot(),
	}
	if l.audio != nil {
		state.Audio = l.audio.State()
	}

	l.batch.reset()
	var stats frameStats
	stats.frame = frame
	start := time.Now()
	if err := l.invoke(tick, &state); err != nil {
		fault := &ScriptFault{Frame: frame, Cause: err}
		Logger().Error("script fault, stopping frame loop", zap.Uint64("frame", frame), zap.Error(err))
		l.stop(fault)
		return
	}
	stats.tickTime = time.Since(start)

	if l.debug {
		debugCheckBatchSize(frame, len(l.batch.Commands))
	}
	start = time.Now()
	l.dispatcher.Apply(l.batch.Commands)
	if l.audio != nil {
		l.audio.ApplyOps(l.batch.Audio)
	}
	stats.applyTime = time.Since(start)
	stats.commandCount = len(l.batch.Commands)
	stats.audioCount = len(l.batch.Audio)
	l.input.Update()
	l.debugLog(stats)

	if l.IsRunning() {
		l.sched.RequestFrame(l.step)
	}
}

// invoke runs tick inside the fault boundary.
func (l *FrameLoop) invoke(tick TickFunc, state *FrameState) (err error) {
	if tick == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("panic: %v", r)
			}
		}
	}()
	return tick(state, &l.batch)
}
