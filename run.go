package lantern

import (
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenScheduler is a Scheduler fired from ebiten's Update. Requests made
// between updates collapse into the single pending callback.
type EbitenScheduler struct {
	mu      sync.Mutex
	pending func(time.Time)
}

// NewEbitenScheduler returns an idle scheduler.
func NewEbitenScheduler() *EbitenScheduler {
	return &EbitenScheduler{}
}

// RequestFrame implements Scheduler.
func (s *EbitenScheduler) RequestFrame(fn func(time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = fn
}

// Fire runs the pending callback, if any. It reports whether one ran.
func (s *EbitenScheduler) Fire(now time.Time) bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(now)
	return true
}

// game adapts a Runtime to ebiten.Game.
type game struct {
	rt    *Runtime
	sched *EbitenScheduler
	done  <-chan struct{}
	fps   *fpsOverlay
}

func (g *game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}
	g.rt.beginFrame()
	g.sched.Fire(time.Now())
	if g.fps != nil {
		g.fps.update()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	// gg keeps premultiplied RGBA, the layout WritePixels expects.
	screen.WritePixels(g.rt.Surface.Pixmap().Data())
	if g.fps != nil {
		g.fps.draw(screen)
	}
	g.rt.flushScreenshots()
}

func (g *game) Layout(_, _ int) (int, int) {
	cfg := g.rt.Config()
	return cfg.Width, cfg.Height
}

// Run opens a window for cfg, builds a Runtime on it and calls setup, which
// typically preloads assets and registers the tick. The loop is then
// started and Run blocks until the window closes or the loop stops. A
// script fault is returned as *ScriptFault.
func Run(cfg RunConfig, setup func(rt *Runtime) error, opts ...RuntimeOption) error {
	sched := NewEbitenScheduler()
	opts = append([]RuntimeOption{WithHostInput(NewEbitenInput())}, opts...)
	rt, err := NewRuntime(cfg, sched, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	if setup != nil {
		if err := setup(rt); err != nil {
			return err
		}
	}

	g := &game{rt: rt, sched: sched, done: rt.Loop.Start()}
	if cfg.ShowFPS {
		g.fps = newFPSOverlay()
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	return rt.Loop.Err()
}
