// Package script runs a JavaScript program against a lantern Runtime.
//
// The program sees four globals: canvas and audio record calls that are
// applied after each tick, input reads the current frame's input snapshot,
// and console forwards to the process logger. A program registers its
// per-frame callback with onTick(fn); fn receives the frame state.
package script

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/phanxgames/lantern"
)

//go:embed prelude.js
var prelude string

// ErrNoTick is returned by Load when the program never calls onTick.
var ErrNoTick = errors.New("script did not register onTick")

// Option configures a Host.
type Option func(*Host)

// WithTimeout bounds each tick and the initial program run. Zero disables
// the limit.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// WithLogger sets the logger used for console output.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.log = l }
}

// Host owns a goja VM bound to a Runtime. Calls are serialized; the VM is
// never entered from two goroutines at once.
type Host struct {
	rt      *lantern.Runtime
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	vm     *goja.Runtime
	bridge *goja.Object
	onTick goja.Callable
	flush  goja.Callable
	frame  *lantern.FrameState
}

// New creates a host for rt. The timeout defaults to the runtime's
// configured tick timeout.
func New(rt *lantern.Runtime, opts ...Option) (*Host, error) {
	h := &Host{
		rt:      rt,
		timeout: rt.Config().TickTimeout,
		log:     lantern.Logger().Named("script"),
		vm:      goja.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	h.vm.SetMaxCallStackSize(1024)
	if err := h.setupGlobals(); err != nil {
		return nil, err
	}
	return h, nil
}

// setupGlobals removes host-escaping globals and installs the bridge.
func (h *Host) setupGlobals() error {
	vm := h.vm
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, h.consoleFunc(level)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	h.bridge = vm.NewObject()
	b := h.bridge
	_ = b.Set("width", h.rt.Surface.Width())
	_ = b.Set("height", h.rt.Surface.Height())
	_ = b.Set("getPixel", h.getPixel)
	_ = b.Set("imageDataSize", h.imageDataSize)
	_ = b.Set("audioState", func() lantern.MixerSnapshot { return h.rt.Audio.State() })
	_ = b.Set("audioAvailable", h.rt.Audio.IsAudioAvailable)

	v, err := vm.RunScript("lantern:prelude", prelude)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	install, ok := goja.AssertFunction(v)
	if !ok {
		return errors.New("prelude: not a function")
	}
	api, err := install(goja.Undefined(), b)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	obj := api.ToObject(vm)
	if err := vm.Set("canvas", obj.Get("canvas")); err != nil {
		return err
	}
	if err := vm.Set("audio", obj.Get("audio")); err != nil {
		return err
	}
	if h.flush, ok = goja.AssertFunction(b.Get("flush")); !ok {
		return errors.New("prelude: flush missing")
	}

	if err := vm.Set("input", h.inputObject()); err != nil {
		return err
	}
	if err := vm.Set("assets", h.assetsObject()); err != nil {
		return err
	}
	if err := vm.Set("onTick", h.registerTick); err != nil {
		return err
	}
	return vm.Set("stop", func() { h.rt.Loop.Stop() })
}

func (h *Host) registerTick(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(h.vm.NewTypeError("onTick expects a function"))
	}
	h.onTick = fn
	return goja.Undefined()
}

func (h *Host) consoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")
		switch level {
		case "warn":
			h.log.Warn(msg)
		case "error":
			h.log.Error(msg)
		case "debug":
			h.log.Debug(msg)
		default:
			h.log.Info(msg)
		}
		return goja.Undefined()
	}
}

// Load runs program text once. name is used in stack traces. The program
// must register a tick with onTick.
func (h *Host) Load(name, src string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.run(func() (goja.Value, error) { return h.vm.RunScript(name, src) }); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if h.onTick == nil {
		return fmt.Errorf("load %s: %w", name, ErrNoTick)
	}
	return nil
}

// LoadFile reads the program at p through the runtime's asset filesystem
// and runs it. Relative asset paths then resolve against p's directory.
func (h *Host) LoadFile(p string) error {
	data, err := h.rt.Assets.ReadFile(p)
	if err != nil {
		return err
	}
	h.rt.Assets.SetScriptPath(h.rt.Assets.Resolve(p))
	return h.Load(p, string(data))
}

// Tick is a lantern.TickFunc. It calls the registered callback with the
// frame state and moves everything the program recorded into batch.
func (h *Host) Tick(state *lantern.FrameState, batch *lantern.Batch) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.onTick == nil {
		return ErrNoTick
	}
	h.frame = state
	defer func() { h.frame = nil }()

	if _, err := h.run(func() (goja.Value, error) {
		return h.onTick(goja.Undefined(), h.vm.ToValue(state))
	}); err != nil {
		// Drop whatever the failed tick recorded.
		_, _ = h.flush(goja.Undefined())
		return err
	}
	return h.drain(batch)
}

// run calls fn under the timeout.
func (h *Host) run(fn func() (goja.Value, error)) (goja.Value, error) {
	if h.timeout > 0 {
		timer := time.AfterFunc(h.timeout, func() {
			h.vm.Interrupt(fmt.Sprintf("script exceeded %v", h.timeout))
		})
		defer func() {
			timer.Stop()
			h.vm.ClearInterrupt()
		}()
	}
	return fn()
}

type recorded struct {
	Commands json.RawMessage   `json:"commands"`
	Audio    []lantern.AudioOp `json:"audio"`
}

// drain decodes what the program recorded this tick into batch.
func (h *Host) drain(batch *lantern.Batch) error {
	v, err := h.flush(goja.Undefined())
	if err != nil {
		return err
	}
	var rec recorded
	if err := sonic.UnmarshalString(v.String(), &rec); err != nil {
		return fmt.Errorf("decode recorded calls: %w", err)
	}
	cmds, err := lantern.DecodeBatch(rec.Commands)
	if err != nil {
		return err
	}
	batch.Push(cmds...)
	batch.PushAudio(rec.Audio...)
	return nil
}

// Close interrupts any running call and drops the VM's references.
func (h *Host) Close() {
	h.vm.Interrupt("host closed")
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTick = nil
}
