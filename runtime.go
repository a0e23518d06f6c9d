package lantern

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// RuntimeOption configures NewRuntime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	audio      BackendFactory
	audioSet   bool
	fs         FileSystem
	source     InputSource
	loaderOpts []LoaderOption
	audioOpts  []AudioOption
}

// WithAudioBackend overrides the audio backend. A nil factory runs the
// mixer in no-op mode.
func WithAudioBackend(f BackendFactory, opts ...AudioOption) RuntimeOption {
	return func(o *runtimeOptions) {
		o.audio, o.audioSet = f, true
		o.audioOpts = opts
	}
}

// WithFileSystem overrides the filesystem backing the asset loader.
func WithFileSystem(fsys FileSystem) RuntimeOption {
	return func(o *runtimeOptions) { o.fs = fsys }
}

// WithHostInput sets the real input source wrapped by the injector.
func WithHostInput(src InputSource) RuntimeOption {
	return func(o *runtimeOptions) { o.source = src }
}

// WithLoaderOptions passes options through to the asset loader.
func WithLoaderOptions(opts ...LoaderOption) RuntimeOption {
	return func(o *runtimeOptions) { o.loaderOpts = append(o.loaderOpts, opts...) }
}

// Runtime owns every subsystem a script talks to and the loop that drives
// it. Fields are exported for hosts that wire their own script engine.
type Runtime struct {
	Surface    *Surface
	Paths      *PathRegistry
	Pixels     *PixelRegistry
	Dispatcher *Dispatcher
	Input      *Input
	Injector   *InjectedInput
	Audio      *AudioEngine
	Assets     *Loader
	Loop       *FrameLoop

	cfg         RunConfig
	mu          sync.Mutex
	screenshots []string
	testRunner  *TestRunner
	closeOnce   sync.Once
}

// NewRuntime builds a runtime for cfg. Frames are requested from sched.
func NewRuntime(cfg RunConfig, sched Scheduler, opts ...RuntimeOption) (*Runtime, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := runtimeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.audioSet && cfg.SampleRate > 0 {
		o.audio = EbitenBackendFactory(cfg.SampleRate)
	}
	if o.fs == nil {
		o.fs = NewOSFileSystem(cfg.AssetRoot)
	}

	rt := &Runtime{
		Surface:  NewSurface(cfg.Width, cfg.Height),
		Paths:    NewPathRegistry(),
		Pixels:   NewPixelRegistry(),
		Input:    NewInput(),
		Injector: NewInjectedInput(o.source),
		Audio:    NewAudioEngine(o.audio, o.audioOpts...),
		cfg:      cfg,
	}
	rt.Assets = NewLoader(o.fs, append([]LoaderOption{WithScriptPath(cfg.ScriptPath)}, o.loaderOpts...)...)
	rt.Dispatcher = NewDispatcher(rt.Surface, rt.Paths, rt.Pixels)
	rt.Loop = NewFrameLoop(sched, rt.Dispatcher, rt.Input, rt.Audio,
		WithInputSource(rt.Injector), WithDebug(cfg.Debug))
	return rt, nil
}

// Config returns the configuration the runtime was built with.
func (rt *Runtime) Config() RunConfig { return rt.cfg }

// SetTestRunner attaches a TestRunner. Its step runs once per host frame,
// before input is polled.
func (rt *Runtime) SetTestRunner(r *TestRunner) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.testRunner = r
}

// Preload loads every definition and registers it with the subsystem that
// uses it: images and fonts with the surface, audio with the mixer. All
// definitions are attempted; failures are joined into the returned error.
func (rt *Runtime) Preload(ctx context.Context, defs []AssetDefinition) error {
	var errs []error
	for _, def := range defs {
		if err := rt.preload(ctx, def); err != nil {
			Logger().Warn("preload failed", zap.String("asset", def.Name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (rt *Runtime) preload(ctx context.Context, def AssetDefinition) error {
	a, err := rt.Assets.LoadAsset(ctx, def)
	if err != nil {
		return err
	}
	switch a.Type {
	case AssetImage:
		img, _, err := image.Decode(bytes.NewReader(a.Data))
		if err != nil {
			return fmt.Errorf("asset %q: decode image: %w", def.Name, err)
		}
		rt.Surface.RegisterImage(def.Name, img)
	case AssetFont:
		if err := rt.Surface.RegisterFont(def.Name, a.Data); err != nil {
			return fmt.Errorf("asset %q: %w", def.Name, err)
		}
	case AssetAudio:
		ext := strings.ToLower(path.Ext(urlPath(a.Path)))
		if err := rt.Audio.LoadSound(def.Name, a.Data, ext); err != nil {
			return fmt.Errorf("asset %q: %w", def.Name, err)
		}
	default:
		return fmt.Errorf("%w: asset %q has unknown type", ErrInvalidArgument, def.Name)
	}
	return nil
}

// PreloadManifest loads the YAML manifest at p and preloads its entries.
func (rt *Runtime) PreloadManifest(ctx context.Context, p string) error {
	defs, err := rt.Assets.LoadManifest(p)
	if err != nil {
		return err
	}
	return rt.Preload(ctx, defs)
}

// beginFrame runs host-side work that precedes the script tick.
func (rt *Runtime) beginFrame() {
	rt.mu.Lock()
	r := rt.testRunner
	rt.mu.Unlock()
	if r != nil {
		r.step(rt)
	}
}

// Close stops the loop and releases audio, surface, path and pixel buffer
// resources. It is safe to call more than once.
func (rt *Runtime) Close() error {
	var err error
	rt.closeOnce.Do(func() {
		rt.Loop.Stop()
		rt.Audio.Dispose()
		rt.Dispatcher.Reset()
		err = rt.Surface.Close()
	})
	return err
}
