// Package lantern runs a script-driven 2D canvas on [Ebitengine].
//
// A script never touches pixels directly. Once per display refresh it
// receives a [FrameState] and records drawing [Command] values and
// [AudioOp] values into a [Batch]. After the tick returns the batch is
// applied in order to a raster [Surface] and the audio mixer, and the
// frame is presented.
//
// # Quick start
//
// [Run] creates the window, the runtime and the frame loop. The setup
// callback registers a tick:
//
//	cfg, _ := lantern.LoadRunConfig()
//	err := lantern.Run(cfg, func(rt *lantern.Runtime) error {
//		rt.Loop.RegisterTickCallback(func(fs *lantern.FrameState, b *lantern.Batch) error {
//			b.Push(
//				lantern.Clear{Color: "#102030"},
//				lantern.SetFillStyle{Color: "orange"},
//				lantern.FillRect{X: 10, Y: 10, Width: 32, Height: 32},
//			)
//			return nil
//		})
//		return nil
//	})
//
// JavaScript programs run through the script sub-package, which exposes
// canvas, audio, input and assets globals and records calls the same way:
//
//	host, _ := script.New(rt)
//	_ = host.LoadFile(cfg.ScriptPath)
//	rt.Loop.RegisterTickCallback(host.Tick)
//
// # Resources
//
// Paths and pixel buffers live in registries keyed by integer ids. A
// script may allocate ids itself so it can refer to a resource in the same
// batch that creates it; ids only grow and are never reused. Commands that
// name an unknown or disposed id are skipped and counted, not fatal.
//
// Images, fonts and sounds are loaded by name with [Runtime.Preload] or a
// YAML manifest, from the local asset root or over HTTP.
//
// # Faults
//
// A tick that returns an error or panics stops the loop. The batch of the
// faulting frame is dropped and [FrameLoop.Err] returns a [ScriptFault].
//
// # Logging
//
// lantern logs through zap and is silent until [SetLogger] is called.
//
// [Ebitengine]: https://ebitengine.org
package lantern
