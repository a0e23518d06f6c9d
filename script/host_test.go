package script

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/phanxgames/lantern"
)

func newTestRuntime(t *testing.T) *lantern.Runtime {
	t.Helper()
	cfg := lantern.RunConfig{
		Width:      32,
		Height:     32,
		ScriptPath: "/main.js",
	}
	fsys := lantern.FSFileSystem{FS: fstest.MapFS{
		"games/pong/main.js":  {Data: []byte(`onTick(function () { canvas.save(); });`)},
		"games/pong/empty.js": {Data: []byte(`var x = 1;`)},
	}}
	rt, err := lantern.NewRuntime(cfg, lantern.NewEbitenScheduler(),
		lantern.WithAudioBackend(nil), lantern.WithFileSystem(fsys))
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func newTestHost(t *testing.T, src string, opts ...Option) (*Host, *lantern.Runtime) {
	t.Helper()
	rt := newTestRuntime(t)
	h, err := New(rt, opts...)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	require.NoError(t, h.Load("test.js", src))
	return h, rt
}

func tick(t *testing.T, h *Host, state *lantern.FrameState) *lantern.Batch {
	t.Helper()
	var b lantern.Batch
	require.NoError(t, h.Tick(state, &b))
	return &b
}

func TestLoadRequiresOnTick(t *testing.T) {
	h, err := New(newTestRuntime(t))
	require.NoError(t, err)
	err = h.Load("empty.js", `var x = 1;`)
	assert.ErrorIs(t, err, ErrNoTick)

	err = h.Tick(&lantern.FrameState{}, &lantern.Batch{})
	assert.ErrorIs(t, err, ErrNoTick)
}

func TestLoadSyntaxError(t *testing.T) {
	h, err := New(newTestRuntime(t))
	require.NoError(t, err)
	assert.Error(t, h.Load("bad.js", `onTick(function ( {`))
}

func TestOnTickRejectsNonFunction(t *testing.T) {
	h, err := New(newTestRuntime(t))
	require.NoError(t, err)
	assert.Error(t, h.Load("bad.js", `onTick(42);`))
}

func TestTickRecordsDrawCommands(t *testing.T) {
	h, _ := newTestHost(t, `
		onTick(function () {
			canvas.setFillStyle("#f00");
			canvas.fillRect(1, 2, 3, 4);
			canvas.arc(5, 5, 2, 0, Math.PI);
			canvas.fill();
		});
	`)
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{
		lantern.SetFillStyle{Color: "#f00"},
		lantern.FillRect{X: 1, Y: 2, Width: 3, Height: 4},
		lantern.Arc{X: 5, Y: 5, Radius: 2, EndAngle: 3.141592653589793},
		lantern.Fill{},
	}, b.Commands)
	assert.Empty(t, b.Audio)

	// Each tick starts with an empty recording.
	b = tick(t, h, &lantern.FrameState{})
	assert.Len(t, b.Commands, 4)
}

func TestTickSeesFrameState(t *testing.T) {
	h, _ := newTestHost(t, `
		onTick(function (s) {
			if (s.frameNumber === 3 && s.deltaTime === 0.5 && s.input.keysDown[0] === "KeyA") {
				canvas.save();
			}
		});
	`)
	state := &lantern.FrameState{
		FrameNumber: 3,
		DeltaTime:   0.5,
		Input:       lantern.InputSnapshot{KeysDown: []string{"KeyA"}},
	}
	b := tick(t, h, state)
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands)
}

func TestScriptAllocatedIDs(t *testing.T) {
	h, rt := newTestHost(t, `
		var path, buf;
		onTick(function (s) {
			if (s.frameNumber === 1) {
				path = canvas.createPath();
				canvas.pathRect(path, 0, 0, 4, 4);
				buf = canvas.createImageData(2, 2);
				canvas.setPixel(buf, 0, 0, 255, 0, 0, 255);
				canvas.clonePath(path);
			}
		});
	`)
	b := tick(t, h, &lantern.FrameState{FrameNumber: 1})
	assert.Equal(t, []lantern.Command{
		lantern.CreatePath{ID: 1},
		lantern.PathRect{ID: 1, Width: 4, Height: 4},
		lantern.CreateImageData{ID: 1, Width: 2, Height: 2},
		lantern.SetPixel{ID: 1, R: 255, A: 255},
		lantern.ClonePath{ID: 2, Source: 1},
	}, b.Commands)

	rt.Dispatcher.Apply(b.Commands)
	assert.Equal(t, 2, rt.Paths.Len())
	assert.Equal(t, lantern.RGBA8{R: 255, A: 255}, rt.Pixels.GetPixel(1, 0, 0))
}

func TestSynchronousReadsSeeLastAppliedFrame(t *testing.T) {
	h, rt := newTestHost(t, `
		var buf;
		onTick(function (s) {
			if (s.frameNumber === 1) {
				buf = canvas.createImageData(1, 1);
				canvas.setPixel(buf, 0, 0, 10, 20, 30, 255);
				if (canvas.imageDataSize(buf) === null) canvas.save();
				return;
			}
			var px = canvas.getPixel(buf, 0, 0);
			var size = canvas.imageDataSize(buf);
			if (px[0] === 10 && px[2] === 30 && size.width === 1) canvas.restore();
		});
	`)
	b := tick(t, h, &lantern.FrameState{FrameNumber: 1})
	require.Contains(t, b.Commands, lantern.Command(lantern.Save{}))
	rt.Dispatcher.Apply(b.Commands)

	b = tick(t, h, &lantern.FrameState{FrameNumber: 2})
	assert.Equal(t, []lantern.Command{lantern.Restore{}}, b.Commands)
}

func TestAudioOpsRecorded(t *testing.T) {
	h, _ := newTestHost(t, `
		onTick(function () {
			audio.createChannel("sfx");
			audio.playOnChannel("sfx", "hit", 0.5);
			audio.playMusic("theme");
			audio.fadeMusicTo(0, 2);
			audio.toggleMute();
		});
	`)
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.AudioOp{
		{Op: lantern.AudioCreateChannel, Channel: "sfx"},
		{Op: lantern.AudioPlay, Channel: "sfx", Asset: "hit", Volume: 0.5},
		{Op: lantern.AudioPlayMusic, Asset: "theme", Volume: 1, Loop: true},
		{Op: lantern.AudioFadeMusic, Duration: 2},
		{Op: lantern.AudioToggleMute},
	}, b.Audio)
	assert.Empty(t, b.Commands)
}

func TestAudioStateReadable(t *testing.T) {
	h, _ := newTestHost(t, `
		onTick(function () {
			if (!audio.isAvailable() && audio.state().masterVolume === 1) canvas.save();
		});
	`)
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands)
}

func TestTickExceptionDropsRecording(t *testing.T) {
	h, _ := newTestHost(t, `
		var n = 0;
		onTick(function () {
			canvas.save();
			if (n++ === 0) throw new Error("boom");
		});
	`)
	var b lantern.Batch
	err := h.Tick(&lantern.FrameState{}, &b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, b.Commands)

	next := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, next.Commands)
}

func TestTickTimeout(t *testing.T) {
	h, _ := newTestHost(t, `
		var spin = true;
		onTick(function () {
			if (spin) { spin = false; while (true) {} }
			canvas.save();
		});
	`, WithTimeout(50*time.Millisecond))

	err := h.Tick(&lantern.FrameState{}, &lantern.Batch{})
	var interrupted *goja.InterruptedError
	require.True(t, errors.As(err, &interrupted), "err = %v", err)

	// The interrupt is cleared for the next call.
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands)
}

func TestUnknownCommandIsAnError(t *testing.T) {
	h, _ := newTestHost(t, `onTick(function () { canvas.push({type: "explode"}); });`)
	err := h.Tick(&lantern.FrameState{}, &lantern.Batch{})
	assert.ErrorIs(t, err, lantern.ErrInvalidArgument)
}

func TestInputBinding(t *testing.T) {
	h, rt := newTestHost(t, `
		onTick(function () {
			if (input.isKeyDown("a") && input.isKeyPressed("KeyA")) canvas.save();
			var m = input.mouse();
			if (m.x === 7 && m.y === 9 && input.isMouseDown(0)) canvas.restore();
		});
	`)
	rt.Input.KeyDown("KeyA")
	rt.Input.MouseMove(7, 9)
	rt.Input.MouseDown(lantern.MouseButtonLeft)

	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}, lantern.Restore{}}, b.Commands)
}

func TestHostEscapesRemoved(t *testing.T) {
	h, _ := newTestHost(t, `
		onTick(function () {
			if (typeof require === "undefined" && typeof process === "undefined") canvas.save();
		});
	`)
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands)
}

func TestConsoleForwardsToLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h, _ := newTestHost(t, `
		console.warn("low", 3);
		onTick(function () { console.log("tick"); });
	`, WithLogger(zap.New(core)))
	tick(t, h, &lantern.FrameState{})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "low 3", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "tick", entries[1].Message)
}

func TestStopStopsLoop(t *testing.T) {
	h, rt := newTestHost(t, `onTick(function () { stop(); });`)
	rt.Loop.Start()
	tick(t, h, &lantern.FrameState{})
	assert.False(t, rt.Loop.IsRunning())
}

func TestLoadFileResolvesAssetsRelativeToScript(t *testing.T) {
	rt := newTestRuntime(t)
	h, err := New(rt)
	require.NoError(t, err)
	t.Cleanup(h.Close)

	require.NoError(t, h.LoadFile("/games/pong/main.js"))
	assert.Equal(t, "/games/pong/ball.png", rt.Assets.Resolve("ball.png"))

	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands)

	assert.ErrorIs(t, h.LoadFile("/games/pong/missing.js"), lantern.ErrNotFound)

	fresh, err := New(rt)
	require.NoError(t, err)
	t.Cleanup(fresh.Close)
	assert.ErrorIs(t, fresh.LoadFile("/games/pong/empty.js"), ErrNoTick)
}

func TestAssetsScanFromScript(t *testing.T) {
	rt := newTestRuntime(t)
	h, err := New(rt)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	require.NoError(t, h.Load("scan.js", `
		var found = assets.scan("/games", "**/*.js");
		onTick(function () { if (found.length === 0) canvas.save(); });
	`))
	b := tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Save{}}, b.Commands, ".js files are not classified assets")

	err = h.Load("bad.js", `
		var failed = false;
		try { assets.scan("/nope"); } catch (e) { failed = true; }
		onTick(function () { if (failed) canvas.restore(); });
	`)
	require.NoError(t, err)
	b = tick(t, h, &lantern.FrameState{})
	assert.Equal(t, []lantern.Command{lantern.Restore{}}, b.Commands)
}
