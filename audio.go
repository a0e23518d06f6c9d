package lantern

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

const defaultFadeInterval = 10 * time.Millisecond

// fade is a scheduled linear gain ramp. Times are on the engine clock.
type fade struct {
	start    time.Duration
	from, to float64
	tween    *gween.Tween
}

// channel is one playback slot. volume is the logical volume set by the
// script; gain is what the voice currently plays at.
type channel struct {
	asset    string
	sound    Sound
	voice    Voice
	playing  bool
	loop     bool
	volume   float64
	gain     float64
	pausedAt time.Duration
	fade     *fade
}

func (ch *channel) isPlaying() bool {
	return ch.playing && ch.voice != nil && ch.voice.IsPlaying()
}

func (ch *channel) setGain(g float64) {
	ch.gain = g
	if ch.voice != nil {
		ch.voice.SetVolume(g)
	}
}

func (ch *channel) release() {
	if ch.voice != nil {
		if err := ch.voice.Close(); err != nil {
			Logger().Debug("close voice", zap.Error(err))
		}
	}
	ch.voice = nil
	ch.sound = nil
	ch.asset = ""
	ch.playing = false
	ch.pausedAt = 0
	ch.fade = nil
}

type effect struct {
	voice  Voice
	volume float64
}

// AudioOption configures an AudioEngine.
type AudioOption func(*AudioEngine)

// WithClock replaces the engine clock. The clock returns the time elapsed
// since an arbitrary origin and must be monotonic.
func WithClock(now func() time.Duration) AudioOption {
	return func(e *AudioEngine) { e.now = now }
}

// WithFadeInterval sets how often in-flight fades are advanced. Zero
// disables the background timer; fades then advance only through Advance.
func WithFadeInterval(d time.Duration) AudioOption {
	return func(e *AudioEngine) { e.interval = d }
}

// AudioEngine is the mixer: named channels, a music slot and one-shot
// effects under a master volume and mute. When its backend cannot be
// created every call is a no-op and IsAudioAvailable reports false.
//
// Fades run on the engine clock from a background timer, independent of the
// frame loop. All methods are safe for concurrent use.
type AudioEngine struct {
	mu       sync.Mutex
	backend  Backend
	now      func() time.Duration
	interval time.Duration

	sounds   map[string]Sound
	channels map[string]*channel
	music    *channel
	effects  []effect

	muted  bool
	master float64

	stop     chan struct{}
	done     chan struct{}
	disposed sync.Once
}

// NewAudioEngine creates an engine on the backend returned by factory. A
// nil factory or a factory error yields an engine in no-op mode.
func NewAudioEngine(factory BackendFactory, opts ...AudioOption) *AudioEngine {
	origin := time.Now()
	e := &AudioEngine{
		now:      func() time.Duration { return time.Since(origin) },
		interval: defaultFadeInterval,
		sounds:   make(map[string]Sound),
		channels: make(map[string]*channel),
		music:    &channel{volume: 1, gain: 1},
		master:   1,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if factory != nil {
		b, err := factory()
		if err != nil {
			Logger().Warn("audio unavailable, running silent", zap.Error(err))
		} else {
			e.backend = b
		}
	}

	if e.backend != nil && e.interval > 0 {
		go e.run()
	} else {
		close(e.done)
	}
	return e
}

func (e *AudioEngine) run() {
	defer close(e.done)
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			e.Advance()
		}
	}
}

// IsAudioAvailable reports whether a backend is present.
func (e *AudioEngine) IsAudioAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend != nil
}

// Dispose stops the fade timer and releases every voice and the backend.
// Safe to call more than once.
func (e *AudioEngine) Dispose() {
	e.disposed.Do(func() {
		close(e.stop)
		<-e.done

		e.mu.Lock()
		defer e.mu.Unlock()
		for _, ch := range e.channels {
			ch.release()
		}
		clear(e.channels)
		e.music.release()
		for _, fx := range e.effects {
			_ = fx.voice.Close()
		}
		e.effects = nil
		clear(e.sounds)
		if e.backend != nil {
			if err := e.backend.Close(); err != nil {
				Logger().Debug("close audio backend", zap.Error(err))
			}
			e.backend = nil
		}
	})
}

// effective is the gain a channel at logical volume v plays at.
func (e *AudioEngine) effective(v float64) float64 {
	if e.muted {
		return 0
	}
	return v * e.master
}

// --- Sounds ---

// LoadSound decodes data and registers it under name. ext selects the codec;
// when empty it is taken from name.
func (e *AudioEngine) LoadSound(name string, data []byte, ext string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return nil
	}
	s, err := e.backend.Decode(data, audioExt(ext, audioExt(name, "")))
	if err != nil {
		return err
	}
	e.sounds[name] = s
	return nil
}

func (e *AudioEngine) HasSound(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sounds[name]
	return ok
}

// UnloadSound forgets name. Channels already playing it keep playing.
func (e *AudioEngine) UnloadSound(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sounds, name)
}

// --- Channels ---

// CreateChannel adds a channel at full volume. Creating an existing channel
// does nothing.
func (e *AudioEngine) CreateChannel(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	if _, ok := e.channels[name]; ok {
		return
	}
	e.channels[name] = &channel{volume: 1, gain: e.effective(1)}
}

// DestroyChannel stops the channel and removes it.
func (e *AudioEngine) DestroyChannel(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch, ok := e.channels[name]; ok {
		ch.release()
		delete(e.channels, name)
	}
}

// ChannelNames returns the names of all channels.
func (e *AudioEngine) ChannelNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Sorted(maps.Keys(e.channels))
}

// PlayOnChannel replaces whatever the channel is playing with asset and
// starts it. Unknown channels and assets are logged and ignored.
func (e *AudioEngine) PlayOnChannel(name, asset string, volume float64, loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	ch, ok := e.channels[name]
	if !ok {
		Logger().Warn("play on unknown channel", zap.String("channel", name), zap.String("asset", asset))
		return
	}
	e.play(ch, asset, volume, loop)
}

func (e *AudioEngine) StopChannel(name string) {
	e.withChannel(name, e.stopCh)
}

func (e *AudioEngine) PauseChannel(name string) {
	e.withChannel(name, e.pauseCh)
}

func (e *AudioEngine) ResumeChannel(name string) {
	e.withChannel(name, e.resumeCh)
}

// SetChannelVolume sets the channel volume immediately, cancelling any fade.
func (e *AudioEngine) SetChannelVolume(name string, v float64) {
	e.withChannel(name, func(ch *channel) { e.setVolume(ch, v) })
}

// FadeChannelTo ramps the channel linearly to target over seconds. The
// logical volume becomes target at once.
func (e *AudioEngine) FadeChannelTo(name string, target, seconds float64) {
	e.withChannel(name, func(ch *channel) { e.fadeTo(ch, target, seconds) })
}

func (e *AudioEngine) IsChannelPlaying(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.channels[name]
	return ok && ch.isPlaying()
}

// GetChannelVolume returns the logical volume, or 0 for unknown channels.
func (e *AudioEngine) GetChannelVolume(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch, ok := e.channels[name]; ok {
		return ch.volume
	}
	return 0
}

// ChannelEffectiveGain returns the gain the channel currently plays at.
func (e *AudioEngine) ChannelEffectiveGain(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch, ok := e.channels[name]; ok {
		return ch.gain
	}
	return 0
}

func (e *AudioEngine) withChannel(name string, fn func(*channel)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	if ch, ok := e.channels[name]; ok {
		fn(ch)
	}
}

// --- Music slot ---

func (e *AudioEngine) PlayMusic(asset string, volume float64, loop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	e.play(e.music, asset, volume, loop)
}

func (e *AudioEngine) StopMusic()   { e.withMusic(e.stopCh) }
func (e *AudioEngine) PauseMusic()  { e.withMusic(e.pauseCh) }
func (e *AudioEngine) ResumeMusic() { e.withMusic(e.resumeCh) }

func (e *AudioEngine) SetMusicVolume(v float64) {
	e.withMusic(func(ch *channel) { e.setVolume(ch, v) })
}

func (e *AudioEngine) FadeMusicTo(target, seconds float64) {
	e.withMusic(func(ch *channel) { e.fadeTo(ch, target, seconds) })
}

func (e *AudioEngine) IsMusicPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.music.isPlaying()
}

// MusicVolume returns the music slot's logical volume.
func (e *AudioEngine) MusicVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.music.volume
}

func (e *AudioEngine) withMusic(fn func(*channel)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	fn(e.music)
}

// --- One-shot effects ---

// PlaySound plays asset once at volume, mixed under master volume and mute.
func (e *AudioEngine) PlaySound(asset string, volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return
	}
	s, ok := e.sounds[asset]
	if !ok {
		Logger().Warn("play unknown sound", zap.String("asset", asset))
		return
	}
	v, err := e.backend.NewVoice(s, false)
	if err != nil {
		Logger().Warn("create voice", zap.String("asset", asset), zap.Error(err))
		return
	}
	volume = clamp01(volume)
	v.SetVolume(e.effective(volume))
	v.Play()
	e.effects = append(e.effects, effect{voice: v, volume: volume})
}

// --- Global ---

// Mute silences everything at once and cancels in-flight fades. Logical
// volumes are kept.
func (e *AudioEngine) Mute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = true
	e.reapply()
}

// Unmute restores every channel to volume × master, cancelling fades.
func (e *AudioEngine) Unmute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = false
	e.reapply()
}

// ToggleMute flips the mute state and returns the new state.
func (e *AudioEngine) ToggleMute() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = !e.muted
	e.reapply()
	return e.muted
}

func (e *AudioEngine) IsMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMasterVolume sets the master volume, clamped to [0, 1]. In-flight fades
// are cancelled and every channel jumps to its logical volume.
func (e *AudioEngine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = clamp01(v)
	e.reapply()
}

func (e *AudioEngine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master
}

// reapply sets every gain from its logical volume, dropping fades.
func (e *AudioEngine) reapply() {
	apply := func(ch *channel) {
		ch.fade = nil
		ch.setGain(e.effective(ch.volume))
	}
	for _, ch := range e.channels {
		apply(ch)
	}
	apply(e.music)
	for _, fx := range e.effects {
		fx.voice.SetVolume(e.effective(fx.volume))
	}
}

// Advance moves every in-flight fade to the current clock time and releases
// finished one-shot effects. The background timer calls it; hosts without
// the timer call it directly.
func (e *AudioEngine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for _, ch := range e.channels {
		advanceFade(ch, now)
	}
	advanceFade(e.music, now)

	live := e.effects[:0]
	for _, fx := range e.effects {
		if fx.voice.IsPlaying() {
			live = append(live, fx)
			continue
		}
		_ = fx.voice.Close()
	}
	clear(e.effects[len(live):])
	e.effects = live
}

func advanceFade(ch *channel, now time.Duration) {
	f := ch.fade
	if f == nil {
		return
	}
	g, done := f.tween.Set(float32((now - f.start).Seconds()))
	if done {
		ch.fade = nil
		ch.setGain(f.to)
		return
	}
	ch.setGain(float64(g))
}

// --- shared channel operations, called with e.mu held ---

func (e *AudioEngine) play(ch *channel, asset string, volume float64, loop bool) {
	s, ok := e.sounds[asset]
	if !ok {
		Logger().Warn("play unknown sound", zap.String("asset", asset))
		return
	}
	// The previous playback stops even if the new voice cannot be made.
	ch.release()
	v, err := e.backend.NewVoice(s, loop)
	if err != nil {
		Logger().Warn("create voice", zap.String("asset", asset), zap.Error(err))
		ch.setGain(e.effective(ch.volume))
		return
	}
	ch.asset = asset
	ch.sound = s
	ch.voice = v
	ch.loop = loop
	ch.volume = clamp01(volume)
	ch.setGain(e.effective(ch.volume))
	v.Play()
	ch.playing = true
}

// stopCh stops playback and detaches the asset. The logical volume is kept.
func (e *AudioEngine) stopCh(ch *channel) {
	ch.release()
	ch.setGain(e.effective(ch.volume))
}

func (e *AudioEngine) pauseCh(ch *channel) {
	if !ch.playing || ch.voice == nil {
		return
	}
	ch.pausedAt = ch.voice.Position()
	ch.voice.Pause()
	ch.playing = false
}

func (e *AudioEngine) resumeCh(ch *channel) {
	if ch.playing || ch.voice == nil {
		return
	}
	if err := ch.voice.Seek(ch.pausedAt); err != nil {
		Logger().Debug("seek on resume", zap.Error(err))
	}
	ch.voice.Play()
	ch.playing = true
}

func (e *AudioEngine) setVolume(ch *channel, v float64) {
	ch.volume = clamp01(v)
	ch.fade = nil
	ch.setGain(e.effective(ch.volume))
}

func (e *AudioEngine) fadeTo(ch *channel, target, seconds float64) {
	target = clamp01(target)
	ch.volume = target
	to := e.effective(target)
	if seconds <= 0 || !finite(seconds) {
		ch.fade = nil
		ch.setGain(to)
		return
	}
	ch.fade = &fade{
		start: e.now(),
		from:  ch.gain,
		to:    to,
		tween: gween.New(float32(ch.gain), float32(to), float32(seconds), ease.Linear),
	}
}

func clamp01(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return max(0, min(v, 1))
}
