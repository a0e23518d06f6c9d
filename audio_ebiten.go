package lantern

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// bytesPerFrame is 16-bit stereo, the format ebiten's decoders produce.
const bytesPerFrame = 4

type ebitenBackend struct {
	ctx        *audio.Context
	sampleRate int
}

// NewEbitenBackend opens the process-wide ebiten audio context, or reuses
// the one already open. A driver failure during construction is returned
// as ErrAudioUnavailable instead of a panic.
func NewEbitenBackend(sampleRate int) (b Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: %v", ErrAudioUnavailable, r)
		}
	}()
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &ebitenBackend{ctx: ctx, sampleRate: ctx.SampleRate()}, nil
}

// EbitenBackendFactory returns a BackendFactory for NewAudioEngine.
func EbitenBackendFactory(sampleRate int) BackendFactory {
	return func() (Backend, error) { return NewEbitenBackend(sampleRate) }
}

func (b *ebitenBackend) Decode(data []byte, ext string) (Sound, error) {
	var (
		stream io.Reader
		err    error
	)
	src := bytes.NewReader(data)
	switch ext {
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(b.sampleRate, src)
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(b.sampleRate, src)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(b.sampleRate, src)
	default:
		return nil, fmt.Errorf("%w: unsupported audio format %q", ErrInvalidArgument, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	return &ebitenSound{pcm: pcm, sampleRate: b.sampleRate}, nil
}

func (b *ebitenBackend) NewVoice(s Sound, loop bool) (Voice, error) {
	es, ok := s.(*ebitenSound)
	if !ok {
		return nil, fmt.Errorf("%w: sound from another backend", ErrInvalidArgument)
	}
	if !loop {
		return &ebitenVoice{p: b.ctx.NewPlayerFromBytes(es.pcm)}, nil
	}
	l := audio.NewInfiniteLoop(bytes.NewReader(es.pcm), int64(len(es.pcm)))
	p, err := b.ctx.NewPlayer(l)
	if err != nil {
		return nil, err
	}
	return &ebitenVoice{p: p}, nil
}

// Close is a no-op: ebiten's audio context lives for the whole process.
func (b *ebitenBackend) Close() error { return nil }

type ebitenSound struct {
	pcm        []byte
	sampleRate int
}

func (s *ebitenSound) Duration() time.Duration {
	frames := len(s.pcm) / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

type ebitenVoice struct {
	p *audio.Player
}

func (v *ebitenVoice) Play()                        { v.p.Play() }
func (v *ebitenVoice) Pause()                       { v.p.Pause() }
func (v *ebitenVoice) IsPlaying() bool              { return v.p.IsPlaying() }
func (v *ebitenVoice) SetVolume(g float64)          { v.p.SetVolume(g) }
func (v *ebitenVoice) Position() time.Duration      { return v.p.Position() }
func (v *ebitenVoice) Seek(pos time.Duration) error { return v.p.SetPosition(pos) }
func (v *ebitenVoice) Close() error                 { return v.p.Close() }
