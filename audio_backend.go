package lantern

import (
	"path"
	"strings"
	"time"
)

// Backend is the platform mixer behind an AudioEngine.
type Backend interface {
	// Decode turns encoded audio into a playable sound. ext selects the
	// codec (".mp3", ".wav", ".ogg").
	Decode(data []byte, ext string) (Sound, error)
	// NewVoice creates a paused playback source for s.
	NewVoice(s Sound, loop bool) (Voice, error)
	Close() error
}

// Sound is decoded audio owned by a Backend.
type Sound interface {
	Duration() time.Duration
}

// Voice is one playback source attached to the mixer.
type Voice interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(v float64)
	Position() time.Duration
	Seek(pos time.Duration) error
	Close() error
}

// BackendFactory constructs a Backend. Failure puts the engine in no-op
// mode.
type BackendFactory func() (Backend, error)

// audioExt returns the lower-cased extension of name, defaulting to the
// given fallback when name has none.
func audioExt(name, fallback string) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		return ext
	}
	return fallback
}
