package lantern

import "go.uber.org/zap"

// ChannelSnapshot is the exported state of one channel or of the music slot.
// Volume is the logical volume; Gain is the gain currently applied, which
// differs from Volume×master while muted or fading.
type ChannelSnapshot struct {
	Playing     bool    `json:"isPlaying"`
	Volume      float64 `json:"volume"`
	Gain        float64 `json:"gain"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Asset       string  `json:"currentAssetName,omitempty"`
	Loop        bool    `json:"loop"`
	Fading      bool    `json:"isFading"`
}

// MixerSnapshot is the audio state pushed to the script once per frame.
type MixerSnapshot struct {
	Available    bool                       `json:"available"`
	Muted        bool                       `json:"muted"`
	MasterVolume float64                    `json:"masterVolume"`
	Music        ChannelSnapshot            `json:"music"`
	Channels     map[string]ChannelSnapshot `json:"channels"`
}

// AudioOpKind names an audio operation issued by the script.
type AudioOpKind string

const (
	AudioCreateChannel   AudioOpKind = "createChannel"
	AudioDestroyChannel  AudioOpKind = "destroyChannel"
	AudioPlay            AudioOpKind = "playOnChannel"
	AudioStop            AudioOpKind = "stopChannel"
	AudioPause           AudioOpKind = "pauseChannel"
	AudioResume          AudioOpKind = "resumeChannel"
	AudioSetVolume       AudioOpKind = "setChannelVolume"
	AudioFade            AudioOpKind = "fadeChannelTo"
	AudioPlayMusic       AudioOpKind = "playMusic"
	AudioStopMusic       AudioOpKind = "stopMusic"
	AudioPauseMusic      AudioOpKind = "pauseMusic"
	AudioResumeMusic     AudioOpKind = "resumeMusic"
	AudioSetMusicVolume  AudioOpKind = "setMusicVolume"
	AudioFadeMusic       AudioOpKind = "fadeMusicTo"
	AudioPlaySound       AudioOpKind = "playSound"
	AudioMute            AudioOpKind = "mute"
	AudioUnmute          AudioOpKind = "unmute"
	AudioToggleMute      AudioOpKind = "toggleMute"
	AudioSetMasterVolume AudioOpKind = "setMasterVolume"
)

// AudioOp is one script-issued audio call. Fields not used by Op are
// ignored.
type AudioOp struct {
	Op       AudioOpKind `json:"op"`
	Channel  string      `json:"channel,omitempty"`
	Asset    string      `json:"asset,omitempty"`
	Volume   float64     `json:"volume,omitempty"`
	Loop     bool        `json:"loop,omitempty"`
	Duration float64     `json:"duration,omitempty"`
}

// ApplyOps runs ops in order.
func (e *AudioEngine) ApplyOps(ops []AudioOp) {
	for _, op := range ops {
		switch op.Op {
		case AudioCreateChannel:
			e.CreateChannel(op.Channel)
		case AudioDestroyChannel:
			e.DestroyChannel(op.Channel)
		case AudioPlay:
			e.PlayOnChannel(op.Channel, op.Asset, op.Volume, op.Loop)
		case AudioStop:
			e.StopChannel(op.Channel)
		case AudioPause:
			e.PauseChannel(op.Channel)
		case AudioResume:
			e.ResumeChannel(op.Channel)
		case AudioSetVolume:
			e.SetChannelVolume(op.Channel, op.Volume)
		case AudioFade:
			e.FadeChannelTo(op.Channel, op.Volume, op.Duration)
		case AudioPlayMusic:
			e.PlayMusic(op.Asset, op.Volume, op.Loop)
		case AudioStopMusic:
			e.StopMusic()
		case AudioPauseMusic:
			e.PauseMusic()
		case AudioResumeMusic:
			e.ResumeMusic()
		case AudioSetMusicVolume:
			e.SetMusicVolume(op.Volume)
		case AudioFadeMusic:
			e.FadeMusicTo(op.Volume, op.Duration)
		case AudioPlaySound:
			e.PlaySound(op.Asset, op.Volume)
		case AudioMute:
			e.Mute()
		case AudioUnmute:
			e.Unmute()
		case AudioToggleMute:
			e.ToggleMute()
		case AudioSetMasterVolume:
			e.SetMasterVolume(op.Volume)
		default:
			Logger().Warn("unknown audio op", zap.String("op", string(op.Op)))
		}
	}
}

// State returns a snapshot of the mixer.
func (e *AudioEngine) State() MixerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := MixerSnapshot{
		Available:    e.backend != nil,
		Muted:        e.muted,
		MasterVolume: e.master,
		Channels:     make(map[string]ChannelSnapshot, len(e.channels)),
	}
	if e.backend == nil {
		return snap
	}
	snap.Music = e.music.snapshot()
	for name, ch := range e.channels {
		snap.Channels[name] = ch.snapshot()
	}
	return snap
}

func (ch *channel) snapshot() ChannelSnapshot {
	s := ChannelSnapshot{
		Playing: ch.isPlaying(),
		Volume:  ch.volume,
		Gain:    ch.gain,
		Asset:   ch.asset,
		Loop:    ch.loop,
		Fading:  ch.fade != nil,
	}
	if ch.sound != nil {
		d := ch.sound.Duration()
		s.Duration = d.Seconds()
		pos := ch.pausedAt
		if ch.playing && ch.voice != nil {
			pos = ch.voice.Position()
		}
		if d > 0 && ch.loop {
			pos %= d
		}
		s.CurrentTime = pos.Seconds()
	}
	return s
}
