package lantern

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// RunConfig configures the window, audio and script environment created by
// Run and NewRuntime.
type RunConfig struct {
	// Title is the window title.
	Title string `env:"TITLE" envDefault:"lantern"`
	// Width and Height size both the window and the raster surface.
	Width  int `env:"WIDTH" envDefault:"640"`
	Height int `env:"HEIGHT" envDefault:"480"`
	// ShowFPS overlays the actual FPS/TPS in the window corner.
	ShowFPS bool `env:"SHOW_FPS"`
	// SampleRate of the audio context. Zero disables audio.
	SampleRate int `env:"SAMPLE_RATE" envDefault:"44100"`
	// ScriptPath is the path of the running script; relative asset paths
	// resolve against its directory.
	ScriptPath string `env:"SCRIPT_PATH" envDefault:"/main.js"`
	// AssetRoot is the host directory that backs the virtual filesystem.
	AssetRoot string `env:"ASSET_ROOT" envDefault:"."`
	// TickTimeout bounds a single script tick. Zero means no limit.
	TickTimeout time.Duration `env:"TICK_TIMEOUT" envDefault:"2s"`
	// Debug enables per-frame stats logging.
	Debug bool `env:"DEBUG"`
	// ScreenshotDir is where Runtime.Screenshot writes PNG files.
	ScreenshotDir string `env:"SCREENSHOT_DIR" envDefault:"screenshots"`
}

// LoadRunConfig reads a RunConfig from LANTERN_* environment variables,
// applying defaults for anything unset.
func LoadRunConfig() (RunConfig, error) {
	var cfg RunConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LANTERN_"}); err != nil {
		return RunConfig{}, fmt.Errorf("load run config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func (c RunConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", ErrInvalidArgument, c.Width, c.Height)
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidArgument, c.SampleRate)
	}
	return nil
}
