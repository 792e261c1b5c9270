package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/driftglass/specimen/lifecycle"
)

// fileTable mirrors Table for TOML, with string durations and pointer fields
// so absent keys fall through to the defaults
type fileTable struct {
	PirateFull string               `toml:"pirate_full"`
	PirateFade string               `toml:"pirate_fade"`
	Stages     map[string]fileStage `toml:"stage"`
}

type fileStage struct {
	Duration   string          `toml:"duration"`
	Color      []uint8         `toml:"color"`
	Breathing  *fileBreathing  `toml:"breathing"`
	Vignette   *fileVignette   `toml:"vignette"`
	Scanlines  *fileScanlines  `toml:"scanlines"`
	Blur       *fileBlur       `toml:"blur"`
	TextShadow *fileTextShadow `toml:"text_shadow"`
	Flicker    *fileFlicker    `toml:"flicker"`
}

type fileBreathing struct {
	Speed      *float64 `toml:"speed"`
	OpacityMin *float64 `toml:"opacity_min"`
	OpacityMax *float64 `toml:"opacity_max"`
}

type fileVignette struct {
	Radius  *float64 `toml:"radius"`
	Opacity *float64 `toml:"opacity"`
}

type fileScanlines struct {
	Opacity *float64 `toml:"opacity"`
	Speed   *float64 `toml:"speed"`
}

type fileBlur struct {
	Title  *float64 `toml:"title"`
	Text   *float64 `toml:"text"`
	Pirate *float64 `toml:"pirate"`
}

type fileTextShadow struct {
	Spread    *float64 `toml:"spread"`
	Intensity *float64 `toml:"intensity"`
}

type fileFlicker struct {
	Speed      *float64 `toml:"speed"`
	Brightness *float64 `toml:"brightness"`
}

// Load reads a TOML overlay and applies it on top of the defaults.
// Unknown stage names are rejected rather than silently dropped.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse applies a TOML overlay held in memory
func Parse(b []byte) (*Table, error) {
	var ft fileTable
	if err := toml.Unmarshal(b, &ft); err != nil {
		return nil, fmt.Errorf("parse stage table: %w", err)
	}

	t := Default()

	if err := setDuration(ft.PirateFull, &t.PirateFull); err != nil {
		return nil, fmt.Errorf("pirate_full: %w", err)
	}
	if err := setDuration(ft.PirateFade, &t.PirateFade); err != nil {
		return nil, fmt.Errorf("pirate_fade: %w", err)
	}

	for name, fs := range ft.Stages {
		stage, ok := lifecycle.ParseStage(name)
		if !ok {
			return nil, fmt.Errorf("unknown stage %q in config", name)
		}
		cfg := t.stages[stage]
		if err := applyStage(&cfg, fs); err != nil {
			return nil, fmt.Errorf("stage %q: %w", name, err)
		}
		t.stages[stage] = cfg
	}

	return t, nil
}

func applyStage(cfg *StageConfig, fs fileStage) error {
	if err := setDuration(fs.Duration, &cfg.Duration); err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	if fs.Color != nil {
		if len(fs.Color) != 3 {
			return fmt.Errorf("color must have exactly 3 components, got %d", len(fs.Color))
		}
		cfg.Color = RGB{R: fs.Color[0], G: fs.Color[1], B: fs.Color[2]}
	}

	if fs.Breathing != nil {
		setFloat(fs.Breathing.Speed, &cfg.Breathing.Speed)
		setFloat(fs.Breathing.OpacityMin, &cfg.Breathing.OpacityMin)
		setFloat(fs.Breathing.OpacityMax, &cfg.Breathing.OpacityMax)
	}
	if fs.Vignette != nil {
		setFloat(fs.Vignette.Radius, &cfg.Vignette.Radius)
		setFloat(fs.Vignette.Opacity, &cfg.Vignette.Opacity)
	}
	if fs.Scanlines != nil {
		setFloat(fs.Scanlines.Opacity, &cfg.Scanlines.Opacity)
		setFloat(fs.Scanlines.Speed, &cfg.Scanlines.Speed)
	}
	if fs.Blur != nil {
		setFloat(fs.Blur.Title, &cfg.Blur.Title)
		setFloat(fs.Blur.Text, &cfg.Blur.Text)
		setFloat(fs.Blur.Pirate, &cfg.Blur.Pirate)
	}
	if fs.TextShadow != nil {
		setFloat(fs.TextShadow.Spread, &cfg.TextShadow.Spread)
		setFloat(fs.TextShadow.Intensity, &cfg.TextShadow.Intensity)
	}
	if fs.Flicker != nil {
		setFloat(fs.Flicker.Speed, &cfg.Flicker.Speed)
		setFloat(fs.Flicker.Brightness, &cfg.Flicker.Brightness)
	}
	return nil
}

func setDuration(raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("negative duration %v", d)
	}
	*dst = d
	return nil
}

func setFloat(src *float64, dst *float64) {
	if src != nil {
		*dst = *src
	}
}
