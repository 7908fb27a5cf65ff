package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"artboard/internal/editor"
	"artboard/internal/history"
	"artboard/internal/render"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	MaxHistory   int     `env:"ARTBOARD_MAX_HISTORY" envDefault:"30"`
	CanvasWidth  int     `env:"ARTBOARD_CANVAS_WIDTH" envDefault:"1024"`
	CanvasHeight int     `env:"ARTBOARD_CANVAS_HEIGHT" envDefault:"700"`
	BrushSize    int     `env:"ARTBOARD_BRUSH_SIZE" envDefault:"5"`
	Color        string  `env:"ARTBOARD_COLOR" envDefault:"#6A5ACD"`
	Background   string  `env:"ARTBOARD_BACKGROUND" envDefault:"#FFFFFF"`
	Picker       string  `env:"ARTBOARD_PICKER" envDefault:"pixel"`
	ExportFormat string  `env:"ARTBOARD_EXPORT_FORMAT" envDefault:"png"`
	ExportScale  float64 `env:"ARTBOARD_EXPORT_SCALE" envDefault:"1"`
	Compress     bool    `env:"ARTBOARD_PROJECT_COMPRESS" envDefault:"true"`
	Password     string  `env:"ARTBOARD_PROJECT_PASSWORD"`
	LogLevel     string  `env:"ARTBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat    string  `env:"ARTBOARD_LOG_FORMAT" envDefault:"text"`

	color      color.RGBA
	background color.RGBA
	picker     editor.PickerMode
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and normalizes the parsed fields.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxHistory < 2 {
		errs = append(errs, fmt.Errorf("ARTBOARD_MAX_HISTORY must be at least 2, got %d", c.MaxHistory))
	}
	if c.MaxHistory > 10*history.DefaultMaxSteps {
		errs = append(errs, fmt.Errorf("ARTBOARD_MAX_HISTORY must be at most %d, got %d", 10*history.DefaultMaxSteps, c.MaxHistory))
	}
	if c.CanvasWidth < 16 || c.CanvasWidth > 8192 {
		errs = append(errs, fmt.Errorf("ARTBOARD_CANVAS_WIDTH must be in [16, 8192], got %d", c.CanvasWidth))
	}
	if c.CanvasHeight < 16 || c.CanvasHeight > 8192 {
		errs = append(errs, fmt.Errorf("ARTBOARD_CANVAS_HEIGHT must be in [16, 8192], got %d", c.CanvasHeight))
	}
	if c.BrushSize < editor.MinBrushSize || c.BrushSize > editor.MaxBrushSize {
		errs = append(errs, fmt.Errorf("ARTBOARD_BRUSH_SIZE must be in [%d, %d], got %d", editor.MinBrushSize, editor.MaxBrushSize, c.BrushSize))
	}

	var err error
	if c.color, err = editor.ParseHexColor(c.Color); err != nil {
		errs = append(errs, fmt.Errorf("ARTBOARD_COLOR: %w", err))
	}
	if c.background, err = editor.ParseHexColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("ARTBOARD_BACKGROUND: %w", err))
	}
	if c.picker, err = editor.ParsePickerMode(c.Picker); err != nil {
		errs = append(errs, fmt.Errorf("ARTBOARD_PICKER: %w", err))
	}
	if c.ExportFormat, err = render.NormalizeFormat(c.ExportFormat); err != nil {
		errs = append(errs, fmt.Errorf("ARTBOARD_EXPORT_FORMAT: %w", err))
	}
	if c.ExportScale <= 0 || c.ExportScale > render.MaxExportScale || math.IsNaN(c.ExportScale) {
		errs = append(errs, fmt.Errorf("ARTBOARD_EXPORT_SCALE must be in (0, %v], got %v", render.MaxExportScale, c.ExportScale))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("ARTBOARD_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func (c *Config) ActiveColor() color.RGBA       { return c.color }
func (c *Config) BackgroundColor() color.RGBA   { return c.background }
func (c *Config) PickerMode() editor.PickerMode { return c.picker }

// SessionOptions maps the configuration onto editor options.
func (c *Config) SessionOptions() []editor.Option {
	return []editor.Option{
		editor.WithMaxHistory(c.MaxHistory),
		editor.WithBrushSize(c.BrushSize),
		editor.WithColor(c.color),
		editor.WithBackground(c.background),
		editor.WithPickerMode(c.picker),
	}
}
