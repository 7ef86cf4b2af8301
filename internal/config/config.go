package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	OutputDir   string `yaml:"output_dir"`
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Layout   LayoutConfig   `yaml:"layout"`
	Captions CaptionConfig  `yaml:"captions"`
	Timeline TimelineConfig `yaml:"timeline"`
	CTA      CTAConfig      `yaml:"cta"`
	Grade    GradeConfig    `yaml:"grade"`
	Audio    AudioConfig    `yaml:"audio"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
}

type FFmpegConfig struct {
	Threads int     `yaml:"threads"`
	Preset  string  `yaml:"preset"`
	CRF     int     `yaml:"crf"`
	FPS     float64 `yaml:"fps"`
	PixFmt  string  `yaml:"pix_fmt"`
	// Inputs above this size are re-encoded to 720px wide before Pass 1
	CompressAboveMB int `yaml:"compress_above_mb"`
}

type LayoutConfig struct {
	FontPath   string  `yaml:"font_path" env:"PROMOREEL_FONT"`
	CaptionY   float64 `yaml:"caption_y"`
	CTAY       float64 `yaml:"cta_y"`
	SafeBottom float64 `yaml:"safe_bottom"`
	MaxLines   int     `yaml:"max_lines"`
}

type CaptionConfig struct {
	Count          int      `yaml:"count"`
	Align          string   `yaml:"align"`
	Palette        []string `yaml:"palette"`
	LogoOnOverlays bool     `yaml:"logo_on_overlays"`
	MaxWords       int      `yaml:"max_words"`
}

type TimelineConfig struct {
	TargetDuration float64 `yaml:"target_duration"`
	MinSegment     float64 `yaml:"min_segment"`
	MaxSegment     float64 `yaml:"max_segment"`
	MinSource      float64 `yaml:"min_source"`
	Transition     string  `yaml:"transition"`
	FadeDuration   float64 `yaml:"fade_duration"`
	MaxPhotos      int     `yaml:"max_photos"`
	ZoomEnd        float64 `yaml:"zoom_end"`
	Resolution     string  `yaml:"resolution"`
}

type CTAConfig struct {
	Label    string  `yaml:"label"`
	Duration float64 `yaml:"duration"`
}

type GradeConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
	Sharpness  float64 `yaml:"sharpness"`
}

type AudioConfig struct {
	BGMVolume      float64 `yaml:"bgm_volume"`
	OriginalVolume float64 `yaml:"original_volume"`
	SampleRate     int     `yaml:"sample_rate"`
	Channels       int     `yaml:"channels"`
}

type StoreConfig struct {
	Backend     string        `yaml:"backend"` // file, memory, redis
	RedisAddr   string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPrefix string        `yaml:"redis_prefix"`
	Retention   time.Duration `yaml:"retention"`
	PruneEvery  string        `yaml:"prune_every"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"PROMOREEL_ADDR"`
	// MediaRoot confines every file path an API request may name
	MediaRoot string `yaml:"media_root" env:"PROMOREEL_MEDIA_ROOT"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges that would otherwise fail deep inside a render
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.FFmpeg.FPS <= 0 {
		return fmt.Errorf("config: ffmpeg.fps must be > 0")
	}
	if c.Timeline.MinSegment <= 0 || c.Timeline.MaxSegment < c.Timeline.MinSegment {
		return fmt.Errorf("config: timeline segment bounds invalid (%.2f..%.2f)",
			c.Timeline.MinSegment, c.Timeline.MaxSegment)
	}
	if c.Layout.SafeBottom <= 0 || c.Layout.SafeBottom > 1 {
		return fmt.Errorf("config: layout.safe_bottom must be in (0,1]")
	}
	switch c.Store.Backend {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		WorkDir:     "./work",
		OutputDir:   "./output",
		TempDir:     os.TempDir(),
		Concurrency: 4,
		FFmpeg: FFmpegConfig{
			Threads:         0,
			Preset:          "medium",
			CRF:             23,
			FPS:             24,
			PixFmt:          "yuv420p",
			CompressAboveMB: 500,
		},
		Layout: LayoutConfig{
			CaptionY:   0.52,
			CTAY:       0.66,
			SafeBottom: 0.78,
			MaxLines:   4,
		},
		Captions: CaptionConfig{
			Count:    3,
			Align:    "center",
			Palette:  []string{"White", "Silver", "Champagne", "Rose Gold"},
			MaxWords: 8,
		},
		Timeline: TimelineConfig{
			TargetDuration: 30,
			MinSegment:     4,
			MaxSegment:     6,
			MinSource:      2,
			Transition:     "crossfade",
			FadeDuration:   0.5,
			MaxPhotos:      6,
			ZoomEnd:        1.10,
			Resolution:     "720p",
		},
		CTA: CTAConfig{
			Label:    "HUBUNGI :",
			Duration: 4,
		},
		Grade: GradeConfig{
			Enabled:    true,
			Brightness: 1.05,
			Contrast:   1.10,
			Saturation: 1.05,
			Sharpness:  1.10,
		},
		Audio: AudioConfig{
			BGMVolume:      0.5,
			OriginalVolume: 0.8,
			SampleRate:     48000,
			Channels:       2,
		},
		Store: StoreConfig{
			Backend:     "file",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "promoreel:artifact:",
			Retention:   24 * time.Hour,
			PruneEvery:  "@every 10m",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			MediaRoot: "media",
		},
	}
}

// applyEnv overrides a handful of deployment-specific values from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("PROMOREEL_FONT"); v != "" {
		c.Layout.FontPath = v
	}
	if v := os.Getenv("PROMOREEL_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("PROMOREEL_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("PROMOREEL_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("PROMOREEL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PROMOREEL_MEDIA_ROOT"); v != "" {
		c.Server.MediaRoot = v
	}
	if v := os.Getenv("PROMOREEL_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrency = n
		}
	}
}

func findConfigFile() string {
	candidates := []string{
		"./promoreel.yaml",
		"./promoreel.yml",
		filepath.Join(os.Getenv("HOME"), ".promoreel", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
