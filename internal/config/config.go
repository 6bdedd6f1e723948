package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Render settings
	Render RenderConfig `yaml:"render"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Asset resolution settings
	Assets AssetConfig `yaml:"assets"`

	// Export settings
	Export ExportConfig `yaml:"export"`

	// Thumbnail settings
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`
}

type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Threads    int    `yaml:"threads"`
}

type AssetConfig struct {
	SearchPaths []string `yaml:"search_paths"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type ThumbnailConfig struct {
	Count int `yaml:"count"`
	Width int `yaml:"width"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
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

	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("render fps must be positive, got %d", c.Render.FPS)
	}
	if c.Thumbnails.Count <= 0 {
		return fmt.Errorf("thumbnail count must be positive, got %d", c.Thumbnails.Count)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Width:  1280,
			Height: 720,
			FPS:    30,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			Threads:    0,
		},
		Assets: AssetConfig{
			SearchPaths: []string{"."},
		},
		Export: ExportConfig{
			Dir: os.TempDir(),
		},
		Thumbnails: ThumbnailConfig{
			Count: 10,
			Width: 160,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./reelkit.yaml",
		"./reelkit.yml",
		filepath.Join(os.Getenv("HOME"), ".reelkit", "config.yaml"),
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
	return defaultConfig()
}
