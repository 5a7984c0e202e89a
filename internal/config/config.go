// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/ironsheep/media-utils/internal/codec"
	"github.com/ironsheep/media-utils/internal/storage"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "MEDIA_UTILS_"

// Config holds all configuration for the application.
type Config struct {
	// External tools
	FFmpegPath  string `env:"FFMPEG_PATH, default=ffmpeg" validate:"required" json:"ffmpeg_path"`
	FFprobePath string `env:"FFPROBE_PATH, default=ffprobe" validate:"required" json:"ffprobe_path"`

	// Scratch files for multi-step transcodes; empty means os.TempDir()/media-utils
	TempDir string `env:"TEMP_DIR" json:"temp_dir,omitempty"`

	// Encoder settings
	JPEGQuality  int  `env:"JPEG_QUALITY, default=90" validate:"min=1,max=100" json:"jpeg_quality"`
	WebPQuality  int  `env:"WEBP_QUALITY, default=90" validate:"min=0,max=100" json:"webp_quality"`
	WebPLossless bool `env:"WEBP_LOSSLESS, default=true" json:"webp_lossless"`

	// Optional S3 settings
	S3Region          string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint        string `env:"S3_ENDPOINT" validate:"omitempty,url" json:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" validate:"oneof=text json" json:"log_format"`
	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error" json:"log_level"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l, applying EnvPrefix, and
// validates the result.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Region != ""
}

// S3Config returns the settings for storage.NewS3Storage.
func (c *Config) S3Config() storage.S3Config {
	return storage.S3Config{
		Region:          c.S3Region,
		Endpoint:        c.S3Endpoint,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
	}
}

// CodecOptions returns the encoder settings.
func (c *Config) CodecOptions() codec.Options {
	return codec.Options{
		JPEGQuality:  c.JPEGQuality,
		WebPQuality:  float32(c.WebPQuality),
		WebPLossless: c.WebPLossless,
	}
}

// NewLogger creates a structured logger writing to w. When LogFormat is
// "json" it emits JSON lines, otherwise human-readable text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with credentials omitted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{FFmpegPath: %s, FFprobePath: %s, TempDir: %s, JPEGQuality: %d, WebPQuality: %d, WebPLossless: %t, S3Region: %s, S3Endpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.FFmpegPath,
		c.FFprobePath,
		c.TempDir,
		c.JPEGQuality,
		c.WebPQuality,
		c.WebPLossless,
		c.S3Region,
		c.S3Endpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
