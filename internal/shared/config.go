package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Device     DeviceConfig     `toml:"device"`
	Repository RepositoryConfig `toml:"repository"`
	Library    LibraryConfig    `toml:"library"`
	Share      ShareConfig      `toml:"share"`
	Batch      BatchConfig      `toml:"batch"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// DeviceConfig contains the remote camera endpoint settings.
type DeviceConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxImageBytes  int64  `toml:"max_image_bytes"`
}

// Timeout returns the transport timeout for device calls.
func (d DeviceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// RepositoryConfig contains the local photo directory settings.
type RepositoryConfig struct {
	Path      string `toml:"path"`
	Prefix    string `toml:"prefix"`
	Extension string `toml:"extension"`
}

// LibraryConfig selects the external photo library that exports go to.
type LibraryConfig struct {
	Kind string   `toml:"kind"`
	Path string   `toml:"path"`
	S3   S3Config `toml:"s3"`
}

// S3Config contains S3-compatible bucket settings.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// ShareConfig contains the directory share archives are written to.
type ShareConfig struct {
	Path string `toml:"path"`
}

// BatchConfig contains worker pool settings for batch operations.
type BatchConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// ServerConfig contains device simulator settings.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	SourceDir string `toml:"source_dir"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

const (
	LibraryNone      = "none"
	LibraryDirectory = "directory"
	LibraryS3        = "s3"
)

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays MOSAIC_* environment variables onto the config.
//
// A .env file in the working directory is loaded first when present; variables already set in the process win.
func ApplyEnv(c *Config) {
	_ = godotenv.Load()

	setString(&c.Device.BaseURL, "MOSAIC_DEVICE_URL")
	setInt(&c.Device.TimeoutSeconds, "MOSAIC_DEVICE_TIMEOUT")
	setString(&c.Repository.Path, "MOSAIC_REPOSITORY_PATH")
	setString(&c.Library.Kind, "MOSAIC_LIBRARY_KIND")
	setString(&c.Library.Path, "MOSAIC_LIBRARY_PATH")
	setString(&c.Library.S3.Endpoint, "MOSAIC_S3_ENDPOINT")
	setString(&c.Library.S3.Bucket, "MOSAIC_S3_BUCKET")
	setString(&c.Library.S3.AccessKey, "MOSAIC_S3_ACCESS_KEY")
	setString(&c.Library.S3.SecretKey, "MOSAIC_S3_SECRET_KEY")
	setInt(&c.Batch.Workers, "MOSAIC_BATCH_WORKERS")
	setString(&c.Log.Level, "MOSAIC_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Device.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: device.base_url %q is not an absolute URL", ErrInvalidConfig, c.Device.BaseURL)
	}
	if c.Device.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: device.timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.Repository.Path == "" {
		return fmt.Errorf("%w: repository.path is required", ErrInvalidConfig)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch.workers cannot be negative", ErrInvalidConfig)
	}

	switch c.Library.Kind {
	case "", LibraryNone:
	case LibraryDirectory:
		if c.Library.Path == "" {
			return fmt.Errorf("%w: library.path is required for directory libraries", ErrInvalidConfig)
		}
	case LibraryS3:
		if c.Library.S3.Endpoint == "" || c.Library.S3.Bucket == "" {
			return fmt.Errorf("%w: library.s3 endpoint and bucket are required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown library kind %q", ErrInvalidConfig, c.Library.Kind)
	}

	return nil
}
