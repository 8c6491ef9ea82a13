// ABOUTME: Configuration loader for the pathwayfr client
// ABOUTME: Merges defaults, config.yaml, .env and environment variables

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:5000"
	DefaultTimeout    = 30 * time.Second
	DefaultCatalogTTL = 5 * time.Minute

	appDirName = "pathwayfr"
	fileName   = "config.yaml"
)

// Config holds every setting the client needs
type Config struct {
	APIURL     string        `yaml:"api_url" validate:"required,url"`
	Timeout    time.Duration `yaml:"-" validate:"min=1s"`
	CatalogTTL time.Duration `yaml:"-" validate:"min=0s"`
	LogLevel   string        `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat  string        `yaml:"log_format" validate:"oneof=text json"`
	ConfigDir  string        `yaml:"-" validate:"required"`
	NerdFonts  bool          `yaml:"nerd_fonts"`

	// Durations are written as strings ("30s") in the YAML file
	RawTimeout    string `yaml:"timeout" validate:"-"`
	RawCatalogTTL string `yaml:"catalog_ttl" validate:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		APIURL:     DefaultAPIURL,
		Timeout:    DefaultTimeout,
		CatalogTTL: DefaultCatalogTTL,
		LogLevel:   "info",
		LogFormat:  "text",
		ConfigDir:  DefaultConfigDir(),
	}
}

// DefaultConfigDir returns the config directory following the XDG convention
func DefaultConfigDir() string {
	if dir := os.Getenv("PATHWAYFR_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName)
	}
	return filepath.Join(home, ".config", appDirName)
}

// Load builds the configuration. An empty path means config.yaml inside the
// config directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("Ignoring unreadable .env file", "error", err)
	}

	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.ConfigDir, fileName)
	}
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	cfg.APIURL = getEnv("PATHWAYFR_API_URL", cfg.APIURL)
	cfg.Timeout = getEnvDuration("PATHWAYFR_TIMEOUT", cfg.Timeout)
	cfg.CatalogTTL = getEnvDuration("PATHWAYFR_CATALOG_TTL", cfg.CatalogTTL)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))
	cfg.NerdFonts = getEnvBool("PATHWAYFR_NERD_FONTS", cfg.NerdFonts)
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in %s: %w", c.RawTimeout, path, err)
		}
		c.Timeout = d
	}
	if c.RawCatalogTTL != "" {
		d, err := time.ParseDuration(c.RawCatalogTTL)
		if err != nil {
			return fmt.Errorf("invalid catalog_ttl %q in %s: %w", c.RawCatalogTTL, path, err)
		}
		c.CatalogTTL = d
	}
	return nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// StorePath returns the path of the persisted session file
func (c *Config) StorePath() string {
	return filepath.Join(c.ConfigDir, "session.json")
}

// LogPath returns the path of the TUI debug log
func (c *Config) LogPath() string {
	return filepath.Join(c.ConfigDir, "debug.log")
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
