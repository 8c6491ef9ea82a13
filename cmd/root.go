// ABOUTME: Root command for the pathwayfr CLI
// ABOUTME: Handles global flags, configuration and the shared client setup

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/auth"
	"github.com/Rayanebsh/Pathwayfr/internal/cache"
	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/config"
	"github.com/Rayanebsh/Pathwayfr/internal/logger"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
	"github.com/Rayanebsh/Pathwayfr/internal/storage"
)

var (
	apiURL     string
	configPath string
	jsonOutput bool
	logLevel   string
	logFormat  string
	debug      bool
)

// Exit codes
const (
	exitOK      = 0
	exitUser    = 1
	exitBackend = 2
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "pathwayfr",
	Short: "Terminal client for PathwayFR",
	Long: `pathwayfr is a terminal client for PathwayFR, the orientation platform for
students applying to French universities.

Run "pathwayfr tui" for the full-screen application; every other command is a
one-shot operation printing text or, with --json, JSON.

Environment Variables:
  PATHWAYFR_API_URL      Backend API URL (default: http://127.0.0.1:5000)
  PATHWAYFR_TIMEOUT      HTTP timeout (default: 30s)
  PATHWAYFR_CATALOG_TTL  How long universities and specialities are cached (default: 5m)
  PATHWAYFR_CONFIG_DIR   Directory holding config.yaml, the session and debug.log
  LOG_LEVEL, LOG_FORMAT  Logging (default: info, text)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, format := logSettings(nil)
		logger.Init(level, format)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "Backend API URL (overrides PATHWAYFR_API_URL)")
	flags.StringVar(&configPath, "config", "", "Config file (default: config.yaml in the config directory)")
	flags.BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text, json")
	flags.BoolVar(&debug, "debug", false, "Shorthand for --log-level debug")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// errUsage marks errors the user can fix without the backend
var errUsage = errors.New("invalid usage")

// loadConfig reads the configuration and applies the global flags on top
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	cfg.LogLevel, cfg.LogFormat = logSettings(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	return cfg, nil
}

// logSettings resolves the log level and format: flags first, then cfg
func logSettings(cfg *config.Config) (level, format string) {
	level, format = "info", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	} else {
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			level = strings.ToLower(v)
		}
		if v := os.Getenv("LOG_FORMAT"); v != "" {
			format = strings.ToLower(v)
		}
	}
	if logLevel != "" {
		level = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		format = strings.ToLower(logFormat)
	}
	if debug {
		level = "debug"
	}
	return level, format
}

// env is what a command needs to talk to the backend
type env struct {
	cfg     *config.Config
	sess    *session.Store
	client  *client.Client
	auth    *auth.Service
	catalog *cache.Cache
}

// newEnv loads the configuration and wires the client
func newEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newEnvFrom(cfg), nil
}

// newEnvFrom wires the session file, the catalog cache and the HTTP client
func newEnvFrom(cfg *config.Config) *env {
	sess := session.New(storage.NewFile(cfg.StorePath()))
	catalog := cache.New(cfg.CatalogTTL)
	c := client.New(cfg.APIURL,
		client.WithTimeout(cfg.Timeout),
		client.WithSession(sess),
		client.WithCatalogCache(catalog),
		client.WithLogger(slog.Default()),
	)
	return &env{
		cfg:     cfg,
		sess:    sess,
		client:  c,
		auth:    auth.New(c, sess, auth.WithLogger(slog.Default())),
		catalog: catalog,
	}
}

// Close stops the catalog cache cleanup
func (e *env) Close() {
	e.catalog.Close()
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// exit leaves with code when it is not zero
func exit(code int) {
	if code != exitOK {
		os.Exit(code)
	}
}
