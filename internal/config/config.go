// Package config resolves startup configuration into a validated library
// reference. Resolution never touches the network.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// ErrConfigInvalid is wrapped by every resolution failure.
var ErrConfigInvalid = errors.New("invalid configuration")

// Configuration keys. Each is bound to the environment variable listed in envBindings.
const (
	KeyLocal             = "local"
	KeyLibraryID         = "library_id"
	KeyLibraryType       = "library_type"
	KeyAPIKey            = "api_key"
	KeyAPIURL            = "api_url"
	KeyLocalURL          = "local_url"
	KeyTimeout           = "timeout"
	KeyRequestsPerSecond = "requests_per_second"
	KeyLogOutput         = "log.output"
	KeyLogLevel          = "log.level"
	KeyLogFile           = "log.file"
)

const (
	DefaultAPIURL   = "https://api.zotero.org"
	DefaultLocalURL = "http://localhost:23119/api"
	DefaultTimeout  = 30 * time.Second

	// Zotero publishes no fixed quota; this keeps a single client well clear of 429s.
	DefaultRemoteRequestsPerSecond = 4.0
)

var envBindings = map[string]string{
	KeyLocal:             "ZOTERO_LOCAL",
	KeyLibraryID:         "ZOTERO_LIBRARY_ID",
	KeyLibraryType:       "ZOTERO_LIBRARY_TYPE",
	KeyAPIKey:            "ZOTERO_API_KEY",
	KeyAPIURL:            "ZOTERO_API_URL",
	KeyLocalURL:          "ZOTERO_LOCAL_URL",
	KeyTimeout:           "ZOTERO_TIMEOUT",
	KeyRequestsPerSecond: "ZOTERO_REQUESTS_PER_SECOND",
	KeyLogOutput:         "LOG_OUTPUT",
	KeyLogLevel:          "LOG_LEVEL",
	KeyLogFile:           "LOG_FILE_PATH",
}

// Config is the resolved, read-only startup configuration.
type Config struct {
	Library models.LibraryReference

	// BaseURL is the API root for the selected mode (remote or local).
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outbound requests; 0 means unlimited.
	RequestsPerSecond float64

	Log logger.LogConfig
}

// New returns a viper instance with defaults and environment bindings applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLibraryType, string(models.LibraryTypeUser))
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyLocalURL, DefaultLocalURL)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	for key, env := range envBindings {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional config file and the environment, then resolves.
// With an empty configFile it looks for zotero-mcp.{yaml,toml,json} in the
// working directory and in ~/.config/zotero-mcp; a missing file is fine.
func Load(configFile string) (*Config, error) {
	v := New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("zotero-mcp")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "zotero-mcp"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}
	return Resolve(v)
}

// Resolve validates v and produces a Config. Local mode needs nothing else;
// remote mode needs a numeric library id and an API key.
func Resolve(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Log: logger.LogConfig{
			Output:   v.GetString(KeyLogOutput),
			Level:    v.GetString(KeyLogLevel),
			FilePath: v.GetString(KeyLogFile),
		},
	}

	timeout, err := time.ParseDuration(v.GetString(KeyTimeout))
	if err != nil || timeout <= 0 {
		return nil, invalid(KeyTimeout, "must be a positive duration such as 30s, got %q", v.GetString(KeyTimeout))
	}
	cfg.Timeout = timeout

	if isTruthy(v.GetString(KeyLocal)) {
		// Library id, type and key are ignored for the local API.
		cfg.Library = models.LibraryReference{
			Mode:        models.ModeLocal,
			LibraryID:   models.LocalLibraryID,
			LibraryType: models.LibraryTypeUser,
		}
		cfg.BaseURL = strings.TrimRight(v.GetString(KeyLocalURL), "/")
	} else {
		library, err := resolveRemote(v)
		if err != nil {
			return nil, err
		}
		cfg.Library = library
		cfg.BaseURL = strings.TrimRight(v.GetString(KeyAPIURL), "/")
		cfg.RequestsPerSecond = DefaultRemoteRequestsPerSecond
	}

	if cfg.BaseURL == "" {
		return nil, invalid(KeyAPIURL, "base URL must not be empty")
	}

	if v.IsSet(KeyRequestsPerSecond) {
		rps, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(KeyRequestsPerSecond)), 64)
		if err != nil || rps < 0 {
			return nil, invalid(KeyRequestsPerSecond, "must be a non-negative number, got %q", v.GetString(KeyRequestsPerSecond))
		}
		cfg.RequestsPerSecond = rps
	}

	return cfg, nil
}

func resolveRemote(v *viper.Viper) (models.LibraryReference, error) {
	libraryID := strings.TrimSpace(v.GetString(KeyLibraryID))
	apiKey := strings.TrimSpace(v.GetString(KeyAPIKey))

	var missing []string
	if libraryID == "" {
		missing = append(missing, envBindings[KeyLibraryID])
	}
	if apiKey == "" {
		missing = append(missing, envBindings[KeyAPIKey])
	}
	if len(missing) > 0 {
		return models.LibraryReference{}, fmt.Errorf("%w: missing %s (required unless ZOTERO_LOCAL is set)",
			ErrConfigInvalid, strings.Join(missing, " and "))
	}

	if _, err := strconv.ParseUint(libraryID, 10, 64); err != nil {
		return models.LibraryReference{}, invalid(KeyLibraryID, "must be numeric, got %q", libraryID)
	}

	libraryType := models.LibraryType(strings.ToLower(strings.TrimSpace(v.GetString(KeyLibraryType))))
	switch libraryType {
	case "":
		libraryType = models.LibraryTypeUser
	case models.LibraryTypeUser, models.LibraryTypeGroup:
	default:
		return models.LibraryReference{}, invalid(KeyLibraryType, "must be 'user' or 'group', got %q", libraryType)
	}

	return models.LibraryReference{
		Mode:        models.ModeRemote,
		LibraryID:   libraryID,
		LibraryType: libraryType,
		APIKey:      apiKey,
	}, nil
}

func invalid(key, format string, args ...any) error {
	name := key
	if env, ok := envBindings[key]; ok {
		name = env
	}
	return fmt.Errorf("%w: %s %s", ErrConfigInvalid, name, fmt.Sprintf(format, args...))
}

// isTruthy accepts the spellings users put in MCP client env blocks.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true
	default:
		return false
	}
}
