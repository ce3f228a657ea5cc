// Package config loads runtime settings for the obrafield client: defaults,
// then an optional config.yaml, then OBRAFIELD_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	keyServerURL    = "server_url"
	keyDatabasePath = "database_path"
	keyHTTPTimeout  = "http_timeout"
	keyProbeTimeout = "probe_timeout"
	keyCacheTTL     = "cache_ttl"
	keyLogFile      = "log_file"
	keyLogLevel     = "log_level"
	keyDeviceID     = "device_id"
)

// Config holds the client's runtime settings.
type Config struct {
	// ServerURL is the base URL of the back office API.
	ServerURL string

	// DatabasePath is the local store location.
	DatabasePath string

	// HTTPTimeout bounds individual API calls; ProbeTimeout bounds the
	// connectivity check, which should give up much sooner.
	HTTPTimeout  time.Duration
	ProbeTimeout time.Duration

	// CacheTTL is the freshness window of the measurement read cache.
	CacheTTL time.Duration

	LogFile  string
	LogLevel string

	// DeviceID identifies this device to the server; generated once and
	// persisted in the config directory.
	DeviceID string
}

// Load reads configuration from dir, falling back to defaults for anything
// unset. The directory is created on first run, along with a generated
// device id.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	v := viper.New()
	v.SetDefault(keyServerURL, "http://localhost:8000/api")
	v.SetDefault(keyDatabasePath, filepath.Join(dir, "obrafield.db"))
	v.SetDefault(keyHTTPTimeout, 15*time.Second)
	v.SetDefault(keyProbeTimeout, 3*time.Second)
	v.SetDefault(keyCacheTTL, 5*time.Minute)
	v.SetDefault(keyLogFile, filepath.Join(dir, "obrafield.log"))
	v.SetDefault(keyLogLevel, "info")

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("OBRAFIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config.yaml just means defaults.
	}

	deviceID, err := ensureDeviceID(dir, v.GetString(keyDeviceID))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerURL:    v.GetString(keyServerURL),
		DatabasePath: v.GetString(keyDatabasePath),
		HTTPTimeout:  v.GetDuration(keyHTTPTimeout),
		ProbeTimeout: v.GetDuration(keyProbeTimeout),
		CacheTTL:     v.GetDuration(keyCacheTTL),
		LogFile:      v.GetString(keyLogFile),
		LogLevel:     v.GetString(keyLogLevel),
		DeviceID:     deviceID,
	}, nil
}

// ensureDeviceID returns the configured device id, or mints and persists one
// next to the config file on first run.
func ensureDeviceID(dir, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	path := filepath.Join(dir, "device_id")
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
