// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// StatsDBPath is the sqlite traffic accounting store.
	StatsDBPath string
	// CatalogPath is the UID to package catalog JSON file.
	CatalogPath string
	// LogPath receives structured logs while the TUI owns the terminal.
	LogPath string
	Debug   bool

	// Speed test endpoint settings.
	SpeedTestBaseURL string
	UserAgent        string
	DownloadBytes    int64
	SampleInterval   time.Duration
	GaugeMaxMBps     float64
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration

	// Interface sampler settings.
	SamplerInterval  time.Duration
	WifiPrefixes     []string
	CellularPrefixes []string

	// UsageAlertBytes triggers a desktop notification when today's total
	// crosses it. Zero disables the alert.
	UsageAlertBytes int64
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		StatsDBPath:      getEnvString("NETSCOPE_STATS_DB", defaultStatsDBPath()),
		CatalogPath:      getEnvString("NETSCOPE_CATALOG", defaultCatalogPath()),
		LogPath:          getEnvString("NETSCOPE_LOG", defaultLogPath()),
		Debug:            getEnvBool("NETSCOPE_DEBUG", false),
		SpeedTestBaseURL: getEnvString("NETSCOPE_SPEEDTEST_URL", DefaultSpeedTestBaseURL),
		UserAgent:        getEnvString("NETSCOPE_USER_AGENT", DefaultUserAgent),
		DownloadBytes:    getEnvInt64("NETSCOPE_DOWNLOAD_BYTES", DefaultDownloadBytes),
		SampleInterval:   getEnvDuration("NETSCOPE_SAMPLE_INTERVAL", DefaultSampleInterval),
		GaugeMaxMBps:     getEnvFloat("NETSCOPE_GAUGE_MAX_MBPS", DefaultGaugeMaxMBps),
		ConnectTimeout:   getEnvDuration("NETSCOPE_CONNECT_TIMEOUT", DefaultConnectTimeout),
		ReadTimeout:      getEnvDuration("NETSCOPE_READ_TIMEOUT", DefaultReadTimeout),
		SamplerInterval:  getEnvDuration("NETSCOPE_SAMPLER_INTERVAL", DefaultSamplerInterval),
		WifiPrefixes:     getEnvList("NETSCOPE_WIFI_IFACES", DefaultWifiPrefixes),
		CellularPrefixes: getEnvList("NETSCOPE_CELLULAR_IFACES", DefaultCellularPrefixes),
		UsageAlertBytes:  getEnvInt64("NETSCOPE_USAGE_ALERT_BYTES", 0),
	}

	if _, err := url.Parse(cfg.SpeedTestBaseURL); err != nil {
		return nil, fmt.Errorf("invalid NETSCOPE_SPEEDTEST_URL: %w", err)
	}
	if cfg.SampleInterval <= 0 {
		return nil, fmt.Errorf("NETSCOPE_SAMPLE_INTERVAL must be positive")
	}
	if cfg.GaugeMaxMBps <= 0 {
		return nil, fmt.Errorf("NETSCOPE_GAUGE_MAX_MBPS must be positive")
	}

	// Ensure data directories exist
	if err := ensureDir(filepath.Dir(cfg.StatsDBPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.CatalogPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "netscope", ".env"),
			filepath.Join(home, ".netscope", ".env"),
		)
	}

	return paths
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "netscope")
}

func defaultStatsDBPath() string {
	return filepath.Join(configDir(), "traffic.db")
}

func defaultCatalogPath() string {
	return filepath.Join(configDir(), "apps.json")
}

func defaultLogPath() string {
	return filepath.Join(configDir(), "netscope.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an integer environment variable or returns the default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated list or returns the default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
