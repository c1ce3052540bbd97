package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Config holds all configuration for the flow monitor
type Config struct {
	APIURL          string        `yaml:"api_url"`
	Timeout         time.Duration `yaml:"timeout"`
	FlowTimeout     time.Duration `yaml:"flow_timeout"`
	FlowLimit       int           `yaml:"flow_limit"`
	PageSize        int           `yaml:"page_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	TickResolution  time.Duration `yaml:"tick_resolution"`
	Port            int           `yaml:"port"`
	ReportDir       string        `yaml:"report_dir"`
	LogLevel        string        `yaml:"log_level"`
}

// PageSizes are the page sizes offered by the dashboard
var PageSizes = []int{5, 10, 20, 50}

// RefreshIntervals are the refresh intervals, in seconds, offered by the dashboard
var RefreshIntervals = []int{3, 5, 10, 15, 30}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		APIURL:          "http://localhost:8000",
		Timeout:         5 * time.Second,
		FlowTimeout:     10 * time.Second,
		FlowLimit:       1000,
		PageSize:        10,
		RefreshInterval: 5 * time.Second,
		TickResolution:  500 * time.Millisecond,
		Port:            8080,
		ReportDir:       "reports",
		LogLevel:        "info",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url must be an absolute URL, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FlowTimeout <= 0 {
		return fmt.Errorf("flow timeout must be positive")
	}
	if c.FlowLimit <= 0 {
		return fmt.Errorf("flow limit must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval must be at least 1s")
	}
	if c.TickResolution <= 0 {
		return fmt.Errorf("tick resolution must be positive")
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report directory cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// IntervalSeconds returns the refresh interval in whole seconds, at least 1
func (c *Config) IntervalSeconds() int {
	return max(int(c.RefreshInterval/time.Second), 1)
}

// ParseLogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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
