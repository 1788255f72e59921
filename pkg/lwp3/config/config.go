// Package config holds the ambient settings a hub session and the
// lwp3ctl CLI are built from: timeouts, queue depths and output
// preferences, loadable from a YAML file with library-applied defaults.
package config

import (
	"fmt"
	"os"
	"time"

	defaults "github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by a hub session and the CLI that
// drives it.
type Config struct {
	LogLevel logrus.Level `yaml:"-"`
	// LogLevelName is the YAML-facing form of LogLevel ("debug", "info",
	// "warn", "error"); Load parses it into LogLevel.
	LogLevelName string `yaml:"log_level" default:"info"`

	// ScanTimeout bounds how long Connect spends looking for an
	// advertising hub before giving up.
	ScanTimeout time.Duration `yaml:"scan_timeout" default:"10s"`
	// ConnectTimeout bounds the GATT connect handshake once a matching
	// advertisement is found.
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"10s"`
	// DeviceTimeout bounds how long hub construction waits for the
	// expected peripherals to attach.
	DeviceTimeout time.Duration `yaml:"device_timeout" default:"10s"`
	// RequestTimeout bounds every synchronous request/reply exchange
	//; the baseline protocol has no timeout of its own.
	RequestTimeout time.Duration `yaml:"request_timeout" default:"2s"`

	// NotifyQueueDepth is the per-peripheral inbound value queue depth
	// (1: the single-slot, drop-newest queue). No code in this module
	// reads it; the peripheral package fixes its queue at one value and
	// lwp3ctl does not report it.
	NotifyQueueDepth int `yaml:"notify_queue_depth" default:"1"`

	// OutputFormat names an output style: table, json or csv. lwp3ctl
	// does not read this field.
	OutputFormat string `yaml:"output_format" default:"table"`

	// HubModel names a hub-model policy: "movehub", "technichub", or "".
	// lwp3ctl does not read this field; it takes the model from its
	// --hub-model flag, where an empty name selects movehub.
	HubModel string `yaml:"hub_model" default:""`

	// ProhibitedAddrs excludes BLE MAC addresses already claimed by
	// another session in this process from a scan/connect attempt.
	ProhibitedAddrs []string `yaml:"prohibited_addrs"`
}

// DefaultConfig returns a Config populated entirely from the `default`
// struct tags above.
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	cfg.LogLevel = logrus.InfoLevel
	return cfg
}

// Load reads a YAML config file, overlaying it on DefaultConfig so that
// any field the file omits keeps its library-applied default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevelName)
	if err != nil {
		return nil, fmt.Errorf("config: log_level %q: %w", cfg.LogLevelName, err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

// NewLogger builds a *logrus.Logger at the configured level, formatted
// the way every other component in this module expects its logs.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	return logger
}

// ValidOutputFormats are the output_format values ValidateOutputFormat
// accepts.
var ValidOutputFormats = []string{"table", "json", "csv"}

// ValidateOutputFormat reports whether format is one of ValidOutputFormats.
func ValidateOutputFormat(format string) bool {
	for _, f := range ValidOutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
