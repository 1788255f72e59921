package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.DeviceTimeout)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.NotifyQueueDepth)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, "", cfg.HubModel)
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel logrus.Level
	}{
		{name: "creates logger with debug level", logLevel: logrus.DebugLevel},
		{name: "creates logger with info level", logLevel: logrus.InfoLevel},
		{name: "creates logger with warn level", logLevel: logrus.WarnLevel},
		{name: "creates logger with error level", logLevel: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.logLevel, logger.GetLevel())

			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestConfig_CustomValues(t *testing.T) {
	cfg := &Config{
		LogLevel:       logrus.DebugLevel,
		ScanTimeout:    5 * time.Second,
		DeviceTimeout:  60 * time.Second,
		RequestTimeout: time.Second,
		OutputFormat:   "json",
	}

	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 60*time.Second, cfg.DeviceTimeout)
	assert.Equal(t, "json", cfg.OutputFormat)

	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		valid  bool
	}{
		{name: "table format is valid", format: "table", valid: true},
		{name: "json format is valid", format: "json", valid: true},
		{name: "csv format is valid", format: "csv", valid: true},
		{name: "unknown format", format: "xml", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateOutputFormat(tt.format))
		})
	}
}

func TestConfig_ZeroValues(t *testing.T) {
	cfg := &Config{}

	logger := cfg.NewLogger()
	assert.NotNil(t, logger)
	assert.Equal(t, logrus.PanicLevel, logger.GetLevel())

	assert.Equal(t, time.Duration(0), cfg.ScanTimeout)
	assert.Equal(t, time.Duration(0), cfg.DeviceTimeout)
	assert.Equal(t, "", cfg.OutputFormat)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lwp3.yaml")
	body := `
log_level: debug
scan_timeout: 15s
output_format: json
hub_model: movehub
prohibited_addrs:
  - "AA:BB:CC:DD:EE:FF"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.ScanTimeout)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "movehub", cfg.HubModel)
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:FF"}, cfg.ProhibitedAddrs)

	// Fields the file didn't set keep their library-applied defaults.
	assert.Equal(t, 10*time.Second, cfg.DeviceTimeout)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.NotifyQueueDepth)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lwp3.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: not-a-level\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = DefaultConfig()
	}
}

func BenchmarkConfig_NewLogger(b *testing.B) {
	cfg := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.NewLogger()
	}
}
