package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/lwp3hub/pkg/lwp3/config"
)

// loadConfig resolves the effective Config for a command invocation:
// --config file if given, library defaults otherwise, then command-line
// flags overlaid on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
		}
		cfg.LogLevel = parsed
	}
	if timeout, _ := cmd.Flags().GetDuration("scan-timeout"); timeout > 0 {
		cfg.ScanTimeout = timeout
	}

	return cfg, nil
}
