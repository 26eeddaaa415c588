// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/config"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// Alternative links
	simulate    bool
	replayPath  string
	capturePath string

	// Settings
	configPath string
	logLevel   string
	logFile    string

	// Resolved at startup from defaults, config file and flags
	settings  = config.Default()
	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "kapanel",
	Short: "KA3005P bench power supply control panel",
	Long: `Kapanel - control a KORAD/RND KA3005P bench power supply over its USB serial port.

Without a subcommand the interactive panel is started. The supply is found
by its USB vendor/product ID (0416:5011) unless --port is given.

Connection modes:
  Discovery: (default) first serial port matching the vendor/product ID
  Serial:    --port /dev/ttyACM0 [--baud 9600]
  Simulated: --simulate (in-memory supply, no hardware)
  Replay:    --replay session.kacap (answers from a capture file)

Traffic can be recorded with --capture <file> and inspected with capture_log.

Settings are read from $XDG_CONFIG_HOME/kapanel/config.yaml (or --config);
flags given on the command line take precedence.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device (skips discovery)")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate")

	// Alternative links
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Use an in-memory simulated supply")
	rootCmd.PersistentFlags().StringVar(&replayPath, "replay", "", "Answer from a capture file instead of a device")
	rootCmd.PersistentFlags().StringVar(&capturePath, "capture", "", "Record serial traffic to a CBOR capture file")

	// Settings
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/kapanel/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a file")

	rootCmd.PersistentPreRunE = loadSettings
}

// loadSettings merges defaults, the config file and explicitly set flags,
// then configures logging
func loadSettings(cmd *cobra.Command, args []string) error {
	path, optional := configPath, false
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err == nil {
			path, optional = defaultPath, true
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path, optional)
		if err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = portName
	}
	if flags.Changed("baud") {
		cfg.Baud = baudRate
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("capture") {
		cfg.Capture = capturePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings = cfg

	var err error
	logger, logCloser, err = setupLogging(cfg.LogLevel, cfg.LogFile, cmd.Annotations[annotationLogging] != loggingFileOnly)
	if err != nil {
		return err
	}
	logger.Debug().
		Str("config", path).
		Str("port", cfg.Port).
		Int("baud", cfg.Baud).
		Dur("query_settle", cfg.Timing.Query).
		Msg("settings loaded")
	return nil
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if logCloser != nil {
		err = errors.Join(err, logCloser.Close())
	}
	return err
}

// pollInterval returns the configured live refresh interval, or a fallback
func pollInterval(fallback time.Duration) time.Duration {
	if settings.Poll > 0 {
		return settings.Poll
	}
	return fallback
}

// exitf prints a message to stderr and terminates with code
func exitf(code int, format string, args ...any) {
	fmt.Fprintf(rootCmd.ErrOrStderr(), format, args...)
	if logCloser != nil {
		logCloser.Close()
	}
	osExit(code)
}
