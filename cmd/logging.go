// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	// annotationLogging marks commands whose screen must not receive log output
	annotationLogging = "logging"
	loggingFileOnly   = "file"
)

// allow tests to intercept process exit
var osExit = os.Exit

// setupLogging builds the process logger. Logs go to file when set, else to
// stderr when console is true, else nowhere.
func setupLogging(level, file string, console bool) (zerolog.Logger, io.Closer, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var out io.Writer
	var closer io.Closer
	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	case console:
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	default:
		return zerolog.Nop(), nil, nil
	}

	log := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return log, closer, nil
}

// useConsoleLogging sends logs to stderr for a command that started with the
// file-only sink but writes plain lines instead of a full screen. A
// configured log file is kept.
func useConsoleLogging() error {
	if settings.LogFile != "" {
		return nil
	}
	l, closer, err := setupLogging(settings.LogLevel, "", true)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	return nil
}
