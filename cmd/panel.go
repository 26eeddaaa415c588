// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

const (
	maxTrafficEntries = 200
	panelTickInterval = time.Second
)

func init() {
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = runPanel
	rootCmd.Annotations = map[string]string{annotationLogging: loggingFileOnly}
}

// runPanel starts the interactive panel. Without a terminal the line shell
// is used instead.
func runPanel(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := useConsoleLogging(); err != nil {
			return err
		}
		return runShell(cmd, args)
	}

	traffic := newTrafficLog(maxTrafficEntries)
	ctrl, connInfo, err := OpenController(settings, supply.WithTransactionHook(traffic.add))

	m := initialPanelModel(ctrl, connInfo, traffic, settings.Poll)
	if err != nil {
		m.addLogEntry(fmt.Sprintf("Not connected: %v", err), true)
	} else {
		m.addLogEntry(ctrl.State().StatusText(), false)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	// Leave the supply safe regardless of how the panel ended
	shutdownErr := ctrl.Shutdown()
	if shutdownErr != nil {
		logger.Warn().Err(shutdownErr).Msg("shutdown incomplete")
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %v", runErr)
	}
	return nil
}

// trafficLog keeps the most recent transactions for display. It is shared
// between the controller hook and the model, both on the TUI goroutine.
type trafficLog struct {
	entries []ka3005p.Transaction
	max     int
}

func newTrafficLog(max int) *trafficLog {
	return &trafficLog{max: max}
}

func (t *trafficLog) add(tx ka3005p.Transaction) {
	t.entries = append(t.entries, tx)
	if len(t.entries) > t.max {
		t.entries = t.entries[len(t.entries)-t.max:]
	}
}

// last returns up to n of the newest transactions, oldest first
func (t *trafficLog) last(n int) []ka3005p.Transaction {
	if n > len(t.entries) {
		n = len(t.entries)
	}
	return t.entries[len(t.entries)-n:]
}

// describeError shortens controller errors for the event log
func describeError(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return fmt.Sprintf("%d failures, first: %v", len(joined.Unwrap()), joined.Unwrap()[0])
	}
	return err.Error()
}
