// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/capture"
)

var captureSession string

var captureLogCmd = &cobra.Command{
	Use:   "capture_log <file>",
	Short: "Display a traffic capture in human-readable format",
	Long: `Decode and display a CBOR capture written with --capture.

Each event shows its timestamp, session sequence number, direction and the
bytes on the wire. Received events also show the settle delay used.
A capture can be answered back to kapanel with --replay.`,
	Args: cobra.ExactArgs(1),
	RunE: runCaptureLog,
}

func init() {
	rootCmd.AddCommand(captureLogCmd)
	captureLogCmd.Flags().StringVar(&captureSession, "session", "", "Only show events of this session ID")
}

func runCaptureLog(cmd *cobra.Command, args []string) error {
	r, err := capture.NewReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("Kapanel - Capture Log\n")
	fmt.Printf("File: %s\n\n", args[0])

	return printCapture(r, cmd.OutOrStdout(), captureSession)
}

// printCapture writes every event from r, optionally filtered by session
func printCapture(r *capture.Reader, out io.Writer, session string) error {
	lastSession := ""
	events, failures := 0, 0
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("capture corrupt after %d events: %w", events, err)
		}
		if session != "" && e.SessionID != session {
			continue
		}

		if e.SessionID != lastSession {
			fmt.Fprintf(out, "=== Session %s (%s) ===\n", e.SessionID, e.Port)
			lastSession = e.SessionID
		}
		fmt.Fprintln(out, e.String())

		events++
		if e.Error != "" {
			failures++
		}
	}

	fmt.Fprintf(out, "\n%d event(s), %d failure(s)\n", events, failures)
	return nil
}
