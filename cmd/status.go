// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print setpoints, readings and the status blob",
	Long: `Connect, refresh and print the supply state once.

The STATUS? reply is printed as hex without interpretation.

Exit codes:
  0 - State read
  1 - No supply
  2 - Connection or read error`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctrl, ok := connectOrExit()
	if !ok {
		return nil
	}
	defer ctrl.Close()

	if err := ctrl.Refresh(); err != nil {
		exitf(2, "Read error: %v\n", err)
		return nil
	}
	status, err := ctrl.QueryStatus()
	if err != nil {
		exitf(2, "Read error: %v\n", err)
		return nil
	}

	fmt.Print(formatState(ctrl.State(), status))
	return nil
}

// connectOrExit opens a connected controller. When the supply cannot be
// identified it exits with the identify exit codes and reports false.
func connectOrExit(opts ...supply.Option) (*supply.Controller, bool) {
	ctrl, _, err := OpenController(settings, opts...)
	if err != nil {
		ctrl.Close()
		exitConnect(err)
		return nil, false
	}
	return ctrl, true
}

// exitConnect exits 1 when no supply answered and 2 on any other failure
func exitConnect(err error) {
	if isNoDevice(err) {
		exitf(1, "No supply: %v\n", err)
		return
	}
	exitf(2, "Connection error: %v\n", err)
}

// formatState renders a device state for one-shot output
func formatState(s supply.DeviceState, status ka3005p.Status) string {
	result := fmt.Sprintf("%s\n", s.StatusText())
	result += fmt.Sprintf("Set Voltage:  %s\n", ka3005p.FormatDisplayVoltage(s.SetVoltage))
	result += fmt.Sprintf("Set Current:  %s\n", ka3005p.FormatDisplayCurrent(s.SetCurrent))
	if s.OutputEnabled {
		result += fmt.Sprintf("Out Voltage:  %s\n", ka3005p.FormatDisplayVoltage(s.MeasuredVoltage))
		result += fmt.Sprintf("Out Current:  %s\n", ka3005p.FormatDisplayCurrent(s.MeasuredCurrent))
	}
	result += fmt.Sprintf("Status:       %s\n", status.Hex())
	return result
}
