// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Check that a supply answers *IDN?",
	Long: `Open the link, send *IDN? and print the identification.

Useful for checking cabling, port permissions and the settle delay.

Exit codes:
  0 - Supply identified
  1 - No supply (no port, no reply or an unreadable reply)
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctrl, connInfo, err := OpenController(settings)
	defer ctrl.Close()

	fmt.Printf("Kapanel - Identify\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Settle: %v\n\n", settings.Timing.Identify)

	if err != nil {
		exitConnect(err)
		return nil
	}

	s := ctrl.State()
	fmt.Println(s.StatusText())
	fmt.Printf("Setpoint: %s %s\n", ka3005p.FormatDisplayVoltage(s.SetVoltage), ka3005p.FormatDisplayCurrent(s.SetCurrent))
	return nil
}
