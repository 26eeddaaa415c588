// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

// One-shot commands connect, apply one change, print the resulting state and
// close the port. They never switch the output off on exit.

var setCmd = &cobra.Command{
	Use:   "set <voltage|current> <value>",
	Short: "Commit a voltage setpoint or current limit",
	Long: `Commit a setpoint and print the resulting state.

Examples:
  kapanel set voltage 12.5
  kapanel set current 0.75

Exit codes:
  0 - Setpoint committed
  1 - No supply or invalid value
  2 - Connection or write error`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var outputCmd = &cobra.Command{
	Use:   "output <on|off>",
	Short: "Switch the output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(args[0], (*supply.Controller).SetOutput)
	},
}

var ovpCmd = &cobra.Command{
	Use:   "ovp <on|off>",
	Short: "Switch over-voltage protection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(args[0], (*supply.Controller).SetOVP)
	},
}

var ocpCmd = &cobra.Command{
	Use:   "ocp <on|off>",
	Short: "Switch over-current protection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(args[0], (*supply.Controller).SetOCP)
	},
}

var recallCmd = &cobra.Command{
	Use:   "recall <1-5>",
	Short: "Turn the output off and recall a memory slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecall,
}

func init() {
	rootCmd.AddCommand(setCmd, outputCmd, ovpCmd, ocpCmd, recallCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		exitf(1, "Invalid value %q\n", args[1])
		return nil
	}

	var apply func(*supply.Controller) error
	switch args[0] {
	case "voltage", "v":
		apply = func(c *supply.Controller) error { return c.CommitVoltage(ka3005p.VoltageFromFloat(value)) }
	case "current", "i", "a":
		apply = func(c *supply.Controller) error { return c.CommitCurrent(ka3005p.CurrentFromFloat(value)) }
	default:
		exitf(1, "Unknown setpoint %q (expected voltage or current)\n", args[0])
		return nil
	}

	return runOneShot(apply)
}

func runSwitch(arg string, set func(*supply.Controller, bool) error) error {
	on, err := parseSwitch(arg)
	if err != nil {
		exitf(1, "%v\n", err)
		return nil
	}
	return runOneShot(func(c *supply.Controller) error { return set(c, on) })
}

func runRecall(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		exitf(1, "Invalid slot %q\n", args[0])
		return nil
	}
	return runOneShot(func(c *supply.Controller) error { return c.Recall(slot) })
}

// runOneShot connects, applies one change and prints the refreshed state
func runOneShot(apply func(*supply.Controller) error) error {
	ctrl, ok := connectOrExit()
	if !ok {
		return nil
	}
	defer ctrl.Close()

	if err := apply(ctrl); err != nil {
		if isInvalidArgument(err) {
			exitf(1, "%v\n", err)
			return nil
		}
		exitf(2, "Write error: %v\n", err)
		return nil
	}
	if err := ctrl.Refresh(); err != nil {
		logger.Warn().Err(err).Msg("refresh after change failed")
	}

	fmt.Print(formatState(ctrl.State(), ka3005p.Status{}))
	return nil
}
