// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/transport"
)

var portsAll bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and find the supply",
	Long: `List serial ports with their USB identification.

Ports matching the supply's vendor/product ID (0416:5011 unless configured
otherwise) are marked. Discovery picks the first marked port.

Exit codes:
  0 - At least one matching port found
  1 - No matching port
  2 - Ports could not be enumerated`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	portsCmd.Flags().BoolVar(&portsAll, "all", false, "Also list ports without USB identification")
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		exitf(2, "Enumeration error: %v\n", err)
		return nil
	}

	fmt.Printf("Kapanel - Port Discovery\n")
	fmt.Printf("Looking for: %04X:%04X\n\n", settings.VendorID, settings.ProductID)

	matches := 0
	for _, p := range ports {
		match := p.Matches(settings.VendorID, settings.ProductID)
		if !p.IsUSB && !portsAll {
			continue
		}
		if match {
			matches++
		}
		fmt.Println(formatPort(p, match))
	}

	fmt.Printf("\n%d port(s), %d match(es)\n", len(ports), matches)
	if matches == 0 {
		exitf(1, "No supply found\n")
	}
	return nil
}

// formatPort renders one enumerated port
func formatPort(p transport.PortInfo, match bool) string {
	marker := " "
	if match {
		marker = "*"
	}
	if !p.IsUSB {
		return fmt.Sprintf("%s %-16s (not USB)", marker, p.Name)
	}
	line := fmt.Sprintf("%s %-16s %04X:%04X", marker, p.Name, p.VID, p.PID)
	if p.Product != "" {
		line += " " + p.Product
	}
	if p.SerialNumber != "" {
		line += " SN:" + p.SerialNumber
	}
	return line
}
