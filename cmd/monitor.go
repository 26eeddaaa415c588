// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

var (
	monitorShowAll       bool
	monitorInterval      time.Duration
	monitorStatsInterval time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Poll the supply and report transaction errors",
	Long: `Refresh the supply state at a fixed interval and track the link quality.

Each poll reads the setpoints (and the measurements while the output is on).
Failed transactions, malformed replies and stray bytes are printed as they
happen, with a statistics summary at a configurable interval.

By default, only errors are displayed. Use --show-all to display every
transaction. The output is left as it is on exit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", false, "Show all transactions (not just errors)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "Poll interval (default from config, else 1s)")
	monitorCmd.Flags().DurationVar(&monitorStatsInterval, "stats-interval", 10*time.Second, "Statistics update interval")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	interval := monitorInterval
	if interval <= 0 {
		interval = pollInterval(time.Second)
	}

	ctrl, ok := connectOrExit(supply.WithTransactionHook(printTransaction))
	if !ok {
		return nil
	}
	defer ctrl.Close()

	fmt.Printf("Kapanel - Monitor\n")
	fmt.Printf("%s\n", ctrl.State().StatusText())
	fmt.Printf("Poll interval: %v\n", interval)
	fmt.Printf("Statistics interval: %v\n", monitorStatsInterval)
	if monitorShowAll {
		fmt.Printf("Mode: All transactions\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := monitorLoop(ctx, ctrl, interval, monitorStatsInterval)

	fmt.Println()
	fmt.Print(ctrl.Statistics().String())
	return err
}

// monitorLoop polls until ctx is done
func monitorLoop(ctx context.Context, ctrl *supply.Controller, interval, statsInterval time.Duration) error {
	pollTicker := time.NewTicker(interval)
	defer pollTicker.Stop()

	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-pollTicker.C:
			if err := ctrl.Refresh(); err != nil {
				logger.Debug().Err(err).Msg("poll incomplete")
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(ctrl.Statistics().String())
			fmt.Println()
		}
	}
}

// printTransaction prints failed transactions, or all of them with --show-all
func printTransaction(tx ka3005p.Transaction) {
	if tx.Err == nil && !monitorShowAll {
		return
	}
	fmt.Println(ka3005p.FormatTransaction(tx))
}
