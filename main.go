// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Kapanel - KA3005P Bench Power Supply Control Panel
//
// A CLI tool for driving a KORAD/RND KA3005P over its USB serial port,
// with an interactive front panel, a control shell and one-shot commands.

package main

import (
	"os"

	"github.com/Thermoquad/kapanel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
