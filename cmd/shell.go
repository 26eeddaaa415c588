// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/kapanel/pkg/entry"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Line-oriented control shell",
	Long: `Control the supply from a line-oriented shell.

Commands:
  show                     Display readings and switches
  refresh                  Read setpoints (and measurements when output is on)
  voltage <V>              Commit a voltage setpoint, e.g. voltage 12.5
  current <A>              Commit a current limit, e.g. current 1.25
  output|ovp|ocp [on|off]  Switch, toggling when no argument is given
  recall <1-5>             Turn output off and recall memory slot
  keys <sequence>          Type panel keys, e.g. keys v1250
  status                   Query the raw status blob
  identify                 Show the device identification
  stats                    Show transaction statistics
  quit                     Turn output off and exit

Used by the panel when stdin is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctrl, connInfo, err := OpenController(settings)

	rl, rlErr := readline.NewEx(&readline.Config{
		Prompt:          "kapanel> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if rlErr != nil {
		ctrl.Close()
		return rlErr
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintf(out, "Kapanel - Control Shell\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	if err != nil {
		fmt.Fprintf(out, "Not connected: %v\n", err)
	} else {
		fmt.Fprintln(out, ctrl.State().StatusText())
	}
	fmt.Fprintln(out, "Type 'help' for commands.")

	sh := &shell{ctrl: ctrl, out: out}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}
		if sh.execute(line) {
			break
		}
	}

	return ctrl.Shutdown()
}

// shell interprets control commands against a controller
type shell struct {
	ctrl *supply.Controller
	out  io.Writer
}

// execute runs one command line. It returns true when the shell should exit.
func (sh *shell) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(sh.out, "show refresh voltage current output ovp ocp recall keys status identify stats quit")
		return false
	case "show":
		sh.show()
		return false
	case "stats":
		fmt.Fprint(sh.out, sh.ctrl.Statistics().String())
		return false
	case "identify":
		fmt.Fprintln(sh.out, sh.ctrl.State().StatusText())
		return false
	case "refresh":
		if err = sh.ctrl.Refresh(); err == nil {
			sh.show()
		}
	case "status":
		var status ka3005p.Status
		if status, err = sh.ctrl.QueryStatus(); err == nil {
			fmt.Fprintf(sh.out, "Status: %s\n", status.Hex())
		}
	case "voltage":
		err = sh.commitVoltage(args)
	case "current":
		err = sh.commitCurrent(args)
	case "output":
		err = sh.toggle(args, sh.ctrl.SetOutput, sh.ctrl.ToggleOutput)
	case "ovp":
		err = sh.toggle(args, sh.ctrl.SetOVP, sh.ctrl.ToggleOVP)
	case "ocp":
		err = sh.toggle(args, sh.ctrl.SetOCP, sh.ctrl.ToggleOCP)
	case "recall":
		err = sh.recall(args)
	case "keys":
		err = sh.keys(strings.Join(args, ""))
	default:
		err = fmt.Errorf("unknown command %q", name)
	}

	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
	}
	return false
}

func (sh *shell) show() {
	d := sh.ctrl.Display()
	fmt.Fprintf(sh.out, "Voltage: %s (set %s)\n", d.Voltage, d.SetVoltage)
	fmt.Fprintf(sh.out, "Current: %s (set %s)\n", d.Current, d.SetCurrent)
	fmt.Fprintf(sh.out, "Output:  %s  OVP: %s  OCP: %s\n", onOff(d.Output), onOff(d.OVP), onOff(d.OCP))
	if d.Entry != entry.Idle {
		fmt.Fprintf(sh.out, "Entry:   %s (%q)\n", d.Entry, sh.ctrl.EntryDigits())
	}
	fmt.Fprintln(sh.out, d.Status)
}

func (sh *shell) commitVoltage(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: voltage <volts>")
	}
	volts, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid voltage %q", args[0])
	}
	return sh.ctrl.CommitVoltage(ka3005p.VoltageFromFloat(volts))
}

func (sh *shell) commitCurrent(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: current <amps>")
	}
	amps, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid current %q", args[0])
	}
	return sh.ctrl.CommitCurrent(ka3005p.CurrentFromFloat(amps))
}

func (sh *shell) toggle(args []string, set func(bool) error, toggle func() error) error {
	if len(args) == 0 {
		return toggle()
	}
	on, err := parseSwitch(args[0])
	if err != nil {
		return err
	}
	return set(on)
}

func (sh *shell) recall(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: recall <1-5>")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid slot %q", args[0])
	}
	return sh.ctrl.Recall(slot)
}

// keys feeds each character to the panel key map
func (sh *shell) keys(sequence string) error {
	for _, r := range sequence {
		action, ok := supply.ParseKey(string(r))
		if !ok {
			return fmt.Errorf("no panel key %q", r)
		}
		if err := sh.ctrl.Dispatch(action); err != nil {
			return err
		}
	}
	return nil
}

// parseSwitch accepts on/off style arguments
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
