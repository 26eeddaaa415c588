// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package supply

import (
	"fmt"
	"strings"
)

// ActionKind is a logical operator event
type ActionKind int

const (
	ActionDigit ActionKind = iota
	ActionToggleVoltageEntry
	ActionToggleCurrentEntry
	ActionToggleOutput
	ActionToggleOVP
	ActionToggleOCP
	ActionRecall
	ActionRefresh
	ActionStatus
)

// String returns the action name
func (k ActionKind) String() string {
	switch k {
	case ActionDigit:
		return "digit"
	case ActionToggleVoltageEntry:
		return "voltage entry"
	case ActionToggleCurrentEntry:
		return "current entry"
	case ActionToggleOutput:
		return "output"
	case ActionToggleOVP:
		return "ovp"
	case ActionToggleOCP:
		return "ocp"
	case ActionRecall:
		return "recall"
	case ActionRefresh:
		return "refresh"
	case ActionStatus:
		return "status"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is an operator event with its argument (digit or memory slot)
type Action struct {
	Kind ActionKind
	Arg  int
}

// String returns a short description of the action
func (a Action) String() string {
	switch a.Kind {
	case ActionDigit, ActionRecall:
		return fmt.Sprintf("%s %d", a.Kind, a.Arg)
	default:
		return a.Kind.String()
	}
}

// Digit creates a keypad digit action
func Digit(d int) Action {
	return Action{Kind: ActionDigit, Arg: d}
}

// Recall creates a memory recall action
func Recall(slot int) Action {
	return Action{Kind: ActionRecall, Arg: slot}
}

type handler func(c *Controller, arg int) error

// handlers maps each operator event to the controller operation it runs
var handlers = map[ActionKind]handler{
	ActionDigit: func(c *Controller, d int) error { return c.Digit(d) },
	ActionToggleVoltageEntry: func(c *Controller, _ int) error {
		c.ToggleVoltageEntry()
		return nil
	},
	ActionToggleCurrentEntry: func(c *Controller, _ int) error {
		c.ToggleCurrentEntry()
		return nil
	},
	ActionToggleOutput: func(c *Controller, _ int) error { return c.ToggleOutput() },
	ActionToggleOVP:    func(c *Controller, _ int) error { return c.ToggleOVP() },
	ActionToggleOCP:    func(c *Controller, _ int) error { return c.ToggleOCP() },
	ActionRecall:       func(c *Controller, slot int) error { return c.Recall(slot) },
	ActionRefresh:      func(c *Controller, _ int) error { return c.Refresh() },
	ActionStatus: func(c *Controller, _ int) error {
		_, err := c.QueryStatus()
		return err
	},
}

// Dispatch runs the handler for an action. A failure is also kept as the
// display message so the front end can show it; success clears it.
func (c *Controller) Dispatch(a Action) error {
	h, ok := handlers[a.Kind]
	if !ok {
		return fmt.Errorf("unknown action %s", a)
	}

	err := h(c, a.Arg)
	if err != nil {
		c.message = fmt.Sprintf("%s: %v", a, err)
		c.log.Warn().Err(err).Str("action", a.String()).Msg("action failed")
		return err
	}
	c.message = ""
	return nil
}

// ParseKey maps a keyboard shortcut to an action: 0-9 digits, v voltage
// entry, a current entry, o output, u refresh, p OVP, c OCP, f1-f5 recall,
// s status.
func ParseKey(key string) (Action, bool) {
	key = strings.ToLower(key)
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(int(key[0] - '0')), true
	}
	if len(key) == 2 && key[0] == 'f' && key[1] >= '1' && key[1] <= '5' {
		return Recall(int(key[1] - '0')), true
	}

	switch key {
	case "v":
		return Action{Kind: ActionToggleVoltageEntry}, true
	case "a":
		return Action{Kind: ActionToggleCurrentEntry}, true
	case "o":
		return Action{Kind: ActionToggleOutput}, true
	case "u":
		return Action{Kind: ActionRefresh}, true
	case "p":
		return Action{Kind: ActionToggleOVP}, true
	case "c":
		return Action{Kind: ActionToggleOCP}, true
	case "s":
		return Action{Kind: ActionStatus}, true
	}
	return Action{}, false
}
