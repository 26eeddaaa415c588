// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package supply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		key  string
		want Action
		ok   bool
	}{
		{"0", Digit(0), true},
		{"7", Digit(7), true},
		{"v", Action{Kind: ActionToggleVoltageEntry}, true},
		{"a", Action{Kind: ActionToggleCurrentEntry}, true},
		{"o", Action{Kind: ActionToggleOutput}, true},
		{"u", Action{Kind: ActionRefresh}, true},
		{"p", Action{Kind: ActionToggleOVP}, true},
		{"c", Action{Kind: ActionToggleOCP}, true},
		{"s", Action{Kind: ActionStatus}, true},
		{"f1", Recall(1), true},
		{"F5", Recall(5), true},
		{"f6", Action{}, false},
		{"x", Action{}, false},
		{"", Action{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatch_KeypadScenario(t *testing.T) {
	c, dev := newTestController(t)

	sent := sentAfter(t, dev, func() error {
		for _, key := range []string{"v", "1", "2", "0", "0"} {
			a, ok := ParseKey(key)
			require.True(t, ok)
			if err := c.Dispatch(a); err != nil {
				return err
			}
		}
		return nil
	})
	require.NotEmpty(t, sent)
	assert.Equal(t, "VSET1:12.00", sent[0])
}

func TestDispatch_ErrorBecomesMessage(t *testing.T) {
	c := NewController(transport.Disconnected{}, ka3005p.Timing{})
	_ = c.Connect()

	err := c.Dispatch(Action{Kind: ActionToggleOutput})
	assert.ErrorIs(t, err, transport.ErrPortUnavailable)
	assert.Contains(t, c.Display().Message, "output")

	require.NoError(t, c.Dispatch(Action{Kind: ActionRefresh}))
	assert.Empty(t, c.Display().Message)
}

func TestDispatch_UnknownAction(t *testing.T) {
	c := NewController(transport.Disconnected{}, ka3005p.Timing{})
	assert.Error(t, c.Dispatch(Action{Kind: ActionKind(99)}))
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "recall 3", Recall(3).String())
	assert.Equal(t, "digit 9", Digit(9).String())
	assert.Equal(t, "ocp", Action{Kind: ActionToggleOCP}.String())
}
