// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/kapanel/pkg/entry"
	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/supply"
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// logEntry is one line of the panel's event log
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// panelKeyMap lists the panel shortcuts for the help bar
type panelKeyMap struct {
	Digits  key.Binding
	Voltage key.Binding
	Current key.Binding
	Output  key.Binding
	OVP     key.Binding
	OCP     key.Binding
	Recall  key.Binding
	Refresh key.Binding
	Status  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultPanelKeys() panelKeyMap {
	return panelKeyMap{
		Digits:  key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "digit")),
		Voltage: key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "set voltage")),
		Current: key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "set current")),
		Output:  key.NewBinding(key.WithKeys("o", "O"), key.WithHelp("o", "output")),
		OVP:     key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "OVP")),
		OCP:     key.NewBinding(key.WithKeys("c", "C"), key.WithHelp("c", "OCP")),
		Recall:  key.NewBinding(key.WithKeys("f1", "f2", "f3", "f4", "f5"), key.WithHelp("F1-F5", "recall M1-M5")),
		Refresh: key.NewBinding(key.WithKeys("u", "U"), key.WithHelp("u", "refresh")),
		Status:  key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "status")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Voltage, k.Current, k.Output, k.Help, k.Quit}
}

func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Digits, k.Voltage, k.Current},
		{k.Output, k.OVP, k.OCP},
		{k.Recall, k.Refresh, k.Status},
		{k.Help, k.Quit},
	}
}

// panelModel is the Bubble Tea model for the front panel
type panelModel struct {
	ctrl     *supply.Controller
	connInfo string

	// Logs
	traffic       *trafficLog
	eventLog      []logEntry
	maxLogEntries int

	// Live refresh
	poll     time.Duration
	lastPoll time.Time

	keys panelKeyMap
	help help.Model

	// UI state
	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type panelTickMsg time.Time

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialPanelModel(ctrl *supply.Controller, connInfo string, traffic *trafficLog, poll time.Duration) *panelModel {
	return &panelModel{
		ctrl:          ctrl,
		connInfo:      connInfo,
		traffic:       traffic,
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 100,
		poll:          poll,
		lastPoll:      time.Now(),
		keys:          defaultPanelKeys(),
		help:          help.New(),
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m *panelModel) Init() tea.Cmd {
	return panelTickCmd()
}

func panelTickCmd() tea.Cmd {
	return tea.Tick(panelTickInterval, func(t time.Time) tea.Msg {
		return panelTickMsg(t)
	})
}

func (m *panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case panelTickMsg:
		m.ctrl.Statistics().CalculateRates()
		m.pollDevice(time.Time(msg))
		return m, panelTickCmd()
	}

	return m, nil
}

func (m *panelModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action, ok := supply.ParseKey(msg.String())
	if !ok {
		return m, nil
	}
	m.dispatch(action)
	return m, nil
}

// dispatch runs one operator action and records the outcome
func (m *panelModel) dispatch(action supply.Action) {
	before := m.ctrl.EntryState()
	if err := m.ctrl.Dispatch(action); err != nil {
		m.addLogEntry(fmt.Sprintf("%s: %s", action, describeError(err)), true)
		return
	}

	switch action.Kind {
	case supply.ActionDigit:
		if before != entry.Idle && m.ctrl.EntryState() == entry.Idle {
			s := m.ctrl.State()
			m.addLogEntry(fmt.Sprintf("Setpoint %s / %s",
				ka3005p.FormatDisplayVoltage(s.SetVoltage),
				ka3005p.FormatDisplayCurrent(s.SetCurrent)), false)
		}
	case supply.ActionRecall:
		m.addLogEntry(fmt.Sprintf("Recalled M%d, output off", action.Arg), false)
	case supply.ActionStatus:
		m.addLogEntry("Status "+m.ctrl.State().Status.Hex(), false)
	case supply.ActionToggleOutput, supply.ActionToggleOVP, supply.ActionToggleOCP:
		m.addLogEntry(m.describeSwitches(), false)
	}
}

// pollDevice refreshes readings at the configured interval while no entry
// is in progress
func (m *panelModel) pollDevice(now time.Time) {
	if m.poll <= 0 || now.Sub(m.lastPoll) < m.poll {
		return
	}
	m.lastPoll = now
	if !m.ctrl.State().PowerConnected || m.ctrl.EntryState() != entry.Idle {
		return
	}
	if err := m.ctrl.Refresh(); err != nil {
		m.addLogEntry(fmt.Sprintf("Refresh: %s", describeError(err)), true)
	}
}

func (m *panelModel) describeSwitches() string {
	s := m.ctrl.State()
	return fmt.Sprintf("Output %s, OVP %s, OCP %s", onOff(s.OutputEnabled), onOff(s.OVPEnabled), onOff(s.OCPEnabled))
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func (m *panelModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *panelModel) View() string {
	if m.quitting {
		return "Turning output off...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	s.WriteString(titleStyle.Render("KAPANEL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s", m.connInfo)))
	s.WriteString("\n\n")

	d := m.ctrl.Display()
	s.WriteString(m.renderReadouts(d, statsLabelStyle, statsValueStyle, warningStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderSwitches(d, statsLabelStyle, statsValueStyle, errorStyle, headerStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderTraffic(statsLabelStyle, headerStyle, errorStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m *panelModel) renderReadouts(d supply.Display, labelStyle, valueStyle, warningStyle, boxStyle lipgloss.Style) string {
	readoutStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	voltageStyle, currentStyle := readoutStyle, readoutStyle
	switch d.Entry {
	case entry.EnteringVoltage:
		voltageStyle = readoutStyle.Foreground(lipgloss.Color("11")).Underline(true)
	case entry.EnteringCurrent:
		currentStyle = readoutStyle.Foreground(lipgloss.Color("11")).Underline(true)
	}

	half := (m.width - 6) / 2
	voltage := boxStyle.Width(half).Render(fmt.Sprintf("%s\n%s\n%s",
		labelStyle.Render("VOLTAGE"),
		voltageStyle.Render(d.Voltage),
		valueStyle.Render("set "+d.SetVoltage)))
	current := boxStyle.Width(half).Render(fmt.Sprintf("%s\n%s\n%s",
		labelStyle.Render("CURRENT"),
		currentStyle.Render(d.Current),
		valueStyle.Render("set "+d.SetCurrent)))

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, voltage, " ", current))
	if d.Entry != entry.Idle {
		s.WriteString("\n")
		s.WriteString(warningStyle.Render(fmt.Sprintf(" %s: %d of %d digits",
			d.Entry, len(m.ctrl.EntryDigits()), ka3005p.EntryWidth)))
	}
	return s.String()
}

func (m *panelModel) renderSwitches(d supply.Display, labelStyle, valueStyle, errorStyle, headerStyle, boxStyle lipgloss.Style) string {
	indicator := func(name string, on bool) string {
		if on {
			return valueStyle.Render("● " + name)
		}
		return headerStyle.Render("○ " + name)
	}

	var content strings.Builder
	content.WriteString(fmt.Sprintf("%s  %s  %s\n",
		indicator("OUTPUT", d.Output),
		indicator("OVP", d.OVP),
		indicator("OCP", d.OCP)))
	content.WriteString(d.Status)
	if d.Message != "" {
		content.WriteString("\n")
		content.WriteString(errorStyle.Render(d.Message))
	}
	return boxStyle.Width(m.width - 4).Render(content.String())
}

func (m *panelModel) renderStatisticsBar(labelStyle, valueStyle, errorStyle, boxStyle lipgloss.Style) string {
	stats := m.ctrl.Statistics()

	var content strings.Builder
	content.WriteString(labelStyle.Render("STATISTICS"))
	content.WriteString(" | ")
	content.WriteString(fmt.Sprintf("%s %s  ", labelStyle.Render("Transactions:"), valueStyle.Render(fmt.Sprintf("%d", stats.TotalTransactions))))
	content.WriteString(fmt.Sprintf("%s %s  ", labelStyle.Render("Round trip:"), valueStyle.Render(fmt.Sprintf("%d ms", stats.MeanRoundTrip().Milliseconds()))))
	content.WriteString(fmt.Sprintf("%s %s  ", labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f/s", stats.TransactionRate))))

	errs := stats.Errors()
	errText := valueStyle.Render("0")
	if errs > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%d", errs))
	}
	content.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Errors:"), errText))

	return boxStyle.Width(m.width - 4).Render(content.String())
}

func (m *panelModel) renderTraffic(labelStyle, headerStyle, errorStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("TRAFFIC"))
	s.WriteString("\n")

	entries := m.traffic.last(6)
	if len(entries) == 0 {
		s.WriteString(headerStyle.Render("  (no traffic yet)"))
	}
	for _, tx := range entries {
		line := ka3005p.FormatTransaction(tx)
		if tx.Err != nil {
			line = errorStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

func (m *panelModel) renderEventLog(labelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 5
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			e := m.eventLog[i]
			icon := "i"
			style := warningStyle
			if e.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(e.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				e.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}
