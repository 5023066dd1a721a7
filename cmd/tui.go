// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rouming/usb-parser/pkg/usbproto"
	"github.com/rouming/usb-parser/pkg/usbsig"
)

// Event log entry
type eventLogEntry struct {
	timestamp float64 // capture time
	message   string
	isError   bool // true for anomalies/faults, false for valid packets
}

// Messages
type tickMsg time.Time
type sourceDoneMsg struct{}
type decodeMsg struct {
	packet           *usbproto.Packet
	validationErrors []usbproto.ValidationError
	se1              *usbsig.SE1Error
	speed            usbsig.Speed
}

// TUI model
type model struct {
	sourceInfo    string
	showAll       bool
	speed         usbsig.Speed
	stats         *usbproto.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	logView       viewport.Model
	lastPacket    *usbproto.Packet
	sourceDone    bool
	width         int
	height        int
	quitting      bool
}

func initialModel(sourceInfo string, showAll bool) model {
	return model{
		sourceInfo:    sourceInfo,
		showAll:       showAll,
		stats:         usbproto.NewStatistics(),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 200,
		logView:       viewport.New(80, 12),
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		default:
			// Scrolling keys go to the log viewport
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		if msg.Height > 14 {
			m.logView.Height = msg.Height - 14
		}
		m.refreshLog()

	case tickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, tickCmd()

	case sourceDoneMsg:
		m.sourceDone = true

	case decodeMsg:
		m.speed = msg.speed

		if msg.se1 != nil {
			m.stats.Update(nil, nil)
			m.addLogEntry(msg.se1.Timestamp, "SE1 signal fault, packet discarded", true)
			return m, nil
		}

		if msg.packet != nil {
			m.stats.Update(msg.packet, msg.validationErrors)
			m.lastPacket = msg.packet

			if len(msg.validationErrors) > 0 {
				for _, err := range msg.validationErrors {
					m.addLogEntry(msg.packet.Timestamp(),
						fmt.Sprintf("%s: %s", usbproto.FormatPID(msg.packet.PID()), err.Message), true)
				}
			} else if m.showAll {
				m.addLogEntry(msg.packet.Timestamp(), usbproto.FormatPacket(msg.packet), false)
			}
		}
	}

	return m, nil
}

func (m *model) addLogEntry(timestamp float64, message string, isError bool) {
	entry := eventLogEntry{
		timestamp: timestamp,
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}

	m.refreshLog()
}

// refreshLog re-renders the event log into the viewport, pinned to the bottom
func (m *model) refreshLog() {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var b strings.Builder
	for _, entry := range m.eventLog {
		line := fmt.Sprintf("[%f] %s", entry.timestamp, entry.message)
		if entry.isError {
			line = errorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	m.logView.SetContent(b.String())
	m.logView.GotoBottom()
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

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
	var s strings.Builder
	s.WriteString(titleStyle.Render("USB-PARSER - CAPTURE ANALYSIS"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Speed: %s | Mode: %s | Press 'q' to quit",
		m.sourceInfo, m.speed, func() string {
			if m.showAll {
				return "All packets"
			}
			return "Anomalies only"
		}())))
	s.WriteString("\n\n")

	// Source status
	if m.sourceDone {
		s.WriteString(warningStyle.Render("End of capture"))
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var validPercent float64
	if m.stats.TotalPackets > 0 {
		validPercent = float64(m.stats.ValidPackets) * 100.0 / float64(m.stats.TotalPackets)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPackets)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidPackets, validPercent)),
		statsLabelStyle.Render("Anomalous:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousPackets)),
	))

	statsContent.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
		statsLabelStyle.Render("SOF:"), m.stats.SOFPackets,
		statsLabelStyle.Render("Tokens:"), m.stats.TokenPackets,
		statsLabelStyle.Render("Data:"), m.stats.DataPackets,
		statsLabelStyle.Render("Handshakes:"), m.stats.HandshakePackets,
	))

	if m.stats.CRCErrors > 0 || m.stats.SE1Faults > 0 {
		statsContent.WriteString(fmt.Sprintf("\n%s %s   %s %s",
			statsLabelStyle.Render("CRC Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.CRCErrors)),
			statsLabelStyle.Render("SE1 Faults:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.SE1Faults)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("\n%s %s",
		statsLabelStyle.Render("Packet Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f pkts/s", m.stats.PacketRate)),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Last packet
	if m.lastPacket != nil {
		s.WriteString(statsLabelStyle.Render("Last Packet:"))
		s.WriteString("\n")
		s.WriteString(statsValueStyle.Render(usbproto.FormatPacket(m.lastPacket)))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Events:"))
	s.WriteString("\n")
	s.WriteString(m.logView.View())
	s.WriteString("\n")

	return s.String()
}
