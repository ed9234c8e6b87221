// ABOUTME: Bubbletea model for bridge status TUI
// ABOUTME: Defines application state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

// Model represents the TUI state
type Model struct {
	// Device
	connected bool
	device    string

	// Streams
	videoWidth  int
	videoHeight int
	micFormat   audio.Format
	spkFormat   audio.Format

	// Playback
	volume int
	source string

	// Stats
	delivered int64
	dropped   int64
	chunks    int64
	restarts  int64
	clients   int64

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	ctrl *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderStreams()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

// renderHeader renders device connection status
func (m Model) renderHeader() string {
	connStatus := "Waiting for device"
	if m.connected {
		connStatus = fmt.Sprintf("Connected to %s", m.device)
	}

	return fmt.Sprintf(`┌─ UVC Bridge ─────────────────────────────────────────┐
│ Device: %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(connStatus, 44))
}

// renderStreams renders negotiated stream formats
func (m Model) renderStreams() string {
	if !m.connected {
		return "│ No streams                                           │\n"
	}

	video := "(none)"
	if m.videoWidth > 0 {
		video = fmt.Sprintf("%dx%d MJPEG", m.videoWidth, m.videoHeight)
	}
	mic := "(none)"
	if !m.micFormat.IsZero() {
		mic = m.micFormat.String()
	}
	spk := "(none)"
	if !m.spkFormat.IsZero() {
		spk = m.spkFormat.String()
	}

	s := "│ Streams:                                             │\n"
	s += fmt.Sprintf("│   Video:   %-41s │\n", truncate(video, 41))
	s += fmt.Sprintf("│   Mic:     %-41s │\n", truncate(mic, 41))
	s += fmt.Sprintf("│   Speaker: %-41s │\n", truncate(spk, 41))

	return s
}

// renderControls renders volume and source status
func (m Model) renderControls() string {
	volumeBar := renderBar(m.volume, 100, 10)

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %d%%%-28s │\n"+
		"│ Source: %-44s │\n",
		volumeBar, m.volume, "",
		truncate(m.source, 44))
}

// renderStats renders frame and playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Frames: %d delivered, %d dropped%-14s │
│ Chunks: %d  Clients: %d%-22s │
│                                                      │
`, m.delivered, m.dropped, "", m.chunks, m.clients, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  d:Debug  q:Quit                          │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Speaker restarts: %-32d │
`, m.restarts)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.ctrl != nil {
			select {
			case m.ctrl.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Volume <- m.volume:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.Device != "" {
		m.device = msg.Device
	}
	if msg.VideoWidth != 0 {
		m.videoWidth = msg.VideoWidth
		m.videoHeight = msg.VideoHeight
	}
	if !msg.MicFormat.IsZero() {
		m.micFormat = msg.MicFormat
	}
	if !msg.SpkFormat.IsZero() {
		m.spkFormat = msg.SpkFormat
	}
	if msg.Source != "" {
		m.source = msg.Source
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	m.delivered = msg.Delivered
	m.dropped = msg.Dropped
	m.chunks = msg.Chunks
	m.restarts = msg.Restarts
	m.clients = msg.Clients
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Connected   *bool
	Device      string
	VideoWidth  int
	VideoHeight int
	MicFormat   audio.Format
	SpkFormat   audio.Format
	Source      string
	Volume      int
	Delivered   int64
	Dropped     int64
	Chunks      int64
	Restarts    int64
	Clients     int64
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
