// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for bridge status UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Control holds channels for keyboard-driven control communication
type Control struct {
	Volume chan int
	Quit   chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Volume: make(chan int, 10),
		Quit:   make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control, volume int) Model {
	return Model{
		volume: volume,
		source: "(none)",
		ctrl:   ctrl,
	}
}

// Run starts the TUI
func Run(ctrl *Control, volume int) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl, volume), tea.WithAltScreen())
	return p, nil
}
