// ABOUTME: Entry point for the UVC bridge
// ABOUTME: Parses CLI flags and starts the bridge application
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/UVC-Bridge/uvcbridge-go/internal/app"
	"github.com/UVC-Bridge/uvcbridge-go/internal/config"
	"github.com/UVC-Bridge/uvcbridge-go/internal/ui"
)

var (
	configFile = flag.String("config", "", "Config file path (optional)")
	port       = flag.Int("port", 0, "HTTP port (overrides config)")
	name       = flag.String("name", "", "Service name (overrides config)")
	waveFile   = flag.String("wave", "", "Waveform file to play (overrides config)")
	logFile    = flag.String("log-file", "", "Log file path (overrides config)")
	volume     = flag.Int("volume", 0, "Default speaker volume 0-100 (overrides config)")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	loopback   = flag.Bool("loopback", false, "Echo mic audio back to the speaker")
	debug      = flag.Bool("debug", false, "Verbose frame and chunk logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	applyFlags(&cfg)

	useTUI := cfg.UseTUI && !*noTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	if !useTUI {
		log.Printf("Starting UVC bridge: %s on port %d", cfg.Name, cfg.Port)
	}

	bridge, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bridge: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	var ctrl *ui.Control

	if useTUI {
		ctrl = ui.NewControl()
		tuiProg, err = ui.Run(ctrl, cfg.Volume)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- bridge.Run(ctx)
	}()

	if ctrl != nil {
		go handleControl(bridge, ctrl)
	}
	if tuiProg != nil {
		go statusUpdateLoop(bridge, tuiProg)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if ctrl != nil {
		select {
		case <-ctrl.Quit:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case err := <-runErr:
			if err != nil {
				log.Printf("Bridge error: %v", err)
			}
		}
	} else {
		select {
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case err := <-runErr:
			if err != nil {
				log.Printf("Bridge error: %v", err)
			}
		}
	}

	cancel()
	if tuiProg != nil {
		tuiProg.Quit()
	}

	log.Printf("Bridge stopped")
}

// applyFlags overrides file/env configuration with explicit CLI flags.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "name":
			cfg.Name = *name
		case "wave":
			cfg.WaveFile = *waveFile
		case "log-file":
			cfg.LogFile = *logFile
		case "volume":
			cfg.Volume = *volume
		case "no-mdns":
			cfg.EnableMDNS = !*noMDNS
		case "loopback":
			cfg.Loopback = *loopback
		case "debug":
			cfg.Debug = *debug
		}
	})
}

// handleControl processes keyboard-driven changes from the TUI. Quit is
// left for main to observe.
func handleControl(bridge *app.Bridge, ctrl *ui.Control) {
	for vol := range ctrl.Volume {
		log.Printf("Volume change: %d%%", vol)
		bridge.SetVolume(vol)
	}
}

// statusUpdateLoop periodically pushes bridge stats to the TUI
func statusUpdateLoop(bridge *app.Bridge, tuiProg *tea.Program) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		stats := bridge.Stats()
		connected := stats.Connected

		tuiProg.Send(ui.StatusMsg{
			Connected:   &connected,
			Device:      "simulated-uvc",
			VideoWidth:  stats.VideoSize.Width,
			VideoHeight: stats.VideoSize.Height,
			MicFormat:   stats.MicFormat,
			SpkFormat:   stats.SpkFormat,
			Source:      bridge.Source(),
			Delivered:   stats.Delivered,
			Dropped:     stats.Dropped,
			Chunks:      stats.Chunks,
			Restarts:    stats.Restarts,
			Clients:     stats.Clients,
		})
	}
}
