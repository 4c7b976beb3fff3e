// Package main is the entry point for the netscope TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartnet-labs/netscope/internal/app"
	"github.com/smartnet-labs/netscope/internal/config"
	"github.com/smartnet-labs/netscope/internal/logger"
	"github.com/smartnet-labs/netscope/internal/services"
	"github.com/smartnet-labs/netscope/internal/ui/tabs/charts"
	"github.com/smartnet-labs/netscope/internal/ui/tabs/info"
	"github.com/smartnet-labs/netscope/internal/ui/tabs/speedtest"
	"github.com/smartnet-labs/netscope/internal/ui/tabs/usage"
	"github.com/smartnet-labs/netscope/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route structured logs to a file; the TUI owns the terminal
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.Init(logFile, cfg.Debug)

	// 3. Initialize the service manager
	// This starts the interface sampler and the catalog watcher
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. One-shot seed import, then exit
	if len(os.Args) > 2 && os.Args[1] == "--import-seed" {
		n, importErr := svcManager.ImportSeed(context.Background(), os.Args[2])
		if importErr != nil {
			return fmt.Errorf("seed import failed: %w", importErr)
		}
		fmt.Printf("Imported %d traffic samples from %s\n", n, os.Args[2])
		return nil
	}

	// 5. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 6. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()

	usageTab := usage.New(state)
	infoTab := info.New(state, cfg)
	if !svcManager.HasUsageAccess() {
		hint := svcManager.UsageAccessInstructions()
		usageTab.SetAccessHint(hint)
		infoTab.SetUsageAccess(false, hint)
	}

	tabs := []app.Tab{
		usageTab,             // Tab 0: Usage - per-app breakdown
		charts.New(state),    // Tab 1: Charts - daily usage series
		speedtest.New(state), // Tab 2: Speed Test - throughput meter
		infoTab,              // Tab 3: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 7. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 8. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 9. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`netscope - Per-app data usage and network speed monitor

Usage:
  netscope [flags]
  netscope --import-seed <file.ndjson>

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Usage, Charts, Speed Test, Info)
  Tab/Shift+Tab   Navigate between tabs
  p               Cycle usage period
  t               Cycle network type
  j/k, Up/Down    Navigate lists
  Enter           Start/stop the speed test
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  NETSCOPE_STATS_DB         SQLite traffic store path
  NETSCOPE_CATALOG          App catalog JSON path
  NETSCOPE_LOG              Log file path
  NETSCOPE_SPEEDTEST_URL    Speed test endpoint base URL
  NETSCOPE_SAMPLE_INTERVAL  Speed sample interval (default: 500ms)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/netscope/.env
  - ~/.netscope/.env

For more information, visit: https://github.com/smartnet-labs/netscope`)
}
