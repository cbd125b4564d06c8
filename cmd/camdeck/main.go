// cmd/camdeck/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/AlverezYari/camdeck/internal/config"
	"github.com/AlverezYari/camdeck/internal/logging"
	"github.com/AlverezYari/camdeck/internal/tui"
	"github.com/AlverezYari/camdeck/pkg/camera"
	"github.com/AlverezYari/camdeck/pkg/camera/opencv"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	defaultPath, err := config.Path()
	if err != nil {
		fmt.Printf("Error getting user config directory: %v\n", err)
		os.Exit(1)
	}

	configPath := flag.String("config", defaultPath, "path to the config file")
	noPreview := flag.Bool("no-preview", false, "disable the browser preview server")
	initConfig := flag.Bool("init-config", false, "write the effective config to -config and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *noPreview {
		cfg.PreviewEnabled = false
	}

	if *initConfig {
		if err := config.Save(*configPath, cfg); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", *configPath)
		return
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.Info("starting", "config", *configPath, "preview", cfg.PreviewEnabled)

	registry := camera.DefaultRegistry()
	viewer := camera.NewViewer(opencv.Open,
		camera.WithInterval(cfg.FrameInterval()),
		camera.WithLogger(slog.Default()),
	)
	defer viewer.Stop()

	p := tea.NewProgram(
		tui.New(cfg, tui.Deps{
			Registry: registry,
			Viewer:   viewer,
			Opener:   opencv.Open,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		slog.Error("program exited", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		viewer.Stop()
		logFile.Close()
		os.Exit(1)
	}
	slog.Info("stopped")
}
