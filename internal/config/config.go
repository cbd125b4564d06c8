package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppConfig holds settings for the viewer shell. Cameras are not stored here;
// the camera list lives in memory for the lifetime of the process.
type AppConfig struct {
	ServerIP        string `json:"server_ip"`
	ServerPort      string `json:"server_port"`
	PreviewEnabled  bool   `json:"preview_enabled"`
	FrameIntervalMS int    `json:"frame_interval_ms"`
	JPEGQuality     int    `json:"jpeg_quality"`
	LogFile         string `json:"log_file"`
	LogLevel        string `json:"log_level"`
}

// Default config
func defaultConfig() *AppConfig {
	logFile := "camdeck.log"
	if dir, err := configDir(); err == nil {
		logFile = filepath.Join(dir, "camdeck.log")
	}
	return &AppConfig{
		ServerIP:        "localhost",
		ServerPort:      "8080",
		PreviewEnabled:  true,
		FrameIntervalMS: 30,
		JPEGQuality:     80,
		LogFile:         logFile,
		LogLevel:        "info",
	}
}

// FrameInterval is the pause between capture reads.
func (c *AppConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// ServerAddress is the preview server listen address.
func (c *AppConfig) ServerAddress() string {
	return c.ServerIP + ":" + c.ServerPort
}

func (c *AppConfig) Validate() error {
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.ServerPort)
	}
	if c.FrameIntervalMS < 1 {
		return fmt.Errorf("invalid frame interval: %dms", c.FrameIntervalMS)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d", c.JPEGQuality)
	}
	return nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine user config directory: %w", err)
	}
	return filepath.Join(dir, "camdeck"), nil
}

// Path returns ~/.config/camdeck/config.json (or the platform equivalent).
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file at path, filling missing fields with defaults.
// A missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error unmarshalling config file: %w", err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Save writes the config to path, creating its directory.
func Save(path string, config *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	configBytes, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	if err := os.WriteFile(path, configBytes, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func applyEnv(c *AppConfig) {
	if port := os.Getenv("CAMDECK_PORT"); port != "" {
		c.ServerPort = port
	}
	if level := os.Getenv("CAMDECK_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}
