package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	OutputDir      string `json:"output_dir"`
	AutoTranscribe bool   `json:"auto_transcribe"`
	Language       string `json:"language"` // transcription language, "" for auto-detect
	Model          string `json:"model"`    // whisper model: tiny, base, small, medium, large
	ConvertMP3     bool   `json:"convert_mp3"`
	DeleteWAV      bool   `json:"delete_wav"` // remove the WAV after MP3 conversion
	MicDevice      string `json:"mic_device"` // remembered device names, matched on next start
	LoopbackDevice string `json:"loopback_device"`
	Notifications  bool   `json:"notifications"`
	LogLevel       string `json:"log_level"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	home, _ := os.UserHomeDir()
	cfg := &Config{
		OutputDir:     filepath.Join(home, "Documents", "Record & Transcribe"),
		Language:      "German",
		Model:         "small",
		DeleteWAV:     true,
		Notifications: true,
		LogLevel:      "info",
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "record-transcribe", "config.json")
}
