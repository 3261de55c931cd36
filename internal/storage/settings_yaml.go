package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"octotimer/internal/core/model"
)

const (
	settingsFileName  = "settings.yaml"
	stateFileName     = "CurrentTimer.ini"
	defaultLoopOnDisk = model.DefaultLoopCount
)

// Settings holds application-level preferences: default alarm sounds and the
// location of the live-state file.
type Settings struct {
	DefaultSound1  string
	DefaultSound2  string
	DefaultLoop    int
	StateFilePath  string
	LastPresetPath string
}

type yamlSettings struct {
	DefaultSound1 string `yaml:"default_sound1"`
	DefaultSound2 string `yaml:"default_sound2"`
	// Pointer so an absent key keeps the default of 1; an explicit 0 means
	// ring until stopped.
	DefaultLoop    *int   `yaml:"default_loop"`
	StateFilePath  string `yaml:"state_file"`
	LastPresetPath string `yaml:"last_preset"`
}

// DefaultSettings returns settings used when no settings file exists.
func DefaultSettings(appName string) Settings {
	settings := Settings{DefaultLoop: defaultLoopOnDisk}
	if configDir, err := os.UserConfigDir(); err == nil {
		settings.StateFilePath = filepath.Join(configDir, appName, stateFileName)
	} else {
		settings.StateFilePath = stateFileName
	}
	return settings
}

// LoadSettings reads preferences from YAML. If the settings file does not
// exist, defaults are returned.
func LoadSettings(appName string) (Settings, error) {
	settings := DefaultSettings(appName)
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return settings, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes preferences to YAML.
func SaveSettings(appName string, settings Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	loop := settings.DefaultLoop
	fileData := yamlSettings{
		DefaultSound1:  settings.DefaultSound1,
		DefaultSound2:  settings.DefaultSound2,
		DefaultLoop:    &loop,
		StateFilePath:  settings.StateFilePath,
		LastPresetPath: settings.LastPresetPath,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.DefaultSound1 != "" {
		settings.DefaultSound1 = fileData.DefaultSound1
	}
	if fileData.DefaultSound2 != "" {
		settings.DefaultSound2 = fileData.DefaultSound2
	}
	if fileData.DefaultLoop != nil && *fileData.DefaultLoop >= 0 {
		settings.DefaultLoop = *fileData.DefaultLoop
	}
	if fileData.StateFilePath != "" {
		settings.StateFilePath = fileData.StateFilePath
	}
	settings.LastPresetPath = fileData.LastPresetPath
}
