package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "devterm"

	// DefaultFile is the configuration file name used when none is given.
	DefaultFile = "term.json"
)

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/devterm or $HOME/.config/devterm
//   - macOS: $HOME/.config/devterm
//   - Windows: %LOCALAPPDATA%\devterm
func GetConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// Resolve finds the configuration file to load. A path that exists is used
// as given; a relative path that does not exist is retried inside the
// configuration directory.
func Resolve(path string) (string, error) {
	if path == "" {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) || filepath.IsAbs(path) {
		return "", fmt.Errorf("config file %s: %w", path, err)
	}

	dir, err := GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("config file %s not found and %w", path, err)
	}

	candidate := filepath.Join(dir, path)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("config file %s not found (also tried %s)", path, candidate)
	}
	return candidate, nil
}

const exampleConfig = `{
  // Framing wrapped around every command sent to the device.
  "prefix": "AT+",
  "sufix": "\r\n",

  // Sent once when the session starts.
  "init": "RESET",

  "commands": ["PING", "STATUS", "VERSION"],

  "macro": {
    "led_on": { "commands": ["GPIO1=1"] },
    "blink": {
      "commands": ["GPIO1=1", "GPIO1=0"],
      "code": "./on-reply.sh"
    }
  },

  // Used by --remote and by the bridge command.
  "remote": {
    "broker": "localhost",
    "publish": "devterm/tx",
    "subscribe": "devterm/rx"
  }
}
`

// WriteExample writes an annotated example configuration to path. An
// existing file is never overwritten.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Write to a temporary file first so a crash never leaves half a file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
