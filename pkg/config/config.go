package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rubiojr/tracesink/pkg/trace"
)

//go:embed config.toml.sample
var configTemplate string

const DefaultListen = "127.0.0.1:8089"

type Config struct {
	Mode       trace.Mode   `toml:"mode"`
	LineEnding string       `toml:"line_ending"`
	Output     OutputConfig `toml:"output"`
	Server     ServerConfig `toml:"server"`
}

type OutputConfig struct {
	// Path is the trace file. Empty means console (or the live hub under
	// serve).
	Path   string `toml:"path"`
	Append bool   `toml:"append"`
}

type ServerConfig struct {
	Listen  string `toml:"listen"`
	Archive string `toml:"archive,omitempty"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Mode:       trace.ModePrint,
		LineEnding: "native",
		Output:     OutputConfig{Append: true},
		Server:     ServerConfig{Listen: DefaultListen},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Server.Listen == "" {
		config.Server.Listen = DefaultListen
	}

	return config, nil
}

// Validate checks the fields that cannot be checked while decoding.
func (c *Config) Validate() error {
	if _, err := trace.ParseLineEnding(c.LineEnding); err != nil {
		return fmt.Errorf("line_ending: %w", err)
	}
	return nil
}

// Ending returns the parsed line ending. Validate has already rejected bad
// values, so failures fall back to the platform default.
func (c *Config) Ending() trace.LineEnding {
	e, err := trace.ParseLineEnding(c.LineEnding)
	if err != nil {
		return trace.NativeLineEnding()
	}
	return e
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	archive := c.Server.Archive
	if archive == "" {
		var err error
		archive, err = GetDefaultArchivePath()
		if err != nil {
			return "", fmt.Errorf("getting default archive path: %w", err)
		}
	}

	// Replace the placeholder archive with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/tracesink/archive.db", archive, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default data directory
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "tracesink")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultArchivePath returns the default SQLite archive path
func GetDefaultArchivePath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "archive.db"), nil
}

// GetConfigDir returns the configuration directory for tracesink
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "tracesink")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
