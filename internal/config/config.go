// Package config loads paramscope settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Hosts a scan can run through.
const (
	ViaStatic = "static"
	ViaCDP    = "cdp"
	ViaRod    = "rod"
)

// Config is the top-level paramscope configuration.
type Config struct {
	Via     string        `yaml:"via"`     // static | cdp | rod
	Output  string        `yaml:"output"`  // pretty | compact | json
	Timeout time.Duration `yaml:"timeout"` // 0 = no limit
	Static  StaticConfig  `yaml:"static"`
	CDP     CDPConfig     `yaml:"cdp"`
	Rod     RodConfig     `yaml:"rod"`
	Export  ExportConfig  `yaml:"export"`
	Compact CompactConfig `yaml:"compact"`
}

// StaticConfig controls plain HTTP fetching.
type StaticConfig struct {
	UserAgent string   `yaml:"user_agent"`
	Headers   []string `yaml:"headers"` // "Name: value"
}

// CDPConfig points at a browser started with remote debugging.
type CDPConfig struct {
	Endpoint string `yaml:"endpoint"`
	Match    string `yaml:"match"`
}

// RodConfig controls the launched browser.
type RodConfig struct {
	Bin        string `yaml:"bin"`
	ControlURL string `yaml:"control_url"`
	Show       bool   `yaml:"show"` // run with a visible window
}

// ExportConfig sets where page_params.json lands.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// CompactConfig bounds section bodies in compact output.
type CompactConfig struct {
	MaxSectionSize int `yaml:"max_section_size"`
	MaxLines       int `yaml:"max_lines"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/paramscope/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "paramscope", "config.yaml"), nil
}

// Load reads path, or the default location when path is empty. Only an
// explicitly named file has to exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			cfg := Default()
			cfg.applyEnv()
			return cfg, nil
		}
	}

	cfg, err := LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg = Default()
		} else {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Via {
	case "", ViaStatic, ViaCDP, ViaRod:
	default:
		return fmt.Errorf("unknown via %q (want static, cdp or rod)", c.Via)
	}
	switch c.Output {
	case "", "pretty", "compact", "json":
	default:
		return fmt.Errorf("unknown output %q", c.Output)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Via == "" {
		c.Via = ViaStatic
	}
	if c.Output == "" {
		c.Output = "pretty"
	}
	if c.CDP.Endpoint == "" {
		c.CDP.Endpoint = "http://127.0.0.1:9222"
	}
	if c.Compact.MaxSectionSize <= 0 {
		c.Compact.MaxSectionSize = 800
	}
	if c.Compact.MaxLines <= 0 {
		c.Compact.MaxLines = 20
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PARAMSCOPE_CDP"); v != "" {
		c.CDP.Endpoint = v
	}
	if v := os.Getenv("PARAMSCOPE_VIA"); v == ViaStatic || v == ViaCDP || v == ViaRod {
		c.Via = v
	}
}
