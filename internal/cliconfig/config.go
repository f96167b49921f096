// Package cliconfig loads desfirectl's YAML configuration file: which
// reader and wire framing to use, and which key slot is backed by which
// key file.
package cliconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root of desfirectl's config.yaml.
type Config struct {
	Reader ReaderConfig             `yaml:"reader"`
	Keys   map[string]KeySlotConfig `yaml:"keys"`
}

// ReaderConfig selects the PC/SC reader and the APDU wire framing to
// speak to it with.
type ReaderConfig struct {
	Index   *int   `yaml:"index"`
	Framing string `yaml:"framing"` // "native" or "wrapped"
}

// KeySlotConfig binds one DESFire key slot (keyed by decimal string,
// e.g. "0") to a key file and its declared type/version.
type KeySlotConfig struct {
	Type    string `yaml:"type"` // "des", "2k3des", "3k3des", "aes128"
	Version byte   `yaml:"version"`
	File    string `yaml:"file"`
}

// Load reads and strictly decodes path, rejecting unknown fields, then
// resolves relative key file paths against the config file's directory
// and validates the result.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(configPath string) {
	dir := filepath.Dir(configPath)
	for slot, kc := range c.Keys {
		trimmed := strings.TrimSpace(kc.File)
		if trimmed != "" && !filepath.IsAbs(trimmed) {
			kc.File = filepath.Clean(filepath.Join(dir, trimmed))
			c.Keys[slot] = kc
		}
	}
}

// Validate checks structural requirements that cannot be expressed in
// the YAML schema itself.
func (c *Config) Validate() error {
	if c.Reader.Index == nil {
		return fmt.Errorf("config.reader.index is required")
	}
	if *c.Reader.Index < 0 {
		return fmt.Errorf("config.reader.index must be >= 0")
	}
	switch c.Reader.Framing {
	case "native", "wrapped":
	default:
		return fmt.Errorf("config.reader.framing must be %q or %q, got %q", "native", "wrapped", c.Reader.Framing)
	}

	for slot, kc := range c.Keys {
		if strings.TrimSpace(kc.File) == "" {
			return fmt.Errorf("config.keys.%s.file is required", slot)
		}
		switch kc.Type {
		case "des", "2k3des", "3k3des", "aes128":
		default:
			return fmt.Errorf("config.keys.%s.type must be one of des/2k3des/3k3des/aes128, got %q", slot, kc.Type)
		}
		if _, err := os.Stat(kc.File); err != nil {
			return fmt.Errorf("config.keys.%s.file: %w", slot, err)
		}
	}
	return nil
}
