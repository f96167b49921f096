package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadValidConfigResolvesRelativeKeyPaths(t *testing.T) {
	tmp := t.TempDir()
	keyPath := filepath.Join(tmp, "master.hex")
	if err := os.WriteFile(keyPath, []byte("00112233445566778899AABBCCDDEEFF\n"), 0o644); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	cfgPath := filepath.Join(tmp, "config.yaml")
	cfgYAML := `
reader:
  index: 0
  framing: native
keys:
  "0":
    type: aes128
    version: 0
    file: master.hex
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Keys["0"].File != keyPath {
		t.Fatalf("key file = %q, want resolved path %q", cfg.Keys["0"].File, keyPath)
	}
	if cfg.Reader.Framing != "native" {
		t.Fatalf("framing = %q, want native", cfg.Reader.Framing)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	cfgYAML := `
reader:
  index: 0
  framing: native
  bogus_field: true
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

func TestLoadRejectsInvalidFraming(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	cfgYAML := `
reader:
  index: 0
  framing: telepathic
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected an error for an invalid framing value")
	}
}

func TestLoadRejectsMissingKeyFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	cfgYAML := `
reader:
  index: 0
  framing: wrapped
keys:
  "0":
    type: aes128
    version: 0
    file: does-not-exist.hex
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected an error for a missing key file")
	}
}
