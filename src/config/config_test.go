package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultNodeConfigIsValid(t *testing.T) {
	if err := DefaultNodeConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadNodeConfig(t *testing.T) {
	peer := strings.Repeat("ab", messaging.XorNameSize)
	path := writeConfig(t, `
address = "localhost:4000"
duty = "Elder(RunAsTransfers)"
section_bits = 2

[[peers]]
name = "`+peer+`"
address = "localhost:4001"
`)
	cfg, err := LoadNodeConfig(path)
	if err != nil {
		t.Fatalf("LoadNodeConfig: %v", err)
	}
	if cfg.Address != "localhost:4000" || cfg.SectionBits != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.K != DefaultNodeConfig().K || cfg.Router != RouterKademlia {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	duty, err := cfg.ParsedDuty()
	if err != nil || duty != messaging.ElderRole(messaging.RunAsTransfers) {
		t.Fatalf("duty = %v, %v", duty, err)
	}
	if len(cfg.Peers) != 1 || cfg.Peers[0].Address != "localhost:4001" {
		t.Fatalf("peers = %+v", cfg.Peers)
	}
}

func TestLoadNodeConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `adress = "typo"`},
		{"bad duty", `duty = "Elder(Sleeping)"`},
		{"empty duty", `duty = ""`},
		{"no duty", `duty = "None"`},
		{"alpha above k", "k = 2\nalpha = 3"},
		{"unknown router", `router = "chord"`},
		{"bad peer name", "[[peers]]\nname = \"zz\"\naddress = \"localhost:1\""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadNodeConfig(writeConfig(t, tc.body)); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("LoadNodeConfig error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "node.toml")
	want := DefaultNodeConfig()
	want.Address = "localhost:5000"
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadNodeConfig(path)
	if err != nil {
		t.Fatalf("LoadNodeConfig: %v", err)
	}
	if got.Address != want.Address || got.Duty != want.Duty || got.K != want.K {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
