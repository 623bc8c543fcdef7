// Package config loads node settings from toml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

const (
	RouterKademlia = "kademlia"
	RouterDefault  = "default"
)

var ErrInvalidConfig = errors.New("invalid node config")

// PeerConfig is a bootstrap peer.
type PeerConfig struct {
	Name    string `toml:"name"` // hex xor name
	Address string `toml:"address"`
}

type NodeConfig struct {
	Address       string       `toml:"address"`
	Duty          string       `toml:"duty"`         // e.g. "Elder(RunAsGateway)"
	SectionBits   int          `toml:"section_bits"` // leading bits shared by names in this node's section
	Router        string       `toml:"router"`
	K             int          `toml:"k"`
	Alpha         int          `toml:"alpha"`
	CacheCapacity int          `toml:"cache_capacity"`
	KeyFile       string       `toml:"key_file"`
	Peers         []PeerConfig `toml:"peers"`
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Address:       "localhost:3000",
		Duty:          "Elder(RunAsGateway)",
		SectionBits:   0,
		Router:        RouterKademlia,
		K:             20,
		Alpha:         3,
		CacheCapacity: 4096,
		KeyFile:       "./local/node.key",
	}
}

// LoadNodeConfig reads path over the defaults, so a file only needs the
// settings it changes.
func LoadNodeConfig(path string) (NodeConfig, error) {
	cfg := DefaultNodeConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return NodeConfig{}, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return NodeConfig{}, fmt.Errorf("%w: unknown key %s in %s", ErrInvalidConfig, undecoded[0], path)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as toml, creating parent directories.
func (c NodeConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c NodeConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}
	duty, err := c.ParsedDuty()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if duty.IsZero() {
		return fmt.Errorf("%w: duty is required", ErrInvalidConfig)
	}
	if c.SectionBits < 0 || c.SectionBits > messaging.XorNameSize*8 {
		return fmt.Errorf("%w: section_bits %d out of range", ErrInvalidConfig, c.SectionBits)
	}
	if c.Router != RouterKademlia && c.Router != RouterDefault {
		return fmt.Errorf("%w: unknown router %q", ErrInvalidConfig, c.Router)
	}
	if c.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrInvalidConfig)
	}
	if c.Alpha <= 0 || c.Alpha > c.K {
		return fmt.Errorf("%w: alpha must be in 1..k", ErrInvalidConfig)
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("%w: cache_capacity is negative", ErrInvalidConfig)
	}
	for i, p := range c.Peers {
		if _, err := messaging.ParseXorName(p.Name); err != nil {
			return fmt.Errorf("%w: peer %d: %v", ErrInvalidConfig, i, err)
		}
		if p.Address == "" {
			return fmt.Errorf("%w: peer %d has no address", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c NodeConfig) ParsedDuty() (messaging.Duty, error) {
	return messaging.ParseDuty(c.Duty)
}
