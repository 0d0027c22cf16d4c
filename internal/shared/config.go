package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Identity   IdentityConfig   `toml:"identity"`
	Relays     RelayConfig      `toml:"relays"`
	Blossom    BlossomConfig    `toml:"blossom"`
	Encryption EncryptionConfig `toml:"encryption"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Donation   DonationConfig   `toml:"donation"`
}

// IdentityConfig locates the Nostr keystore on disk.
type IdentityConfig struct {
	KeyPath string `toml:"key_path"`
}

// RelayConfig lists the relays events are published to and fetched from.
type RelayConfig struct {
	URLs           []string `toml:"urls"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// BlossomConfig lists the media servers used for file attachments, in fallback order.
type BlossomConfig struct {
	Servers []string `toml:"servers"`
}

// EncryptionConfig toggles NIP-44 encryption of event content.
type EncryptionConfig struct {
	Enabled bool `toml:"enabled"`
}

// DatabaseConfig contains local cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local read-only HTTP viewer.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DonationConfig holds the lightning address for the donate command.
type DonationConfig struct {
	LightningAddress string `toml:"lightning_address"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk as TOML.
//
// Used by the relay and blossom commands when servers are added or removed.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
