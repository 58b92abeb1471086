// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Ledger rules: Defined in genesis, immutable, must match across all nodes
//   - Node settings: Runtime configuration, can vary per node
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Config holds node-specific runtime configuration.
// These settings can vary between nodes without breaking ledger agreement.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Event relay (p2p)
	Relay RelayConfig

	// RPC server
	RPC RPCConfig

	// Logging
	Log LogConfig
}

// RelayConfig holds event relay network settings.
type RelayConfig struct {
	Enabled    bool     `conf:"relay.enabled"`
	ListenAddr string   `conf:"relay.listen"`
	Port       int      `conf:"relay.port"`
	Seeds      []string `conf:"relay.seeds"`
	MaxPeers   int      `conf:"relay.maxpeers"`
	NoDiscover bool     `conf:"relay.nodiscover"`
	DHTServer  bool     `conf:"relay.dhtserver"` // Run DHT in server mode (for seed nodes)
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.lockvault
//	macOS:   ~/Library/Application Support/LockVault
//	Windows: %APPDATA%\LockVault
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lockvault"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "LockVault")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "LockVault")
		}
		return filepath.Join(home, "AppData", "Roaming", "LockVault")
	default:
		return filepath.Join(home, ".lockvault")
	}
}

// NetworkDir returns the network-specific data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// DBDir returns the ledger database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.NetworkDir(), "db")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDir(), "keystore")
}

// RelayDir returns the relay identity directory.
func (c *Config) RelayDir() string {
	return filepath.Join(c.NetworkDir(), "relay")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "lockvault.conf")
}
