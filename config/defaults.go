package config

// DefaultMainnet returns the default node configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Relay: RelayConfig{
			Enabled:    true,
			ListenAddr: "0.0.0.0",
			Port:       30360,
			MaxPeers:   50,
			// Seeds are multiaddr strings, e.g.:
			//   "/ip4/203.0.113.1/tcp/30360/p2p/12D3KooW..."
			//   "/dns4/seed1.lockvault.io/tcp/30360/p2p/12D3KooW..."
			// Real addresses will be filled when seed servers are provisioned.
			Seeds: []string{},
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       8560,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default node configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Relay.Port = 30361
	cfg.RPC.Port = 8660
	return cfg
}

// Default returns the default node configuration for the given network.
func Default(network NetworkType) *Config {
	switch network {
	case Testnet:
		return DefaultTestnet()
	default:
		return DefaultMainnet()
	}
}
