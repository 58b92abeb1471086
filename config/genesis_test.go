package config

import (
	"path/filepath"
	"testing"
)

func TestGenesis_Validate_MainnetValid(t *testing.T) {
	g := MainnetGenesis()
	if err := g.Validate(); err != nil {
		t.Errorf("mainnet genesis should be valid: %v", err)
	}
}

func TestGenesis_Validate_TestnetValid(t *testing.T) {
	g := TestnetGenesis()
	if err := g.Validate(); err != nil {
		t.Errorf("testnet genesis should be valid: %v", err)
	}
}

func TestGenesis_Validate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Genesis)
	}{
		{"missing ledger id", func(g *Genesis) { g.LedgerID = "" }},
		{"missing symbol", func(g *Genesis) { g.Symbol = "" }},
		{"bad alloc address", func(g *Genesis) { g.Alloc = map[string]uint64{"nonsense": 1} }},
		{"alloc exceeds supply", func(g *Genesis) {
			g.MaxSupply = 10
			g.Alloc = map[string]uint64{"0x3f1a9c04d7be22c8a05e6f91b7ad6c334b8860de": 11}
		}},
		{"faucet without amount", func(g *Genesis) { g.Faucet = FaucetRules{Enabled: true} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := MainnetGenesis()
			tc.mutate(g)
			if err := g.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGenesis_FaucetOnlyOnTestnet(t *testing.T) {
	if MainnetGenesis().Faucet.Enabled {
		t.Error("mainnet faucet must be disabled")
	}
	if !TestnetGenesis().Faucet.Enabled {
		t.Error("testnet faucet should be enabled")
	}
}

func TestGenesis_HashDiffersByNetwork(t *testing.T) {
	mh, err := MainnetGenesis().Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	th, err := TestnetGenesis().Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if mh == th {
		t.Error("mainnet and testnet genesis hashes should differ")
	}
}

func TestGenesis_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")

	g := TestnetGenesis()
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("LoadGenesis: %v", err)
	}
	if loaded.LedgerID != g.LedgerID || loaded.Symbol != g.Symbol {
		t.Errorf("loaded %+v, want %+v", loaded, g)
	}
	if loaded.Faucet.Amount != g.Faucet.Amount {
		t.Errorf("faucet amount = %d, want %d", loaded.Faucet.Amount, g.Faucet.Amount)
	}
}
