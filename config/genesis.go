package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lockvault-io/lockvault/pkg/crypto"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// Denomination constants.
// 1 token = 10^9 base units. All ledger values are in base units.
const (
	Decimals   = 9
	Token      = 1_000_000_000 // 10^9 base units per token
	MilliToken = 1_000_000     // 10^6
	MicroToken = 1_000         // 10^3
)

// Genesis holds the ledger's launch configuration and immutable rules.
// All nodes on a network must agree on these values.
type Genesis struct {
	// Ledger identity
	LedgerID   string `json:"ledger_id"`
	LedgerName string `json:"ledger_name"`
	Symbol     string `json:"symbol,omitempty"` // Token symbol (e.g., "LVT")

	// Launch
	Timestamp uint64 `json:"timestamp"`
	ExtraData string `json:"extra_data,omitempty"`

	// Initial allocations (address -> balance in base units)
	Alloc map[string]uint64 `json:"alloc"`

	// Supply cap in base units (0 = unlimited)
	MaxSupply uint64 `json:"max_supply"`

	// Faucet rules (testnet convenience)
	Faucet FaucetRules `json:"faucet"`
}

// FaucetRules controls the testnet faucet. Disabled on mainnet.
type FaucetRules struct {
	Enabled bool   `json:"enabled"`
	Amount  uint64 `json:"amount,omitempty"` // Base units minted per request
}

// MainnetGenesis returns the mainnet genesis configuration.
func MainnetGenesis() *Genesis {
	return &Genesis{
		LedgerID:   "lockvault-mainnet-1",
		LedgerName: "LockVault Mainnet",
		Symbol:     "LVT",
		Timestamp:  1776297600, // 2026-04-14
		ExtraData:  "LockVault Genesis",
		Alloc: map[string]uint64{
			// Treasury allocation for the initial distribution.
			"0x3f1a9c04d7be22c8a05e6f91b7ad6c334b8860de": 5_000_000 * Token,
		},
		MaxSupply: 100_000_000 * Token,
		Faucet: FaucetRules{
			Enabled: false,
		},
	}
}

// TestnetGenesis returns the testnet genesis configuration.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.LedgerID = "lockvault-testnet-1"
	g.LedgerName = "LockVault Testnet"
	g.ExtraData = "LockVault Testnet Genesis"

	// Testnet has no pre-allocations; everything comes from the faucet.
	g.Alloc = map[string]uint64{}
	g.Faucet = FaucetRules{
		Enabled: true,
		Amount:  100 * Token,
	}
	return g
}

// GenesisFor returns the genesis config for the given network.
func GenesisFor(network NetworkType) *Genesis {
	switch network {
	case Testnet:
		return TestnetGenesis()
	default:
		return MainnetGenesis()
	}
}

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.LedgerID == "" {
		return fmt.Errorf("ledger_id is required")
	}
	if g.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	// Validate alloc addresses and check total doesn't exceed max supply.
	var totalAlloc uint64
	for addrStr, v := range g.Alloc {
		if _, err := types.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		totalAlloc += v
	}
	if g.MaxSupply > 0 && totalAlloc > g.MaxSupply {
		return fmt.Errorf("genesis allocations (%d) exceed max_supply (%d)",
			totalAlloc, g.MaxSupply)
	}

	if g.Faucet.Enabled && g.Faucet.Amount == 0 {
		return fmt.Errorf("faucet.amount must be positive when the faucet is enabled")
	}

	return nil
}

// Hash returns a BLAKE3 hash of the genesis configuration.
// Used to identify the ledger and detect genesis mismatches.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
