package node

import (
	"testing"
	"time"

	"github.com/lockvault-io/lockvault/config"
	"github.com/lockvault-io/lockvault/internal/bank"
	klog "github.com/lockvault-io/lockvault/internal/log"
	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

func TestInitGenesis_AppliesAlloc(t *testing.T) {
	klog.Init("error", false, "")
	logger := klog.WithComponent("test")

	gen := &config.Genesis{
		LedgerID:   "lockvault-test-init",
		LedgerName: "Init Test",
		Symbol:     "LVT",
		Timestamp:  uint64(time.Now().Unix()),
		Alloc: map[string]uint64{
			"0x0102030405060708090a0b0c0d0e0f1011121314": 1_000,
			"0x1112131415161718191a1b1c1d1e1f2021222324": 2_500,
		},
		MaxSupply: 1_000_000,
	}

	db := storage.NewMemory()
	b := bank.New(db)
	if err := initGenesis(db, b, gen, logger); err != nil {
		t.Fatalf("initGenesis: %v", err)
	}

	addr, _ := types.ParseAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	balance, err := b.Balance(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 1_000 {
		t.Errorf("balance = %d, want 1000", balance)
	}

	supply, _ := b.TotalSupply()
	if supply != 3_500 {
		t.Errorf("supply = %d, want 3500", supply)
	}

	// Second run is a no-op resume, not a double mint.
	if err := initGenesis(db, b, gen, logger); err != nil {
		t.Fatalf("initGenesis resume: %v", err)
	}
	supply, _ = b.TotalSupply()
	if supply != 3_500 {
		t.Errorf("supply after resume = %d, want 3500", supply)
	}
}

func TestInitGenesis_RejectsDifferentGenesis(t *testing.T) {
	klog.Init("error", false, "")
	logger := klog.WithComponent("test")

	db := storage.NewMemory()
	b := bank.New(db)

	gen := config.GenesisFor(config.Testnet)
	if err := initGenesis(db, b, gen, logger); err != nil {
		t.Fatalf("initGenesis: %v", err)
	}

	other := config.GenesisFor(config.Mainnet)
	if err := initGenesis(db, b, other, logger); err == nil {
		t.Fatal("expected error for mismatched genesis")
	}
}

func TestInitGenesis_BadAllocAddress(t *testing.T) {
	klog.Init("error", false, "")
	logger := klog.WithComponent("test")

	gen := &config.Genesis{
		LedgerID:  "lockvault-test-bad",
		Symbol:    "LVT",
		Alloc:     map[string]uint64{"not-an-address": 100},
		MaxSupply: 1_000,
	}

	db := storage.NewMemory()
	if err := initGenesis(db, bank.New(db), gen, logger); err == nil {
		t.Fatal("expected error for invalid alloc address")
	}
}

func TestNodeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()

	cfg := config.Default(config.Testnet)
	cfg.DataDir = tmpDir
	cfg.Relay.Port = 0 // Use random port to avoid conflicts.
	cfg.Relay.NoDiscover = true
	cfg.Relay.Seeds = nil
	cfg.RPC.Port = 0 // Use random port.

	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if n.RPCAddr() == "" {
		t.Error("RPCAddr should not be empty")
	}
	if n.Ledger() == nil || n.Bank() == nil {
		t.Error("core components should be initialized")
	}

	// Stop should not panic or error.
	n.Stop()
}

func TestNodeLifecycle_RelayDisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tmpDir := t.TempDir()

	cfg := config.Default(config.Testnet)
	cfg.DataDir = tmpDir
	cfg.Relay.Enabled = false
	cfg.RPC.Port = 0

	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if n.PeerCount() != 0 {
		t.Errorf("peer count = %d, want 0", n.PeerCount())
	}
	n.Stop()
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := config.LoadFromFile(tmpDir, config.Testnet)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Network != config.Testnet {
		t.Errorf("expected testnet, got %s", cfg.Network)
	}
	if cfg.DataDir != tmpDir {
		t.Errorf("expected datadir %s, got %s", tmpDir, cfg.DataDir)
	}
}
