// Package node provides a reusable lockvault node that can be embedded
// in any binary (daemon, tools, tests).
package node

import (
	"errors"
	"fmt"
	"os"

	"github.com/lockvault-io/lockvault/config"
	"github.com/lockvault-io/lockvault/internal/bank"
	"github.com/lockvault-io/lockvault/internal/ledger"
	klog "github.com/lockvault-io/lockvault/internal/log"
	"github.com/lockvault-io/lockvault/internal/relay"
	"github.com/lockvault-io/lockvault/internal/rpc"
	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/rs/zerolog"
)

// genesisHashKey marks an initialized database and pins it to one genesis.
var genesisHashKey = []byte("genesis/hash")

// Node is a fully-initialized lockvault node.
type Node struct {
	cfg     *config.Config
	genesis *config.Genesis
	logger  zerolog.Logger

	// Core
	db      storage.DB
	bank    *bank.Bank
	ledger  *ledger.Ledger
	journal *ledger.Journal

	// Networking
	relayNode *relay.Node

	// RPC
	rpcServer *rpc.Server
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, genesis, storage, ledger, relay, RPC) but does NOT bind any
// listeners. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/lockvault.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	// ── 2. Genesis ──────────────────────────────────────────────────
	genesis := config.GenesisFor(cfg.Network)

	logger.Info().
		Str("ledger_id", genesis.LedgerID).
		Str("network", string(cfg.Network)).
		Str("symbol", genesis.Symbol).
		Msg("Starting LockVault Node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
	}
	logger.Info().Str("path", cfg.DBDir()).Msg("Database opened")

	// ── 4. Bank + genesis allocation ────────────────────────────────
	b := bank.New(db)
	if err := initGenesis(db, b, genesis, logger); err != nil {
		db.Close()
		return nil, err
	}

	// ── 5. Ledger ───────────────────────────────────────────────────
	journal := ledger.NewJournal(db)
	l := ledger.New(ledger.NewStore(db), b)
	l.AddSink(journal)
	l.AddSink(ledger.LogSink{Logger: klog.WithComponent("events")})

	// ── 6. Relay ────────────────────────────────────────────────────
	var relayNode *relay.Node
	if cfg.Relay.Enabled {
		relayNode = relay.New(relay.Config{
			ListenAddr: cfg.Relay.ListenAddr,
			Port:       cfg.Relay.Port,
			Seeds:      cfg.Relay.Seeds,
			MaxPeers:   cfg.Relay.MaxPeers,
			NoDiscover: cfg.Relay.NoDiscover,
			DB:         storage.NewPrefixDB(db, []byte("relay/")),
			DHTServer:  cfg.Relay.DHTServer,
			NetworkID:  genesis.LedgerID,
			DataDir:    cfg.RelayDir(),
		})

		eventLog := klog.WithComponent("relay-events")
		relayNode.SetEventHandler(func(from peer.ID, ev ledger.Event) {
			eventLog.Info().
				Str("from", from.String()[:16]+"...").
				Str("type", string(ev.Type)).
				Str("account", ev.Account.String()).
				Uint64("lock_id", ev.LockID).
				Msg("Remote ledger event")
		})

		// Local events fan out to connected peers.
		l.AddSink(relayNode)
	} else {
		logger.Warn().Msg("Relay disabled by config; node will run offline")
	}

	// ── 7. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		rpcServer = rpc.New(rpcAddr, l, b, journal, db, genesis, cfg.Network, cfg.RPC)
		if relayNode != nil {
			rpcServer.SetRelay(relayNode)
		}
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	return &Node{
		cfg:       cfg,
		genesis:   genesis,
		logger:    logger,
		db:        db,
		bank:      b,
		ledger:    l,
		journal:   journal,
		relayNode: relayNode,
		rpcServer: rpcServer,
	}, nil
}

// initGenesis applies the genesis allocation on first start and pins the
// database to the genesis hash afterwards. A database initialized from a
// different genesis is refused.
func initGenesis(db storage.DB, b *bank.Bank, genesis *config.Genesis, logger zerolog.Logger) error {
	genHash, err := genesis.Hash()
	if err != nil {
		return fmt.Errorf("hash genesis: %w", err)
	}

	stored, err := db.Get(genesisHashKey)
	switch {
	case err == nil:
		if string(stored) != genHash.String() {
			return fmt.Errorf("database initialized from different genesis (have %s, want %s)",
				string(stored), genHash.String())
		}
		logger.Info().Str("genesis", genHash.String()[:16]+"...").Msg("Ledger resumed from database")
		return nil
	case errors.Is(err, storage.ErrKeyNotFound):
		// First start: apply the allocation below.
	default:
		return fmt.Errorf("read genesis marker: %w", err)
	}

	total := uint64(0)
	for addrStr, amount := range genesis.Alloc {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return fmt.Errorf("genesis alloc address %s: %w", addrStr, err)
		}
		if err := b.Mint(addr, amount); err != nil {
			return fmt.Errorf("genesis alloc mint %s: %w", addrStr, err)
		}
		total += amount
	}

	if err := db.Put(genesisHashKey, []byte(genHash.String())); err != nil {
		return fmt.Errorf("write genesis marker: %w", err)
	}

	logger.Info().
		Str("genesis", genHash.String()[:16]+"...").
		Int("accounts", len(genesis.Alloc)).
		Uint64("allocated", total).
		Msg("Ledger initialized from genesis")
	return nil
}

// Start binds the relay and RPC listeners.
func (n *Node) Start() error {
	if n.relayNode != nil {
		if err := n.relayNode.Start(); err != nil {
			return fmt.Errorf("start relay: %w", err)
		}
		n.logger.Info().
			Str("id", n.relayNode.ID().String()).
			Int("port", n.cfg.Relay.Port).
			Bool("discovery", !n.cfg.Relay.NoDiscover).
			Msg("Relay started")
	}

	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			if n.relayNode != nil {
				n.relayNode.Stop()
			}
			return fmt.Errorf("start RPC: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server started")
	}

	n.logger.Info().
		Str("ledger_id", n.genesis.LedgerID).
		Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.relayNode != nil {
		n.relayNode.Stop()
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Ledger returns the node's ledger for embedding scenarios.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Bank returns the node's token bank.
func (n *Node) Bank() *bank.Bank {
	return n.bank
}

// PeerCount returns the number of connected relay peers.
func (n *Node) PeerCount() int {
	if n.relayNode == nil {
		return 0
	}
	return n.relayNode.PeerCount()
}
