// lockvault-cli is a command-line client for interacting with a lockvaultd node.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lockvault-io/lockvault/config"
	"github.com/lockvault-io/lockvault/internal/rpcclient"
	"github.com/lockvault-io/lockvault/internal/wallet"
	"github.com/lockvault-io/lockvault/pkg/types"
	"golang.org/x/term"
)

// keystoreDir returns the keystore path matching lockvaultd's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := ""
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--testnet":
			network = "testnet"
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if rpcURL == "" {
		if network == "testnet" {
			rpcURL = "http://127.0.0.1:8660"
		} else {
			rpcURL = "http://127.0.0.1:8560"
		}
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ksDir := keystoreDir(dataDir, network)
	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "balance":
		cmdBalance(client, cmdArgs, ksDir)
	case "faucet":
		cmdFaucet(client, cmdArgs, ksDir)
	case "lock":
		cmdLock(client, cmdArgs, ksDir)
	case "extend":
		cmdExtend(client, cmdArgs, ksDir)
	case "claim":
		cmdClaim(client, cmdArgs, ksDir)
	case "locks":
		cmdLocks(client, cmdArgs, ksDir)
	case "claims":
		cmdClaims(client, cmdArgs, ksDir)
	case "claimable":
		cmdClaimable(client, cmdArgs, ksDir)
	case "events":
		cmdEvents(client, cmdArgs)
	case "peers":
		cmdPeers(client)
	case "wallet":
		cmdWallet(cmdArgs, ksDir)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: lockvault-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8560)
  --datadir <path>    Data directory (default: ~/.lockvault)
  --network <net>     mainnet (default) or testnet
  --testnet           Shorthand for --network testnet

Commands:
  status                          Show ledger status
  balance [address|--wallet <w>]  Show spendable balance
  faucet [address|--wallet <w>]   Request test funds (testnet only)

  lock --wallet <w> --amount <amt> --duration <dur>
                                  Lock tokens until now+duration
  extend --wallet <w> --lock <id> --additional <dur>
                                  Push a lock's maturity further out
  claim --wallet <w> --lock <id>  Claim a matured lock

  locks <address> [--offset N --limit N]
                                  Show an account's lock history
  claims <address> [--offset N --limit N]
                                  Show an account's claim history
  claimable <address> <lock_id>   Show the claimable amount of one lock
  events [--offset N --limit N]   Show the global event journal
  peers                           Show connected peers

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address --wallet <w>     List wallet addresses
  wallet new-address --wallet <w> Generate a new address

Durations accept s/m/h/d suffixes (e.g. 30d, 12h) or plain seconds.
Amounts are in LVT (e.g. 1.5 = 1500000000 base units).
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	info, err := client.GetInfo()
	if err != nil {
		fatal("ledger_getInfo: %v", err)
	}

	fmt.Printf("Ledger:   %s (%s)\n", info.LedgerID, info.LedgerName)
	fmt.Printf("Network:  %s\n", info.Network)
	fmt.Printf("Symbol:   %s (%d decimals)\n", info.Symbol, info.Decimals)
	fmt.Printf("Supply:   %s %s\n", formatAmount(info.TotalSupply), info.Symbol)
	fmt.Printf("Locked:   %s %s\n", formatAmount(info.VaultLocked), info.Symbol)
	fmt.Printf("Events:   %d\n", info.EventCount)
	fmt.Printf("Peers:    %d\n", info.PeerCount)
}

// ── balance / faucet ────────────────────────────────────────────────────

// resolveAddress turns either a positional address or a --wallet flag into
// an address. Wallet resolution uses the stored account metadata and needs
// no password.
func resolveAddress(args []string, ksDir, usageMsg string) types.Address {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Account index")

	var positional string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = args[0]
		args = args[1:]
	}
	fs.Parse(args)

	if positional != "" {
		addr, err := types.ParseAddress(positional)
		if err != nil {
			fatal("invalid address: %v", err)
		}
		return addr
	}

	if *walletName == "" {
		fatal("%s", usageMsg)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	accounts, err := ks.ListAccounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	for _, acct := range accounts {
		if acct.Index == uint32(*account) {
			addr, err := types.ParseAddress(acct.Address)
			if err != nil {
				fatal("stored address: %v", err)
			}
			return addr
		}
	}
	fatal("wallet %s has no account %d", *walletName, *account)
	return types.Address{}
}

func cmdBalance(client *rpcclient.Client, args []string, ksDir string) {
	addr := resolveAddress(args, ksDir, "Usage: lockvault-cli balance <address> | --wallet <name>")

	balance, err := client.GetBalance(addr)
	if err != nil {
		fatal("bank_getBalance: %v", err)
	}
	fmt.Printf("Address: %s\n", addr.String())
	fmt.Printf("Balance: %s LVT\n", formatAmount(balance))
}

func cmdFaucet(client *rpcclient.Client, args []string, ksDir string) {
	addr := resolveAddress(args, ksDir, "Usage: lockvault-cli faucet <address> | --wallet <name>")

	balance, err := client.Faucet(addr)
	if err != nil {
		fatal("bank_faucet: %v", err)
	}
	fmt.Printf("Funds received.\n")
	fmt.Printf("Address: %s\n", addr.String())
	fmt.Printf("Balance: %s LVT\n", formatAmount(balance))
}

// ── signer loading ──────────────────────────────────────────────────────

// loadSigner prompts for the wallet password and derives the signing key
// for the given account index.
func loadSigner(ksDir, walletName string, account uint32) *rpcclient.Signer {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}
	seed, err := ks.Load(walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}

	master, err := wallet.NewMasterKey(seed)
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("derive master key: %v", err)
	}

	hdKey, err := master.DeriveAccount(account)
	if err != nil {
		fatal("derive account: %v", err)
	}
	key, err := hdKey.Signer()
	if err != nil {
		fatal("derive signing key: %v", err)
	}
	return rpcclient.NewSigner(key)
}

// ── lock / extend / claim ───────────────────────────────────────────────

func cmdLock(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Account index")
	amountStr := fs.String("amount", "", "Amount in LVT")
	durationStr := fs.String("duration", "", "Lock duration (e.g. 30d, 12h, 3600)")
	fs.Parse(args)

	if *walletName == "" || *amountStr == "" || *durationStr == "" {
		fatal("Usage: lockvault-cli lock --wallet <name> --amount <amt> --duration <dur>")
	}

	amount, err := parseAmount(*amountStr)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	duration, err := parseDuration(*durationStr)
	if err != nil {
		fatal("invalid duration: %v", err)
	}

	signer := loadSigner(ksDir, *walletName, uint32(*account))
	rec, err := client.Lock(signer, amount, duration)
	if err != nil {
		fatal("ledger_lock: %v", err)
	}

	fmt.Printf("Lock created.\n")
	fmt.Printf("  Lock ID:  %d\n", rec.ID)
	fmt.Printf("  Amount:   %s LVT\n", formatAmount(rec.Amount))
	fmt.Printf("  Matures:  %s\n", formatTime(rec.EndTime))
}

func cmdExtend(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("extend", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Account index")
	lockID := fs.Uint64("lock", 0, "Lock ID")
	lockIDSet := false
	additionalStr := fs.String("additional", "", "Additional duration (e.g. 30d)")
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lock" {
			lockIDSet = true
		}
	})

	if *walletName == "" || !lockIDSet || *additionalStr == "" {
		fatal("Usage: lockvault-cli extend --wallet <name> --lock <id> --additional <dur>")
	}

	additional, err := parseDuration(*additionalStr)
	if err != nil {
		fatal("invalid duration: %v", err)
	}

	signer := loadSigner(ksDir, *walletName, uint32(*account))
	rec, err := client.Extend(signer, *lockID, additional)
	if err != nil {
		fatal("ledger_extend: %v", err)
	}

	fmt.Printf("Lock extended.\n")
	fmt.Printf("  Lock ID:  %d\n", rec.ID)
	fmt.Printf("  Matures:  %s\n", formatTime(rec.EndTime))
}

func cmdClaim(client *rpcclient.Client, args []string, ksDir string) {
	fs := flag.NewFlagSet("claim", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Account index")
	lockID := fs.Uint64("lock", 0, "Lock ID")
	lockIDSet := false
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lock" {
			lockIDSet = true
		}
	})

	if *walletName == "" || !lockIDSet {
		fatal("Usage: lockvault-cli claim --wallet <name> --lock <id>")
	}

	signer := loadSigner(ksDir, *walletName, uint32(*account))
	rec, err := client.Claim(signer, *lockID)
	if err != nil {
		fatal("ledger_claim: %v", err)
	}

	fmt.Printf("Lock claimed.\n")
	fmt.Printf("  Lock ID:  %d\n", rec.LockID)
	fmt.Printf("  Amount:   %s LVT\n", formatAmount(rec.Amount))
	fmt.Printf("  Claimed:  %s\n", formatTime(rec.ClaimedAt))
}

// ── history reads ───────────────────────────────────────────────────────

// parseHistoryArgs extracts a positional address plus --offset/--limit.
func parseHistoryArgs(args []string, ksDir, usageMsg string) (types.Address, uint64, uint64, bool) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	account := fs.Uint("account", 0, "Account index")
	offset := fs.Uint64("offset", 0, "Page offset")
	limit := fs.Uint64("limit", 0, "Page size (0 = all)")

	var positional string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional = args[0]
		args = args[1:]
	}
	fs.Parse(args)

	var addr types.Address
	if positional != "" {
		var err error
		addr, err = types.ParseAddress(positional)
		if err != nil {
			fatal("invalid address: %v", err)
		}
	} else {
		addr = resolveAddress([]string{"--wallet", *walletName, "--account", strconv.Itoa(int(*account))}, ksDir, usageMsg)
	}

	paged := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "offset" || f.Name == "limit" {
			paged = true
		}
	})
	return addr, *offset, *limit, paged
}

func cmdLocks(client *rpcclient.Client, args []string, ksDir string) {
	addr, offset, limit, paged := parseHistoryArgs(args, ksDir,
		"Usage: lockvault-cli locks <address> [--offset N --limit N]")

	var err error
	var locks []lockRow
	if paged {
		recs, rerr := client.GetLockHistoryRange(addr, offset, limit)
		err = rerr
		for _, r := range recs {
			locks = append(locks, lockRow{r.ID, r.Amount, r.StartTime, r.EndTime, r.Claimed})
		}
	} else {
		recs, rerr := client.GetLockHistory(addr)
		err = rerr
		for _, r := range recs {
			locks = append(locks, lockRow{r.ID, r.Amount, r.StartTime, r.EndTime, r.Claimed})
		}
	}
	if err != nil {
		fatal("lock history: %v", err)
	}

	if len(locks) == 0 {
		fmt.Println("No locks found.")
		return
	}
	for _, l := range locks {
		status := "locked"
		if l.claimed {
			status = "claimed"
		} else if uint64(time.Now().Unix()) >= l.endTime {
			status = "matured"
		}
		fmt.Printf("  [%d] %s LVT  %s -> %s  (%s)\n",
			l.id, formatAmount(l.amount), formatTime(l.startTime), formatTime(l.endTime), status)
	}
}

type lockRow struct {
	id        uint64
	amount    uint64
	startTime uint64
	endTime   uint64
	claimed   bool
}

func cmdClaims(client *rpcclient.Client, args []string, ksDir string) {
	addr, offset, limit, paged := parseHistoryArgs(args, ksDir,
		"Usage: lockvault-cli claims <address> [--offset N --limit N]")

	claims, err := client.GetClaimHistory(addr)
	if paged {
		claims, err = client.GetClaimHistoryRange(addr, offset, limit)
	}
	if err != nil {
		fatal("claim history: %v", err)
	}

	if len(claims) == 0 {
		fmt.Println("No claims found.")
		return
	}
	for i, c := range claims {
		fmt.Printf("  [%d] lock %d: %s LVT at %s\n",
			uint64(i)+offset, c.LockID, formatAmount(c.Amount), formatTime(c.ClaimedAt))
	}
}

func cmdClaimable(client *rpcclient.Client, args []string, ksDir string) {
	if len(args) < 2 {
		fatal("Usage: lockvault-cli claimable <address> <lock_id>")
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		fatal("invalid address: %v", err)
	}
	lockID, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fatal("invalid lock id: %v", err)
	}

	claimable, err := client.GetClaimable(addr, lockID)
	if err != nil {
		fatal("ledger_getClaimable: %v", err)
	}
	fmt.Printf("Claimable: %s LVT\n", formatAmount(claimable))
}

func cmdEvents(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	offset := fs.Uint64("offset", 0, "Journal offset")
	limit := fs.Uint64("limit", 20, "Page size")
	fs.Parse(args)

	events, err := client.GetEvents(*offset, *limit)
	if err != nil {
		fatal("ledger_getEvents: %v", err)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}
	for _, ev := range events {
		fmt.Printf("  #%d %-8s %s lock %d  %s LVT\n",
			ev.Seq, ev.Type, ev.Account.String(), ev.LockID, formatAmount(ev.Amount))
	}
}

// ── peers ───────────────────────────────────────────────────────────────

func cmdPeers(client *rpcclient.Client) {
	peers, err := client.GetPeerInfo()
	if err != nil {
		fatal("net_getPeerInfo: %v", err)
	}

	if len(peers) == 0 {
		fmt.Println("No peers connected.")
		return
	}
	fmt.Printf("Connected peers: %d\n", len(peers))
	for _, p := range peers {
		connected := time.Unix(p.ConnectedAt, 0).UTC().Format("2006-01-02 15:04:05")
		fmt.Printf("  %s  since %s  (%s)\n", p.ID, connected, p.Source)
	}
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: lockvault-cli wallet <create|import|list|address|new-address> [flags]")
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(args[1:], ksDir)
	case "import":
		cmdWalletImport(args[1:], ksDir)
	case "list":
		cmdWalletList(ksDir)
	case "address":
		cmdWalletAddress(args[1:], ksDir)
	case "new-address":
		cmdWalletNewAddress(args[1:], ksDir)
	default:
		fatal("Unknown wallet command: %s\nUsage: lockvault-cli wallet <create|import|list|address|new-address> [flags]", args[0])
	}
}

// createWallet stores a new wallet from a mnemonic and registers account 0.
func createWallet(ksDir, name, mnemonic string) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		fatal("derive master key: %v", err)
	}
	hdKey, err := master.DeriveAccount(0)
	if err != nil {
		fatal("derive account: %v", err)
	}
	addr := hdKey.Address()

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("create keystore: %v", err)
	}
	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}

	for i := range seed {
		seed[i] = 0
	}

	if err := ks.AddAccount(name, wallet.AccountEntry{
		Index:   0,
		Name:    "Default",
		Address: addr.String(),
	}); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("\nWallet: %s\n", name)
	fmt.Printf("Address: %s\n", addr.String())
}

func cmdWalletCreate(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: lockvault-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	createWallet(ksDir, *name, mnemonic)
}

func cmdWalletImport(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (24 words)")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: lockvault-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}

	if !wallet.ValidateMnemonic(*mnemonic) {
		fatal("invalid mnemonic")
	}

	createWallet(ksDir, *name, *mnemonic)
}

func cmdWalletList(ksDir string) {
	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func cmdWalletAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: lockvault-cli wallet address --wallet <name>")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	accounts, err := ks.ListAccounts(*walletName)
	if err != nil {
		fatal("list accounts: %v", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No addresses found.")
		return
	}
	for _, acct := range accounts {
		fmt.Printf("  [%d] %s\n", acct.Index, acct.Address)
	}
}

func cmdWalletNewAddress(args []string, ksDir string) {
	fs := flag.NewFlagSet("wallet new-address", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *walletName == "" {
		fatal("Usage: lockvault-cli wallet new-address --wallet <name>")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	seed, err := ks.Load(*walletName, password)
	if err != nil {
		fatal("load wallet: %v", err)
	}

	master, err := wallet.NewMasterKey(seed)
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		fatal("derive master key: %v", err)
	}

	nextIdx, err := ks.NextIndex(*walletName)
	if err != nil {
		fatal("next index: %v", err)
	}

	hdKey, err := master.DeriveAccount(nextIdx)
	if err != nil {
		fatal("derive account: %v", err)
	}
	addr := hdKey.Address()

	if err := ks.AddAccount(*walletName, wallet.AccountEntry{
		Index:   nextIdx,
		Name:    fmt.Sprintf("Address %d", nextIdx),
		Address: addr.String(),
	}); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("New address [%d]: %s\n", nextIdx, addr.String())
}

// ── Amount / duration helpers ───────────────────────────────────────────

// formatAmount converts base units to a human-readable decimal string.
func formatAmount(units uint64) string {
	whole := units / config.Token
	frac := units % config.Token
	return fmt.Sprintf("%d.%09d", whole, frac)
}

// parseAmount converts a decimal string to base units.
func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)

	whole, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > config.Decimals {
			return 0, fmt.Errorf("too many decimal places (max %d)", config.Decimals)
		}
		fracStr = fracStr + strings.Repeat("0", config.Decimals-len(fracStr))
		frac, err = strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fractional part: %w", err)
		}
	}

	if whole > math.MaxUint64/config.Token {
		return 0, fmt.Errorf("amount too large")
	}
	result := whole * config.Token
	if result > math.MaxUint64-frac {
		return 0, fmt.Errorf("amount too large")
	}

	return result + frac, nil
}

// parseDuration converts "30d", "12h", "45m", "90s" or plain seconds to
// a duration in seconds.
func parseDuration(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	multiplier := uint64(1)
	num := s
	switch s[len(s)-1] {
	case 'd':
		multiplier = 86400
		num = s[:len(s)-1]
	case 'h':
		multiplier = 3600
		num = s[:len(s)-1]
	case 'm':
		multiplier = 60
		num = s[:len(s)-1]
	case 's':
		num = s[:len(s)-1]
	}

	value, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	if multiplier > 1 && value > math.MaxUint64/multiplier {
		return 0, fmt.Errorf("duration too large")
	}
	return value * multiplier, nil
}

// formatTime renders a unix timestamp in UTC.
func formatTime(unix uint64) string {
	return time.Unix(int64(unix), 0).UTC().Format("2006-01-02 15:04:05 UTC")
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
