// Package bank implements the fungible-token custody endpoint backing the
// lock ledger. It tracks per-account balances plus a vault balance holding
// token units in ledger custody, all persisted through storage.DB.
package bank

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// Custody transfer errors.
var (
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCustodyUnderflow  = errors.New("vault balance below requested release")
	ErrSupplyOverflow    = errors.New("total supply overflow")
)

// Key layout:
//
//	b/<addr(20)> -> balance (8 bytes, big-endian)
//	vault        -> custody balance (8 bytes, big-endian)
//	supply       -> total minted supply (8 bytes, big-endian)
var (
	prefixBalance = []byte("b/")
	keyVault      = []byte("vault")
	keySupply     = []byte("supply")
)

// Bank persists account balances and the ledger's custody vault.
type Bank struct {
	db storage.DB
}

// New creates a bank backed by db.
func New(db storage.DB) *Bank {
	return &Bank{db: db}
}

// Pull debits from's balance and credits the vault. It is the custody
// capability consumed by the ledger when a lock is created.
func (b *Bank) Pull(from types.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	balance, err := b.Balance(from)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if balance < amount {
		return fmt.Errorf("%w: balance %d, need %d", ErrInsufficientFunds, balance, amount)
	}
	vault, err := b.Vault()
	if err != nil {
		return fmt.Errorf("read vault: %w", err)
	}

	batch := storage.NewBatchFor(b.db)
	if err := batch.Put(balanceKey(from), encodeAmount(balance-amount)); err != nil {
		return err
	}
	if err := batch.Put(keyVault, encodeAmount(vault+amount)); err != nil {
		return err
	}
	return batch.Commit()
}

// Push debits the vault and credits to's balance. It is the custody
// capability consumed by the ledger when a matured lock is claimed.
func (b *Bank) Push(to types.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	vault, err := b.Vault()
	if err != nil {
		return fmt.Errorf("read vault: %w", err)
	}
	if vault < amount {
		return fmt.Errorf("%w: vault %d, need %d", ErrCustodyUnderflow, vault, amount)
	}
	balance, err := b.Balance(to)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}

	batch := storage.NewBatchFor(b.db)
	if err := batch.Put(keyVault, encodeAmount(vault-amount)); err != nil {
		return err
	}
	if err := batch.Put(balanceKey(to), encodeAmount(balance+amount)); err != nil {
		return err
	}
	return batch.Commit()
}

// Mint credits to's balance with freshly created token units.
// Used for the genesis allocation and the testnet faucet.
func (b *Bank) Mint(to types.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	supply, err := b.TotalSupply()
	if err != nil {
		return fmt.Errorf("read supply: %w", err)
	}
	if supply > math.MaxUint64-amount {
		return ErrSupplyOverflow
	}
	balance, err := b.Balance(to)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}

	batch := storage.NewBatchFor(b.db)
	if err := batch.Put(keySupply, encodeAmount(supply+amount)); err != nil {
		return err
	}
	if err := batch.Put(balanceKey(to), encodeAmount(balance+amount)); err != nil {
		return err
	}
	return batch.Commit()
}

// Balance returns the spendable balance of an account.
// Missing accounts have a zero balance.
func (b *Bank) Balance(account types.Address) (uint64, error) {
	return b.readAmount(balanceKey(account))
}

// Vault returns the total token units held in ledger custody.
func (b *Bank) Vault() (uint64, error) {
	return b.readAmount(keyVault)
}

// TotalSupply returns the total minted supply.
func (b *Bank) TotalSupply() (uint64, error) {
	return b.readAmount(keySupply)
}

func (b *Bank) readAmount(key []byte) (uint64, error) {
	data, err := b.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeAmount(data)
}

func balanceKey(account types.Address) []byte {
	key := make([]byte, len(prefixBalance)+types.AddressSize)
	copy(key, prefixBalance)
	copy(key[len(prefixBalance):], account[:])
	return key
}

func encodeAmount(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeAmount(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed amount: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
