package rpcclient

import (
	"encoding/hex"
	"fmt"

	"github.com/lockvault-io/lockvault/internal/ledger"
	"github.com/lockvault-io/lockvault/internal/rpc"
	"github.com/lockvault-io/lockvault/pkg/crypto"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// Signer signs mutating requests for one account. It tracks the account's
// nonce by asking the node before each request, so a single Signer can be
// recreated freely between CLI invocations.
type Signer struct {
	key     *crypto.PrivateKey
	account types.Address
	pubHex  string
}

// NewSigner wraps a private key for request signing.
func NewSigner(key *crypto.PrivateKey) *Signer {
	pub := key.PublicKey()
	return &Signer{
		key:     key,
		account: crypto.AddressFromPubKey(pub),
		pubHex:  hex.EncodeToString(pub),
	}
}

// Account returns the address derived from the signing key.
func (s *Signer) Account() types.Address {
	return s.account
}

// auth fetches the account's last accepted nonce and signs the request
// digest with nonce+1.
func (c *Client) auth(signer *Signer, method string, fields ...uint64) (rpc.AuthParams, error) {
	last, err := c.GetNonce(signer.account)
	if err != nil {
		return rpc.AuthParams{}, fmt.Errorf("fetch nonce: %w", err)
	}
	nonce := last + 1

	digest := rpc.SigningDigest(method, signer.account, nonce, fields...)
	sig, err := signer.key.Sign(digest[:])
	if err != nil {
		return rpc.AuthParams{}, fmt.Errorf("sign request: %w", err)
	}

	return rpc.AuthParams{
		Account:   signer.account.String(),
		PubKey:    signer.pubHex,
		Nonce:     nonce,
		Signature: hex.EncodeToString(sig),
	}, nil
}

// ── Mutating methods ────────────────────────────────────────────────────

// Lock deposits amount into a new time lock for duration seconds.
func (c *Client) Lock(signer *Signer, amount, duration uint64) (*ledger.LockRecord, error) {
	auth, err := c.auth(signer, "ledger_lock", amount, duration)
	if err != nil {
		return nil, err
	}
	var rec ledger.LockRecord
	err = c.Call("ledger_lock", rpc.LockParams{Auth: auth, Amount: amount, Duration: duration}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Extend pushes the maturity of a lock further into the future.
func (c *Client) Extend(signer *Signer, lockID, additional uint64) (*ledger.LockRecord, error) {
	auth, err := c.auth(signer, "ledger_extend", lockID, additional)
	if err != nil {
		return nil, err
	}
	var rec ledger.LockRecord
	err = c.Call("ledger_extend", rpc.ExtendParams{Auth: auth, LockID: lockID, Additional: additional}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Claim withdraws the principal of a matured lock.
func (c *Client) Claim(signer *Signer, lockID uint64) (*ledger.ClaimRecord, error) {
	auth, err := c.auth(signer, "ledger_claim", lockID)
	if err != nil {
		return nil, err
	}
	var rec ledger.ClaimRecord
	err = c.Call("ledger_claim", rpc.ClaimParams{Auth: auth, LockID: lockID}, &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ── Read methods ────────────────────────────────────────────────────────

// GetClaimable returns the amount currently withdrawable from a lock.
func (c *Client) GetClaimable(account types.Address, lockID uint64) (uint64, error) {
	var result rpc.ClaimableResult
	err := c.Call("ledger_getClaimable", rpc.ClaimableParams{Account: account.String(), LockID: lockID}, &result)
	if err != nil {
		return 0, err
	}
	return result.Claimable, nil
}

// GetLockHistory returns all lock records for an account.
func (c *Client) GetLockHistory(account types.Address) ([]ledger.LockRecord, error) {
	var locks []ledger.LockRecord
	err := c.Call("ledger_getLockHistory", rpc.AccountParam{Account: account.String()}, &locks)
	return locks, err
}

// GetClaimHistory returns all claim records for an account.
func (c *Client) GetClaimHistory(account types.Address) ([]ledger.ClaimRecord, error) {
	var claims []ledger.ClaimRecord
	err := c.Call("ledger_getClaimHistory", rpc.AccountParam{Account: account.String()}, &claims)
	return claims, err
}

// GetLockHistoryRange returns a page of an account's lock records.
func (c *Client) GetLockHistoryRange(account types.Address, offset, limit uint64) ([]ledger.LockRecord, error) {
	var locks []ledger.LockRecord
	err := c.Call("ledger_getLockHistoryPaginated", rpc.HistoryRangeParams{
		Account: account.String(), Offset: offset, Limit: limit,
	}, &locks)
	return locks, err
}

// GetClaimHistoryRange returns a page of an account's claim records.
func (c *Client) GetClaimHistoryRange(account types.Address, offset, limit uint64) ([]ledger.ClaimRecord, error) {
	var claims []ledger.ClaimRecord
	err := c.Call("ledger_getClaimHistoryPaginated", rpc.HistoryRangeParams{
		Account: account.String(), Offset: offset, Limit: limit,
	}, &claims)
	return claims, err
}

// GetEvents returns a page of the global event journal.
func (c *Client) GetEvents(offset, limit uint64) ([]ledger.Event, error) {
	var events []ledger.Event
	err := c.Call("ledger_getEvents", rpc.EventsParams{Offset: offset, Limit: limit}, &events)
	return events, err
}

// GetInfo returns ledger identity and aggregate state.
func (c *Client) GetInfo() (*rpc.InfoResult, error) {
	var result rpc.InfoResult
	if err := c.Call("ledger_getInfo", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBalance returns an address's spendable balance.
func (c *Client) GetBalance(addr types.Address) (uint64, error) {
	var result rpc.BalanceResult
	err := c.Call("bank_getBalance", rpc.AddressParam{Address: addr.String()}, &result)
	if err != nil {
		return 0, err
	}
	return result.Balance, nil
}

// Faucet requests test funds for an address. Only available on networks
// whose genesis enables the faucet.
func (c *Client) Faucet(addr types.Address) (uint64, error) {
	var result rpc.BalanceResult
	err := c.Call("bank_faucet", rpc.AddressParam{Address: addr.String()}, &result)
	if err != nil {
		return 0, err
	}
	return result.Balance, nil
}

// GetNonce returns the last accepted nonce for an account (0 if none).
func (c *Client) GetNonce(account types.Address) (uint64, error) {
	var result rpc.NonceResult
	err := c.Call("account_getNonce", rpc.AccountParam{Account: account.String()}, &result)
	if err != nil {
		return 0, err
	}
	return result.Nonce, nil
}

// GetPeerInfo returns the node's connected peers.
func (c *Client) GetPeerInfo() ([]rpc.PeerInfoResult, error) {
	var peers []rpc.PeerInfoResult
	err := c.Call("net_getPeerInfo", nil, &peers)
	return peers, err
}

// GetNodeInfo returns the node's relay identity.
func (c *Client) GetNodeInfo() (*rpc.NodeInfoResult, error) {
	var result rpc.NodeInfoResult
	if err := c.Call("net_getNodeInfo", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
