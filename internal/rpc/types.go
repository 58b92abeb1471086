package rpc

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeUnauthorized   = -32001
	CodeLedgerError    = -32002
	CodeTransferFailed = -32003
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AuthParams carries the caller identity and request signature for
// mutating methods. The signature covers the method name, the signed
// fields and the nonce; the server derives the address from the public
// key and requires it to match Account.
type AuthParams struct {
	Account   string `json:"account"`   // 0x-prefixed address
	PubKey    string `json:"pubkey"`    // 33-byte compressed secp256k1, hex
	Nonce     uint64 `json:"nonce"`     // Strictly increasing per account
	Signature string `json:"signature"` // 64-byte Schnorr, hex
}

// LockParams is used by ledger_lock.
type LockParams struct {
	Auth     AuthParams `json:"auth"`
	Amount   uint64     `json:"amount"`
	Duration uint64     `json:"duration"` // seconds
}

// ExtendParams is used by ledger_extend.
type ExtendParams struct {
	Auth       AuthParams `json:"auth"`
	LockID     uint64     `json:"lock_id"`
	Additional uint64     `json:"additional"` // seconds
}

// ClaimParams is used by ledger_claim.
type ClaimParams struct {
	Auth   AuthParams `json:"auth"`
	LockID uint64     `json:"lock_id"`
}

// AccountParam is used by read endpoints that take a single account.
type AccountParam struct {
	Account string `json:"account"`
}

// HistoryRangeParams is used by the paginated history endpoints.
type HistoryRangeParams struct {
	Account string `json:"account"`
	Offset  uint64 `json:"offset"`
	Limit   uint64 `json:"limit"`
}

// ClaimableParams is used by ledger_getClaimable.
type ClaimableParams struct {
	Account string `json:"account"`
	LockID  uint64 `json:"lock_id"`
}

// EventsParams is used by ledger_getEvents.
type EventsParams struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// AddressParam is used by bank_getBalance and bank_faucet.
type AddressParam struct {
	Address string `json:"address"`
}

// ── Result types ────────────────────────────────────────────────────────

// InfoResult is returned by ledger_getInfo.
type InfoResult struct {
	LedgerID    string `json:"ledger_id"`
	LedgerName  string `json:"ledger_name"`
	Symbol      string `json:"symbol"`
	Decimals    int    `json:"decimals"`
	Network     string `json:"network"`
	TotalSupply uint64 `json:"total_supply"`
	VaultLocked uint64 `json:"vault_locked"` // Base units held in custody
	EventCount  uint64 `json:"event_count"`
	PeerCount   int    `json:"peer_count"`
}

// BalanceResult is returned by bank_getBalance and bank_faucet.
type BalanceResult struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// NonceResult is returned by account_getNonce.
type NonceResult struct {
	Account string `json:"account"`
	Nonce   uint64 `json:"nonce"` // Last accepted nonce (0 = none yet)
}

// ClaimableResult is returned by ledger_getClaimable.
type ClaimableResult struct {
	Account   string `json:"account"`
	LockID    uint64 `json:"lock_id"`
	Claimable uint64 `json:"claimable"`
}

// PeerInfoResult is one entry of net_getPeerInfo.
type PeerInfoResult struct {
	ID          string `json:"id"`
	ConnectedAt int64  `json:"connected_at"`
	Source      string `json:"source,omitempty"`
}

// NodeInfoResult is returned by net_getNodeInfo.
type NodeInfoResult struct {
	ID        string   `json:"id"`
	Addrs     []string `json:"addrs"`
	PeerCount int      `json:"peer_count"`
}
