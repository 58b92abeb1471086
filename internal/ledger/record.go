// Package ledger implements the token time-lock ledger: per-account
// append-only lock and claim sequences with create/extend/claim
// transitions under time and ownership constraints.
//
// Lock IDs are dense, zero-based indices into the owning account's lock
// sequence. Records are never removed; a claimed lock is terminal.
package ledger

// LockRecord is one deposit event. Amount and StartTime are immutable
// after creation; EndTime only ever grows via extension; Claimed is set
// exactly once by a successful claim.
type LockRecord struct {
	ID        uint64 `json:"id"`
	Amount    uint64 `json:"amount"`
	StartTime uint64 `json:"start_time"`
	EndTime   uint64 `json:"end_time"`
	Claimed   bool   `json:"claimed"`
}

// ClaimRecord is one withdrawal event, the append-only audit trail of a
// successful claim. Amount equals the referenced lock's principal.
type ClaimRecord struct {
	LockID    uint64 `json:"lock_id"`
	Amount    uint64 `json:"amount"`
	ClaimedAt uint64 `json:"claimed_at"`
}
