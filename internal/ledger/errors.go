package ledger

import "errors"

// Ledger operation errors. All are terminal and synchronous: a rejected
// operation leaves no partial state behind.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidLockID   = errors.New("lock id out of range")
	ErrAlreadyClaimed  = errors.New("lock already claimed")
	ErrStillLocked     = errors.New("lock has not matured")
	ErrTransferFailed  = errors.New("custody transfer failed")
)
