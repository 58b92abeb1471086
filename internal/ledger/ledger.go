package ledger

import (
	"fmt"
	"math"
	"sync"

	klog "github.com/lockvault-io/lockvault/internal/log"
	"github.com/lockvault-io/lockvault/pkg/types"
	"github.com/rs/zerolog"
)

// Custody is the external token transfer capability the ledger consumes.
// Pull debits the holder and credits ledger custody; Push releases custody
// back to the holder. Both may fail for reasons outside the ledger's
// control; a failure must leave no ledger state behind.
type Custody interface {
	Pull(from types.Address, amount uint64) error
	Push(to types.Address, amount uint64) error
}

// Ledger is the lock/claim state machine. All mutating operations are
// serialized and atomic; reads are snapshot-consistent and never observe
// a partially applied mutation.
type Ledger struct {
	mu      sync.RWMutex
	store   *Store
	custody Custody
	clock   Clock
	sinks   []Sink
	logger  zerolog.Logger
}

// New creates a ledger bound to its store and custody endpoint.
// The custody binding is permanent: there is no reconfiguration surface.
func New(store *Store, custody Custody) *Ledger {
	return &Ledger{
		store:   store,
		custody: custody,
		clock:   SystemClock{},
		logger:  klog.WithComponent("ledger"),
	}
}

// SetClock replaces the ledger's clock. Call before serving traffic.
func (l *Ledger) SetClock(c Clock) {
	l.clock = c
}

// AddSink registers an event sink. Call before serving traffic.
func (l *Ledger) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Lock deposits amount token units for duration seconds and returns the
// new lock record. The custody pull happens before any state is written,
// so a declined transfer leaves the caller's lock sequence untouched.
func (l *Ledger) Lock(caller types.Address, amount, duration uint64) (*LockRecord, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if duration == 0 {
		return nil, ErrInvalidDuration
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if duration > math.MaxUint64-now {
		return nil, fmt.Errorf("%w: end time overflows", ErrInvalidDuration)
	}

	if err := l.custody.Pull(caller, amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	rec := &LockRecord{
		Amount:    amount,
		StartTime: now,
		EndTime:   now + duration,
	}
	if _, err := l.store.AppendLock(caller, rec); err != nil {
		// Custody was debited but no lock was recorded: compensate.
		if pushErr := l.custody.Push(caller, amount); pushErr != nil {
			l.logger.Error().Err(pushErr).
				Str("account", caller.String()).
				Uint64("amount", amount).
				Msg("refund after failed lock append also failed")
		}
		return nil, fmt.Errorf("append lock: %w", err)
	}

	l.emit(Event{
		Type:      EventLocked,
		Account:   caller,
		LockID:    rec.ID,
		Amount:    rec.Amount,
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
	})
	return rec, nil
}

// Extend pushes an unclaimed lock's maturity out by additional seconds.
// Extension is unbounded; only uint64 overflow of the end time is rejected.
func (l *Ledger) Extend(caller types.Address, lockID, additional uint64) (*LockRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.getLock(caller, lockID)
	if err != nil {
		return nil, err
	}
	if additional == 0 {
		return nil, ErrInvalidDuration
	}
	if rec.Claimed {
		return nil, ErrAlreadyClaimed
	}
	if additional > math.MaxUint64-rec.EndTime {
		return nil, fmt.Errorf("%w: end time overflows", ErrInvalidDuration)
	}

	rec.EndTime += additional
	if err := l.store.PutLock(caller, rec); err != nil {
		return nil, fmt.Errorf("update lock: %w", err)
	}

	l.emit(Event{
		Type:    EventLockExtended,
		Account: caller,
		LockID:  rec.ID,
		EndTime: rec.EndTime,
	})
	return rec, nil
}

// Claim releases a matured, unclaimed lock's principal back to the caller.
//
// The claimed flag and the claim record are committed before the custody
// push, so a reentrant call during the transfer sees the lock as already
// claimed. If the push is declined, the commit is explicitly rolled back
// and the operation fails with no observable effect.
func (l *Ledger) Claim(caller types.Address, lockID uint64) (*ClaimRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.getLock(caller, lockID)
	if err != nil {
		return nil, err
	}
	if rec.Claimed {
		return nil, ErrAlreadyClaimed
	}
	now := l.clock.Now()
	if now < rec.EndTime {
		return nil, ErrStillLocked
	}

	rec.Claimed = true
	claim := &ClaimRecord{
		LockID:    rec.ID,
		Amount:    rec.Amount,
		ClaimedAt: now,
	}
	if err := l.store.CommitClaim(caller, rec, claim); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	if err := l.custody.Push(caller, rec.Amount); err != nil {
		rec.Claimed = false
		if rbErr := l.store.RollbackClaim(caller, rec); rbErr != nil {
			// The store now says claimed while custody still holds the
			// funds. This needs operator attention.
			l.logger.Error().Err(rbErr).
				Str("account", caller.String()).
				Uint64("lock_id", rec.ID).
				Msg("claim rollback failed after declined transfer")
		}
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	l.emit(Event{
		Type:      EventClaimed,
		Account:   caller,
		LockID:    rec.ID,
		Amount:    claim.Amount,
		ClaimedAt: claim.ClaimedAt,
	})
	return claim, nil
}

// Claimable returns the lock's principal if it exists, is unclaimed and
// has matured, and 0 in every other case. It never fails.
func (l *Ledger) Claimable(account types.Address, lockID uint64) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, err := l.getLock(account, lockID)
	if err != nil {
		return 0
	}
	if rec.Claimed || l.clock.Now() < rec.EndTime {
		return 0
	}
	return rec.Amount
}

// LockHistory returns an account's full lock history in insertion order.
func (l *Ledger) LockHistory(account types.Address) ([]LockRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Locks(account)
}

// ClaimHistory returns an account's full claim history in insertion order.
func (l *Ledger) ClaimHistory(account types.Address) ([]ClaimRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Claims(account)
}

// LockHistoryRange returns the lock history slice [offset, offset+limit),
// clamped to the account's total. Out-of-range offsets yield an empty
// slice, not an error.
func (l *Ledger) LockHistoryRange(account types.Address, offset, limit uint64) ([]LockRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.LocksRange(account, offset, limit)
}

// ClaimHistoryRange is LockHistoryRange over claim records.
func (l *Ledger) ClaimHistoryRange(account types.Address, offset, limit uint64) ([]ClaimRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.ClaimsRange(account, offset, limit)
}

// getLock loads a lock after range-checking the ID. Callers hold l.mu.
func (l *Ledger) getLock(account types.Address, lockID uint64) (*LockRecord, error) {
	count, err := l.store.LockCount(account)
	if err != nil {
		return nil, fmt.Errorf("lock count: %w", err)
	}
	if lockID >= count {
		return nil, ErrInvalidLockID
	}
	return l.store.GetLock(account, lockID)
}

func (l *Ledger) emit(ev Event) {
	for _, s := range l.sinks {
		s.Emit(ev)
	}
}
