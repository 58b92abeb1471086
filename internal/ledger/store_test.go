package ledger

import (
	"testing"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemory())
}

func TestStore_AppendLock_AssignsIDs(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0x01}

	for want := uint64(0); want < 3; want++ {
		rec := &LockRecord{Amount: 100, StartTime: 1, EndTime: 2}
		id, err := s.AppendLock(account, rec)
		if err != nil {
			t.Fatalf("AppendLock: %v", err)
		}
		if id != want || rec.ID != want {
			t.Errorf("id = %d (rec.ID %d), want %d", id, rec.ID, want)
		}
	}

	count, err := s.LockCount(account)
	if err != nil {
		t.Fatalf("LockCount: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestStore_GetLock_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0x01}

	rec := &LockRecord{Amount: 42, StartTime: 10, EndTime: 110}
	if _, err := s.AppendLock(account, rec); err != nil {
		t.Fatalf("AppendLock: %v", err)
	}

	got, err := s.GetLock(account, rec.ID)
	if err != nil {
		t.Fatalf("GetLock: %v", err)
	}
	if *got != *rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestStore_PutLock_Overwrites(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0x01}

	rec := &LockRecord{Amount: 42, StartTime: 10, EndTime: 110}
	if _, err := s.AppendLock(account, rec); err != nil {
		t.Fatalf("AppendLock: %v", err)
	}

	rec.EndTime = 210
	if err := s.PutLock(account, rec); err != nil {
		t.Fatalf("PutLock: %v", err)
	}

	got, err := s.GetLock(account, rec.ID)
	if err != nil {
		t.Fatalf("GetLock: %v", err)
	}
	if got.EndTime != 210 {
		t.Errorf("end time = %d, want 210", got.EndTime)
	}

	// Count is untouched by in-place updates.
	count, _ := s.LockCount(account)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestStore_CommitAndRollbackClaim(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0x01}

	lock := &LockRecord{Amount: 100, StartTime: 0, EndTime: 10}
	if _, err := s.AppendLock(account, lock); err != nil {
		t.Fatalf("AppendLock: %v", err)
	}

	lock.Claimed = true
	claim := &ClaimRecord{LockID: lock.ID, Amount: lock.Amount, ClaimedAt: 10}
	if err := s.CommitClaim(account, lock, claim); err != nil {
		t.Fatalf("CommitClaim: %v", err)
	}

	got, err := s.GetLock(account, lock.ID)
	if err != nil {
		t.Fatalf("GetLock: %v", err)
	}
	if !got.Claimed {
		t.Error("lock not marked claimed")
	}
	count, _ := s.ClaimCount(account)
	if count != 1 {
		t.Fatalf("claim count = %d, want 1", count)
	}
	gotClaim, err := s.GetClaim(account, 0)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if *gotClaim != *claim {
		t.Errorf("claim = %+v, want %+v", gotClaim, claim)
	}

	// Rollback restores the unclaimed state and removes the claim.
	lock.Claimed = false
	if err := s.RollbackClaim(account, lock); err != nil {
		t.Fatalf("RollbackClaim: %v", err)
	}
	got, err = s.GetLock(account, lock.ID)
	if err != nil {
		t.Fatalf("GetLock: %v", err)
	}
	if got.Claimed {
		t.Error("lock still claimed after rollback")
	}
	count, _ = s.ClaimCount(account)
	if count != 0 {
		t.Errorf("claim count = %d, want 0", count)
	}
	if _, err := s.GetClaim(account, 0); err == nil {
		t.Error("claim record still present after rollback")
	}
}

func TestStore_RollbackClaim_Empty(t *testing.T) {
	s := newTestStore(t)
	lock := &LockRecord{Amount: 1}
	if err := s.RollbackClaim(types.Address{0x01}, lock); err == nil {
		t.Error("rollback with no claims should fail")
	}
}

func TestStore_Ranges(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0x01}

	for i := uint64(0); i < 5; i++ {
		if _, err := s.AppendLock(account, &LockRecord{Amount: i + 1}); err != nil {
			t.Fatalf("AppendLock: %v", err)
		}
	}

	page, err := s.LocksRange(account, 1, 2)
	if err != nil {
		t.Fatalf("LocksRange: %v", err)
	}
	if len(page) != 2 || page[0].ID != 1 || page[1].ID != 2 {
		t.Errorf("page = %+v, want locks 1 and 2", page)
	}

	// Empty, not nil, when out of range.
	page, err = s.LocksRange(account, 99, 10)
	if err != nil {
		t.Fatalf("LocksRange: %v", err)
	}
	if page == nil || len(page) != 0 {
		t.Errorf("out-of-range page = %v, want empty slice", page)
	}
}

func TestStore_EmptyAccount(t *testing.T) {
	s := newTestStore(t)
	account := types.Address{0xEE}

	count, err := s.LockCount(account)
	if err != nil {
		t.Fatalf("LockCount: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	locks, err := s.Locks(account)
	if err != nil {
		t.Fatalf("Locks: %v", err)
	}
	if len(locks) != 0 {
		t.Errorf("locks = %+v, want empty", locks)
	}
}
