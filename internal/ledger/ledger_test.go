package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

var (
	alice = types.Address{0xA1}
	bob   = types.Address{0xB0}
)

// fakeClock drives maturity deterministically.
type fakeClock struct {
	now uint64
}

func (c *fakeClock) Now() uint64 { return c.now }

// fakeCustody is an in-memory custody endpoint with failure injection.
type fakeCustody struct {
	balances map[types.Address]uint64
	vault    uint64
	failPull bool
	failPush bool
}

var errDeclined = errors.New("declined")

func newFakeCustody() *fakeCustody {
	return &fakeCustody{balances: make(map[types.Address]uint64)}
}

func (c *fakeCustody) Pull(from types.Address, amount uint64) error {
	if c.failPull {
		return errDeclined
	}
	if c.balances[from] < amount {
		return errDeclined
	}
	c.balances[from] -= amount
	c.vault += amount
	return nil
}

func (c *fakeCustody) Push(to types.Address, amount uint64) error {
	if c.failPush {
		return errDeclined
	}
	if c.vault < amount {
		return errDeclined
	}
	c.vault -= amount
	c.balances[to] += amount
	return nil
}

// collectSink records emitted events in order.
type collectSink struct {
	events []Event
}

func (s *collectSink) Emit(ev Event) { s.events = append(s.events, ev) }

type testEnv struct {
	ledger  *Ledger
	clock   *fakeClock
	custody *fakeCustody
	sink    *collectSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	custody := newFakeCustody()
	custody.balances[alice] = 10_000
	custody.balances[bob] = 10_000

	clock := &fakeClock{}
	sink := &collectSink{}

	l := New(NewStore(storage.NewMemory()), custody)
	l.SetClock(clock)
	l.AddSink(sink)

	return &testEnv{ledger: l, clock: clock, custody: custody, sink: sink}
}

func TestLock_AssignsDenseIDs(t *testing.T) {
	env := newTestEnv(t)

	for want := uint64(0); want < 5; want++ {
		rec, err := env.ledger.Lock(alice, 10, 100)
		if err != nil {
			t.Fatalf("Lock: %v", err)
		}
		if rec.ID != want {
			t.Errorf("lock id = %d, want %d", rec.ID, want)
		}
	}

	// IDs are per-account, not global.
	rec, err := env.ledger.Lock(bob, 10, 100)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if rec.ID != 0 {
		t.Errorf("bob's first lock id = %d, want 0", rec.ID)
	}
}

func TestLock_Validation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ledger.Lock(alice, 0, 100); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := env.ledger.Lock(alice, 100, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: err = %v, want ErrInvalidDuration", err)
	}

	env.clock.now = 100
	if _, err := env.ledger.Lock(alice, 100, math.MaxUint64-50); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("overflowing duration: err = %v, want ErrInvalidDuration", err)
	}

	// No state was written by any failed attempt.
	history, err := env.ledger.LockHistory(alice)
	if err != nil {
		t.Fatalf("LockHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("lock history length = %d, want 0", len(history))
	}
}

func TestLock_TransferFailed_NoState(t *testing.T) {
	env := newTestEnv(t)
	env.custody.failPull = true

	_, err := env.ledger.Lock(alice, 100, 1000)
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}

	history, err := env.ledger.LockHistory(alice)
	if err != nil {
		t.Fatalf("LockHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("lock history length = %d, want 0 after declined pull", len(history))
	}
	if env.custody.balances[alice] != 10_000 {
		t.Errorf("balance = %d, want untouched 10000", env.custody.balances[alice])
	}
	if len(env.sink.events) != 0 {
		t.Errorf("%d events emitted on failure, want 0", len(env.sink.events))
	}
}

func TestLock_MovesFundsIntoCustody(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.ledger.Lock(alice, 250, 60)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if env.custody.balances[alice] != 9_750 {
		t.Errorf("balance = %d, want 9750", env.custody.balances[alice])
	}
	if env.custody.vault != 250 {
		t.Errorf("vault = %d, want 250", env.custody.vault)
	}
	if rec.StartTime != env.clock.now || rec.EndTime != env.clock.now+60 {
		t.Errorf("times = (%d, %d), want (%d, %d)", rec.StartTime, rec.EndTime, env.clock.now, env.clock.now+60)
	}
	if rec.Claimed {
		t.Error("new lock must start unclaimed")
	}
}

func TestExtend(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.ledger.Lock(alice, 100, 1000)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	got, err := env.ledger.Extend(alice, rec.ID, 500)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if got.EndTime != 1500 {
		t.Errorf("end time = %d, want 1500", got.EndTime)
	}
	if got.StartTime != rec.StartTime || got.Amount != rec.Amount {
		t.Error("extend must not touch amount or start time")
	}

	// Extension is unbounded: extend again.
	got, err = env.ledger.Extend(alice, rec.ID, 1)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if got.EndTime != 1501 {
		t.Errorf("end time = %d, want 1501", got.EndTime)
	}
}

func TestExtend_Validation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ledger.Extend(alice, 0, 100); !errors.Is(err, ErrInvalidLockID) {
		t.Errorf("no locks: err = %v, want ErrInvalidLockID", err)
	}

	rec, err := env.ledger.Lock(alice, 100, 1000)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := env.ledger.Extend(alice, rec.ID+1, 100); !errors.Is(err, ErrInvalidLockID) {
		t.Errorf("out of range: err = %v, want ErrInvalidLockID", err)
	}
	if _, err := env.ledger.Extend(alice, rec.ID, 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: err = %v, want ErrInvalidDuration", err)
	}
	if _, err := env.ledger.Extend(alice, rec.ID, math.MaxUint64); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("overflow: err = %v, want ErrInvalidDuration", err)
	}

	// Another account cannot extend alice's lock.
	if _, err := env.ledger.Extend(bob, rec.ID, 100); !errors.Is(err, ErrInvalidLockID) {
		t.Errorf("cross-account: err = %v, want ErrInvalidLockID", err)
	}
}

func TestExtend_ClaimedLock(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.ledger.Lock(alice, 100, 10)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	env.clock.now = 10
	if _, err := env.ledger.Claim(alice, rec.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	if _, err := env.ledger.Extend(alice, rec.ID, 100); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("err = %v, want ErrAlreadyClaimed", err)
	}
}

func TestClaim_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	// create(caller, 100, 1000) at t=0 -> lock 0 with endTime=1000.
	rec, err := env.ledger.Lock(alice, 100, 1000)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if rec.ID != 0 || rec.EndTime != 1000 {
		t.Fatalf("lock = %+v, want id 0 end 1000", rec)
	}

	// claim at t=500 fails StillLocked.
	env.clock.now = 500
	if _, err := env.ledger.Claim(alice, 0); !errors.Is(err, ErrStillLocked) {
		t.Fatalf("early claim: err = %v, want ErrStillLocked", err)
	}

	// extend by 500 -> endTime=1500.
	got, err := env.ledger.Extend(alice, 0, 500)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if got.EndTime != 1500 {
		t.Fatalf("end time = %d, want 1500", got.EndTime)
	}

	// claim at exactly t=1500 succeeds (equality permitted).
	env.clock.now = 1500
	claim, err := env.ledger.Claim(alice, 0)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claim.LockID != 0 || claim.Amount != 100 || claim.ClaimedAt != 1500 {
		t.Errorf("claim = %+v, want lock 0 amount 100 at 1500", claim)
	}
	if env.custody.balances[alice] != 10_000 {
		t.Errorf("balance = %d, want principal returned (10000)", env.custody.balances[alice])
	}

	claims, err := env.ledger.ClaimHistory(alice)
	if err != nil {
		t.Fatalf("ClaimHistory: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("claim history length = %d, want 1", len(claims))
	}

	// A second claim always fails AlreadyClaimed.
	if _, err := env.ledger.Claim(alice, 0); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("second claim: err = %v, want ErrAlreadyClaimed", err)
	}
	env.clock.now = 9999
	if _, err := env.ledger.Claim(alice, 0); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("much later claim: err = %v, want ErrAlreadyClaimed", err)
	}
}

func TestClaim_InvalidLockID(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.ledger.Claim(alice, 0); !errors.Is(err, ErrInvalidLockID) {
		t.Errorf("err = %v, want ErrInvalidLockID", err)
	}
}

func TestClaim_TransferFailed_RollsBack(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.ledger.Lock(alice, 100, 10)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	env.clock.now = 10
	env.custody.failPush = true

	if _, err := env.ledger.Claim(alice, rec.ID); !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}

	// The lock must remain claimable and the claim trail empty.
	history, err := env.ledger.LockHistory(alice)
	if err != nil {
		t.Fatalf("LockHistory: %v", err)
	}
	if history[0].Claimed {
		t.Error("claimed flag not rolled back after declined push")
	}
	claims, err := env.ledger.ClaimHistory(alice)
	if err != nil {
		t.Fatalf("ClaimHistory: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("claim history length = %d, want 0", len(claims))
	}
	if got := env.ledger.Claimable(alice, rec.ID); got != 100 {
		t.Errorf("Claimable = %d, want 100", got)
	}

	// Retrying after the custody endpoint recovers succeeds.
	env.custody.failPush = false
	if _, err := env.ledger.Claim(alice, rec.ID); err != nil {
		t.Fatalf("retry claim: %v", err)
	}
}

func TestClaimable_Lifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Unknown lock: 0.
	if got := env.ledger.Claimable(alice, 7); got != 0 {
		t.Errorf("unknown lock: Claimable = %d, want 0", got)
	}

	rec, err := env.ledger.Lock(alice, 100, 1000)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Not matured: 0.
	if got := env.ledger.Claimable(alice, rec.ID); got != 0 {
		t.Errorf("immature: Claimable = %d, want 0", got)
	}

	// Matured exactly at end time: amount.
	env.clock.now = 1000
	if got := env.ledger.Claimable(alice, rec.ID); got != 100 {
		t.Errorf("matured: Claimable = %d, want 100", got)
	}

	// Extension pushes maturity back out.
	if _, err := env.ledger.Extend(alice, rec.ID, 500); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if got := env.ledger.Claimable(alice, rec.ID); got != 0 {
		t.Errorf("after extension: Claimable = %d, want 0", got)
	}

	// Claimed: 0 forever.
	env.clock.now = 1500
	if _, err := env.ledger.Claim(alice, rec.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if got := env.ledger.Claimable(alice, rec.ID); got != 0 {
		t.Errorf("claimed: Claimable = %d, want 0", got)
	}
}

func TestHistory_Pagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 7; i++ {
		if _, err := env.ledger.Lock(alice, uint64(i+1), 100); err != nil {
			t.Fatalf("Lock: %v", err)
		}
	}

	full, err := env.ledger.LockHistory(alice)
	if err != nil {
		t.Fatalf("LockHistory: %v", err)
	}
	if len(full) != 7 {
		t.Fatalf("full history length = %d, want 7", len(full))
	}

	tests := []struct {
		name          string
		offset, limit uint64
		want          int
	}{
		{"first page", 0, 3, 3},
		{"middle page", 3, 3, 3},
		{"clamped tail", 6, 3, 1},
		{"offset at total", 7, 3, 0},
		{"offset past total", 100, 3, 0},
		{"zero limit", 0, 0, 0},
		{"huge limit clamps", 0, math.MaxUint64, 7},
		{"overflowing offset+limit", 5, math.MaxUint64, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.ledger.LockHistoryRange(alice, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("LockHistoryRange: %v", err)
			}
			if len(page) != tt.want {
				t.Fatalf("page length = %d, want %d", len(page), tt.want)
			}
			// The page equals the corresponding slice of the full history.
			for i, rec := range page {
				if rec != full[tt.offset+uint64(i)] {
					t.Errorf("page[%d] = %+v, want %+v", i, rec, full[tt.offset+uint64(i)])
				}
			}
		})
	}
}

func TestClaimHistory_Pagination(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 4; i++ {
		if _, err := env.ledger.Lock(alice, 10, 1); err != nil {
			t.Fatalf("Lock: %v", err)
		}
	}
	env.clock.now = 1
	for i := uint64(0); i < 4; i++ {
		if _, err := env.ledger.Claim(alice, i); err != nil {
			t.Fatalf("Claim: %v", err)
		}
	}

	page, err := env.ledger.ClaimHistoryRange(alice, 1, 2)
	if err != nil {
		t.Fatalf("ClaimHistoryRange: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page length = %d, want 2", len(page))
	}
	if page[0].LockID != 1 || page[1].LockID != 2 {
		t.Errorf("page lock ids = (%d, %d), want (1, 2)", page[0].LockID, page[1].LockID)
	}

	empty, err := env.ledger.ClaimHistoryRange(alice, 4, 10)
	if err != nil {
		t.Fatalf("ClaimHistoryRange: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range page length = %d, want 0", len(empty))
	}
}

func TestEvents_EmittedInOrder(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.ledger.Lock(alice, 100, 10)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := env.ledger.Extend(alice, rec.ID, 5); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	env.clock.now = 15
	if _, err := env.ledger.Claim(alice, rec.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	wantTypes := []EventType{EventLocked, EventLockExtended, EventClaimed}
	if len(env.sink.events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(env.sink.events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if env.sink.events[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, env.sink.events[i].Type, want)
		}
	}

	locked := env.sink.events[0]
	if locked.Amount != 100 || locked.StartTime != 0 || locked.EndTime != 10 {
		t.Errorf("locked event = %+v", locked)
	}
	extended := env.sink.events[1]
	if extended.EndTime != 15 {
		t.Errorf("extended event end time = %d, want 15", extended.EndTime)
	}
	claimed := env.sink.events[2]
	if claimed.Amount != 100 || claimed.ClaimedAt != 15 {
		t.Errorf("claimed event = %+v", claimed)
	}
}

func TestAccounts_Isolated(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ledger.Lock(alice, 100, 10); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := env.ledger.Lock(bob, 200, 20); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Bob cannot claim alice's lock: his own lock 0 is immature, and
	// alice's records are invisible to him.
	env.clock.now = 10
	if _, err := env.ledger.Claim(bob, 0); !errors.Is(err, ErrStillLocked) {
		t.Errorf("err = %v, want ErrStillLocked (bob's own lock)", err)
	}

	aliceHistory, err := env.ledger.LockHistory(alice)
	if err != nil {
		t.Fatalf("LockHistory: %v", err)
	}
	if len(aliceHistory) != 1 || aliceHistory[0].Amount != 100 {
		t.Errorf("alice history = %+v", aliceHistory)
	}
}

// Total units in custody always equal the sum of unclaimed lock amounts.
func TestCustodyConservation(t *testing.T) {
	env := newTestEnv(t)

	ids := make([]uint64, 0, 3)
	for _, amount := range []uint64{100, 200, 300} {
		rec, err := env.ledger.Lock(alice, amount, 10)
		if err != nil {
			t.Fatalf("Lock: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	checkConservation := func() {
		t.Helper()
		history, err := env.ledger.LockHistory(alice)
		if err != nil {
			t.Fatalf("LockHistory: %v", err)
		}
		var unclaimed uint64
		for _, rec := range history {
			if !rec.Claimed {
				unclaimed += rec.Amount
			}
		}
		if env.custody.vault != unclaimed {
			t.Errorf("vault = %d, unclaimed total = %d", env.custody.vault, unclaimed)
		}
	}

	checkConservation()
	env.clock.now = 10
	if _, err := env.ledger.Claim(alice, ids[1]); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	checkConservation()
	if _, err := env.ledger.Claim(alice, ids[0]); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	checkConservation()
}
