package ledger

import (
	"testing"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

func TestJournal_AppendAssignsSequence(t *testing.T) {
	j := NewJournal(storage.NewMemory())

	for want := uint64(0); want < 3; want++ {
		ev := &Event{Type: EventLocked, Account: types.Address{0x01}, LockID: want}
		if err := j.Append(ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if ev.Seq != want {
			t.Errorf("seq = %d, want %d", ev.Seq, want)
		}
	}

	count, err := j.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestJournal_Events_OrderAndPagination(t *testing.T) {
	j := NewJournal(storage.NewMemory())

	typesInOrder := []EventType{EventLocked, EventLockExtended, EventClaimed, EventLocked}
	for i, typ := range typesInOrder {
		if err := j.Append(&Event{Type: typ, LockID: uint64(i)}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := j.Events(0, 100)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d events, want 4", len(all))
	}
	for i, ev := range all {
		if ev.Seq != uint64(i) || ev.Type != typesInOrder[i] {
			t.Errorf("event %d = %+v", i, ev)
		}
	}

	page, err := j.Events(1, 2)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 1 || page[1].Seq != 2 {
		t.Errorf("page = %+v, want seqs 1 and 2", page)
	}

	empty, err := j.Events(100, 5)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range page length = %d, want 0", len(empty))
	}
}

func TestJournal_AsSink(t *testing.T) {
	db := storage.NewMemory()
	j := NewJournal(db)

	var sink Sink = j
	sink.Emit(Event{Type: EventLocked, Account: types.Address{0x01}, Amount: 5})

	events, err := j.Events(0, 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 || events[0].Amount != 5 {
		t.Errorf("events = %+v", events)
	}
}
