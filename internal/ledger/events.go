package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	klog "github.com/lockvault-io/lockvault/internal/log"
	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
	"github.com/rs/zerolog"
)

// EventType identifies a ledger notification.
type EventType string

// Notification types, one per successful mutating operation.
const (
	EventLocked       EventType = "locked"
	EventLockExtended EventType = "lock_extended"
	EventClaimed      EventType = "claimed"
)

// Event is a ledger notification. Exactly one is emitted per successful
// mutating call, in operation order.
type Event struct {
	Seq       uint64        `json:"seq"`
	Type      EventType     `json:"type"`
	Account   types.Address `json:"account"`
	LockID    uint64        `json:"lock_id"`
	Amount    uint64        `json:"amount,omitempty"`
	StartTime uint64        `json:"start_time,omitempty"`
	EndTime   uint64        `json:"end_time,omitempty"`
	ClaimedAt uint64        `json:"claimed_at,omitempty"`
}

// Sink receives ledger events. Sinks must not call back into the ledger.
type Sink interface {
	Emit(Event)
}

// Journal key layout:
//
//	e/<seq(8 BE)> -> Event JSON
//	ec            -> event count (8 bytes, big-endian)
var (
	prefixEvent   = []byte("e/")
	keyEventCount = []byte("ec")
)

// Journal is the persisted, append-only notification feed.
// Sequence numbers are global, dense and zero-based.
type Journal struct {
	db     storage.DB
	logger zerolog.Logger
}

// NewJournal creates an event journal backed by db.
func NewJournal(db storage.DB) *Journal {
	return &Journal{db: db, logger: klog.WithComponent("events")}
}

// Append persists an event, assigning its sequence number.
func (j *Journal) Append(ev *Event) error {
	count, err := j.Count()
	if err != nil {
		return fmt.Errorf("event count: %w", err)
	}
	ev.Seq = count

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("event marshal: %w", err)
	}

	key := make([]byte, len(prefixEvent)+8)
	copy(key, prefixEvent)
	binary.BigEndian.PutUint64(key[len(prefixEvent):], count)

	batch := storage.NewBatchFor(j.db)
	if err := batch.Put(key, data); err != nil {
		return err
	}
	if err := batch.Put(keyEventCount, encodeCount(count+1)); err != nil {
		return err
	}
	return batch.Commit()
}

// Count returns the number of journaled events.
func (j *Journal) Count() (uint64, error) {
	data, err := j.db.Get(keyEventCount)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed event count: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Events returns the sub-range [offset, min(offset+limit, count)) of the
// feed in sequence order. Out-of-range offsets yield an empty slice.
func (j *Journal) Events(offset, limit uint64) ([]Event, error) {
	count, err := j.Count()
	if err != nil {
		return nil, err
	}
	start, end := clampRange(offset, limit, count)
	events := make([]Event, 0, end-start)
	for i := start; i < end; i++ {
		key := make([]byte, len(prefixEvent)+8)
		copy(key, prefixEvent)
		binary.BigEndian.PutUint64(key[len(prefixEvent):], i)

		data, err := j.db.Get(key)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("event %d unmarshal: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Emit implements Sink. Journal failures are logged, not propagated: the
// ledger mutation has already committed by the time sinks run.
func (j *Journal) Emit(ev Event) {
	if err := j.Append(&ev); err != nil {
		j.logger.Error().Err(err).Str("type", string(ev.Type)).Msg("journal append failed")
	}
}

// LogSink writes events to the structured log.
type LogSink struct {
	Logger zerolog.Logger
}

// Emit implements Sink.
func (s LogSink) Emit(ev Event) {
	s.Logger.Info().
		Str("type", string(ev.Type)).
		Str("account", ev.Account.String()).
		Uint64("lock_id", ev.LockID).
		Uint64("amount", ev.Amount).
		Uint64("end_time", ev.EndTime).
		Msg("ledger event")
}
