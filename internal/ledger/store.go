package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lockvault-io/lockvault/internal/storage"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// Key layout:
//
//	l/<addr(20)><index(8 BE)>  -> LockRecord JSON
//	lc/<addr(20)>              -> lock count (8 bytes, big-endian)
//	c/<addr(20)><index(8 BE)>  -> ClaimRecord JSON
//	cc/<addr(20)>              -> claim count (8 bytes, big-endian)
//
// Indices are dense and zero-based, so a record's key doubles as its
// permanent lock/claim ID within the owning account.
var (
	prefixLock       = []byte("l/")
	prefixLockCount  = []byte("lc/")
	prefixClaim      = []byte("c/")
	prefixClaimCount = []byte("cc/")
)

// Store persists per-account lock and claim sequences.
type Store struct {
	db storage.DB
}

// NewStore creates a ledger store backed by db.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// LockCount returns the number of locks recorded for an account.
func (s *Store) LockCount(account types.Address) (uint64, error) {
	return s.readCount(countKey(prefixLockCount, account))
}

// ClaimCount returns the number of claims recorded for an account.
func (s *Store) ClaimCount(account types.Address) (uint64, error) {
	return s.readCount(countKey(prefixClaimCount, account))
}

// GetLock retrieves one lock record. The caller is responsible for
// range-checking id against LockCount.
func (s *Store) GetLock(account types.Address, id uint64) (*LockRecord, error) {
	data, err := s.db.Get(recordKey(prefixLock, account, id))
	if err != nil {
		return nil, fmt.Errorf("lock %s/%d: %w", account, id, err)
	}
	var rec LockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("lock %s/%d unmarshal: %w", account, id, err)
	}
	return &rec, nil
}

// GetClaim retrieves one claim record.
func (s *Store) GetClaim(account types.Address, id uint64) (*ClaimRecord, error) {
	data, err := s.db.Get(recordKey(prefixClaim, account, id))
	if err != nil {
		return nil, fmt.Errorf("claim %s/%d: %w", account, id, err)
	}
	var rec ClaimRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("claim %s/%d unmarshal: %w", account, id, err)
	}
	return &rec, nil
}

// AppendLock assigns the next lock ID to rec and commits the record
// together with the bumped count in one atomic batch.
func (s *Store) AppendLock(account types.Address, rec *LockRecord) (uint64, error) {
	count, err := s.LockCount(account)
	if err != nil {
		return 0, fmt.Errorf("lock count: %w", err)
	}
	rec.ID = count

	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("lock marshal: %w", err)
	}

	batch := storage.NewBatchFor(s.db)
	if err := batch.Put(recordKey(prefixLock, account, count), data); err != nil {
		return 0, err
	}
	if err := batch.Put(countKey(prefixLockCount, account), encodeCount(count+1)); err != nil {
		return 0, err
	}
	if err := batch.Commit(); err != nil {
		return 0, fmt.Errorf("append lock: %w", err)
	}
	return count, nil
}

// PutLock overwrites an existing lock record in place.
func (s *Store) PutLock(account types.Address, rec *LockRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("lock marshal: %w", err)
	}
	return s.db.Put(recordKey(prefixLock, account, rec.ID), data)
}

// CommitClaim atomically marks the lock claimed and appends the claim
// record with its bumped count. Committing these together keeps the
// "claimed implies a matching claim record" invariant on every path.
func (s *Store) CommitClaim(account types.Address, lock *LockRecord, claim *ClaimRecord) error {
	lockData, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("lock marshal: %w", err)
	}
	claimData, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("claim marshal: %w", err)
	}
	count, err := s.ClaimCount(account)
	if err != nil {
		return fmt.Errorf("claim count: %w", err)
	}

	batch := storage.NewBatchFor(s.db)
	if err := batch.Put(recordKey(prefixLock, account, lock.ID), lockData); err != nil {
		return err
	}
	if err := batch.Put(recordKey(prefixClaim, account, count), claimData); err != nil {
		return err
	}
	if err := batch.Put(countKey(prefixClaimCount, account), encodeCount(count+1)); err != nil {
		return err
	}
	return batch.Commit()
}

// RollbackClaim undoes CommitClaim after a failed release transfer:
// the lock reverts to unclaimed and the claim record is removed.
func (s *Store) RollbackClaim(account types.Address, lock *LockRecord) error {
	lockData, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("lock marshal: %w", err)
	}
	count, err := s.ClaimCount(account)
	if err != nil {
		return fmt.Errorf("claim count: %w", err)
	}
	if count == 0 {
		return errors.New("rollback with no claim records")
	}

	batch := storage.NewBatchFor(s.db)
	if err := batch.Put(recordKey(prefixLock, account, lock.ID), lockData); err != nil {
		return err
	}
	if err := batch.Delete(recordKey(prefixClaim, account, count-1)); err != nil {
		return err
	}
	if err := batch.Put(countKey(prefixClaimCount, account), encodeCount(count-1)); err != nil {
		return err
	}
	return batch.Commit()
}

// Locks returns the full lock history of an account in insertion order.
func (s *Store) Locks(account types.Address) ([]LockRecord, error) {
	count, err := s.LockCount(account)
	if err != nil {
		return nil, err
	}
	return s.locksRange(account, 0, count, count)
}

// LocksRange returns the sub-range [offset, min(offset+limit, count)) of
// an account's lock history. Out-of-range offsets yield an empty slice.
func (s *Store) LocksRange(account types.Address, offset, limit uint64) ([]LockRecord, error) {
	count, err := s.LockCount(account)
	if err != nil {
		return nil, err
	}
	return s.locksRange(account, offset, limit, count)
}

func (s *Store) locksRange(account types.Address, offset, limit, count uint64) ([]LockRecord, error) {
	start, end := clampRange(offset, limit, count)
	records := make([]LockRecord, 0, end-start)
	for i := start; i < end; i++ {
		rec, err := s.GetLock(account, i)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// Claims returns the full claim history of an account in insertion order.
func (s *Store) Claims(account types.Address) ([]ClaimRecord, error) {
	count, err := s.ClaimCount(account)
	if err != nil {
		return nil, err
	}
	return s.claimsRange(account, 0, count, count)
}

// ClaimsRange returns the sub-range [offset, min(offset+limit, count)) of
// an account's claim history. Out-of-range offsets yield an empty slice.
func (s *Store) ClaimsRange(account types.Address, offset, limit uint64) ([]ClaimRecord, error) {
	count, err := s.ClaimCount(account)
	if err != nil {
		return nil, err
	}
	return s.claimsRange(account, offset, limit, count)
}

func (s *Store) claimsRange(account types.Address, offset, limit, count uint64) ([]ClaimRecord, error) {
	start, end := clampRange(offset, limit, count)
	records := make([]ClaimRecord, 0, end-start)
	for i := start; i < end; i++ {
		rec, err := s.GetClaim(account, i)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// clampRange resolves [offset, offset+limit) against count, guarding
// against offset+limit overflowing uint64.
func clampRange(offset, limit, count uint64) (start, end uint64) {
	if offset >= count {
		return 0, 0
	}
	end = count
	if limit < count-offset {
		end = offset + limit
	}
	return offset, end
}

func (s *Store) readCount(key []byte) (uint64, error) {
	data, err := s.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("malformed count: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func recordKey(prefix []byte, account types.Address, index uint64) []byte {
	key := make([]byte, len(prefix)+types.AddressSize+8)
	copy(key, prefix)
	copy(key[len(prefix):], account[:])
	binary.BigEndian.PutUint64(key[len(prefix)+types.AddressSize:], index)
	return key
}

func countKey(prefix []byte, account types.Address) []byte {
	key := make([]byte, len(prefix)+types.AddressSize)
	copy(key, prefix)
	copy(key[len(prefix):], account[:])
	return key
}

func encodeCount(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
