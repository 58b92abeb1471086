package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryDB_PutGetDelete(t *testing.T) {
	db := NewMemory()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get missing key: err = %v, want ErrKeyNotFound", err)
	}

	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v")) {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	has, err := db.Has([]byte("k"))
	if err != nil || !has {
		t.Errorf("Has = %v, %v, want true, nil", has, err)
	}

	if err := db.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if has, _ := db.Has([]byte("k")); has {
		t.Error("key still present after Delete")
	}
}

func TestMemoryDB_GetReturnsCopy(t *testing.T) {
	db := NewMemory()
	if err := db.Put([]byte("k"), []byte("value")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got[0] = 'X'

	again, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(again, []byte("value")) {
		t.Error("mutating a returned value leaked into the store")
	}
}

func TestMemoryDB_ForEach_Prefix(t *testing.T) {
	db := NewMemory()
	keys := []string{"a/1", "a/2", "b/1"}
	for _, k := range keys {
		if err := db.Put([]byte(k), []byte(k)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	var seen int
	err := db.ForEach([]byte("a/"), func(key, value []byte) error {
		seen++
		if !bytes.HasPrefix(key, []byte("a/")) {
			t.Errorf("unexpected key %q", key)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if seen != 2 {
		t.Errorf("visited %d keys, want 2", seen)
	}
}

func TestMemoryDB_ForEach_StopEarly(t *testing.T) {
	db := NewMemory()
	for _, k := range []string{"x/1", "x/2", "x/3"} {
		if err := db.Put([]byte(k), nil); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	errStop := errors.New("stop")
	var count int
	err := db.ForEach([]byte("x/"), func(_, _ []byte) error {
		count++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("err = %v, want errStop", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestMemoryDB_Batch_Atomic(t *testing.T) {
	db := NewMemory()
	if err := db.Put([]byte("old"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	batch := db.NewBatch()
	if err := batch.Put([]byte("new"), []byte("2")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if err := batch.Delete([]byte("old")); err != nil {
		t.Fatalf("batch Delete: %v", err)
	}

	// Nothing applied before Commit.
	if has, _ := db.Has([]byte("new")); has {
		t.Error("batch write visible before Commit")
	}

	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if has, _ := db.Has([]byte("new")); !has {
		t.Error("batch write missing after Commit")
	}
	if has, _ := db.Has([]byte("old")); has {
		t.Error("batch delete not applied")
	}
}

func TestNewBatchFor_Fallback(t *testing.T) {
	// PrefixDB delegates; a bare DB without Batcher gets the fallback.
	db := NewMemory()
	batch := NewBatchFor(db)
	if batch == nil {
		t.Fatal("NewBatchFor returned nil")
	}
	if err := batch.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if has, _ := db.Has([]byte("k")); !has {
		t.Error("fallback batch did not apply writes")
	}
}
