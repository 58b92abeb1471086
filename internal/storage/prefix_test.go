package storage

import (
	"bytes"
	"testing"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	a := NewPrefixDB(inner, []byte("a/"))
	b := NewPrefixDB(inner, []byte("b/"))

	if err := a.Put([]byte("key"), []byte("from-a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Put([]byte("key"), []byte("from-b")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := a.Get([]byte("key"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("from-a")) {
		t.Errorf("a.Get = %q, want %q", got, "from-a")
	}

	got, err = b.Get([]byte("key"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("from-b")) {
		t.Errorf("b.Get = %q, want %q", got, "from-b")
	}
}

func TestPrefixDB_ForEach_StripsPrefix(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("ns/"))

	if err := p.Put([]byte("x/1"), []byte("1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := p.Put([]byte("y/1"), []byte("2")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var keys []string
	err := p.ForEach([]byte("x/"), func(key, _ []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(keys) != 1 || keys[0] != "x/1" {
		t.Errorf("keys = %v, want [x/1]", keys)
	}
}

func TestPrefixDB_Batch(t *testing.T) {
	inner := NewMemory()
	p := NewPrefixDB(inner, []byte("ns/"))

	batch := p.NewBatch()
	if err := batch.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("batch Put: %v", err)
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// Visible through the prefix view and at the full key in the inner DB.
	if has, _ := p.Has([]byte("k")); !has {
		t.Error("batch write not visible through PrefixDB")
	}
	if has, _ := inner.Has([]byte("ns/k")); !has {
		t.Error("batch write missing full prefix in inner DB")
	}
}
