package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	raw, err := openBolt(filepath.Join(t.TempDir(), "ledger.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := raw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreMarksPerSource(t *testing.T) {
	store := openTestStore(t, Options{})

	unseen, err := store.Unseen("sheet", []string{"a", "b"})
	if err != nil || len(unseen) != 2 {
		t.Fatalf("expected both ids unseen, got %v err=%v", unseen, err)
	}

	if err := store.Mark("sheet", []string{"a"}); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	unseen, err = store.Unseen("sheet", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Unseen: %v", err)
	}
	if len(unseen) != 1 || unseen[0] != "b" {
		t.Fatalf("expected only b unseen, got %v", unseen)
	}

	unseen, err = store.Unseen("airtable", []string{"a"})
	if err != nil || len(unseen) != 1 {
		t.Fatalf("ids must be scoped per source, got %v err=%v", unseen, err)
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	store := openTestStore(t, Options{ListingTTL: time.Hour, CleanupInterval: time.Minute})
	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.Mark("sheet", []string{"a"}); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	unseen, err := store.Unseen("sheet", []string{"a"})
	if err != nil {
		t.Fatalf("Unseen after expiry: %v", err)
	}
	if len(unseen) != 1 {
		t.Fatalf("expected expired entry to count as unseen")
	}
}

func TestBoltStoreCleanupRemovesEveryExpiredEntry(t *testing.T) {
	store := openTestStore(t, Options{ListingTTL: time.Hour, CleanupInterval: time.Minute})
	base := time.Now()
	store.now = func() time.Time { return base }

	if err := store.Mark("sheet", []string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := store.Mark("sheet", []string{"f"}); err != nil {
		t.Fatalf("Mark after expiry: %v", err)
	}

	var keys []string
	err := store.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(rootBucket)).Bucket([]byte("sheet")).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		t.Fatalf("read bucket: %v", err)
	}
	if len(keys) != 1 || keys[0] != "f" {
		t.Fatalf("expected only f to remain after cleanup, got %v", keys)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Mark("sheet", []string{"x"}); err != nil {
		t.Fatalf("noop store Mark: %v", err)
	}
	unseen, _ := store.Unseen("sheet", []string{"x"})
	if len(unseen) != 1 {
		t.Fatalf("noop store should report everything unseen")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
