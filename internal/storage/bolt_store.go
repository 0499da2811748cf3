package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	rootBucket       = "announced_listings"
	expiryValueBytes = 8
)

// boltStore implements Store with one nested bucket per source under rootBucket.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	listingTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		listingTTL:      opts.ListingTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Unseen filters ids down to those without a live entry for sourceID.
func (b *boltStore) Unseen(sourceID string, ids []string) ([]string, error) {
	if b == nil || b.db == nil {
		return ids, nil
	}
	if len(ids) == 0 {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(ids))
	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return fmt.Errorf("listing bucket missing")
		}
		src := root.Bucket([]byte(sourceID))
		for _, id := range ids {
			if src == nil {
				out = append(out, id)
				continue
			}
			expiry, ok := decodeExpiry(src.Get([]byte(id)))
			if !ok || !expiry.After(now) {
				out = append(out, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Mark records ids for sourceID in a single transaction.
func (b *boltStore) Mark(sourceID string, ids []string) error {
	if b == nil || b.db == nil || len(ids) == 0 {
		return nil
	}
	if sourceID == "" {
		return fmt.Errorf("source id is required")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(now.Add(b.listingTTL).Unix()))

	return b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return fmt.Errorf("listing bucket missing")
		}
		src, err := root.CreateBucketIfNotExists([]byte(sourceID))
		if err != nil {
			return fmt.Errorf("source bucket %q: %w", sourceID, err)
		}
		for _, id := range ids {
			if id == "" {
				continue
			}
			if err := src.Put([]byte(id), buf); err != nil {
				return err
			}
		}
		return nil
	})
}

// maybeCleanupExpired removes expired ids on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return fmt.Errorf("listing bucket missing")
		}
		return root.ForEachBucket(func(name []byte) error {
			bucket := root.Bucket(name)
			// Deleting under a cursor skips the following key, so collect first.
			var expired [][]byte
			err := bucket.ForEach(func(k, v []byte) error {
				if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range expired {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
