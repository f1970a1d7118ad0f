package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const responsesBktName = "responses"

// BoltCache persists responses on disk so repeated CLI runs within the TTL
// skip the network.
type BoltCache struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type boltEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Body     json.RawMessage `json:"body"`
}

// NewBoltCache opens (or creates) dir/responses.db.
func NewBoltCache(dir string, ttl time.Duration) (*BoltCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	db, err := bolt.Open(filepath.Join(dir, "responses.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open boltdb in %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(responsesBktName)); err != nil {
			return fmt.Errorf("create bucket %s: %w", responsesBktName, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &BoltCache{db: db, ttl: ttl, now: time.Now}, nil
}

var errExpired = errors.New("expired")

// Get returns the body stored under key and its remaining lifetime if it is
// younger than the TTL. Expired entries are deleted.
func (b *BoltCache) Get(key string) ([]byte, time.Duration, bool) {
	var (
		body []byte
		left time.Duration
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(responsesBktName)).Get([]byte(key))
		if raw == nil {
			return errNotCached
		}
		var e boltEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}
		left = b.ttl - b.now().Sub(e.StoredAt)
		if left <= 0 {
			return errExpired
		}
		body = append([]byte(nil), e.Body...)
		return nil
	})
	if errors.Is(err, errExpired) {
		_ = b.Delete(key)
	}
	if err != nil {
		return nil, 0, false
	}
	return body, left, true
}

// Put stores body under key with the current time.
func (b *BoltCache) Put(key string, body []byte) error {
	raw, err := json.Marshal(boltEntry{StoredAt: b.now(), Body: body})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(responsesBktName)).Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	return nil
}

// Delete removes key.
func (b *BoltCache) Delete(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(responsesBktName)).Delete([]byte(key))
	})
}

// Purge removes every entry and returns how many there were.
func (b *BoltCache) Purge() (int, error) {
	n := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(responsesBktName)).Stats().KeyN
		if err := tx.DeleteBucket([]byte(responsesBktName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(responsesBktName))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return n, nil
}

// Close closes the database file.
func (b *BoltCache) Close() error { return b.db.Close() }
