package rates

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "rates"

// Cache stores the last good rate table per base currency so a restart
// without network access still has recent rates to work with. The expense
// working set itself is never persisted; only rate tables live here.
type Cache struct {
	db *bbolt.DB
}

// NewCache opens (or creates) the cache database at path.
func NewCache(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening rate cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Cache{db: db}, nil
}

// Put stores the rate table for a base currency.
func (c *Cache) Put(base string, table Table) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(table)
		if err != nil {
			return fmt.Errorf("marshaling table: %w", err)
		}
		return bucket.Put([]byte(base), data)
	})
}

// Get retrieves the cached rate table for a base currency.
func (c *Cache) Get(base string) (Table, bool) {
	var table Table
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(base))
		if data == nil {
			return fmt.Errorf("no cached table for %s", base)
		}
		return json.Unmarshal(data, &table)
	})
	if err != nil {
		return nil, false
	}
	return table, true
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
