package corpus

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketItems = []byte("items")
	bucketMeta  = []byte("meta")
	keyRunID    = []byte("run_id")
	keyCount    = []byte("count")
)

// ErrItemNotFound is returned by Map.Get for ids outside the map.
var ErrItemNotFound = errors.New("corpus: item not found")

// Map is a read-only bbolt file mapping item ids to items.
type Map struct {
	db    *bbolt.DB
	runID string
	count int
}

// CreateMap writes items to a new bbolt file at path, replacing any existing
// file. Items must carry dense ids matching their position.
func CreateMap(path, runID string, items []Item) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("corpus: remove %s: %w", path, err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("corpus: create map: %w", err)
	}
	defer db.Close()
	return db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucket(bucketItems)
		if err != nil {
			return err
		}
		for pos, item := range items {
			if item.ID != pos {
				return fmt.Errorf("corpus: item at position %d has id %d", pos, item.ID)
			}
			data, err := json.Marshal(item)
			if err != nil {
				return err
			}
			if err := b.Put(itemKey(item.ID), data); err != nil {
				return err
			}
		}
		meta, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyRunID, []byte(runID)); err != nil {
			return err
		}
		return meta.Put(keyCount, []byte(strconv.Itoa(len(items))))
	})
}

// OpenMap opens an existing map read-only.
func OpenMap(path string) (*Map, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("corpus: open map: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("corpus: open map: %w", err)
	}
	m := &Map{db: db}
	err = db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil || tx.Bucket(bucketItems) == nil {
			return errors.New("corpus: map is missing buckets")
		}
		m.runID = string(meta.Get(keyRunID))
		count, err := strconv.Atoi(string(meta.Get(keyCount)))
		if err != nil {
			return fmt.Errorf("corpus: invalid item count: %w", err)
		}
		m.count = count
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// Get returns the item stored under id.
func (m *Map) Get(id int) (*Item, error) {
	if id < 0 || id >= m.count {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	var item Item
	err := m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketItems).Get(itemKey(id))
		if data == nil {
			return fmt.Errorf("%w: %d", ErrItemNotFound, id)
		}
		return json.Unmarshal(data, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Len returns the recorded item count.
func (m *Map) Len() int { return m.count }

// RunID returns the training run id recorded in the map.
func (m *Map) RunID() string { return m.runID }

// Verify checks that the stored keys are exactly the ids [0, n) and that each
// value carries its own id.
func (m *Map) Verify(n int) error {
	if m.count != n {
		return fmt.Errorf("corpus: map holds %d items, want %d", m.count, n)
	}
	return m.db.View(func(tx *bbolt.Tx) error {
		expected := 0
		err := tx.Bucket(bucketItems).ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("corpus: malformed key %x", k)
			}
			id := int(binary.BigEndian.Uint64(k))
			if id != expected {
				return fmt.Errorf("corpus: found id %d, want %d", id, expected)
			}
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("corpus: item %d: %w", id, err)
			}
			if item.ID != id {
				return fmt.Errorf("corpus: key %d holds item %d", id, item.ID)
			}
			expected++
			return nil
		})
		if err != nil {
			return err
		}
		if expected != n {
			return fmt.Errorf("corpus: map has %d keys, want %d", expected, n)
		}
		return nil
	})
}

// Close releases the file.
func (m *Map) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

func itemKey(id int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
