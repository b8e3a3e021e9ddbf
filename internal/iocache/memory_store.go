package iocache

import (
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/schema"
	gocache "github.com/patrickmn/go-cache"
)

// memoryEntryTTL bounds how long a detail stays in process memory.
const memoryEntryTTL = 30 * 24 * time.Hour

type memoryEntry struct {
	value     []byte
	version   int
	timestamp int64
}

// MemoryStore keeps commit details for the lifetime of the process.
type MemoryStore struct {
	items *gocache.Cache
}

var _ contract.CacheStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-process detail cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(memoryEntryTTL, time.Hour)}
}

// Get retrieves a value by key from the store.
func (ms *MemoryStore) Get(key string) ([]byte, int, int64, error) {
	raw, ok := ms.items.Get(key)
	if !ok {
		return nil, 0, 0, ErrCacheMiss
	}
	entry := raw.(memoryEntry)
	return entry.value, entry.version, entry.timestamp, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ms *MemoryStore) Set(key string, value []byte, version int, timestamp int64) error {
	ms.items.SetDefault(key, memoryEntry{
		value:     append([]byte(nil), value...),
		version:   version,
		timestamp: timestamp,
	})
	return nil
}

// GetStatus returns status information about the cache store.
func (ms *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(schema.MemoryBackend),
		Connected: true,
	}

	var oldest, last int64
	for _, item := range ms.items.Items() {
		entry := item.Object.(memoryEntry)
		if status.TotalEntries == 0 || entry.timestamp < oldest {
			oldest = entry.timestamp
		}
		if status.TotalEntries == 0 || entry.timestamp > last {
			last = entry.timestamp
		}
		status.TotalEntries++
		status.TableSizeBytes += int64(len(entry.value))
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(last, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close drops every entry.
func (ms *MemoryStore) Close() error {
	ms.items.Flush()
	return nil
}
