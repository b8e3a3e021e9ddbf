// Package iocache persists commit details and report history across runs.
package iocache

import (
	"sync"

	"github.com/huangsam/gitsummary/internal/contract"
)

// CacheStoreManager holds the detail cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	detail       contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetDetailStore returns the commit detail cache, or nil when caching is off.
func (mgr *CacheStoreManager) GetDetailStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.detail
}

// GetHistoryStore returns the report history store, or nil when history is off.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
