package core

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
)

// currentCacheVersion defines the version of the detail cache entries
const currentCacheVersion = 1

// detailMaxAge is how long a cached detail text stays valid.
const detailMaxAge = 30 * 24 * time.Hour

// cachedCommitDetail returns the `git show` text of hash, going through the detail cache when one is configured.
func cachedCommitDetail(ctx context.Context, client contract.GitClient, store contract.CacheStore, repoPath, hash string) ([]byte, error) {
	if store == nil {
		return client.GetCommitDetail(ctx, repoPath, hash)
	}

	key := generateCacheKey(repoPath, hash)
	if data := checkCacheHit(store, key); data != nil {
		return data, nil
	}

	data, err := client.GetCommitDetail(ctx, repoPath, hash)
	if err != nil {
		return nil, err
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogDebug(fmt.Sprintf("detail cache write failed for %s: %v", hash, err))
	}
	return data, nil
}

// checkCacheHit returns the cached text, or nil on a miss, a version mismatch or a stale entry.
func checkCacheHit(store contract.CacheStore, key string) []byte {
	data, version, ts, err := store.Get(key)
	if err != nil || version != currentCacheVersion || len(data) == 0 {
		return nil
	}
	if time.Since(time.Unix(ts, 0)) > detailMaxAge {
		return nil
	}
	return data
}

// generateCacheKey identifies one commit of one repository.
func generateCacheKey(repoPath, hash string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath+":"+hash)))
}
