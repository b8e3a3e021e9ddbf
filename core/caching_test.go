package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/gitsummary/internal/contract"
	"github.com/huangsam/gitsummary/internal/iocache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCheckCacheHit(t *testing.T) {
	now := time.Now().Unix()
	stale := time.Now().Add(-31 * 24 * time.Hour).Unix()

	tests := []struct {
		name    string
		data    []byte
		version int
		ts      int64
		err     error
		hit     bool
	}{
		{"hit", []byte("text"), currentCacheVersion, now, nil, true},
		{"version mismatch", []byte("text"), currentCacheVersion + 1, now, nil, false},
		{"stale", []byte("text"), currentCacheVersion, stale, nil, false},
		{"empty", []byte{}, currentCacheVersion, now, nil, false},
		{"store error", nil, 0, 0, assert.AnError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "key").Return(tt.data, tt.version, tt.ts, tt.err)
			got := checkCacheHit(store, "key")
			if tt.hit {
				assert.Equal(t, tt.data, got)
			} else {
				assert.Nil(t, got)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestGenerateCacheKey(t *testing.T) {
	k1 := generateCacheKey("/repo", "abc")
	assert.Len(t, k1, 64)
	assert.Equal(t, k1, generateCacheKey("/repo", "abc"))
	assert.NotEqual(t, k1, generateCacheKey("/other", "abc"))
	assert.NotEqual(t, k1, generateCacheKey("/repo", "abd"))
}

func TestCachedCommitDetail(t *testing.T) {
	ctx := context.Background()
	key := generateCacheKey(testRepo, "c1")

	t.Run("no store", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCommitDetail", mock.Anything, testRepo, "c1").Return([]byte("fresh"), nil)
		got, err := cachedCommitDetail(ctx, client, nil, testRepo, "c1")
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(got))
	})

	t.Run("hit skips git", func(t *testing.T) {
		client := &contract.MockGitClient{}
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return([]byte("cached"), currentCacheVersion, time.Now().Unix(), nil)
		got, err := cachedCommitDetail(ctx, client, store, testRepo, "c1")
		require.NoError(t, err)
		assert.Equal(t, "cached", string(got))
		client.AssertNotCalled(t, "GetCommitDetail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("miss stores result", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCommitDetail", mock.Anything, testRepo, "c1").Return([]byte("fresh"), nil)
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errors.New("not found"))
		store.On("Set", key, []byte("fresh"), currentCacheVersion, mock.AnythingOfType("int64")).Return(errors.New("readonly"))
		got, err := cachedCommitDetail(ctx, client, store, testRepo, "c1")
		require.NoError(t, err, "cache write failures are not fatal")
		assert.Equal(t, "fresh", string(got))
		store.AssertExpectations(t)
	})

	t.Run("git failure is not cached", func(t *testing.T) {
		client := &contract.MockGitClient{}
		client.On("GetCommitDetail", mock.Anything, testRepo, "c1").Return(nil, errors.New("bad object"))
		store := &iocache.MockCacheStore{}
		store.On("Get", key).Return(nil, 0, int64(0), errors.New("not found"))
		_, err := cachedCommitDetail(ctx, client, store, testRepo, "c1")
		require.Error(t, err)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
