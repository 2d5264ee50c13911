package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
)

type countingVerifier struct {
	identity *models.ExternalIdentity
	err      error
	calls    int
}

func (v *countingVerifier) Verify(ctx context.Context, token string) (*models.ExternalIdentity, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func newTestCache(t *testing.T, inner Verifier, ttl time.Duration) (*CachedVerifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCachedVerifier(inner, rdb, ttl, zap.NewNop()), mr
}

func TestCachedVerifierHitSkipsProvider(t *testing.T) {
	inner := &countingVerifier{identity: &models.ExternalIdentity{ID: "ext-1", Email: "a@example.com"}}
	cache, _ := newTestCache(t, inner, time.Minute)

	ctx := context.Background()
	first, err := cache.Verify(ctx, "opaque-token")
	require.NoError(t, err)
	second, err := cache.Verify(ctx, "opaque-token")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "second verification must come from the cache")
	assert.Equal(t, first, second)
}

func TestCachedVerifierExpiryReverifies(t *testing.T) {
	inner := &countingVerifier{identity: &models.ExternalIdentity{ID: "ext-1"}}
	cache, mr := newTestCache(t, inner, time.Minute)

	ctx := context.Background()
	_, err := cache.Verify(ctx, "opaque-token")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Verify(ctx, "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedVerifierDoesNotCacheFailures(t *testing.T) {
	inner := &countingVerifier{err: errors.New("rejected")}
	cache, mr := newTestCache(t, inner, time.Minute)

	ctx := context.Background()
	_, err := cache.Verify(ctx, "bad-token")
	require.Error(t, err)
	_, err = cache.Verify(ctx, "bad-token")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "failures must be re-verified every time")
	assert.Empty(t, mr.Keys())
}

func TestCachedVerifierDistinctTokensDistinctEntries(t *testing.T) {
	inner := &countingVerifier{identity: &models.ExternalIdentity{ID: "ext-1"}}
	cache, mr := newTestCache(t, inner, time.Minute)

	ctx := context.Background()
	_, err := cache.Verify(ctx, "token-a")
	require.NoError(t, err)
	_, err = cache.Verify(ctx, "token-b")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Len(t, mr.Keys(), 2)
}

func TestCachedVerifierFallsThroughOnCacheFault(t *testing.T) {
	inner := &countingVerifier{identity: &models.ExternalIdentity{ID: "ext-1"}}
	cache, mr := newTestCache(t, inner, time.Minute)
	mr.Close()

	ident, err := cache.Verify(context.Background(), "opaque-token")
	require.NoError(t, err, "a degraded cache must not fail verification")
	assert.Equal(t, "ext-1", ident.ID)
	assert.Equal(t, 1, inner.calls)
}
