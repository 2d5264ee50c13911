package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gatherly/backend/internal/models"
)

// CachedVerifier caches successful verifications in redis for a bounded TTL,
// keyed by a hash of the token. Failures are never cached, and cache faults
// fall through to the inner verifier, so a degraded cache only costs extra
// provider calls.
type CachedVerifier struct {
	inner  Verifier
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedVerifier wraps inner with a redis-backed TTL cache.
func NewCachedVerifier(inner Verifier, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedVerifier {
	return &CachedVerifier{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:token:" + hex.EncodeToString(sum[:])
}

// Verify returns the cached identity for the token when present, otherwise
// verifies with the provider and caches the result.
func (v *CachedVerifier) Verify(ctx context.Context, token string) (*models.ExternalIdentity, error) {
	key := cacheKey(token)
	raw, err := v.rdb.Get(ctx, key).Result()
	if err == nil {
		var ident models.ExternalIdentity
		if err := json.Unmarshal([]byte(raw), &ident); err == nil {
			return &ident, nil
		}
		// Unreadable entry; drop it and re-verify.
		_ = v.rdb.Del(ctx, key).Err()
	} else if err != redis.Nil {
		v.logger.Warn("identity cache read failed", zap.Error(err))
	}

	ident, err := v.inner.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(ident); err == nil {
		if err := v.rdb.Set(ctx, key, data, v.ttl).Err(); err != nil {
			v.logger.Warn("identity cache write failed", zap.Error(err))
		}
	}
	return ident, nil
}
