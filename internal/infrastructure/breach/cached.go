package breach

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/auth-service/internal/domain/entity"
	"github.com/oksasatya/auth-service/pkg/helpers"
)

const cacheKeyPrefix = "breach:hmac:"

type cacheEntry struct {
	Breached  bool      `json:"breached"`
	CheckedAt time.Time `json:"checked_at"`
}

// CachedChecker remembers verdicts from next in redis, keyed by an
// HMAC-SHA256 of the password so redis never holds an unkeyed digest.
// Lookup errors from next are never cached; redis errors are logged and skipped.
type CachedChecker struct {
	next   entity.BreachChecker
	rdb    redis.Cmdable
	ttl    time.Duration
	secret []byte
	logger *logrus.Logger
}

// NewCachedChecker builds the cache. An empty secret is replaced by a random
// per-process key, so entries are only reused by this process.
func NewCachedChecker(next entity.BreachChecker, rdb redis.Cmdable, ttl time.Duration, secret []byte, logger *logrus.Logger) *CachedChecker {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
		helpers.LogWarn(logger, "breach cache secret not set, using a per-process key", nil, nil)
	}
	return &CachedChecker{next: next, rdb: rdb, ttl: ttl, secret: secret, logger: logger}
}

func (c *CachedChecker) cacheKey(password string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(password))
	return cacheKeyPrefix + hex.EncodeToString(mac.Sum(nil))
}

func (c *CachedChecker) IsBreached(ctx context.Context, password string) (bool, error) {
	key := c.cacheKey(password)

	var entry cacheEntry
	found, err := helpers.RedisGetJSON(ctx, c.rdb, key, &entry)
	if err != nil {
		helpers.LogWarn(c.logger, "breach cache read failed", err, logrus.Fields{"key": key})
	} else if found {
		return entry.Breached, nil
	}

	breached, err := c.next.IsBreached(ctx, password)
	if err != nil {
		return false, err
	}

	entry = cacheEntry{Breached: breached, CheckedAt: time.Now().UTC()}
	if err := helpers.RedisSetJSON(ctx, c.rdb, key, entry, c.ttl); err != nil {
		helpers.LogWarn(c.logger, "breach cache write failed", err, logrus.Fields{"key": key})
	}
	return breached, nil
}

var _ entity.BreachChecker = (*CachedChecker)(nil)
