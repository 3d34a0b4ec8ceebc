package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const abiKeyPrefix = "abi:"

var (
	setCacheValue = Set
	getCacheValue = Get
	delCacheValue = Del
)

// ABICache caches raw ABI file contents keyed by file path, so repeated
// operations against the same contract do not re-read the file.
type ABICache struct {
	ttl time.Duration
}

// NewABICache creates an ABI cache. A non-positive ttl disables expiry.
func NewABICache(ttl time.Duration) *ABICache {
	return &ABICache{ttl: ttl}
}

// Get returns the cached ABI document for a path. A cache miss is reported
// as (nil, false, nil); only transport failures surface as errors.
func (c *ABICache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	raw, err := getCacheValue(ctx, abiKeyPrefix+path)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(raw), true, nil
}

// Put stores an ABI document under its path.
func (c *ABICache) Put(ctx context.Context, path string, raw []byte) error {
	return setCacheValue(ctx, abiKeyPrefix+path, raw, c.ttl)
}

// Invalidate drops a cached ABI document.
func (c *ABICache) Invalidate(ctx context.Context, path string) error {
	return delCacheValue(ctx, abiKeyPrefix+path)
}
