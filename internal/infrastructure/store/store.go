package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
)

const (
	feedKeyPattern  = "posts:feed:*"
	defaultFeedTTL  = 5 * time.Minute
	invalidateBatch = 200
)

// FeedCacheStore keeps rendered feed pages in redis.
type FeedCacheStore struct {
	rdb     *redis.Client
	feedTTL time.Duration
}

var _ contract.IFeedCache = (*FeedCacheStore)(nil)

func NewFeedCacheStore(rdb *redis.Client, ttl time.Duration) *FeedCacheStore {
	if ttl <= 0 {
		ttl = defaultFeedTTL
	}
	return &FeedCacheStore{rdb: rdb, feedTTL: ttl}
}

func feedPageKey(page, limit int) string { return fmt.Sprintf("posts:feed:p=%d:l=%d", page, limit) }

func (c *FeedCacheStore) GetFeedPage(ctx context.Context, page, limit int) (*contract.CachedFeedPage, bool, error) {
	b, err := c.rdb.Get(ctx, feedPageKey(page, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var cached contract.CachedFeedPage
	if err := json.Unmarshal(b, &cached); err != nil {
		// a stale layout is treated as a miss and overwritten on the next set
		return nil, false, nil
	}
	return &cached, true, nil
}

func (c *FeedCacheStore) SetFeedPage(ctx context.Context, page, limit int, data *contract.CachedFeedPage) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, feedPageKey(page, limit), b, c.feedTTL).Err()
}

// InvalidateFeed drops every cached page. Any post mutation can shift page
// boundaries so pages are never evicted individually.
func (c *FeedCacheStore) InvalidateFeed(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, feedKeyPattern, 1000).Iterator()
	pipe := c.rdb.Pipeline()
	n := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		n++
		if n%invalidateBatch == 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if n%invalidateBatch != 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
