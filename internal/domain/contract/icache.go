package contract

import (
	"context"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
)

// CachedFeedPage is the cached payload for a feed page.
type CachedFeedPage struct {
	Items []entity.FeedItem `json:"items"`
	Total int64             `json:"total"`
}

// IFeedCache defines caching operations for feed pages.
type IFeedCache interface {
	GetFeedPage(ctx context.Context, page, limit int) (*CachedFeedPage, bool, error)
	SetFeedPage(ctx context.Context, page, limit int, data *CachedFeedPage) error
	InvalidateFeed(ctx context.Context) error
}
