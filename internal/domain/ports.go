package domain

import (
	"context"
	"time"
)

// EventsClient performs one events search against the upstream API and
// returns the raw JSON body.
type EventsClient interface {
	Search(ctx context.Context, q UpstreamQuery) ([]byte, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SearchLog persists which searches were made. It never stores the
// credential or event payloads.
type SearchLog interface {
	Record(ctx context.Context, e SearchLogEntry) error
	TopKeywords(ctx context.Context, since time.Time, limit int) ([]KeywordCount, error)
}

type SearchLogEntry struct {
	Keyword     string
	Query       string // UpstreamQuery.CacheKey()
	Status      string // ok|cache|error
	ResultBytes int
	Duration    time.Duration
}

type KeywordCount struct {
	Keyword string
	Count   int
}
