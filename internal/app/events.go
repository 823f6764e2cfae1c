package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"tour_map/internal/domain"
)

// Upstream page sizes used by the derived lookups.
const (
	artistSearchSize  = 200
	keywordSearchSize = 5
	tourSearchSize    = 100
)

type EventsService struct {
	client   domain.EventsClient
	cache    domain.Cache
	searches domain.SearchLog
	apiKey   string
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewEventsService wires the upstream client. cache and searches may be nil.
func NewEventsService(c domain.EventsClient, cache domain.Cache, searches domain.SearchLog, apiKey string, ttl time.Duration) *EventsService {
	return &EventsService{client: c, cache: cache, searches: searches, apiKey: apiKey, cacheTTL: ttl}
}

// Search proxies one events search and returns the upstream body unmodified.
func (s *EventsService) Search(ctx context.Context, f domain.SearchFilters) (json.RawMessage, error) {
	q, err := BuildQuery(f, s.apiKey)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, f.Keyword, q)
}

// ArtistSuggestions mines performers out of a music search for keyword.
// Keywords shorter than MinKeywordLen return an empty list without a call.
func (s *EventsService) ArtistSuggestions(ctx context.Context, keyword string) ([]domain.Suggestion, error) {
	if _, ok := normalizeKeyword(keyword); !ok {
		return []domain.Suggestion{}, nil
	}
	resp, err := s.searchDecoded(ctx, domain.SearchFilters{
		Keyword:            keyword,
		ClassificationName: "music",
		Size:               intp(artistSearchSize),
	})
	if err != nil {
		return nil, err
	}
	return RankArtists(resp, keyword), nil
}

// KeywordSuggestions returns names of events matching keyword.
func (s *EventsService) KeywordSuggestions(ctx context.Context, keyword string) ([]string, error) {
	if _, ok := normalizeKeyword(keyword); !ok {
		return []string{}, nil
	}
	resp, err := s.searchDecoded(ctx, domain.SearchFilters{Keyword: keyword, Size: intp(keywordSearchSize)})
	if err != nil {
		return nil, err
	}
	return EventNames(resp), nil
}

// Tour lists the upcoming music events of one performer as map stops.
func (s *EventsService) Tour(ctx context.Context, attractionID string) ([]domain.EventSummary, error) {
	resp, err := s.searchDecoded(ctx, domain.SearchFilters{
		AttractionID:       attractionID,
		ClassificationName: "music",
		Size:               intp(tourSearchSize),
	})
	if err != nil {
		return nil, err
	}
	return TourStops(resp.Events()), nil
}

func (s *EventsService) searchDecoded(ctx context.Context, f domain.SearchFilters) (domain.SearchResponse, error) {
	body, err := s.Search(ctx, f)
	if err != nil {
		return domain.SearchResponse{}, err
	}
	var resp domain.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.SearchResponse{}, &domain.UpstreamError{Message: "decode events: " + err.Error(), Err: err}
	}
	return resp, nil
}

func (s *EventsService) fetch(ctx context.Context, keyword string, q domain.UpstreamQuery) (json.RawMessage, error) {
	start := time.Now()
	key := "events:" + q.CacheKey()

	// Cached as a string so the body round-trips byte for byte.
	var cached string
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			s.record(keyword, q, "cache", len(cached), start)
			return json.RawMessage(cached), nil
		}
	}

	body, err := s.shared(ctx, key, q)
	if err != nil {
		s.record(keyword, q, "error", 0, start)
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, string(body), int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	s.record(keyword, q, "ok", len(body), start)
	return body, nil
}

// shared collapses identical in-flight searches. The upstream call runs on
// the first caller's context; a follower whose own context is still live
// retries on its own when that leader went away.
func (s *EventsService) shared(ctx context.Context, key string, q domain.UpstreamQuery) (json.RawMessage, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		return s.client.Search(ctx, q)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if res.Shared && isCanceled(res.Err) && ctx.Err() == nil {
				b, err := s.client.Search(ctx, q)
				return json.RawMessage(b), err
			}
			return nil, res.Err
		}
		return json.RawMessage(res.Val.([]byte)), nil
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// record writes a search log entry off the request path. Failures are
// logged only; the log is informational.
func (s *EventsService) record(keyword string, q domain.UpstreamQuery, status string, n int, start time.Time) {
	if s.searches == nil {
		return
	}
	e := domain.SearchLogEntry{
		Keyword:     keyword,
		Query:       q.CacheKey(),
		Status:      status,
		ResultBytes: n,
		Duration:    time.Since(start),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.searches.Record(ctx, e); err != nil {
			log.Warn().Err(err).Str("query", e.Query).Msg("search log write failed")
		}
	}()
}

// Warm fetches artist suggestions for keyword so later lookups hit the cache.
func (s *EventsService) Warm(ctx context.Context, keyword string) (int, error) {
	out, err := s.ArtistSuggestions(ctx, keyword)
	if err != nil {
		return 0, fmt.Errorf("warm %q: %w", keyword, err)
	}
	return len(out), nil
}

func intp(v int) *int { return &v }
