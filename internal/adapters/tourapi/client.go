// Package tourapi is a client for this service's own HTTP API.
package tourapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"tour_map/internal/domain"
)

// minKeywordLen mirrors the server: shorter keywords never leave the process.
const minKeywordLen = 2

type Client struct {
	base string
	hc   *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// ArtistSuggestions calls GET /api/suggest/artists.
func (c *Client) ArtistSuggestions(ctx context.Context, keyword string) ([]domain.Suggestion, error) {
	if len([]rune(strings.TrimSpace(keyword))) < minKeywordLen {
		return []domain.Suggestion{}, nil
	}
	var out []domain.Suggestion
	err := c.get(ctx, "/api/suggest/artists?"+url.Values{"keyword": {keyword}}.Encode(), &out)
	return out, err
}

// Tour calls GET /api/tour/{attractionId}.
func (c *Client) Tour(ctx context.Context, attractionID string) ([]domain.EventSummary, error) {
	var out []domain.EventSummary
	err := c.get(ctx, "/api/tour/"+url.PathEscape(attractionID), &out)
	return out, err
}

// problem is the error body the API answers with.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var p problem
		if json.Unmarshal(b, &p) == nil && p.Detail != "" {
			return fmt.Errorf("%s (%d): %s", p.Title, resp.StatusCode, p.Detail)
		}
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
