// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"tour_map/internal/adapters/observability"
	"tour_map/internal/domain"
)

// Events is the lookup surface the handlers need.
type Events interface {
	Search(ctx context.Context, f domain.SearchFilters) (json.RawMessage, error)
	ArtistSuggestions(ctx context.Context, keyword string) ([]domain.Suggestion, error)
	KeywordSuggestions(ctx context.Context, keyword string) ([]string, error)
	Tour(ctx context.Context, attractionID string) ([]domain.EventSummary, error)
}

type Handlers struct{ E Events }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// statusClientClosed is logged when the caller hung up before we answered.
const statusClientClosed = 499

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Group(func(r chi.Router) {
			r.Use(s.apiLimiter())
			r.Get("/events", h.searchEvents)
			r.Get("/suggest/artists", h.suggestArtists)
			r.Get("/suggest/keywords", h.suggestKeywords)
			r.Get("/tour/{attractionId}", h.tour)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps lookup errors to responses. Configuration problems and
// upstream problems get different status classes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ue *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		writeProblem(w, http.StatusInternalServerError, "Configuration Error", "TM_API_KEY not configured.")
	case r.Context().Err() != nil:
		log.Debug().Err(err).Msg("client went away")
		w.WriteHeader(statusClientClosed)
	case errors.Is(err, domain.ErrRateLimited):
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusServiceUnavailable, "Busy", "too many searches in flight, retry shortly")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		w.Header().Set("Retry-After", "30")
		writeProblem(w, http.StatusServiceUnavailable, "Upstream Unavailable", "Ticketmaster error: "+err.Error())
	case errors.As(err, &ue):
		if ue.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(ue.RetryAfter.Seconds())))
		}
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "Ticketmaster error: "+ue.Message)
	default:
		writeProblem(w, http.StatusBadGateway, "Upstream Error", "Ticketmaster error: "+err.Error())
	}
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeBody sends a JSON body with a weak ETag, honoring If-None-Match.
func writeBody(w http.ResponseWriter, r *http.Request, body []byte) {
	etag := etagOf(body)
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "encode response")
		return
	}
	writeBody(w, r, body)
}

func (h *Handlers) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{"ok": true, "msg": "pong"})
}

// filtersFrom binds the recognized query parameters. Only the numeric ones
// are checked, because they must be numbers to be bound at all.
func filtersFrom(r *http.Request) (domain.SearchFilters, error) {
	q := r.URL.Query()
	f := domain.SearchFilters{
		Keyword:            q.Get("keyword"),
		CountryCode:        q.Get("countryCode"),
		City:               q.Get("city"),
		StateCode:          q.Get("stateCode"),
		ClassificationName: q.Get("classificationName"),
		AttractionID:       q.Get("attractionId"),
		Sort:               q.Get("sort"),
		StartDateTime:      q.Get("startDateTime"),
		EndDateTime:        q.Get("endDateTime"),
		Unit:               q.Get("unit"),
	}
	for name, dst := range map[string]**int{"size": &f.Size, "page": &f.Page, "radius": &f.Radius} {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.SearchFilters{}, errors.New(name + " must be an integer")
		}
		*dst = &n
	}
	return f, nil
}

func (h *Handlers) searchEvents(w http.ResponseWriter, r *http.Request) {
	f, err := filtersFrom(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Parameter", err.Error())
		return
	}
	body, err := h.E.Search(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBody(w, r, body)
}

func (h *Handlers) suggestArtists(w http.ResponseWriter, r *http.Request) {
	out, err := h.E.ArtistSuggestions(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveSuggestions("artist", len(out))
	writeJSON(w, r, out)
}

func (h *Handlers) suggestKeywords(w http.ResponseWriter, r *http.Request) {
	out, err := h.E.KeywordSuggestions(r.Context(), r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveSuggestions("keyword", len(out))
	writeJSON(w, r, out)
}

func (h *Handlers) tour(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "attractionId"))
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Parameter", "attractionId is required")
		return
	}
	out, err := h.E.Tour(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}
