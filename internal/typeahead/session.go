// Package typeahead turns a stream of keystrokes into suggestion lookups.
//
// Input is debounced: a lookup starts only after the text has been quiet for
// the configured delay, and not at all if the settled text equals the last
// one looked up. Starting a lookup cancels the previous one, and a result is
// delivered only if no newer lookup has started since, so results can never
// be applied out of order.
package typeahead

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"

	"tour_map/internal/domain"
)

// DefaultDelay is the quiescence delay between the last keystroke and a lookup.
const DefaultDelay = 250 * time.Millisecond

// LookupFunc fetches suggestions for keyword.
type LookupFunc func(ctx context.Context, keyword string) ([]domain.Suggestion, error)

// Result is one delivered lookup outcome.
type Result struct {
	Seq         uint64
	Keyword     string
	Suggestions []domain.Suggestion
	Err         error
}

type Session struct {
	lookup    LookupFunc
	deliver   func(Result)
	debounced func(func())

	// deliverMu serializes deliveries so a newer result always lands last.
	deliverMu sync.Mutex

	mu         sync.Mutex
	pending    string
	hasPending bool
	seq        uint64
	last       string
	started    bool
	cancel     context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

// New starts a session. deliver is called from a background goroutine, at
// most once per lookup and never for a superseded one.
func New(delay time.Duration, lookup LookupFunc, deliver func(Result)) *Session {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Session{
		lookup:    lookup,
		deliver:   deliver,
		debounced: debounce.New(delay),
	}
}

// Input records the current text of the search box.
func (s *Session) Input(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending, s.hasPending = text, true
	s.mu.Unlock()
	s.debounced(s.fire)
}

// Flush settles any pending input without waiting for the delay, then
// blocks until every started lookup has delivered or been dropped.
func (s *Session) Flush() {
	s.fire()
	s.wg.Wait()
}

// fire hands the pending text to settle at most once.
func (s *Session) fire() {
	s.mu.Lock()
	text, ok := s.pending, s.hasPending
	s.hasPending = false
	s.mu.Unlock()
	if ok {
		s.settle(text)
	}
}

// settle runs once the input has been quiet for the delay.
func (s *Session) settle(text string) {
	s.mu.Lock()
	if s.closed || (s.started && text == s.last) {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.last, s.started = text, true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		out, err := s.lookup(ctx, text)

		s.deliverMu.Lock()
		defer s.deliverMu.Unlock()
		s.mu.Lock()
		current := seq == s.seq && !s.closed
		s.mu.Unlock()
		if !current {
			return
		}
		s.deliver(Result{Seq: seq, Keyword: text, Suggestions: out, Err: err})
	}()
}

// Close cancels any pending lookup and waits for it to finish. No result
// is delivered after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
