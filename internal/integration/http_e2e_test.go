package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"

	server "tour_map/internal/adapters/http_server"
	redisad "tour_map/internal/adapters/redis"
	"tour_map/internal/adapters/ticketmaster"
	"tour_map/internal/app"
	"tour_map/internal/domain"
)

// ---------- helpers ----------
const upstreamBody = `{"_embedded":{"events":[
 {"id":"E1","name":"Imagine Dragons World Tour","dates":{"start":{"localDate":"2025-07-02","dateTime":"2025-07-02T19:00:00Z"}},
  "_embedded":{"venues":[{"id":"V1","name":"Arena","city":{"name":"Paris"},"location":{"latitude":"48.8","longitude":"2.3"}}],
   "attractions":[{"id":"K1","name":"Imagine Dragons"},{"id":"K2","name":"Imagine Dragons Tribute"}]}},
 {"id":"E2","name":"Imagine Dragons Live","dates":{"start":{"localDate":"2025-06-01"}},
  "_embedded":{"venues":[{"id":"V2","name":"Stadium","city":{"name":"Lyon"},"location":{"latitude":"45.7","longitude":"4.8"}}],
   "attractions":[{"id":"K1","name":"Imagine Dragons"}]}}
]},"page":{"size":2,"totalElements":2,"totalPages":1,"number":0}}`

type upstream struct {
	hits   int32
	status int
	last   atomic.Value // url.Values of the last request
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&u.hits, 1)
	u.last.Store(r.URL.Query())
	if r.URL.Path != "/events.json" {
		http.NotFound(w, r)
		return
	}
	if u.status != 0 {
		w.WriteHeader(u.status)
		_, _ = w.Write([]byte("upstream exploded"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(upstreamBody))
}

// stack wires the real adapters around a fake Discovery API.
func stack(t *testing.T, up *upstream, apiKey string) *httptest.Server {
	t.Helper()
	tm := httptest.NewServer(up)
	t.Cleanup(tm.Close)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	svc := app.NewEventsService(ticketmaster.New(tm.URL, 50, 5*time.Second), cache, nil, apiKey, time.Minute)
	srv := server.New(server.Options{CORSOrigins: []string{"http://localhost:4200"}, RequestTimeout: 5 * time.Second})
	srv.MountHandlers(&server.Handlers{E: svc})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, b
}

// ---------- the tests ----------
func TestHTTP_EndToEnd_EventsProxy(t *testing.T) {
	up := &upstream{}
	ts := stack(t, up, "secret")

	res, body := get(t, ts.URL+"/api/events?keyword=Imagine+Dragons&size=5&city=+")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, body)
	}
	if string(body) != upstreamBody {
		t.Fatalf("body was modified:\n%s", body)
	}

	q := up.last.Load().(url.Values)
	if len(q) != 3 || q["keyword"][0] != "Imagine Dragons" || q["size"][0] != "5" || q["apikey"][0] != "secret" {
		t.Fatalf("upstream query = %v", q)
	}

	// identical search is served from Redis
	res, body = get(t, ts.URL+"/api/events?keyword=Imagine+Dragons&size=5")
	if res.StatusCode != http.StatusOK || string(body) != upstreamBody {
		t.Fatalf("cached status %d", res.StatusCode)
	}
	if n := atomic.LoadInt32(&up.hits); n != 1 {
		t.Fatalf("upstream hits = %d, want 1", n)
	}
}

func TestHTTP_EndToEnd_ArtistSuggestions(t *testing.T) {
	up := &upstream{}
	ts := stack(t, up, "secret")

	res, body := get(t, ts.URL+"/api/suggest/artists?keyword=imagine+dragons")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, body)
	}
	var got []domain.Suggestion
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "K1" || got[1].ID != "K2" {
		t.Fatalf("suggestions = %+v", got)
	}
	q := up.last.Load().(url.Values)
	if q["classificationName"][0] != "music" || q["size"][0] != "200" {
		t.Fatalf("upstream query = %v", q)
	}

	// short keyword never reaches upstream
	res, body = get(t, ts.URL+"/api/suggest/artists?keyword=+i+")
	if res.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("short keyword: %d %s", res.StatusCode, body)
	}
	if n := atomic.LoadInt32(&up.hits); n != 1 {
		t.Fatalf("upstream hits = %d, want 1", n)
	}
}

func TestHTTP_EndToEnd_Tour(t *testing.T) {
	ts := stack(t, &upstream{}, "secret")

	res, body := get(t, ts.URL+"/api/tour/K1")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", res.StatusCode, body)
	}
	var got []domain.EventSummary
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ID != "E2" || got[1].City != "Paris" || got[0].Image != app.DefaultEventImage {
		t.Fatalf("tour = %+v", got)
	}
}

func TestHTTP_EndToEnd_MissingKey(t *testing.T) {
	up := &upstream{}
	ts := stack(t, up, "")

	res, body := get(t, ts.URL+"/api/events?keyword=adele")
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", res.StatusCode)
	}
	if !strings.Contains(string(body), "TM_API_KEY not configured.") {
		t.Fatalf("body = %s", body)
	}
	if n := atomic.LoadInt32(&up.hits); n != 0 {
		t.Fatalf("upstream hits = %d, want 0", n)
	}
}

func TestHTTP_EndToEnd_UpstreamFailure(t *testing.T) {
	ts := stack(t, &upstream{status: http.StatusInternalServerError}, "secret")

	res, body := get(t, ts.URL+"/api/events?keyword=adele")
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(string(body), "Ticketmaster error: upstream exploded") {
		t.Fatalf("body = %s", body)
	}
	if strings.Contains(string(body), "secret") {
		t.Fatalf("credential leaked: %s", body)
	}
}
