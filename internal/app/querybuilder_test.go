package app_test

import (
	"errors"
	"reflect"
	"testing"

	"tour_map/internal/app"
	"tour_map/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestBuildQuery_EndToEndExample(t *testing.T) {
	q, err := app.BuildQuery(domain.SearchFilters{Keyword: "Imagine Dragons", Size: ptr(5)}, "key-123")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got, want := q.Keys(), []string{"apikey", "keyword", "size"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if q["keyword"] != "Imagine Dragons" || q["size"] != "5" || q["apikey"] != "key-123" {
		t.Fatalf("unexpected values: %v", q)
	}
}

func TestBuildQuery_OmitsBlankFields(t *testing.T) {
	f := domain.SearchFilters{
		Keyword:       "   ",
		City:          "",
		StateCode:     "\t",
		CountryCode:   "US",
		StartDateTime: "2025-01-01T00:00:00Z",
		Page:          ptr(0),
		Extra:         map[string]string{"locale": " ", "latlong": "52.5,13.4"},
	}
	q, err := app.BuildQuery(f, "k")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{"apikey", "countryCode", "latlong", "page", "startDateTime"}
	if got := q.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for _, k := range q.Keys() {
		if q[k] == "" {
			t.Fatalf("empty value for %s", k)
		}
	}
}

func TestBuildQuery_AllWireNames(t *testing.T) {
	f := domain.SearchFilters{
		Keyword: "a", CountryCode: "b", City: "c", StateCode: "d",
		ClassificationName: "music", AttractionID: "K8", Size: ptr(1), Page: ptr(2),
		Sort: "date,asc", StartDateTime: "s", EndDateTime: "e", Radius: ptr(50), Unit: "miles",
	}
	q, err := app.BuildQuery(f, "k")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{
		"apikey", "attractionId", "city", "classificationName", "countryCode", "endDateTime",
		"keyword", "page", "radius", "size", "sort", "startDateTime", "stateCode", "unit",
	}
	if got := q.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}

func TestBuildQuery_PassesMalformedValuesThrough(t *testing.T) {
	q, err := app.BuildQuery(domain.SearchFilters{StartDateTime: "yesterday-ish", Size: ptr(-3)}, "k")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q["startDateTime"] != "yesterday-ish" || q["size"] != "-3" {
		t.Fatalf("values altered: %v", q)
	}
}

func TestBuildQuery_CredentialCannotBeOverridden(t *testing.T) {
	f := domain.SearchFilters{Extra: map[string]string{"apikey": "evil", "APIKEY": "evil2", "ApiKey": "evil3"}}
	q, err := app.BuildQuery(f, "real")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(q) != 1 || q["apikey"] != "real" {
		t.Fatalf("credential overridden: %v", q)
	}
	if v, ok := q.Get("APIKEY"); !ok || v != "real" {
		t.Fatalf("case-insensitive lookup: %q %v", v, ok)
	}
}

func TestBuildQuery_CaseVariantExtrasResolveDeterministically(t *testing.T) {
	f := domain.SearchFilters{Extra: map[string]string{"Genre": "rock", "genre": "pop", "GENRE": "jazz"}}
	for i := 0; i < 50; i++ {
		q, err := app.BuildQuery(f, "key")
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		// sorted order is GENRE, Genre, genre; the last one set wins
		if got, want := q.Keys(), []string{"apikey", "genre"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: keys = %v, want %v", i, got, want)
		}
		if q["genre"] != "pop" {
			t.Fatalf("run %d: genre = %q", i, q["genre"])
		}
	}
}

func TestBuildQuery_MissingCredential(t *testing.T) {
	for _, cred := range []string{"", "  "} {
		_, err := app.BuildQuery(domain.SearchFilters{Keyword: "x"}, cred)
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Fatalf("credential %q: err = %v, want ErrConfiguration", cred, err)
		}
	}
}

func TestUpstreamQuery_CacheKeyDropsCredential(t *testing.T) {
	a, _ := app.BuildQuery(domain.SearchFilters{Keyword: "x", Size: ptr(5)}, "one")
	b, _ := app.BuildQuery(domain.SearchFilters{Keyword: "x", Size: ptr(5)}, "two")
	if a.CacheKey() != b.CacheKey() || a.CacheKey() != "keyword=x&size=5" {
		t.Fatalf("cache keys %q %q", a.CacheKey(), b.CacheKey())
	}
}
