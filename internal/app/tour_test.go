package app_test

import (
	"testing"

	"github.com/goccy/go-json"

	"tour_map/internal/app"
	"tour_map/internal/domain"
)

const tourJSON = `{"_embedded":{"events":[
 {"id":"late","name":"Late","dates":{"start":{"localDate":"2025-09-01","dateTime":"2025-09-01T19:00:00Z"}},
  "images":[{"url":"https://img/late.jpg"}],
  "_embedded":{"venues":[{"name":"Arena","city":{"name":"Berlin"},"location":{"latitude":"52.52","longitude":"13.40"}}]}},
 {"id":"early","name":"Early","dates":{"start":{"localDate":"2025-03-01"}},
  "_embedded":{"venues":[{"name":"Hall","city":{"name":"Paris"},"location":{"latitude":"48.85","longitude":"2.35"}}],
   "attractions":[{"id":"a1","name":"Band","images":[{"url":"https://img/band.jpg"}]}]}},
 {"id":"nowhere","name":"No venue location","dates":{"start":{"localDate":"2025-01-01"}},
  "_embedded":{"venues":[{"name":"TBA"}]}},
 {"id":"bad","name":"Bad coords","_embedded":{"venues":[{"name":"X","location":{"latitude":"n/a","longitude":"1"}}]}},
 {"id":"plain","name":"Plain","dates":{"start":{"localDate":"2025-06-01"}},
  "_embedded":{"venues":[{"name":"Club","location":{"latitude":"40.7","longitude":"-74.0"}}]}}
]}}`

func TestTourStops(t *testing.T) {
	var resp domain.SearchResponse
	if err := json.Unmarshal([]byte(tourJSON), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := app.TourStops(resp.Events())
	if len(got) != 3 {
		t.Fatalf("len = %d: %+v", len(got), got)
	}
	order := []string{got[0].ID, got[1].ID, got[2].ID}
	if order[0] != "early" || order[1] != "plain" || order[2] != "late" {
		t.Fatalf("order = %v", order)
	}

	early, plain, late := got[0], got[1], got[2]
	if early.Image != "https://img/band.jpg" || late.Image != "https://img/late.jpg" || plain.Image != app.DefaultEventImage {
		t.Fatalf("images: %q %q %q", early.Image, late.Image, plain.Image)
	}
	if late.City != "Berlin" || late.Venue != "Arena" || late.Date != "2025-09-01" || late.Latitude != 52.52 || late.Longitude != 13.40 {
		t.Fatalf("late stop: %+v", late)
	}
	if plain.City != "" {
		t.Fatalf("expected empty city, got %q", plain.City)
	}
}

func TestTourStops_Empty(t *testing.T) {
	if got := app.TourStops(nil); got == nil || len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}
