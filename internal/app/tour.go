package app

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"tour_map/internal/domain"
)

// DefaultEventImage is served when neither the event nor its first
// performer carries an image.
const DefaultEventImage = "assets/default-event.jpg"

// TourStops maps events to display summaries ordered by start time. Events
// whose first venue has no usable coordinates are left out.
func TourStops(events []domain.Event) []domain.EventSummary {
	sorted := make([]domain.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := startTime(sorted[i])
		b, bok := startTime(sorted[j])
		if aok != bok {
			return aok // undated events go last
		}
		return a.Before(b)
	})

	out := make([]domain.EventSummary, 0, len(sorted))
	for _, ev := range sorted {
		v := ev.FirstVenue()
		if v == nil || v.Location == nil {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(v.Location.Latitude), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(v.Location.Longitude), 64)
		if err != nil {
			continue
		}
		s := domain.EventSummary{
			ID:        ev.ID,
			Name:      ev.Name,
			Venue:     v.Name,
			Latitude:  lat,
			Longitude: lon,
			Image:     eventImage(ev),
		}
		if v.City != nil {
			s.City = v.City.Name
		}
		if ev.Dates != nil && ev.Dates.Start != nil {
			s.Date = ev.Dates.Start.LocalDate
		}
		out = append(out, s)
	}
	return out
}

// startTime prefers the full dateTime and falls back to localDate.
func startTime(ev domain.Event) (time.Time, bool) {
	if ev.Dates == nil || ev.Dates.Start == nil {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, ev.Dates.Start.DateTime); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, ev.Dates.Start.LocalDate); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func eventImage(ev domain.Event) string {
	if len(ev.Images) > 0 && ev.Images[0].URL != "" {
		return ev.Images[0].URL
	}
	if atts := ev.Attractions(); len(atts) > 0 && len(atts[0].Images) > 0 && atts[0].Images[0].URL != "" {
		return atts[0].Images[0].URL
	}
	return DefaultEventImage
}
