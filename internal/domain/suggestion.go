package domain

// Suggestion is a deduplicated performer match surfaced for autocomplete.
type Suggestion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventSummary is a display-ready tour stop.
type EventSummary struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Venue     string  `json:"venue"`
	City      string  `json:"city"`
	Date      string  `json:"date"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Image     string  `json:"image"`
}
