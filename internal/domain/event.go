package domain

// SearchResponse is the subset of the upstream events.json payload this
// service reads. Everything else in the body is passed through untouched.
type SearchResponse struct {
	Embedded *EventList `json:"_embedded,omitempty"`
	Page     *Page      `json:"page,omitempty"`
}

type EventList struct {
	Events []Event `json:"events"`
}

// Events returns the embedded events or nil when the search had no hits.
func (r SearchResponse) Events() []Event {
	if r.Embedded == nil {
		return nil
	}
	return r.Embedded.Events
}

type Page struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

type Event struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Dates    *EventDates   `json:"dates,omitempty"`
	Images   []Image       `json:"images,omitempty"`
	Embedded *EventContent `json:"_embedded,omitempty"`
}

type EventDates struct {
	Start *struct {
		LocalDate string `json:"localDate,omitempty"`
		DateTime  string `json:"dateTime,omitempty"`
	} `json:"start,omitempty"`
}

type EventContent struct {
	Venues      []Venue      `json:"venues,omitempty"`
	Attractions []Attraction `json:"attractions,omitempty"`
}

// Attractions returns the performers embedded in the event, if any.
func (e Event) Attractions() []Attraction {
	if e.Embedded == nil {
		return nil
	}
	return e.Embedded.Attractions
}

// FirstVenue returns the first embedded venue or nil.
func (e Event) FirstVenue() *Venue {
	if e.Embedded == nil || len(e.Embedded.Venues) == 0 {
		return nil
	}
	return &e.Embedded.Venues[0]
}

type Venue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	City *struct {
		Name string `json:"name,omitempty"`
	} `json:"city,omitempty"`
	Location *struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location,omitempty"`
}

// Attraction is a performer (artist, act) attached to an event.
type Attraction struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name,omitempty"`
	Images []Image `json:"images,omitempty"`
}

type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}
