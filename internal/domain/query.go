package domain

import (
	"net/url"
	"sort"
	"strings"
)

// SearchFilters are the optional search fields accepted from callers.
// Blank strings and nil ints mean "not set".
type SearchFilters struct {
	Keyword            string
	CountryCode        string
	City               string
	StateCode          string
	ClassificationName string
	AttractionID       string
	Size               *int
	Page               *int
	Sort               string
	StartDateTime      string
	EndDateTime        string
	Radius             *int
	Unit               string

	// Extra carries additional upstream parameters for programmatic callers.
	Extra map[string]string
}

// UpstreamQuery is the parameter set sent to the events API. Keys are unique
// ignoring case; the spelling of the last Set wins on the wire.
type UpstreamQuery map[string]string

// Set stores v under k, dropping any key that differs from k only by case.
func (q UpstreamQuery) Set(k, v string) {
	q.Del(k)
	q[k] = v
}

// Get looks k up ignoring case.
func (q UpstreamQuery) Get(k string) (string, bool) {
	for key, v := range q {
		if strings.EqualFold(key, k) {
			return v, true
		}
	}
	return "", false
}

func (q UpstreamQuery) Del(k string) {
	for key := range q {
		if strings.EqualFold(key, k) {
			delete(q, key)
		}
	}
}

// Keys returns the wire names in sorted order.
func (q UpstreamQuery) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (q UpstreamQuery) Values() url.Values {
	v := make(url.Values, len(q))
	for k, s := range q {
		v.Set(k, s)
	}
	return v
}

// CacheKey is a stable encoding of the query with the credential left out.
func (q UpstreamQuery) CacheKey() string {
	v := q.Values()
	for k := range v {
		if strings.EqualFold(k, CredentialParam) {
			delete(v, k)
		}
	}
	return v.Encode()
}

// CredentialParam is the upstream name of the API key parameter.
const CredentialParam = "apikey"
