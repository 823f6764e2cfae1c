package app

import (
	"sort"
	"strconv"
	"strings"

	"tour_map/internal/domain"
)

// BuildQuery assembles the upstream query from f. Blank strings and nil
// numbers are left out entirely. Values are not validated; the upstream API
// rejects what it does not understand.
//
// The credential is applied last so no caller-supplied parameter can
// replace it. A blank credential fails with domain.ErrConfiguration.
func BuildQuery(f domain.SearchFilters, credential string) (domain.UpstreamQuery, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.ErrConfiguration
	}

	q := domain.UpstreamQuery{}
	add := func(k, v string) {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	addInt := func(k string, v *int) {
		if v != nil {
			q.Set(k, strconv.Itoa(*v))
		}
	}

	// sorted so case-variant keys resolve the same way every time
	extra := make([]string, 0, len(f.Extra))
	for k := range f.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		add(k, f.Extra[k])
	}

	add("keyword", f.Keyword)
	add("countryCode", f.CountryCode)
	add("city", f.City)
	add("stateCode", f.StateCode)
	add("classificationName", f.ClassificationName)
	add("attractionId", f.AttractionID)
	addInt("size", f.Size)
	addInt("page", f.Page)
	add("sort", f.Sort)
	add("startDateTime", f.StartDateTime)
	add("endDateTime", f.EndDateTime)
	addInt("radius", f.Radius)
	add("unit", f.Unit)

	q.Set(domain.CredentialParam, credential)
	return q, nil
}
