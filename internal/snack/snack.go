package snack

import "strings"

// Snack is a transient product record returned by a search engine. It has no
// identity beyond its fields and is only persisted as part of a request.
type Snack struct {
	Name         string            `json:"name"`
	GenericName  string            `json:"generic_name,omitempty"`
	Brand        string            `json:"brand,omitempty"`
	Description  string            `json:"description,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	ImageURL     string            `json:"image_url,omitempty"`
	UPC          string            `json:"upc,omitempty"`
	ProductURLs  map[string]string `json:"product_urls,omitempty"`
	SourceEngine string            `json:"source_engine,omitempty"`
}

// Clone returns a deep copy so a persisted snapshot never aliases the
// engine-owned value.
func (s Snack) Clone() Snack {
	out := s
	if s.Tags != nil {
		out.Tags = make([]string, len(s.Tags))
		copy(out.Tags, s.Tags)
	}
	if s.ProductURLs != nil {
		out.ProductURLs = make(map[string]string, len(s.ProductURLs))
		for source, id := range s.ProductURLs {
			out.ProductURLs[source] = id
		}
	}
	return out
}

// SharesProductURL reports whether two snacks reference the same source
// listing, meaning any identical (source, id) pair.
func (s Snack) SharesProductURL(other Snack) bool {
	if len(s.ProductURLs) == 0 || len(other.ProductURLs) == 0 {
		return false
	}
	for source, id := range s.ProductURLs {
		if otherID, ok := other.ProductURLs[source]; ok && otherID == id && id != "" {
			return true
		}
	}
	return false
}

// SameBrand reports whether both snacks carry a non-empty brand and the
// brands are equal after trimming, case-insensitively.
func (s Snack) SameBrand(other Snack) bool {
	a := strings.TrimSpace(s.Brand)
	b := strings.TrimSpace(other.Brand)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// Requester identifies who asked for a snack. It is a value object embedded
// in a request's requester list.
type Requester struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
}

// Location is a named delivery location scoped to a team. The ID is stable
// and generated at creation; the name may be renamed in place.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
