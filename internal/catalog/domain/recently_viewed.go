package domain

import (
	"encoding/json"
	"strings"
)

const (
	// RecentlyViewedKey is the storage key the list is saved under.
	RecentlyViewedKey = "recently_viewed"

	// StoredCap keeps one spare entry so the current product can be excluded
	// and still leave DisplayCap products to show.
	StoredCap  = 4
	DisplayCap = 3
)

// RecentlyViewed is the visitor's product history, most recent first.
type RecentlyViewed []string

// Visit moves id to the front, dropping any earlier occurrence and anything past StoredCap.
func (r RecentlyViewed) Visit(id string) RecentlyViewed {
	id = strings.TrimSpace(id)
	if id == "" {
		return r.truncate(StoredCap)
	}

	out := make(RecentlyViewed, 0, StoredCap)
	out = append(out, id)
	for _, existing := range r {
		if existing == id || existing == "" || out.contains(existing) {
			continue
		}
		out = append(out, existing)
	}
	return out.truncate(StoredCap)
}

// Display lists the ids to render on the page of current, which is never shown.
func (r RecentlyViewed) Display(current string) []string {
	current = strings.TrimSpace(current)
	out := make([]string, 0, DisplayCap)
	for _, id := range r {
		if id == current || id == "" {
			continue
		}
		out = append(out, id)
		if len(out) == DisplayCap {
			break
		}
	}
	return out
}

func (r RecentlyViewed) contains(id string) bool {
	for _, existing := range r {
		if existing == id {
			return true
		}
	}
	return false
}

func (r RecentlyViewed) truncate(n int) RecentlyViewed {
	if len(r) > n {
		return r[:n]
	}
	return r
}

// Encode renders the list in its stored JSON array form.
func (r RecentlyViewed) Encode() string {
	if r == nil {
		r = RecentlyViewed{}
	}
	b, _ := json.Marshal([]string(r))
	return string(b)
}

// DecodeRecentlyViewed parses a stored list. Numeric ids written by older pages
// are accepted; anything unreadable yields an empty list.
func DecodeRecentlyViewed(raw string) RecentlyViewed {
	if strings.TrimSpace(raw) == "" {
		return RecentlyViewed{}
	}

	var values []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return RecentlyViewed{}
	}

	out := make(RecentlyViewed, 0, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			out = append(out, n.String())
		}
	}
	return out
}
