package ports

import "context"

// RecentlyViewedFetcher retrieves the rendered recently viewed panel for ids.
type RecentlyViewedFetcher interface {
	Fetch(ctx context.Context, ids []string) (string, error)
}

// RecentlyViewedPanel is the page container the fetched markup is written into.
type RecentlyViewedPanel interface {
	SetHTML(html string)
}
