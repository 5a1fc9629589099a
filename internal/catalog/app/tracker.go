package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/metrics"
	"github.com/dejobratic/storefront/internal/catalog/ports"
)

// Tracker records product page visits in the visitor's local store and fills
// the recently viewed panel in the background.
type Tracker struct {
	store   ports.KeyValueStore
	fetcher ports.RecentlyViewedFetcher
	panel   ports.RecentlyViewedPanel
	logger  *slog.Logger
	metrics *metrics.Metrics

	wg sync.WaitGroup
}

func NewTracker(
	store ports.KeyValueStore,
	fetcher ports.RecentlyViewedFetcher,
	panel ports.RecentlyViewedPanel,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Tracker {
	return &Tracker{
		store:   store,
		fetcher: fetcher,
		panel:   panel,
		logger:  logger,
		metrics: metrics,
	}
}

// Load returns the stored list. Storage failures and unreadable values yield an empty list.
func (t *Tracker) Load(ctx context.Context) domain.RecentlyViewed {
	raw, ok, err := t.store.Get(ctx, domain.RecentlyViewedKey)
	if err != nil {
		t.logger.WarnContext(ctx, "failed to read recently viewed list", "error", err)
		return domain.RecentlyViewed{}
	}
	if !ok {
		return domain.RecentlyViewed{}
	}
	return domain.DecodeRecentlyViewed(raw)
}

// OnProductView records a visit to productID and returns the ids shown in the
// panel. The panel is cleared when there is nothing to show; otherwise its
// markup is fetched asynchronously and fetch failures are only logged.
func (t *Tracker) OnProductView(ctx context.Context, productID string) []string {
	productID = strings.TrimSpace(productID)
	viewed := t.Load(ctx).Visit(productID)
	if err := t.store.Set(ctx, domain.RecentlyViewedKey, viewed.Encode()); err != nil {
		t.logger.WarnContext(ctx, "failed to save recently viewed list", "error", err)
	}

	display := viewed.Display(productID)
	if len(display) == 0 {
		t.panel.SetHTML("")
		return display
	}

	fetchCtx := context.WithoutCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.fetch(fetchCtx, display)
	}()

	return display
}

func (t *Tracker) fetch(ctx context.Context, ids []string) {
	html, err := t.fetcher.Fetch(ctx, ids)
	t.metrics.RecordPanelFetch(ctx, err == nil)
	if err != nil {
		t.logger.ErrorContext(ctx, "error fetching recently viewed", "error", err, "ids", ids)
		return
	}
	if html != "" {
		t.panel.SetHTML(html)
	}
}

// Wait blocks until every background fetch has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
