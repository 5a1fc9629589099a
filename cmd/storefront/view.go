package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dejobratic/storefront/internal/catalog/adapters/httpclient"
	"github.com/dejobratic/storefront/internal/catalog/adapters/sqlite"
	"github.com/dejobratic/storefront/internal/catalog/app"
	"github.com/dejobratic/storefront/internal/catalog/metrics"
	"github.com/dejobratic/storefront/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"
)

var viewCmd = &cobra.Command{
	Use:   "view <product-id>",
	Short: "Record a product view and print the recently viewed panel",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

// writerPanel prints the panel markup once the background fetch fills it.
type writerPanel struct {
	mu   sync.Mutex
	out  io.Writer
	html string
}

func (p *writerPanel) SetHTML(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = html
}

func (p *writerPanel) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if strings.TrimSpace(p.html) == "" {
		fmt.Fprintln(p.out, "(recently viewed panel is empty)")
		return
	}
	fmt.Fprintln(p.out, p.html)
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := telemetry.NewLoggerTo(os.Stderr, telemetry.ParseLevel(logLevel))

	store, err := sqlite.Open(ctx, statePath)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := openSession(ctx)
	if err != nil {
		return err
	}

	m, err := metrics.NewMetrics(noop.NewMeterProvider().Meter("storefront-cli"))
	if err != nil {
		return err
	}

	panel := &writerPanel{out: cmd.OutOrStdout()}
	tracker := app.NewTracker(store, httpclient.NewRecentlyViewedClient(client), panel, logger, m)

	display := tracker.OnProductView(ctx, args[0])
	tracker.Wait()

	fmt.Fprintf(cmd.OutOrStdout(), "recently viewed: %s\n", strings.Join(display, ", "))
	panel.flush()
	return nil
}
