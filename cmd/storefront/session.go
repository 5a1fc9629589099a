package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"

	"github.com/dejobratic/storefront/internal/catalog/adapters/httpclient"
	"github.com/dejobratic/storefront/internal/csrf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// openSession returns a client whose cookie jar already holds the CSRF token.
func openSession(ctx context.Context) (*httpclient.Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	sources := []csrf.TokenSource{
		csrf.StaticSource(envOr("STOREFRONT_CSRF_TOKEN", "")),
		csrf.CookieSource{Jar: jar, URL: u},
	}
	if pagePath != "" {
		page, err := os.ReadFile(pagePath)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		sources = append(sources, csrf.MetaSource{Page: string(page)})
	}

	client, err := httpclient.NewClient(httpclient.Options{
		BaseURL: baseURL,
		Tokens:  csrf.FirstOf(sources...),
		UserID: userID,
		HTTPClient: &http.Client{
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := client.Open(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
