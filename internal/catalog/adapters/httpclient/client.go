// Package httpclient calls the storefront's catalog endpoints the way the
// product pages do: JSON over POST with the CSRF token echoed in a header.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/csrf"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	userIDHeader         = "X-User-ID"
	idempotencyKeyHeader = "Idempotency-Key"
	requestedWithHeader  = "X-Requested-With"
	xmlHTTPRequest       = "XMLHttpRequest"

	maxResponseBytes = 1 << 20
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Options configure a Client.
type Options struct {
	BaseURL string
	Tokens  csrf.TokenSource
	// UserID is sent in X-User-ID when set.
	UserID string
	// HTTPClient defaults to a client with an otelhttp transport.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is the shared transport for the catalog clients.
type Client struct {
	base   *url.URL
	tokens csrf.TokenSource
	userID string
	http   *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   opts.Timeout,
		}
	}

	return &Client{
		base:   base,
		tokens: opts.Tokens,
		userID: opts.UserID,
		http:   httpClient,
	}, nil
}

// Open makes a safe request so the server can issue the CSRF cookie into the client's jar.
func (c *Client) Open(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, headers http.Header, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String()+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestedWithHeader, xmlHTTPRequest)
	if c.userID != "" {
		req.Header.Set(userIDHeader, c.userID)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		switch {
		case err == nil:
			req.Header.Set(csrf.HeaderName, token)
		case errors.Is(err, csrf.ErrNoToken):
			// the server decides whether the request needs one
		default:
			return fmt.Errorf("read csrf token: %w", err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// WishlistClient toggles a product in the current user's wishlist.
type WishlistClient struct {
	client *Client
}

func NewWishlistClient(client *Client) *WishlistClient {
	return &WishlistClient{client: client}
}

// ToggleResult is the server's answer to a wishlist toggle.
type ToggleResult struct {
	Status  domain.WishlistStatus `json:"status"`
	Created bool                  `json:"created"`
	Message string                `json:"message"`
}

// Toggle removes productID when inWishlist, otherwise adds it. Every call
// carries a fresh idempotency key so a transport retry is not applied twice.
func (w *WishlistClient) Toggle(ctx context.Context, productID string, inWishlist bool) (*ToggleResult, error) {
	if err := domain.ValidateProductID(productID); err != nil {
		return nil, err
	}

	action := "add"
	if inWishlist {
		action = "remove"
	}
	path := "/users/wishlist/" + action + "/" + url.PathEscape(productID) + "/"

	headers := http.Header{}
	headers.Set(idempotencyKeyHeader, uuid.NewString())

	var result ToggleResult
	if err := w.client.post(ctx, path, struct{}{}, headers, &result); err != nil {
		return nil, fmt.Errorf("wishlist %s %s: %w", action, productID, err)
	}
	return &result, nil
}

// RecentlyViewedClient fetches the rendered recently viewed panel.
type RecentlyViewedClient struct {
	client *Client
}

func NewRecentlyViewedClient(client *Client) *RecentlyViewedClient {
	return &RecentlyViewedClient{client: client}
}

func (r *RecentlyViewedClient) Fetch(ctx context.Context, ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}

	var out struct {
		ProductsHTML string `json:"products_html"`
	}
	if err := r.client.post(ctx, "/products/recently-viewed/", map[string]any{"viewed": ids}, nil, &out); err != nil {
		return "", fmt.Errorf("fetch recently viewed: %w", err)
	}
	return out.ProductsHTML, nil
}
