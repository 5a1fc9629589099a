package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dejobratic/storefront/internal/catalog/app"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/httpapi"
)

const (
	// UserIDHeader carries the authenticated user id set by the upstream auth proxy.
	UserIDHeader         = "X-User-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
)

// Handler exposes HTTP endpoints for wishlist and recently viewed operations.
type Handler struct {
	service app.Catalog
}

// NewHandler constructs a Handler.
func NewHandler(service app.Catalog) *Handler {
	return &Handler{service: service}
}

// Register binds the catalog handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /users/wishlist/add/{id}/{$}", h.addToWishlist)
	mux.HandleFunc("POST /users/wishlist/remove/{id}/{$}", h.removeFromWishlist)
	mux.HandleFunc("GET /users/wishlist/{$}", h.listWishlist)
	mux.HandleFunc("POST /products/recently-viewed/{$}", h.recentlyViewed)
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserIDHeader))
}

type wishlistChange func(r *http.Request, userID, productID string) (*app.WishlistResult, error)

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	h.changeWishlist(w, r, "add", func(r *http.Request, userID, productID string) (*app.WishlistResult, error) {
		return h.service.AddToWishlist(r.Context(), userID, productID)
	})
}

func (h *Handler) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	h.changeWishlist(w, r, "remove", func(r *http.Request, userID, productID string) (*app.WishlistResult, error) {
		return h.service.RemoveFromWishlist(r.Context(), userID, productID)
	})
}

func (h *Handler) changeWishlist(w http.ResponseWriter, r *http.Request, action string, change wishlistChange) {
	ctx := r.Context()

	user := userID(r)
	if user == "" {
		httpapi.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	productID := r.PathValue("id")

	var idemKey string
	if key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)); key != "" {
		idemKey = user + ":wishlist-" + action + ":" + key

		if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
			httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		} else if stored != nil {
			replay(w, stored)
			return
		}
	}

	status := http.StatusOK
	var payload any
	result, err := change(r, user, productID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
		payload = map[string]any{"error": "product not found"}
	case err != nil:
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	default:
		payload = result
	}

	body, err := json.Marshal(payload)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if idemKey != "" {
		stored := ports.StoredResponse{
			StatusCode: status,
			Body:       body,
			ResourceID: productID,
		}
		if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
			httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func replay(w http.ResponseWriter, stored *ports.StoredResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.StatusCode)
	_, _ = w.Write(stored.Body)
}

func (h *Handler) listWishlist(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		httpapi.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	items, err := h.service.ListWishlist(r.Context(), user)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// productRef accepts a product id sent as either a JSON string or number.
type productRef string

func (p *productRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = productRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = productRef(n.String())
	return nil
}

type recentlyViewedRequest struct {
	Viewed []productRef `json:"viewed"`
}

func (h *Handler) recentlyViewed(w http.ResponseWriter, r *http.Request) {
	var payload recentlyViewedRequest
	if err := httpapi.DecodeJSON(w, r, &payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	ids := make([]string, 0, len(payload.Viewed))
	for _, v := range payload.Viewed {
		ids = append(ids, string(v))
	}

	html, err := h.service.RenderRecentlyViewed(r.Context(), ids)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"products_html": html})
}
