package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dejobratic/storefront/internal/checkout/app"
	"github.com/dejobratic/storefront/internal/checkout/domain"
	"github.com/dejobratic/storefront/internal/httpapi"
)

// UserNameHeader carries the signed-in user's display name from the upstream auth proxy.
const UserNameHeader = "X-User-Name"

// Handler exposes HTTP endpoints for the checkout page.
type Handler struct {
	service app.Checkout
}

// NewHandler constructs a Handler.
func NewHandler(service app.Checkout) *Handler {
	return &Handler{service: service}
}

// Register binds the checkout handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/checkout/config", h.pageConfig)
	mux.HandleFunc("POST /v1/checkout/summary", h.quote)
	mux.HandleFunc("POST /v1/checkout/validate", h.validate)
}

type pageConfigResponse struct {
	Currency       string                 `json:"currency"`
	TaxRate        string                 `json:"tax_rate"`
	TaxRateBPS     domain.TaxRate         `json:"tax_rate_bps"`
	ShippingFees   map[string]string      `json:"shipping_fees"`
	PaymentMethods []domain.PaymentMethod `json:"payment_methods"`
	Subtotal       string                 `json:"subtotal,omitempty"`
	UserName       string                 `json:"user_name,omitempty"`
}

func newPageConfigResponse(cfg *app.PageConfig) pageConfigResponse {
	fees := make(map[string]string, len(cfg.ShippingFees))
	for id, fee := range cfg.ShippingFees {
		fees[id] = fee.Decimal()
	}

	return pageConfigResponse{
		Currency:       cfg.Currency,
		TaxRate:        cfg.TaxRate.Decimal(),
		TaxRateBPS:     cfg.TaxRate,
		ShippingFees:   fees,
		PaymentMethods: cfg.PaymentMethods,
		Subtotal:       cfg.Subtotal,
		UserName:       cfg.UserName,
	}
}

func (h *Handler) pageConfig(w http.ResponseWriter, r *http.Request) {
	input := app.PageConfigInput{
		UserName: strings.TrimSpace(r.Header.Get(UserNameHeader)),
		Subtotal: r.URL.Query().Get("subtotal"),
	}

	cfg, err := h.service.PageConfig(r.Context(), input)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"config": newPageConfigResponse(cfg)})
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var payload app.QuoteInput
	if err := httpapi.DecodeJSON(w, r, &payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	quote, err := h.service.Quote(r.Context(), payload)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"summary": quote})
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var payload app.CheckoutForm
	if err := httpapi.DecodeJSON(w, r, &payload); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	submission, err := h.service.ValidateSubmission(r.Context(), payload)
	if err != nil {
		var verr *app.ValidationError
		if errors.As(err, &verr) {
			httpapi.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "invalid checkout form",
				"fields": verr.Fields,
			})
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"submission": submission})
}
