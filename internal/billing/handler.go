package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scholarastudy-create/scholarastudy/pkg/logger"
)

// maxWebhookBody caps webhook payload reads. Stripe events are a few KB; the
// cap only guards against junk traffic on a public endpoint.
const maxWebhookBody = 64 << 10

// Handler exposes the billing service over HTTP.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns an HTTP handler over the service.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Handle returns the route tree, ready to mount on a parent router:
//
//	r.Mount("/", billingHandler.Handle())
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/webhooks/stripe", h.handleWebhook)
	r.Post("/billing/portal", h.handlePortalLink)
	return r
}

// handleWebhook receives provider deliveries. The response code is the whole
// contract: 200 settles the delivery, 400 rejects it permanently, 500 asks
// the provider to redeliver.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.log.WarnContext(r.Context(), "webhook body rejected", logger.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
		return
	}

	err = h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, ErrInvalidSignature):
		h.log.WarnContext(r.Context(), "webhook signature rejected", logger.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid signature"})
	default:
		h.log.ErrorContext(r.Context(), "webhook processing failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

type portalLinkRequest struct {
	AccountID string `json:"account_id"`
	ReturnURL string `json:"return_url"`
}

// handlePortalLink creates a billing portal session for an account.
// Authentication happens upstream; this endpoint is not exposed publicly.
func (h *Handler) handlePortalLink(w http.ResponseWriter, r *http.Request) {
	var req portalLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "account_id must be a uuid"})
		return
	}

	url, err := h.svc.PortalLink(r.Context(), accountID, req.ReturnURL)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	case errors.Is(err, ErrProfileNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
	case errors.Is(err, ErrMissingCustomerRef):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "account has no billing history"})
	default:
		h.log.ErrorContext(r.Context(), "portal link failed",
			logger.Error(err), logger.AccountID(accountID.String()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
