// Package handler exposes the validation workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veripass/internal/claims"
	"veripass/internal/validation/models"
	"veripass/pkg/platform/httputil"
	"veripass/pkg/requestcontext"
)

// Service defines the interface for validation operations.
type Service interface {
	Validate(ctx context.Context, declared *claims.Record, documentFields map[string]string) (*models.Outcome, error)
	Delete(ctx context.Context, passportNumber string) error
	List(ctx context.Context) ([]*models.ValidationRecord, error)
}

// Handler handles validation endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new validation Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the validation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/validations", h.HandleValidate)
	r.Get("/validations", h.HandleList)
	r.Delete("/validations/{passportNumber}", h.HandleDelete)
}

func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	declared, err := req.ToRecord()
	if err != nil {
		h.logger.WarnContext(ctx, "declared claim rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.service.Validate(ctx, declared, req.DocumentFields)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation run failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toValidateResponse(outcome))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recs, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list validations",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toListResponse(recs))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	passportNumber := chi.URLParam(r, "passportNumber")

	if err := h.service.Delete(ctx, passportNumber); err != nil {
		h.logger.WarnContext(ctx, "failed to delete validation",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
