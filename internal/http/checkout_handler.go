package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Piamias-Victor/maju/internal/domain"
	"github.com/Piamias-Victor/maju/pkg/logger"
	"github.com/sirupsen/logrus"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB

	HeaderIdempotencyKey = "Idempotency-Key"
	paymentSessionError  = "failed to create payment session"
)

type CheckoutService interface {
	CreateSession(ctx context.Context, req domain.CheckoutSessionRequest, idempotencyKey string) (*domain.CheckoutSessionResponse, error)
}

type CheckoutHandler struct {
	service CheckoutService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCheckoutHandler(service CheckoutService, timeout time.Duration, log logrus.FieldLogger) *CheckoutHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
		log:     logger.Component(log, "http"),
	}
}

// CreateSessionRequestDTO keeps both fields raw so that wrong JSON types are
// reported as field errors rather than as a malformed body.
type CreateSessionRequestDTO struct {
	Color    json.RawMessage `json:"color"`
	Quantity json.RawMessage `json:"quantity"`
}

// CreateSession handles POST /api/checkout.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var dto CreateSessionRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	color, err := parseColor(dto.Color)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_color", "color must be one of: rose, bleu")
		return
	}
	quantity, err := parseQuantity(dto.Quantity)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer between 1 and 10")
		return
	}

	req := domain.CheckoutSessionRequest{Color: color, Quantity: quantity}
	resp, err := h.service.CreateSession(ctx, req, r.Header.Get(HeaderIdempotencyKey))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidColor):
			respondError(w, http.StatusBadRequest, "invalid_color", "color must be one of: rose, bleu")
		case errors.Is(err, domain.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be an integer between 1 and 10")
		default:
			logger.FromContext(r.Context(), h.log).WithError(err).Error("checkout session request failed")
			respondJSON(w, http.StatusInternalServerError, ErrorResponse{
				Error:   paymentSessionError,
				Message: err.Error(),
			})
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// MethodNotAllowed answers every non-POST call to the checkout endpoint.
func (h *CheckoutHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

func parseColor(raw json.RawMessage) (domain.Color, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", domain.ErrInvalidColor
	}
	c := domain.Color(s)
	if !c.Valid() {
		return "", domain.ErrInvalidColor
	}
	return c, nil
}

// parseQuantity accepts JSON numbers with an integral value in range.
func parseQuantity(raw json.RawMessage) (int, error) {
	var n json.Number
	if len(raw) == 0 || raw[0] == '"' {
		return 0, domain.ErrInvalidQuantity
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, domain.ErrInvalidQuantity
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, domain.ErrInvalidQuantity
	}
	if f < domain.MinQuantity || f > domain.MaxQuantity {
		return 0, domain.ErrInvalidQuantity
	}
	return int(f), nil
}
