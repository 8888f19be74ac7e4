package handler

import (
	"encoding/json"
	"net/http"

	"groundbook/internal/bookings/service"
	"groundbook/internal/bookings/validator"
	apperrors "groundbook/pkg/errors"
	httputil "groundbook/pkg/http"
	"groundbook/pkg/logger"
	"groundbook/pkg/middleware"
	"groundbook/pkg/model"
	"groundbook/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	adminAuth func(httprouter.Handle) httprouter.Handle
	log       *logger.Logger
}

func NewBookingHandler(
	svc service.BookingService,
	bookingValidator *validator.BookingValidator,
	adminToken string,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		service:   svc,
		validator: bookingValidator,
		adminAuth: middleware.AdminAuth(adminToken, log),
		log:       log,
	}
}

type decisionRequest struct {
	Outcome model.Outcome `json:"outcome"`
}

// Submit is the public submission endpoint. Contact validation lives here, at
// the caller boundary; the lifecycle service trusts what it is handed.
func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Submit", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking.ID = ""
	booking.Name = sanitizer.SanitizeName(booking.Name)
	booking.Email = sanitizer.SanitizeEmail(booking.Email)
	booking.Phone = sanitizer.SanitizePhone(booking.Phone)

	if err := h.validator.Validate(&booking); err != nil {
		h.log.Warn("Booking submission validation failed", "error", err)
		h.writeError(w, "Submit", apperrors.Validation("Invalid booking submission", map[string]any{
			"error": err.Error(),
		}))
		return
	}

	if err := h.service.Submit(r.Context(), &booking); err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Submit", "error", err)
	}
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Decide", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Decide(r.Context(), id, req.Outcome)
	if err != nil {
		h.writeError(w, "Decide", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Decide", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	statusFilter := r.URL.Query().Get("status")
	if statusFilter == "" {
		statusFilter = service.StatusFilterAll
	}

	bookings, total, err := h.service.List(r.Context(), statusFilter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Submit)
	router.GET("/api/v1/bookings", h.adminAuth(h.List))
	router.GET("/api/v1/bookings/id/:id", h.adminAuth(h.GetByID))
	router.POST("/api/v1/bookings/id/:id/decision", h.adminAuth(h.Decide))
}
