package handler

import (
	"net/http"

	"groundbook/internal/availability/service"
	apperrors "groundbook/pkg/errors"
	httputil "groundbook/pkg/http"
	"groundbook/pkg/logger"
	"groundbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(svc service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: svc,
		log:     log,
	}
}

type AvailabilityResponse struct {
	GroundType model.GroundType           `json:"ground_type"`
	Date       string                     `json:"date"`
	Slots      map[string]model.SlotState `json:"slots"`
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	ground := model.GroundType(query.Get("ground"))
	if !ground.Valid() {
		h.writeError(w, apperrors.InvalidInput("'ground' query parameter must be 'cricket' or 'football'"))
		return
	}

	dateStr := query.Get("date")
	date, err := model.ParseCivilDate(dateStr)
	if err != nil {
		h.writeError(w, apperrors.InvalidInput("'date' query parameter must be a YYYY-MM-DD date"))
		return
	}

	states, err := h.service.ResolveSlotStates(r.Context(), ground, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, AvailabilityResponse{
		GroundType: ground,
		Date:       model.CivilDate(date),
		Slots:      states,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
}
