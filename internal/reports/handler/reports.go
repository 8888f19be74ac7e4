package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"groundbook/internal/reports/service"
	httputil "groundbook/pkg/http"
	"groundbook/pkg/logger"
	"groundbook/pkg/middleware"
)

type ReportHandler struct {
	service   service.ReportService
	adminAuth func(httprouter.Handle) httprouter.Handle
	log       *logger.Logger
}

func NewReportHandler(svc service.ReportService, adminToken string, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service:   svc,
		adminAuth: middleware.AdminAuth(adminToken, log),
		log:       log,
	}
}

// Get serves GET /api/v1/reports?time_frame=&ground=. Both parameters are
// optional and default to a monthly report over all grounds.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	timeFrame := service.TimeFrame(r.URL.Query().Get("time_frame"))
	if timeFrame == "" {
		timeFrame = service.TimeFrameMonthly
	}
	ground := service.GroundFilter(r.URL.Query().Get("ground"))
	if ground == "" {
		ground = service.GroundFilterAll
	}

	report, err := h.service.Aggregate(r.Context(), timeFrame, ground)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("Failed to write report response", "error", err)
	}
}

func (h *ReportHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
	}
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports", h.adminAuth(h.Get))
}
