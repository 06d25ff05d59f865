package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fleet-reporting-service/internal/http/middleware"
	"fleet-reporting-service/internal/model"
	"fleet-reporting-service/internal/query"
	"fleet-reporting-service/internal/service"
)

type Handler struct {
	reports     *service.ReportService
	log         zerolog.Logger
	development bool
}

// NewHandler builds the report handlers. In development, 500 responses carry
// the underlying error text.
func NewHandler(reports *service.ReportService, log zerolog.Logger, development bool) *Handler {
	return &Handler{reports: reports, log: log, development: development}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", h.health)

	protected := r.Group("/api")
	protected.Use(authMiddleware)

	protected.GET("/vehicles", h.listVehicles)
	protected.GET("/groups", h.listGroups)
	protected.GET("/engine-usage", h.listEngineUsage)
	protected.GET("/engine-usage/dashboard", h.getEngineDashboard)
	protected.GET("/exceptions", h.listExceptions)
	protected.GET("/exceptions/dashboard", h.getExceptionDashboard)
	protected.GET("/transits", h.listTransits)
	protected.GET("/transits/report", h.getTransitReport)
}

func (h *Handler) health(c *gin.Context) {
	if !h.reports.Ready(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ready": true})
}

func (h *Handler) listVehicles(c *gin.Context) {
	params, err := bindReportQuery(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	page, err := h.reports.Vehicles(c.Request.Context(), params.GroupID, params.page())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (h *Handler) listGroups(c *gin.Context) {
	groups, err := h.reports.Groups(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(groups))
}

func (h *Handler) listEngineUsage(c *gin.Context) {
	params, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	page, err := h.reports.EngineUsagePage(c.Request.Context(), criteria, params.page())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (h *Handler) getEngineDashboard(c *gin.Context) {
	params, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	report, err := h.reports.EngineDashboard(c.Request.Context(), criteria, model.GroupBy(params.GroupBy))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, reportResponse(report))
}

func (h *Handler) listExceptions(c *gin.Context) {
	params, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	page, err := h.reports.ExceptionsPage(c.Request.Context(), criteria, params.page())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (h *Handler) getExceptionDashboard(c *gin.Context) {
	params, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	report, err := h.reports.ExceptionDashboard(c.Request.Context(), criteria, model.GroupBy(params.GroupBy))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, reportResponse(report))
}

func (h *Handler) listTransits(c *gin.Context) {
	params, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	page, err := h.reports.TransitPage(c.Request.Context(), criteria, params.page())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResponse(page))
}

func (h *Handler) getTransitReport(c *gin.Context) {
	_, criteria, ok := h.parseCriteria(c)
	if !ok {
		return
	}

	report, err := h.reports.TransitReport(c.Request.Context(), criteria)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, reportResponse(report))
}

func (h *Handler) parseCriteria(c *gin.Context) (reportQuery, model.FilterCriteria, bool) {
	params, err := bindReportQuery(c)
	if err != nil {
		h.handleError(c, err)
		return reportQuery{}, model.FilterCriteria{}, false
	}
	criteria, err := params.criteria(c)
	if err != nil {
		h.handleError(c, err)
		return reportQuery{}, model.FilterCriteria{}, false
	}
	return params, criteria, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	if query.IsValidation(err) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	event := h.log.Error().Err(err).Str("request_id", middleware.RequestID(c))
	if principal, ok := middleware.MustPrincipal(c); ok {
		event = event.Str("user_id", principal.UserID)
	}
	event.Msg("handler error")
	body := errorResponse("internal error")
	if h.development {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func pageResponse[T any](page model.Page[T]) gin.H {
	data := page.Data
	if data == nil {
		data = []T{}
	}
	return gin.H{"data": data, "pagination": page.Pagination}
}

func reportResponse[T any](report service.Report[T]) gin.H {
	body := successResponse(report.Data)
	if report.Insufficient {
		body["message"] = report.Message
	}
	return body
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
