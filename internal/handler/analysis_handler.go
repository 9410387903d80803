package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/middleware"
	"github.com/campushq/campus-admin-api/internal/service"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/response"
)

// AnalysisHandler exposes the session analytics pipeline endpoints.
type AnalysisHandler struct {
	analysis *service.AnalysisService
	exports  *service.ExportService
}

// NewAnalysisHandler constructs the analysis handler.
func NewAnalysisHandler(analysis *service.AnalysisService, exports *service.ExportService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, exports: exports}
}

// Run godoc
// @Summary Run session analytics
// @Description Compute and persist per-session analytics for a batch and date
// @Tags Analysis
// @Accept json
// @Produce json
// @Param batchId path string true "Batch ID"
// @Param payload body dto.RunAnalysisRequest true "Analysis date"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /analysis/feedback/{batchId} [post]
func (h *AnalysisHandler) Run(c *gin.Context) {
	batchID := c.Param("batchId")
	var req dto.RunAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analysis payload"))
		return
	}

	start := time.Now()
	records, err := h.analysis.RunAnalysis(c.Request.Context(), batchID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	meta["sessions_analyzed"] = len(records)
	response.JSON(c, http.StatusOK, records, nil, meta)
}

// Analytics godoc
// @Summary Fetch persisted analytics
// @Description Return the analytics rows computed for a calendar date
// @Tags Analysis
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analysis/analytics [get]
func (h *AnalysisHandler) Analytics(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}

	start := time.Now()
	records, cacheHit, err := h.analysis.AnalyticsByDate(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, records, nil, meta)
}

// Export godoc
// @Summary Export analytics
// @Description Render the analytics rows for a date as CSV or PDF
// @Tags Analysis
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string true "Export format (csv or pdf)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analysis/export [get]
func (h *AnalysisHandler) Export(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}
	format := c.DefaultQuery("format", service.FormatCSV)

	result, err := h.exports.ExportAnalytics(c.Request.Context(), date, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
