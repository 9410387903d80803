package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/service"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/response"
)

// EvaluationHandler wires HTTP endpoints to the evaluation service.
type EvaluationHandler struct {
	service *service.EvaluationService
	exports *service.ExportService
}

func NewEvaluationHandler(svc *service.EvaluationService, exports *service.ExportService) *EvaluationHandler {
	return &EvaluationHandler{service: svc, exports: exports}
}

// Upsert godoc
// @Summary Record evaluation
// @Description Upsert one criterion score for a student in a term
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.UpsertEvaluationRequest true "Evaluation payload"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Upsert(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpsertEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	evaluation, err := h.service.Upsert(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// ListByStudent godoc
// @Summary List student evaluations
// @Tags Evaluations
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string false "Term"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students/{id}/evaluations [get]
func (h *EvaluationHandler) ListByStudent(c *gin.Context) {
	evaluations, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// Report godoc
// @Summary Term evaluation report
// @Tags Evaluations
// @Produce json
// @Param term query string true "Term"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evaluations/report [get]
func (h *EvaluationHandler) Report(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term query parameter is required"))
		return
	}
	rows, err := h.service.TermReport(c.Request.Context(), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export term evaluation report
// @Tags Evaluations
// @Produce json
// @Param term query string true "Term"
// @Param format query string true "Export format (csv or pdf)"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /evaluations/export [get]
func (h *EvaluationHandler) Export(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term query parameter is required"))
		return
	}
	format := c.DefaultQuery("format", service.FormatCSV)

	result, err := h.exports.ExportEvaluations(c.Request.Context(), term, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
