package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/internal/service"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/response"
)

// JobPostingHandler wires HTTP endpoints to the job posting service.
type JobPostingHandler struct {
	service *service.JobPostingService
}

func NewJobPostingHandler(svc *service.JobPostingService) *JobPostingHandler {
	return &JobPostingHandler{service: svc}
}

// Create godoc
// @Summary Create job posting
// @Tags JobPostings
// @Accept json
// @Produce json
// @Param payload body dto.CreateJobPostingRequest true "Posting payload"
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /job-postings [post]
func (h *JobPostingHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateJobPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid posting payload"))
		return
	}
	posting, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, posting)
}

// Get godoc
// @Summary Get job posting
// @Tags JobPostings
// @Produce json
// @Param id path string true "Posting ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /job-postings/{id} [get]
func (h *JobPostingHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	includeExpired := claims != nil && claims.Role == models.RoleAdmin
	posting, err := h.service.GetByID(c.Request.Context(), c.Param("id"), includeExpired)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posting, nil)
}

// List godoc
// @Summary List job postings
// @Tags JobPostings
// @Produce json
// @Param active query bool false "Active postings only"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /job-postings [get]
func (h *JobPostingHandler) List(c *gin.Context) {
	filter := models.JobPostingFilter{
		ActiveOnly: c.Query("active") == "true",
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	postings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, postings, pagination)
}

// Update godoc
// @Summary Update job posting
// @Tags JobPostings
// @Accept json
// @Produce json
// @Param id path string true "Posting ID"
// @Param payload body dto.UpdateJobPostingRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /job-postings/{id} [patch]
func (h *JobPostingHandler) Update(c *gin.Context) {
	var req dto.UpdateJobPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}
	posting, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posting, nil)
}

// Delete godoc
// @Summary Delete job posting
// @Tags JobPostings
// @Param id path string true "Posting ID"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /job-postings/{id} [delete]
func (h *JobPostingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
