package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/service"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/response"
)

// QuizHandler wires HTTP endpoints to the quiz service.
type QuizHandler struct {
	service *service.QuizService
}

func NewQuizHandler(svc *service.QuizService) *QuizHandler {
	return &QuizHandler{service: svc}
}

// BulkUpsert godoc
// @Summary Record quiz scores
// @Tags Quizzes
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpsertQuizScoresRequest true "Quiz scores"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/quiz-scores [post]
func (h *QuizHandler) BulkUpsert(c *gin.Context) {
	var req dto.UpsertQuizScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quiz payload"))
		return
	}
	count, err := h.service.BulkUpsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"scores_upserted": count}, nil)
}

// ListBySession godoc
// @Summary List session quiz scores
// @Tags Quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/quiz-scores [get]
func (h *QuizHandler) ListBySession(c *gin.Context) {
	scores, err := h.service.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// Distribution godoc
// @Summary Quiz score distribution
// @Description Distribution statistics for a session's quiz scores
// @Tags Quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/quiz-distribution [get]
func (h *QuizHandler) Distribution(c *gin.Context) {
	distribution, err := h.service.Distribution(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distribution, nil)
}
