package handlers

import (
	"context"
	"net/http"

	"estuary/models"
	"estuary/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QuestionAPI manages the intake questions attached to a saved service.
type QuestionAPI interface {
	ListQuestions(ctx context.Context, serviceID string) ([]models.ServiceQuestion, error)
	CreateQuestion(ctx context.Context, serviceID string, in models.QuestionInput) (*models.ServiceQuestion, error)
	DeleteQuestion(ctx context.Context, serviceID, questionID string) error
}

type QuestionsHandler struct {
	API QuestionAPI
}

func NewQuestionsHandler(api QuestionAPI) *QuestionsHandler {
	return &QuestionsHandler{API: api}
}

func (h *QuestionsHandler) List(c *gin.Context) {
	serveList(c, func(ctx context.Context) ([]models.ServiceQuestion, error) {
		return h.API.ListQuestions(ctx, c.Param("serviceID"))
	})
}

func (h *QuestionsHandler) Create(c *gin.Context) {
	var in models.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	if in.QuestionType == "select" || in.QuestionType == "radio" || in.QuestionType == "checkbox" {
		if len(in.Options) == 0 {
			utils.JSONFieldErrors(c, http.StatusBadRequest, "Validation failed",
				map[string]string{"options": "Choice questions need at least one option"})
			return
		}
	}
	q, err := h.API.CreateQuestion(c.Request.Context(), c.Param("serviceID"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Service question created", zap.String("serviceID", c.Param("serviceID")), zap.String("questionID", q.ID))
	respondData(c, http.StatusCreated, q)
}

func (h *QuestionsHandler) Delete(c *gin.Context) {
	if err := h.API.DeleteQuestion(c.Request.Context(), c.Param("serviceID"), c.Param("questionID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
