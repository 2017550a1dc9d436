package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz3d/internal/domain"
	"quiz3d/internal/meshy"
	"quiz3d/internal/service"
)

// QuizHandler atiende los endpoints del quiz.
type QuizHandler struct {
	logger    *zap.Logger
	questions *service.QuestionService
	quiz      *service.QuizService
}

func NewQuizHandler(logger *zap.Logger, questions *service.QuestionService, quiz *service.QuizService) *QuizHandler {
	return &QuizHandler{logger: logger, questions: questions, quiz: quiz}
}

// GetQuestions maneja GET /api/quiz/questions?count=N (N clampeado 1..10).
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil {
		count = 10
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	set := h.questions.SupplyQuestions(c.Request.Context(), count)
	c.JSON(http.StatusOK, set)
}

// Submit maneja POST /api/quiz/submit: respuestas Likert o {mbti} legacy.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req struct {
		Answers      []domain.Answer `json:"answers"`
		MBTI         string          `json:"mbti"`
		ArtStyle     string          `json:"art_style"`
		ShouldRemesh *bool           `json:"should_remesh"`
		IsATPose     *bool           `json:"is_a_t_pose"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid quiz submit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	opts := service.SubmitOptions{
		ArtStyle:     req.ArtStyle,
		ShouldRemesh: req.ShouldRemesh == nil || *req.ShouldRemesh,
		IsATPose:     req.IsATPose == nil || *req.IsATPose,
	}

	if len(req.Answers) > 0 {
		res, err := h.quiz.SubmitScores(c.Request.Context(), req.Answers, opts)
		if err != nil {
			h.submitError(c, err)
			return
		}

		body := gin.H{
			"mode":           res.Mode,
			"derived_prompt": res.Prompt,
			"summary_lines":  res.SummaryLines,
			"summary_text":   res.SummaryText,
			"profile":        res.Profile,
		}
		if res.TaskID != "" {
			body["task_id"] = res.TaskID
		}
		if res.Status != "" {
			body["status"] = res.Status
			body["progress"] = res.Progress
		}
		if res.ModelURLs != nil {
			body["model_urls"] = res.ModelURLs
		}
		if res.SavedModel != nil {
			body["saved_model"] = res.SavedModel
		}
		c.JSON(http.StatusOK, body)
		return
	}

	res, err := h.quiz.SubmitMBTI(c.Request.Context(), req.MBTI, opts)
	if err != nil {
		h.submitError(c, err)
		return
	}
	body := gin.H{
		"task_id":        res.TaskID,
		"derived_prompt": res.Prompt,
		"mbti":           res.MBTI,
		"summary_text":   res.SummaryText,
	}
	if res.SavedModel != nil {
		body["saved_model"] = res.SavedModel
	}
	c.JSON(http.StatusOK, body)
}

// submitError mapea errores upstream a 400 y el resto a 500.
func (h *QuizHandler) submitError(c *gin.Context, err error) {
	var apiErr *meshy.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Error()})
		return
	}
	h.logger.Error("quiz submit failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
