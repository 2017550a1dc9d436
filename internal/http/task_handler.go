package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz3d/internal/domain"
	"quiz3d/internal/meshy"
	"quiz3d/internal/service"
)

// TaskHandler atiende los passthrough contra la API de generación 3D.
type TaskHandler struct {
	logger      *zap.Logger
	meshy       *meshy.Client
	demoMode    bool
	downloadDir string
}

func NewTaskHandler(logger *zap.Logger, client *meshy.Client, demoMode bool, downloadDir string) *TaskHandler {
	return &TaskHandler{logger: logger, meshy: client, demoMode: demoMode, downloadDir: downloadDir}
}

// GetTask maneja GET /api/text-to-3d/:task_id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID := c.Param("task_id")

	// En demo los ids demo_* responden como ya completados, sin tocar la API.
	if h.demoMode && strings.HasPrefix(taskID, "demo_") {
		c.JSON(http.StatusOK, gin.H{
			"status":       domain.TaskSucceeded,
			"progress":     100,
			"model_urls":   gin.H{"glb": service.SampleGLB},
			"texture_urls": []any{},
		})
		return
	}

	snap, err := h.meshy.GetTextTo3D(c.Request.Context(), taskID)
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Refine maneja POST /api/text-to-3d/:task_id/refine.
func (h *TaskHandler) Refine(c *gin.Context) {
	var req struct {
		ArtStyle      string `json:"art_style"`
		EnablePBR     *bool  `json:"enable_pbr"`
		TexturePrompt string `json:"texture_prompt"`
	}
	// El body es opcional; un JSON inválido se trata como vacío.
	_ = c.ShouldBindJSON(&req)

	artStyle := service.NormalizeArtStyle(req.ArtStyle)
	enablePBR := artStyle != "sculpture"
	if req.EnablePBR != nil {
		enablePBR = *req.EnablePBR
	}

	refineID, err := h.meshy.CreateRefine(c.Request.Context(), meshy.RefineParams{
		PreviewTaskID: c.Param("task_id"),
		EnablePBR:     enablePBR,
		TexturePrompt: strings.TrimSpace(req.TexturePrompt),
	})
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refine_task_id": refineID})
}

// CreateRigging maneja POST /api/rigging.
func (h *TaskHandler) CreateRigging(c *gin.Context) {
	var req struct {
		InputTaskID  string  `json:"input_task_id"`
		ModelURL     string  `json:"model_url"`
		HeightMeters float64 `json:"height_meters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rigging request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	inputTaskID := strings.TrimSpace(req.InputTaskID)
	modelURL := strings.TrimSpace(req.ModelURL)
	if inputTaskID == "" && modelURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either input_task_id or model_url is required for rigging"})
		return
	}

	rigID, err := h.meshy.CreateRigging(c.Request.Context(), meshy.RiggingParams{
		InputTaskID:  inputTaskID,
		ModelURL:     modelURL,
		HeightMeters: req.HeightMeters,
	})
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rig_task_id": rigID})
}

// GetRigging maneja GET /api/rigging/:task_id.
func (h *TaskHandler) GetRigging(c *gin.Context) {
	out, err := h.meshy.GetRigging(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateAnimation maneja POST /api/animations.
func (h *TaskHandler) CreateAnimation(c *gin.Context) {
	var req struct {
		RigTaskID   string         `json:"rig_task_id"`
		ActionID    int            `json:"action_id"`
		PostProcess map[string]any `json:"post_process"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid animation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rigTaskID := strings.TrimSpace(req.RigTaskID)
	if rigTaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rig_task_id is required"})
		return
	}

	aniID, err := h.meshy.CreateAnimation(c.Request.Context(), meshy.AnimationParams{
		RigTaskID:   rigTaskID,
		ActionID:    req.ActionID,
		PostProcess: req.PostProcess,
	})
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"animation_task_id": aniID})
}

// GetAnimation maneja GET /api/animations/:task_id.
func (h *TaskHandler) GetAnimation(c *gin.Context) {
	out, err := h.meshy.GetAnimation(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Download maneja POST /api/download: baja el asset y lo sirve localmente.
func (h *TaskHandler) Download(c *gin.Context) {
	var req struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid download request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	url := strings.TrimSpace(req.URL)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Download failed: invalid url"})
		return
	}

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "model.glb"
	}
	base := filepath.Base(filename)
	dest := filepath.Join(h.downloadDir, base)

	if _, err := h.meshy.Download(c.Request.Context(), url, dest); err != nil {
		h.taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": "/downloads/" + base})
}

// taskError mapea errores de la API externa a 400 y el resto a 500.
func (h *TaskHandler) taskError(c *gin.Context, err error) {
	var apiErr *meshy.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Error()})
		return
	}
	h.logger.Error("meshy call failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
