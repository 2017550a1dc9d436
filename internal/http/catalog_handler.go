package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz3d/internal/catalog"
	"quiz3d/internal/domain"
)

const catalogListLimit = 50

// CatalogHandler atiende el listado y registro del catálogo de modelos.
type CatalogHandler struct {
	logger    *zap.Logger
	registrar *catalog.Registrar
}

func NewCatalogHandler(logger *zap.Logger, registrar *catalog.Registrar) *CatalogHandler {
	return &CatalogHandler{logger: logger, registrar: registrar}
}

// List maneja GET /api/catalog.
func (h *CatalogHandler) List(c *gin.Context) {
	models, err := h.registrar.List(c.Request.Context(), catalogListLimit)
	if err != nil {
		h.logger.Error("catalog list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if models == nil {
		models = []domain.CatalogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "models": models})
}

// Register maneja POST /api/catalog/register.
func (h *CatalogHandler) Register(c *gin.Context) {
	var req struct {
		MeshURL      string          `json:"mesh_url"`
		Title        string          `json:"title"`
		User         string          `json:"user"`
		Profile      *domain.Profile `json:"profile"`
		ThumbnailURL string          `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid catalog register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request"})
		return
	}

	meshURL := strings.TrimSpace(req.MeshURL)
	if meshURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "mesh_url が指定されていません"})
		return
	}

	user := req.User
	if user == "" {
		user = "anonymous"
	}
	slug := "model"
	if req.Title != "" {
		slug = req.Title
	}

	saved, err := h.registrar.Register(c.Request.Context(), meshURL, catalog.TitleOnly(req.Title), catalog.Overrides{
		User:         user,
		Profile:      req.Profile,
		Ext:          "glb",
		Slug:         slug,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		h.logger.Error("catalog register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "model": saved})
}
