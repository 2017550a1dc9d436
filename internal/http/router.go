package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	quizH *QuizHandler,
	taskH *TaskHandler,
	catalogH *CatalogHandler,
	downloadDir string,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), noStoreMiddleware())

	api := r.Group("/api")
	api.Use(cors.Default())

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "pong": true})
	})

	api.GET("/quiz/questions", quizH.GetQuestions)
	api.POST("/quiz/submit", quizH.Submit)

	api.GET("/text-to-3d/:task_id", taskH.GetTask)
	api.POST("/text-to-3d/:task_id/refine", taskH.Refine)

	api.POST("/rigging", taskH.CreateRigging)
	api.GET("/rigging/:task_id", taskH.GetRigging)
	api.POST("/animations", taskH.CreateAnimation)
	api.GET("/animations/:task_id", taskH.GetAnimation)

	api.GET("/catalog", catalogH.List)
	api.POST("/catalog/register", catalogH.Register)

	api.POST("/download", taskH.Download)
	r.Static("/downloads", downloadDir)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// noStoreMiddleware desactiva el cacheo de todas las respuestas.
func noStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-store")
		c.Next()
	}
}
