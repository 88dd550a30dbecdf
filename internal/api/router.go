package api

import "github.com/gin-gonic/gin"

// NewRouter wires the API routes onto a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/significance", h.Significance)
		v1.POST("/upper-limit", h.UpperLimit)
		v1.POST("/sensitivity", h.Sensitivity)
		v1.GET("/sensitivity/:id/report", h.SensitivityReport)
	}
	return r
}
