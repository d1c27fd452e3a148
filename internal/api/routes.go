package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/estudiantes", handler.ListEstudiantes)
		v1.GET("/estudiantes/export", handler.ExportEstudiantes)
		v1.GET("/estudiantes/:id", handler.GetEstudiante)
		v1.POST("/estudiantes", handler.CreateEstudiante)
		v1.PUT("/estudiantes/:id", handler.UpdateEstudiante)
		v1.DELETE("/estudiantes/:id", handler.DeleteEstudiante)
		v1.POST("/estudiantes/import", handler.ImportEstudiantes)

		v1.POST("/imports", handler.RegisterImport)
		v1.GET("/imports/:id", handler.GetImportStatus)
	}
}
