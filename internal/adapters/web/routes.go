package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, tableHandler *GenTableHandler, codegenHandler *CodegenHandler) {
	api := router.Group("/api/v1")

	gen := api.Group("gen")
	{
		gen.GET("/db", tableHandler.ListDbTables)
		gen.GET("/tables", tableHandler.ListTables)
		gen.GET("/tables/:id", tableHandler.GetTable)
		gen.PUT("/tables/:id", tableHandler.EditTable)
		gen.POST("/tables/import", tableHandler.ImportTables)
		gen.POST("/tables/:id/sync", tableHandler.SyncTable)
		gen.POST("/tables/delete", tableHandler.DeleteTables)

		gen.GET("/tables/:id/preview", codegenHandler.PreviewCode)
		gen.GET("/download", codegenHandler.DownloadCode)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
