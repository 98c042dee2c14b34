package api

import (
	"github.com/gin-gonic/gin"

	"github.com/handoc-ai/doc-analysis-system/api/handler"
	"github.com/handoc-ai/doc-analysis-system/api/middleware"
)

// SetupRouter 设置API路由
// 配置所有的API端点并应用中间件
func SetupRouter(
	docHandler *handler.DocumentHandler,
	analysisHandler *handler.AnalysisHandler,
	taskHandler *handler.TaskHandler,
) *gin.Engine {
	router := gin.New()

	// 应用全局中间件
	router.Use(gin.Recovery())
	router.Use(Cors())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorMiddleware())
	router.Use(middleware.SetTraceID())

	// 在调试模式下记录请求体和响应体
	if gin.Mode() == gin.DebugMode {
		router.Use(middleware.RequestBodyLog())
		router.Use(middleware.ResponseLogger())
	}

	api := router.Group("/api")
	{
		// 文档管理API
		docGroup := api.Group("/documents")
		{
			// 上传文档 - POST /api/documents
			docGroup.POST("", docHandler.UploadDocument)

			// 获取文档列表 - GET /api/documents
			docGroup.GET("", docHandler.ListDocuments)

			// 获取文档详情 - GET /api/documents/:id
			docGroup.GET("/:id", docHandler.GetDocument)

			// 删除文档 - DELETE /api/documents/:id
			docGroup.DELETE("/:id", docHandler.DeleteDocument)

			// 重新处理文档 - POST /api/documents/:id/reprocess
			docGroup.POST("/:id/reprocess", docHandler.ReprocessDocument)

			// 获取最新分析结果 - GET /api/documents/:id/analysis
			docGroup.GET("/:id/analysis", analysisHandler.GetAnalysis)

			// 获取分析历史 - GET /api/documents/:id/analyses
			docGroup.GET("/:id/analyses", analysisHandler.ListAnalyses)

			// 重新分析 - POST /api/documents/:id/reanalyze
			docGroup.POST("/:id/reanalyze", analysisHandler.ReanalyzeDocument)

			// 导出Markdown - GET /api/documents/:id/markdown
			docGroup.GET("/:id/markdown", analysisHandler.ExportMarkdown)

			// 获取文档任务列表 - GET /api/documents/:id/tasks
			if taskHandler != nil {
				docGroup.GET("/:id/tasks", taskHandler.GetDocumentTasks)
			}
		}

		// 即席文本分析 - POST /api/analyze-text
		api.POST("/analyze-text", analysisHandler.AnalyzeText)

		// 服务统计 - GET /api/stats
		api.GET("/stats", analysisHandler.GetStats)

		// 任务状态API
		if taskHandler != nil {
			api.GET("/tasks/:id", taskHandler.GetTaskStatus)
		}
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return router
}

// Cors 跨域资源共享中间件
// 前端与API不同源部署，放行所有来源
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
