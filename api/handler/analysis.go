package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/api/middleware"
	"github.com/handoc-ai/doc-analysis-system/api/model"
	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/services"
)

// modelTier 将请求中的premium开关映射为模型档位
func modelTier(usePremium bool) analyzer.ModelTier {
	if usePremium {
		return analyzer.TierPremium
	}
	return analyzer.TierDefault
}

// AnalysisHandler 处理分析结果相关的API请求
type AnalysisHandler struct {
	analysisService *services.AnalysisService // 分析服务
	logger          *logrus.Logger            // 日志记录器
}

// NewAnalysisHandler 创建新的分析处理器
func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		logger:          middleware.GetLogger(),
	}
}

// GetAnalysis 获取文档最新的分析结果
// GET /api/documents/:id/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	analysis, err := h.analysisService.GetLatestAnalysis(c.Request.Context(), req.ID)
	if err != nil {
		h.handleAnalysisError(c, req.ID, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewAnalysisResponse(analysis)))
}

// ListAnalyses 获取文档的分析历史
// GET /api/documents/:id/analyses
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	analyses, err := h.analysisService.ListAnalyses(c.Request.Context(), req.ID)
	if err != nil {
		h.handleAnalysisError(c, req.ID, err)
		return
	}

	items := make([]model.AnalysisResponse, len(analyses))
	for i, analysis := range analyses {
		items[i] = model.NewAnalysisResponse(analysis)
	}

	resp := model.AnalysisListResponse{
		DocumentID: req.ID,
		Total:      len(items),
		Analyses:   items,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ReanalyzeDocument 基于已清洗文本重新分析文档
// POST /api/documents/:id/reanalyze
func (h *AnalysisHandler) ReanalyzeDocument(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	// 请求体是可选的，仅携带premium开关
	var opts model.ReanalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 요청입니다"))
			return
		}
	}

	analysis, err := h.analysisService.ReanalyzeDocument(c.Request.Context(), req.ID, modelTier(opts.UsePremiumModel))
	if err != nil {
		if errors.Is(err, models.ErrDocumentProcessing) {
			c.JSON(http.StatusConflict, model.NewErrorResponse(
				http.StatusConflict,
				"문서가 이미 처리 중입니다",
			))
			return
		}
		if errors.Is(err, models.ErrInvalidDocumentStatus) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"분석할 수 있는 텍스트가 없습니다",
			))
			return
		}
		h.handleAnalysisError(c, req.ID, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewAnalysisResponse(analysis)))
}

// ExportMarkdown 导出文档分析结果为Markdown
// GET /api/documents/:id/markdown
func (h *AnalysisHandler) ExportMarkdown(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	markdown, err := h.analysisService.ExportMarkdown(c.Request.Context(), req.ID)
	if err != nil {
		h.handleAnalysisError(c, req.ID, err)
		return
	}

	// raw=true时直接返回Markdown文本
	if c.Query("raw") == "true" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
		return
	}

	resp := model.MarkdownResponse{
		DocumentID: req.ID,
		Markdown:   markdown,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// AnalyzeText 对任意文本执行即席分析
// POST /api/analyze-text
func (h *AnalysisHandler) AnalyzeText(c *gin.Context) {
	var req model.TextAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "분석할 텍스트가 필요합니다"))
		return
	}

	result, err := h.analysisService.AnalyzeText(c.Request.Context(), req.Text, modelTier(req.UsePremiumModel))
	if err != nil {
		h.logger.WithError(err).Error("Ad-hoc text analysis failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"텍스트 분석에 실패했습니다",
		))
		return
	}

	resp := model.TextAnalyzeResponse{
		Summary:        result.Result.Summary,
		Keywords:       result.Result.Keywords,
		QAPairs:        result.Result.QAPairs,
		KeySentences:   result.Result.KeySentences,
		Stats:          result.Stats,
		Language:       result.Result.Language,
		Confidence:     result.Result.Confidence,
		ModelName:      result.Result.ModelName,
		ProcessingTime: result.Result.ProcessingTime,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetStats 获取服务统计信息
// GET /api/stats
func (h *AnalysisHandler) GetStats(c *gin.Context) {
	stats, err := h.analysisService.GetStats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get service stats")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"통계 조회에 실패했습니다",
		))
		return
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}

	resp := model.StatsResponse{
		TotalDocuments: stats.TotalDocuments,
		ByStatus:       byStatus,
		TotalAnalyses:  stats.TotalAnalyses,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// handleAnalysisError 统一处理分析查询错误
func (h *AnalysisHandler) handleAnalysisError(c *gin.Context, docID string, err error) {
	if errors.Is(err, models.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, model.NewErrorResponse(
			http.StatusNotFound,
			"문서를 찾을 수 없습니다",
		))
		return
	}
	if errors.Is(err, models.ErrAnalysisNotFound) {
		c.JSON(http.StatusNotFound, model.NewErrorResponse(
			http.StatusNotFound,
			"분석 결과가 아직 없습니다",
		))
		return
	}

	h.logger.WithError(err).WithField("doc_id", docID).Error("Analysis operation failed")
	c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
		http.StatusInternalServerError,
		"요청 처리에 실패했습니다",
	))
}
