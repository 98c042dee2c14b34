package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/api/middleware"
	"github.com/handoc-ai/doc-analysis-system/api/model"
	"github.com/handoc-ai/doc-analysis-system/internal/document"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/services"
)

// DocumentHandler 处理文档相关的API请求
type DocumentHandler struct {
	documentService *services.DocumentService // 文档服务
	logger          *logrus.Logger            // 日志记录器
}

// NewDocumentHandler 创建新的文档处理器
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          middleware.GetLogger(),
	}
}

// UploadDocument 处理文档上传请求
// POST /api/documents
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	var req model.DocumentUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid document upload request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"유효하지 않은 요청입니다",
		))
		return
	}

	if req.File == nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"파일이 제공되지 않았습니다",
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithError(err).WithField("filename", req.File.Filename).
			Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"업로드된 파일을 열 수 없습니다",
		))
		return
	}
	defer file.Close()

	result, err := h.documentService.UploadDocument(c.Request.Context(), file, req.File.Filename)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"PDF 파일만 지원합니다",
			))
			return
		}
		if errors.Is(err, document.ErrEmptyFile) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"빈 파일은 업로드할 수 없습니다",
			))
			return
		}

		h.logger.WithError(err).WithField("filename", req.File.Filename).
			Error("Failed to upload document")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"문서 업로드에 실패했습니다",
		))
		return
	}

	resp := model.DocumentUploadResponse{
		DocumentID: result.Document.ID,
		FileName:   result.Document.FileName,
		Status:     string(result.Document.Status),
		Duplicate:  result.Duplicate,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetDocument 获取文档详情
// GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), req.ID)
	if err != nil {
		h.handleDocumentError(c, req.ID, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewDocumentInfo(doc)))
}

// ListDocuments 获取文档列表
// GET /api/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var req model.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 조회 조건입니다"))
		return
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.Language != "" {
		filters["language"] = req.Language
	}
	if req.FileName != "" {
		filters["file_name"] = req.FileName
	}
	if req.StartTime != nil {
		filters["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		filters["end_time"] = *req.EndTime
	}

	page := req.GetPage()
	pageSize := req.GetPageSize()
	offset := (page - 1) * pageSize

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), offset, pageSize, filters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list documents")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"문서 목록 조회에 실패했습니다",
		))
		return
	}

	infos := make([]model.DocumentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = model.NewDocumentInfo(doc)
	}

	resp := model.DocumentListResponse{
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		Documents: infos,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// DeleteDocument 删除文档
// DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), req.ID); err != nil {
		h.handleDocumentError(c, req.ID, err)
		return
	}

	h.logger.WithField("doc_id", req.ID).Info("Document deleted")

	resp := model.DocumentDeleteResponse{
		Success:    true,
		DocumentID: req.ID,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ReprocessDocument 重新处理文档
// POST /api/documents/:id/reprocess
func (h *DocumentHandler) ReprocessDocument(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(http.StatusBadRequest, "유효하지 않은 문서 ID입니다"))
		return
	}

	if err := h.documentService.ReprocessDocument(c.Request.Context(), req.ID); err != nil {
		if errors.Is(err, models.ErrDocumentProcessing) {
			c.JSON(http.StatusConflict, model.NewErrorResponse(
				http.StatusConflict,
				"문서가 이미 처리 중입니다",
			))
			return
		}
		h.handleDocumentError(c, req.ID, err)
		return
	}

	doc, err := h.documentService.GetDocumentStatus(c.Request.Context(), req.ID)
	if err != nil {
		h.handleDocumentError(c, req.ID, err)
		return
	}

	resp := model.ReprocessResponse{
		DocumentID: req.ID,
		Status:     string(doc.Status),
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// handleDocumentError 统一处理文档操作错误
func (h *DocumentHandler) handleDocumentError(c *gin.Context, docID string, err error) {
	if errors.Is(err, models.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, model.NewErrorResponse(
			http.StatusNotFound,
			"문서를 찾을 수 없습니다",
		))
		return
	}

	h.logger.WithError(err).WithField("doc_id", docID).Error("Document operation failed")
	c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
		http.StatusInternalServerError,
		"요청 처리에 실패했습니다",
	))
}
