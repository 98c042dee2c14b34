package model

import (
	"time"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// DocumentUploadResponse 文档上传响应
type DocumentUploadResponse struct {
	DocumentID string `json:"document_id"`         // 文档ID
	FileName   string `json:"filename"`            // 文件名
	Status     string `json:"status"`              // 文档状态
	Duplicate  bool   `json:"duplicate,omitempty"` // 是否命中已有的同内容文档
}

// DocumentInfo 文档信息
type DocumentInfo struct {
	DocumentID    string     `json:"document_id"`             // 文档ID
	FileName      string     `json:"filename"`                // 文件名
	FileSize      int64      `json:"file_size"`               // 文件大小（字节）
	PageCount     int        `json:"page_count"`              // 页数
	Language      string     `json:"language,omitempty"`      // 检测到的语言
	LikelyScanned bool       `json:"likely_scanned"`          // 是否疑似扫描件
	Status        string     `json:"status"`                  // 处理状态
	CurrentStage  string     `json:"current_stage,omitempty"` // 当前处理阶段
	Error         string     `json:"error,omitempty"`         // 错误信息（如果有）
	UploadedAt    time.Time  `json:"uploaded_at"`             // 上传时间
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`  // 处理完成时间
	UpdatedAt     time.Time  `json:"updated_at"`              // 更新时间
}

// NewDocumentInfo 从文档模型构建文档信息
func NewDocumentInfo(doc *models.Document) DocumentInfo {
	return DocumentInfo{
		DocumentID:    doc.ID,
		FileName:      doc.FileName,
		FileSize:      doc.FileSize,
		PageCount:     doc.PageCount,
		Language:      doc.Language,
		LikelyScanned: doc.LikelyScanned,
		Status:        string(doc.Status),
		CurrentStage:  string(doc.CurrentStage),
		Error:         doc.Error,
		UploadedAt:    doc.UploadedAt,
		ProcessedAt:   doc.ProcessedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

// DocumentListResponse 文档列表响应
type DocumentListResponse struct {
	Total     int64          `json:"total"`     // 总数量
	Page      int            `json:"page"`      // 当前页码
	PageSize  int            `json:"page_size"` // 每页大小
	Documents []DocumentInfo `json:"documents"` // 文档列表
}

// DocumentDeleteResponse 文档删除响应
type DocumentDeleteResponse struct {
	Success    bool   `json:"success"`     // 是否成功
	DocumentID string `json:"document_id"` // 文档ID
}

// AnalysisResponse 分析结果响应
type AnalysisResponse struct {
	AnalysisID     uint                 `json:"analysis_id"`     // 分析记录ID
	DocumentID     string               `json:"document_id"`     // 文档ID
	Summary        string               `json:"summary"`         // 摘要
	Keywords       []models.Keyword     `json:"keywords"`        // 关键词列表
	QAPairs        []models.QAPair      `json:"qa_pairs"`        // 问答对列表
	KeySentences   []models.KeySentence `json:"key_sentences"`   // 核心句列表
	Stats          models.TextStats     `json:"stats"`           // 文本统计
	Confidence     float64              `json:"confidence"`      // 综合置信度
	ModelName      string               `json:"model_name"`      // 使用的AI模型
	ProcessingTime float64              `json:"processing_time"` // 处理耗时（秒）
	CreatedAt      time.Time            `json:"created_at"`      // 创建时间
}

// NewAnalysisResponse 从分析模型构建分析响应
func NewAnalysisResponse(analysis *models.Analysis) AnalysisResponse {
	return AnalysisResponse{
		AnalysisID:     analysis.ID,
		DocumentID:     analysis.DocumentID,
		Summary:        analysis.Summary,
		Keywords:       analysis.GetKeywords(),
		QAPairs:        analysis.GetQAPairs(),
		KeySentences:   analysis.GetKeySentences(),
		Stats:          analysis.GetStats(),
		Confidence:     analysis.Confidence,
		ModelName:      analysis.ModelName,
		ProcessingTime: analysis.ProcessingTime,
		CreatedAt:      analysis.CreatedAt,
	}
}

// AnalysisListResponse 分析历史列表响应
type AnalysisListResponse struct {
	DocumentID string             `json:"document_id"` // 文档ID
	Total      int                `json:"total"`       // 记录总数
	Analyses   []AnalysisResponse `json:"analyses"`    // 分析记录列表
}

// MarkdownResponse Markdown导出响应
type MarkdownResponse struct {
	DocumentID string `json:"document_id"` // 文档ID
	Markdown   string `json:"markdown"`    // Markdown内容
}

// TextAnalyzeResponse 即席文本分析响应
type TextAnalyzeResponse struct {
	Summary        string               `json:"summary"`         // 摘要
	Keywords       []models.Keyword     `json:"keywords"`        // 关键词列表
	QAPairs        []models.QAPair      `json:"qa_pairs"`        // 问答对列表
	KeySentences   []models.KeySentence `json:"key_sentences"`   // 核心句列表
	Stats          models.TextStats     `json:"stats"`           // 文本统计
	Language       string               `json:"language"`        // 检测到的语言
	Confidence     float64              `json:"confidence"`      // 综合置信度
	ModelName      string               `json:"model_name"`      // 使用的AI模型
	ProcessingTime float64              `json:"processing_time"` // 处理耗时（秒）
}

// StatsResponse 服务统计响应
type StatsResponse struct {
	TotalDocuments int64            `json:"total_documents"` // 文档总数
	ByStatus       map[string]int64 `json:"by_status"`       // 各状态文档数量
	TotalAnalyses  int64            `json:"total_analyses"`  // 分析记录总数
}

// ReprocessResponse 重新处理响应
type ReprocessResponse struct {
	DocumentID string `json:"document_id"` // 文档ID
	Status     string `json:"status"`      // 当前状态
}

// TaskStatusResponse 任务状态响应
type TaskStatusResponse struct {
	TaskID      string     `json:"task_id"`                // 任务ID
	Type        string     `json:"type"`                   // 任务类型
	DocumentID  string     `json:"document_id"`            // 关联文档ID
	Status      string     `json:"status"`                 // 任务状态
	Progress    float64    `json:"progress"`               // 处理进度（0-100）
	Error       string     `json:"error,omitempty"`        // 错误信息
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间
}
