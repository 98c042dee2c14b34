package model

import (
	"mime/multipart"
	"time"
)

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`           // 当前页码，从1开始
	PageSize int `form:"page_size" json:"page_size" binding:"omitempty,min=1"` // 每页记录数
}

// GetPage 获取页码，默认为1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页记录数，默认为10，最大为100
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 10
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// DocumentUploadRequest 文档上传请求
type DocumentUploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // PDF文件
}

// DocumentIDRequest 基于文档ID的请求
type DocumentIDRequest struct {
	ID string `uri:"id" binding:"required"` // 文档ID
}

// DocumentListRequest 文档列表请求
type DocumentListRequest struct {
	PaginationRequest
	StartTime *time.Time `form:"start_time" json:"start_time" binding:"omitempty"` // 上传时间下限
	EndTime   *time.Time `form:"end_time" json:"end_time" binding:"omitempty"`     // 上传时间上限
	Status    string     `form:"status" json:"status" binding:"omitempty"`         // 文档状态过滤
	Language  string     `form:"language" json:"language" binding:"omitempty"`     // 语言过滤（ko/en）
	FileName  string     `form:"filename" json:"filename" binding:"omitempty"`     // 文件名模糊过滤
}

// TextAnalyzeRequest 即席文本分析请求
type TextAnalyzeRequest struct {
	Text            string `json:"text" binding:"required"` // 待分析的文本
	UsePremiumModel bool   `json:"use_premium_model"`       // 是否使用高能力模型
}

// ReanalyzeRequest 重新分析的可选参数，请求体可省略
type ReanalyzeRequest struct {
	UsePremiumModel bool `json:"use_premium_model"` // 是否使用高能力模型
}

// TaskStatusRequest 任务状态查询请求
type TaskStatusRequest struct {
	ID string `uri:"id" binding:"required"` // 任务ID
}
