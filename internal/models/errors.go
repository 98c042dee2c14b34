package models

import "errors"

var (
	// ErrDocumentNotFound 文档不存在错误
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAnalysisNotFound 分析结果不存在错误
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrInvalidDocumentStatus 无效的文档状态错误
	ErrInvalidDocumentStatus = errors.New("invalid document status")

	// ErrDocumentProcessing 文档正在处理中，拒绝并发的重新处理请求
	ErrDocumentProcessing = errors.New("document is currently processing")

	// ErrDuplicateDocument 相同内容的文档已存在
	ErrDuplicateDocument = errors.New("duplicate document")
)
