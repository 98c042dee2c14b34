package repository

import "github.com/handoc-ai/doc-analysis-system/internal/models"

// DocumentRepository 文档仓储接口
// 负责文档元数据的存储和检索
type DocumentRepository interface {
	// Create 创建文档记录
	Create(doc *models.Document) error

	// Update 更新文档记录
	Update(doc *models.Document) error

	// GetByID 根据ID获取文档
	GetByID(id string) (*models.Document, error)

	// GetByFingerprint 根据文件指纹获取文档，用于去重
	GetByFingerprint(fingerprint string) (*models.Document, error)

	// List 列出文档列表，支持分页和筛选
	List(offset, limit int, filters map[string]interface{}) ([]*models.Document, int64, error)

	// Delete 删除文档及其所有分析记录
	Delete(id string) error

	// UpdateStatus 更新文档状态和相关时间戳
	UpdateStatus(id string, status models.DocumentStatus, errorMsg string) error

	// CountByStatus 按状态统计文档数量
	CountByStatus() (map[models.DocumentStatus]int64, error)
}

// AnalysisRepository 分析结果仓储接口
type AnalysisRepository interface {
	// Create 创建分析记录
	Create(analysis *models.Analysis) error

	// GetLatestByDocument 获取文档最新的分析记录（按创建时间）
	GetLatestByDocument(docID string) (*models.Analysis, error)

	// ListByDocument 获取文档的全部分析记录
	ListByDocument(docID string) ([]*models.Analysis, error)

	// DeleteByDocument 删除文档的全部分析记录
	DeleteByDocument(docID string) error

	// Count 统计分析记录总数
	Count() (int64, error)
}
