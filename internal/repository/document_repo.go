package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"gorm.io/gorm"
)

// docRepository 文档仓储实现
type docRepository struct {
	db *gorm.DB // 数据库连接
}

// NewDocumentRepository 使用指定的数据库连接创建文档仓储实例
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &docRepository{db: db}
}

// Create 创建文档记录
func (r *docRepository) Create(doc *models.Document) error {
	if doc.ID == "" {
		return errors.New("document ID cannot be empty")
	}

	return r.db.Create(doc).Error
}

// Update 更新文档记录
func (r *docRepository) Update(doc *models.Document) error {
	if doc.ID == "" {
		return errors.New("document ID cannot be empty")
	}

	return r.db.Save(doc).Error
}

// GetByID 根据ID获取文档
func (r *docRepository) GetByID(id string) (*models.Document, error) {
	var doc models.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetByFingerprint 根据文件指纹获取文档
// 找不到时返回ErrDocumentNotFound
func (r *docRepository) GetByFingerprint(fingerprint string) (*models.Document, error) {
	var doc models.Document
	err := r.db.Where("fingerprint = ?", fingerprint).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// List 列出文档列表，支持分页和筛选
func (r *docRepository) List(offset, limit int, filters map[string]interface{}) ([]*models.Document, int64, error) {
	var docs []*models.Document
	var total int64

	// 创建查询构造器
	query := r.db.Model(&models.Document{})

	// 应用筛选条件
	if filters != nil {
		// 状态过滤
		if status, ok := filters["status"]; ok {
			// 处理不同类型的status
			switch s := status.(type) {
			case models.DocumentStatus:
				query = query.Where("status = ?", string(s))
			case string:
				if s != "" {
					query = query.Where("status = ?", s)
				}
			default:
				statusStr := fmt.Sprintf("%v", status)
				if statusStr != "" {
					query = query.Where("status = ?", statusStr)
				}
			}
		}

		// 语言过滤
		if lang, ok := filters["language"].(string); ok && lang != "" {
			query = query.Where("language = ?", lang)
		}

		// 时间范围过滤
		if startTime, ok := filters["start_time"].(string); ok && startTime != "" {
			query = query.Where("uploaded_at >= ?", startTime)
		}

		if endTime, ok := filters["end_time"].(string); ok && endTime != "" {
			query = query.Where("uploaded_at <= ?", endTime)
		}

		// 文件名过滤
		if fileName, ok := filters["file_name"].(string); ok && fileName != "" {
			query = query.Where("file_name LIKE ?", "%"+fileName+"%")
		}
	}

	// 获取总数
	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	// 应用排序、分页并执行查询
	err = query.Order("uploaded_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error

	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// Delete 删除文档记录及其分析结果
func (r *docRepository) Delete(id string) error {
	// 开启事务
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 1. 删除文档的分析记录
		if err := tx.Where("document_id = ?", id).Delete(&models.Analysis{}).Error; err != nil {
			return err
		}

		// 2. 删除文档记录
		return tx.Where("id = ?", id).Delete(&models.Document{}).Error
	})
}

// UpdateStatus 更新文档状态
func (r *docRepository) UpdateStatus(id string, status models.DocumentStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	// 如果有错误消息，更新错误字段
	if errorMsg != "" {
		updates["error"] = errorMsg
	}

	now := time.Now()
	switch status {
	case models.DocStatusProcessing:
		// 进入处理中时记录开始时间并清理旧错误
		updates["processing_started_at"] = &now
		updates["error"] = errorMsg
	case models.DocStatusCompleted, models.DocStatusFailed:
		// 处理结束时记录完成时间
		updates["processed_at"] = &now
	}

	return r.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountByStatus 按状态统计文档数量
func (r *docRepository) CountByStatus() (map[models.DocumentStatus]int64, error) {
	type row struct {
		Status models.DocumentStatus
		Count  int64
	}

	var rows []row
	err := r.db.Model(&models.Document{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.DocumentStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// analysisRepository 分析结果仓储实现
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 使用指定的数据库连接创建分析仓储实例
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create 创建分析记录
func (r *analysisRepository) Create(analysis *models.Analysis) error {
	if analysis.DocumentID == "" {
		return errors.New("analysis document ID cannot be empty")
	}

	return r.db.Create(analysis).Error
}

// GetLatestByDocument 获取文档最新的分析记录
func (r *analysisRepository) GetLatestByDocument(docID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("document_id = ?", docID).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}

// ListByDocument 获取文档的全部分析记录
func (r *analysisRepository) ListByDocument(docID string) ([]*models.Analysis, error) {
	var analyses []*models.Analysis
	err := r.db.Where("document_id = ?", docID).
		Order("created_at DESC").
		Find(&analyses).Error
	return analyses, err
}

// DeleteByDocument 删除文档的全部分析记录
func (r *analysisRepository) DeleteByDocument(docID string) error {
	return r.db.Where("document_id = ?", docID).
		Delete(&models.Analysis{}).Error
}

// Count 统计分析记录总数
func (r *analysisRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Analysis{}).Count(&count).Error
	return count, err
}
