package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/repository"
	"github.com/sirupsen/logrus"
)

// DocumentStatusManager 文档生命周期状态管理器
// 状态流转规则定义在models.Document.CanTransitionTo
type DocumentStatusManager struct {
	repo   repository.DocumentRepository // 文档仓储
	logger *logrus.Logger
	mu     sync.Mutex // 保证状态转换的原子性
}

// NewDocumentStatusManager 创建文档状态管理器
func NewDocumentStatusManager(repo repository.DocumentRepository, logger *logrus.Logger) *DocumentStatusManager {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}

	return &DocumentStatusManager{
		repo:   repo,
		logger: logger,
	}
}

// transition 校验并执行一次状态转换
// 调用方需要持有m.mu
func (m *DocumentStatusManager) transition(docID string, to models.DocumentStatus, errorMsg string) error {
	doc, err := m.repo.GetByID(docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	// 处理中的文档拒绝再次进入处理，避免并发的重复处理
	if to == models.DocStatusProcessing && doc.Status == models.DocStatusProcessing {
		return models.ErrDocumentProcessing
	}

	if !doc.CanTransitionTo(to) {
		return fmt.Errorf("%w: document %s is in %s state",
			models.ErrInvalidDocumentStatus, docID, doc.Status)
	}

	return m.repo.UpdateStatus(docID, to, errorMsg)
}

// MarkAsUploaded 创建已上传状态的文档记录
func (m *DocumentStatusManager) MarkAsUploaded(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"doc_id":   doc.ID,
		"filename": doc.FileName,
	}).Info("Marking document as uploaded")

	doc.Status = models.DocStatusUploaded
	doc.UploadedAt = time.Now()
	doc.UpdatedAt = time.Now()

	return m.repo.Create(doc)
}

// MarkAsProcessing 将文档标记为处理中
func (m *DocumentStatusManager) MarkAsProcessing(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.WithField("doc_id", docID).Info("Marking document as processing")
	return m.transition(docID, models.DocStatusProcessing, "")
}

// MarkAsCompleted 将文档标记为处理完成
func (m *DocumentStatusManager) MarkAsCompleted(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.WithField("doc_id", docID).Info("Marking document as completed")
	return m.transition(docID, models.DocStatusCompleted, "")
}

// MarkAsFailed 将文档标记为处理失败并记录失败原因
func (m *DocumentStatusManager) MarkAsFailed(ctx context.Context, docID string, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"doc_id": docID,
		"error":  errorMsg,
	}).Error("Marking document as failed")
	return m.transition(docID, models.DocStatusFailed, errorMsg)
}

// GetStatus 获取文档当前状态
func (m *DocumentStatusManager) GetStatus(ctx context.Context, docID string) (models.DocumentStatus, error) {
	doc, err := m.repo.GetByID(docID)
	if err != nil {
		return "", fmt.Errorf("failed to get document status: %w", err)
	}
	return doc.Status, nil
}

// GetDocument 获取完整的文档记录
func (m *DocumentStatusManager) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	return m.repo.GetByID(docID)
}

// ListDocuments 按条件分页查询文档
func (m *DocumentStatusManager) ListDocuments(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Document, int64, error) {
	return m.repo.List(offset, limit, filters)
}

// DeleteDocument 删除文档状态记录
func (m *DocumentStatusManager) DeleteDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.WithField("doc_id", docID).Info("Deleting document status record")
	return m.repo.Delete(docID)
}

// ValidateStateTransition 校验一次状态转换是否合法
func (m *DocumentStatusManager) ValidateStateTransition(from, to models.DocumentStatus) error {
	doc := &models.Document{Status: from}
	if !doc.CanTransitionTo(to) {
		return models.ErrInvalidDocumentStatus
	}
	return nil
}
