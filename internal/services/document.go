package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/internal/cleaner"
	"github.com/handoc-ai/doc-analysis-system/internal/document"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/repository"
	"github.com/handoc-ai/doc-analysis-system/pkg/storage"
	"github.com/handoc-ai/doc-analysis-system/pkg/taskqueue"
)

// DocumentService 文档服务
// 负责文档上传、处理流水线和生命周期管理
type DocumentService struct {
	storage        storage.Storage               // 文件存储服务
	extractor      document.Extractor            // PDF文本提取器
	cleaner        *cleaner.TextCleaner          // 文本清洗器
	analyzer       *analyzer.Analyzer            // AI分析器
	repo           repository.DocumentRepository // 文档仓储
	analysisRepo   repository.AnalysisRepository // 分析结果仓储
	statusManager  *DocumentStatusManager        // 状态管理器
	taskQueue      taskqueue.Queue               // 任务队列（异步处理时使用）
	asyncEnabled   bool                          // 是否启用异步处理
	allowDuplicate bool                          // 是否允许重复内容的文档
	timeout        time.Duration                 // 处理超时时间
	logger         *logrus.Logger                // 日志记录器
}

// DocumentServiceOption 文档服务选项函数
type DocumentServiceOption func(*DocumentService)

// WithTimeout 设置处理超时时间
func WithTimeout(timeout time.Duration) DocumentServiceOption {
	return func(s *DocumentService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTaskQueue 设置任务队列，启用异步处理
func WithTaskQueue(queue taskqueue.Queue) DocumentServiceOption {
	return func(s *DocumentService) {
		if queue != nil {
			s.taskQueue = queue
			s.asyncEnabled = true
		}
	}
}

// WithAllowDuplicate 设置是否允许上传重复内容的文档
func WithAllowDuplicate(allow bool) DocumentServiceOption {
	return func(s *DocumentService) {
		s.allowDuplicate = allow
	}
}

// NewDocumentService 创建文档服务实例
func NewDocumentService(
	fileStorage storage.Storage,
	extractor document.Extractor,
	textCleaner *cleaner.TextCleaner,
	docAnalyzer *analyzer.Analyzer,
	repo repository.DocumentRepository,
	analysisRepo repository.AnalysisRepository,
	statusManager *DocumentStatusManager,
	opts ...DocumentServiceOption,
) *DocumentService {
	s := &DocumentService{
		storage:       fileStorage,
		extractor:     extractor,
		cleaner:       textCleaner,
		analyzer:      docAnalyzer,
		repo:          repo,
		analysisRepo:  analysisRepo,
		statusManager: statusManager,
		timeout:       5 * time.Minute,
		logger:        logrus.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// UploadResult 文档上传结果
type UploadResult struct {
	Document  *models.Document // 文档记录
	Duplicate bool             // 是否命中已有的同内容文档
}

// UploadDocument 上传文档并触发处理
// 同内容的文档（指纹相同）默认返回已有记录，不重复入库
func (s *DocumentService) UploadDocument(ctx context.Context, reader io.Reader, filename string) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, document.ErrUnsupportedType
	}

	// 先落地到临时文件，以便计算指纹
	tmpFile, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmpFile, reader)
	if closeErr := tmpFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if size == 0 {
		return nil, document.ErrEmptyFile
	}

	fingerprint, err := document.FileFingerprint(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint document: %w", err)
	}

	// 指纹去重：已有同内容文档时直接返回
	if !s.allowDuplicate {
		existing, err := s.repo.GetByFingerprint(fingerprint)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"doc_id":      existing.ID,
				"fingerprint": fingerprint,
			}).Info("Duplicate document detected, returning existing record")
			return &UploadResult{Document: existing, Duplicate: true}, nil
		}
		if err != models.ErrDocumentNotFound {
			return nil, fmt.Errorf("failed to check fingerprint: %w", err)
		}
	}

	// 保存到存储服务
	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen temp file: %w", err)
	}
	defer f.Close()

	fileInfo, err := s.storage.Save(f, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	// 使用存储服务分配的文件ID作为文档ID
	doc := &models.Document{
		ID:          fileInfo.ID,
		FileName:    filename,
		ContentType: fileInfo.MimeType,
		FilePath:    fileInfo.Path,
		FileSize:    fileInfo.Size,
		Fingerprint: fingerprint,
	}

	if err := s.statusManager.MarkAsUploaded(ctx, doc); err != nil {
		// 入库失败时清理已保存的文件
		if delErr := s.storage.Delete(fileInfo.ID); delErr != nil {
			s.logger.WithError(delErr).Warn("Failed to clean up stored file after record creation failure")
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id":   doc.ID,
		"filename": filename,
		"size":     size,
	}).Info("Document uploaded")

	// 触发处理流程
	if err := s.triggerProcessing(ctx, doc.ID); err != nil {
		return nil, err
	}

	return &UploadResult{Document: doc}, nil
}

// triggerProcessing 根据配置选择异步或同步处理
func (s *DocumentService) triggerProcessing(ctx context.Context, docID string) error {
	if s.asyncEnabled && s.taskQueue != nil {
		payload := taskqueue.DocumentProcessPayload{DocumentID: docID}
		taskID, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskDocumentProcess, docID, payload)
		if err != nil {
			return fmt.Errorf("failed to enqueue processing task: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"doc_id":  docID,
			"task_id": taskID,
		}).Info("Document processing task enqueued")
		return nil
	}

	return s.ProcessDocument(ctx, docID)
}

// ProcessDocument 执行文档处理流水线
// 提取 -> 清洗 -> 分析，任一阶段失败都将文档置为失败状态
func (s *DocumentService) ProcessDocument(ctx context.Context, docID string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.statusManager.MarkAsProcessing(ctx, docID); err != nil {
		return err
	}

	doc, err := s.repo.GetByID(docID)
	if err != nil {
		return s.failDocument(docID, fmt.Errorf("failed to load document: %w", err))
	}

	// 阶段1: 文本提取
	if err := s.updateStage(doc, models.StageExtracting); err != nil {
		return s.failDocument(docID, err)
	}

	extracted, err := s.extractDocument(ctx, doc)
	if err != nil {
		return s.failDocument(docID, fmt.Errorf("extraction failed: %w", err))
	}

	// 阶段2: 文本清洗与语言检测
	if err := s.updateStage(doc, models.StageCleaning); err != nil {
		return s.failDocument(docID, err)
	}

	cleaned := s.cleaner.Clean(extracted.Text())

	doc.CleanedText = cleaned.CleanedText
	doc.Language = cleaned.Language
	doc.PageCount = extracted.PageCount
	doc.LikelyScanned = extracted.LikelyScanned
	if doc.Fingerprint == "" {
		doc.Fingerprint = extracted.Fingerprint
	}
	if err := s.repo.Update(doc); err != nil {
		return s.failDocument(docID, fmt.Errorf("failed to persist cleaned text: %w", err))
	}

	// 阶段3: AI分析
	if err := s.updateStage(doc, models.StageAnalyzing); err != nil {
		return s.failDocument(docID, err)
	}

	result, err := s.analyzer.Analyze(ctx, cleaned.CleanedText, cleaned.Language, analyzer.TierDefault)
	if err != nil {
		return s.failDocument(docID, fmt.Errorf("analysis failed: %w", err))
	}

	if _, err := s.saveAnalysis(doc, cleaned, result); err != nil {
		return s.failDocument(docID, fmt.Errorf("failed to save analysis: %w", err))
	}

	if err := s.updateStage(doc, models.StageCompleted); err != nil {
		return s.failDocument(docID, err)
	}
	if err := s.statusManager.MarkAsCompleted(ctx, docID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id":     docID,
		"language":   cleaned.Language,
		"page_count": extracted.PageCount,
		"confidence": result.Confidence,
	}).Info("Document processed successfully")

	return nil
}

// ReprocessDocument 重新处理文档
// 清除已有分析结果后重新执行完整流水线
func (s *DocumentService) ReprocessDocument(ctx context.Context, docID string) error {
	doc, err := s.repo.GetByID(docID)
	if err != nil {
		return err
	}

	// 处理中的文档不允许重新处理
	if doc.Status == models.DocStatusProcessing {
		return models.ErrDocumentProcessing
	}

	if err := s.analysisRepo.DeleteByDocument(docID); err != nil {
		return fmt.Errorf("failed to clear previous analyses: %w", err)
	}

	s.logger.WithField("doc_id", docID).Info("Reprocessing document")

	if s.asyncEnabled && s.taskQueue != nil {
		payload := taskqueue.DocumentProcessPayload{DocumentID: docID, Reprocess: true}
		_, err := s.taskQueue.Enqueue(ctx, taskqueue.TaskDocumentProcess, docID, payload)
		if err != nil {
			return fmt.Errorf("failed to enqueue reprocessing task: %w", err)
		}
		return nil
	}

	return s.ProcessDocument(ctx, docID)
}

// DeleteDocument 删除文档及其分析结果
func (s *DocumentService) DeleteDocument(ctx context.Context, docID string) error {
	// 确认文档存在
	if _, err := s.repo.GetByID(docID); err != nil {
		return err
	}

	// 删除存储的文件，失败时仅记录日志
	if err := s.storage.Delete(docID); err != nil {
		s.logger.WithError(err).WithField("doc_id", docID).Warn("Failed to delete stored file")
	}

	return s.statusManager.DeleteDocument(ctx, docID)
}

// GetDocument 获取文档详情
func (s *DocumentService) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	return s.repo.GetByID(docID)
}

// GetDocumentStatus 获取文档处理状态
func (s *DocumentService) GetDocumentStatus(ctx context.Context, docID string) (*models.Document, error) {
	return s.statusManager.GetDocument(ctx, docID)
}

// ListDocuments 分页获取文档列表
func (s *DocumentService) ListDocuments(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Document, int64, error) {
	return s.repo.List(offset, limit, filters)
}

// extractDocument 从存储中取回文件并提取文本
// 存储后端可能是远端对象存储，先落地到临时文件再解析
func (s *DocumentService) extractDocument(ctx context.Context, doc *models.Document) (*document.ExtractedDocument, error) {
	reader, err := s.storage.Get(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stored file: %w", err)
	}
	defer reader.Close()

	tmpFile, err := os.CreateTemp("", "extract-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmpFile, reader)
	if closeErr := tmpFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to materialize file: %w", err)
	}

	return s.extractor.Extract(ctx, tmpPath)
}

// saveAnalysis 将分析结果持久化为分析记录
func (s *DocumentService) saveAnalysis(doc *models.Document, cleaned cleaner.Result, result *analyzer.Result) (*models.Analysis, error) {
	analysis := &models.Analysis{
		DocumentID:     doc.ID,
		Summary:        result.Summary,
		Confidence:     result.Confidence,
		ModelName:      result.ModelName,
		ProcessingTime: result.ProcessingTime,
	}

	if err := analysis.SetKeywords(result.Keywords); err != nil {
		return nil, err
	}
	if err := analysis.SetQAPairs(result.QAPairs); err != nil {
		return nil, err
	}
	if err := analysis.SetKeySentences(result.KeySentences); err != nil {
		return nil, err
	}
	if err := analysis.SetStats(cleaned.Stats); err != nil {
		return nil, err
	}

	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// updateStage 更新文档的当前处理阶段
func (s *DocumentService) updateStage(doc *models.Document, stage models.ProcessStage) error {
	doc.CurrentStage = stage
	if err := s.repo.Update(doc); err != nil {
		return fmt.Errorf("failed to update processing stage: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id": doc.ID,
		"stage":  stage,
	}).Debug("Document stage updated")

	return nil
}

// failDocument 将文档标记为失败并返回原始错误
func (s *DocumentService) failDocument(docID string, err error) error {
	s.logger.WithError(err).WithField("doc_id", docID).Error("Document processing failed")

	if markErr := s.statusManager.MarkAsFailed(context.Background(), docID, err.Error()); markErr != nil {
		s.logger.WithError(markErr).WithField("doc_id", docID).Error("Failed to mark document as failed")
	}

	return err
}
