package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/internal/cache"
	"github.com/handoc-ai/doc-analysis-system/internal/cleaner"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/repository"
)

// markdownCachePrefix Markdown导出结果的缓存键前缀
const markdownCachePrefix = "markdown"

// markdownCacheTTL Markdown导出结果的缓存时长
const markdownCacheTTL = time.Hour

// AnalysisService 分析结果服务
// 负责分析结果查询、重新分析、Markdown导出和即席文本分析
type AnalysisService struct {
	docRepo      repository.DocumentRepository // 文档仓储
	analysisRepo repository.AnalysisRepository // 分析结果仓储
	analyzer     *analyzer.Analyzer            // AI分析器
	cleaner      *cleaner.TextCleaner          // 文本清洗器
	cache        cache.Cache                   // 缓存服务
	logger       *logrus.Logger                // 日志记录器
}

// AnalysisServiceOption 分析服务选项函数
type AnalysisServiceOption func(*AnalysisService)

// WithAnalysisCache 设置缓存服务
func WithAnalysisCache(c cache.Cache) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.cache = c
	}
}

// WithAnalysisServiceLogger 设置日志记录器
func WithAnalysisServiceLogger(logger *logrus.Logger) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewAnalysisService 创建分析结果服务实例
func NewAnalysisService(
	docRepo repository.DocumentRepository,
	analysisRepo repository.AnalysisRepository,
	docAnalyzer *analyzer.Analyzer,
	textCleaner *cleaner.TextCleaner,
	opts ...AnalysisServiceOption,
) *AnalysisService {
	s := &AnalysisService{
		docRepo:      docRepo,
		analysisRepo: analysisRepo,
		analyzer:     docAnalyzer,
		cleaner:      textCleaner,
		logger:       logrus.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetLatestAnalysis 获取文档最新的分析结果
func (s *AnalysisService) GetLatestAnalysis(ctx context.Context, docID string) (*models.Analysis, error) {
	// 确认文档存在
	if _, err := s.docRepo.GetByID(docID); err != nil {
		return nil, err
	}
	return s.analysisRepo.GetLatestByDocument(docID)
}

// ListAnalyses 获取文档的全部分析历史
func (s *AnalysisService) ListAnalyses(ctx context.Context, docID string) ([]*models.Analysis, error) {
	if _, err := s.docRepo.GetByID(docID); err != nil {
		return nil, err
	}
	return s.analysisRepo.ListByDocument(docID)
}

// ReanalyzeDocument 基于已清洗的文本重新分析文档
// 不重新提取PDF，也不改变文档状态，只追加一条新的分析记录
func (s *AnalysisService) ReanalyzeDocument(ctx context.Context, docID string, tier analyzer.ModelTier) (*models.Analysis, error) {
	doc, err := s.docRepo.GetByID(docID)
	if err != nil {
		return nil, err
	}

	if doc.Status == models.DocStatusProcessing {
		return nil, models.ErrDocumentProcessing
	}
	if doc.CleanedText == "" {
		return nil, fmt.Errorf("%w: document %s has no cleaned text",
			models.ErrInvalidDocumentStatus, docID)
	}

	s.logger.WithFields(logrus.Fields{
		"doc_id": docID,
		"tier":   tier,
	}).Info("Reanalyzing document from cleaned text")

	result, err := s.analyzer.Analyze(ctx, doc.CleanedText, doc.Language, tier)
	if err != nil {
		return nil, fmt.Errorf("reanalysis failed: %w", err)
	}

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
	if err := analysis.SetStats(cleaner.Stats(doc.CleanedText)); err != nil {
		return nil, err
	}

	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	return analysis, nil
}

// ExportMarkdown 将文档最新的分析结果导出为Markdown
// 同一条分析记录的导出结果会被缓存
func (s *AnalysisService) ExportMarkdown(ctx context.Context, docID string) (string, error) {
	doc, err := s.docRepo.GetByID(docID)
	if err != nil {
		return "", err
	}

	analysis, err := s.analysisRepo.GetLatestByDocument(docID)
	if err != nil {
		return "", err
	}

	cacheKey := cache.GenerateCacheKey(markdownCachePrefix, docID, strconv.FormatUint(uint64(analysis.ID), 10))
	if s.cache != nil {
		if cached, found, err := s.cache.Get(cacheKey); err == nil && found {
			return cached, nil
		}
	}

	markdown := analysis.ToMarkdown(doc.PageCount)

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, markdown, markdownCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache markdown export")
		}
	}

	return markdown, nil
}

// TextAnalysis 即席文本分析结果
type TextAnalysis struct {
	Result *analyzer.Result // AI分析结果
	Stats  models.TextStats // 文本统计信息
}

// AnalyzeText 对任意文本执行即席分析
// 不创建文档记录，文本先经过清洗再分析
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string, tier analyzer.ModelTier) (*TextAnalysis, error) {
	cleaned := s.cleaner.Clean(text)

	result, err := s.analyzer.Analyze(ctx, cleaned.CleanedText, cleaned.Language, tier)
	if err != nil {
		return nil, fmt.Errorf("text analysis failed: %w", err)
	}

	return &TextAnalysis{
		Result: result,
		Stats:  cleaned.Stats,
	}, nil
}

// ServiceStats 服务统计信息
type ServiceStats struct {
	TotalDocuments int64                           `json:"total_documents"` // 文档总数
	ByStatus       map[models.DocumentStatus]int64 `json:"by_status"`       // 各状态文档数量
	TotalAnalyses  int64                           `json:"total_analyses"`  // 分析记录总数
}

// GetStats 获取文档与分析的统计信息
func (s *AnalysisService) GetStats(ctx context.Context) (*ServiceStats, error) {
	byStatus, err := s.docRepo.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	analysisCount, err := s.analysisRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	return &ServiceStats{
		TotalDocuments: total,
		ByStatus:       byStatus,
		TotalAnalyses:  analysisCount,
	}, nil
}
