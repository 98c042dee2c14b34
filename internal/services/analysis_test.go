package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/internal/cache"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
)

// newAnalysisFixture 在文档服务之上构建分析服务及其缓存
func newAnalysisFixture(t *testing.T) (*serviceFixture, *AnalysisService, cache.Cache) {
	f := newServiceFixture(t)

	memCache, err := cache.NewMemoryCache(cache.Config{})
	require.NoError(t, err)

	svc := NewAnalysisService(f.repo, f.analysisRepo, f.analyzer, f.cleaner,
		WithAnalysisCache(memCache))
	return f, svc, memCache
}

// TestAnalysisService_GetLatestAnalysis 测试获取最新分析结果
func TestAnalysisService_GetLatestAnalysis(t *testing.T) {
	f, svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	t.Run("不存在的文档", func(t *testing.T) {
		_, err := svc.GetLatestAnalysis(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	})

	result := uploadSample(t, f, "%PDF-1.4 sample document content")

	t.Run("返回处理流水线生成的分析", func(t *testing.T) {
		analysis, err := svc.GetLatestAnalysis(ctx, result.Document.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Document.ID, analysis.DocumentID)
		assert.NotEmpty(t, analysis.Summary)
	})
}

// TestAnalysisService_Reanalyze 测试基于已清洗文本的重新分析
func TestAnalysisService_Reanalyze(t *testing.T) {
	f, svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	result := uploadSample(t, f, "%PDF-1.4 sample document content")
	docID := result.Document.ID

	t.Run("追加新的分析记录", func(t *testing.T) {
		analysis, err := svc.ReanalyzeDocument(ctx, docID, analyzer.TierDefault)
		require.NoError(t, err)
		assert.Equal(t, "stub-model", analysis.ModelName)
		assert.NotEmpty(t, analysis.Summary)

		// 原有记录保留，不被覆盖
		list, err := svc.ListAnalyses(ctx, docID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("premium档位使用高能力模型", func(t *testing.T) {
		analysis, err := svc.ReanalyzeDocument(ctx, docID, analyzer.TierPremium)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4", analysis.ModelName)
	})

	t.Run("处理中的文档被拒绝", func(t *testing.T) {
		require.NoError(t, f.repo.UpdateStatus(docID, models.DocStatusProcessing, ""))

		_, err := svc.ReanalyzeDocument(ctx, docID, analyzer.TierDefault)
		assert.ErrorIs(t, err, models.ErrDocumentProcessing)

		require.NoError(t, f.repo.UpdateStatus(docID, models.DocStatusCompleted, ""))
	})

	t.Run("没有清洗文本的文档被拒绝", func(t *testing.T) {
		doc := newStatusTestDocument("doc-no-text")
		doc.Status = models.DocStatusCompleted
		require.NoError(t, f.repo.Create(doc))

		_, err := svc.ReanalyzeDocument(ctx, "doc-no-text", analyzer.TierDefault)
		assert.ErrorIs(t, err, models.ErrInvalidDocumentStatus)
	})

	t.Run("不存在的文档", func(t *testing.T) {
		_, err := svc.ReanalyzeDocument(ctx, "missing", analyzer.TierDefault)
		assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	})
}

// TestAnalysisService_ExportMarkdown 测试Markdown导出及其缓存
func TestAnalysisService_ExportMarkdown(t *testing.T) {
	f, svc, memCache := newAnalysisFixture(t)
	ctx := context.Background()

	result := uploadSample(t, f, "%PDF-1.4 sample document content")
	docID := result.Document.ID

	markdown, err := svc.ExportMarkdown(ctx, docID)
	require.NoError(t, err)
	assert.Contains(t, markdown, "# 문서 분석 결과")
	assert.Contains(t, markdown, "- 총 페이지 수: 2")
	assert.Contains(t, markdown, "- AI 모델: stub-model")

	// 导出结果已写入缓存
	analysis, err := f.analysisRepo.GetLatestByDocument(docID)
	require.NoError(t, err)
	cacheKey := cache.GenerateCacheKey("markdown", docID, strconv.FormatUint(uint64(analysis.ID), 10))

	cached, found, err := memCache.Get(cacheKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, markdown, cached)

	// 命中缓存时直接返回缓存内容
	require.NoError(t, memCache.Set(cacheKey, "cached markdown", 0))
	got, err := svc.ExportMarkdown(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "cached markdown", got)

	// 没有分析记录的文档
	doc := newStatusTestDocument("doc-no-analysis")
	doc.Status = models.DocStatusUploaded
	require.NoError(t, f.repo.Create(doc))
	_, err = svc.ExportMarkdown(ctx, "doc-no-analysis")
	assert.ErrorIs(t, err, models.ErrAnalysisNotFound)
}

// TestAnalysisService_AnalyzeText 测试即席文本分析
func TestAnalysisService_AnalyzeText(t *testing.T) {
	_, svc, _ := newAnalysisFixture(t)

	analysis, err := svc.AnalyzeText(context.Background(),
		"The analysis pipeline extracts text from uploaded files. It then cleans the text.",
		analyzer.TierDefault)
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.Result.Summary)
	assert.Equal(t, "en", analysis.Result.Language)
	assert.Greater(t, analysis.Stats.Words, 0)
	assert.Equal(t, 2, analysis.Stats.Sentences)
}

// TestAnalysisService_GetStats 测试统计信息
func TestAnalysisService_GetStats(t *testing.T) {
	f, svc, _ := newAnalysisFixture(t)
	ctx := context.Background()

	uploadSample(t, f, "%PDF-1.4 first document")

	failed := newStatusTestDocument("doc-failed")
	failed.Status = models.DocStatusFailed
	require.NoError(t, f.repo.Create(failed))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalDocuments)
	assert.Equal(t, int64(1), stats.ByStatus[models.DocStatusCompleted])
	assert.Equal(t, int64(1), stats.ByStatus[models.DocStatusFailed])
	assert.Equal(t, int64(1), stats.TotalAnalyses)
}
