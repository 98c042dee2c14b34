package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/repository"
)

// setupServiceDB 创建临时SQLite数据库用于服务层测试
func setupServiceDB(t *testing.T) *gorm.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Document{}, &models.Analysis{}))
	return db
}

// newStatusTestDocument 构造一条满足非空约束的文档记录
func newStatusTestDocument(id string) *models.Document {
	return &models.Document{
		ID:       id,
		FileName: id + ".pdf",
		FilePath: "2026/08/" + id + ".pdf",
		FileSize: 1024,
	}
}

// TestDocumentStatusManager_Lifecycle 测试文档状态的完整生命周期
func TestDocumentStatusManager_Lifecycle(t *testing.T) {
	repo := repository.NewDocumentRepository(setupServiceDB(t))
	manager := NewDocumentStatusManager(repo, nil)
	ctx := context.Background()

	doc := newStatusTestDocument("doc-1")
	require.NoError(t, manager.MarkAsUploaded(ctx, doc))
	assert.Equal(t, models.DocStatusUploaded, doc.Status)

	// uploaded -> processing
	require.NoError(t, manager.MarkAsProcessing(ctx, "doc-1"))
	status, err := manager.GetStatus(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusProcessing, status)

	// processing -> completed
	require.NoError(t, manager.MarkAsCompleted(ctx, "doc-1"))
	status, err = manager.GetStatus(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCompleted, status)

	// completed可以重新进入processing（重新处理）
	require.NoError(t, manager.MarkAsProcessing(ctx, "doc-1"))

	// processing -> failed
	require.NoError(t, manager.MarkAsFailed(ctx, "doc-1", "analysis timed out"))
	got, err := manager.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusFailed, got.Status)
	assert.Equal(t, "analysis timed out", got.Error)

	// failed可以重新进入processing
	require.NoError(t, manager.MarkAsProcessing(ctx, "doc-1"))
}

// TestDocumentStatusManager_RejectsConcurrentProcessing 测试处理中的文档拒绝重复进入处理状态
func TestDocumentStatusManager_RejectsConcurrentProcessing(t *testing.T) {
	repo := repository.NewDocumentRepository(setupServiceDB(t))
	manager := NewDocumentStatusManager(repo, nil)
	ctx := context.Background()

	require.NoError(t, manager.MarkAsUploaded(ctx, newStatusTestDocument("doc-1")))
	require.NoError(t, manager.MarkAsProcessing(ctx, "doc-1"))

	err := manager.MarkAsProcessing(ctx, "doc-1")
	assert.ErrorIs(t, err, models.ErrDocumentProcessing)
}

// TestDocumentStatusManager_InvalidTransitions 测试非法状态转换
func TestDocumentStatusManager_InvalidTransitions(t *testing.T) {
	repo := repository.NewDocumentRepository(setupServiceDB(t))
	manager := NewDocumentStatusManager(repo, nil)
	ctx := context.Background()

	require.NoError(t, manager.MarkAsUploaded(ctx, newStatusTestDocument("doc-1")))

	// uploaded不能直接完成或失败
	assert.ErrorIs(t, manager.MarkAsCompleted(ctx, "doc-1"), models.ErrInvalidDocumentStatus)
	assert.ErrorIs(t, manager.MarkAsFailed(ctx, "doc-1", "boom"), models.ErrInvalidDocumentStatus)

	// 不存在的文档
	assert.Error(t, manager.MarkAsProcessing(ctx, "missing"))
}

// TestDocumentStatusManager_ValidateStateTransition 测试状态转换校验函数
func TestDocumentStatusManager_ValidateStateTransition(t *testing.T) {
	manager := NewDocumentStatusManager(nil, nil)

	assert.NoError(t, manager.ValidateStateTransition(models.DocStatusUploaded, models.DocStatusProcessing))
	assert.NoError(t, manager.ValidateStateTransition(models.DocStatusFailed, models.DocStatusProcessing))
	assert.ErrorIs(t,
		manager.ValidateStateTransition(models.DocStatusUploaded, models.DocStatusCompleted),
		models.ErrInvalidDocumentStatus)
}
