package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/pkg/taskqueue"
)

// DocumentTaskHandler 文档任务处理器
// 实现taskqueue.Handler接口，在工作者进程中执行文档处理任务
type DocumentTaskHandler struct {
	docService      *DocumentService // 文档服务
	analysisService *AnalysisService // 分析服务
	queue           taskqueue.Queue  // 任务队列，用于回写任务结果
	logger          *logrus.Logger   // 日志记录器
}

// NewDocumentTaskHandler 创建文档任务处理器
func NewDocumentTaskHandler(
	docService *DocumentService,
	analysisService *AnalysisService,
	queue taskqueue.Queue,
	logger *logrus.Logger,
) *DocumentTaskHandler {
	if logger == nil {
		logger = logrus.New()
	}

	return &DocumentTaskHandler{
		docService:      docService,
		analysisService: analysisService,
		queue:           queue,
		logger:          logger,
	}
}

// GetTaskTypes 返回此处理器支持的任务类型
func (h *DocumentTaskHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{
		taskqueue.TaskDocumentProcess,
		taskqueue.TaskDocumentReanalyze,
	}
}

// ProcessTask 处理任务
func (h *DocumentTaskHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	h.logger.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"task_type":   task.Type,
		"document_id": task.DocumentID,
	}).Info("Processing document task")

	switch task.Type {
	case taskqueue.TaskDocumentProcess:
		return h.handleProcess(ctx, task)
	case taskqueue.TaskDocumentReanalyze:
		return h.handleReanalyze(ctx, task)
	default:
		return fmt.Errorf("unsupported task type: %s", task.Type)
	}
}

// handleProcess 执行文档处理流水线任务
func (h *DocumentTaskHandler) handleProcess(ctx context.Context, task *taskqueue.Task) error {
	var payload taskqueue.DocumentProcessPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", taskqueue.ErrInvalidPayload, err)
	}
	if payload.DocumentID == "" {
		payload.DocumentID = task.DocumentID
	}

	if err := h.docService.ProcessDocument(ctx, payload.DocumentID); err != nil {
		return err
	}

	// 回写处理结果摘要
	doc, err := h.docService.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load document for task result")
		return nil
	}

	result := taskqueue.DocumentProcessResult{
		DocumentID: doc.ID,
		Language:   doc.Language,
		PageCount:  doc.PageCount,
	}
	if analysis, err := h.analysisService.GetLatestAnalysis(ctx, doc.ID); err == nil {
		result.Confidence = analysis.Confidence
	}

	// 结果随终态一起写入
	if err := h.queue.UpdateTaskStatus(ctx, task.ID, taskqueue.StatusCompleted, result, ""); err != nil {
		h.logger.WithError(err).Warn("Failed to record task result")
	}

	return nil
}

// handleReanalyze 执行重新分析任务
func (h *DocumentTaskHandler) handleReanalyze(ctx context.Context, task *taskqueue.Task) error {
	var payload taskqueue.DocumentReanalyzePayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", taskqueue.ErrInvalidPayload, err)
	}
	if payload.DocumentID == "" {
		payload.DocumentID = task.DocumentID
	}

	tier := analyzer.TierDefault
	if payload.UsePremiumModel {
		tier = analyzer.TierPremium
	}

	analysis, err := h.analysisService.ReanalyzeDocument(ctx, payload.DocumentID, tier)
	if err != nil {
		return err
	}

	result := taskqueue.DocumentReanalyzeResult{
		DocumentID: payload.DocumentID,
		AnalysisID: analysis.ID,
		Confidence: analysis.Confidence,
	}
	// 结果随终态一起写入
	if err := h.queue.UpdateTaskStatus(ctx, task.ID, taskqueue.StatusCompleted, result, ""); err != nil {
		h.logger.WithError(err).Warn("Failed to record task result")
	}

	return nil
}
