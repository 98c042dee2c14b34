package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoc-ai/doc-analysis-system/pkg/taskqueue"
)

// recordingQueue 记录状态回写调用的队列桩
// 处理器只调用UpdateTaskStatus，其余方法不会被触及
type recordingQueue struct {
	taskqueue.Queue
	statuses []taskqueue.TaskStatus
	results  []interface{}
}

func (q *recordingQueue) UpdateTaskStatus(ctx context.Context, taskID string, status taskqueue.TaskStatus, result interface{}, errorMsg string) error {
	q.statuses = append(q.statuses, status)
	q.results = append(q.results, result)
	return nil
}

// newTaskHandlerFixture 构建任务处理器及其记录队列
func newTaskHandlerFixture(t *testing.T) (*serviceFixture, *DocumentTaskHandler, *recordingQueue) {
	f := newServiceFixture(t)
	analysisService := NewAnalysisService(f.repo, f.analysisRepo, f.analyzer, f.cleaner)
	queue := &recordingQueue{}
	handler := NewDocumentTaskHandler(f.svc, analysisService, queue, nil)
	return f, handler, queue
}

// newQueueTask 构造一个带载荷的任务记录
func newQueueTask(t *testing.T, taskType taskqueue.TaskType, docID string, payload interface{}) *taskqueue.Task {
	data, err := taskqueue.MarshalPayload(payload)
	require.NoError(t, err)
	return &taskqueue.Task{
		ID:         "task-" + docID,
		Type:       taskType,
		DocumentID: docID,
		Payload:    data,
	}
}

// TestDocumentTaskHandler_Process 测试文档处理任务的执行与结果回写
func TestDocumentTaskHandler_Process(t *testing.T) {
	f, handler, queue := newTaskHandlerFixture(t)
	ctx := context.Background()

	result := uploadSample(t, f, "%PDF-1.4 sample document content")
	docID := result.Document.ID

	task := newQueueTask(t, taskqueue.TaskDocumentProcess, docID,
		taskqueue.DocumentProcessPayload{DocumentID: docID})
	require.NoError(t, handler.ProcessTask(ctx, task))

	// 结果与终态一次写入，不依赖后续的状态覆盖
	require.Len(t, queue.statuses, 1)
	assert.Equal(t, taskqueue.StatusCompleted, queue.statuses[0])

	processResult, ok := queue.results[0].(taskqueue.DocumentProcessResult)
	require.True(t, ok)
	assert.Equal(t, docID, processResult.DocumentID)
	assert.Equal(t, "en", processResult.Language)
	assert.Equal(t, 2, processResult.PageCount)
}

// TestDocumentTaskHandler_Reanalyze 测试重新分析任务及premium档位
func TestDocumentTaskHandler_Reanalyze(t *testing.T) {
	f, handler, queue := newTaskHandlerFixture(t)
	ctx := context.Background()

	result := uploadSample(t, f, "%PDF-1.4 sample document content")
	docID := result.Document.ID

	task := newQueueTask(t, taskqueue.TaskDocumentReanalyze, docID,
		taskqueue.DocumentReanalyzePayload{DocumentID: docID, UsePremiumModel: true})
	require.NoError(t, handler.ProcessTask(ctx, task))

	require.Len(t, queue.statuses, 1)
	assert.Equal(t, taskqueue.StatusCompleted, queue.statuses[0])

	reanalyzeResult, ok := queue.results[0].(taskqueue.DocumentReanalyzeResult)
	require.True(t, ok)
	assert.Equal(t, docID, reanalyzeResult.DocumentID)

	// premium档位的分析记录使用高能力模型
	analysis, err := f.analysisRepo.GetLatestByDocument(docID)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", analysis.ModelName)
}

// TestDocumentTaskHandler_UnsupportedType 测试未注册的任务类型
func TestDocumentTaskHandler_UnsupportedType(t *testing.T) {
	_, handler, queue := newTaskHandlerFixture(t)

	task := &taskqueue.Task{ID: "task-x", Type: taskqueue.TaskType("unknown")}
	err := handler.ProcessTask(context.Background(), task)
	assert.Error(t, err)
	assert.Empty(t, queue.statuses)
}
