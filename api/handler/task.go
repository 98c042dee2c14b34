package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/handoc-ai/doc-analysis-system/api/middleware"
	"github.com/handoc-ai/doc-analysis-system/api/model"
	"github.com/handoc-ai/doc-analysis-system/pkg/taskqueue"
)

// TaskHandler 处理任务相关的API请求
// 错误统一交给ErrorMiddleware生成响应
type TaskHandler struct {
	queue taskqueue.Queue // 任务队列
}

// NewTaskHandler 创建新的任务处理器
func NewTaskHandler(queue taskqueue.Queue) *TaskHandler {
	return &TaskHandler{queue: queue}
}

// GetTaskStatus 获取任务状态
// GET /api/tasks/:id
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	var req model.TaskStatusRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("유효하지 않은 작업 ID입니다", err.Error()))
		return
	}

	task, err := h.queue.GetTask(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, taskqueue.ErrTaskNotFound) {
			middleware.HandleError(c, middleware.NewNotFoundError("작업을 찾을 수 없습니다"))
			return
		}

		middleware.HandleError(c, middleware.NewInternalError(
			"작업 상태 조회에 실패했습니다", err.Error()))
		return
	}

	info := taskqueue.NewTaskInfo(task)
	resp := model.TaskStatusResponse{
		TaskID:      info.ID,
		Type:        string(info.Type),
		DocumentID:  info.DocumentID,
		Status:      string(info.Status),
		Progress:    info.Progress,
		Error:       info.Error,
		CreatedAt:   info.CreatedAt,
		StartedAt:   info.StartedAt,
		CompletedAt: info.CompletedAt,
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetDocumentTasks 获取文档相关的所有任务
// GET /api/documents/:id/tasks
func (h *TaskHandler) GetDocumentTasks(c *gin.Context) {
	var req model.DocumentIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("유효하지 않은 문서 ID입니다", err.Error()))
		return
	}

	tasks, err := h.queue.GetTasksByDocument(c.Request.Context(), req.ID)
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError(
			"문서 작업 목록 조회에 실패했습니다", err.Error()))
		return
	}

	items := make([]map[string]interface{}, len(tasks))
	for i, task := range tasks {
		item := map[string]interface{}{
			"task_id":    task.ID,
			"type":       string(task.Type),
			"status":     string(task.Status),
			"created_at": task.CreatedAt,
			"updated_at": task.UpdatedAt,
		}
		if task.Error != "" {
			item["error"] = task.Error
		}
		if len(task.Result) > 0 {
			var result map[string]interface{}
			if err := json.Unmarshal(task.Result, &result); err == nil {
				item["result"] = result
			}
		}
		items[i] = item
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(map[string]interface{}{
		"document_id": req.ID,
		"tasks":       items,
	}))
}
