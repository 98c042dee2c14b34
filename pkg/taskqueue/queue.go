package taskqueue

import (
	"context"
	"time"
)

// 任务相关错误
var (
	// ErrTaskNotFound 任务不存在或元数据已过期
	ErrTaskNotFound = TaskError("task not found")
	// ErrTaskTimeout 等待任务完成超时
	ErrTaskTimeout = TaskError("task timed out")
	// ErrInvalidPayload 任务载荷无法解析
	ErrInvalidPayload = TaskError("invalid task payload")
)

// TaskError 任务错误类型
type TaskError string

// Error 实现error接口
func (e TaskError) Error() string {
	return string(e)
}

// Queue 任务队列接口
// 负责任务的投递、查询和状态维护
type Queue interface {
	// Enqueue 立即入队一个任务，返回任务ID
	Enqueue(ctx context.Context, taskType TaskType, documentID string, payload interface{}) (string, error)

	// EnqueueAt 在指定时间点入队
	EnqueueAt(ctx context.Context, taskType TaskType, documentID string, payload interface{}, processAt time.Time) (string, error)

	// EnqueueIn 延迟指定时长后入队
	EnqueueIn(ctx context.Context, taskType TaskType, documentID string, payload interface{}, delay time.Duration) (string, error)

	// GetTask 读取任务元数据
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// GetTasksByDocument 读取某个文档的全部任务
	GetTasksByDocument(ctx context.Context, documentID string) ([]*Task, error)

	// WaitForTask 阻塞等待任务进入终态，timeout为0表示不限时
	WaitForTask(ctx context.Context, taskID string, timeout time.Duration) (*Task, error)

	// DeleteTask 删除任务
	DeleteTask(ctx context.Context, taskID string) error

	// UpdateTaskStatus 更新任务状态和结果
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus, result interface{}, errorMsg string) error

	// NotifyTaskUpdate 广播任务状态变更
	NotifyTaskUpdate(ctx context.Context, taskID string) error

	// Close 关闭队列连接
	Close() error
}

// Handler 任务处理器接口
type Handler interface {
	// ProcessTask 执行任务
	ProcessTask(ctx context.Context, task *Task) error

	// GetTaskTypes 返回此处理器支持的任务类型
	GetTaskTypes() []TaskType
}

// Worker 任务消费进程接口
type Worker interface {
	// RegisterHandler 注册任务处理器
	RegisterHandler(taskType TaskType, handler Handler)

	// Start 开始消费任务
	Start() error

	// Stop 停止消费
	Stop()
}

// Factory 队列实现的工厂函数
type Factory func(cfg *Config) (Queue, error)

// Config 队列配置
type Config struct {
	RedisAddr     string         // Redis地址
	RedisPassword string         // Redis密码
	RedisDB       int            // Redis数据库编号
	Concurrency   int            // 并发处理任务数
	RetryLimit    int            // 最大重试次数
	RetryDelay    time.Duration  // 重试间隔
	Queues        map[string]int // 队列名到优先级的映射
}

// DefaultConfig 返回默认队列配置
func DefaultConfig() *Config {
	return &Config{
		RedisAddr:   "localhost:6379",
		Concurrency: 10,
		RetryLimit:  3,
		RetryDelay:  time.Minute,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}
}

// TaskInfo 对外暴露的任务摘要
// API响应中使用，不包含载荷和结果的原始数据
type TaskInfo struct {
	ID          string     `json:"id"`           // 任务ID
	Type        TaskType   `json:"type"`         // 任务类型
	DocumentID  string     `json:"document_id"`  // 关联的文档ID
	Status      TaskStatus `json:"status"`       // 任务状态
	Error       string     `json:"error"`        // 错误信息
	CreatedAt   time.Time  `json:"created_at"`   // 创建时间
	StartedAt   *time.Time `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time `json:"completed_at"` // 完成时间
	Progress    float64    `json:"progress"`     // 处理进度（0-100）
}

// NewTaskInfo 从任务记录构建任务摘要
func NewTaskInfo(task *Task) *TaskInfo {
	return &TaskInfo{
		ID:          task.ID,
		Type:        task.Type,
		DocumentID:  task.DocumentID,
		Status:      task.Status,
		Error:       task.Error,
		CreatedAt:   task.CreatedAt,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
		Progress:    taskProgress(task.Status),
	}
}

// taskProgress 按状态估算任务进度
// 队列只跟踪状态流转，不汇报细粒度进度
func taskProgress(status TaskStatus) float64 {
	switch status {
	case StatusCompleted:
		return 100.0
	case StatusProcessing, StatusFailed:
		return 50.0
	default:
		return 0.0
	}
}
