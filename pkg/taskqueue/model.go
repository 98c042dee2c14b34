package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskDocumentProcess 文档完整处理流水线任务（提取、清洗、分析）
	TaskDocumentProcess TaskType = "document_process"
	// TaskDocumentReanalyze 基于已清洗文本的重新分析任务
	TaskDocumentReanalyze TaskType = "document_reanalyze"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Terminal 判断是否为终态
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	DocumentID  string          `json:"document_id"`  // 关联的文档ID
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷数据，不同任务类型对应不同结构
	Result      json.RawMessage `json:"result"`       // 任务结果数据
	Error       string          `json:"error"`        // 错误信息（如果处理失败）
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// DocumentProcessPayload 文档处理任务载荷
type DocumentProcessPayload struct {
	DocumentID string `json:"document_id"`         // 文档ID
	Reprocess  bool   `json:"reprocess,omitempty"` // 是否为重新处理
}

// DocumentProcessResult 文档处理任务结果
type DocumentProcessResult struct {
	DocumentID string  `json:"document_id"` // 文档ID
	Language   string  `json:"language"`    // 检测到的语言
	PageCount  int     `json:"page_count"`  // 页数
	Confidence float64 `json:"confidence"`  // 分析置信度
	Error      string  `json:"error"`       // 错误信息（如果有）
}

// DocumentReanalyzePayload 重新分析任务载荷
type DocumentReanalyzePayload struct {
	DocumentID      string `json:"document_id"`                 // 文档ID
	UsePremiumModel bool   `json:"use_premium_model,omitempty"` // 是否使用高能力模型
}

// DocumentReanalyzeResult 重新分析任务结果
type DocumentReanalyzeResult struct {
	DocumentID string  `json:"document_id"` // 文档ID
	AnalysisID uint    `json:"analysis_id"` // 新创建的分析记录ID
	Confidence float64 `json:"confidence"`  // 分析置信度
	Error      string  `json:"error"`       // 错误信息（如果有）
}

// MarshalPayload 将任务载荷序列化为JSON
func MarshalPayload(payload interface{}) (json.RawMessage, error) {
	if payload == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(payload)
}

// UnmarshalPayload 将JSON反序列化为任务载荷
func UnmarshalPayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
