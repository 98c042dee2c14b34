package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`           // 角色
	Content string      `json:"content"`        // 内容
	Name    string      `json:"name,omitempty"` // 可选名称标识
}

// ChatCompletionRequest OpenAI兼容的聊天请求结构
type ChatCompletionRequest struct {
	Model       string    `json:"model"`                 // 模型名称
	Messages    []Message `json:"messages"`              // 对话历史消息
	MaxTokens   *int      `json:"max_tokens,omitempty"`  // 最大生成Token数
	Temperature *float32  `json:"temperature,omitempty"` // 采样温度
	TopP        *float32  `json:"top_p,omitempty"`       // 核采样概率阈值
}

// ChatCompletionResponse OpenAI兼容的聊天响应结构
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`      // 响应ID
	Object  string                 `json:"object"`  // 对象类型
	Created int64                  `json:"created"` // 创建时间戳
	Model   string                 `json:"model"`   // 模型名称
	Choices []ChatCompletionChoice `json:"choices"` // 选择列表
	Usage   ChatCompletionUsage    `json:"usage"`   // 资源使用情况
	Error   *APIError              `json:"error"`   // 错误信息(如果有)
}

// ChatCompletionChoice 输出选择
type ChatCompletionChoice struct {
	Index        int     `json:"index"`         // 选择索引
	FinishReason string  `json:"finish_reason"` // 结束原因
	Message      Message `json:"message"`       // 消息内容
}

// ChatCompletionUsage 资源使用情况
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`     // 输入token数
	CompletionTokens int `json:"completion_tokens"` // 输出token数
	TotalTokens      int `json:"total_tokens"`      // 总token数
}

// APIError API返回的错误结构
type APIError struct {
	Message string `json:"message"` // 错误消息
	Type    string `json:"type"`    // 错误类型
	Code    string `json:"code"`    // 错误码
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// Model 常用模型名称
const (
	ModelGPT35Turbo = "gpt-3.5-turbo" // GPT-3.5-Turbo模型（较快，基础能力）
	ModelGPT4       = "gpt-4"         // GPT-4模型（高级能力，速度较慢）
	ModelGPT4Turbo  = "gpt-4-turbo"   // GPT-4-Turbo模型（平衡速度和性能）
	ModelGPT4oMini  = "gpt-4o-mini"   // GPT-4o-mini模型（低成本）
)
