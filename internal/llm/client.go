package llm

import (
	"context"
	"time"
)

// Client 大模型客户端接口
// 分析任务全部通过Chat发起，Generate是单轮调用的便捷形式
type Client interface {
	// Generate 根据单条提示词生成回答
	Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error)

	// Chat 以消息序列发起对话请求
	Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error)

	// Name 返回模型名称
	Name() string
}

// Config 客户端配置
type Config struct {
	APIKey      string        // API密钥
	BaseURL     string        // API基础URL
	Model       string        // 模型名称
	Timeout     time.Duration // 单次请求超时
	MaxRetries  int           // 失败后的最大重试次数
	MaxTokens   int           // 默认最大生成Token数
	Temperature float32       // 默认采样温度(0.0-2.0)
	TopP        float32       // 默认核采样阈值(0.0-1.0)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		Model:       ModelGPT35Turbo,
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		MaxTokens:   1000,
		Temperature: 0.7,
		TopP:        0.9,
	}
}

// Option 客户端配置选项
type Option func(*Config)

// NewConfig 在默认配置上应用选项
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAPIKey 设置API密钥
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL 设置API基础URL
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel 设置模型名称
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

// WithMaxTokens 设置默认最大生成Token数
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature 设置默认采样温度
func WithTemperature(t float32) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithTopP 设置默认核采样阈值
func WithTopP(p float32) Option {
	return func(c *Config) { c.TopP = p }
}

// ChatOptions 单次对话请求的覆盖参数
// 指针字段为nil时沿用客户端配置的默认值
type ChatOptions struct {
	Model       *string
	MaxTokens   *int
	Temperature *float32
	TopP        *float32
}

// ChatOption 对话请求选项
type ChatOption func(*ChatOptions)

// WithChatModel 覆盖本次请求使用的模型
func WithChatModel(model string) ChatOption {
	return func(o *ChatOptions) { o.Model = &model }
}

// WithChatMaxTokens 覆盖本次请求的最大生成Token数
func WithChatMaxTokens(n int) ChatOption {
	return func(o *ChatOptions) { o.MaxTokens = &n }
}

// WithChatTemperature 覆盖本次请求的采样温度
func WithChatTemperature(t float32) ChatOption {
	return func(o *ChatOptions) { o.Temperature = &t }
}

// WithChatTopP 覆盖本次请求的核采样阈值
func WithChatTopP(p float32) ChatOption {
	return func(o *ChatOptions) { o.TopP = &p }
}

// GenerateOptions 单次生成请求的覆盖参数
type GenerateOptions struct {
	Model       *string
	MaxTokens   *int
	Temperature *float32
	TopP        *float32
}

// GenerateOption 生成请求选项
type GenerateOption func(*GenerateOptions)

// WithGenerateModel 覆盖本次请求使用的模型
func WithGenerateModel(model string) GenerateOption {
	return func(o *GenerateOptions) { o.Model = &model }
}

// WithGenerateMaxTokens 覆盖本次请求的最大生成Token数
func WithGenerateMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) { o.MaxTokens = &n }
}

// WithGenerateTemperature 覆盖本次请求的采样温度
func WithGenerateTemperature(t float32) GenerateOption {
	return func(o *GenerateOptions) { o.Temperature = &t }
}

// WithGenerateTopP 覆盖本次请求的核采样阈值
func WithGenerateTopP(p float32) GenerateOption {
	return func(o *GenerateOptions) { o.TopP = &p }
}

// Factory 客户端实现的工厂函数
type Factory func(opts ...Option) (Client, error)

var clientFactories = make(map[string]Factory)

// RegisterClient 注册客户端实现
// 各实现在init中调用
func RegisterClient(name string, factory Factory) {
	clientFactories[name] = factory
}

// NewClient 按名称创建客户端
func NewClient(name string, opts ...Option) (Client, error) {
	factory, ok := clientFactories[name]
	if !ok {
		return nil, NewLLMError(
			ErrCodeInvalidRequest,
			"llm client type not registered: "+name)
	}
	return factory(opts...)
}
