package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// chatCompletionsPath 聊天补全接口路径
const chatCompletionsPath = "/chat/completions"

// OpenAIClient OpenAI兼容的大模型客户端实现
// 适用于OpenAI官方API及所有兼容chat completions协议的端点
type OpenAIClient struct {
	apiKey      string       // API密钥
	baseURL     string       // API端点
	model       string       // 模型名称
	httpClient  *http.Client // HTTP客户端
	maxRetries  int          // 最大重试次数
	maxTokens   int          // 最大生成Token数
	temperature float32      // 温度参数
	topP        float32      // topP参数
}

// NewOpenAIClient 创建新的OpenAI兼容客户端
func NewOpenAIClient(opts ...Option) (Client, error) {
	// 创建配置
	cfg := NewConfig(opts...)

	// 验证API密钥
	if cfg.APIKey == "" {
		return nil, NewLLMError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	}

	// 确定API端点
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}

	// 创建HTTP客户端，设置超时
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	client := &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		httpClient:  httpClient,
		maxRetries:  cfg.MaxRetries,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}

	return client, nil
}

// Name 返回模型名称
func (c *OpenAIClient) Name() string {
	return c.model
}

// Generate 根据提示词生成回答
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	if prompt == "" {
		return nil, NewLLMError(ErrCodeEmptyPrompt, ErrMsgEmptyPrompt)
	}

	// 将单个提示转换为消息格式进行调用
	messages := []Message{
		{
			Role:    RoleUser,
			Content: prompt,
		},
	}

	// 转换GenerateOptions为ChatOptions
	var chatOpts []ChatOption
	opts := &GenerateOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.Model != nil {
		chatOpts = append(chatOpts, WithChatModel(*opts.Model))
	}
	if opts.MaxTokens != nil {
		chatOpts = append(chatOpts, WithChatMaxTokens(*opts.MaxTokens))
	}
	if opts.Temperature != nil {
		chatOpts = append(chatOpts, WithChatTemperature(*opts.Temperature))
	}
	if opts.TopP != nil {
		chatOpts = append(chatOpts, WithChatTopP(*opts.TopP))
	}

	// 复用Chat方法
	return c.Chat(ctx, messages, chatOpts...)
}

// Chat 进行多轮对话
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, options ...ChatOption) (*Response, error) {
	if len(messages) == 0 {
		return nil, NewLLMError(ErrCodeInvalidRequest, "messages cannot be empty")
	}

	// 应用选项
	opts := &ChatOptions{}
	for _, opt := range options {
		opt(opts)
	}

	// 创建请求
	req := &ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if opts.Model != nil {
		req.Model = *opts.Model
	}

	// 请求级选项优先于客户端默认值
	if opts.MaxTokens != nil {
		req.MaxTokens = opts.MaxTokens
	} else if c.maxTokens > 0 {
		maxTokens := c.maxTokens
		req.MaxTokens = &maxTokens
	}

	if opts.Temperature != nil {
		req.Temperature = opts.Temperature
	} else if c.temperature > 0 {
		temp := c.temperature
		req.Temperature = &temp
	}

	if opts.TopP != nil {
		req.TopP = opts.TopP
	} else if c.topP > 0 {
		topP := c.topP
		req.TopP = &topP
	}

	// 发送请求
	resp, err := c.sendRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	// 解析响应
	return c.processResponse(req.Model, resp)
}

// sendRequest 发送API请求并解析响应
// 5xx和429状态码会按指数退避重试
func (c *OpenAIClient) sendRequest(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	// 将请求数据转换为JSON
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	url := c.baseURL + chatCompletionsPath

	// 使用重试机制发送请求
	var resp *http.Response
	var lastErr LLMError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// 指数退避重试
			select {
			case <-ctx.Done():
				return nil, NewLLMError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 100 * time.Millisecond):
				// 等待后继续
			}
		}

		// 请求体每次重试需要重建
		httpReq, reqErr := http.NewRequestWithContext(
			ctx,
			http.MethodPost,
			url,
			bytes.NewBuffer(jsonData),
		)
		if reqErr != nil {
			return nil, NewLLMError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", reqErr))
		}

		// 设置请求头
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		httpReq.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = NewLLMError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", err))
			resp = nil
			continue
		}
		if resp.StatusCode == http.StatusOK {
			break
		}

		// 按错误类型决定是否继续重试
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = c.statusError(resp.StatusCode, body)
		resp = nil
		if !lastErr.Retryable() {
			break
		}
	}

	if resp == nil {
		return nil, lastErr
	}
	defer resp.Body.Close()

	// 读取响应体
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrCodeServerError, fmt.Sprintf("failed to read response: %v", err))
	}

	// 解析JSON响应
	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("failed to parse response: %v", err))
	}

	// 检查API返回的错误
	if chatResp.Error != nil {
		return nil, NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error: %s (%s)", chatResp.Error.Message, chatResp.Error.Type))
	}

	return &chatResp, nil
}

// statusError 将HTTP状态码映射为LLM错误
func (c *OpenAIClient) statusError(statusCode int, body []byte) LLMError {
	var errResp struct {
		Error *APIError `json:"error"`
	}
	message := string(body)
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && errResp.Error != nil {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewLLMError(ErrCodeInvalidAPIKey, message)
	case http.StatusTooManyRequests:
		return NewLLMError(ErrCodeRateLimited, message)
	case http.StatusRequestEntityTooLarge:
		return NewLLMError(ErrCodeContextTooLong, message)
	default:
		return NewLLMError(ErrCodeServerError,
			fmt.Sprintf("API error (status %d): %s", statusCode, message))
	}
}

// processResponse 处理聊天补全响应
func (c *OpenAIClient) processResponse(model string, resp *ChatCompletionResponse) (*Response, error) {
	if len(resp.Choices) == 0 {
		return nil, NewLLMError(ErrCodeServerError, "empty response from API")
	}

	choice := resp.Choices[0]
	result := &Response{
		Text:       choice.Message.Content,
		Messages:   []Message{choice.Message},
		TokenCount: resp.Usage.TotalTokens,
		ModelName:  model,
		FinishTime: time.Now(),
	}

	return result, nil
}

// 在包初始化时注册OpenAI兼容客户端
func init() {
	RegisterClient("openai", NewOpenAIClient)
}
