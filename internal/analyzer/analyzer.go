package analyzer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/handoc-ai/doc-analysis-system/internal/document"
	"github.com/handoc-ai/doc-analysis-system/internal/llm"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/handoc-ai/doc-analysis-system/internal/tokenizer"
	"github.com/sirupsen/logrus"
)

// 各分析任务的max_tokens预算
const (
	chunkSummaryMaxTokens = 500  // 分块摘要
	finalSummaryMaxTokens = 800  // 最终归并摘要
	qaMaxTokens           = 1000 // 问答生成
	keywordMaxTokens      = 500  // 关键词提取
	sentencesMaxTokens    = 800  // 核心句提取
)

// extractionTemperature 关键词和核心句提取使用的低温度
const extractionTemperature = 0.3

// fallbackSummaryChars 归并摘要失败时截取的字符数
const fallbackSummaryChars = 1000

// ModelTier 分析使用的模型档位
type ModelTier string

const (
	// TierDefault 客户端配置的默认模型
	TierDefault ModelTier = "default"
	// TierPremium 高能力模型
	TierPremium ModelTier = "premium"
)

// Config 分析器配置
type Config struct {
	ChunkTokens    int    // 摘要分块的token预算
	MaxConcurrency int    // 分块摘要的并发上限
	QACount        int    // 生成问答对数量
	MaxKeywords    int    // 关键词数量上限
	MaxSentences   int    // 核心句数量上限
	PremiumModel   string // premium档位使用的模型名称
}

// DefaultConfig 返回默认分析器配置
func DefaultConfig() Config {
	return Config{
		ChunkTokens:    3000,
		MaxConcurrency: 4,
		QACount:        5,
		MaxKeywords:    15,
		MaxSentences:   8,
		PremiumModel:   llm.ModelGPT4,
	}
}

// Result 文档分析结果
type Result struct {
	Summary        string               // 摘要
	QAPairs        []models.QAPair      // 问答对
	Keywords       []models.Keyword     // 关键词
	KeySentences   []models.KeySentence // 核心句
	Confidence     float64              // 综合置信度
	ModelName      string               // 使用的模型名称
	Language       string               // 分析语言
	ProcessingTime float64              // 处理耗时（秒）
}

// Analyzer 文档AI分析器
// 并发执行摘要、问答、关键词、核心句四个分析任务
type Analyzer struct {
	client  llm.Client
	counter tokenizer.Counter
	chunker *document.TextChunker
	config  Config
	logger  *logrus.Logger
}

// AnalyzerOption 分析器选项函数
type AnalyzerOption func(*Analyzer)

// WithConfig 设置分析器配置
func WithConfig(config Config) AnalyzerOption {
	return func(a *Analyzer) {
		a.config = config
	}
}

// WithAnalyzerLogger 设置日志记录器
func WithAnalyzerLogger(logger *logrus.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer 创建文档分析器
func NewAnalyzer(client llm.Client, counter tokenizer.Counter, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		client:  client,
		counter: counter,
		config:  DefaultConfig(),
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.config.MaxConcurrency <= 0 {
		a.config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if a.config.PremiumModel == "" {
		a.config.PremiumModel = DefaultConfig().PremiumModel
	}
	a.chunker = document.NewTextChunker(
		document.ChunkerConfig{MaxTokens: a.config.ChunkTokens},
		counter,
	)

	return a
}

// Analyze 分析文档文本
// 四个任务并发执行，单个任务失败时退化为该项的空结果，不影响其他任务
// premium档位将所有任务切换到配置的高能力模型
func (a *Analyzer) Analyze(ctx context.Context, text string, language string, tier ModelTier) (*Result, error) {
	start := time.Now()

	model := a.modelFor(tier)
	modelName := a.client.Name()
	if model != "" {
		modelName = model
	}

	result := &Result{
		QAPairs:      []models.QAPair{},
		Keywords:     []models.Keyword{},
		KeySentences: []models.KeySentence{},
		ModelName:    modelName,
		Language:     language,
	}

	// 空文本直接返回空结果
	if strings.TrimSpace(text) == "" {
		result.ProcessingTime = time.Since(start).Seconds()
		return result, nil
	}

	var wg sync.WaitGroup
	wg.Add(4)

	// 摘要任务（长文本走map-reduce路径）
	go func() {
		defer wg.Done()
		summary, err := a.generateSummary(ctx, text, language, model)
		if err != nil {
			a.logger.Warnf("Summary generation failed: %v", err)
			return
		}
		result.Summary = summary
	}()

	// 问答生成任务
	go func() {
		defer wg.Done()
		pairs, err := a.generateQAPairs(ctx, text, language, model)
		if err != nil {
			a.logger.Warnf("QA generation failed: %v", err)
			return
		}
		result.QAPairs = pairs
	}()

	// 关键词提取任务
	go func() {
		defer wg.Done()
		keywords, err := a.extractKeywords(ctx, text, language, model)
		if err != nil {
			a.logger.Warnf("Keyword extraction failed: %v", err)
			return
		}
		result.Keywords = keywords
	}()

	// 核心句提取任务
	go func() {
		defer wg.Done()
		sentences, err := a.extractKeySentences(ctx, text, language, model)
		if err != nil {
			a.logger.Warnf("Key sentence extraction failed: %v", err)
			return
		}
		result.KeySentences = sentences
	}()

	wg.Wait()

	result.Confidence = calculateConfidence(result.Summary, result.QAPairs, result.Keywords)
	result.ProcessingTime = time.Since(start).Seconds()

	return result, nil
}

// modelFor 返回档位对应的模型覆盖，空串表示沿用客户端默认模型
func (a *Analyzer) modelFor(tier ModelTier) string {
	if tier == TierPremium {
		return a.config.PremiumModel
	}
	return ""
}

// chatOpts 在请求选项前附加模型覆盖
func (a *Analyzer) chatOpts(model string, opts ...llm.ChatOption) []llm.ChatOption {
	if model == "" {
		return opts
	}
	return append([]llm.ChatOption{llm.WithChatModel(model)}, opts...)
}

// generateSummary 生成文档摘要
// 文本超出分块预算时先做分块摘要再归并
func (a *Analyzer) generateSummary(ctx context.Context, text string, language string, model string) (string, error) {
	if a.counter.Count(text) <= a.config.ChunkTokens {
		return a.chunkSummary(ctx, text, language, model)
	}

	chunks := a.chunker.Split(text)
	summaries := make([]string, len(chunks))

	// 分块摘要在并发上限内并行执行
	sem := make(chan struct{}, a.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, chunkText string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, err := a.chunkSummary(ctx, chunkText, language, model)
			if err != nil {
				a.logger.Warnf("Chunk %d summary failed: %v", idx, err)
				return
			}
			summaries[idx] = summary
		}(i, chunk.Text)
	}
	wg.Wait()

	// 过滤失败的空摘要，保持分块顺序
	var parts []string
	for _, s := range summaries {
		if s != "" {
			parts = append(parts, s)
		}
	}
	combined := strings.Join(parts, "\n")
	if combined == "" {
		return "", nil
	}

	// 归并摘要失败时退化为截断的合并文本
	final, err := a.finalSummary(ctx, combined, language, model)
	if err != nil {
		a.logger.Warnf("Final summary failed, falling back to truncation: %v", err)
		return truncateRunes(combined, fallbackSummaryChars) + "...", nil
	}
	return final, nil
}

// chunkSummary 对单个文本块生成摘要
func (a *Analyzer) chunkSummary(ctx context.Context, text string, language string, model string) (string, error) {
	resp, err := a.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: summaryPrompt(language)},
		{Role: llm.RoleUser, Content: text},
	}, a.chatOpts(model, llm.WithChatMaxTokens(chunkSummaryMaxTokens))...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// finalSummary 归并多个分块摘要
func (a *Analyzer) finalSummary(ctx context.Context, combined string, language string, model string) (string, error) {
	resp, err := a.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: finalSummaryPrompt(language)},
		{Role: llm.RoleUser, Content: combined},
	}, a.chatOpts(model, llm.WithChatMaxTokens(finalSummaryMaxTokens))...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// generateQAPairs 生成问答对
func (a *Analyzer) generateQAPairs(ctx context.Context, text string, language string, model string) ([]models.QAPair, error) {
	resp, err := a.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: qaPrompt(language, a.config.QACount)},
		{Role: llm.RoleUser, Content: text},
	}, a.chatOpts(model, llm.WithChatMaxTokens(qaMaxTokens))...)
	if err != nil {
		return nil, err
	}
	return ParseQAResponse(resp.Text), nil
}

// extractKeywords 提取关键词
func (a *Analyzer) extractKeywords(ctx context.Context, text string, language string, model string) ([]models.Keyword, error) {
	resp, err := a.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: keywordPrompt(language, a.config.MaxKeywords)},
		{Role: llm.RoleUser, Content: text},
	}, a.chatOpts(model,
		llm.WithChatMaxTokens(keywordMaxTokens),
		llm.WithChatTemperature(extractionTemperature))...)
	if err != nil {
		return nil, err
	}
	return ParseKeywordsResponse(resp.Text, a.config.MaxKeywords), nil
}

// extractKeySentences 提取核心句
func (a *Analyzer) extractKeySentences(ctx context.Context, text string, language string, model string) ([]models.KeySentence, error) {
	resp, err := a.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: sentencesPrompt(language, a.config.MaxSentences)},
		{Role: llm.RoleUser, Content: text},
	}, a.chatOpts(model,
		llm.WithChatMaxTokens(sentencesMaxTokens),
		llm.WithChatTemperature(extractionTemperature))...)
	if err != nil {
		return nil, err
	}
	return ParseSentencesResponse(resp.Text, a.config.MaxSentences), nil
}

// calculateConfidence 计算综合置信度
// 摘要长度、问答数量、关键词数量各占一部分权重，上限1.0
func calculateConfidence(summary string, pairs []models.QAPair, keywords []models.Keyword) float64 {
	score := 0.0

	if len([]rune(summary)) > 100 {
		score += 0.3
	}
	if len(pairs) >= 3 {
		score += 0.4
	}
	if len(keywords) >= 5 {
		score += 0.3
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// truncateRunes 按字符数截断文本
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
