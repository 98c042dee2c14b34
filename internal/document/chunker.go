package document

import (
	"strings"
)

// TokenCounter 计算文本token数量的接口
type TokenCounter interface {
	// Count 返回文本的token数量
	Count(text string) int
}

// Chunk 文本分块
type Chunk struct {
	Index      int    // 分块索引
	Text       string // 分块文本内容
	TokenCount int    // 分块token数量
}

// ChunkerConfig 分块器配置
type ChunkerConfig struct {
	MaxTokens int // 单个分块的token预算
}

// DefaultChunkerConfig 返回默认分块器配置
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxTokens: 3000,
	}
}

// TextChunker 基于token预算的文本分块器
// 按句子贪心累积，直到超出token预算时开启新块
type TextChunker struct {
	config  ChunkerConfig
	counter TokenCounter
}

// NewTextChunker 创建新的文本分块器
func NewTextChunker(config ChunkerConfig, counter TokenCounter) *TextChunker {
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultChunkerConfig().MaxTokens
	}
	return &TextChunker{
		config:  config,
		counter: counter,
	}
}

// Split 将文本分割成token预算内的分块
// 单个句子超出预算时独立成块，不再切分
func (c *TextChunker) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Chunk{}
	}

	sentences := SplitSentences(text)

	var chunks []Chunk
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunkText := strings.TrimSpace(current.String())
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       chunkText,
			TokenCount: c.counter.Count(chunkText),
		})
		current.Reset()
		currentTokens = 0
	}

	for _, sentence := range sentences {
		tokens := c.counter.Count(sentence)

		// 当前块加上新句子会超出预算时先落块
		if currentTokens > 0 && currentTokens+tokens > c.config.MaxTokens {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += tokens
	}
	flush()

	return chunks
}

// NeedsSplit 判断文本是否超出单块预算
func (c *TextChunker) NeedsSplit(text string) bool {
	return c.counter.Count(text) > c.config.MaxTokens
}

// 句子结束分隔符，兼容中英文和韩文标点
var sentenceDelimiters = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// SplitSentences 将文本分割为句子
// 不以分隔符结束的尾部文本也作为一个句子保留
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, char := range text {
		current.WriteRune(char)

		if sentenceDelimiters[char] {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}

	// 处理最后一个可能不以分隔符结束的句子
	last := strings.TrimSpace(current.String())
	if last != "" {
		sentences = append(sentences, last)
	}

	return sentences
}
