package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// wordCounter 按单词数计token，便于构造确定性的分块测试
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TestSplitSentences 测试句子分割
func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "english sentences",
			text:     "First sentence. Second sentence! Third sentence?",
			expected: []string{"First sentence.", "Second sentence!", "Third sentence?"},
		},
		{
			name:     "korean delimiters",
			text:     "첫 번째 문장입니다。두 번째 문장입니까？",
			expected: []string{"첫 번째 문장입니다。", "두 번째 문장입니까？"},
		},
		{
			name:     "trailing text without delimiter",
			text:     "Complete sentence. trailing fragment",
			expected: []string{"Complete sentence.", "trailing fragment"},
		},
		{
			name:     "empty text",
			text:     "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.text))
		})
	}
}

// TestTextChunker_Split 测试基于token预算的分块
func TestTextChunker_Split(t *testing.T) {
	chunker := NewTextChunker(ChunkerConfig{MaxTokens: 4}, wordCounter{})

	// 三个句子各2个token，预算4：前两句合为一块，第三句另起一块
	text := "aaa bbb. ccc ddd. eee fff."
	chunks := chunker.Split(text)

	assert.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, "aaa bbb. ccc ddd.", chunks[0].Text)
	assert.Equal(t, "eee fff.", chunks[1].Text)
	assert.Equal(t, 4, chunks[0].TokenCount)
	assert.Equal(t, 2, chunks[1].TokenCount)
}

// TestTextChunker_Split_OversizedSentence 测试超出预算的单句独立成块
func TestTextChunker_Split_OversizedSentence(t *testing.T) {
	chunker := NewTextChunker(ChunkerConfig{MaxTokens: 3}, wordCounter{})

	text := "short one. a b c d e f g h. short two."
	chunks := chunker.Split(text)

	assert.Len(t, chunks, 3)
	// 超长句子不再切分，单独成块
	assert.Equal(t, "a b c d e f g h.", chunks[1].Text)
	assert.Greater(t, chunks[1].TokenCount, 3)
}

// TestTextChunker_Split_PreservesOrder 测试分块顺序与原文一致
func TestTextChunker_Split_PreservesOrder(t *testing.T) {
	chunker := NewTextChunker(ChunkerConfig{MaxTokens: 2}, wordCounter{})

	text := "first one. second two. third three. fourth four."
	chunks := chunker.Split(text)

	assert.Len(t, chunks, 4)
	joined := make([]string, len(chunks))
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		joined[i] = chunk.Text
	}
	assert.Equal(t, text, strings.Join(joined, " "))
}

// TestTextChunker_Split_Empty 测试空文本
func TestTextChunker_Split_Empty(t *testing.T) {
	chunker := NewTextChunker(DefaultChunkerConfig(), wordCounter{})
	assert.Empty(t, chunker.Split("  \n "))
}

// TestTextChunker_NeedsSplit 测试是否需要分块的判断
func TestTextChunker_NeedsSplit(t *testing.T) {
	chunker := NewTextChunker(ChunkerConfig{MaxTokens: 3}, wordCounter{})

	assert.False(t, chunker.NeedsSplit("one two three"))
	assert.True(t, chunker.NeedsSplit("one two three four"))
}

// TestNewTextChunker_InvalidBudget 测试非法预算回退到默认值
func TestNewTextChunker_InvalidBudget(t *testing.T) {
	chunker := NewTextChunker(ChunkerConfig{MaxTokens: 0}, wordCounter{})
	assert.Equal(t, DefaultChunkerConfig().MaxTokens, chunker.config.MaxTokens)
}
