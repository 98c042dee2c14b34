package cleaner

import (
	"strings"

	"github.com/handoc-ai/doc-analysis-system/internal/document"
	"github.com/handoc-ai/doc-analysis-system/internal/models"
)

// Stats 计算文本统计信息
// 空文本返回全零统计
func Stats(text string) models.TextStats {
	if strings.TrimSpace(text) == "" {
		return models.TextStats{}
	}

	// 句子数
	sentences := SplitSentences(text)

	// 段落数：按空行分割后的非空段落
	var paragraphs int
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	// 行数：非空行
	var lines int
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}

	return models.TextStats{
		Characters: len([]rune(text)),
		Words:      len(strings.Fields(text)),
		Sentences:  len(sentences),
		Paragraphs: paragraphs,
		Lines:      lines,
	}
}

// SplitSentences 将文本分割为句子
func SplitSentences(text string) []string {
	return document.SplitSentences(text)
}
