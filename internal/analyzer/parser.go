package analyzer

import (
	"regexp"
	"strings"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
)

// qaPairConfidence 解析出的问答对默认置信度
const qaPairConfidence = 0.8

// leadingNumber 行首的编号前缀
var leadingNumber = regexp.MustCompile(`^\d+\.?\s*`)

// importanceMap 重要度词到数值的映射，兼容韩语和英语
var importanceMap = []struct {
	word  string
	value float64
}{
	{"높음", 0.9},
	{"high", 0.9},
	{"중간", 0.6},
	{"medium", 0.6},
	{"낮음", 0.3},
	{"low", 0.3},
}

// defaultImportance 未标注重要度时的默认值
const defaultImportance = 0.5

// ParseQAResponse 解析问答格式的自由文本
// Q开头的行开启新问题，A开头的行开启答案，其余非空行追加到当前答案
// 格式不符时返回空切片，不报错
func ParseQAResponse(text string) []models.QAPair {
	var pairs []models.QAPair
	var currentQ, currentA string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case (strings.HasPrefix(line, "Q") || strings.HasPrefix(line, "q")) && strings.Contains(line, ":"):
			// 上一对完整时先收集
			if currentQ != "" && currentA != "" {
				pairs = append(pairs, models.QAPair{
					Question:   currentQ,
					Answer:     currentA,
					Confidence: qaPairConfidence,
				})
			}
			currentQ = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			currentA = ""
		case (strings.HasPrefix(line, "A") || strings.HasPrefix(line, "a")) && strings.Contains(line, ":"):
			currentA = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		case currentA != "" && line != "":
			// 答案的续行
			currentA += " " + line
		}
	}

	// 收集最后一对
	if currentQ != "" && currentA != "" {
		pairs = append(pairs, models.QAPair{
			Question:   currentQ,
			Answer:     currentA,
			Confidence: qaPairConfidence,
		})
	}

	return pairs
}

// ParseKeywordsResponse 解析编号列表格式的关键词文本
// 每行形如"1. 关键词 - [중요도: 높음]"，最多返回maxKeywords个
func ParseKeywordsResponse(text string, maxKeywords int) []models.Keyword {
	var keywords []models.Keyword

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !hasLeadingDigit(line) {
			continue
		}

		// 去掉编号前缀
		content := leadingNumber.ReplaceAllString(line, "")
		importance := parseImportance(content)

		// 关键词为" - "之前的部分
		keyword := strings.TrimSpace(strings.Split(content, " - ")[0])
		keyword = strings.Trim(keyword, "[]")
		if keyword == "" {
			continue
		}

		keywords = append(keywords, models.Keyword{
			Word:       keyword,
			Importance: importance,
			Frequency:  1,
		})

		if maxKeywords > 0 && len(keywords) >= maxKeywords {
			break
		}
	}

	return keywords
}

// ParseSentencesResponse 解析编号列表格式的核心句文本
// 句子两侧的引号会被去除，页码固定为1，最多返回maxSentences个
func ParseSentencesResponse(text string, maxSentences int) []models.KeySentence {
	var sentences []models.KeySentence

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !hasLeadingDigit(line) {
			continue
		}

		// 去掉编号前缀
		content := leadingNumber.ReplaceAllString(line, "")
		importance := parseImportance(content)

		// 句子为" - "之前的部分，去掉两侧引号
		sentence := strings.TrimSpace(strings.Split(content, " - ")[0])
		sentence = strings.Trim(sentence, `"'`)
		sentence = strings.Trim(sentence, "[]")
		if sentence == "" {
			continue
		}

		sentences = append(sentences, models.KeySentence{
			Sentence:   sentence,
			Importance: importance,
			Page:       1,
		})

		if maxSentences > 0 && len(sentences) >= maxSentences {
			break
		}
	}

	return sentences
}

// hasLeadingDigit 判断行的前3个字符中是否包含数字
func hasLeadingDigit(line string) bool {
	if line == "" {
		return false
	}

	runes := []rune(line)
	limit := 3
	if len(runes) < limit {
		limit = len(runes)
	}
	for _, r := range runes[:limit] {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// parseImportance 从行内容中提取重要度
func parseImportance(content string) float64 {
	lower := strings.ToLower(content)
	for _, entry := range importanceMap {
		if strings.Contains(lower, entry.word) {
			return entry.value
		}
	}
	return defaultImportance
}
