package models

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleAnalysis 构造一条填满各字段的分析记录
func sampleAnalysis(t *testing.T) *Analysis {
	a := &Analysis{
		DocumentID:     "doc-1",
		Summary:        "문서의 핵심 내용을 요약한 내용입니다.",
		Confidence:     0.9,
		ModelName:      "gpt-4o-mini",
		ProcessingTime: 3.21,
	}

	require.NoError(t, a.SetKeywords([]Keyword{
		{Word: "분석", Importance: 0.9, Frequency: 3},
		{Word: "문서", Importance: 0.6, Frequency: 5},
	}))
	require.NoError(t, a.SetQAPairs([]QAPair{
		{Question: "주제는 무엇인가요?", Answer: "문서 분석입니다.", Confidence: 0.8},
	}))
	require.NoError(t, a.SetKeySentences([]KeySentence{
		{Sentence: "핵심 문장입니다.", Importance: 0.9, Page: 1},
	}))
	require.NoError(t, a.SetStats(TextStats{
		Characters: 1200,
		Words:      250,
		Sentences:  18,
		Paragraphs: 5,
		Lines:      30,
	}))

	return a
}

// TestAnalysis_JSONRoundTrip 测试JSON字段的序列化和反序列化
func TestAnalysis_JSONRoundTrip(t *testing.T) {
	a := sampleAnalysis(t)

	keywords := a.GetKeywords()
	assert.Len(t, keywords, 2)
	assert.Equal(t, "분석", keywords[0].Word)
	assert.Equal(t, 0.9, keywords[0].Importance)

	pairs := a.GetQAPairs()
	assert.Len(t, pairs, 1)
	assert.Equal(t, "주제는 무엇인가요?", pairs[0].Question)

	sentences := a.GetKeySentences()
	assert.Len(t, sentences, 1)
	assert.Equal(t, 1, sentences[0].Page)

	stats := a.GetStats()
	assert.Equal(t, 250, stats.Words)
	assert.Equal(t, 18, stats.Sentences)
}

// TestAnalysis_GettersOnEmptyFields 测试空JSON字段的读取
func TestAnalysis_GettersOnEmptyFields(t *testing.T) {
	a := &Analysis{}

	assert.Empty(t, a.GetKeywords())
	assert.Empty(t, a.GetQAPairs())
	assert.Empty(t, a.GetKeySentences())
	assert.Equal(t, TextStats{}, a.GetStats())
}

// TestAnalysis_ToMarkdown 测试Markdown导出
func TestAnalysis_ToMarkdown(t *testing.T) {
	t.Run("完整结果包含所有部分", func(t *testing.T) {
		a := sampleAnalysis(t)
		md := a.ToMarkdown(12)

		assert.True(t, strings.HasPrefix(md, "# 문서 분석 결과"))
		assert.Contains(t, md, "## 📋 요약")
		assert.Contains(t, md, "## 🔑 주요 키워드")
		assert.Contains(t, md, "- **분석** (중요도: 0.90)")
		assert.Contains(t, md, "## ❓ 질문과 답변")
		assert.Contains(t, md, "### Q1: 주제는 무엇인가요?")
		assert.Contains(t, md, "## 💡 핵심 문장")
		assert.Contains(t, md, "- 핵심 문장입니다.")
		assert.Contains(t, md, "## 📊 분석 통계")
		assert.Contains(t, md, "- 총 페이지 수: 12")
		assert.Contains(t, md, "- 총 단어 수: 250")
		assert.Contains(t, md, "- 처리 시간: 3초")
		assert.Contains(t, md, "- AI 모델: gpt-4o-mini")
	})

	t.Run("关键词和核心句按重要度排序并截断", func(t *testing.T) {
		a := &Analysis{DocumentID: "doc-3", ModelName: "gpt-4o-mini"}

		keywords := make([]Keyword, 12)
		for i := range keywords {
			keywords[i] = Keyword{
				Word:       "키워드" + strconv.Itoa(i),
				Importance: float64(i) / 12.0,
			}
		}
		require.NoError(t, a.SetKeywords(keywords))

		sentences := make([]KeySentence, 6)
		for i := range sentences {
			sentences[i] = KeySentence{
				Sentence:   "문장" + strconv.Itoa(i) + "입니다.",
				Importance: float64(i) / 6.0,
				Page:       1,
			}
		}
		require.NoError(t, a.SetKeySentences(sentences))

		md := a.ToMarkdown(1)

		// 重要度最低的条目被截掉
		assert.NotContains(t, md, "**키워드0**")
		assert.NotContains(t, md, "**키워드1**")
		assert.Contains(t, md, "**키워드11**")
		assert.NotContains(t, md, "- 문장0입니다.")
		assert.Contains(t, md, "- 문장5입니다.")

		// 重要度高的条目排在前面
		assert.Less(t, strings.Index(md, "**키워드11**"), strings.Index(md, "**키워드2**"))
		assert.Less(t, strings.Index(md, "- 문장5입니다."), strings.Index(md, "- 문장1입니다."))
	})

	t.Run("空的部分被省略", func(t *testing.T) {
		a := &Analysis{DocumentID: "doc-2", ModelName: "gpt-4o-mini"}
		md := a.ToMarkdown(1)

		assert.NotContains(t, md, "## 📋 요약")
		assert.NotContains(t, md, "## 🔑 주요 키워드")
		assert.NotContains(t, md, "## ❓ 질문과 답변")
		assert.NotContains(t, md, "## 💡 핵심 문장")
		// 统计部分总是存在
		assert.Contains(t, md, "## 📊 분석 통계")
		assert.Contains(t, md, "- 총 페이지 수: 1")
	})
}

// TestDocument_CanTransitionTo 测试文档状态迁移规则
func TestDocument_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    DocumentStatus
		to      DocumentStatus
		allowed bool
	}{
		{DocStatusUploaded, DocStatusProcessing, true},
		{DocStatusUploaded, DocStatusCompleted, false},
		{DocStatusUploaded, DocStatusFailed, false},
		{DocStatusProcessing, DocStatusCompleted, true},
		{DocStatusProcessing, DocStatusFailed, true},
		{DocStatusProcessing, DocStatusProcessing, false},
		{DocStatusCompleted, DocStatusProcessing, true},
		{DocStatusCompleted, DocStatusUploaded, false},
		{DocStatusFailed, DocStatusProcessing, true},
		{DocStatusFailed, DocStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			doc := &Document{Status: tt.from}
			assert.Equal(t, tt.allowed, doc.CanTransitionTo(tt.to))
		})
	}
}
