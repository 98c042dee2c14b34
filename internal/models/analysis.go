package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Markdown导出的条目数上限
const (
	markdownMaxKeywords  = 10
	markdownMaxSentences = 5
)

// Keyword 关键词条目
type Keyword struct {
	Word       string  `json:"word"`       // 关键词
	Importance float64 `json:"importance"` // 重要度（0-1）
	Frequency  int     `json:"frequency"`  // 出现频率
}

// QAPair 问答对
type QAPair struct {
	Question   string  `json:"question"`   // 问题
	Answer     string  `json:"answer"`     // 答案
	Confidence float64 `json:"confidence"` // 置信度
}

// KeySentence 核心句
type KeySentence struct {
	Sentence   string  `json:"sentence"`   // 句子内容
	Importance float64 `json:"importance"` // 重要度（0-1）
	Page       int     `json:"page"`       // 所在页码
}

// TextStats 文本统计信息
type TextStats struct {
	Characters int `json:"characters"` // 字符数
	Words      int `json:"words"`      // 单词数
	Sentences  int `json:"sentences"`  // 句子数
	Paragraphs int `json:"paragraphs"` // 段落数
	Lines      int `json:"lines"`      // 行数
}

// Analysis 文档分析结果数据模型
// 一个文档可以有多条分析记录，最新一条为当前结果
type Analysis struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"` // 主键ID
	DocumentID     string         `gorm:"not null;index"`           // 所属文档ID
	Summary        string         `gorm:"type:text"`                // 摘要
	Keywords       datatypes.JSON `gorm:"type:json"`                // 关键词列表，JSON格式
	QAPairs        datatypes.JSON `gorm:"type:json"`                // 问答对列表，JSON格式
	KeySentences   datatypes.JSON `gorm:"type:json"`                // 核心句列表，JSON格式
	Stats          datatypes.JSON `gorm:"type:json"`                // 文本统计，JSON格式
	Confidence     float64        `gorm:"default:0"`                // 综合置信度（0-1）
	ModelName      string         `gorm:"size:100"`                 // 使用的AI模型名称
	ProcessingTime float64        `gorm:"default:0"`                // 处理耗时（秒）
	CreatedAt      time.Time      `gorm:"not null;index"`           // 创建时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (a *Analysis) BeforeCreate(tx *gorm.DB) (err error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

// TableName 明确指定表名
func (Analysis) TableName() string {
	return "analyses"
}

// SetKeywords 序列化关键词列表
func (a *Analysis) SetKeywords(keywords []Keyword) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return err
	}
	a.Keywords = data
	return nil
}

// GetKeywords 反序列化关键词列表
func (a *Analysis) GetKeywords() []Keyword {
	var keywords []Keyword
	if len(a.Keywords) == 0 {
		return keywords
	}
	_ = json.Unmarshal(a.Keywords, &keywords)
	return keywords
}

// SetQAPairs 序列化问答对列表
func (a *Analysis) SetQAPairs(pairs []QAPair) error {
	data, err := json.Marshal(pairs)
	if err != nil {
		return err
	}
	a.QAPairs = data
	return nil
}

// GetQAPairs 反序列化问答对列表
func (a *Analysis) GetQAPairs() []QAPair {
	var pairs []QAPair
	if len(a.QAPairs) == 0 {
		return pairs
	}
	_ = json.Unmarshal(a.QAPairs, &pairs)
	return pairs
}

// SetKeySentences 序列化核心句列表
func (a *Analysis) SetKeySentences(sentences []KeySentence) error {
	data, err := json.Marshal(sentences)
	if err != nil {
		return err
	}
	a.KeySentences = data
	return nil
}

// GetKeySentences 反序列化核心句列表
func (a *Analysis) GetKeySentences() []KeySentence {
	var sentences []KeySentence
	if len(a.KeySentences) == 0 {
		return sentences
	}
	_ = json.Unmarshal(a.KeySentences, &sentences)
	return sentences
}

// SetStats 序列化文本统计信息
func (a *Analysis) SetStats(stats TextStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	a.Stats = data
	return nil
}

// GetStats 反序列化文本统计信息
func (a *Analysis) GetStats() TextStats {
	var stats TextStats
	if len(a.Stats) == 0 {
		return stats
	}
	_ = json.Unmarshal(a.Stats, &stats)
	return stats
}

// TopKeywords 按重要度降序返回前limit个关键词
func (a *Analysis) TopKeywords(limit int) []Keyword {
	keywords := a.GetKeywords()
	sort.SliceStable(keywords, func(i, j int) bool {
		return keywords[i].Importance > keywords[j].Importance
	})
	if limit > 0 && len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

// TopKeySentences 按重要度降序返回前limit个核心句
func (a *Analysis) TopKeySentences(limit int) []KeySentence {
	sentences := a.GetKeySentences()
	sort.SliceStable(sentences, func(i, j int) bool {
		return sentences[i].Importance > sentences[j].Importance
	})
	if limit > 0 && len(sentences) > limit {
		sentences = sentences[:limit]
	}
	return sentences
}

// ToMarkdown 将分析结果渲染为Markdown文档
// 空的部分会被省略，关键词和核心句按重要度排序后截断
func (a *Analysis) ToMarkdown(pageCount int) string {
	var sb strings.Builder
	sb.WriteString("# 문서 분석 결과\n\n")

	if a.Summary != "" {
		sb.WriteString("## 📋 요약\n")
		sb.WriteString(a.Summary)
		sb.WriteString("\n\n")
	}

	if keywords := a.TopKeywords(markdownMaxKeywords); len(keywords) > 0 {
		sb.WriteString("## 🔑 주요 키워드\n")
		for _, kw := range keywords {
			sb.WriteString(fmt.Sprintf("- **%s** (중요도: %.2f)\n", kw.Word, kw.Importance))
		}
		sb.WriteString("\n")
	}

	if pairs := a.GetQAPairs(); len(pairs) > 0 {
		sb.WriteString("## ❓ 질문과 답변\n")
		for i, qa := range pairs {
			sb.WriteString(fmt.Sprintf("### Q%d: %s\n", i+1, qa.Question))
			sb.WriteString(fmt.Sprintf("**A**: %s\n\n", qa.Answer))
		}
	}

	if sentences := a.TopKeySentences(markdownMaxSentences); len(sentences) > 0 {
		sb.WriteString("## 💡 핵심 문장\n")
		for _, ks := range sentences {
			sb.WriteString(fmt.Sprintf("- %s\n", ks.Sentence))
		}
		sb.WriteString("\n")
	}

	stats := a.GetStats()
	sb.WriteString("## 📊 분석 통계\n")
	sb.WriteString(fmt.Sprintf("- 총 페이지 수: %d\n", pageCount))
	sb.WriteString(fmt.Sprintf("- 총 단어 수: %d\n", stats.Words))
	sb.WriteString(fmt.Sprintf("- 처리 시간: %d초\n", int(a.ProcessingTime)))
	sb.WriteString(fmt.Sprintf("- AI 모델: %s\n", a.ModelName))

	return sb.String()
}
