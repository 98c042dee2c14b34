package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/handoc-ai/doc-analysis-system/internal/models"
	"github.com/sirupsen/logrus"
)

// 清洗规则的正则表达式
var (
	// 行内连续空白（不含换行）
	excessiveSpaces = regexp.MustCompile(`[ \t]+`)
	// 三个以上的连续换行
	excessiveNewlines = regexp.MustCompile(`\n{3,}`)
	// 只包含数字的行（页码）
	pageNumberLine = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	// 由-或=包围的页眉页脚分隔行
	headerFooterLine = regexp.MustCompile(`(?m)^[-=]{3,}.*[-=]{3,}$`)
	// 各种项目符号
	bulletGlyphs = regexp.MustCompile(`(?m)^[ \t]*[•·▪▫◦‣⁃][ \t]*`)
	// 连续空格（最终整理用，不含制表符）
	multipleSpaces = regexp.MustCompile(` +`)
	// 基础标点之外的特殊字符（保留韩文、拉丁字母、数字和基础标点）
	specialChars = regexp.MustCompile(`[^\x{AC00}-\x{D7A3}\s.,!?;:\-()\[\]0-9a-zA-Z]`)
)

// SpellChecker 拼写检查器接口
// 逐句检查，失败时调用方保留原句
type SpellChecker interface {
	Check(sentence string) (string, error)
}

// Options 文本清洗选项
// 除拼写检查和特殊字符删除外默认全部开启
type Options struct {
	RemoveExcessiveWhitespace bool // 压缩连续空白
	RemovePageNumbers         bool // 删除页码行
	RemoveHeaderFooter        bool // 删除页眉页脚分隔行
	NormalizeBulletPoints     bool // 统一项目符号
	FixLineBreaks             bool // 合并被软换行打断的句子
	SpellCheck                bool // 拼写检查（仅韩语，耗时，默认关闭）
	RemoveSpecialChars        bool // 删除特殊字符（会连项目符号一起删掉，默认关闭）
	PreserveStructure         bool // 将标题行提升为Markdown标题
}

// DefaultOptions 返回默认清洗选项
func DefaultOptions() Options {
	return Options{
		RemoveExcessiveWhitespace: true,
		RemovePageNumbers:         true,
		RemoveHeaderFooter:        true,
		NormalizeBulletPoints:     true,
		FixLineBreaks:             true,
		SpellCheck:                false,
		RemoveSpecialChars:        false,
		PreserveStructure:         true,
	}
}

// Result 清洗结果
type Result struct {
	OriginalText string           // 原始文本
	CleanedText  string           // 清洗后的文本
	Stats        models.TextStats // 清洗后文本的统计信息
	Language     string           // 检测到的语言（ko/en）
}

// TextCleaner 文本清洗器
// 按固定顺序执行一组可开关的清洗步骤
type TextCleaner struct {
	options      Options
	spellChecker SpellChecker
	logger       *logrus.Logger
}

// Option 清洗器选项函数
type Option func(*TextCleaner)

// WithOptions 设置清洗选项
func WithOptions(options Options) Option {
	return func(c *TextCleaner) {
		c.options = options
	}
}

// WithSpellChecker 设置拼写检查器
func WithSpellChecker(checker SpellChecker) Option {
	return func(c *TextCleaner) {
		c.spellChecker = checker
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(c *TextCleaner) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTextCleaner 创建文本清洗器
func NewTextCleaner(opts ...Option) *TextCleaner {
	c := &TextCleaner{
		options: DefaultOptions(),
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean 清洗文本
// 空输入返回空结果，不报错
func (c *TextCleaner) Clean(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{
			OriginalText: text,
			CleanedText:  "",
			Stats:        models.TextStats{},
			Language:     "unknown",
		}
	}

	// 语言检测在清洗前进行
	language := DetectLanguage(text)

	cleaned := text

	// 1. 压缩连续空白
	if c.options.RemoveExcessiveWhitespace {
		cleaned = removeExcessiveWhitespace(cleaned)
	}

	// 2. 删除页码行
	if c.options.RemovePageNumbers {
		cleaned = pageNumberLine.ReplaceAllString(cleaned, "")
	}

	// 3. 删除页眉页脚分隔行
	if c.options.RemoveHeaderFooter {
		cleaned = headerFooterLine.ReplaceAllString(cleaned, "")
	}

	// 4. 统一项目符号
	if c.options.NormalizeBulletPoints {
		cleaned = bulletGlyphs.ReplaceAllString(cleaned, "• ")
	}

	// 5. 合并被软换行打断的句子
	if c.options.FixLineBreaks {
		cleaned = fixLineBreaks(cleaned)
	}

	// 6. 拼写检查（仅韩语，逐句尽力而为）
	if c.options.SpellCheck && language == "ko" {
		cleaned = c.spellCheck(cleaned)
	}

	// 7. 删除特殊字符
	if c.options.RemoveSpecialChars {
		cleaned = specialChars.ReplaceAllString(cleaned, "")
	}

	// 8. 标题行提升
	if c.options.PreserveStructure {
		cleaned = preserveStructure(cleaned)
	}

	// 最终整理
	cleaned = finalCleanup(cleaned)

	return Result{
		OriginalText: text,
		CleanedText:  cleaned,
		Stats:        Stats(cleaned),
		Language:     language,
	}
}

// removeExcessiveWhitespace 压缩行内空白并限制连续换行
func removeExcessiveWhitespace(text string) string {
	text = excessiveSpaces.ReplaceAllString(text, " ")
	text = excessiveNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// fixLineBreaks 合并被软换行打断的句子
// 一行没有以句末标点结束、且下一行不以大写字母开头时合并两行
func fixLineBreaks(text string) string {
	lines := strings.Split(text, "\n")
	var fixed []string

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			fixed = append(fixed, "")
			continue
		}

		// 贪心向后合并未完结的行
		for i < len(lines)-1 {
			next := strings.TrimSpace(lines[i+1])
			if next == "" || endsSentence(line) || startsUpper(next) {
				break
			}
			line += " " + next
			i++
		}

		fixed = append(fixed, line)
	}

	return strings.Join(fixed, "\n")
}

// endsSentence 判断一行是否以句末标点结束
func endsSentence(line string) bool {
	for _, suffix := range []string{".", "!", "?", ":", ";"} {
		if strings.HasSuffix(line, suffix) {
			return true
		}
	}
	return false
}

// startsUpper 判断一行是否以大写字母开头
func startsUpper(line string) bool {
	for _, r := range line {
		return unicode.IsUpper(r)
	}
	return false
}

// spellCheck 逐句执行拼写检查
// 单句失败时保留原句，整体失败时返回原文本
func (c *TextCleaner) spellCheck(text string) string {
	if c.spellChecker == nil {
		return text
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return text
	}

	corrected := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		checked, err := c.spellChecker.Check(sentence)
		if err != nil {
			c.logger.Debugf("Spell check failed for sentence, keeping original: %v", err)
			corrected = append(corrected, sentence)
			continue
		}
		corrected = append(corrected, checked)
	}

	return strings.Join(corrected, " ")
}

// preserveStructure 将疑似标题的行提升为Markdown二级标题
// 短行、无句号、以大写字母开头且不是项目符号时视为标题
func preserveStructure(text string) string {
	lines := strings.Split(text, "\n")
	var structured []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			structured = append(structured, "")
			continue
		}

		if len([]rune(line)) < 100 && !strings.HasSuffix(line, ".") &&
			!strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "##") &&
			startsUpper(line) {
			structured = append(structured, "\n## "+line+"\n")
		} else {
			structured = append(structured, line)
		}
	}

	return strings.Join(structured, "\n")
}

// finalCleanup 最终整理：压缩空格和连续换行，去除首尾空白
func finalCleanup(text string) string {
	text = multipleSpaces.ReplaceAllString(text, " ")
	text = excessiveNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
