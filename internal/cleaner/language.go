package cleaner

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// languageSampleSize 语言检测采样的最大字符数
const languageSampleSize = 1000

// DetectLanguage 检测文本语言，返回"ko"或"en"
// 先用whatlanggo检测前1000个字符，结果不可靠时按韩文字符比例判断
func DetectLanguage(text string) string {
	sample := []rune(text)
	if len(sample) > languageSampleSize {
		sample = sample[:languageSampleSize]
	}

	info := whatlanggo.Detect(string(sample))
	if info.IsReliable() {
		switch info.Lang {
		case whatlanggo.Kor:
			return "ko"
		case whatlanggo.Eng:
			return "en"
		}
	}

	// 回退：按韩文字符比例判断
	if hangulRatio(text) > 0.3 {
		return "ko"
	}
	return "en"
}

// hangulRatio 计算非空白字符中韩文字符的比例
func hangulRatio(text string) float64 {
	var hangul, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r >= 0xAC00 && r <= 0xD7A3 {
			hangul++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(hangul) / float64(total)
}
