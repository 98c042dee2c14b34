package document

import (
	"context"
	"errors"
)

// 文本提取相关的错误
var (
	// ErrFileNotFound 文件不存在
	ErrFileNotFound = errors.New("file not found")
	// ErrEmptyFile 文件内容为空
	ErrEmptyFile = errors.New("file is empty")
	// ErrFileTooLarge 文件超过大小限制
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrCorruptPDF PDF文件损坏或无法打开
	ErrCorruptPDF = errors.New("corrupt or unreadable pdf")
	// ErrNoPages PDF没有任何页面
	ErrNoPages = errors.New("pdf has no pages")
	// ErrUnsupportedType 不支持的文件类型
	ErrUnsupportedType = errors.New("unsupported document type")
)

// PageText 单页提取结果
type PageText struct {
	Number int    // 页码，从1开始
	Text   string // 该页的纯文本内容
}

// ExtractedDocument 文档提取结果
type ExtractedDocument struct {
	Pages         []PageText // 按页组织的文本
	PageCount     int        // 总页数
	TotalChars    int        // 提取文本总字符数
	Fingerprint   string     // 文件内容SHA-256指纹
	LikelyScanned bool       // 首页没有可提取文本时标记为疑似扫描件
}

// Text 拼接所有页面文本
func (d *ExtractedDocument) Text() string {
	var size int
	for _, p := range d.Pages {
		size += len(p.Text) + 1
	}

	buf := make([]byte, 0, size)
	for i, p := range d.Pages {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, p.Text...)
	}
	return string(buf)
}

// Extractor 文档文本提取器接口
// 负责校验文档并按页提取纯文本
type Extractor interface {
	// Extract 校验并提取文档文本
	Extract(ctx context.Context, filePath string) (*ExtractedDocument, error)
}
