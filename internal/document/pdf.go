package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// DefaultMaxFileSize 默认的上传文件大小上限（50MB）
const DefaultMaxFileSize = 50 * 1024 * 1024

// PDFExtractor PDF文本提取器
// 先用pdfcpu做结构校验，再逐页提取纯文本
type PDFExtractor struct {
	maxFileSize int64
	logger      *logrus.Logger
}

// PDFExtractorOption PDF提取器选项
type PDFExtractorOption func(*PDFExtractor)

// WithMaxFileSize 设置文件大小上限
func WithMaxFileSize(size int64) PDFExtractorOption {
	return func(e *PDFExtractor) {
		if size > 0 {
			e.maxFileSize = size
		}
	}
}

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(logger *logrus.Logger) PDFExtractorOption {
	return func(e *PDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewPDFExtractor 创建一个新的PDF提取器
func NewPDFExtractor(opts ...PDFExtractorOption) *PDFExtractor {
	e := &PDFExtractor{
		maxFileSize: DefaultMaxFileSize,
		logger:      logrus.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 校验PDF文件并逐页提取文本
// 单页提取失败会跳过该页继续，不会导致整个文档失败
func (e *PDFExtractor) Extract(ctx context.Context, filePath string) (*ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.ToLower(filepath.Ext(filePath)) != ".pdf" {
		return nil, ErrUnsupportedType
	}

	// 基础校验：文件存在且非空
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if info.Size() > e.maxFileSize {
		return nil, ErrFileTooLarge
	}

	// 结构校验：PDF可打开且页数大于0
	conf := model.NewDefaultConfiguration()
	if err := api.ValidateFile(filePath, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPDF, err)
	}

	pageCount, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPDF, err)
	}
	if pageCount <= 0 {
		return nil, ErrNoPages
	}

	// 计算文件内容指纹，用于去重
	fingerprint, err := FileFingerprint(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint file: %w", err)
	}

	// 逐页提取文本
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPDF, err)
	}
	defer f.Close()

	doc := &ExtractedDocument{
		PageCount:   pageCount,
		Fingerprint: fingerprint,
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// 跳过无法提取的页面，继续处理剩余页面
			e.logger.WithFields(logrus.Fields{
				"file": filePath,
				"page": i,
			}).Warnf("Failed to extract page text: %v", err)
			continue
		}

		text = strings.TrimSpace(text)
		doc.Pages = append(doc.Pages, PageText{Number: i, Text: text})
		doc.TotalChars += len([]rune(text))
	}

	// 首页文本探测：没有可提取文本时标记为疑似扫描件，但不算失败
	if len(doc.Pages) == 0 || doc.Pages[0].Text == "" {
		doc.LikelyScanned = true
		e.logger.WithField("file", filePath).
			Warn("No extractable text on first page, document may be scanned")
	}

	return doc, nil
}

// FileFingerprint 计算文件内容的SHA-256指纹
func FileFingerprint(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
