package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPDF 生成一个真实的多页PDF文件
func createTestPDF(t *testing.T, pages ...string) string {
	path := filepath.Join(t.TempDir(), "test.pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 10, text, "", "", false)
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

// writeTestFile 按指定扩展名写入任意内容
func writeTestFile(t *testing.T, name string, content []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// TestPDFExtractor_Extract 测试多页PDF的文本提取
func TestPDFExtractor_Extract(t *testing.T) {
	path := createTestPDF(t,
		"First page about document processing.",
		"Second page about text analysis.")

	extractor := NewPDFExtractor()
	doc, err := extractor.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Contains(t, doc.Pages[0].Text, "document processing")
	assert.Contains(t, doc.Pages[1].Text, "text analysis")
	assert.Greater(t, doc.TotalChars, 0)
	assert.Len(t, doc.Fingerprint, 64)
	assert.False(t, doc.LikelyScanned)

	// 拼接全文包含所有页面内容
	text := doc.Text()
	assert.Contains(t, text, "document processing")
	assert.Contains(t, text, "text analysis")
}

// TestPDFExtractor_Validation 测试提取前的文件校验
func TestPDFExtractor_Validation(t *testing.T) {
	extractor := NewPDFExtractor()
	ctx := context.Background()

	t.Run("不支持的扩展名", func(t *testing.T) {
		path := writeTestFile(t, "notes.txt", []byte("plain text"))
		_, err := extractor.Extract(ctx, path)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := extractor.Extract(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("空文件", func(t *testing.T) {
		path := writeTestFile(t, "empty.pdf", nil)
		_, err := extractor.Extract(ctx, path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("超过大小限制", func(t *testing.T) {
		small := NewPDFExtractor(WithMaxFileSize(10))
		path := createTestPDF(t, "A page that certainly exceeds ten bytes.")
		_, err := small.Extract(ctx, path)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("损坏的PDF", func(t *testing.T) {
		path := writeTestFile(t, "broken.pdf", []byte("%PDF-1.4 not really a pdf"))
		_, err := extractor.Extract(ctx, path)
		assert.ErrorIs(t, err, ErrCorruptPDF)
	})
}

// TestPDFExtractor_CancelledContext 测试取消的上下文直接返回
func TestPDFExtractor_CancelledContext(t *testing.T) {
	path := createTestPDF(t, "Some content.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := NewPDFExtractor()
	_, err := extractor.Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestFileFingerprint 测试内容指纹的确定性
func TestFileFingerprint(t *testing.T) {
	pathA := writeTestFile(t, "a.pdf", []byte("identical content"))
	pathB := writeTestFile(t, "b.pdf", []byte("identical content"))
	pathC := writeTestFile(t, "c.pdf", []byte("different content"))

	fpA, err := FileFingerprint(pathA)
	require.NoError(t, err)
	fpB, err := FileFingerprint(pathB)
	require.NoError(t, err)
	fpC, err := FileFingerprint(pathC)
	require.NoError(t, err)

	assert.Len(t, fpA, 64)
	assert.Equal(t, fpA, fpB)
	assert.NotEqual(t, fpA, fpC)

	_, err = FileFingerprint(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

// TestExtractedDocument_Text 测试页面文本拼接
func TestExtractedDocument_Text(t *testing.T) {
	doc := &ExtractedDocument{
		Pages: []PageText{
			{Number: 1, Text: "first"},
			{Number: 2, Text: "second"},
		},
	}
	assert.Equal(t, "first\nsecond", doc.Text())

	empty := &ExtractedDocument{}
	assert.Equal(t, "", empty.Text())
}
