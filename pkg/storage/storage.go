package storage

import (
	"errors"
	"io"
)

// ErrFileNotFound 按ID查找文件失败时返回
var ErrFileNotFound = errors.New("file not found")

// FileInfo 已保存文件的元数据
type FileInfo struct {
	ID       string // 文件ID，保存时生成
	Name     string // 原始文件名
	Size     int64  // 文件大小（字节）
	MimeType string // MIME类型
	Path     string // 实现内部的存储路径
}

// Storage 上传文件的存储接口
// 本地文件系统和MinIO对象存储各有一个实现
type Storage interface {
	// Save 保存文件内容，返回生成的文件信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get 按ID打开文件内容，调用方负责Close
	Get(id string) (io.ReadCloser, error)

	// Delete 按ID删除文件
	Delete(id string) error

	// List 列出所有已保存的文件
	List() ([]FileInfo, error)

	// Exists 检查指定ID的文件是否存在
	Exists(id string) (bool, error)
}
