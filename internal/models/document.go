package models

import (
	"time"

	"gorm.io/gorm"
)

// DocumentStatus 文档处理状态类型
type DocumentStatus string

const (
	// DocStatusUploaded 文档已上传，等待处理
	DocStatusUploaded DocumentStatus = "uploaded"
	// DocStatusProcessing 文档处理中
	DocStatusProcessing DocumentStatus = "processing"
	// DocStatusCompleted 文档处理完成
	DocStatusCompleted DocumentStatus = "completed"
	// DocStatusFailed 文档处理失败
	DocStatusFailed DocumentStatus = "failed"
)

// ProcessStage 文档处理阶段
type ProcessStage string

const (
	// StageExtracting 文本提取阶段
	StageExtracting ProcessStage = "extracting"
	// StageCleaning 文本清洗阶段
	StageCleaning ProcessStage = "cleaning"
	// StageAnalyzing AI分析阶段
	StageAnalyzing ProcessStage = "analyzing"
	// StageCompleted 处理完成
	StageCompleted ProcessStage = "completed"
)

// Document 文档数据模型
// 用于存储上传文档的元数据与处理状态
type Document struct {
	ID                  string         `gorm:"primaryKey"`        // 文档ID，主键
	FileName            string         `gorm:"not null"`          // 文件名
	ContentType         string         `gorm:"size:100"`          // MIME类型
	FilePath            string         `gorm:"not null"`          // 存储路径
	FileSize            int64          `gorm:"not null"`          // 文件大小（字节）
	Fingerprint         string         `gorm:"size:64;index"`     // 文件内容SHA-256指纹，用于去重
	PageCount           int            `gorm:"default:0"`         // PDF页数
	Language            string         `gorm:"size:8"`            // 检测到的语言（ko/en）
	LikelyScanned       bool           `gorm:"default:false"`     // 首页无可提取文本时标记为疑似扫描件
	Status              DocumentStatus `gorm:"not null;index"`    // 处理状态
	CurrentStage        ProcessStage   `gorm:"size:20"`           // 当前处理阶段
	CleanedText         string         `gorm:"type:text"`         // 清洗后的全文，供重新分析使用
	Error               string         `gorm:"type:text"`         // 错误信息
	UploadedAt          time.Time      `gorm:"not null;index"`    // 上传时间
	ProcessingStartedAt *time.Time     `gorm:""`                  // 处理开始时间
	ProcessedAt         *time.Time     `gorm:"index"`             // 处理完成时间
	UpdatedAt           time.Time      `gorm:"not null;index"`    // 更新时间
	Analyses            []Analysis     `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"` // 分析结果
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	// 如果上传时间为零值，设置为当前时间
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	// 设置更新时间
	d.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (d *Document) BeforeUpdate(tx *gorm.DB) (err error) {
	d.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Document) TableName() string {
	return "documents"
}

// CanTransitionTo 判断文档状态是否允许迁移到目标状态
// uploaded -> processing -> completed/failed；failed和completed可重新进入processing
func (d *Document) CanTransitionTo(target DocumentStatus) bool {
	switch d.Status {
	case DocStatusUploaded:
		return target == DocStatusProcessing
	case DocStatusProcessing:
		return target == DocStatusCompleted || target == DocStatusFailed
	case DocStatusCompleted, DocStatusFailed:
		return target == DocStatusProcessing
	default:
		return false
	}
}
