package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/sirupsen/logrus"
)

// DefaultEncoding 默认的tiktoken编码名称
const DefaultEncoding = "cl100k_base"

// Counter 计算文本token数量的接口
type Counter interface {
	// Count 返回文本的token数量
	Count(text string) int
}

// TiktokenCounter 基于tiktoken的token计数器
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter 创建tiktoken计数器
// 编码加载失败时返回错误，调用方应回退到估算计数器
func NewTiktokenCounter(encodingName string) (*TiktokenCounter, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	return &TiktokenCounter{encoding: encoding}, nil
}

// Count 返回文本的token数量
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// EstimateCounter 估算计数器
// 按平均每4个字符一个token估算，用于tiktoken不可用时的回退
type EstimateCounter struct{}

// Count 返回估算的token数量
func (c *EstimateCounter) Count(text string) int {
	return len(text) / 4
}

// NewCounter 创建token计数器
// 优先使用tiktoken，加载失败时回退到估算
func NewCounter(encodingName string, logger *logrus.Logger) Counter {
	counter, err := NewTiktokenCounter(encodingName)
	if err != nil {
		if logger != nil {
			logger.Warnf("Failed to load tiktoken encoding, falling back to estimation: %v", err)
		}
		return &EstimateCounter{}
	}
	return counter
}
