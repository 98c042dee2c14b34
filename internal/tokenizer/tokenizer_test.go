package tokenizer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// TestEstimateCounter 测试估算计数器
func TestEstimateCounter(t *testing.T) {
	counter := &EstimateCounter{}

	assert.Equal(t, 0, counter.Count(""))
	assert.Equal(t, 0, counter.Count("abc"))
	assert.Equal(t, 2, counter.Count("abcdefgh"))
	assert.Equal(t, 25, counter.Count(string(make([]byte, 100))))
}

// TestNewTiktokenCounter_InvalidEncoding 测试未知编码返回错误
func TestNewTiktokenCounter_InvalidEncoding(t *testing.T) {
	counter, err := NewTiktokenCounter("no-such-encoding")
	assert.Error(t, err)
	assert.Nil(t, counter)
}

// TestNewCounter_FallsBackOnError 测试编码加载失败时回退到估算计数器
func TestNewCounter_FallsBackOnError(t *testing.T) {
	logger := logrus.New()
	counter := NewCounter("no-such-encoding", logger)

	assert.IsType(t, &EstimateCounter{}, counter)
	assert.Equal(t, 3, counter.Count("twelve chars"))
}

// TestNewCounter_NilLogger 测试logger为nil时不会panic
func TestNewCounter_NilLogger(t *testing.T) {
	counter := NewCounter("no-such-encoding", nil)
	assert.NotNil(t, counter)
}
