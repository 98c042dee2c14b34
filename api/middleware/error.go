package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handoc-ai/doc-analysis-system/api/model"
)

// 错误类型标识，用于日志归类
const (
	ErrorTypeValidation = "VALIDATION_ERROR" // 输入验证错误
	ErrorTypeNotFound   = "NOT_FOUND_ERROR"  // 资源不存在
	ErrorTypeInternal   = "INTERNAL_ERROR"   // 内部错误
)

// AppError 带HTTP状态码的应用错误
// 处理器通过HandleError上报，由ErrorMiddleware统一转换为响应
type AppError struct {
	Type    string // 错误类型
	Message string // 返回给客户端的消息
	Details string // 仅记录到日志的细节
	Code    int    // HTTP状态码
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError 创建内部错误
func NewInternalError(message string, details ...string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// HandleError 处理器中上报错误的辅助函数
// 实际响应由ErrorMiddleware在请求结束时生成
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}

// ErrorMiddleware 统一错误处理中间件
// 恢复panic并把c.Errors中的错误转换成统一的JSON响应
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"error": r,
					"stack": string(debug.Stack()),
					"path":  c.Request.URL.Path,
				}).Error("Panic recovered in API request")

				resp := model.NewErrorResponse(
					http.StatusInternalServerError,
					"An unexpected error occurred",
				)
				if gin.Mode() == gin.DebugMode {
					resp.Message = fmt.Sprintf("Panic: %v", r)
				}
				resp.TraceID = traceIDFrom(c)

				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		traceID := traceIDFrom(c)

		var appErr *AppError
		if errors.As(err, &appErr) {
			log.WithFields(logrus.Fields{
				"error_type": appErr.Type,
				"details":    appErr.Details,
				"trace_id":   traceID,
				"path":       c.Request.URL.Path,
			}).Error(appErr.Message)

			resp := model.NewErrorResponse(appErr.Code, appErr.Message)
			resp.TraceID = traceID
			c.AbortWithStatusJSON(appErr.Code, resp)
			return
		}

		// 未分类的错误一律按内部错误处理
		log.WithFields(logrus.Fields{
			"trace_id": traceID,
			"path":     c.Request.URL.Path,
		}).Error(err.Error())

		resp := model.NewErrorResponse(
			http.StatusInternalServerError,
			"Internal server error",
		)
		if gin.Mode() == gin.DebugMode {
			resp.Message = err.Error()
		}
		resp.TraceID = traceID

		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	}
}

// traceIDFrom 读取请求的追踪ID
func traceIDFrom(c *gin.Context) string {
	if v, ok := c.Get("TraceID"); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
