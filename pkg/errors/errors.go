package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/idea-inbox-service/internal/middleware"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`

	httpStatus int
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus HTTP 状态码
func (e *AppError) HTTPStatus() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		Cause:      cause,
		Timestamp:  time.Now(),
		httpStatus: c.StatusCode(),
	}
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)

	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.TraceID = traceID
		c.AbortWithStatusJSON(appErr.HTTPStatus(), appErr)
		return
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.AbortWithStatusJSON(codeErr.StatusCode(), &AppError{
			Code:      codeErr.Code(),
			Message:   codeErr.Msg(),
			Details:   codeErr.Details(),
			TraceID:   traceID,
			Timestamp: time.Now(),
		})
		return
	}

	// 未知错误，返回内部错误
	c.AbortWithStatusJSON(http.StatusInternalServerError, &AppError{
		Code:      code.ErrorServerInternal.Code(),
		Message:   code.ErrorServerInternal.Msg(),
		TraceID:   traceID,
		Timestamp: time.Now(),
	})
}

// ErrorResponseWithCode 使用指定的 Code 对象返回错误响应
func ErrorResponseWithCode(c *gin.Context, codeErr *code.Code, cause error) {
	ErrorResponse(c, NewAppError(codeErr, cause))
}

// IsAppError 检查错误是否为 AppError 类型
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
