package middleware

import (
	"context"

	"github.com/haierkeys/idea-inbox-service/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DefaultTraceIDHeader 默认的 Trace ID 请求头名称
	DefaultTraceIDHeader = "X-Trace-ID"
	// TraceIDKey Context 中存储 Trace ID 的键
	TraceIDKey = app.TraceIDKey
)

type traceIDCtxKey struct{}

// TraceConfig 追踪中间件配置
type TraceConfig struct {
	Enabled bool
	Header  string
}

// TraceMiddleware 创建请求追踪中间件
// 功能：
// 1. 从请求头获取或生成唯一的 Trace ID
// 2. 将 Trace ID 注入到 gin.Context 和 request.Context
// 3. 在响应头中返回 Trace ID
func TraceMiddleware(cfg TraceConfig) gin.HandlerFunc {
	headerName := cfg.Header
	if headerName == "" {
		headerName = DefaultTraceIDHeader
	}

	return func(c *gin.Context) {
		// 检查是否启用追踪
		if !cfg.Enabled {
			c.Next()
			return
		}

		// 尝试从请求头获取 Trace ID
		traceID := c.GetHeader(headerName)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		// 存储到 gin.Context
		c.Set(TraceIDKey, traceID)

		// 注入到 request.Context
		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))

		// 添加到响应头
		c.Header(headerName, traceID)

		c.Next()
	}
}

// WithTraceID 将 Trace ID 写入 context.Context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDCtxKey{}, traceID)
}

// GetTraceID 从 context.Context 获取 Trace ID
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// GetTraceIDFromGin 从 gin.Context 获取 Trace ID
func GetTraceIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(TraceIDKey)
}
