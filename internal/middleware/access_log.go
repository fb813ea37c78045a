package middleware

import (
	"time"

	"github.com/haierkeys/idea-inbox-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogWithLogger 创建访问日志中间件（支持依赖注入）
func AccessLogWithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		startTime := time.Now()
		c.Next()

		timeCost := time.Since(startTime)

		fields := []zap.Field{
			zap.String(logger.FieldMethod, c.Request.Method),
			zap.String("url", path+"?"+query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration(logger.FieldDuration, timeCost),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
			zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		if c.Writer.Status() >= 500 {
			log.Warn(path, fields...)
			return
		}
		log.Info(path, fields...)
	}
}
