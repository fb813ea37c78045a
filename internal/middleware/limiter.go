package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/code"
	"github.com/haierkeys/idea-inbox-service/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// RateLimiter rejects requests whose route bucket is empty with 429 and a Retry-After hint.
// Routes without a bucket pass through.
// RateLimiter 令牌耗尽时返回 429 并设置 Retry-After，未配置令牌桶的路由直接放行
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}

		// 每秒补充的令牌数，换算为下一个令牌的等待秒数
		if rate := bucket.Rate(); rate > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/rate))))
		}
		app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
		c.Abort()
	}
}
