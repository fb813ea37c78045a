package middleware

import (
	"github.com/haierkeys/idea-inbox-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// AppInfoWithConfig 在上下文中记录应用信息（支持依赖注入）
func AppInfoWithConfig(name, version string) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))

		c.Next()
	}
}
