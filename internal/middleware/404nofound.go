package middleware

import (
	"github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound answers unknown routes with the error envelope, echoing the route that missed.
// NoFound 未知路由返回 404，并在 details 中带上请求的路由
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToResponse(code.ErrorNotFoundAPI.WithDetails(c.Request.Method + " " + c.Request.URL.Path))
		c.Abort()
	}
}
