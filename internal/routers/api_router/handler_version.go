package api_router

import (
	"github.com/haierkeys/idea-inbox-service/internal/app"
	pkgapp "github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionHandler version info API router handler
// VersionHandler 版本信息 API 路由处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler creates VersionHandler instance
// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{Handler: NewHandler(a)}
}

// VersionResponse version payload
type VersionResponse struct {
	Name string `json:"name"`
	pkgapp.VersionInfo
}

// ServerVersion retrieves server version information
// @Summary Get server version info
// @Description Get current server software version, Git tag, and build time
// @Tags System
// @Produce json
// @Success 200 {object} VersionResponse "Success"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(VersionResponse{
		Name:        app.Name,
		VersionInfo: h.App.Version(),
	}))
}
