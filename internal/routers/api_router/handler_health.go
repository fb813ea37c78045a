package api_router

import (
	"context"
	"os"
	"time"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/service"
	pkgapp "github.com/haierkeys/idea-inbox-service/pkg/app"
	"github.com/haierkeys/idea-inbox-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// extractorCheckTimeout 提取服务探活超时
const extractorCheckTimeout = 3 * time.Second

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status       string  `json:"status"`       // "healthy" 或 "unhealthy"
	Version      string  `json:"version"`      // 服务版本号
	Uptime       float64 `json:"uptime"`       // 运行时间（秒）
	Database     string  `json:"database"`     // "connected" 或 "error"
	Extractor    bool    `json:"extractor"`    // 是否启用标题提取
	// ExtractorReachable 提取服务是否可达，仅在启用且支持探活时返回；不可达不影响整体健康状态
	ExtractorReachable *bool `json:"extractorReachable,omitempty"`
	PendingWrite int     `json:"pendingWrite"` // 写队列中等待的操作数
	MemoryRSS    uint64  `json:"memoryRss"`    // 进程常驻内存（字节）
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	res := HealthResponse{
		Status:    "healthy",
		Version:   h.App.Version().Version,
		Uptime:    time.Since(h.App.StartTime).Seconds(),
		Database:  "connected",
		Extractor: h.App.Config().Extractor.Enabled,
	}
	if wq := h.App.WriteQueue(); wq != nil {
		res.PendingWrite = wq.Pending()
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(c.Request.Context()); err == nil {
			res.MemoryRSS = mi.RSS
		}
	}

	if checker, ok := h.App.Extractor.(service.ExtractorHealthChecker); ok && res.Extractor {
		reachable := h.checkExtractor(c.Request.Context(), checker)
		res.ExtractorReachable = &reachable
	}

	// 检查数据库连接
	if err := h.App.PingDB(c.Request.Context()); err != nil {
		h.App.Logger().Warn("HealthHandler.Check database ping failed", zap.Error(err))
		res.Status = "unhealthy"
		res.Database = "error"
		c.AbortWithStatusJSON(code.ErrorServiceUnhealthy.StatusCode(), res)
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}

func (h *HealthHandler) checkExtractor(ctx context.Context, checker service.ExtractorHealthChecker) bool {
	ctx, cancel := context.WithTimeout(ctx, extractorCheckTimeout)
	defer cancel()

	if err := checker.HealthCheck(ctx); err != nil {
		h.App.Logger().Warn("HealthHandler.Check extractor unreachable", zap.Error(err))
		return false
	}
	return true
}
