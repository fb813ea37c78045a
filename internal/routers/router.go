package routers

import (
	"net/http"

	"github.com/haierkeys/idea-inbox-service/internal/app"
	"github.com/haierkeys/idea-inbox-service/internal/metrics"
	"github.com/haierkeys/idea-inbox-service/internal/middleware"
	"github.com/haierkeys/idea-inbox-service/internal/routers/api_router"
	"github.com/haierkeys/idea-inbox-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// CaptureRoute rate limited capture endpoint, keyed as the method limiter sees it
const CaptureRoute = http.MethodPost + " /api/notes/capture"

// NewRouter 创建 HTTP API 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	// 捕获接口会调用外部模型，单独限流
	methodLimiters := limiter.NewMethodLimiter()
	if cfg.App.CaptureRateCapacity > 0 {
		methodLimiters.AddBuckets(limiter.BucketRule{
			Key:          CaptureRoute,
			FillInterval: cfg.GetCaptureRateInterval(),
			Capacity:     cfg.App.CaptureRateCapacity,
			Quantum:      1,
		})
	}

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(middleware.TraceConfig{Enabled: cfg.Tracer.Enabled, Header: cfg.Tracer.Header}))
		api.Use(metrics.Middleware())
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		api.GET("/notes", noteHandler.List)
		api.POST("/notes", noteHandler.Create)
		api.DELETE("/notes", noteHandler.DeleteAll)
		api.POST("/notes/capture", noteHandler.Capture)
		api.GET("/notes/export", noteHandler.Export)
		api.DELETE("/notes/:id", noteHandler.Delete)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
