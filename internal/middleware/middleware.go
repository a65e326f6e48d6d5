package middleware

import (
	"github.com/labstack/echo/v4"

	"taxonomy-editor/internal/pkg/i18n"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/response"
	"taxonomy-editor/internal/pkg/trace"
)

// Config 全局中间件配置
type Config struct {
	Logger     log.Logger
	RespWriter response.Writer
	// Logging 为空时使用 DefaultLoggingConfig
	Logging *LoggingConfig
	// DisableRateLimit 测试环境关闭限流
	DisableRateLimit bool
}

// Standard 返回管理后台的全局中间件链，顺序即执行顺序
func Standard(cfg Config) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{
		RecoveryMiddleware(cfg.RespWriter, cfg.Logger),
		trace.Middleware(),
		i18n.Middleware(),
		metrics.Middleware(),
		LoggingMiddlewareWithConfig(cfg.Logger, cfg.Logging),
		ErrorMiddleware(cfg.RespWriter, cfg.Logger),
		CORSMiddleware(),
		SecurityMiddleware(),
	}
	if !cfg.DisableRateLimit {
		chain = append(chain, RateLimitMiddleware())
	}
	return chain
}
