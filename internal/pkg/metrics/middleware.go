// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"net/http"
	"time"

	"taxonomy-editor/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxTrackedRoutes 路由标签上限
const maxTrackedRoutes = 200

var routeTracker = NewPathLimitTracker(maxTrackedRoutes)

// Middleware Echo 中间件 - 记录 HTTP 指标，并把 HTTP 方法写入 context
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := ctxkey.WithValue(req.Context(), ctxkey.HTTPMethod, req.Method)
			c.SetRequest(req.WithContext(ctx))

			if IsHealthCheckEndpoint(req.URL.Path) {
				return next(c)
			}

			// e.Use 注册的中间件在路由匹配之后执行，c.Path() 为路由模板
			route := routeTracker.TrackPath(c.Path())
			c.Response().Header().Set("X-Route-Pattern", route)

			service := GetServiceName()
			m := DefaultHTTPMetrics
			m.IncInProgress(service)
			start := time.Now()

			err := next(c)

			m.DecInProgress(service)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			m.RecordRequest(service, route, req.Method, status, time.Since(start))
			return err
		}
	}
}

// Handler 返回 Prometheus metrics HTTP 处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoHandler Echo 框架的 Prometheus metrics 处理器
func EchoHandler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	}
}
