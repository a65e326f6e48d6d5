package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"taxonomy-editor/internal/pkg/ctxkey"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/trace"

	"github.com/labstack/echo/v4"
)

const redacted = "***REDACTED***"

// LoggingConfig 访问日志配置
type LoggingConfig struct {
	SkipPaths []string

	// DetailedLog 额外记录 query、UA 和脱敏后的请求头
	DetailedLog bool

	// LogRequestBody 仅在 DetailedLog 打开时生效
	LogRequestBody bool
	MaxBodySize    int64

	SensitiveHeaders []string
}

// DefaultLoggingConfig 默认访问日志配置
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		SkipPaths:        []string{"/health", "/metrics", "/swagger/"},
		MaxBodySize:      8 * 1024,
		SensitiveHeaders: []string{"Authorization", "Cookie", "X-Api-Key"},
	}
}

// LoggingMiddleware 使用默认配置的访问日志
func LoggingMiddleware(logger log.Logger) echo.MiddlewareFunc {
	return LoggingMiddlewareWithConfig(logger, DefaultLoggingConfig())
}

// LoggingMiddlewareWithConfig 每个请求结束时输出一条访问日志
func LoggingMiddlewareWithConfig(logger log.Logger, config *LoggingConfig) echo.MiddlewareFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if shouldSkip(req.URL.Path, config.SkipPaths) {
				return next(c)
			}

			start := time.Now()
			var body string
			if config.DetailedLog && config.LogRequestBody {
				body = captureBody(c, config.MaxBodySize)
			}

			err := next(c)

			ctx := c.Request().Context()
			fields := []any{
				log.String("method", req.Method),
				log.String("route", c.Path()),
				log.Int("status", c.Response().Status),
				log.Duration("duration", time.Since(start)),
				log.Int64("response_size", c.Response().Size),
				log.String("client_ip", c.RealIP()),
				log.String("trace_id", trace.GetTraceID(ctx)),
			}
			if taxonomy := c.Param("taxonomy"); taxonomy != "" {
				fields = append(fields, log.String("taxonomy", taxonomy))
			}
			if userID := ctxkey.GetString(ctx, ctxkey.UserID); userID != "" {
				fields = append(fields, log.String("user_id", userID))
			}
			if config.DetailedLog {
				if req.URL.RawQuery != "" {
					fields = append(fields, log.String("query", req.URL.RawQuery))
				}
				fields = append(fields,
					log.String("user_agent", req.UserAgent()),
					log.Any("headers", sanitizeHeaders(req.Header, config.SensitiveHeaders)),
				)
				if body != "" {
					fields = append(fields, log.String("request_body", body))
				}
			}

			status := c.Response().Status
			switch {
			case err != nil:
				fields = append(fields, log.Any("error", err))
				logger.ErrorContext(ctx, "请求处理出错", fields...)
			case status >= 500:
				logger.ErrorContext(ctx, "请求完成", fields...)
			case status >= 400:
				logger.WarnContext(ctx, "请求完成", fields...)
			default:
				logger.InfoContext(ctx, "请求完成", fields...)
			}
			return err
		}
	}
}

func shouldSkip(path string, skipPaths []string) bool {
	for _, p := range skipPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// sanitizeHeaders 每个 header 只保留第一个值，敏感 header 脱敏
func sanitizeHeaders(headers map[string][]string, sensitive []string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) == 0 {
			continue
		}
		result[k] = v[0]
		for _, s := range sensitive {
			if strings.EqualFold(k, s) {
				result[k] = redacted
				break
			}
		}
	}
	return result
}

// captureBody 读取前 maxSize 字节用于日志，处理器仍能读到完整请求体
func captureBody(c echo.Context, maxSize int64) string {
	req := c.Request()
	if req.Body == nil || maxSize <= 0 {
		return ""
	}

	head, err := io.ReadAll(io.LimitReader(req.Body, maxSize))
	req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), req.Body), Closer: req.Body}
	if err != nil {
		return ""
	}

	body := string(head)
	if int64(len(head)) >= maxSize {
		body += "...(truncated)"
	}
	return body
}

type readCloser struct {
	io.Reader
	io.Closer
}
