package middleware

import (
	"github.com/labstack/echo/v4"

	"taxonomy-editor/internal/pkg/authz"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/response"
	"taxonomy-editor/internal/pkg/xerrors"
)

// PermissionMiddlewareConfig 权限中间件配置
type PermissionMiddlewareConfig struct {
	// RequiredCapabilities 需要的能力列表（默认满足任意一个即可）
	RequiredCapabilities []string

	// RequireAll 是否需要满足所有能力
	RequireAll bool

	// Skipper 跳过中间件的条件函数（可选）
	Skipper func(c echo.Context) bool
}

// PermissionMiddleware 能力检查中间件 - 集成 Keto
// 使用方式：
//
//	admin.POST("/taxonomies/:taxonomy/terms/merge", h.MergeTerms,
//	    middleware.RequireCapability(checker, respWriter, logger, authz.CapabilityManageCategories))
func PermissionMiddleware(
	checker authz.Checker,
	respWriter response.Writer,
	logger log.Logger,
	config PermissionMiddlewareConfig,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			ctx := c.Request().Context()

			// 1. 获取当前用户（必须先经过 AuthMiddleware）
			userID, err := GetCurrentUserID(c)
			if err != nil {
				logger.WarnContext(ctx, "权限检查失败: 未找到用户信息")
				return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
					xerrors.CodeAuthenticationFailed,
					"未授权访问",
				))
			}

			if len(config.RequiredCapabilities) == 0 {
				return next(c)
			}

			// 2. 逐项检查
			granted := 0
			for _, capability := range config.RequiredCapabilities {
				allowed, err := checker.Can(ctx, userID, capability)
				if err != nil {
					logger.ErrorContext(ctx, "能力检查调用失败",
						log.String("user_id", userID),
						log.String("capability", capability),
						log.Err(err),
					)
					if config.RequireAll {
						return respWriter.WriteError(ctx, c.Response().Writer, xerrors.NewWithError(
							xerrors.CodeExternalServiceError,
							"权限检查失败",
							err,
						))
					}
					continue
				}
				if allowed {
					granted++
					if !config.RequireAll {
						break
					}
				} else if config.RequireAll {
					break
				}
			}

			ok := granted > 0
			if config.RequireAll {
				ok = granted == len(config.RequiredCapabilities)
			}
			if !ok {
				logger.WarnContext(ctx, "权限不足",
					log.String("user_id", userID),
					log.Any("required_capabilities", config.RequiredCapabilities),
				)
				return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
					xerrors.CodePermissionDenied,
					"权限不足: 需要以下权限之一: "+joinCapabilities(config.RequiredCapabilities),
				))
			}

			logger.DebugContext(ctx, "权限检查通过",
				log.String("user_id", userID),
				log.Any("required_capabilities", config.RequiredCapabilities),
			)
			return next(c)
		}
	}
}

// RequireCapability 快捷方法：需要单个能力
func RequireCapability(checker authz.Checker, respWriter response.Writer, logger log.Logger, capability string) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredCapabilities: []string{capability},
	})
}

// RequireAnyCapability 快捷方法：需要任意一个能力
func RequireAnyCapability(checker authz.Checker, respWriter response.Writer, logger log.Logger, capabilities ...string) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredCapabilities: capabilities,
	})
}

// RequireAllCapabilities 快捷方法：需要所有能力
func RequireAllCapabilities(checker authz.Checker, respWriter response.Writer, logger log.Logger, capabilities ...string) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredCapabilities: capabilities,
		RequireAll:           true,
	})
}

func joinCapabilities(caps []string) string {
	if len(caps) == 0 {
		return ""
	}
	result := caps[0]
	for i := 1; i < len(caps); i++ {
		result += ", " + caps[i]
	}
	return result
}
