package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxonomy-editor/internal/pkg/authz"
	"taxonomy-editor/internal/pkg/ctxkey"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/response"
	"taxonomy-editor/internal/pkg/trace"
	"taxonomy-editor/internal/pkg/xerrors"
)

type errChecker struct{ err error }

func (e errChecker) Can(_ context.Context, _, _ string) (bool, error) { return false, e.err }

func newWriter() response.Writer {
	return response.NewResponseHandler(log.Discard(), "test")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(AuthMiddleware(newWriter(), log.Discard()))
	e.GET("/me", func(c echo.Context) error {
		id, err := GetCurrentUserID(c)
		if err != nil {
			return err
		}
		assert.Equal(t, id, ctxkey.GetString(c.Request().Context(), ctxkey.UserID))
		return c.String(http.StatusOK, id)
	})

	t.Run("缺少用户头", func(t *testing.T) {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.EqualValues(t, xerrors.CodeAuthenticationFailed, decode(t, rec)["code"])
	})

	t.Run("注入用户", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-User-ID", "7")
		rec := serve(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", rec.Body.String())
	})
}

func TestRequireCapability(t *testing.T) {
	checker := authz.StaticChecker{"1": {authz.CapabilityManageCategories}}
	writer := newWriter()

	e := echo.New()
	e.Use(AuthMiddleware(writer, log.Discard()))
	e.POST("/merge", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireCapability(checker, writer, log.Discard(), authz.CapabilityManageCategories))

	tests := []struct {
		name   string
		user   string
		status int
	}{
		{"已授权", "1", http.StatusNoContent},
		{"未授权", "2", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/merge", nil)
			req.Header.Set("X-User-ID", tt.user)
			rec := serve(e, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPermissionMiddleware_CheckerFailure(t *testing.T) {
	writer := newWriter()
	checker := errChecker{err: errors.New("keto down")}

	tests := []struct {
		name       string
		requireAll bool
		status     int
	}{
		{"任意一个时按拒绝处理", false, http.StatusForbidden},
		{"全部满足时按服务错误处理", true, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(AuthMiddleware(writer, log.Discard()))
			e.POST("/edit", func(c echo.Context) error {
				return c.NoContent(http.StatusNoContent)
			}, PermissionMiddleware(checker, writer, log.Discard(), PermissionMiddlewareConfig{
				RequiredCapabilities: []string{authz.CapabilityEditPosts},
				RequireAll:           tt.requireAll,
			}))

			req := httptest.NewRequest(http.MethodPost, "/edit", nil)
			req.Header.Set("X-User-ID", "1")
			assert.Equal(t, tt.status, serve(e, req).Code)
		})
	}
}

func TestRequireAllCapabilities(t *testing.T) {
	writer := newWriter()
	checker := authz.StaticChecker{"1": {authz.CapabilityEditPosts}}

	e := echo.New()
	e.Use(AuthMiddleware(writer, log.Discard()))
	e.POST("/x", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireAllCapabilities(checker, writer, log.Discard(), authz.CapabilityEditPosts, authz.CapabilityManageCategories))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-User-ID", "1")
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)
}

func TestErrorMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(ErrorMiddleware(newWriter(), log.Discard()))
	e.GET("/app", func(c echo.Context) error {
		return xerrors.NewInvalidTaxonomyError("nope")
	})
	e.GET("/echo", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})
	e.GET("/plain", func(c echo.Context) error {
		return errors.New("boom")
	})

	tests := []struct {
		path   string
		status int
		code   xerrors.ErrorCode
	}{
		{"/app", http.StatusBadRequest, xerrors.CodeInvalidTaxonomy},
		{"/echo", http.StatusNotFound, xerrors.CodeResourceNotFound},
		{"/plain", http.StatusInternalServerError, xerrors.CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(e, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.EqualValues(t, tt.code, decode(t, rec)["code"])
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RecoveryMiddleware(newWriter(), log.Discard()))
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.EqualValues(t, xerrors.CodeInternalError, decode(t, rec)["code"])
}

func TestStandardChain(t *testing.T) {
	e := echo.New()
	e.Use(Standard(Config{
		Logger:           log.Discard(),
		RespWriter:       newWriter(),
		DisableRateLimit: true,
	})...)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, trace.GetTraceID(c.Request().Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", "trace-abc")
	rec := serve(e, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-abc", rec.Body.String())
	assert.Equal(t, "trace-abc", rec.Header().Get("X-Trace-Id"))
}

func TestShouldSkip(t *testing.T) {
	assert.True(t, shouldSkip("/health", DefaultLoggingConfig().SkipPaths))
	assert.False(t, shouldSkip("/admin/taxonomies", DefaultLoggingConfig().SkipPaths))
}

func TestSanitizeHeaders(t *testing.T) {
	got := sanitizeHeaders(map[string][]string{
		"Authorization": {"Bearer x"},
		"Accept":        {"application/json"},
	}, DefaultLoggingConfig().SensitiveHeaders)
	assert.Equal(t, "***REDACTED***", got["Authorization"])
	assert.Equal(t, "application/json", got["Accept"])
}

func TestLoggingMiddleware_BodyStaysReadable(t *testing.T) {
	payload := `{"term_ids":[` + strings.Repeat("1,", 100) + `2]}`

	e := echo.New()
	e.Use(LoggingMiddlewareWithConfig(log.Discard(), &LoggingConfig{
		DetailedLog:    true,
		LogRequestBody: true,
		MaxBodySize:    16,
	}))
	e.POST("/api/v1/admin/taxonomies/:taxonomy/terms/bulk-merge", func(c echo.Context) error {
		data, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, string(data))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/taxonomies/post_tag/terms/bulk-merge", strings.NewReader(payload))
	rec := serve(e, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.String())
}
