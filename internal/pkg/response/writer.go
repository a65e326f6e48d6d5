package response

import (
	"context"
	"errors"
	"net/http"

	"taxonomy-editor/internal/pkg/ctxkey"
	"taxonomy-editor/internal/pkg/i18n"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/trace"
	"taxonomy-editor/internal/pkg/xerrors"
)

// Writer 统一的响应写入接口
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) *ResponseHandler {
	return &ResponseHandler{
		logger:      logger,
		environment: environment,
	}
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := Success(&data)
	resp.Message = i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx))
	resp.TraceId = trace.GetTraceID(ctx)
	if data == nil {
		resp.Data = nil
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// WriteError 写入错误响应，非 AppError 统一按内部错误处理
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	var appErr *xerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = xerrors.NewWithError(xerrors.CodeInternalError, "内部服务错误", err)
	}

	status := xerrors.GetHTTPStatus(appErr.Code)
	traceID := trace.GetTraceID(ctx)
	if traceID != "" {
		appErr.WithTraceID(traceID)
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", log.Any("app_error", appErr))
	} else {
		h.logger.DebugContext(ctx, "request rejected", log.Any("app_error", appErr))
	}

	metrics.DefaultErrorMetrics.RecordError(appErr, status, ctxkey.GetString(ctx, ctxkey.HTTPMethod), metrics.GetServiceName())

	resp := Error[EmptyData](appErr.Code.ToInt(), h.localizedMessage(ctx, appErr), "")
	resp.TraceId = traceID
	if h.environment != "production" && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}
	writeJSON(w, status, resp)
	return nil
}

// WriteJSON 直接写入 JSON（不包装 ResponseResult）
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	writeJSON(w, statusCode, data)
	return nil
}

// localizedMessage 默认语言下保留 AppError 自带的具体信息，其他语言使用翻译表
func (h *ResponseHandler) localizedMessage(ctx context.Context, appErr *xerrors.AppError) string {
	lang := i18n.GetLanguage(ctx)
	if lang == i18n.DefaultLanguage && appErr.Message != "" {
		return appErr.Message
	}
	return i18n.GetErrorMessage(appErr.Code, lang)
}
