// File: internal/pkg/metrics/error_metrics.go
package metrics

import (
	"strconv"
	"strings"

	"taxonomy-editor/internal/pkg/xerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorMetrics 错误响应指标
type ErrorMetrics struct {
	ErrorsByCode  *prometheus.CounterVec
	HTTPResponses *prometheus.CounterVec
}

var (
	// DefaultErrorMetrics 默认的错误指标实例
	DefaultErrorMetrics *ErrorMetrics
)

func init() {
	DefaultErrorMetrics = NewErrorMetrics(Namespace)
}

// NewErrorMetrics 创建新的错误指标收集器
func NewErrorMetrics(namespace string) *ErrorMetrics {
	return NewErrorMetricsWithRegistry(namespace, GetRegisterer())
}

// NewErrorMetricsWithRegistry 创建新的错误指标收集器（使用自定义注册表）
func NewErrorMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ErrorMetrics {
	factory := promauto.With(registerer)

	return &ErrorMetrics{
		ErrorsByCode: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"service", "method", "code", "category", "level"},
		),
		HTTPResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_responses_total",
				Help:      "Total number of HTTP responses by status code",
			},
			[]string{"service", "status_code", "method"},
		),
	}
}

// RecordError 记录错误指标
func (m *ErrorMetrics) RecordError(appErr *xerrors.AppError, statusCode int, method, service string) {
	if appErr == nil {
		return
	}
	service = normalizeServiceName(service)
	method = normalizeMethod(method)

	m.ErrorsByCode.WithLabelValues(
		service,
		method,
		strconv.Itoa(appErr.Code.ToInt()),
		appErr.Category,
		appErr.Level.String(),
	).Inc()
	m.HTTPResponses.WithLabelValues(service, strconv.Itoa(statusCode), method).Inc()
}

// RecordHTTPResponse 记录 HTTP 响应指标（成功响应）
func (m *ErrorMetrics) RecordHTTPResponse(statusCode int, method, service string) {
	m.HTTPResponses.WithLabelValues(normalizeServiceName(service), strconv.Itoa(statusCode), normalizeMethod(method)).Inc()
}

func normalizeMethod(method string) string {
	if method == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(method)
}
