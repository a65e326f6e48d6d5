// File: internal/pkg/metrics/term_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 合并结果标签
const (
	MergeResultSuccess  = "success"
	MergeResultRejected = "rejected" // 校验未通过，没有开启事务
	MergeResultRollback = "rollback"
)

// TermMetrics 词条合并与维护指标
type TermMetrics struct {
	MergesTotal          *prometheus.CounterVec
	MergeDuration        *prometheus.HistogramVec
	TermsAbsorbedTotal   *prometheus.CounterVec
	AssociationsRepoints *prometheus.CounterVec
	CountRepairsTotal    *prometheus.CounterVec
	BulkEditsTotal       *prometheus.CounterVec
}

var (
	// DefaultTermMetrics 默认的词条指标实例
	DefaultTermMetrics *TermMetrics
)

// MergeBuckets 合并耗时 buckets（秒），大分类合并可能涉及上万条关联
var MergeBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

func init() {
	DefaultTermMetrics = NewTermMetrics(Namespace)
}

// NewTermMetrics 创建词条指标收集器
func NewTermMetrics(namespace string) *TermMetrics {
	return NewTermMetricsWithRegistry(namespace, GetRegisterer())
}

// NewTermMetricsWithRegistry 创建词条指标收集器（使用自定义注册表）
func NewTermMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *TermMetrics {
	factory := promauto.With(registerer)

	return &TermMetrics{
		MergesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "term_merges_total",
				Help:      "Total number of term merge requests by taxonomy and result",
			},
			[]string{"taxonomy", "result", "service"},
		),
		MergeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "term_merge_duration_seconds",
				Help:      "Term merge duration in seconds",
				Buckets:   MergeBuckets,
			},
			[]string{"taxonomy", "service"},
		),
		TermsAbsorbedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "terms_absorbed_total",
				Help:      "Total number of duplicate terms merged into a primary term",
			},
			[]string{"taxonomy", "service"},
		),
		AssociationsRepoints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "associations_repointed_total",
				Help:      "Total number of content associations moved to a primary term",
			},
			[]string{"taxonomy", "service"},
		),
		CountRepairsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "term_count_repairs_total",
				Help:      "Total number of term usage counts corrected by the consistency task",
			},
			[]string{"service"},
		),
		BulkEditsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_bulk_edits_total",
				Help:      "Total number of content bulk edit actions by action and result",
			},
			[]string{"action", "result", "service"},
		),
	}
}

// RecordMerge 记录一次合并请求
func (m *TermMetrics) RecordMerge(taxonomy, result string, absorbed, repointed int, duration time.Duration) {
	service := GetServiceName()
	m.MergesTotal.WithLabelValues(taxonomy, result, service).Inc()
	m.MergeDuration.WithLabelValues(taxonomy, service).Observe(duration.Seconds())
	if result != MergeResultSuccess {
		return
	}
	m.TermsAbsorbedTotal.WithLabelValues(taxonomy, service).Add(float64(absorbed))
	m.AssociationsRepoints.WithLabelValues(taxonomy, service).Add(float64(repointed))
}

// RecordCountRepairs 记录修正的使用次数数量
func (m *TermMetrics) RecordCountRepairs(n int) {
	if n <= 0 {
		return
	}
	m.CountRepairsTotal.WithLabelValues(GetServiceName()).Add(float64(n))
}

// RecordBulkEdit 记录批量编辑
func (m *TermMetrics) RecordBulkEdit(action string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	m.BulkEditsTotal.WithLabelValues(action, result, GetServiceName()).Inc()
}
