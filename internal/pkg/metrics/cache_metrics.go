package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics 词条关联缓存命中情况
type CacheMetrics struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	evicted *prometheus.CounterVec
}

// DefaultCacheMetrics 默认实例
var DefaultCacheMetrics *CacheMetrics

func init() {
	DefaultCacheMetrics = NewCacheMetrics(Namespace)
}

// NewCacheMetrics 使用全局 Registerer 创建
func NewCacheMetrics(namespace string) *CacheMetrics {
	return NewCacheMetricsWithRegistry(namespace, GetRegisterer())
}

// NewCacheMetricsWithRegistry 使用自定义注册表创建
func NewCacheMetricsWithRegistry(namespace string, reg prometheus.Registerer) *CacheMetrics {
	factory := promauto.With(reg)
	return &CacheMetrics{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "term_cache",
			Name:      "hits_total",
			Help:      "Object term cache hits by taxonomy",
		}, []string{"taxonomy"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "term_cache",
			Name:      "misses_total",
			Help:      "Object term cache misses by taxonomy",
		}, []string{"taxonomy"}),
		evicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "term_cache",
			Name:      "evicted_total",
			Help:      "Object term cache entries removed by reason",
		}, []string{"taxonomy", "reason"}),
	}
}

// IncHit 命中
func (m *CacheMetrics) IncHit(taxonomy string) {
	m.hits.WithLabelValues(taxonomy).Inc()
}

// IncMiss 未命中
func (m *CacheMetrics) IncMiss(taxonomy string) {
	m.misses.WithLabelValues(taxonomy).Inc()
}

// AddEvicted 主动失效
func (m *CacheMetrics) AddEvicted(taxonomy, reason string, n int) {
	if n <= 0 {
		return
	}
	m.evicted.WithLabelValues(taxonomy, reason).Add(float64(n))
}
