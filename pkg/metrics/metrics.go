// Package metrics 提供基于Prometheus的指标收集
//
// 指标分两类:
//   - HTTP指标:请求数、耗时、在途请求数(由gin中间件记录)
//   - 换电业务指标:换电次数、失败数、耗时、交换电池块数(由执行器记录)
//
// 使用方式:启动时调用一次InitMetrics(),通过promhttp在/metrics暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化(防止重复注册panic)
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时(秒)
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 换电业务指标

	// SwapsTotal 换电成功总数
	// 标签:variant(walk_in/booking/first_pickup)
	SwapsTotal *prometheus.CounterVec

	// SwapsFailedTotal 换电失败总数
	// 标签:variant、reason(业务错误码字符串)
	SwapsFailedTotal *prometheus.CounterVec

	// SwapDuration 换电事务耗时(秒)
	SwapDuration prometheus.Histogram

	// BatteriesExchangedTotal 累计交换电池块数
	BatteriesExchangedTotal prometheus.Counter

	// SwapsInProgress 正在执行的换电事务数
	SwapsInProgress prometheus.Gauge

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签:exchange、routing_key
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次,使用promauto注册到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时(秒)",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	SwapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaps_total",
			Help: "换电成功总数",
		},
		[]string{"variant"},
	)

	SwapsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaps_failed_total",
			Help: "换电失败总数",
		},
		[]string{"variant", "reason"},
	)

	SwapDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "swap_duration_seconds",
			Help: "换电事务耗时(秒)",
			// 换电事务涉及多行锁竞争,桶上限给到行锁超时量级
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	BatteriesExchangedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batteries_exchanged_total",
			Help: "累计交换电池块数",
		},
	)

	SwapsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swaps_in_progress",
			Help: "正在执行的换电事务数",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}

// IncCounterVec 递增CounterVec(带标签)
// 未InitMetrics时为空操作,业务代码不用关心指标是否启用
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值(带标签)
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
