package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linhai/battswap/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// path维度用路由模板(如/bookings/:id/exchange)而不是实际URL,
// 避免路径参数把标签基数打爆
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		if metrics.HTTPRequestsInProgress != nil {
			metrics.HTTPRequestsInProgress.Inc()
		}

		c.Next()

		if metrics.HTTPRequestsInProgress != nil {
			metrics.HTTPRequestsInProgress.Dec()
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, labels, time.Since(start).Seconds())

		labels["status"] = strconv.Itoa(c.Writer.Status())
		metrics.IncCounterVec(metrics.HTTPRequestsTotal, labels)
	}
}
