package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"blog/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit 按客户端 IP 和路由限流，限流后端异常时放行
func (h *HTTPHandler) RateLimit(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		decision, err := h.limiter.Allow(ctx, "ip:"+c.ClientIP()+":"+route)
		if err != nil {
			logrus.WithError(err).WithField("route", route).Warn("rate limiter unavailable, allowing request")
			h.metrics.RateLimiterError()
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			h.metrics.RateLimited(route)
			logrus.WithFields(logrus.Fields{
				"route":     route,
				"client_ip": c.ClientIP(),
			}).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, APIError{
				Code:    ErrCodeRateLimited,
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger 记录每个请求的结构化访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if user := CurrentUser(c); user != nil {
			entry = entry.WithField("user_id", user.ID)
		}
		if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
			entry = entry.WithField("trace_id", traceID)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request completed")
		case status >= http.StatusBadRequest:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Health 健康检查，顺带探测数据库
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.repo.CountUsers(ctx); err != nil {
		logrus.WithError(err).Error("health check failed")
		ServiceUnavailable(c, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
