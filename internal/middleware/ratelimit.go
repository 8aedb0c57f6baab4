package middleware

import (
	"net/http"
	"nfc-redirect-platform/internal/config"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 全局限流中间件
func RateLimit(limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled || limitConfig.Requests <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := int(limitConfig.Burst)
	if burst <= 0 {
		burst = 1
	}
	// requests_per_minute 转换为令牌间隔
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(limitConfig.Requests)), burst)

	return func(c *gin.Context) {
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please retry later",
			})
			return
		}

		c.Next()
	}
}
