package middleware

import (
	"orgchart_go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 作为 gin.HandlerFunc，记录每个请求的方法、路径、状态码和耗时。
// 导入接口会上传整个工作簿，请求体可能有几兆，因此这里只记元信息、不落请求体。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		log.Infow("HTTP request",
			"latency", time.Since(startTime),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
}
