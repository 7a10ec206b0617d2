package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
)

// RequestIDMiddleware 请求 ID 中间件
// 优先复用客户端传入的 X-Request-ID,便于跨系统追踪
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		// 服务层只拿到 request 上下文,审计元数据必须挂在这里
		ctx := service.WithRequestMeta(c.Request.Context(), requestID, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
