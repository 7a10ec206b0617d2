package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/advisory"
	"gorm.io/gorm"
)

// HealthController 健康检查控制器
type HealthController struct {
	db      *gorm.DB
	advisor *advisory.Client
}

// NewHealthController 创建健康检查控制器
func NewHealthController(db *gorm.DB, advisor *advisory.Client) *HealthController {
	return &HealthController{
		db:      db,
		advisor: advisor,
	}
}

// Check 健康检查
// 洞察服务不可达只降级为 degraded,请求仍可由回退路径服务
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	// 检查数据库连接
	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	// 检查洞察服务连接
	if c.advisor != nil {
		if err := c.advisor.Reachable(ctx.Request.Context()); err != nil {
			if status == "healthy" {
				status = "degraded"
			}
			checks["advisory"] = "unreachable, fallback insights active"
		} else {
			checks["advisory"] = "healthy"
		}
	} else {
		checks["advisory"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// checkDatabase 检查数据库连接
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
