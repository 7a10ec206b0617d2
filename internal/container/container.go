package container

import (
	"fmt"
	"time"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/advisory"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/auth"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/database"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/metrics"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/repository"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/service"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务、客户端等
type Container struct {
	db        *gorm.DB
	logger    *logrus.Logger
	validator *auth.TokenValidator
	advisor   *advisory.Client
	hub       *websocket.Hub
	collector *metrics.Collector

	productService   service.ProductService
	alertService     service.AlertService
	approvalService  service.ApprovalService
	dashboardService service.DashboardService
	routeService     service.RouteService
	carbonService    service.CarbonService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	// 初始化数据库（带重试机制）
	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewContainerWithDB(cfg, logger, db)
}

// NewContainerWithDB 基于已有数据库连接创建容器,测试时注入 SQLite
func NewContainerWithDB(cfg *config.Config, logger *logrus.Logger, db *gorm.DB) (*Container, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// Token 验证器
	validator := auth.NewTokenValidator(cfg.Auth.JWTSecret, "ecotrack")

	// 洞察服务客户端,不可达时自动回退到确定性生成
	advisor := advisory.NewClient(
		cfg.Advisory.URL,
		cfg.Advisory.Model,
		time.Duration(cfg.Advisory.TimeoutSeconds)*time.Second,
		logger,
	)

	// WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 指标采集器,周期刷新连接池与风险分布
	collector := metrics.NewCollector(db, 15*time.Second)
	collector.Start()

	// 仓储层
	productRepo := repository.NewProductRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	routeRepo := repository.NewRouteRepository(db)
	carbonRepo := repository.NewCarbonRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// 服务层
	auditService := service.NewAuditLogService(auditRepo)
	sampler := service.NewSimulatedEnvironment(time.Now().UnixNano())
	unitPrice := decimal.NewFromFloat(cfg.Valuation.UnitPrice)

	productService := service.NewProductService(productRepo)
	alertService := service.NewAlertService(db, sampler, advisor, auditService, hub, unitPrice, logger)
	approvalService := service.NewApprovalService(approvalRepo, auditService, logger)
	dashboardService := service.NewDashboardService(db, advisor)
	routeService := service.NewRouteService(routeRepo, carbonRepo, approvalRepo, advisor)
	carbonService := service.NewCarbonService(carbonRepo, approvalRepo)

	return &Container{
		db:               db,
		logger:           logger,
		validator:        validator,
		advisor:          advisor,
		hub:              hub,
		collector:        collector,
		productService:   productService,
		alertService:     alertService,
		approvalService:  approvalService,
		dashboardService: dashboardService,
		routeService:     routeService,
		carbonService:    carbonService,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger {
	return c.logger
}

// TokenValidator 获取 Token 验证器
func (c *Container) TokenValidator() *auth.TokenValidator {
	return c.validator
}

// AdvisoryClient 获取洞察服务客户端
func (c *Container) AdvisoryClient() *advisory.Client {
	return c.advisor
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// ProductService 获取产品服务
func (c *Container) ProductService() service.ProductService {
	return c.productService
}

// AlertService 获取告警服务
func (c *Container) AlertService() service.AlertService {
	return c.alertService
}

// ApprovalService 获取审批服务
func (c *Container) ApprovalService() service.ApprovalService {
	return c.approvalService
}

// DashboardService 获取仪表盘服务
func (c *Container) DashboardService() service.DashboardService {
	return c.dashboardService
}

// RouteService 获取路线服务
func (c *Container) RouteService() service.RouteService {
	return c.routeService
}

// CarbonService 获取碳排放服务
func (c *Container) CarbonService() service.CarbonService {
	return c.carbonService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.hub != nil {
		c.hub.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
