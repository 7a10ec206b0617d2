package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,缺省项回退到默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.ProductModel{},
			&model.AlertModel{},
			&model.ManagerApprovalModel{},
			&model.ManagerModel{},
			&model.DeliveryRouteModel{},
			&model.CarbonRecordModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb,NUMERIC 替代 decimal）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 products 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			product_type VARCHAR(64),
			storage_category VARCHAR(32) NOT NULL,
			shelf_life_days INTEGER NOT NULL,
			quantity REAL NOT NULL,
			unit VARCHAR(32),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	// 创建 alerts 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			risk_level VARCHAR(16) NOT NULL,
			details TEXT,
			days_left INTEGER NOT NULL,
			temperature REAL,
			humidity REAL,
			location VARCHAR(128),
			quantity VARCHAR(64),
			estimated_value NUMERIC(14,2),
			status VARCHAR(16) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create alerts table: %w", err)
	}

	// 创建 manager_approvals 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS manager_approvals (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			action_type VARCHAR(64) NOT NULL,
			subject_id VARCHAR(64),
			required_role VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			details TEXT,
			requested_by VARCHAR(64),
			reviewer_id VARCHAR(64),
			review_notes TEXT,
			reviewed_at DATETIME,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create manager_approvals table: %w", err)
	}

	// 创建 managers 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS managers (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			role VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create managers table: %w", err)
	}

	// 创建 delivery_routes 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS delivery_routes (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			origin VARCHAR(255) NOT NULL,
			destination VARCHAR(255) NOT NULL,
			distance_km REAL NOT NULL,
			vehicle_type VARCHAR(64),
			status VARCHAR(16) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create delivery_routes table: %w", err)
	}

	// 创建 carbon_records 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS carbon_records (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			route_id VARCHAR(64),
			activity_type VARCHAR(64) NOT NULL,
			emissions_kg NUMERIC(14,3),
			recorded_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create carbon_records table: %w", err)
	}

	// 创建 audit_logs 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			business_id VARCHAR(64) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// products 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_products_business_id ON products(business_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_products_business_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_products_created_at: %w", err)
	}

	// alerts 表索引
	// 同步逻辑按 (product_id, status) 查找活跃预警,这个组合索引是热路径
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_product_status ON alerts(product_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_alerts_product_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_business_status ON alerts(business_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_alerts_business_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_risk_level ON alerts(risk_level)").Error; err != nil {
		return fmt.Errorf("failed to create idx_alerts_risk_level: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_alerts_created_at: %w", err)
	}

	// manager_approvals 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_role_status ON manager_approvals(required_role, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_role_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_business_id ON manager_approvals(business_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_business_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_subject_id ON manager_approvals(subject_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_subject_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_approvals_created_at ON manager_approvals(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_approvals_created_at: %w", err)
	}

	// managers 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_managers_business_role ON managers(business_id, role)").Error; err != nil {
		return fmt.Errorf("failed to create idx_managers_business_role: %w", err)
	}

	// delivery_routes 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_routes_business_id ON delivery_routes(business_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_routes_business_id: %w", err)
	}

	// carbon_records 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_carbon_business_recorded ON carbon_records(business_id, recorded_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_carbon_business_recorded: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_carbon_route_id ON carbon_records(route_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_carbon_route_id: %w", err)
	}

	// audit_logs 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_resource: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_user_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_audit_created_at: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_details_gin ON audit_logs USING GIN (details)").Error; err != nil {
			return fmt.Errorf("failed to create idx_audit_details_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}

// Reconnect 重新连接数据库
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	// 关闭旧连接
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	// 重新连接
	return Connect(cfg)
}
