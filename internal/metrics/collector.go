package metrics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Collector 指标收集器
// 周期性刷新数据库连接池与风险分布指标
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)
			c.collectRiskDistribution()
		}
	}
}

// collectRiskDistribution 刷新 active 告警的风险分布
func (c *Collector) collectRiskDistribution() {
	type row struct {
		RiskLevel string
		Count     int64
	}
	var rows []row
	err := c.db.Table("alerts").
		Select("risk_level, COUNT(*) as count").
		Where("status = ?", "active").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return
	}

	for _, level := range []string{"high", "medium", "low"} {
		count := float64(0)
		for _, r := range rows {
			if r.RiskLevel == level {
				count = float64(r.Count)
			}
		}
		UpdateAlertsByRisk(level, count)
	}
}
