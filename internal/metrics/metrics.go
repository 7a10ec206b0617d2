package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 告警同步数
	alertsSyncedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_synced_total",
			Help: "Total number of alerts touched by sync runs",
		},
	)

	// 外部洞察请求数,按类型与来源路径区分
	advisoryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisory_requests_total",
			Help: "Total number of insight generations by kind and origin",
		},
		[]string{"kind", "origin"}, // origin: advisory, fallback
	)

	// 审批决定数
	approvalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_total",
			Help: "Total number of approval decisions",
		},
		[]string{"decision"}, // approved, rejected
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	// 风险等级分布
	alertsByRisk = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alerts_by_risk",
			Help: "Number of active alerts by risk level",
		},
		[]string{"risk_level"},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(alertsSyncedTotal)
	prometheus.MustRegister(advisoryRequestsTotal)
	prometheus.MustRegister(approvalsTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(alertsByRisk)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordAlertsSynced 记录告警同步数
func RecordAlertsSynced(count int) {
	alertsSyncedTotal.Add(float64(count))
}

// RecordAdvisoryRequest 记录洞察生成及其来源路径
func RecordAdvisoryRequest(kind string, origin string) {
	advisoryRequestsTotal.WithLabelValues(kind, origin).Inc()
}

// RecordApproval 记录审批决定
func RecordApproval(decision string) {
	approvalsTotal.WithLabelValues(decision).Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateAlertsByRisk 更新风险等级分布指标
func UpdateAlertsByRisk(riskLevel string, count float64) {
	alertsByRisk.WithLabelValues(riskLevel).Set(count)
}
