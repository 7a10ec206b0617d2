package advisory

// Origin 标识洞察结果的来源路径
// 外部服务成功为 OriginAdvisory,任何失败走规则回退为 OriginFallback
// 两条路径产出的结构完全一致,调用方不需要分支处理
type Origin string

const (
	OriginAdvisory Origin = "advisory"
	OriginFallback Origin = "fallback"
)

// AlertContext 告警洞察的输入上下文
type AlertContext struct {
	ProductName     string  `json:"product_name"`
	RiskLevel       string  `json:"risk_level"`
	DaysLeft        int     `json:"days_left"`
	Quantity        string  `json:"quantity"`
	Unit            string  `json:"unit"`
	StorageCategory string  `json:"storage_category"`
	Temperature     float64 `json:"temperature"`
	Humidity        float64 `json:"humidity"`
	Location        string  `json:"location"`
	EstimatedValue  float64 `json:"estimated_value"`
}

// AlertInsight 告警洞察结果
type AlertInsight struct {
	RiskLevel       string   `json:"riskLevel"`
	Summary         string   `json:"summary"`
	CostImpact      string   `json:"costImpact"`
	Recommendations []string `json:"recommendations"`
	ActionPriority  string   `json:"actionPriority"`
}

// DashboardContext 仪表盘洞察的输入上下文
type DashboardContext struct {
	TotalProducts       int     `json:"total_products"`
	ActiveAlerts        int     `json:"active_alerts"`
	HighRisk            int     `json:"high_risk"`
	MediumRisk          int     `json:"medium_risk"`
	LowRisk             int     `json:"low_risk"`
	PendingApprovals    int     `json:"pending_approvals"`
	TotalEstimatedValue float64 `json:"total_estimated_value"`
	CarbonKg            float64 `json:"carbon_kg"`
}

// DashboardInsight 仪表盘洞察结果
type DashboardInsight struct {
	OverallStatus   string   `json:"overallStatus"`
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"keyFindings"`
	Recommendations []string `json:"recommendations"`
}

// RouteSummary 路线概要
type RouteSummary struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKM  float64 `json:"distance_km"`
	VehicleType string  `json:"vehicle_type"`
}

// RouteContext 路线优化洞察的输入上下文
type RouteContext struct {
	Routes          []RouteSummary `json:"routes"`
	TotalDistanceKM float64        `json:"total_distance_km"`
	EmissionsKg     float64        `json:"emissions_kg"`
}

// RouteInsight 路线优化洞察结果
type RouteInsight struct {
	Summary             string   `json:"summary"`
	EstimatedSavingsPct float64  `json:"estimatedSavingsPct"`
	Recommendations     []string `json:"recommendations"`
}
