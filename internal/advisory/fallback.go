package advisory

import (
	"fmt"
	"math"
)

// FallbackGenerator 规则回退生成器
// 纯函数实现,对任何合法输入都必须成功,是外部服务失败时的兜底路径
type FallbackGenerator struct{}

// NewFallbackGenerator 创建规则回退生成器
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// AlertInsight 规则生成告警洞察
// 成本影响按风险等级加权估算: high 70%, medium 35%, low 10%
func (g *FallbackGenerator) AlertInsight(c AlertContext) *AlertInsight {
	var lossRatio float64
	var priority string
	switch c.RiskLevel {
	case "high":
		lossRatio = 0.70
		priority = "immediate"
	case "medium":
		lossRatio = 0.35
		priority = "within_24h"
	default:
		lossRatio = 0.10
		priority = "routine"
	}

	lossValue := round2(c.EstimatedValue * lossRatio)

	recs := make([]string, 0, 4)
	switch c.RiskLevel {
	case "high":
		recs = append(recs,
			fmt.Sprintf("Prioritize %s for immediate sale or donation", c.ProductName),
			"Move stock to the front of the picking queue")
	case "medium":
		recs = append(recs,
			fmt.Sprintf("Schedule %s for promotion within %d days", c.ProductName, maxInt(c.DaysLeft, 1)),
			"Re-check storage conditions at the next inspection round")
	default:
		recs = append(recs, "No action required, continue standard monitoring")
	}

	if c.StorageCategory == "refrigerated" && c.Temperature > 5 {
		recs = append(recs, fmt.Sprintf("Reading of %.1f°C exceeds the refrigerated limit, inspect cooling at %s", c.Temperature, c.Location))
	}
	if c.StorageCategory == "frozen" && c.Temperature > -18 {
		recs = append(recs, fmt.Sprintf("Reading of %.1f°C is above the frozen limit, inspect the freezer at %s", c.Temperature, c.Location))
	}

	return &AlertInsight{
		RiskLevel:       c.RiskLevel,
		Summary:         fmt.Sprintf("%s (%s %s) has %d days left at %s", c.ProductName, c.Quantity, c.Unit, c.DaysLeft, c.Location),
		CostImpact:      fmt.Sprintf("Estimated loss exposure of %.2f (%.0f%% of stock value)", lossValue, lossRatio*100),
		Recommendations: recs,
		ActionPriority:  priority,
	}
}

// DashboardInsight 规则生成仪表盘洞察
func (g *FallbackGenerator) DashboardInsight(c DashboardContext) *DashboardInsight {
	status := "stable"
	if c.HighRisk > 0 {
		status = "attention_required"
	} else if c.MediumRisk > 0 {
		status = "monitor"
	}

	findings := make([]string, 0, 4)
	if c.HighRisk > 0 {
		findings = append(findings, fmt.Sprintf("%d products are at high spoilage risk", c.HighRisk))
	}
	if c.MediumRisk > 0 {
		findings = append(findings, fmt.Sprintf("%d products need monitoring within the week", c.MediumRisk))
	}
	if c.PendingApprovals > 0 {
		findings = append(findings, fmt.Sprintf("%d approvals are waiting for a manager decision", c.PendingApprovals))
	}
	if len(findings) == 0 {
		findings = append(findings, "All tracked products are within safe storage parameters")
	}

	recs := make([]string, 0, 3)
	if c.HighRisk > 0 {
		recs = append(recs, "Run the spoilage write-off process for high risk stock")
	}
	if c.PendingApprovals > 0 {
		recs = append(recs, "Clear the pending approval queue to unblock operations")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep the current sync cadence")
	}

	return &DashboardInsight{
		OverallStatus: status,
		Summary: fmt.Sprintf("%d active alerts across %d products, %.2f total value at risk, %.1f kg CO2 recorded",
			c.ActiveAlerts, c.TotalProducts, c.TotalEstimatedValue, c.CarbonKg),
		KeyFindings:     findings,
		Recommendations: recs,
	}
}

// RouteInsight 规则生成路线优化洞察
// 节省率基于线路数量与总里程的阈值估算
func (g *FallbackGenerator) RouteInsight(c RouteContext) *RouteInsight {
	savings := 0.0
	if len(c.Routes) >= 2 {
		savings = 5.0
	}
	if len(c.Routes) >= 5 {
		savings = 12.0
	}
	if c.TotalDistanceKM > 500 {
		savings += 3.0
	}

	recs := make([]string, 0, 3)
	if len(c.Routes) >= 2 {
		recs = append(recs, "Consolidate deliveries sharing a destination region")
	}
	if c.TotalDistanceKM > 500 {
		recs = append(recs, "Evaluate a regional cross-dock to cut long-haul legs")
	}
	if c.EmissionsKg > 1000 {
		recs = append(recs, "Shift the heaviest lane to a lower emission vehicle class")
	}
	if len(recs) == 0 {
		recs = append(recs, "Current routes are already minimal, no consolidation available")
	}

	return &RouteInsight{
		Summary: fmt.Sprintf("%d routes cover %.1f km with %.1f kg CO2 recorded",
			len(c.Routes), c.TotalDistanceKM, c.EmissionsKg),
		EstimatedSavingsPct: round2(savings),
		Recommendations:     recs,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
