package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client 外部文本生成服务客户端
// 所有 AI 依赖都经由本客户端,失败时一律切换到规则回退,
// 对调用方永不返回错误
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	fallback   *FallbackGenerator
	logger     *logrus.Logger
}

// generateRequest 生成请求体
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format"`
	Options generateOptions `json:"options"`
}

// generateOptions 生成参数
type generateOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	NumPredict  int      `json:"num_predict"`
	Stop        []string `json:"stop"`
}

// generateResponse 生成响应体
type generateResponse struct {
	Response string `json:"response"`
}

// NewClient 创建外部服务客户端
// timeout 为零时使用 60 秒默认超时
func NewClient(baseURL string, model string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		fallback:   NewFallbackGenerator(),
		logger:     logger,
	}
}

// GenerateAlertInsight 生成告警洞察
func (c *Client) GenerateAlertInsight(ctx context.Context, actx AlertContext) (*AlertInsight, Origin) {
	prompt := fmt.Sprintf(`You are a perishable goods supply chain advisor.
Product: %s (%s %s), storage category %s, %d days of shelf life left.
Current reading: %.1f°C, %.1f%% humidity at %s. Risk level: %s. Stock value: %.2f.
Respond with only a JSON object with keys:
riskLevel (string), summary (string), costImpact (string), recommendations (array of strings), actionPriority (string).`,
		actx.ProductName, actx.Quantity, actx.Unit, actx.StorageCategory, actx.DaysLeft,
		actx.Temperature, actx.Humidity, actx.Location, actx.RiskLevel, actx.EstimatedValue)

	var insight AlertInsight
	if err := c.generateInto(ctx, prompt, &insight); err != nil {
		c.logger.WithError(err).WithField("kind", "alert").Warn("advisory call failed, using fallback")
		return c.fallback.AlertInsight(actx), OriginFallback
	}
	return &insight, OriginAdvisory
}

// GenerateDashboardInsight 生成仪表盘洞察
func (c *Client) GenerateDashboardInsight(ctx context.Context, dctx DashboardContext) (*DashboardInsight, Origin) {
	prompt := fmt.Sprintf(`You are a perishable goods supply chain advisor.
Business snapshot: %d products tracked, %d active spoilage alerts (%d high, %d medium, %d low),
%d pending manager approvals, %.2f total stock value at risk, %.1f kg CO2 recorded.
Respond with only a JSON object with keys:
overallStatus (string), summary (string), keyFindings (array of strings), recommendations (array of strings).`,
		dctx.TotalProducts, dctx.ActiveAlerts, dctx.HighRisk, dctx.MediumRisk, dctx.LowRisk,
		dctx.PendingApprovals, dctx.TotalEstimatedValue, dctx.CarbonKg)

	var insight DashboardInsight
	if err := c.generateInto(ctx, prompt, &insight); err != nil {
		c.logger.WithError(err).WithField("kind", "dashboard").Warn("advisory call failed, using fallback")
		return c.fallback.DashboardInsight(dctx), OriginFallback
	}
	return &insight, OriginAdvisory
}

// GenerateRouteInsight 生成路线优化洞察
func (c *Client) GenerateRouteInsight(ctx context.Context, rctx RouteContext) (*RouteInsight, Origin) {
	routesJSON, _ := json.Marshal(rctx.Routes)
	prompt := fmt.Sprintf(`You are a logistics route optimization advisor.
Routes: %s
Total distance: %.1f km. Recorded emissions: %.1f kg CO2.
Respond with only a JSON object with keys:
summary (string), estimatedSavingsPct (number), recommendations (array of strings).`,
		string(routesJSON), rctx.TotalDistanceKM, rctx.EmissionsKg)

	var insight RouteInsight
	if err := c.generateInto(ctx, prompt, &insight); err != nil {
		c.logger.WithError(err).WithField("kind", "route").Warn("advisory call failed, using fallback")
		return c.fallback.RouteInsight(rctx), OriginFallback
	}
	return &insight, OriginAdvisory
}

// generateInto 调用外部服务并把提取出的 JSON 解析到 out
func (c *Client) generateInto(ctx context.Context, prompt string, out interface{}) error {
	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return err
	}

	extracted, err := ExtractJSON(raw)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(extracted), out)
}

// generate 发起生成请求,返回原始文本
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: generateOptions{
			Temperature: 0.4,
			TopP:        0.9,
			NumPredict:  512,
			Stop:        []string{"</response>"},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advisory service returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return result.Response, nil
}

// Reachable 探测外部服务可达性(用于健康检查,失败不影响业务)
func (c *Client) Reachable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
