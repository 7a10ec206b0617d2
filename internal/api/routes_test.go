package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/config"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/container"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/database"
	"github.com/kmmy-shannel/ecotrackai-sub001/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testServer 组装完整路由,底层用内存 SQLite
type testServer struct {
	router *gin.Engine
	ctr    *container.Container
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	// 不可达的洞察服务地址,全部走回退路径
	cfg.Advisory.URL = "http://127.0.0.1:1"
	cfg.Advisory.TimeoutSeconds = 1

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	ctr, err := container.NewContainerWithDB(cfg, log, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Close() })

	controllers := Controllers{
		Health:    NewHealthController(db, ctr.AdvisoryClient()),
		Product:   NewProductController(ctr.ProductService()),
		Alert:     NewAlertController(ctr.AlertService()),
		Approval:  NewApprovalController(ctr.ApprovalService()),
		Dashboard: NewDashboardController(ctr.DashboardService()),
		Route:     NewRouteController(ctr.RouteService(), ctr.CarbonService()),
	}

	router := SetupRoutes(cfg, log, controllers, ctr.Hub(), ctr.TokenValidator())
	return &testServer{router: router, ctr: ctr, db: db}
}

func (s *testServer) token(t *testing.T, userID, businessID, role string) string {
	t.Helper()
	token, err := s.ctr.TokenValidator().IssueToken(userID, businessID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedProduct(t *testing.T, businessID string, shelfLifeDays int) *model.ProductModel {
	t.Helper()
	now := time.Now()
	product := &model.ProductModel{
		ID:              uuid.New().String(),
		BusinessID:      businessID,
		Name:            "Organic Milk",
		ProductType:     "dairy",
		StorageCategory: model.StorageRefrigerated,
		ShelfLifeDays:   shelfLifeDays,
		Quantity:        50,
		Unit:            "liters",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, s.db.Create(product).Error)
	return product
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	// 洞察服务不可达按降级处理,仍返回 200
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/products", "/api/v1/alerts", "/api/v1/approvals"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v2/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestAlertSyncFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1", "biz-1", model.RoleInventoryManager)

	s.seedProduct(t, "biz-1", 2)
	s.seedProduct(t, "biz-1", 30)

	// 触发同步
	w := s.do(t, http.MethodPost, "/api/v1/alerts/sync", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var syncResp struct {
		Success bool `json:"success"`
		Data    struct {
			Synced   int `json:"synced"`
			HighRisk int `json:"high_risk"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &syncResp))
	assert.True(t, syncResp.Success)
	assert.Equal(t, 2, syncResp.Data.Synced)
	assert.Equal(t, 1, syncResp.Data.HighRisk)

	// 查询列表
	w = s.do(t, http.MethodGet, "/api/v1/alerts?risk_level=high", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Data []model.AlertModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	alertID := listResp.Data[0].ID

	// 白名单外的排序字段被拒绝
	w = s.do(t, http.MethodGet, "/api/v1/alerts?sort=details", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/alerts?sort=days_left&order=asc", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 统计
	w = s.do(t, http.MethodGet, "/api/v1/alerts/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "high_risk")

	// 回退路径生成洞察
	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/alerts/%s/insights", alertID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"fallback"`)

	// 状态更新
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/alerts/%s/status", alertID), token,
		map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 终态后重复更新报冲突
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/alerts/%s/status", alertID), token,
		map[string]string{"status": "dismissed"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 非法目标状态
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/alerts/%s/status", alertID), token,
		map[string]string{"status": "active"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCrossTenantIsolation(t *testing.T) {
	s := newTestServer(t)
	ownerToken := s.token(t, "user-1", "biz-1", model.RoleInventoryManager)
	otherToken := s.token(t, "user-2", "biz-2", model.RoleInventoryManager)

	s.seedProduct(t, "biz-1", 2)
	w := s.do(t, http.MethodPost, "/api/v1/alerts/sync", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", ownerToken, nil)
	var listResp struct {
		Data []model.AlertModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)
	alertID := listResp.Data[0].ID

	// 他租户看不到也改不了,一律 404
	w = s.do(t, http.MethodGet, "/api/v1/alerts", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var otherResp struct {
		Data []model.AlertModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherResp))
	assert.Empty(t, otherResp.Data)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/alerts/%s/status", alertID), otherToken,
		map[string]string{"status": "resolved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/alerts/"+alertID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteoffApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	requester := s.token(t, "user-1", "biz-1", model.RoleLogisticsManager)
	inventory := s.token(t, "mgr-1", "biz-1", model.RoleInventoryManager)
	finance := s.token(t, "mgr-2", "biz-1", model.RoleFinanceManager)

	s.seedProduct(t, "biz-1", 2)
	w := s.do(t, http.MethodPost, "/api/v1/alerts/sync", requester, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", requester, nil)
	var listResp struct {
		Data []model.AlertModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Data, 1)

	// 发起核销申请
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%s/writeoff", listResp.Data[0].ID), requester, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var writeoffResp struct {
		Data model.ManagerApprovalModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &writeoffResp))
	approvalID := writeoffResp.Data.ID
	assert.Equal(t, model.ApprovalStatusPending, writeoffResp.Data.Status)

	// 库存经理可见,财务经理不可见
	w = s.do(t, http.MethodGet, "/api/v1/approvals/count", inventory, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":1`)

	w = s.do(t, http.MethodGet, "/api/v1/approvals/count", finance, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":0`)

	// 角色不匹配按未找到处理
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/approvals/%s/approve", approvalID), finance, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 库存经理批准
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/approvals/%s/approve", approvalID), inventory,
		map[string]string{"notes": "confirmed spoilage"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 二次决定报冲突
	w = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/approvals/%s/reject", approvalID), inventory, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1", "biz-1", model.RoleInventoryManager)

	// 创建
	w := s.do(t, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":             "Frozen Salmon",
		"product_type":     "seafood",
		"storage_category": "frozen",
		"shelf_life_days":  90,
		"quantity":         25.5,
		"unit":             "kg",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var createResp struct {
		Data model.ProductModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	productID := createResp.Data.ID
	require.NotEmpty(t, productID)

	// 非法存储类别被拒绝
	w = s.do(t, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":             "Bad Product",
		"storage_category": "cryogenic",
		"shelf_life_days":  10,
		"quantity":         1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 查询
	w = s.do(t, http.MethodGet, "/api/v1/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Frozen Salmon")

	// 删除后再查 404
	w = s.do(t, http.MethodDelete, "/api/v1/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/products/"+productID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1", "biz-1", model.RoleInventoryManager)

	s.seedProduct(t, "biz-1", 2)
	w := s.do(t, http.MethodPost, "/api/v1/alerts/sync", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/dashboard/insights", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"fallback"`)
}

func TestCarbonOffsetEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1", "biz-1", model.RoleSustainabilityManager)

	w := s.do(t, http.MethodPost, "/api/v1/carbon/offset", token,
		map[string]interface{}{"amount_kg": "120.5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data model.ManagerApprovalModel `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ActionCarbonOffset, resp.Data.ActionType)
	assert.Equal(t, model.RoleSustainabilityManager, resp.Data.RequiredRole)

	// 非正数额度被拒绝
	w = s.do(t, http.MethodPost, "/api/v1/carbon/offset", token,
		map[string]interface{}{"amount_kg": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditTrailCarriesRequestMetadata(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "user-1", "biz-1", model.RoleInventoryManager)

	s.seedProduct(t, "biz-1", 2)

	// 调用方自带 X-Request-ID,审计落库必须原样携带
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/sync", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-trace-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entry model.AuditLogModel
	require.NoError(t, s.db.Where("action = ?", model.AuditActionSync).First(&entry).Error)
	assert.Equal(t, "req-trace-42", entry.RequestID)
	assert.NotEmpty(t, entry.IP)
	// 同步以发起者身份入账,不是匿名 system
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "biz-1", entry.BusinessID)
}
