package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resto-service/internal/ai"
	"resto-service/internal/auth"
	"resto-service/internal/broker"
	"resto-service/internal/catalog"
	"resto-service/internal/lifecycle"
	"resto-service/internal/models"
	"resto-service/internal/service"
	"resto-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the full mock-mode stack behind a gin engine.
func newTestRouter(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryWithFixtures()
	feed := broker.NewLocalFeed()
	t.Cleanup(func() { feed.Close() })

	cat := catalog.New(mem, catalog.NewMemoryCache(), catalog.Options{Live: false})
	orders := service.NewOrderService(mem, mem, feed, false)
	staff := service.NewStaffService(mem)

	sessions := auth.NewManager(mem, cat, "test-secret", false, time.Second)
	t.Cleanup(sessions.Close)

	board := lifecycle.NewBoard(orders)
	t.Cleanup(board.Close)
	require.NoError(t, board.Load(context.Background()))

	describer := ai.NewDescriber("", "", "")

	router := gin.New()
	h := NewHandler(orders, staff, cat, board, sessions, describer, feed, "", false)
	h.SetupRoutes(router)
	return router, sessions
}

func adminToken(t *testing.T, sessions *auth.Manager) string {
	t.Helper()
	token, _, err := sessions.MockSignIn(models.RoleAdmin)
	require.NoError(t, err)
	return token
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 4)
}

func TestCheckoutIgnoresClientTotal(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", "", gin.H{
		"customer_name":  "Alice",
		"customer_phone": "555-0101",
		"items": []gin.H{
			{"product_id": "1", "quantity": 2},
			{"product_id": "2", "quantity": 1},
		},
		"total": 0.01,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.InDelta(t, 32.48, order.Total, 0.001)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", "", gin.H{
		"customer_name":  "Bob",
		"customer_phone": "555-0102",
		"items":          []gin.H{{"product_id": "no-such", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCheckoutValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/orders", "", gin.H{
		"customer_name": "Bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaffRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/orders", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	router, sessions := newTestRouter(t)

	employeeToken, _, err := sessions.MockSignIn(models.RoleEmployee)
	require.NoError(t, err)

	w := doJSON(router, http.MethodGet, "/api/v1/admin/employees", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginAndOrderBoardFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Token   string             `json:"token"`
		Profile models.UserProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)
	assert.Equal(t, models.RoleAdmin, loginResp.Profile.Role)

	w = doJSON(router, http.MethodGet, "/api/v1/orders", loginResp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var boardResp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &boardResp))
	require.Len(t, boardResp.Orders, 2)
	assert.Equal(t, "101", boardResp.Orders[0].ID)
}

func TestAdvanceOrderStatus(t *testing.T) {
	router, sessions := newTestRouter(t)
	token := adminToken(t, sessions)

	// Empty body advances to the next status.
	w := doJSON(router, http.MethodPatch, "/api/v1/orders/101/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status models.OrderStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusPreparing, resp.Status)

	// Skipping ahead is refused.
	w = doJSON(router, http.MethodPatch, "/api/v1/orders/101/status", token, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown order.
	w = doJSON(router, http.MethodPatch, "/api/v1/orders/999/status", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProductManagement(t *testing.T) {
	router, sessions := newTestRouter(t)
	token := adminToken(t, sessions)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/products", token, gin.H{
		"name":     "Lemonade",
		"price":    3.50,
		"category": "Drinks",
		"active":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = doJSON(router, http.MethodPatch, "/api/v1/admin/products/"+created.ID, token, gin.H{"price": 4.00})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.InDelta(t, 4.00, updated.Price, 0.001)
	assert.Equal(t, "Lemonade", updated.Name)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDescribeProduct(t *testing.T) {
	router, sessions := newTestRouter(t)
	token := adminToken(t, sessions)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/products/describe", token, gin.H{
		"name":     "Classic Burger",
		"category": "Burgers",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Description, "Classic Burger")
}

func TestEmployeeManagement(t *testing.T) {
	router, sessions := newTestRouter(t)
	token := adminToken(t, sessions)

	w := doJSON(router, http.MethodPost, "/api/v1/admin/employees", token, gin.H{
		"email":    "kitchen@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.RoleEmployee, created.Role)

	// Password hash never leaks through the API.
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = doJSON(router, http.MethodPost, "/api/v1/admin/employees", token, gin.H{
		"email":    "kitchen@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/admin/employees/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMockUploadRefusedWithHint(t *testing.T) {
	router, sessions := newTestRouter(t)
	token := adminToken(t, sessions)

	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/uploads", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
