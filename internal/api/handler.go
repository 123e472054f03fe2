package api

import (
	"context"
	"errors"
	"io"
	"net/http"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxUploadBytes = 5 << 20

// Handler contains HTTP handlers
type Handler struct {
	orders    *service.OrderService
	staff     *service.StaffService
	catalog   *catalog.Service
	board     *lifecycle.Board
	sessions  *auth.Manager
	describer *ai.Describer
	feed      broker.Feed
	mediaDir  string
	live      bool
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	staff *service.StaffService,
	cat *catalog.Service,
	board *lifecycle.Board,
	sessions *auth.Manager,
	describer *ai.Describer,
	feed broker.Feed,
	mediaDir string,
	live bool,
) *Handler {
	return &Handler{
		orders:    orders,
		staff:     staff,
		catalog:   cat,
		board:     board,
		sessions:  sessions,
		describer: describer,
		feed:      feed,
		mediaDir:  mediaDir,
		live:      live,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if h.mediaDir != "" {
		router.Static("/media", h.mediaDir)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/orders", h.checkout)

		v1.POST("/auth/login", h.login)
		v1.POST("/auth/logout", h.logout)
		v1.GET("/auth/session", h.session)
	}

	staff := v1.Group("", authRequired(h.sessions))
	{
		staff.GET("/orders", h.listOrders)
		staff.GET("/orders/stream", h.streamOrders)
		staff.PATCH("/orders/:id/status", h.advanceOrder)
	}

	admin := staff.Group("", roleRequired(models.RoleAdmin))
	{
		admin.GET("/admin/products", h.listAllProducts)
		admin.POST("/admin/products", h.createProduct)
		admin.PATCH("/admin/products/:id", h.updateProduct)
		admin.DELETE("/admin/products/:id", h.deleteProduct)
		admin.POST("/admin/products/describe", h.describeProduct)
		admin.POST("/admin/uploads", h.uploadImage)

		admin.GET("/admin/employees", h.listEmployees)
		admin.POST("/admin/employees", h.createEmployee)
		admin.DELETE("/admin/employees/:id", h.deleteEmployee)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts serves the public menu: active products only, cached.
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CheckoutRequest is a public order submission. The total field is accepted
// for wire compatibility but ignored: the server recomputes it from items.
type CheckoutRequest struct {
	service.CustomerInfo
	Items []service.CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Total float64                `json:"total"`
}

// checkout handles public order creation.
func (h *Handler) checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order request"})
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), req.CustomerInfo, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// LoginRequest carries live credentials or, in mock mode only, a chosen
// demo role.
type LoginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// login produces a session token. Live mode verifies credentials; mock mode
// allows a demo sign-in with a chosen role.
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login request"})
		return
	}

	var (
		token   string
		profile *models.UserProfile
		err     error
	)
	if h.live {
		token, profile, err = h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	} else {
		token, profile, err = h.sessions.MockSignIn(req.Role)
	}
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile})
}

// logout invalidates the session and clears the catalog cache.
func (h *Handler) logout(c *gin.Context) {
	h.sessions.SignOut(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// session resolves the current token into a state and profile.
func (h *Handler) session(c *gin.Context) {
	state, profile := h.sessions.Resolve(c.Request.Context(), bearerToken(c))
	c.JSON(http.StatusOK, gin.H{
		"state":         state.String(),
		"authenticated": state == auth.StateAuthenticated,
		"profile":       profile,
	})
}

// listOrders serves the staff order board, newest-first.
func (h *Handler) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": h.board.Orders()})
}

// streamOrders pushes order change events to the dashboard over SSE. Events
// a slow client cannot keep up with are dropped; the client reconciles by
// reloading the board on reconnect.
func (h *Handler) streamOrders(c *gin.Context) {
	events := make(chan models.OrderChangeEvent, 16)

	cancel, err := h.feed.Subscribe(c.Request.Context(), func(ctx context.Context, ev models.OrderChangeEvent) error {
		select {
		case events <- ev:
		default:
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent("order_change", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// AdvanceRequest optionally names the target status; empty means "next".
type AdvanceRequest struct {
	Status models.OrderStatus `json:"status"`
}

// advanceOrder applies a staff-initiated status transition.
func (h *Handler) advanceOrder(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status request"})
		return
	}

	status, err := h.board.Advance(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": status})
}

// listAllProducts serves the full catalog for management, inactive included.
func (h *Handler) listAllProducts(c *gin.Context) {
	products, err := h.catalog.AllProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ProductRequest is an admin product creation payload.
type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,min=0"`
	Category    string  `json:"category" binding:"required"`
	Active      bool    `json:"active"`
	ImageURL    string  `json:"image_url"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var upd store.ProductUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product update"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DescribeRequest asks for a generated menu description.
type DescribeRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// describeProduct generates a short description; never fails, falls back to
// a template.
func (h *Handler) describeProduct(c *gin.Context) {
	var req DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid describe request"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"description": h.describer.Describe(c.Request.Context(), req.Name, req.Category),
	})
}

// uploadImage stores a product image and returns its public URL.
func (h *Handler) uploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image file"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, catalog.ErrUploadFailed)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		respondError(c, catalog.ErrUploadFailed)
		return
	}

	url, err := h.catalog.UploadImage(c.Request.Context(), file.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// EmployeeRequest is an admin account creation payload.
type EmployeeRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role"`
}

func (h *Handler) listEmployees(c *gin.Context) {
	profiles, err := h.staff.ListEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"employees": profiles})
}

func (h *Handler) createEmployee(c *gin.Context) {
	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employee request"})
		return
	}

	profile, err := h.staff.CreateEmployee(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	if err := h.staff.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps the failure taxonomy onto short human-readable
// responses. Raw internal errors are logged elsewhere, never sent to users.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, lifecycle.ErrUnknownOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "That status change is not allowed"})
	case errors.Is(err, store.ErrRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The action was refused. Please review and try again"})
	case errors.Is(err, store.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable. Please try again"})
	case errors.Is(err, catalog.ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed. Check storage configuration and try again"})
	case errors.Is(err, auth.ErrMockSignInUnavailable):
		c.JSON(http.StatusForbidden, gin.H{"error": "Demo sign-in is disabled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
