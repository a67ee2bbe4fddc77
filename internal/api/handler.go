package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"catalog-service/internal/apperr"
	"catalog-service/internal/audit"
	"catalog-service/internal/auth"
	"catalog-service/internal/models"
	"catalog-service/internal/service"
	"catalog-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency. A failing critical check degrades the service.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) bool
}

// Options wires the handler to its collaborators
type Options struct {
	Products    *service.ProductService
	Verifier    auth.Verifier
	Audit       audit.Recorder
	Limiter     RateLimiter
	RateLimit   int64
	CORSOrigins []string
	Checks      []HealthCheck
}

// Handler contains HTTP handlers
type Handler struct {
	products *service.ProductService
	verifier auth.Verifier
	audit    audit.Recorder
	limiter  RateLimiter
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		products: opts.Products,
		verifier: opts.Verifier,
		audit:    opts.Audit,
		limiter:  opts.Limiter,
		opts:     opts,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(requestID())
	router.Use(recovery(h.logger))
	router.Use(prometheusMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware(h.opts.CORSOrigins))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit(h.limiter, h.opts.RateLimit, h.logger))
	if h.audit != nil {
		v1.Use(auditRequests(h.audit))
	}
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		admin := v1.Group("/products", requireAdmin(h.verifier))
		admin.POST("", h.createProduct)
		admin.PATCH("/:id/price", h.updatePrice)
		admin.PATCH("/:id/availability", h.updateAvailability)
		admin.DELETE("/:id", h.deleteProduct)
		admin.POST("/categories", h.addCategory)
		admin.POST("/units", h.addUnit)
	}
}

// healthCheck reports the status of every dependency
func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := gin.H{"time": time.Now().Unix()}
	status := "healthy"
	for _, check := range h.opts.Checks {
		state := "healthy"
		if !check.Check(ctx) {
			state = "unavailable"
			if check.Critical {
				status = "degraded"
			}
		}
		resp[check.Name] = state
	}
	resp["status"] = status

	c.JSON(http.StatusOK, resp)
}

// readinessCheck fails while a critical dependency is down
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	for _, check := range h.opts.Checks {
		if check.Critical && !check.Check(ctx) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not ready",
				"dependency": check.Name,
				"time":       time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type listProductsQuery struct {
	ProductType  string `form:"product_type"`
	BusinessUnit string `form:"business_unit"`
	Location     string `form:"location"`
	Category     string `form:"category"`
	SortBy       string `form:"sort_by"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

func (h *Handler) listProducts(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.products.List(c.Request.Context(), service.ListParams{
		Filter: models.ProductFilter{
			ProductType:  q.ProductType,
			BusinessUnit: q.BusinessUnit,
			Location:     q.Location,
			Category:     q.Category,
		},
		SortBy:   q.SortBy,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type createProductRequest struct {
	Name         string          `json:"name" binding:"required,max=255"`
	Description  *string         `json:"description" binding:"omitempty,max=1000"`
	Category     string          `json:"category" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	BusinessUnit string          `json:"business_unit" binding:"required"`
	Location     string          `json:"location" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	ProductType  string          `json:"product_type"`
	IsAvailable  *bool           `json:"is_available"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product, err := h.products.Create(c.Request.Context(), &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Unit:         req.Unit,
		BusinessUnit: req.BusinessUnit,
		Location:     req.Location,
		Price:        req.Price,
		ProductType:  models.ProductType(req.ProductType),
		IsAvailable:  available,
	}, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

type priceUpdateRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) updatePrice(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req priceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.UpdatePrice(c.Request.Context(), id, req.Price, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

type availabilityUpdateRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

func (h *Handler) updateAvailability(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req availabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.UpdateAvailability(c.Request.Context(), id, *req.IsAvailable, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("Product %d deleted successfully", id)})
}

func (h *Handler) addCategory(c *gin.Context) {
	name, ok := lookupName(c, "category")
	if !ok {
		return
	}

	category, err := h.products.AddCategory(c.Request.Context(), name, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse{Message: fmt.Sprintf("Category '%s' added successfully", category.Name)})
}

func (h *Handler) addUnit(c *gin.Context) {
	name, ok := lookupName(c, "unit")
	if !ok {
		return
	}

	unit, err := h.products.AddUnit(c.Request.Context(), name, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse{Message: fmt.Sprintf("Unit '%s' added successfully", unit.Name)})
}

// lookupName reads field from the query string, falling back to a JSON body
func lookupName(c *gin.Context, field string) (string, bool) {
	if name, ok := c.GetQuery(field); ok {
		return name, true
	}

	if c.Request.ContentLength != 0 {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			respondBindError(c, err)
			return "", false
		}
		if name, ok := body[field]; ok {
			return name, true
		}
	}

	respondError(c, apperr.Validation(fmt.Sprintf("%s is required", field)))
	return "", false
}

func productID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.Validation(fmt.Sprintf("invalid product ID: %q", raw)))
		return 0, false
	}
	return id, true
}
