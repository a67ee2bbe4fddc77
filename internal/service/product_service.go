package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"catalog-service/internal/apperr"
	"catalog-service/internal/audit"
	"catalog-service/internal/models"
	"catalog-service/internal/store"
	"catalog-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	minCategoryLength = 2
	minUnitLength     = 1
)

// ProductStore is the persistence the catalog needs. store.Store implements it.
type ProductStore interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, sortBy string, limit, offset int) ([]models.Product, int, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProductPrice(ctx context.Context, id int64, price decimal.Decimal) (*models.Product, error)
	UpdateProductAvailability(ctx context.Context, id int64, available bool) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AddCategory(ctx context.Context, name string) (*models.Category, error)
	AddUnit(ctx context.Context, name string) (*models.Unit, error)
}

// Cache is the read-through cache. cache.Cache implements it; it never fails.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	ClearPattern(ctx context.Context, prefix string)
}

// Notifier delivers product events in the background. broker.EventPublisher implements it.
type Notifier interface {
	Notify(ctx context.Context, method string, event models.ProductEvent, urgency models.Urgency)
}

// ProductService owns the product aggregate: validation, persistence,
// cache invalidation, auditing and notifications.
type ProductService struct {
	store    ProductStore
	cache    Cache
	notifier Notifier
	audit    audit.Recorder
	logger   *zap.Logger

	significantChange decimal.Decimal
}

// NewProductService creates a new product service. Price changes strictly above
// significantChangePercent are audited as significant.
func NewProductService(
	store ProductStore,
	cache Cache,
	notifier Notifier,
	recorder audit.Recorder,
	significantChangePercent float64,
) *ProductService {
	return &ProductService{
		store:             store,
		cache:             cache,
		notifier:          notifier,
		audit:             recorder,
		logger:            util.GetLogger(),
		significantChange: decimal.NewFromFloat(significantChangePercent),
	}
}

// List returns one page of products, served from cache when possible
func (s *ProductService) List(ctx context.Context, params ListParams) (*models.ProductPage, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.List")
	defer span.End()

	params, err := params.Normalize()
	if err != nil {
		return nil, err
	}

	key := listKey(params)
	var page models.ProductPage
	if s.cache.Get(ctx, key, &page) {
		return &page, nil
	}

	items, total, err := s.store.ListProducts(ctx, params.Filter, params.SortBy, params.PageSize, params.offset())
	if err != nil {
		util.SpanError(span, err)
		return nil, s.storeError(err, "list products")
	}

	page = models.ProductPage{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	}
	s.cache.Set(ctx, key, page, 0)
	return &page, nil
}

// GetByID returns a product, served from cache when possible
func (s *ProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.GetByID")
	defer span.End()

	key := productKey(id)
	var product models.Product
	if s.cache.Get(ctx, key, &product) {
		return &product, nil
	}

	found, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			util.SpanError(span, err)
		}
		return nil, s.productError(err, id, "get product")
	}

	s.cache.Set(ctx, key, found, 0)
	return found, nil
}

// Create validates and persists a new product
func (s *ProductService) Create(ctx context.Context, product *models.Product, actorID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	if strings.TrimSpace(product.Name) == "" {
		util.ProductMutationsFailed.WithLabelValues("create", "validation").Inc()
		return nil, apperr.Validation("product name is required")
	}
	if err := validatePrice(product.Price); err != nil {
		util.ProductMutationsFailed.WithLabelValues("create", "invalid_price").Inc()
		return nil, err
	}
	if !product.ProductType.Valid() {
		util.ProductMutationsFailed.WithLabelValues("create", "invalid_type").Inc()
		return nil, apperr.InvalidProductType(string(product.ProductType))
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		util.SpanError(span, err)
		util.ProductMutationsFailed.WithLabelValues("create", "store").Inc()
		return nil, s.storeError(err, "create product")
	}

	s.cache.ClearPattern(ctx, listKeyPrefix)

	s.audit.Log(ctx, actorID, audit.ActionCreateProduct, product.Resource(), map[string]interface{}{
		"product_name": product.Name,
	})

	price := product.Price.String()
	available := product.IsAvailable
	s.notifier.Notify(ctx, models.MethodProductCreated, models.ProductEvent{
		ProductID:   product.ID,
		Name:        product.Name,
		ProductType: product.ProductType,
		NewPrice:    &price,
		IsAvailable: &available,
		ActorID:     actorID,
	}, models.UrgencyMedium)

	util.ProductMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("actor_id", actorID))
	return product, nil
}

// UpdatePrice changes the price, auditing significant changes before they are applied
func (s *ProductService) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal, actorID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdatePrice")
	defer span.End()

	if err := validatePrice(price); err != nil {
		util.ProductMutationsFailed.WithLabelValues("update_price", "invalid_price").Inc()
		return nil, err
	}

	// The delta is computed against the store, a cached copy may be stale.
	current, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, s.productError(err, id, "get product")
	}

	change := priceChangePercent(current.Price, price)
	significant := change.GreaterThan(s.significantChange)
	if significant {
		util.SignificantPriceChangesTotal.Inc()
		s.audit.Log(ctx, actorID, audit.ActionSignificantPriceChange, current.Resource(), map[string]interface{}{
			"old_price":      current.Price.String(),
			"new_price":      price.String(),
			"change_percent": change.StringFixed(2),
		})
	}

	updated, err := s.store.UpdateProductPrice(ctx, id, price)
	if err != nil {
		util.SpanError(span, err)
		util.ProductMutationsFailed.WithLabelValues("update_price", "store").Inc()
		return nil, s.productError(err, id, "update price")
	}

	s.invalidate(ctx, id)

	s.audit.Log(ctx, actorID, audit.ActionUpdatePrice, updated.Resource(), map[string]interface{}{
		"old_price": current.Price.String(),
		"new_price": updated.Price.String(),
	})

	urgency := models.UrgencyMedium
	if significant {
		urgency = models.UrgencyHigh
	}
	oldPrice, newPrice := current.Price.String(), updated.Price.String()
	s.notifier.Notify(ctx, models.MethodProductPriceUpdated, models.ProductEvent{
		ProductID:   updated.ID,
		Name:        updated.Name,
		ProductType: updated.ProductType,
		OldPrice:    &oldPrice,
		NewPrice:    &newPrice,
		ActorID:     actorID,
	}, urgency)

	util.ProductMutationsTotal.WithLabelValues("update_price").Inc()
	return updated, nil
}

// UpdateAvailability toggles whether the product can be ordered
func (s *ProductService) UpdateAvailability(ctx context.Context, id int64, available bool, actorID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateAvailability")
	defer span.End()

	updated, err := s.store.UpdateProductAvailability(ctx, id, available)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			util.SpanError(span, err)
		}
		util.ProductMutationsFailed.WithLabelValues("update_availability", "store").Inc()
		return nil, s.productError(err, id, "update availability")
	}

	s.invalidate(ctx, id)

	s.audit.Log(ctx, actorID, audit.ActionUpdateAvailability, updated.Resource(), map[string]interface{}{
		"is_available": available,
	})

	s.notifier.Notify(ctx, models.MethodProductAvailabilityUpdated, models.ProductEvent{
		ProductID:   updated.ID,
		Name:        updated.Name,
		ProductType: updated.ProductType,
		IsAvailable: &available,
		ActorID:     actorID,
	}, models.UrgencyMedium)

	util.ProductMutationsTotal.WithLabelValues("update_availability").Inc()
	return updated, nil
}

// Delete removes the product. A product deleted concurrently between the
// lookup and the delete is reported as not found.
func (s *ProductService) Delete(ctx context.Context, id int64, actorID string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return s.productError(err, id, "get product")
	}

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			util.SpanError(span, err)
		}
		util.ProductMutationsFailed.WithLabelValues("delete", "store").Inc()
		return s.productError(err, id, "delete product")
	}

	s.invalidate(ctx, id)

	s.audit.Log(ctx, actorID, audit.ActionDeleteProduct, product.Resource(), map[string]interface{}{
		"product_name": product.Name,
	})

	s.notifier.Notify(ctx, models.MethodProductDeleted, models.ProductEvent{
		ProductID:   product.ID,
		Name:        product.Name,
		ProductType: product.ProductType,
		ActorID:     actorID,
	}, models.UrgencyHigh)

	util.ProductMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info("Product deleted", zap.Int64("product_id", id), zap.String("actor_id", actorID))
	return nil
}

// AddCategory registers a category name
func (s *ProductService) AddCategory(ctx context.Context, name, actorID string) (*models.Category, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AddCategory")
	defer span.End()

	name = strings.TrimSpace(name)
	if len([]rune(name)) < minCategoryLength {
		return nil, apperr.Validation(fmt.Sprintf("category name must be at least %d characters", minCategoryLength))
	}

	category, err := s.store.AddCategory(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Newf(apperr.CodeConflict, "category %q already exists", name)
		}
		util.SpanError(span, err)
		return nil, s.storeError(err, "add category")
	}

	s.audit.Log(ctx, actorID, audit.ActionAddCategory, "categories", map[string]interface{}{
		"category": name,
	})
	util.ProductMutationsTotal.WithLabelValues("add_category").Inc()
	return category, nil
}

// AddUnit registers a unit name
func (s *ProductService) AddUnit(ctx context.Context, name, actorID string) (*models.Unit, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AddUnit")
	defer span.End()

	name = strings.TrimSpace(name)
	if len([]rune(name)) < minUnitLength {
		return nil, apperr.Validation(fmt.Sprintf("unit name must be at least %d character", minUnitLength))
	}

	unit, err := s.store.AddUnit(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Newf(apperr.CodeConflict, "unit %q already exists", name)
		}
		util.SpanError(span, err)
		return nil, s.storeError(err, "add unit")
	}

	s.audit.Log(ctx, actorID, audit.ActionAddUnit, "units", map[string]interface{}{
		"unit": name,
	})
	util.ProductMutationsTotal.WithLabelValues("add_unit").Inc()
	return unit, nil
}

// Invalidate drops the cached product and every cached listing.
func (s *ProductService) Invalidate(ctx context.Context, id int64) {
	s.invalidate(ctx, id)
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	s.cache.Delete(ctx, productKey(id))
	s.cache.ClearPattern(ctx, listKeyPrefix)
}

func (s *ProductService) productError(err error, id int64, op string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Product", id)
	}
	return s.storeError(err, op)
}

func (s *ProductService) storeError(err error, op string) error {
	s.logger.Error("Store operation failed", zap.String("op", op), zap.Error(err))
	if storeUnreachable(err) {
		return apperr.Unavailable(err, "database unavailable")
	}
	return apperr.Wrap(apperr.CodeInternal, err, fmt.Sprintf("failed to %s", op))
}

func storeUnreachable(err error) bool {
	var netErr net.Error
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr)
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return apperr.InvalidPrice(price)
	}
	if !models.PriceStorable(price) {
		return apperr.PriceNotStorable(price, models.PriceScale, models.MaxPrice)
	}
	return nil
}

// priceChangePercent is |new-old|/old*100
func priceChangePercent(old, updated decimal.Decimal) decimal.Decimal {
	if !old.IsPositive() {
		return decimal.NewFromInt(100)
	}
	return updated.Sub(old).Abs().Div(old).Mul(decimal.NewFromInt(100))
}
