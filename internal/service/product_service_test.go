package service

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-service/internal/apperr"
	"catalog-service/internal/audit"
	"catalog-service/internal/cache"
	"catalog-service/internal/models"
	"catalog-service/internal/redisclient"
	"catalog-service/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	products map[int64]*models.Product
	names    map[string]bool
	nextID   int64
	calls    map[string]int

	// deleteErr, when set, is returned by DeleteProduct
	deleteErr error
	// failWith, when set, is returned by every call
	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[int64]*models.Product),
		names:    make(map[string]bool),
		calls:    make(map[string]int),
	}
}

func (m *memoryStore) record(op string) error {
	m.calls[op]++
	return m.failWith
}

func (m *memoryStore) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *memoryStore) ListProducts(_ context.Context, filter models.ProductFilter, _ string, limit, offset int) ([]models.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("list"); err != nil {
		return nil, 0, err
	}

	var matched []models.Product
	for _, p := range m.products {
		if filter.ProductType != "" && string(p.ProductType) != filter.ProductType {
			continue
		}
		if filter.BusinessUnit != "" && p.BusinessUnit != filter.BusinessUnit {
			continue
		}
		if filter.Location != "" && p.Location != filter.Location {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]models.Product{}, matched[offset:end]...), total, nil
}

func (m *memoryStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("get"); err != nil {
		return nil, err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("create"); err != nil {
		return err
	}
	m.nextID++
	now := time.Now().UTC().Truncate(time.Microsecond)
	product.ID = m.nextID
	product.CreatedAt = now
	product.UpdatedAt = now
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memoryStore) update(id int64, apply func(*models.Product)) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	apply(p)
	p.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	cp := *p
	return &cp, nil
}

func (m *memoryStore) UpdateProductPrice(_ context.Context, id int64, price decimal.Decimal) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("update_price"); err != nil {
		return nil, err
	}
	return m.update(id, func(p *models.Product) { p.Price = price })
}

func (m *memoryStore) UpdateProductAvailability(_ context.Context, id int64, available bool) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("update_availability"); err != nil {
		return nil, err
	}
	return m.update(id, func(p *models.Product) { p.IsAvailable = available })
}

func (m *memoryStore) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("delete"); err != nil {
		return err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryStore) AddCategory(_ context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("add_category"); err != nil {
		return nil, err
	}
	if m.names["category:"+name] {
		return nil, store.ErrDuplicate
	}
	m.names["category:"+name] = true
	return &models.Category{ID: int64(len(m.names)), Name: name}, nil
}

func (m *memoryStore) AddUnit(_ context.Context, name string) (*models.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("add_unit"); err != nil {
		return nil, err
	}
	if m.names["unit:"+name] {
		return nil, store.ErrDuplicate
	}
	m.names["unit:"+name] = true
	return &models.Unit{ID: int64(len(m.names)), Name: name}, nil
}

// memoryCache stores JSON like the Redis-backed cache does
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	return ok && json.Unmarshal(raw, dest) == nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err == nil {
		c.entries[key] = raw
	}
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) ClearPattern(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type auditEntry struct {
	userID   string
	action   string
	resource string
	details  map[string]interface{}
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *memoryAudit) Log(_ context.Context, userID, action, resource string, details map[string]interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{userID, action, resource, details})
}

func (a *memoryAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

type notification struct {
	method  string
	event   models.ProductEvent
	urgency models.Urgency
}

type memoryNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *memoryNotifier) Notify(_ context.Context, method string, event models.ProductEvent, urgency models.Urgency) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{method, event, urgency})
}

type fixture struct {
	svc      *ProductService
	store    *memoryStore
	cache    *memoryCache
	audit    *memoryAudit
	notifier *memoryNotifier
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemoryStore(),
		cache:    newMemoryCache(),
		audit:    &memoryAudit{},
		notifier: &memoryNotifier{},
	}
	f.svc = NewProductService(f.store, f.cache, f.notifier, f.audit, 20)
	return f
}

func newProduct(price string) *models.Product {
	description := "2U rack server"
	return &models.Product{
		Name:         "Dell PowerEdge R740",
		Description:  &description,
		Category:     "Servers",
		Unit:         "Server",
		BusinessUnit: "Infrastructure",
		Location:     "US",
		Price:        decimal.RequireFromString(price),
		ProductType:  models.ProductTypeHW,
		IsAvailable:  true,
	}
}

func TestNonPositivePriceNeverReachesStore(t *testing.T) {
	for _, price := range []string{"0", "-1", "-0.01", "-5999.99"} {
		t.Run(price, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			_, err := f.svc.Create(ctx, newProduct(price), "admin-1")
			assert.Equal(t, apperr.CodeInvalidPrice, apperr.CodeOf(err))
			assert.Contains(t, err.Error(), price)

			_, err = f.svc.UpdatePrice(ctx, 1, decimal.RequireFromString(price), "admin-1")
			assert.Equal(t, apperr.CodeInvalidPrice, apperr.CodeOf(err))

			assert.Zero(t, f.store.totalCalls())
			assert.Empty(t, f.audit.entries)
		})
	}
}

func TestUnstorablePriceNeverReachesStore(t *testing.T) {
	for _, price := range []string{"0.004", "5999.999", "10000000000", "12345678901.5"} {
		t.Run(price, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			_, err := f.svc.Create(ctx, newProduct(price), "admin-1")
			assert.Equal(t, apperr.CodeInvalidPrice, apperr.CodeOf(err))
			assert.Contains(t, err.Error(), price)

			_, err = f.svc.UpdatePrice(ctx, 1, decimal.RequireFromString(price), "admin-1")
			assert.Equal(t, apperr.CodeInvalidPrice, apperr.CodeOf(err))

			assert.Zero(t, f.store.totalCalls())
		})
	}
}

func TestStorablePriceBounds(t *testing.T) {
	for _, price := range []string{"0.01", "5999.9", "5999.90", "9999999999.99"} {
		t.Run(price, func(t *testing.T) {
			f := newFixture()
			created, err := f.svc.Create(context.Background(), newProduct(price), "admin-1")
			require.NoError(t, err)
			assert.True(t, created.Price.Equal(decimal.RequireFromString(price)))
		})
	}
}

func TestCreateRejectsUnknownProductType(t *testing.T) {
	for _, productType := range []string{"", "hw", "SaaS", "HWW"} {
		t.Run(productType, func(t *testing.T) {
			f := newFixture()
			p := newProduct("10")
			p.ProductType = models.ProductType(productType)

			_, err := f.svc.Create(context.Background(), p, "admin-1")
			assert.Equal(t, apperr.CodeInvalidProductType, apperr.CodeOf(err))
			assert.Zero(t, f.store.totalCalls())
		})
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// a cached listing must not survive the create
	_, err := f.svc.List(ctx, ListParams{})
	require.NoError(t, err)
	require.True(t, f.cache.has("products:::::id:1:50"))

	created, err := f.svc.Create(ctx, newProduct("5999.99"), "admin-1")
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, f.cache.has("products:::::id:1:50"))

	for i := 0; i < 2; i++ {
		got, err := f.svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, *created.Description, *got.Description)
		assert.True(t, created.Price.Equal(got.Price))
		assert.Equal(t, created.ProductType, got.ProductType)
		assert.Equal(t, created.Category, got.Category)
		assert.Equal(t, created.IsAvailable, got.IsAvailable)
	}
	assert.Equal(t, 1, f.store.calls["get"])

	assert.Equal(t, []string{audit.ActionCreateProduct}, f.audit.actions())
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.MethodProductCreated, f.notifier.sent[0].method)
	assert.Equal(t, models.UrgencyMedium, f.notifier.sent[0].urgency)
}

func TestMutationsNeverServeStaleProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newProduct("100"), "admin-1")
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, f.cache.has(productKey(created.ID)))

	_, err = f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("110"), "admin-1")
	require.NoError(t, err)
	got, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "110", got.Price.String())

	_, err = f.svc.UpdateAvailability(ctx, created.ID, false, "admin-1")
	require.NoError(t, err)
	got, err = f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	require.NoError(t, f.svc.Delete(ctx, created.ID, "admin-1"))
	_, err = f.svc.GetByID(ctx, created.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPriceChangeScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newProduct("5999.99"), "admin-1")
	require.NoError(t, err)

	// 16.7%
	updated, err := f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("6999.99"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "6999.99", updated.Price.String())
	assert.NotContains(t, f.audit.actions(), audit.ActionSignificantPriceChange)
	assert.Equal(t, models.UrgencyMedium, f.notifier.sent[len(f.notifier.sent)-1].urgency)

	// 28.6%
	_, err = f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("8999.99"), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		audit.ActionCreateProduct,
		audit.ActionUpdatePrice,
		audit.ActionSignificantPriceChange,
		audit.ActionUpdatePrice,
	}, f.audit.actions())

	significant := f.audit.entries[2]
	assert.Equal(t, "6999.99", significant.details["old_price"])
	assert.Equal(t, "8999.99", significant.details["new_price"])
	assert.Equal(t, "28.57", significant.details["change_percent"])

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, models.MethodProductPriceUpdated, last.method)
	assert.Equal(t, models.UrgencyHigh, last.urgency)
	assert.Equal(t, "6999.99", *last.event.OldPrice)

	require.NoError(t, f.svc.Delete(ctx, created.ID, "admin-1"))
	_, err = f.svc.GetByID(ctx, created.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Equal(t, models.UrgencyHigh, f.notifier.sent[len(f.notifier.sent)-1].urgency)
}

func TestPriceChangeAtThresholdIsNotSignificant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newProduct("100"), "admin-1")
	require.NoError(t, err)

	_, err = f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("80"), "admin-1")
	require.NoError(t, err)
	assert.NotContains(t, f.audit.actions(), audit.ActionSignificantPriceChange)

	_, err = f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("63.99"), "admin-1")
	require.NoError(t, err)
	assert.Contains(t, f.audit.actions(), audit.ActionSignificantPriceChange)
}

func TestUpdatePriceUsesStoreNotCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newProduct("100"), "admin-1")
	require.NoError(t, err)

	stale := *created
	stale.Price = decimal.RequireFromString("50")
	f.cache.Set(ctx, productKey(created.ID), stale, 0)

	// 10% against the store, 120% against the stale cache entry
	_, err = f.svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("110"), "admin-1")
	require.NoError(t, err)
	assert.NotContains(t, f.audit.actions(), audit.ActionSignificantPriceChange)
}

func TestUpdateMissingProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.UpdatePrice(ctx, 99, decimal.RequireFromString("10"), "admin-1")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.Equal(t, "Product with ID 99 not found", apperr.As(err).Message())

	_, err = f.svc.UpdateAvailability(ctx, 99, true, "admin-1")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(f.svc.Delete(ctx, 99, "admin-1")))
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.notifier.sent)
}

func TestDeleteRaceSurfacesNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, newProduct("100"), "admin-1")
	require.NoError(t, err)

	f.store.deleteErr = store.ErrNotFound
	err = f.svc.Delete(ctx, created.ID, "admin-1")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	assert.NotContains(t, f.audit.actions(), audit.ActionDeleteProduct)
}

func TestListPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		p := newProduct(fmt.Sprintf("%d.50", i+1))
		p.Name = fmt.Sprintf("Product %02d", i)
		_, err := f.svc.Create(ctx, p, "admin-1")
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)

	last, err := f.svc.List(ctx, ListParams{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	_, err = f.svc.List(ctx, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.calls["list"])
}

func TestListRejectsUnknownSort(t *testing.T) {
	f := newFixture()

	_, err := f.svc.List(context.Background(), ListParams{SortBy: "price; DROP TABLE products"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Zero(t, f.store.totalCalls())
}

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListParams
		want ListParams
	}{
		{"defaults", ListParams{}, ListParams{SortBy: "id", Page: 1, PageSize: 50}},
		{"negative page", ListParams{Page: -3, PageSize: 10}, ListParams{SortBy: "id", Page: 1, PageSize: 10}},
		{"page size above max", ListParams{Page: 2, PageSize: 500}, ListParams{SortBy: "id", Page: 2, PageSize: 100}},
		{"negative page size", ListParams{PageSize: -1, SortBy: "price"}, ListParams{SortBy: "price", Page: 1, PageSize: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListKeyIsDeterministic(t *testing.T) {
	p := ListParams{
		Filter:   models.ProductFilter{ProductType: "HW", Location: "US"},
		SortBy:   "price",
		Page:     2,
		PageSize: 10,
	}
	assert.Equal(t, "products:HW::US::price:2:10", listKey(p))
	assert.Equal(t, listKey(p), listKey(p))
	assert.Equal(t, "products:SW:North+America:US%3AEU:a%2Fb:id:1:50",
		listKey(ListParams{
			Filter:   models.ProductFilter{ProductType: "SW", BusinessUnit: "North America", Location: "US:EU", Category: "a/b"},
			SortBy:   "id",
			Page:     1,
			PageSize: 50,
		}))
	assert.Equal(t, "product:42", productKey(42))
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(10, 10))
}

func TestListKeySeparatorInFilterValues(t *testing.T) {
	split := []models.ProductFilter{
		{ProductType: "HW:x"},
		{ProductType: "HW", BusinessUnit: "x:"},
		{ProductType: "HW", BusinessUnit: "x", Location: ""},
		{Location: "US:EU"},
		{Location: "US", Category: "EU"},
	}

	seen := map[string]models.ProductFilter{}
	for _, filter := range split {
		key := listKey(ListParams{Filter: filter, SortBy: "id", Page: 1, PageSize: 10})
		if prev, ok := seen[key]; ok {
			t.Fatalf("filters %+v and %+v share key %q", prev, filter, key)
		}
		seen[key] = filter
	}
}

func TestListDoesNotServeAnotherFiltersPage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := newProduct("100")
	p.Location = "US:EU"
	_, err := f.svc.Create(ctx, p, "admin-1")
	require.NoError(t, err)

	combined, err := f.svc.List(ctx, ListParams{Filter: models.ProductFilter{Location: "US:EU"}})
	require.NoError(t, err)
	assert.Equal(t, 1, combined.Total)

	split, err := f.svc.List(ctx, ListParams{Filter: models.ProductFilter{Location: "US", Category: "EU"}})
	require.NoError(t, err)
	assert.Zero(t, split.Total)
	assert.Empty(t, split.Items)
}

func TestAddCategoryAndUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddCategory(ctx, " S ", "admin-1")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	_, err = f.svc.AddUnit(ctx, "   ", "admin-1")
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	assert.Zero(t, f.store.totalCalls())

	category, err := f.svc.AddCategory(ctx, "  Servers ", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Servers", category.Name)

	_, err = f.svc.AddCategory(ctx, "Servers", "admin-1")
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))

	unit, err := f.svc.AddUnit(ctx, "U", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "U", unit.Name)

	assert.Equal(t, []string{audit.ActionAddCategory, audit.ActionAddUnit}, f.audit.actions())
	assert.Empty(t, f.cache.entries)
}

func TestStoreUnavailable(t *testing.T) {
	f := newFixture()
	f.store.failWith = driver.ErrBadConn

	_, err := f.svc.GetByID(context.Background(), 1)
	assert.Equal(t, apperr.CodeUpstreamUnavailable, apperr.CodeOf(err))

	f.store.failWith = fmt.Errorf("syntax error at or near")
	_, err = f.svc.List(context.Background(), ListParams{})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestGetByIDWithCacheBackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisclient.NewClient(redisclient.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := newMemoryStore()
	svc := NewProductService(s, cache.New(client, 0, 50*time.Millisecond), &memoryNotifier{}, &memoryAudit{}, 20)
	ctx := context.Background()

	created, err := svc.Create(ctx, newProduct("5999.99"), "admin-1")
	require.NoError(t, err)

	mr.Close()

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("6000"), "admin-1")
	require.NoError(t, err)
}
