package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/greenmart/internal/dto"
)

func newTestProductService(store *memStore) *ProductService {
	return NewProductService(store.Products(), store.Categories(), nil)
}

func TestProductService_Create(t *testing.T) {
	svc := newTestProductService(newMemStore())
	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Spinach", Price: decimal.NewFromFloat(1.99), Stock: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "Spinach", resp.Name)
	assert.NotZero(t, resp.ID)
}

func TestProductService_Create_Validation(t *testing.T) {
	svc := newTestProductService(newMemStore())

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{Name: "Bad", Price: decimal.NewFromInt(-1)})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)

	missing := int64(42)
	_, err = svc.Create(context.Background(), dto.CreateProductRequest{Name: "Orphan", Price: decimal.NewFromInt(1), CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := newTestProductService(newMemStore())
	_, err := svc.GetByID(context.Background(), 123)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)
	p := seedProduct(t, store, "Carrot", "1.20", 30)

	name := "Baby Carrot"
	stock := 12
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Baby Carrot", resp.Name)
	assert.Equal(t, 12, resp.Stock)
	assert.True(t, resp.Price.Equal(decimal.RequireFromString("1.20")))

	negative := -3
	_, err = svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Stock: &negative})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Update(context.Background(), 999, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)
	p := seedProduct(t, store, "Beet", "0.90", 5)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrProductNotFound)
}

func TestProductService_ListAndSearch(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)
	for _, name := range []string{"Green Tea", "Black Tea", "Coffee"} {
		seedProduct(t, store, name, "3.00", 5)
	}

	page, err := svc.List(context.Background(), dto.ListProductsRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Products, 2)

	found, err := svc.Search(context.Background(), "tea")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductService_LowStock(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)
	seedProduct(t, store, "Plenty", "1.00", 50)
	low := seedProduct(t, store, "Scarce", "1.00", 2)

	products, err := svc.LowStock(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}

func TestCategoryService(t *testing.T) {
	store := newMemStore()
	cache := &recordingCache{}
	svc := NewCategoryService(store.Categories(), cache)
	ctx := context.Background()

	fruit, err := svc.Create(ctx, dto.CategoryRequest{Name: "Fruit"})
	require.NoError(t, err)

	p := seedProduct(t, store, "Mango", "2.00", 5)
	p.CategoryID = &fruit.ID
	require.NoError(t, store.Products().Update(ctx, p))

	renamed, err := svc.Update(ctx, fruit.ID, dto.CategoryRequest{Name: "Fruits"})
	require.NoError(t, err)
	assert.Equal(t, "Fruits", renamed.Name)

	require.NoError(t, svc.Delete(ctx, fruit.ID))
	assert.ErrorIs(t, svc.Delete(ctx, fruit.ID), ErrCategoryNotFound)
	assert.Nil(t, store.data.products[p.ID].CategoryID)
	assert.Equal(t, []int64{p.ID}, cache.invalidated, "products that lost the category must drop their cached copy")

	_, err = svc.Create(ctx, dto.CategoryRequest{Name: "  "})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAdminService_DashboardAndReports(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "admin-report@example.com")
	p := seedProduct(t, store, "Cumin", "4.00", 3)
	seedProduct(t, store, "Pepper", "4.00", 30)
	addToCart(t, store, user.ID, p.ID, 2)
	orders, _, _ := newTestOrderService(store)
	_, err := orders.Checkout(context.Background(), user.ID)
	require.NoError(t, err)

	svc := NewAdminService(store, 5)
	dash, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Users)
	assert.Equal(t, 2, dash.Products)
	assert.Equal(t, 1, dash.Orders)

	report, err := svc.Reports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.00", report.Revenue.StringFixed(2))
	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "Cumin", report.LowStock[0].Name)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestContactService_Submit(t *testing.T) {
	store := newMemStore()
	svc := NewContactService(store.Contacts())

	require.NoError(t, svc.Submit(context.Background(), dto.ContactRequest{
		Name: "Ravi", Email: "ravi@example.com", Phone: "555-0101", Message: "Do you deliver on Sundays?",
	}))
	assert.Len(t, store.data.contacts, 1)

	err := svc.Submit(context.Background(), dto.ContactRequest{Name: "Ravi", Email: "ravi@example.com", Phone: " ", Message: "hi"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "phone", vErr.Field)
}
