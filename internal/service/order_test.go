package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/greenmart/internal/model"
)

type recordingCache struct{ invalidated []int64 }

func (c *recordingCache) InvalidateProducts(_ context.Context, ids ...int64) {
	c.invalidated = append(c.invalidated, ids...)
}

type recordingPublisher struct {
	events []model.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e model.OrderPlacedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func newTestOrderService(store *memStore) (*OrderService, *recordingCache, *recordingPublisher) {
	cache := &recordingCache{}
	pub := &recordingPublisher{}
	svc := NewOrderService(store, cache, pub, InvoiceSettings{StoreName: "GREENMART", TaxRate: decimal.RequireFromString("0.05")}, nil)
	return svc, cache, pub
}

func addToCart(t *testing.T, store *memStore, userID, productID int64, qty int) {
	t.Helper()
	_, err := store.Carts().Add(context.Background(), userID, productID, qty)
	require.NoError(t, err)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "empty@example.com")
	svc, _, pub := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.data.orders)
	assert.Empty(t, pub.events)
}

func TestOrderService_Checkout_Success(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "buyer@example.com")
	a := seedProduct(t, store, "Apples", "10.00", 10)
	b := seedProduct(t, store, "Bananas", "5.00", 4)
	addToCart(t, store, user.ID, a.ID, 2)
	addToCart(t, store, user.ID, b.ID, 1)
	svc, cache, pub := newTestOrderService(store)

	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, 8, stockOf(store, a.ID))
	assert.Equal(t, 3, stockOf(store, b.ID))

	cart, _ := store.Carts().ListByUser(context.Background(), user.ID)
	assert.Empty(t, cart)

	stored, err := store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	sum := decimal.Zero
	for _, item := range stored.Items {
		sum = sum.Add(item.LineTotal())
	}
	assert.True(t, sum.Equal(stored.TotalAmount))

	assert.ElementsMatch(t, []int64{a.ID, b.ID}, cache.invalidated)
	require.Len(t, pub.events, 1)
	assert.Equal(t, order.Code(), pub.events[0].OrderCode)
}

func TestOrderService_Checkout_InsufficientStock(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "short@example.com")
	c := seedProduct(t, store, "Cherries", "3.00", 2)
	addToCart(t, store, user.ID, c.ID, 5)
	before := store.data.clone()
	svc, cache, pub := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), user.ID)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, c.ID, stockErr.ProductID)
	assert.Equal(t, "Cherries", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Remaining)
	assert.Equal(t, "Only 2 left for Cherries", err.Error())

	assert.Equal(t, before, store.data)
	assert.Empty(t, cache.invalidated)
	assert.Empty(t, pub.events)
}

func TestOrderService_Checkout_LaterLineShortRollsBackEarlierLines(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "partial@example.com")
	ok := seedProduct(t, store, "Bread", "2.00", 10)
	short := seedProduct(t, store, "Butter", "4.00", 0)
	addToCart(t, store, user.ID, ok.ID, 3)
	addToCart(t, store, user.ID, short.ID, 1)
	before := store.data.clone()
	svc, _, _ := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), user.ID)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, before, store.data)
	assert.Equal(t, 10, stockOf(store, ok.ID))
}

func TestOrderService_Checkout_PersistenceFailureRollsBack(t *testing.T) {
	for _, op := range []string{"orders.CreateItems", "carts.Clear", "products.DecrementStock"} {
		t.Run(op, func(t *testing.T) {
			store := newMemStore()
			user := seedUser(t, store, "fail@example.com")
			p := seedProduct(t, store, "Milk", "1.50", 5)
			addToCart(t, store, user.ID, p.ID, 2)
			before := store.data.clone()

			errBoom := errors.New("connection reset")
			store.fail[op] = errBoom
			svc, _, pub := newTestOrderService(store)

			_, err := svc.Checkout(context.Background(), user.ID)
			assert.ErrorIs(t, err, errBoom)
			assert.Equal(t, before, store.data)
			assert.Empty(t, pub.events)
		})
	}
}

func TestOrderService_Checkout_DropsDeletedProducts(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "gone@example.com")
	kept := seedProduct(t, store, "Rice", "6.00", 5)
	gone := seedProduct(t, store, "Quinoa", "9.00", 5)
	addToCart(t, store, user.ID, kept.ID, 1)
	addToCart(t, store, user.ID, gone.ID, 1)
	require.NoError(t, store.Products().Delete(context.Background(), gone.ID))
	svc, _, _ := newTestOrderService(store)

	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("6.00")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, kept.ID, order.Items[0].ProductID)
}

func TestOrderService_Checkout_OnlyDeletedProducts(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "allgone@example.com")
	gone := seedProduct(t, store, "Ghee", "9.00", 5)
	addToCart(t, store, user.ID, gone.ID, 1)
	require.NoError(t, store.Products().Delete(context.Background(), gone.ID))
	svc, _, _ := newTestOrderService(store)

	_, err := svc.Checkout(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.data.orders)
}

func TestOrderService_Checkout_PublishFailureKeepsOrder(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "pub@example.com")
	p := seedProduct(t, store, "Eggs", "3.00", 12)
	addToCart(t, store, user.ID, p.ID, 1)
	svc, _, pub := newTestOrderService(store)
	pub.err = errors.New("broker down")

	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, store.data.orders, order.ID)
}

func TestOrderService_TotalIgnoresLaterPriceChange(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "price@example.com")
	p := seedProduct(t, store, "Honey", "10.00", 5)
	addToCart(t, store, user.ID, p.ID, 2)
	svc, _, _ := newTestOrderService(store)

	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)

	p.Price = decimal.RequireFromString("99.00")
	require.NoError(t, store.Products().Update(context.Background(), p))

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, stored.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func TestOrderService_StockNeverNegativeAcrossCheckouts(t *testing.T) {
	store := newMemStore()
	p := seedProduct(t, store, "Avocado", "2.00", 3)
	svc, _, _ := newTestOrderService(store)

	for i, qty := range []int{2, 2, 1, 1} {
		user := seedUser(t, store, strings.Repeat("u", i+1)+"@example.com")
		addToCart(t, store, user.ID, p.ID, qty)
		_, _ = svc.Checkout(context.Background(), user.ID)
		assert.GreaterOrEqual(t, stockOf(store, p.ID), 0)
	}
	assert.Equal(t, 0, stockOf(store, p.ID))
}

func TestOrderService_GetForUser_NotOwner(t *testing.T) {
	store := newMemStore()
	owner := seedUser(t, store, "owner@example.com")
	other := seedUser(t, store, "other@example.com")
	p := seedProduct(t, store, "Tea", "4.00", 5)
	addToCart(t, store, owner.ID, p.ID, 1)
	svc, _, _ := newTestOrderService(store)
	order, err := svc.Checkout(context.Background(), owner.ID)
	require.NoError(t, err)

	_, err = svc.GetForUser(context.Background(), other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := svc.GetForUser(context.Background(), owner.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderService_Invoice(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "invoice@example.com")
	p := seedProduct(t, store, "Saffron", "33.33", 5)
	addToCart(t, store, user.ID, p.ID, 1)
	svc, _, _ := newTestOrderService(store)
	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)

	inv, err := svc.Invoice(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "33.33", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "1.67", inv.Tax.StringFixed(2))
	assert.Equal(t, "35.00", inv.GrandTotal.StringFixed(2))
	assert.Equal(t, order.Code(), inv.Order.Code)

	var buf bytes.Buffer
	require.NoError(t, WriteReceipt(&buf, inv))
	receipt := buf.String()
	assert.Contains(t, receipt, "GREENMART")
	assert.Contains(t, receipt, "Invoice: "+order.Code())
	assert.Contains(t, receipt, "Tax (5%):")
	for _, line := range strings.Split(strings.TrimRight(receipt, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), ReceiptWidth, line)
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	store := newMemStore()
	user := seedUser(t, store, "status@example.com")
	p := seedProduct(t, store, "Oats", "4.00", 5)
	addToCart(t, store, user.ID, p.ID, 1)
	svc, _, _ := newTestOrderService(store)
	order, err := svc.Checkout(context.Background(), user.ID)
	require.NoError(t, err)

	resp, err := svc.UpdateStatus(context.Background(), order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, resp.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), 9999, "Confirmed")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
