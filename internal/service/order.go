package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

// ProductCache is invalidated for every product whose stock a checkout changed.
type ProductCache interface {
	InvalidateProducts(ctx context.Context, ids ...int64)
}

type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event model.OrderPlacedEvent) error
}

type InvoiceSettings struct {
	StoreName string
	TaxRate   decimal.Decimal
}

type OrderService struct {
	store     repository.Store
	cache     ProductCache
	publisher OrderPublisher
	invoice   InvoiceSettings
	log       *slog.Logger
}

func NewOrderService(store repository.Store, cache ProductCache, publisher OrderPublisher, invoice InvoiceSettings, log *slog.Logger) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{store: store, cache: cache, publisher: publisher, invoice: invoice, log: log}
}

// Checkout turns the user's cart into an order in one transaction. Products
// are row-locked before their stock is checked, so the stock read is the one
// the decrement applies to. Cart lines whose product no longer exists are
// dropped. On any error nothing is written.
func (s *OrderService) Checkout(ctx context.Context, userID int64) (*model.Order, error) {
	var order *model.Order
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		ids := make([]int64, 0, len(cart))
		for _, item := range cart {
			ids = append(ids, item.ProductID)
		}
		locked, err := tx.Products().GetForUpdate(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}
		products := make(map[int64]*model.Product, len(locked))
		for i := range locked {
			products[locked[i].ID] = &locked[i]
		}

		total := decimal.Zero
		lines := make([]model.CartItem, 0, len(cart))
		for _, item := range cart {
			product, ok := products[item.ProductID]
			if !ok {
				continue
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, item)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order = &model.Order{UserID: userID, TotalAmount: total, Status: model.OrderStatusPending}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			product := products[line.ProductID]
			if product.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductID: product.ID, ProductName: product.Name,
					Requested: line.Quantity, Remaining: product.Stock,
				}
			}
			ok, err := tx.Products().DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &InsufficientStockError{
					ProductID: product.ID, ProductName: product.Name,
					Requested: line.Quantity, Remaining: product.Stock,
				}
			}
			items = append(items, model.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
			})
		}

		if err := tx.Orders().CreateItems(ctx, order.ID, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items

		if err := tx.Carts().Clear(ctx, userID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCheckout(ctx, order)
	return order, nil
}

func (s *OrderService) afterCheckout(ctx context.Context, order *model.Order) {
	log := s.log.With("order_id", order.ID, "user_id", order.UserID)

	if s.cache != nil {
		ids := make([]int64, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		s.cache.InvalidateProducts(ctx, ids...)
	}

	if s.publisher != nil {
		event := model.OrderPlacedEvent{
			OrderID:     order.ID,
			OrderCode:   order.Code(),
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
			PlacedAt:    order.CreatedAt,
		}
		if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
			log.Error("publish order placed", "error", err)
		}
	}
	log.Info("order placed", "total", order.TotalAmount.StringFixed(2), "items", len(order.Items))
}

// Summary prices the current cart the way Checkout would, without locking.
func (s *OrderService) Summary(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	return NewCartService(s.store).View(ctx, userID)
}

func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]dto.OrderResponse, error) {
	orders, err := s.store.Orders().ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

// GetForUser hides orders owned by someone else behind ErrOrderNotFound.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) Invoice(ctx context.Context, userID, orderID int64) (*dto.InvoiceResponse, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	subtotal := decimal.Zero
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(s.invoice.TaxRate).Round(2)

	return &dto.InvoiceResponse{
		StoreName:  s.invoice.StoreName,
		Order:      toOrderResponse(order),
		Customer:   toUserResponse(user),
		Subtotal:   subtotal,
		TaxRate:    s.invoice.TaxRate,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.store.Orders().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (*dto.OrderResponse, error) {
	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*dto.OrderResponse, error) {
	st, ok := model.ParseOrderStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	if err := s.store.Orders().UpdateStatus(ctx, orderID, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	s.log.Info("order status updated", "order_id", orderID, "status", st)
	return s.Get(ctx, orderID)
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			LineTotal:   item.LineTotal(),
		})
	}
	return dto.OrderResponse{
		ID:          o.ID,
		Code:        o.Code(),
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}
