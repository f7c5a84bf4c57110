package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionIncrease, DirectionDecrease:
		return d, nil
	}
	return "", ErrInvalidDirection
}

type CartService struct {
	store repository.Store
}

func NewCartService(store repository.Store) *CartService {
	return &CartService{store: store}
}

// Add puts one unit of the product in the cart, incrementing an existing line.
func (s *CartService) Add(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	item, err := s.store.Carts().Add(ctx, userID, productID, 1)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

// UpdateQuantity moves the line by one unit and returns the new quantity.
// Zero means the line was removed.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int64, dir Direction) (int, error) {
	delta := 1
	switch dir {
	case DirectionIncrease:
	case DirectionDecrease:
		delta = -1
	default:
		return 0, ErrInvalidDirection
	}

	var quantity int
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		q, err := tx.Carts().AdjustQuantity(ctx, userID, productID, delta)
		if err != nil {
			return err
		}
		if q < 1 {
			q = 0
			if err := tx.Carts().Delete(ctx, userID, productID); err != nil {
				return err
			}
		}
		quantity = q
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrCartItemNotFound
		}
		return 0, fmt.Errorf("update cart quantity: %w", err)
	}
	return quantity, nil
}

// Remove is a no-op when the line is absent.
func (s *CartService) Remove(ctx context.Context, userID, productID int64) error {
	if err := s.store.Carts().Delete(ctx, userID, productID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Carts().Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// View prices the cart at current product prices. Lines whose product has
// been deleted are left out.
func (s *CartService) View(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	items, err := s.store.Carts().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	resp := &dto.CartResponse{Items: []dto.CartLineResponse{}, Subtotal: decimal.Zero}
	for _, item := range items {
		product, err := s.store.Products().GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			continue
		}
		line := dto.CartLineResponse{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  item.Quantity,
			LineTotal: product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			InStock:   product.Stock,
		}
		resp.Items = append(resp.Items, line)
		resp.Count += item.Quantity
		resp.Subtotal = resp.Subtotal.Add(line.LineTotal)
	}
	return resp, nil
}
