package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/repository"
)

type WishlistService struct {
	store repository.Store
}

func NewWishlistService(store repository.Store) *WishlistService {
	return &WishlistService{store: store}
}

// Add reports false when the product was already on the wishlist.
func (s *WishlistService) Add(ctx context.Context, userID, productID int64) (bool, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return false, ErrProductNotFound
	}

	added, err := s.store.Wishlists().Add(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}
	return added, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID int64) error {
	if err := s.store.Wishlists().Delete(ctx, userID, productID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

func (s *WishlistService) Clear(ctx context.Context, userID int64) error {
	if err := s.store.Wishlists().Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

func (s *WishlistService) View(ctx context.Context, userID int64) (*dto.WishlistResponse, error) {
	items, err := s.store.Wishlists().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	resp := &dto.WishlistResponse{Items: []dto.ProductResponse{}}
	for _, item := range items {
		product, err := s.store.Products().GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product != nil {
			resp.Items = append(resp.Items, toProductResponse(product))
		}
	}
	return resp, nil
}
