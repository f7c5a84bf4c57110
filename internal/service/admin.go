package service

import (
	"context"
	"fmt"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/repository"
)

type AdminService struct {
	store             repository.Store
	lowStockThreshold int
}

func NewAdminService(store repository.Store, lowStockThreshold int) *AdminService {
	return &AdminService{store: store, lowStockThreshold: lowStockThreshold}
}

func (s *AdminService) LowStockThreshold() int { return s.lowStockThreshold }

func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var resp dto.DashboardResponse
	var err error
	if resp.Users, err = s.store.Users().Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if resp.Products, err = s.store.Products().Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if resp.Orders, err = s.store.Orders().Count(ctx); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if resp.Categories, err = s.store.Categories().Count(ctx); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	return &resp, nil
}

func (s *AdminService) Reports(ctx context.Context) (*dto.ReportResponse, error) {
	resp := &dto.ReportResponse{LowStockThreshold: s.lowStockThreshold}
	var err error
	if resp.TotalOrders, err = s.store.Orders().Count(ctx); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if resp.TotalProducts, err = s.store.Products().Count(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if resp.Revenue, err = s.store.Orders().Revenue(ctx); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	low, err := s.store.Products().ListLowStock(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	resp.LowStock = make([]dto.ProductResponse, 0, len(low))
	for i := range low {
		resp.LowStock = append(resp.LowStock, toProductResponse(&low[i]))
	}
	return resp, nil
}

func (s *AdminService) Users(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, nil
}
