package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        ProductCache
}

// A nil cache is allowed.
func NewCategoryService(categoryRepo repository.CategoryRepository, cache ProductCache) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, cache: cache}
}

func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return resp, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &model.Category{Name: strings.TrimSpace(req.Name)}
	if category.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &dto.CategoryResponse{ID: category.ID, Name: category.Name}, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &model.Category{ID: id, Name: strings.TrimSpace(req.Name)}
	if category.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &dto.CategoryResponse{ID: category.ID, Name: category.Name}, nil
}

// Delete leaves the category's products in place with no category.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	detached, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if s.cache != nil && len(detached) > 0 {
		s.cache.InvalidateProducts(ctx, detached...)
	}
	return nil
}
