package repository

import (
	"context"
	"fmt"

	"github.com/flicky/greenmart/internal/model"
)

type WishlistRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	// Add reports whether a new row was inserted.
	Add(ctx context.Context, userID, productID int64) (bool, error)
	Delete(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type pgWishlistRepo struct{ db DBTX }

func NewWishlistRepository(db DBTX) WishlistRepository {
	return &pgWishlistRepo{db: db}
}

func (r *pgWishlistRepo) ListByUser(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, product_id, created_at FROM wishlist_items WHERE user_id = $1 ORDER BY created_at, product_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get wishlist items: %w", err)
	}
	defer rows.Close()

	var items []model.WishlistItem
	for rows.Next() {
		var item model.WishlistItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgWishlistRepo) Add(ctx context.Context, userID, productID int64) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`INSERT INTO wishlist_items (user_id, product_id, created_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, product_id) DO NOTHING`,
		userID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("add wishlist item: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *pgWishlistRepo) Delete(ctx context.Context, userID, productID int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgWishlistRepo) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}
