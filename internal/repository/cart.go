package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flicky/greenmart/internal/model"
)

type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error)
	// Add inserts the line with quantity, or increments an existing one.
	Add(ctx context.Context, userID, productID int64, quantity int) (*model.CartItem, error)
	// AdjustQuantity applies delta and returns the new quantity. It returns
	// ErrNotFound when the line does not exist. The caller removes lines that
	// drop below one.
	AdjustQuantity(ctx context.Context, userID, productID int64, delta int) (int, error)
	Delete(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type pgCartRepo struct{ db DBTX }

func NewCartRepository(db DBTX) CartRepository {
	return &pgCartRepo{db: db}
}

func (r *pgCartRepo) ListByUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, product_id, quantity, created_at FROM cart_items WHERE user_id = $1 ORDER BY created_at, product_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) Add(ctx context.Context, userID, productID int64, quantity int) (*model.CartItem, error) {
	item := &model.CartItem{UserID: userID, ProductID: productID}
	query := `INSERT INTO cart_items (user_id, product_id, quantity, created_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			  RETURNING quantity, created_at`
	if err := r.db.QueryRow(ctx, query, userID, productID, quantity).Scan(&item.Quantity, &item.CreatedAt); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

// The CHECK (quantity >= 1) constraint would reject a decrement to zero, so
// the row is locked and read first and only updated while it stays positive.
func (r *pgCartRepo) AdjustQuantity(ctx context.Context, userID, productID int64, delta int) (int, error) {
	var quantity int
	err := r.db.QueryRow(ctx,
		`SELECT quantity FROM cart_items WHERE user_id = $1 AND product_id = $2 FOR UPDATE`,
		userID, productID,
	).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get cart item: %w", err)
	}

	quantity += delta
	if quantity < 1 {
		return quantity, nil
	}
	if _, err := r.db.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity,
	); err != nil {
		return 0, fmt.Errorf("update cart item: %w", err)
	}
	return quantity, nil
}

func (r *pgCartRepo) Delete(ctx context.Context, userID, productID int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgCartRepo) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
