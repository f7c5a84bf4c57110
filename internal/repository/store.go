package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

//go:embed schema.sql
var schemaSQL string

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Categories() CategoryRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Orders() OrderRepository
	Contacts() ContactRepository

	// InTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct{ db DBTX }

func NewStore(db DBTX) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Users() UserRepository { return NewUserRepository(s.db) }
func (s *pgStore) Products() ProductRepository { return NewProductRepository(s.db) }
func (s *pgStore) Categories() CategoryRepository { return NewCategoryRepository(s.db) }
func (s *pgStore) Carts() CartRepository { return NewCartRepository(s.db) }
func (s *pgStore) Wishlists() WishlistRepository { return NewWishlistRepository(s.db) }
func (s *pgStore) Orders() OrderRepository { return NewOrderRepository(s.db) }
func (s *pgStore) Contacts() ContactRepository { return NewContactRepository(s.db) }

func (s *pgStore) InTx(ctx context.Context, fn func(Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&pgStore{db: tx})
	})
}

// EnsureSchema creates any missing tables. It never alters existing ones.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
