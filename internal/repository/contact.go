package repository

import (
	"context"
	"fmt"

	"github.com/flicky/greenmart/internal/model"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}

type pgContactRepo struct{ db DBTX }

func NewContactRepository(db DBTX) ContactRepository {
	return &pgContactRepo{db: db}
}

func (r *pgContactRepo) Create(ctx context.Context, msg *model.ContactMessage) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, phone, message, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Phone, msg.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}
