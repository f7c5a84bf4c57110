package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/repository"
)

type ContactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest) error {
	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
	}
	required := []struct{ field, value string }{
		{"name", msg.Name}, {"email", msg.Email}, {"phone", msg.Phone}, {"message", msg.Message},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("save contact message: %w", err)
	}
	return nil
}
