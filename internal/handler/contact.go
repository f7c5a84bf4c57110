package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
	log            *slog.Logger
}

func NewContactHandler(contactService *service.ContactService, log *slog.Logger) *ContactHandler {
	return &ContactHandler{contactService: contactService, log: log}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.contactService.Submit(c.Request.Context(), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you! We will get back to you soon."})
}
