package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/middleware"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/service"
)

// OrderService is what the order routes need from *service.OrderService.
type OrderService interface {
	Summary(ctx context.Context, userID int64) (*dto.CartResponse, error)
	Checkout(ctx context.Context, userID int64) (*model.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]dto.OrderResponse, error)
	Invoice(ctx context.Context, userID, orderID int64) (*dto.InvoiceResponse, error)
	ListAll(ctx context.Context) ([]dto.OrderResponse, error)
	Get(ctx context.Context, orderID int64) (*dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*dto.OrderResponse, error)
}

type OrderHandler struct {
	orderService OrderService
	log          *slog.Logger
}

func NewOrderHandler(orderService OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

// CheckoutSummary shows what a checkout would charge for the current cart.
func (h *OrderHandler) CheckoutSummary(c *gin.Context) {
	summary, err := h.orderService.Summary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Checkout always answers with a CheckoutResponse so storefront scripts can
// branch on "success" alone.
func (h *OrderHandler) Checkout(c *gin.Context) {
	order, err := h.orderService.Checkout(c.Request.Context(), middleware.GetUserID(c))

	var stock *service.InsufficientStockError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.CheckoutResponse{Success: true, OrderID: order.Code()})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, dto.CheckoutResponse{Message: "Cart is empty"})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, dto.CheckoutResponse{Message: stock.Error()})
	default:
		h.log.Error("checkout failed", "user_id", middleware.GetUserID(c), "request_id", middleware.RequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, dto.CheckoutResponse{Message: "Checkout failed"})
	}
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orderService.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Invoice(c *gin.Context) {
	inv, ok := h.invoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, inv)
}

// POSReceipt renders the invoice as a plain-text thermal printer receipt.
func (h *OrderHandler) POSReceipt(c *gin.Context) {
	inv, ok := h.invoice(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := service.WriteReceipt(&buf, inv); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="POS_%s.txt"`, inv.Order.Code))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (h *OrderHandler) invoice(c *gin.Context) (*dto.InvoiceResponse, bool) {
	orderID, ok := model.ParseOrderCode(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrOrderNotFound.Error()})
		return nil, false
	}

	inv, err := h.orderService.Invoice(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	return inv, true
}

func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
