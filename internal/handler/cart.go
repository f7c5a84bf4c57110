package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/middleware"
	"github.com/flicky/greenmart/internal/service"
)

type CartHandler struct {
	cartService     *service.CartService
	wishlistService *service.WishlistService
	log             *slog.Logger
}

func NewCartHandler(cartService *service.CartService, wishlistService *service.WishlistService, log *slog.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, wishlistService: wishlistService, log: log}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.View(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	item, err := h.cartService.Add(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": item.ProductID, "quantity": item.Quantity})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	dir, err := service.ParseDirection(c.Param("action"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	qty, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), productID, dir)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "quantity": qty, "removed": qty == 0})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), middleware.GetUserID(c), productID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) GetWishlist(c *gin.Context) {
	wishlist, err := h.wishlistService.View(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, wishlist)
}

func (h *CartHandler) AddToWishlist(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	added, err := h.wishlistService.Add(c.Request.Context(), middleware.GetUserID(c), productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": productID, "added": added})
}

func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(c.Request.Context(), middleware.GetUserID(c), productID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearWishlist(c *gin.Context) {
	if err := h.wishlistService.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
