package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/middleware"
)

// Handlers groups everything NewRouter mounts. Health may be nil.
type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Admin   *AdminHandler
	Contact *ContactHandler
	Health  *HealthHandler
}

func NewRouter(log *slog.Logger, auth *middleware.Auth, h Handlers, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(extra...)
	r.Use(auth.Authenticate())

	if h.Health != nil {
		r.GET("/healthz", h.Health.Healthz)
		r.GET("/readyz", h.Health.Readyz)
	}

	r.GET("/", h.Product.Landing)
	r.POST("/signup", h.Auth.Signup)
	r.POST("/login", h.Auth.Login)
	r.GET("/logout", h.Auth.Logout)

	r.GET("/products", h.Product.List)
	r.GET("/products/:id", h.Product.GetByID)
	r.GET("/categories", h.Product.ListCategories)
	r.GET("/search", h.Product.Search)
	r.POST("/contact", h.Contact.Submit)

	shopper := r.Group("", middleware.Require(middleware.IsCustomer))
	{
		shopper.GET("/cart", h.Cart.GetCart)
		shopper.POST("/add_to_cart/:productId", h.Cart.AddItem)
		shopper.POST("/update_cart/:productId/:action", h.Cart.UpdateItem)
		shopper.POST("/remove_cart_item/:productId", h.Cart.RemoveItem)
		shopper.POST("/clear_cart", h.Cart.ClearCart)

		shopper.GET("/wishlist", h.Cart.GetWishlist)
		shopper.GET("/add_to_wishlist/:productId", h.Cart.AddToWishlist)
		shopper.POST("/add_to_wishlist/:productId", h.Cart.AddToWishlist)
		shopper.POST("/remove_wishlist_item/:productId", h.Cart.RemoveFromWishlist)
		shopper.POST("/clear_wishlist", h.Cart.ClearWishlist)

		shopper.GET("/checkout", h.Order.CheckoutSummary)
		shopper.POST("/checkout", h.Order.Checkout)
	}

	account := r.Group("", middleware.Require(middleware.Authenticated))
	{
		account.GET("/orders", h.Order.ListMine)
		account.GET("/invoice/:code", h.Order.Invoice)
		account.GET("/invoice/pos/:code", h.Order.POSReceipt)

		account.GET("/profile", h.Auth.Profile)
		account.POST("/update_profile", h.Auth.UpdateProfile)
		account.POST("/change_password", h.Auth.ChangePassword)
	}

	admin := r.Group("/admin", middleware.Require(middleware.IsAdmin))
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/users", h.Admin.Users)
		admin.GET("/reports", h.Admin.Reports)
		admin.GET("/reports/low-stock.xlsx", h.Admin.LowStockExport)

		admin.GET("/products", h.Product.List)
		admin.POST("/products", h.Product.Create)
		admin.GET("/products/:id", h.Product.GetByID)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)

		admin.GET("/categories", h.Product.ListCategories)
		admin.POST("/categories", h.Product.CreateCategory)
		admin.PUT("/categories/:id", h.Product.UpdateCategory)
		admin.DELETE("/categories/:id", h.Product.DeleteCategory)

		admin.GET("/orders", h.Order.ListAll)
		admin.GET("/orders/:id", h.Order.Get)
		admin.POST("/orders/:id/status", h.Order.UpdateStatus)
	}

	return r
}
