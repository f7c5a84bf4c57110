package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/greenmart/internal/model"
)

// --- Auth ---

type SignupRequest struct {
	Name            string `json:"name" form:"name" binding:"required,min=2,max=50"`
	Email           string `json:"email" form:"email" binding:"required,email"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthResponse struct {
	Token    string       `json:"token"`
	User     UserResponse `json:"user"`
	Redirect string       `json:"redirect,omitempty"`
}

type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=50"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" form:"new_password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

// --- Catalog ---

type CreateProductRequest struct {
	Name        string          `json:"name" form:"name" binding:"required,max=100"`
	Description string          `json:"description" form:"description"`
	Image       string          `json:"image" form:"image"`
	Price       decimal.Decimal `json:"price" form:"price"`
	Stock       int             `json:"stock" form:"stock" binding:"min=0"`
	CategoryID  *int64          `json:"category_id" form:"category_id"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *int64           `json:"category_id"`
}

type ListProductsRequest struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search     string `form:"search"`
	CategoryID *int64 `form:"category_id"`
	Sort       string `form:"sort,default=created_at" binding:"oneof=name price stock created_at"`
	Order      string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type CategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=100"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// --- Cart & wishlist ---

type CartResponse struct {
	Items    []CartLineResponse `json:"items"`
	Count    int                `json:"count"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

type CartLineResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	InStock   int             `json:"in_stock"`
}

type WishlistResponse struct {
	Items []ProductResponse `json:"items"`
}

// --- Orders ---

type CheckoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	Code        string              `json:"code"`
	UserID      int64               `json:"user_id"`
	Status      model.OrderStatus   `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type InvoiceResponse struct {
	StoreName  string          `json:"store_name"`
	Order      OrderResponse   `json:"order"`
	Customer   UserResponse    `json:"customer"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

// --- Admin ---

type DashboardResponse struct {
	Users      int `json:"users"`
	Products   int `json:"products"`
	Orders     int `json:"orders"`
	Categories int `json:"categories"`
}

type ReportResponse struct {
	TotalOrders       int               `json:"total_orders"`
	TotalProducts     int               `json:"total_products"`
	Revenue           decimal.Decimal   `json:"revenue"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	LowStock          []ProductResponse `json:"low_stock"`
}

// --- Contact ---

type ContactRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=100"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Phone   string `json:"phone" form:"phone" binding:"required,max=20"`
	Message string `json:"message" form:"message" binding:"required"`
}
