package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
	OrderStatusDelivered, OrderStatusCancelled,
}

// ParseOrderStatus matches case-insensitively and returns the canonical spelling.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
	Stock       int
	CategoryID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	UserID    int64
	ProductID int64
	Quantity  int
	CreatedAt time.Time
}

type WishlistItem struct {
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}

type Order struct {
	ID          int64
	UserID      int64
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Items       []OrderItem
	CreatedAt   time.Time
}

const orderCodePrefix = "ORD"

// Code is the customer-facing order reference, e.g. ORD42.
func (o *Order) Code() string { return FormatOrderCode(o.ID) }

func FormatOrderCode(id int64) string {
	return orderCodePrefix + strconv.FormatInt(id, 10)
}

// ParseOrderCode accepts "ORD42" as well as a bare "42".
func ParseOrderCode(code string) (int64, bool) {
	code = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(code)), orderCodePrefix)
	id, err := strconv.ParseInt(code, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt time.Time
}

type OrderPlacedEvent struct {
	OrderID     int64           `json:"order_id"`
	OrderCode   string          `json:"order_code"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PlacedAt    time.Time       `json:"placed_at"`
}
