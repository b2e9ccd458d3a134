package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    string          `json:"category"`
	CategoryName  string          `json:"category_name,omitempty"`
	ImagePath     string          `json:"image,omitempty"`
	ThumbnailPath string          `json:"thumbnail,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer"`
	DeliveryAddress string          `json:"delivery_address"`
	OrderDate       time.Time       `json:"order_date"`
	PaymentDueDate  time.Time       `json:"payment_due_date"`
	AggregatePrice  decimal.Decimal `json:"aggregate_price"`
	Items           []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID        int64  `json:"id,omitempty"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}
