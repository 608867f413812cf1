package entity

import (
	"WhatsGrapp/internal/lib/validate"
	"net/http"
	"time"
)

const (
	OrderPending = "pending"
	OrderPaid    = "paid"
)

type Order struct {
	ID            string    `json:"id" bson:"id"`
	MerchantID    string    `json:"merchant_id" bson:"merchant_id"`
	ProductID     string    `json:"product_id" bson:"product_id"`
	ProductName   string    `json:"product_name" bson:"product_name"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	Amount        float64   `json:"amount" bson:"amount"`
	Currency      Currency  `json:"currency" bson:"currency"`
	CustomerPhone string    `json:"customer_phone" bson:"customer_phone"`
	CustomerName  string    `json:"customer_name" bson:"customer_name"`
	Status        string    `json:"status" bson:"status"`
	PaymentRef    string    `json:"payment_ref" bson:"payment_ref"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// SalesStats sums the paid orders of a merchant.
type SalesStats struct {
	Orders  int64   `json:"orders" bson:"orders"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

type CheckoutRequest struct {
	MerchantID    string `json:"merchant_id" validate:"required"`
	ProductID     string `json:"product_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gte=1,lte=1000"`
	CustomerPhone string `json:"customer_phone" validate:"required,min=6,max=20"`
	CustomerName  string `json:"customer_name" validate:"omitempty,max=100"`
}

func (c *CheckoutRequest) Bind(_ *http.Request) error {
	if c.Quantity == 0 {
		c.Quantity = 1
	}
	return validate.Struct(c)
}
