package entity

import (
	"WhatsGrapp/internal/lib/validate"
	"net/http"
	"time"
)

type Product struct {
	ID          string    `json:"id" bson:"id"`
	MerchantID  string    `json:"merchant_id" bson:"merchant_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// ProductInfo is the catalog view of a product with its display price and checkout link.
type ProductInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	PriceText   string  `json:"price_text"`
	Stock       int     `json:"stock"`
	CheckoutUrl string  `json:"checkout_url"`
}

type ProductRequest struct {
	MerchantID  string  `json:"merchant_id" validate:"required"`
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"gt=0,lte=999999"`
	Stock       int     `json:"stock" validate:"gte=0,lte=999999"`
}

func (p *ProductRequest) Bind(_ *http.Request) error {
	return validate.Struct(p)
}
