package entity

import (
	"WhatsGrapp/internal/lib/validate"
	"net/http"
	"time"
)

type Merchant struct {
	ID              string    `json:"id" bson:"id"`
	Phone           string    `json:"phone" bson:"phone"`
	StoreName       string    `json:"store_name" bson:"store_name"`
	BusinessDetails string    `json:"business_details" bson:"business_details"`
	Currency        Currency  `json:"currency" bson:"currency"`
	Locale          string    `json:"locale" bson:"locale"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
}

type MerchantRequest struct {
	Phone           string   `json:"phone" validate:"required,min=6,max=20"`
	StoreName       string   `json:"store_name" validate:"required,min=2,max=50"`
	BusinessDetails string   `json:"business_details" validate:"required,min=10,max=200"`
	Currency        Currency `json:"currency" validate:"required,oneof=SGD THB IDR MYR PHP VND KHR MMK"`
	Locale          string   `json:"locale" validate:"omitempty,max=10"`
}

func (m *MerchantRequest) Bind(_ *http.Request) error {
	if m.Locale == "" {
		m.Locale = LocaleFor(m.Currency)
	}
	return validate.Struct(m)
}
