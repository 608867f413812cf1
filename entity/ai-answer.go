package entity

import (
	"WhatsGrapp/internal/lib/validate"
	"net/http"
)

const (
	IntentGreeting             = "greeting"
	IntentProductInquiry       = "product_inquiry"
	IntentMerchantRegistration = "merchant_registration"
	IntentAddProduct           = "add_product"
	IntentCheckout             = "checkout"
	IntentGeneral              = "general"
	IntentHelp                 = "help"
)

const (
	ActionShowProducts     = "show_products"
	ActionRegisterMerchant = "register_merchant"
	ActionAddProduct       = "add_product"
	ActionCheckout         = "checkout"
	ActionContinueChat     = "continue_chat"
)

type NextAction struct {
	Type string         `json:"type" bson:"type"`
	Data map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

type AiAnswer struct {
	Text                   string      `json:"text" bson:"text"`
	Intent                 string      `json:"intent" bson:"intent"`
	Suggestions            []string    `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	ProductRecommendations []string    `json:"product_recommendations,omitempty" bson:"product_recommendations,omitempty"`
	NextAction             *NextAction `json:"next_action,omitempty" bson:"next_action,omitempty"`
	Source                 string      `json:"source" bson:"source"`
}

type DialogMessage struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

type AiChatRequest struct {
	Message      string          `json:"message" validate:"required,max=2000"`
	MerchantName string          `json:"merchant_name" validate:"omitempty,max=100"`
	MerchantID   string          `json:"merchant_id" validate:"omitempty,max=64"`
	Phone        string          `json:"phone" validate:"omitempty,max=32"`
	ChatHistory  []DialogMessage `json:"chat_history" validate:"omitempty,dive"`
}

func (a *AiChatRequest) Bind(_ *http.Request) error {
	return validate.Struct(a)
}
