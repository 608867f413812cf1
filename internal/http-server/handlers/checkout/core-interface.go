package checkout

import (
	"WhatsGrapp/entity"
	"context"
)

type Core interface {
	Checkout(ctx context.Context, req *entity.CheckoutRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
}
