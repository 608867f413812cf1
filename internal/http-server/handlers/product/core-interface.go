package product

import (
	"WhatsGrapp/entity"
	"context"
)

type Core interface {
	AddProduct(ctx context.Context, req *entity.ProductRequest) (*entity.ProductInfo, error)
	GetProduct(ctx context.Context, id string) (*entity.ProductInfo, error)
}
