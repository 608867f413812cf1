package merchant

import (
	"WhatsGrapp/entity"
	"context"
)

type Core interface {
	RegisterMerchant(ctx context.Context, req *entity.MerchantRequest) (*entity.Merchant, error)
	GetMerchant(ctx context.Context, id string) (*entity.Merchant, error)
	ListMerchants(ctx context.Context, limit, offset int) ([]*entity.Merchant, error)
	ListProducts(ctx context.Context, merchantID string) ([]entity.ProductInfo, error)
}
