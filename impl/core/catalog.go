package core

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/bot/chat/onboarding"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultPageSize = 50

// CreateMerchant registers a store and returns its id.
func (c *Core) CreateMerchant(ctx context.Context, phone, storeName, businessDetails string, currency entity.Currency, locale string) (string, error) {
	merchant := &entity.Merchant{
		ID:              uuid.NewString(),
		Phone:           chat.NormalizePhone(phone),
		StoreName:       storeName,
		BusinessDetails: businessDetails,
		Currency:        currency,
		Locale:          locale,
		CreatedAt:       time.Now(),
	}
	if merchant.Locale == "" {
		merchant.Locale = entity.LocaleFor(currency)
	}

	if err := c.repo.SaveMerchant(ctx, merchant); err != nil {
		return "", fmt.Errorf("save merchant: %w", err)
	}

	c.log.Info("merchant created",
		slog.String("merchant_id", merchant.ID),
		slog.String("store", merchant.StoreName),
		sl.Phone(merchant.Phone),
	)
	return merchant.ID, nil
}

func (c *Core) RegisterMerchant(ctx context.Context, req *entity.MerchantRequest) (*entity.Merchant, error) {
	id, err := c.CreateMerchant(ctx, req.Phone, req.StoreName, req.BusinessDetails, req.Currency, req.Locale)
	if err != nil {
		return nil, err
	}
	return c.GetMerchant(ctx, id)
}

func (c *Core) GetMerchant(ctx context.Context, id string) (*entity.Merchant, error) {
	merchant, err := c.repo.GetMerchant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("merchant %s: %w", id, entity.ErrNotFound)
	}
	return merchant, nil
}

// MerchantByPhone returns the newest store of the phone, or nil.
func (c *Core) MerchantByPhone(ctx context.Context, phone string) (*entity.Merchant, error) {
	return c.repo.GetMerchantByPhone(ctx, chat.NormalizePhone(phone))
}

func (c *Core) ListMerchants(ctx context.Context, limit, offset int) ([]*entity.Merchant, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	merchants, err := c.repo.ListMerchants(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	if merchants == nil {
		merchants = []*entity.Merchant{}
	}
	return merchants, nil
}

// CreateProduct adds a product to the merchant's catalog and returns its id.
func (c *Core) CreateProduct(ctx context.Context, merchantID, name string, price float64, stock int) (string, error) {
	product := &entity.Product{
		ID:         uuid.NewString(),
		MerchantID: merchantID,
		Name:       name,
		Price:      price,
		Stock:      stock,
		CreatedAt:  time.Now(),
	}
	if err := c.repo.SaveProduct(ctx, product); err != nil {
		return "", fmt.Errorf("save product: %w", err)
	}

	c.log.Info("product created",
		slog.String("merchant_id", merchantID),
		slog.String("product_id", product.ID),
		slog.String("name", name),
	)
	return product.ID, nil
}

func (c *Core) CountProducts(ctx context.Context, merchantID string) (int64, error) {
	return c.repo.CountProducts(ctx, merchantID)
}

// MerchantProducts returns the raw catalog of a merchant, oldest first.
func (c *Core) MerchantProducts(ctx context.Context, merchantID string) ([]*entity.Product, error) {
	products, err := c.repo.ListProducts(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Core) AddProduct(ctx context.Context, req *entity.ProductRequest) (*entity.ProductInfo, error) {
	merchant, err := c.GetMerchant(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.NewString(),
		MerchantID:  merchant.ID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CreatedAt:   time.Now(),
	}
	if err = c.repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	info := c.productInfo(product, merchant)
	return &info, nil
}

func (c *Core) GetProduct(ctx context.Context, id string) (*entity.ProductInfo, error) {
	product, err := c.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product %s: %w", id, entity.ErrNotFound)
	}

	merchant, err := c.GetMerchant(ctx, product.MerchantID)
	if err != nil {
		return nil, err
	}
	info := c.productInfo(product, merchant)
	return &info, nil
}

// ListProducts returns the merchant's catalog with display prices and checkout links.
func (c *Core) ListProducts(ctx context.Context, merchantID string) ([]entity.ProductInfo, error) {
	merchant, err := c.GetMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	products, err := c.repo.ListProducts(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	infos := make([]entity.ProductInfo, 0, len(products))
	for _, p := range products {
		infos = append(infos, c.productInfo(p, merchant))
	}
	return infos, nil
}

func (c *Core) productInfo(p *entity.Product, merchant *entity.Merchant) entity.ProductInfo {
	return entity.ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		PriceText:   onboarding.FormatPrice(p.Price, merchant.Currency, merchant.Locale),
		Stock:       p.Stock,
		CheckoutUrl: c.links.Checkout(merchant.ID, p.ID),
	}
}
