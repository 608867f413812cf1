package core

import (
	"WhatsGrapp/entity"
	repository "WhatsGrapp/internal/database"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// Checkout simulates a paid order: stock is reserved and the order is stored as paid.
// No payment provider is called.
func (c *Core) Checkout(ctx context.Context, req *entity.CheckoutRequest) (*entity.Order, error) {
	merchant, err := c.GetMerchant(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}

	product, err := c.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || product.MerchantID != merchant.ID {
		return nil, fmt.Errorf("product %s: %w", req.ProductID, entity.ErrNotFound)
	}

	product, err = c.repo.ReserveStock(ctx, product.ID, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrOutOfStock
		}
		return nil, fmt.Errorf("reserve stock: %w", err)
	}

	order := &entity.Order{
		ID:            uuid.NewString(),
		MerchantID:    merchant.ID,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      req.Quantity,
		Amount:        math.Round(product.Price*float64(req.Quantity)*100) / 100,
		Currency:      merchant.Currency,
		CustomerPhone: req.CustomerPhone,
		CustomerName:  req.CustomerName,
		Status:        entity.OrderPaid,
		PaymentRef:    "pay_" + uuid.NewString(),
		CreatedAt:     time.Now(),
	}
	if err = c.repo.SaveOrder(ctx, order); err != nil {
		if releaseErr := c.repo.ReleaseStock(ctx, product.ID, req.Quantity); releaseErr != nil {
			c.log.Error("stock not released after failed order",
				slog.String("product_id", product.ID),
				slog.Int("quantity", req.Quantity),
				sl.Err(releaseErr),
			)
		}
		return nil, fmt.Errorf("save order: %w", err)
	}

	c.log.Info("order paid",
		slog.String("order_id", order.ID),
		slog.String("merchant_id", order.MerchantID),
		slog.String("product_id", order.ProductID),
		slog.Int("quantity", order.Quantity),
		slog.Float64("amount", order.Amount),
	)
	return order, nil
}

func (c *Core) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := c.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", id, entity.ErrNotFound)
	}
	return order, nil
}

// SalesStats sums the paid orders of the merchant.
func (c *Core) SalesStats(ctx context.Context, merchantID string) (entity.SalesStats, error) {
	stats, err := c.repo.SalesStats(ctx, merchantID)
	if err != nil {
		return entity.SalesStats{}, fmt.Errorf("sales stats: %w", err)
	}
	return stats, nil
}
