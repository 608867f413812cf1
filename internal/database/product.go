package repository

import (
	"WhatsGrapp/entity"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) SaveProduct(ctx context.Context, product *entity.Product) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	_, err = collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("mongodb insert product: %w", err)
	}
	return nil
}

func (m *MongoDB) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)

	var product entity.Product
	err = collection.FindOne(ctx, bson.D{{"id", id}}).Decode(&product)
	if err != nil {
		return nil, m.findError(err)
	}
	return &product, nil
}

func (m *MongoDB) ListProducts(ctx context.Context, merchantID string) ([]*entity.Product, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	opts := options.Find().SetSort(bson.D{{"created_at", 1}})

	cursor, err := collection.Find(ctx, bson.D{{"merchant_id", merchantID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}

func (m *MongoDB) CountProducts(ctx context.Context, merchantID string) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	count, err := collection.CountDocuments(ctx, bson.D{{"merchant_id", merchantID}})
	if err != nil {
		return 0, fmt.Errorf("mongodb count products: %w", err)
	}
	return count, nil
}

// ReserveStock atomically takes quantity from the product stock. It returns
// ErrNotFound when the product is missing or the stock is too low.
func (m *MongoDB) ReserveStock(ctx context.Context, productID string, quantity int) (*entity.Product, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	filter := bson.D{{"id", productID}, {"stock", bson.D{{"$gte", quantity}}}}
	update := bson.D{{"$inc", bson.D{{"stock", -quantity}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongodb reserve stock: %w", err)
	}
	return &product, nil
}

// ReleaseStock returns quantity to the product stock after a failed order.
func (m *MongoDB) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	res, err := collection.UpdateOne(ctx,
		bson.D{{"id", productID}},
		bson.D{{"$inc", bson.D{{"stock", quantity}}}},
	)
	if err != nil {
		return fmt.Errorf("mongodb release stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentProducts returns the newest products across all merchants.
func (m *MongoDB) RecentProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(productsCollection)
	opts := options.Find().SetSort(bson.D{{"created_at", -1}}).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find recent products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*entity.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongodb decode products: %w", err)
	}
	return products, nil
}
