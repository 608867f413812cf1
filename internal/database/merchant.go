package repository

import (
	"WhatsGrapp/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (m *MongoDB) SaveMerchant(ctx context.Context, merchant *entity.Merchant) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(merchantsCollection)
	_, err = collection.InsertOne(ctx, merchant)
	if err != nil {
		return fmt.Errorf("mongodb insert merchant: %w", err)
	}
	return nil
}

func (m *MongoDB) GetMerchant(ctx context.Context, id string) (*entity.Merchant, error) {
	return m.findMerchant(ctx, bson.D{{"id", id}})
}

// GetMerchantByPhone returns the newest merchant registered for the phone.
func (m *MongoDB) GetMerchantByPhone(ctx context.Context, phone string) (*entity.Merchant, error) {
	return m.findMerchant(ctx, bson.D{{"phone", phone}})
}

func (m *MongoDB) findMerchant(ctx context.Context, filter bson.D) (*entity.Merchant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(merchantsCollection)
	opts := options.FindOne().SetSort(bson.D{{"created_at", -1}})

	var merchant entity.Merchant
	err = collection.FindOne(ctx, filter, opts).Decode(&merchant)
	if err != nil {
		return nil, m.findError(err)
	}
	return &merchant, nil
}

func (m *MongoDB) ListMerchants(ctx context.Context, limit, offset int) ([]*entity.Merchant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(merchantsCollection)
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find merchants: %w", err)
	}
	defer cursor.Close(ctx)

	var merchants []*entity.Merchant
	if err = cursor.All(ctx, &merchants); err != nil {
		return nil, fmt.Errorf("mongodb decode merchants: %w", err)
	}
	return merchants, nil
}
