package repository

import (
	"WhatsGrapp/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (m *MongoDB) SaveOrder(ctx context.Context, order *entity.Order) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	_, err = collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("mongodb insert order: %w", err)
	}
	return nil
}

func (m *MongoDB) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)

	var order entity.Order
	err = collection.FindOne(ctx, bson.D{{"id", id}}).Decode(&order)
	if err != nil {
		return nil, m.findError(err)
	}
	return &order, nil
}

// SalesStats aggregates the paid orders of the merchant.
func (m *MongoDB) SalesStats(ctx context.Context, merchantID string) (entity.SalesStats, error) {
	connection, err := m.connect()
	if err != nil {
		return entity.SalesStats{}, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ordersCollection)
	pipeline := mongo.Pipeline{
		{{"$match", bson.D{{"merchant_id", merchantID}, {"status", entity.OrderPaid}}}},
		{{"$group", bson.D{
			{"_id", nil},
			{"orders", bson.D{{"$sum", 1}}},
			{"revenue", bson.D{{"$sum", "$amount"}}},
		}}},
	}
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return entity.SalesStats{}, fmt.Errorf("mongodb aggregate orders: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []entity.SalesStats
	if err = cursor.All(ctx, &stats); err != nil {
		return entity.SalesStats{}, fmt.Errorf("mongodb decode sales stats: %w", err)
	}
	if len(stats) == 0 {
		return entity.SalesStats{}, nil
	}
	return stats[0], nil
}
