package repository

import (
	"WhatsGrapp/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxMessagesPerPhone = 100

// SaveChatMessage inserts a chat message and trims the phone's log to the newest messages.
func (m *MongoDB) SaveChatMessage(ctx context.Context, msg *entity.ChatMessage) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	_, err = collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert chat message: %w", err)
	}

	filter := bson.D{{"phone", msg.Phone}}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return fmt.Errorf("mongodb count chat messages: %w", err)
	}

	if count > maxMessagesPerPhone {
		opts := options.FindOne().SetSort(bson.D{{"created_at", -1}}).SetSkip(maxMessagesPerPhone - 1)
		var cutoff entity.ChatMessage
		err = collection.FindOne(ctx, filter, opts).Decode(&cutoff)
		if err != nil {
			return fmt.Errorf("mongodb find cutoff message: %w", err)
		}

		deleteFilter := bson.D{
			{"phone", msg.Phone},
			{"created_at", bson.D{{"$lt", cutoff.CreatedAt}}},
		}
		_, err = collection.DeleteMany(ctx, deleteFilter)
		if err != nil {
			return fmt.Errorf("mongodb trim chat messages: %w", err)
		}
	}

	return nil
}

// GetChatMessages returns messages for a phone, paginated (newest first).
func (m *MongoDB) GetChatMessages(ctx context.Context, phone string, limit, offset int) ([]*entity.ChatMessage, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{}
	if phone != "" {
		filter = bson.D{{"phone", phone}}
	}
	opts := options.Find().
		SetSort(bson.D{{"created_at", -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*entity.ChatMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode chat messages: %w", err)
	}
	return messages, nil
}
