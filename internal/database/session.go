package repository

import (
	"WhatsGrapp/bot/chat"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func activeFilter(phone string, now time.Time) bson.D {
	return bson.D{{"phone", phone}, {"expires_at", bson.D{{"$gt", now}}}}
}

// FindActiveSession returns the most recently active session, or nil.
func (m *MongoDB) FindActiveSession(ctx context.Context, phone string, now time.Time) (*chat.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	opts := options.FindOne().SetSort(bson.D{{"last_activity", -1}})

	var session chat.Session
	err = collection.FindOne(ctx, activeFilter(phone, now), opts).Decode(&session)
	if err != nil {
		return nil, m.findError(err)
	}
	return &session, nil
}

func (m *MongoDB) ExpireSessions(ctx context.Context, phone string, now time.Time) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	update := bson.D{{"$set", bson.D{{"expires_at", now}}}}

	_, err = collection.UpdateMany(ctx, activeFilter(phone, now), update)
	if err != nil {
		return fmt.Errorf("mongodb expire sessions: %w", err)
	}
	return nil
}

func (m *MongoDB) InsertSession(ctx context.Context, session *chat.Session) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	_, err = collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("mongodb insert session: %w", err)
	}
	return nil
}

// UpdateActiveSession applies the patch in a single document operation and
// returns the updated session, or nil when the phone has no active session.
func (m *MongoDB) UpdateActiveSession(ctx context.Context, phone string, patch chat.Patch, now, expiresAt time.Time) (*chat.Session, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)

	set := bson.D{
		{"last_activity", now},
		{"expires_at", expiresAt},
	}
	if patch.CurrentStep != "" {
		set = append(set, bson.E{Key: "current_step", Value: patch.CurrentStep})
	}
	if patch.Data != nil {
		set = append(set, bson.E{Key: "data", Value: patch.Data})
	}
	update := bson.D{{"$set", set}}
	if len(patch.History) > 0 {
		update = append(update, bson.E{Key: "$push", Value: bson.D{
			{"history", bson.D{{"$each", patch.History}}},
		}})
	}

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{"last_activity", -1}}).
		SetReturnDocument(options.After)

	var session chat.Session
	err = collection.FindOneAndUpdate(ctx, activeFilter(phone, now), update, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb update session: %w", err)
	}
	return &session, nil
}

func (m *MongoDB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.D{{"expires_at", bson.D{{"$lte", now}}}}

	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb delete expired sessions: %w", err)
	}
	return result.DeletedCount, nil
}

func (m *MongoDB) CountActiveSessions(ctx context.Context, now time.Time) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(sessionsCollection)
	filter := bson.D{{"expires_at", bson.D{{"$gt", now}}}}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb count sessions: %w", err)
	}
	return count, nil
}
