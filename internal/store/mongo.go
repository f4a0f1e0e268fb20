package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// snapshotDocument is the stored shape of a cart snapshot.
type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore implements Store with one document per key.
type MongoStore struct {
	collection *mongo.Collection
	logger     zerolog.Logger
}

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// NewMongoStore creates a MongoDB-backed store on the given collection.
func NewMongoStore(collection *mongo.Collection, logger zerolog.Logger) *MongoStore {
	return &MongoStore{
		collection: collection,
		logger:     logger.With().Str("store", BackendMongo).Logger(),
	}
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc snapshotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to find cart snapshot")
		return "", fmt.Errorf("failed to find cart snapshot: %w", err)
	}
	return doc.Value, nil
}

func (s *MongoStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now().UTC(),
	}}

	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to upsert cart snapshot")
		return fmt.Errorf("failed to upsert cart snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to delete cart snapshot")
		return fmt.Errorf("failed to delete cart snapshot: %w", err)
	}
	return nil
}
