package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"urbantales/internal/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore holds the document collections of the shop.
type MongoStore struct {
	client        *mongo.Client
	timeout       time.Duration
	Products      *mongo.Collection
	Orders        *mongo.Collection
	Reviews       *mongo.Collection
	Notifications *mongo.Collection
	Carts         *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:        client,
		timeout:       timeout,
		Products:      db.Collection("products"),
		Orders:        db.Collection("orders"),
		Reviews:       db.Collection("reviews"),
		Notifications: db.Collection("sellernotifications"),
		Carts:         db.Collection("carts"),
	}, nil
}

// EnsureIndexes creates the indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.Products, []mongo.IndexModel{
			{Keys: bson.D{{Key: "sellerId", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.Orders, []mongo.IndexModel{
			{Keys: bson.D{{Key: "items.id", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.Reviews, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.Notifications, []mongo.IndexModel{
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "time", Value: -1}}},
		}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateMany(ctx, ix.models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

// Ping checks that the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Timeout() time.Duration {
	return s.timeout
}

// findAll runs a query and decodes every document into out.
func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// notFoundOr translates mongo.ErrNoDocuments into a not-found error and wraps anything else.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NotFound(format, args...)
	}
	return apperror.Dependency(err, "document store query failed")
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}
