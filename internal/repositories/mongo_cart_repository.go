package repositories

import (
	"context"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoCartRepository creates a new instance of MongoCartRepository.
func NewMongoCartRepository(store *MongoStore) *MongoCartRepository {
	return &MongoCartRepository{coll: store.Carts, timeout: store.Timeout()}
}

// Get returns the buyer's cart, empty when none was saved yet.
func (r *MongoCartRepository) Get(ctx context.Context, buyerID string) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"_id": buyerID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, apperror.Dependency(err, "failed to load cart")
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Save upserts the buyer's cart.
func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": cart.BuyerID}, cart, opts); err != nil {
		return apperror.Dependency(err, "failed to save cart")
	}
	return nil
}

// Clear deletes the buyer's cart.
func (r *MongoCartRepository) Clear(ctx context.Context, buyerID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": buyerID}); err != nil {
		return apperror.Dependency(err, "failed to clear cart")
	}
	return nil
}
