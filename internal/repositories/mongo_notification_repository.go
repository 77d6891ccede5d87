package repositories

import (
	"context"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepository is a MongoDB implementation of NotificationRepository.
type MongoNotificationRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoNotificationRepository creates a new instance of MongoNotificationRepository.
func NewMongoNotificationRepository(store *MongoStore) *MongoNotificationRepository {
	return &MongoNotificationRepository{coll: store.Notifications, timeout: store.Timeout()}
}

// Create stores a notification.
func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return apperror.Dependency(err, "failed to create notification")
	}
	return nil
}

// ListBySeller returns at most limit notifications of a seller, newest first.
func (r *MongoNotificationRepository) ListBySeller(ctx context.Context, sellerID string, limit int) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	list := make([]models.Notification, 0)
	if err := findAll(ctx, r.coll, bson.M{"sellerId": sellerID}, &list, opts); err != nil {
		return nil, apperror.Dependency(err, "failed to list notifications")
	}
	return list, nil
}

// MarkAllRead flips every unread notification of the seller.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, sellerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"sellerId": sellerID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, apperror.Dependency(err, "failed to mark notifications read")
	}
	return res.ModifiedCount, nil
}
