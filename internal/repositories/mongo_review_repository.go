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

// MongoReviewRepository is a MongoDB implementation of ReviewRepository.
type MongoReviewRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoReviewRepository creates a new instance of MongoReviewRepository.
func NewMongoReviewRepository(store *MongoStore) *MongoReviewRepository {
	return &MongoReviewRepository{coll: store.Reviews, timeout: store.Timeout()}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// Create inserts a review; the unique (userId, productId) index rejects duplicates.
func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("you have already reviewed this product")
		}
		return apperror.Dependency(err, "failed to create review")
	}
	return nil
}

// GetByID returns a review by its ID.
func (r *MongoReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, notFoundOr(err, "review %s not found", id)
	}
	return &review, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *MongoReviewRepository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reviews := make([]models.Review, 0)
	if err := findAll(ctx, r.coll, bson.M{"productId": productID}, &reviews, options.Find().SetSort(newestFirst)); err != nil {
		return nil, apperror.Dependency(err, "failed to list reviews")
	}
	return reviews, nil
}

func (r *MongoReviewRepository) findOneAndUpdate(ctx context.Context, id string, update interface{}) (*models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter).Decode(&review); err != nil {
		return nil, notFoundOr(err, "review %s not found", id)
	}
	return &review, nil
}

// UpdateContent replaces the rating and comment of a review.
func (r *MongoReviewRepository) UpdateContent(ctx context.Context, id string, rating int, comment string, at time.Time) (*models.Review, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"rating":    rating,
		"comment":   comment,
		"updatedAt": at,
	}})
}

// Delete removes a review.
func (r *MongoReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Dependency(err, "failed to delete review")
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("review %s not found", id)
	}
	return nil
}

// ToggleLike flips userID's membership in likedBy and adjusts helpful in a
// single pipeline update, so concurrent toggles never overwrite each other.
func (r *MongoReviewRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Review, error) {
	likers := bson.M{"$ifNull": bson.A{"$likedBy", bson.A{}}}
	liked := bson.M{"$in": bson.A{userID, likers}}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"helpful": bson.M{"$cond": bson.A{
				liked,
				bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$helpful", 1}}}},
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$helpful", 0}}, 1}},
			}},
			"likedBy": bson.M{"$cond": bson.A{
				liked,
				bson.M{"$filter": bson.M{"input": likers, "cond": bson.M{"$ne": bson.A{"$$this", userID}}}},
				bson.M{"$concatArrays": bson.A{likers, bson.A{userID}}},
			}},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, pipeline)
}

// AddReply appends a reply to a review.
func (r *MongoReviewRepository) AddReply(ctx context.Context, id string, reply models.Reply) (*models.Review, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{"replies": reply}})
}

// RatingCounts groups a product's reviews by rating.
func (r *MongoReviewRepository) RatingCounts(ctx context.Context, productID string) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.Dependency(err, "failed to aggregate ratings")
	}
	defer cur.Close(ctx)

	var rows []struct {
		Rating int `bson:"_id"`
		Count  int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperror.Dependency(err, "failed to decode ratings")
	}
	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}
