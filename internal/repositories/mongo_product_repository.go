package repositories

import (
	"context"
	"regexp"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(store *MongoStore) *MongoProductRepository {
	return &MongoProductRepository{coll: store.Products, timeout: store.Timeout()}
}

func (r *MongoProductRepository) list(ctx context.Context, filter bson.M) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products := make([]models.Product, 0)
	if err := findAll(ctx, r.coll, filter, &products, options.Find().SetSort(newestFirst)); err != nil {
		return nil, apperror.Dependency(err, "failed to list products")
	}
	return products, nil
}

// ListByCategory returns products whose category matches case-insensitively, newest first.
func (r *MongoProductRepository) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
	return r.list(ctx, bson.M{"category": pattern})
}

// ListBySeller returns a seller's products, optionally restricted to one category.
func (r *MongoProductRepository) ListBySeller(ctx context.Context, sellerID, category string) ([]models.Product, error) {
	filter := bson.M{"sellerId": sellerID}
	if category != "" {
		filter["category"] = category
	}
	return r.list(ctx, filter)
}

// IDsBySeller returns the identifiers of every product owned by sellerID.
func (r *MongoProductRepository) IDsBySeller(ctx context.Context, sellerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []struct {
		ID string `bson:"_id"`
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	if err := findAll(ctx, r.coll, bson.M{"sellerId": sellerID}, &rows, opts); err != nil {
		return nil, apperror.Dependency(err, "failed to list seller product ids")
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// CountBySeller counts a seller's products.
func (r *MongoProductRepository) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"sellerId": sellerID})
	if err != nil {
		return 0, apperror.Dependency(err, "failed to count seller products")
	}
	return n, nil
}

// OwnersOf maps each known product id to its seller.
func (r *MongoProductRepository) OwnersOf(ctx context.Context, productIDs []string) (map[string]string, error) {
	owners := make(map[string]string, len(productIDs))
	if len(productIDs) == 0 {
		return owners, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []struct {
		ID       string `bson:"_id"`
		SellerID string `bson:"sellerId"`
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "sellerId": 1})
	if err := findAll(ctx, r.coll, bson.M{"_id": bson.M{"$in": productIDs}}, &rows, opts); err != nil {
		return nil, apperror.Dependency(err, "failed to resolve product owners")
	}
	for _, row := range rows {
		owners[row.ID] = row.SellerID
	}
	return owners, nil
}

// GetByID returns a product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, notFoundOr(err, "product %s not found", id)
	}
	return &product, nil
}

// Create inserts a new product.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return apperror.Dependency(err, "failed to create product")
	}
	return nil
}

// Update replaces an existing product document.
func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return apperror.Dependency(err, "failed to update product")
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("product %s not found", product.ID)
	}
	return nil
}

// Delete removes a product by its ID.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.Dependency(err, "failed to delete product")
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}
