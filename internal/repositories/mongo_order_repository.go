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

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(store *MongoStore) *MongoOrderRepository {
	return &MongoOrderRepository{coll: store.Orders, timeout: store.Timeout()}
}

// Create inserts a new order.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("order %s already exists", order.ID)
		}
		return apperror.Dependency(err, "failed to create order")
	}
	return nil
}

// GetByID returns an order by its ID.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, notFoundOr(err, "order %s not found", id)
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *MongoOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	orders := make([]models.Order, 0)
	if err := findAll(ctx, r.coll, bson.M{"userId": buyerID}, &orders, options.Find().SetSort(newestFirst)); err != nil {
		return nil, apperror.Dependency(err, "failed to list buyer orders")
	}
	return orders, nil
}

// ListContainingProducts returns orders with at least one item among productIDs, newest first.
func (r *MongoOrderRepository) ListContainingProducts(ctx context.Context, productIDs []string) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if len(productIDs) == 0 {
		return orders, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"items.id": bson.M{"$in": productIDs}}
	if err := findAll(ctx, r.coll, filter, &orders, options.Find().SetSort(newestFirst)); err != nil {
		return nil, apperror.Dependency(err, "failed to list seller orders")
	}
	return orders, nil
}

// exists distinguishes a missing order from a failed conditional update.
func (r *MongoOrderRepository) exists(ctx context.Context, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, apperror.Dependency(err, "failed to look up order")
	}
	return n > 0, nil
}

// conditionalUpdate applies update when filter matches, otherwise reports
// not-found for a missing order and rejected for a failed precondition.
func (r *MongoOrderRepository) conditionalUpdate(ctx context.Context, orderID string, filter, update bson.M, rejected error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperror.Dependency(err, "failed to update order")
	}
	if res.MatchedCount > 0 {
		return nil
	}
	ok, err := r.exists(ctx, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("order %s not found", orderID)
	}
	return rejected
}

// UpdateItemStatus sets items.$.status on the matching line item only.
func (r *MongoOrderRepository) UpdateItemStatus(ctx context.Context, orderID, productID string, status models.OrderStatus, at time.Time) error {
	filter := bson.M{"_id": orderID, "items.id": productID}
	update := bson.M{"$set": bson.M{"items.$.status": status, "updatedAt": at}}
	return r.conditionalUpdate(ctx, orderID, filter, update,
		apperror.NotFound("item %s not found in order %s", productID, orderID))
}

// MarkDelivered records the delivery time unless one is already set.
func (r *MongoOrderRepository) MarkDelivered(ctx context.Context, orderID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": orderID, "deliveredAt": nil}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"deliveredAt": at}}); err != nil {
		return apperror.Dependency(err, "failed to record delivery time")
	}
	return nil
}

// Cancel sets the order-level status to Cancelled unless it is already terminal.
func (r *MongoOrderRepository) Cancel(ctx context.Context, orderID, reason string, at time.Time) error {
	filter := bson.M{
		"_id":         orderID,
		"orderStatus": bson.M{"$nin": bson.A{models.StatusCancelled, models.StatusReturned}},
	}
	update := bson.M{"$set": bson.M{
		"orderStatus":  models.StatusCancelled,
		"cancelReason": reason,
		"updatedAt":    at,
	}}
	return r.conditionalUpdate(ctx, orderID, filter, update,
		apperror.Validation("order %s can no longer be cancelled", orderID))
}

// RequestReturn opens a return when none is in progress.
func (r *MongoOrderRepository) RequestReturn(ctx context.Context, orderID, reason string, at time.Time) error {
	filter := bson.M{
		"_id": orderID,
		"$or": bson.A{bson.M{"returnStatus": nil}, bson.M{"returnStatus": ""}},
	}
	update := bson.M{"$set": bson.M{
		"returnStatus": models.ReturnRequested,
		"returnReason": reason,
		"updatedAt":    at,
	}}
	return r.conditionalUpdate(ctx, orderID, filter, update,
		apperror.Validation("a return is already in progress for order %s", orderID))
}

// CancelReturn clears a return that is still only Requested.
func (r *MongoOrderRepository) CancelReturn(ctx context.Context, orderID string, at time.Time) error {
	filter := bson.M{"_id": orderID, "returnStatus": models.ReturnRequested}
	update := bson.M{
		"$unset": bson.M{"returnStatus": "", "returnReason": ""},
		"$set":   bson.M{"updatedAt": at},
	}
	return r.conditionalUpdate(ctx, orderID, filter, update,
		apperror.Validation("return for order %s can no longer be cancelled", orderID))
}

// MonthlyDeliveredEarnings groups delivered item revenue by month of order creation.
func (r *MongoOrderRepository) MonthlyDeliveredEarnings(ctx context.Context, productIDs []string) ([]models.MonthlyEarning, error) {
	if len(productIDs) == 0 {
		return []models.MonthlyEarning{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	inSeller := bson.M{"$in": productIDs}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"items.id": inSeller}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.id": inSeller, "items.status": models.StatusDelivered}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"month": bson.M{"$month": "$createdAt"}, "year": bson.M{"$year": "$createdAt"}},
			"earnings": bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.price", "$items.qty"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperror.Dependency(err, "failed to aggregate sales chart")
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Month int `bson:"month"`
			Year  int `bson:"year"`
		} `bson:"_id"`
		Earnings float64 `bson:"earnings"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperror.Dependency(err, "failed to decode sales chart")
	}

	out := make([]models.MonthlyEarning, 0, len(rows))
	for _, row := range rows {
		out = append(out, newMonthlyEarning(row.ID.Year, row.ID.Month, row.Earnings))
	}
	return out, nil
}
