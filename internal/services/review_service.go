package services

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReviewInput is the buyer-supplied content of a review.
type ReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
	Images    []string
}

// ReviewSummary bundles the average, count and per-star distribution of a product's ratings.
type ReviewSummary struct {
	models.RatingSummary
	Distribution []models.RatingBucket `json:"distribution"`
}

// ReviewService handles reviews, likes and replies.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	log      *logrus.Logger
	now      func() time.Time
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository, orders repositories.OrderRepository, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		orders:   orders,
		log:      log,
		now:      time.Now,
	}
}

func validateReview(rating int, comment string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", apperror.Validation("rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", apperror.Validation("comment is required")
	}
	if utf8.RuneCountInString(comment) > models.MaxReviewComment {
		return "", apperror.Validation("comment must be at most %d characters", models.MaxReviewComment)
	}
	return comment, nil
}

// Create stores a new review. A user may review a product only once.
func (s *ReviewService) Create(ctx context.Context, userID, userName string, in ReviewInput) (*models.Review, error) {
	comment, err := validateReview(in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	verified, err := s.purchased(ctx, userID, in.ProductID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review := &models.Review{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		UserID:    userID,
		UserName:  userName,
		Rating:    in.Rating,
		Comment:   comment,
		Images:    in.Images,
		Verified:  verified,
		LikedBy:   []string{},
		Replies:   []models.Reply{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// purchased reports whether the user received the product in any order.
func (s *ReviewService) purchased(ctx context.Context, userID, productID string) (bool, error) {
	orders, err := s.orders.ListByBuyer(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, o := range orders {
		for _, item := range o.Items {
			if item.ProductID == productID && item.Status == models.StatusDelivered {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListByProduct returns a product's reviews, newest first.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *ReviewService) owned(ctx context.Context, userID, reviewID string) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, apperror.Forbidden("review %s is not yours", reviewID)
	}
	return review, nil
}

// Update changes the rating and comment of the caller's own review.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID string, rating int, comment string) (*models.Review, error) {
	comment, err := validateReview(rating, comment)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, reviewID); err != nil {
		return nil, err
	}
	return s.reviews.UpdateContent(ctx, reviewID, rating, comment, s.now())
}

// Delete removes the caller's own review.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	if _, err := s.owned(ctx, userID, reviewID); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, reviewID)
}

// ToggleLike adds or removes the user's like.
func (s *ReviewService) ToggleLike(ctx context.Context, reviewID, userID string) (*models.Review, error) {
	return s.reviews.ToggleLike(ctx, reviewID, userID)
}

// AddReply appends a reply stamped with the server time.
func (s *ReviewService) AddReply(ctx context.Context, reviewID, userID, userName, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("reply text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxReviewComment {
		return nil, apperror.Validation("reply must be at most %d characters", models.MaxReviewComment)
	}
	reply := models.Reply{
		ID:       uuid.New().String(),
		UserID:   userID,
		UserName: userName,
		Text:     text,
		Date:     s.now(),
	}
	return s.reviews.AddReply(ctx, reviewID, reply)
}

// Summary returns the average rating, review count and distribution of a product.
func (s *ReviewService) Summary(ctx context.Context, productID string) (*ReviewSummary, error) {
	counts, err := s.reviews.RatingCounts(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ReviewSummary{
		RatingSummary: averageAndCount(counts),
		Distribution:  ratingDistribution(counts),
	}, nil
}

func averageAndCount(counts map[int]int) models.RatingSummary {
	var total, sum int
	for stars, n := range counts {
		total += n
		sum += stars * n
	}
	if total == 0 {
		return models.RatingSummary{}
	}
	return models.RatingSummary{
		AverageRating: float64(sum) / float64(total),
		TotalReviews:  total,
	}
}

// ratingDistribution returns buckets for 5 down to 1 stars.
func ratingDistribution(counts map[int]int) []models.RatingBucket {
	total := 0
	for _, n := range counts {
		total += n
	}
	buckets := make([]models.RatingBucket, 0, 5)
	for stars := 5; stars >= 1; stars-- {
		b := models.RatingBucket{Stars: stars, Count: counts[stars]}
		if total > 0 {
			b.Percentage = int(math.Round(float64(b.Count) / float64(total) * 100))
		}
		buckets = append(buckets, b)
	}
	return buckets
}
