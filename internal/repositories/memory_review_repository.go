package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"

	"github.com/google/uuid"
)

// MemoryReviewRepository is an in-memory implementation of ReviewRepository.
type MemoryReviewRepository struct {
	reviews map[string]models.Review
	mu      sync.RWMutex
}

// NewMemoryReviewRepository creates a new instance of MemoryReviewRepository.
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{
		reviews: make(map[string]models.Review),
	}
}

func cloneReview(rv models.Review) *models.Review {
	rv.LikedBy = append([]string{}, rv.LikedBy...)
	rv.Replies = append([]models.Reply{}, rv.Replies...)
	rv.Images = append([]string(nil), rv.Images...)
	return &rv
}

// Create stores a review, rejecting a second review by the same user for the same product.
func (r *MemoryReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID {
			return apperror.Conflict("you have already reviewed this product")
		}
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	r.reviews[review.ID] = *cloneReview(*review)
	return nil
}

// GetByID returns a review by its ID.
func (r *MemoryReviewRepository) GetByID(_ context.Context, id string) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review %s not found", id)
	}
	return cloneReview(review), nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *MemoryReviewRepository) ListByProduct(_ context.Context, productID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Review, 0)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			list = append(list, *cloneReview(rv))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// UpdateContent replaces the rating and comment of a review.
func (r *MemoryReviewRepository) UpdateContent(_ context.Context, id string, rating int, comment string, at time.Time) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review %s not found", id)
	}
	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = at
	r.reviews[id] = review
	return cloneReview(review), nil
}

// Delete removes a review.
func (r *MemoryReviewRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return apperror.NotFound("review %s not found", id)
	}
	delete(r.reviews, id)
	return nil
}

// ToggleLike adds userID to the liker set or removes it, keeping helpful at or above zero.
func (r *MemoryReviewRepository) ToggleLike(_ context.Context, id, userID string) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review %s not found", id)
	}
	if review.LikedByUser(userID) {
		kept := make([]string, 0, len(review.LikedBy))
		for _, liker := range review.LikedBy {
			if liker != userID {
				kept = append(kept, liker)
			}
		}
		review.LikedBy = kept
		if review.Helpful > 0 {
			review.Helpful--
		}
	} else {
		review.LikedBy = append(review.LikedBy, userID)
		review.Helpful++
	}
	r.reviews[id] = review
	return cloneReview(review), nil
}

// AddReply appends a reply to a review.
func (r *MemoryReviewRepository) AddReply(_ context.Context, id string, reply models.Reply) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperror.NotFound("review %s not found", id)
	}
	review.Replies = append(review.Replies, reply)
	r.reviews[id] = review
	return cloneReview(review), nil
}

// RatingCounts returns how many reviews the product has per star rating.
func (r *MemoryReviewRepository) RatingCounts(_ context.Context, productID string) (map[int]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int]int)
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			counts[rv.Rating]++
		}
	}
	return counts, nil
}
