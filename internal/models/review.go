package models

import "time"

// MaxReviewComment bounds the length of a review comment.
const MaxReviewComment = 500

// Reply is a comment appended to a review.
type Reply struct {
	ID       string    `json:"id" bson:"_id"`
	UserID   string    `json:"userId" bson:"userId"`
	UserName string    `json:"userName" bson:"userName"`
	Text     string    `json:"text" bson:"text"`
	Date     time.Time `json:"date" bson:"date"`
}

// Review is a buyer's rating of a product; at most one per (user, product).
type Review struct {
	ID        string    `json:"id" bson:"_id"`
	ProductID string    `json:"productId" bson:"productId"`
	UserID    string    `json:"userId" bson:"userId"`
	UserName  string    `json:"userName" bson:"userName"`
	Rating    int       `json:"rating" bson:"rating"`
	Comment   string    `json:"comment" bson:"comment"`
	Images    []string  `json:"images,omitempty" bson:"images,omitempty"`
	Verified  bool      `json:"verified" bson:"verified"`
	Helpful   int       `json:"helpful" bson:"helpful"`
	LikedBy   []string  `json:"likedBy" bson:"likedBy"`
	Replies   []Reply   `json:"replies" bson:"replies"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LikedByUser reports whether userID is in the liker set.
func (r *Review) LikedByUser(userID string) bool {
	for _, id := range r.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// RatingSummary is the average and count of a product's ratings.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// RatingBucket is one star level of a rating distribution.
type RatingBucket struct {
	Stars      int `json:"stars"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}
