package models

import "time"

// Notification is a message shown on a seller's dashboard.
type Notification struct {
	ID       string    `json:"id" bson:"_id"`
	SellerID string    `json:"sellerId" bson:"sellerId"`
	Title    string    `json:"title" bson:"title"`
	Message  string    `json:"message" bson:"message"`
	IsRead   bool      `json:"isRead" bson:"isRead"`
	Time     time.Time `json:"time" bson:"time"`
}
