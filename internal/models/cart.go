package models

import "time"

// CartItem is a product the buyer intends to order.
type CartItem struct {
	ProductID string  `json:"productId" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
	Quantity  int     `json:"qty" bson:"qty"`
}

// Cart holds one buyer's pending items.
type Cart struct {
	BuyerID   string     `json:"buyerId" bson:"_id"`
	Items     []CartItem `json:"items" bson:"items"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}
