package models

import "time"

// Product is a catalog entry owned by exactly one seller.
type Product struct {
	ID          string    `json:"id" bson:"_id" validate:"omitempty,uuid"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Category    string    `json:"category" bson:"category" validate:"required,max=60"`
	SellerID    string    `json:"sellerId" bson:"sellerId"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Stock       int       `json:"stock" bson:"stock" validate:"gte=0"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Images      []string  `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,dive,url"`
	Videos      []string  `json:"videos,omitempty" bson:"videos,omitempty" validate:"omitempty,dive,url"`
	Delivery    string    `json:"delivery,omitempty" bson:"delivery,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
