package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles carried in access tokens.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// User is a buyer account.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string         `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string         `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Seller is a shop account. Username is immutable once assigned.
type Seller struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FullName  string         `json:"fullName" gorm:"type:varchar(120)"`
	Username  string         `json:"username" gorm:"uniqueIndex;type:varchar(140)"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Phone     string         `json:"phone,omitempty" gorm:"type:varchar(32)"`
	ShopName  string         `json:"shopName,omitempty" gorm:"type:varchar(120)"`
	Address   string         `json:"address,omitempty" gorm:"type:varchar(255)"`
	Bio       string         `json:"bio,omitempty" gorm:"type:text"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
