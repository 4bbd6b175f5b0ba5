package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SKU         string             `json:"sku" bson:"sku" binding:"required"`
	Name        string             `json:"name" bson:"name" binding:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price" binding:"required,gt=0"`
	ImageURL    string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CategoryID  primitive.ObjectID `json:"category_id" bson:"category_id" binding:"required"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductUpdate holds the PATCHable fields of a product.
type ProductUpdate struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Price       *float64            `json:"price,omitempty" binding:"omitempty,gt=0"`
	SKU         *string             `json:"sku,omitempty"`
	CategoryID  *primitive.ObjectID `json:"category_id,omitempty"`
}

type Category struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name" binding:"required"`
}
