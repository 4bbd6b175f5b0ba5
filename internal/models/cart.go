package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is one (product, option, quantity) entry of a cart.
// UnitPrice mirrors the product price at the time the line was last
// touched; the authoritative price is read again at order time.
type CartLine struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	OptionID  primitive.ObjectID `json:"option_id" bson:"option_id"`
	Quantity  int64              `json:"quantity" bson:"quantity"`
	UnitPrice float64            `json:"unit_price" bson:"unit_price"`
}

// ShoppingCart is a user's single cart. TotalPrice is a denormalized
// cache recomputed in the same write as any line mutation.
type ShoppingCart struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Lines      []CartLine         `json:"lines" bson:"lines"`
	TotalPrice float64            `json:"total_price" bson:"total_price"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// CartLineRequest is the payload for adding or updating a cart line.
type CartLineRequest struct {
	ProductID primitive.ObjectID `json:"product_id" binding:"required"`
	OptionID  primitive.ObjectID `json:"option_id" binding:"required"`
	Quantity  int64              `json:"quantity" binding:"required,gt=0"`
}
