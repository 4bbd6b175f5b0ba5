package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeliveryMethod struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name" binding:"required"`
	Price float64            `json:"price" bson:"price" binding:"gte=0"`
}

type PaymentMethod struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name" binding:"required"`
}
