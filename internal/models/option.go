package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OptionGroup is one variant axis, e.g. "size" or "color".
type OptionGroup struct {
	ID   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name" binding:"required"`
}

// Option is a single value within a group, e.g. "XL" or "black".
type Option struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name    string             `json:"name" bson:"name" binding:"required"`
	GroupID primitive.ObjectID `json:"group_id" bson:"group_id" binding:"required"`
}

// ProductOption carries the stock count of one (product, option)
// combination. The pair is unique; stock never goes below zero.
type ProductOption struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	OptionID  primitive.ObjectID `json:"option_id" bson:"option_id"`
	Stock     int64              `json:"stock" bson:"stock" binding:"gte=0"`
}
