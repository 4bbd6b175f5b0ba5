package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem is an immutable snapshot of a line at order-commit time.
// UnitPrice is the product price paid; later price edits never touch it.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	OptionID  primitive.ObjectID `json:"option_id" bson:"option_id"`
	Quantity  int64              `json:"quantity" bson:"quantity"`
	UnitPrice float64            `json:"unit_price" bson:"unit_price"`
}

type Order struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID          *primitive.ObjectID `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ClientName      string              `json:"client_name" bson:"client_name"`
	ClientSurname   string              `json:"client_surname" bson:"client_surname"`
	ClientEmail     string              `json:"client_email" bson:"client_email"`
	ClientPhone     string              `json:"client_phone" bson:"client_phone"`
	Address         Address             `json:"address" bson:"address"`
	DeliveryMethod  primitive.ObjectID  `json:"delivery_method_id" bson:"delivery_method_id"`
	PaymentMethod   primitive.ObjectID  `json:"payment_method_id" bson:"payment_method_id"`
	Items           []OrderItem         `json:"items" bson:"items"`
	TotalPrice      float64             `json:"total_price" bson:"total_price"`
	Status          OrderStatus         `json:"status" bson:"status"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}

// GuestLine is one requested line of a guest checkout.
type GuestLine struct {
	ProductID primitive.ObjectID `json:"product_id" binding:"required"`
	OptionID  primitive.ObjectID `json:"option_id" binding:"required"`
	Quantity  int64              `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the JSON body of POST /order/createOrder.
// Registered users order from their cart (cartId query parameter);
// guests supply contact, address and lines here instead.
type CreateOrderRequest struct {
	ClientName    string      `json:"client_name" binding:"required"`
	ClientSurname string      `json:"client_surname"`
	ClientEmail   string      `json:"client_email" binding:"required,email"`
	ClientPhone   string      `json:"client_phone"`
	Address       Address     `json:"address" binding:"required"`
	Lines         []GuestLine `json:"lines,omitempty"`
}
