package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

// MethodRepository owns the delivery and payment method reference data.
type MethodRepository struct {
	delivery *mongo.Collection
	payment  *mongo.Collection
}

func NewMethodRepository(db *mongo.Database) *MethodRepository {
	return &MethodRepository{
		delivery: db.Collection("delivery_methods"),
		payment:  db.Collection("payment_methods"),
	}
}

func (r *MethodRepository) FindDelivery(ctx context.Context, id primitive.ObjectID) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	err := r.delivery.FindOne(ctx, bson.M{"_id": id}).Decode(&method)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("delivery method %s not found", id.Hex())
		}
		return nil, err
	}
	return &method, nil
}

func (r *MethodRepository) FindPayment(ctx context.Context, id primitive.ObjectID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.payment.FindOne(ctx, bson.M{"_id": id}).Decode(&method)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("payment method %s not found", id.Hex())
		}
		return nil, err
	}
	return &method, nil
}

func (r *MethodRepository) ListDelivery(ctx context.Context) ([]*models.DeliveryMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.delivery.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var methods []*models.DeliveryMethod
	if err = cursor.All(ctx, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *MethodRepository) ListPayment(ctx context.Context) ([]*models.PaymentMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.payment.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var methods []*models.PaymentMethod
	if err = cursor.All(ctx, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *MethodRepository) CreateDelivery(ctx context.Context, method *models.DeliveryMethod) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	method.ID = primitive.NewObjectID()
	_, err := r.delivery.InsertOne(ctx, method)
	return err
}

func (r *MethodRepository) CreatePayment(ctx context.Context, method *models.PaymentMethod) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	method.ID = primitive.NewObjectID()
	_, err := r.payment.InsertOne(ctx, method)
	return err
}
