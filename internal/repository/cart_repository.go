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

type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{
		collection: db.Collection("carts"),
	}
}

// Create inserts an empty cart for a user. The unique index on user_id
// enforces one cart per user.
func (r *CartRepository) Create(ctx context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cart := &models.ShoppingCart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Lines:     []models.CartLine{},
		UpdatedAt: time.Now(),
	}
	_, err := r.collection.InsertOne(ctx, cart)
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperrors.Conflict("user already has a cart")
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *CartRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("cart %s not found", id.Hex())
		}
		return nil, err
	}
	return &cart, nil
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var cart models.ShoppingCart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("user %s has no cart", userID.Hex())
		}
		return nil, err
	}
	return &cart, nil
}

// ReplaceLines writes a cart's lines together with the recomputed
// total in a single update, so a concurrent read never observes lines
// and total from different generations.
func (r *CartRepository) ReplaceLines(ctx context.Context, cartID primitive.ObjectID, lines []models.CartLine, total float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"lines":       lines,
		"total_price": total,
		"updated_at":  time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": cartID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("cart %s not found", cartID.Hex())
	}
	return nil
}

// ClearLines empties a cart after its order has been committed.
func (r *CartRepository) ClearLines(ctx context.Context, cartID primitive.ObjectID) error {
	return r.ReplaceLines(ctx, cartID, []models.CartLine{}, 0)
}
