package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

// CatalogRepository owns categories, option groups, options and the
// per-(product, option) stock rows.
type CatalogRepository struct {
	categories     *mongo.Collection
	optionGroups   *mongo.Collection
	options        *mongo.Collection
	productOptions *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		categories:     db.Collection("categories"),
		optionGroups:   db.Collection("option_groups"),
		options:        db.Collection("options"),
		productOptions: db.Collection("product_options"),
	}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	category.ID = primitive.NewObjectID()
	_, err := r.categories.InsertOne(ctx, category)
	return err
}

func (r *CatalogRepository) FindCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var category models.Category
	err := r.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("category %s not found", id.Hex())
		}
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CatalogRepository) CreateOptionGroup(ctx context.Context, group *models.OptionGroup) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	group.ID = primitive.NewObjectID()
	_, err := r.optionGroups.InsertOne(ctx, group)
	return err
}

func (r *CatalogRepository) ListOptionGroups(ctx context.Context) ([]*models.OptionGroup, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.optionGroups.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*models.OptionGroup
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateOption adds an option to an existing group.
func (r *CatalogRepository) CreateOption(ctx context.Context, option *models.Option) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.optionGroups.CountDocuments(ctx, bson.M{"_id": option.GroupID})
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("option group %s not found", option.GroupID.Hex())
	}

	option.ID = primitive.NewObjectID()
	_, err = r.options.InsertOne(ctx, option)
	return err
}

func (r *CatalogRepository) FindOptionByID(ctx context.Context, id primitive.ObjectID) (*models.Option, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var option models.Option
	err := r.options.FindOne(ctx, bson.M{"_id": id}).Decode(&option)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("option %s not found", id.Hex())
		}
		return nil, err
	}
	return &option, nil
}

// ListOptionsByGroup returns a group's options ordered by name.
func (r *CatalogRepository) ListOptionsByGroup(ctx context.Context, groupID primitive.ObjectID) ([]*models.Option, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.options.Find(ctx, bson.M{"group_id": groupID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var opts []*models.Option
	if err = cursor.All(ctx, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// SetStock upserts the stock count of a (product, option) pair.
func (r *CatalogRepository) SetStock(ctx context.Context, productID, optionID primitive.ObjectID, stock int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if stock < 0 {
		return apperrors.Validation("stock must not be negative")
	}

	count, err := r.options.CountDocuments(ctx, bson.M{"_id": optionID})
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("option %s not found", optionID.Hex())
	}

	filter := bson.M{"product_id": productID, "option_id": optionID}
	update := bson.M{"$set": bson.M{"stock": stock}}
	_, err = r.productOptions.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// GetStock returns the stock row of one (product, option) pair.
func (r *CatalogRepository) GetStock(ctx context.Context, productID, optionID primitive.ObjectID) (*models.ProductOption, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var po models.ProductOption
	filter := bson.M{"product_id": productID, "option_id": optionID}
	err := r.productOptions.FindOne(ctx, filter).Decode(&po)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("no stock row for product %s option %s", productID.Hex(), optionID.Hex())
		}
		return nil, err
	}
	return &po, nil
}

// HasOption reports whether a (product, option) pair is a valid
// selection, i.e. a stock row exists for it.
func (r *CatalogRepository) HasOption(ctx context.Context, productID, optionID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	count, err := r.productOptions.CountDocuments(ctx, bson.M{"product_id": productID, "option_id": optionID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProductOptions returns all stock rows of a product.
func (r *CatalogRepository) ListProductOptions(ctx context.Context, productID primitive.ObjectID) ([]*models.ProductOption, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.productOptions.Find(ctx, bson.M{"product_id": productID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []*models.ProductOption
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock atomically takes quantity units off one (product,
// option) row, matching only documents that still hold enough stock.
// Zero matched documents means the check-then-act race was lost (or
// the pair does not exist) and surfaces as a conflict; combined with
// the surrounding transaction this keeps stock from ever going
// negative.
func (r *CatalogRepository) DecrementStock(ctx context.Context, productID, optionID primitive.ObjectID, quantity int64) error {
	if quantity <= 0 {
		return apperrors.Validation("quantity must be positive")
	}

	filter := bson.M{
		"product_id": productID,
		"option_id":  optionID,
		"stock":      bson.M{"$gte": quantity},
	}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	result, err := r.productOptions.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.Conflict("insufficient stock for product %s option %s", productID.Hex(), optionID.Hex())
	}
	return nil
}
