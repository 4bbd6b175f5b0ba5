package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

// CartStore is the cart persistence surface the services consume.
type CartStore interface {
	Create(ctx context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ShoppingCart, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error)
	ReplaceLines(ctx context.Context, cartID primitive.ObjectID, lines []models.CartLine, total float64) error
	ClearLines(ctx context.Context, cartID primitive.ObjectID) error
}

type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// SelectionChecker validates that a (product, option) pair is sold.
type SelectionChecker interface {
	HasOption(ctx context.Context, productID, optionID primitive.ObjectID) (bool, error)
}

// CartService manages a user's single cart. Every mutation recomputes
// the cached total in the same write as the line change.
type CartService struct {
	carts    CartStore
	products ProductStore
	catalog  SelectionChecker
	logger   *zap.Logger
}

func NewCartService(carts CartStore, products ProductStore, catalog SelectionChecker, logger *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		catalog:  catalog,
		logger:   logger,
	}
}

// GetCart returns the user's cart, or an empty unsaved cart when none
// exists yet (carts are created lazily on first add).
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return &models.ShoppingCart{UserID: userID, Lines: []models.CartLine{}}, nil
		}
		return nil, err
	}
	return cart, nil
}

// AddLine adds quantity units of a (product, option) pair to the cart,
// merging into an existing line for the same pair.
func (s *CartService) AddLine(ctx context.Context, userID primitive.ObjectID, req models.CartLineRequest) (*models.ShoppingCart, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	product, err := s.validateSelection(ctx, req.ProductID, req.OptionID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		cart, err = s.carts.Create(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == req.ProductID && cart.Lines[i].OptionID == req.OptionID {
			cart.Lines[i].Quantity += req.Quantity
			cart.Lines[i].UnitPrice = product.Price
			merged = true
			break
		}
	}
	if !merged {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID: req.ProductID,
			OptionID:  req.OptionID,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		})
	}

	return s.persist(ctx, cart)
}

// UpdateLine sets the quantity of an existing line.
func (s *CartService) UpdateLine(ctx context.Context, userID primitive.ObjectID, req models.CartLineRequest) (*models.ShoppingCart, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be positive")
	}

	product, err := s.validateSelection(ctx, req.ProductID, req.OptionID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Lines {
		if cart.Lines[i].ProductID == req.ProductID && cart.Lines[i].OptionID == req.OptionID {
			cart.Lines[i].Quantity = req.Quantity
			cart.Lines[i].UnitPrice = product.Price
			return s.persist(ctx, cart)
		}
	}
	return nil, apperrors.NotFound("cart has no such line")
}

// RemoveLine drops a (product, option) line from the cart.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID, optionID primitive.ObjectID) (*models.ShoppingCart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Lines[:0]
	removed := false
	for _, line := range cart.Lines {
		if line.ProductID == productID && line.OptionID == optionID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil, apperrors.NotFound("cart has no such line")
	}
	cart.Lines = kept

	return s.persist(ctx, cart)
}

// ClearCart empties the user's cart and zeroes its total. Clearing a
// cart that was never created is a no-op.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil
		}
		return err
	}
	return s.carts.ClearLines(ctx, cart.ID)
}

func (s *CartService) validateSelection(ctx context.Context, productID, optionID primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	ok, err := s.catalog.HasOption(ctx, productID, optionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("invalid selection: product %s is not sold with option %s",
			productID.Hex(), optionID.Hex())
	}
	return product, nil
}

// persist refreshes every line's unit price before recomputing the
// total, so a price edit between mutations never leaves a stale total.
func (s *CartService) persist(ctx context.Context, cart *models.ShoppingCart) (*models.ShoppingCart, error) {
	for i := range cart.Lines {
		product, err := s.products.FindByID(ctx, cart.Lines[i].ProductID)
		if err != nil {
			return nil, err
		}
		cart.Lines[i].UnitPrice = product.Price
	}
	cart.TotalPrice = CartTotal(cart.Lines)
	if err := s.carts.ReplaceLines(ctx, cart.ID, cart.Lines, cart.TotalPrice); err != nil {
		return nil, err
	}
	return cart, nil
}

// CartTotal computes Σ(quantity × unit price) with decimal arithmetic
// so repeated float additions cannot drift the cached total.
func CartTotal(lines []models.CartLine) float64 {
	total := decimal.Zero
	for _, line := range lines {
		price := decimal.NewFromFloat(line.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	result, _ := total.Round(2).Float64()
	return result
}
