package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

type fakeSelectionChecker struct {
	valid map[stockKey]bool
}

func (f *fakeSelectionChecker) HasOption(_ context.Context, productID, optionID primitive.ObjectID) (bool, error) {
	return f.valid[stockKey{productID, optionID}], nil
}

type cartFixture struct {
	service   *CartService
	carts     *fakeCartStore
	products  *fakeProductStore
	checker   *fakeSelectionChecker
	userID    primitive.ObjectID
	productID primitive.ObjectID
	optionID  primitive.ObjectID
}

func newCartFixture(t *testing.T, price float64) *cartFixture {
	t.Helper()

	f := &cartFixture{
		carts:     newFakeCartStore(),
		userID:    primitive.NewObjectID(),
		productID: primitive.NewObjectID(),
		optionID:  primitive.NewObjectID(),
	}

	f.products = &fakeProductStore{products: map[primitive.ObjectID]*models.Product{
		f.productID: {ID: f.productID, Name: "Bogo Jumper", SKU: "BG-JMP-3", Price: price},
	}}
	f.checker = &fakeSelectionChecker{valid: map[stockKey]bool{
		{f.productID, f.optionID}: true,
	}}

	f.service = NewCartService(f.carts, f.products, f.checker, zap.NewNop())
	return f
}

func TestAddLineCreatesCartLazily(t *testing.T) {
	f := newCartFixture(t, 24.99)

	cart, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID,
		OptionID:  f.optionID,
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
	assert.InDelta(t, 49.98, cart.TotalPrice, 0.0001)

	// The cart is persisted, not transient.
	stored, err := f.carts.FindByUser(context.Background(), f.userID)
	require.NoError(t, err)
	assert.InDelta(t, 49.98, stored.TotalPrice, 0.0001)
}

func TestAddLineMergesSamePair(t *testing.T) {
	f := newCartFixture(t, 10.00)

	req := models.CartLineRequest{ProductID: f.productID, OptionID: f.optionID, Quantity: 1}
	_, err := f.service.AddLine(context.Background(), f.userID, req)
	require.NoError(t, err)

	cart, err := f.service.AddLine(context.Background(), f.userID, req)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
	assert.InDelta(t, 20.00, cart.TotalPrice, 0.0001)
}

func TestAddLineInvalidSelection(t *testing.T) {
	f := newCartFixture(t, 10.00)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID,
		OptionID:  primitive.NewObjectID(), // not sold with this product
		Quantity:  1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestAddLineRejectsZeroQuantity(t *testing.T) {
	f := newCartFixture(t, 10.00)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID,
		OptionID:  f.optionID,
		Quantity:  0,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUpdateLineRecomputesTotal(t *testing.T) {
	f := newCartFixture(t, 24.99)

	req := models.CartLineRequest{ProductID: f.productID, OptionID: f.optionID, Quantity: 2}
	_, err := f.service.AddLine(context.Background(), f.userID, req)
	require.NoError(t, err)

	req.Quantity = 5
	cart, err := f.service.UpdateLine(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.Equal(t, int64(5), cart.Lines[0].Quantity)
	assert.InDelta(t, 124.95, cart.TotalPrice, 0.0001)
}

func TestUpdateMissingLine(t *testing.T) {
	f := newCartFixture(t, 24.99)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: f.optionID, Quantity: 1,
	})
	require.NoError(t, err)

	other := primitive.NewObjectID()
	_, err = f.service.UpdateLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: other, Quantity: 1,
	})
	require.Error(t, err)
	// The unknown pair fails selection validation before the line
	// lookup.
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestRemoveLine(t *testing.T) {
	f := newCartFixture(t, 24.99)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: f.optionID, Quantity: 2,
	})
	require.NoError(t, err)

	cart, err := f.service.RemoveLine(context.Background(), f.userID, f.productID, f.optionID)
	require.NoError(t, err)

	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.TotalPrice)
}

func TestRemoveMissingLine(t *testing.T) {
	f := newCartFixture(t, 24.99)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: f.optionID, Quantity: 2,
	})
	require.NoError(t, err)

	_, err = f.service.RemoveLine(context.Background(), f.userID, primitive.NewObjectID(), f.optionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCartTotalUsesCurrentPrices(t *testing.T) {
	f := newCartFixture(t, 10.00)

	secondProduct := primitive.NewObjectID()
	secondOption := primitive.NewObjectID()
	f.products.products[secondProduct] = &models.Product{
		ID: secondProduct, Name: "Bogo Beanie", SKU: "BG-BN-1", Price: 5.00,
	}
	f.checker.valid[stockKey{secondProduct, secondOption}] = true

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: f.optionID, Quantity: 1,
	})
	require.NoError(t, err)

	// Admin reprices the first product between cart mutations.
	f.products.products[f.productID].Price = 20.00

	cart, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: secondProduct, OptionID: secondOption, Quantity: 1,
	})
	require.NoError(t, err)

	assert.InDelta(t, 25.00, cart.TotalPrice, 0.0001)
	for _, line := range cart.Lines {
		if line.ProductID == f.productID {
			assert.InDelta(t, 20.00, line.UnitPrice, 0.0001)
		}
	}
}

func TestClearCart(t *testing.T) {
	f := newCartFixture(t, 24.99)

	_, err := f.service.AddLine(context.Background(), f.userID, models.CartLineRequest{
		ProductID: f.productID, OptionID: f.optionID, Quantity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.ClearCart(context.Background(), f.userID))

	stored, err := f.carts.FindByUser(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, stored.Lines)
	assert.Zero(t, stored.TotalPrice)
}

func TestClearCartWithoutCart(t *testing.T) {
	f := newCartFixture(t, 24.99)
	require.NoError(t, f.service.ClearCart(context.Background(), f.userID))
}

func TestGetCartWithoutCart(t *testing.T) {
	f := newCartFixture(t, 24.99)

	cart, err := f.service.GetCart(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.TotalPrice)
}

func TestCartTotalAccumulation(t *testing.T) {
	// 0.1 added ten times is exactly 1.00 with decimal arithmetic.
	lines := make([]models.CartLine, 10)
	for i := range lines {
		lines[i] = models.CartLine{Quantity: 1, UnitPrice: 0.1}
	}
	assert.Equal(t, 1.00, CartTotal(lines))
}
