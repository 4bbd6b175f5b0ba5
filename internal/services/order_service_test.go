package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

type stockKey struct {
	product primitive.ObjectID
	option  primitive.ObjectID
}

type fakeStockStore struct {
	mu    sync.Mutex
	stock map[stockKey]int64
}

func (f *fakeStockStore) DecrementStock(_ context.Context, productID, optionID primitive.ObjectID, quantity int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stockKey{productID, optionID}
	if f.stock[key] < quantity {
		return apperrors.Conflict("insufficient stock for product %s option %s", productID.Hex(), optionID.Hex())
	}
	f.stock[key] -= quantity
	return nil
}

func (f *fakeStockStore) snapshot() map[stockKey]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make(map[stockKey]int64, len(f.stock))
	for k, v := range f.stock {
		copied[k] = v
	}
	return copied
}

func (f *fakeStockStore) restore(snap map[stockKey]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock = snap
}

func (f *fakeStockStore) get(productID, optionID primitive.ObjectID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[stockKey{productID, optionID}]
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, apperrors.NotFound("order %s not found", id.Hex())
}

func (f *fakeOrderStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return apperrors.NotFound("order %s not found", id.Hex())
}

func (f *fakeOrderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

// fakeTx mimics mongo transaction semantics against the fakes: the
// whole unit of work runs under one lock and all writes are undone
// when fn fails.
type fakeTx struct {
	mu     sync.Mutex
	stock  *fakeStockStore
	orders *fakeOrderStore
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stockSnap := f.stock.snapshot()
	orderCount := f.orders.count()

	if err := fn(ctx); err != nil {
		f.stock.restore(stockSnap)
		f.orders.mu.Lock()
		f.orders.orders = f.orders.orders[:orderCount]
		f.orders.mu.Unlock()
		return err
	}
	return nil
}

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.ShoppingCart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[primitive.ObjectID]*models.ShoppingCart)}
}

func (f *fakeCartStore) Create(_ context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.UserID == userID {
			return nil, apperrors.Conflict("user already has a cart")
		}
	}
	cart := &models.ShoppingCart{ID: primitive.NewObjectID(), UserID: userID, Lines: []models.CartLine{}}
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeCartStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.ShoppingCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, apperrors.NotFound("cart %s not found", id.Hex())
	}
	return cart, nil
}

func (f *fakeCartStore) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.ShoppingCart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("user %s has no cart", userID.Hex())
}

func (f *fakeCartStore) ReplaceLines(_ context.Context, cartID primitive.ObjectID, lines []models.CartLine, total float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[cartID]
	if !ok {
		return apperrors.NotFound("cart %s not found", cartID.Hex())
	}
	cart.Lines = lines
	cart.TotalPrice = total
	return nil
}

func (f *fakeCartStore) ClearLines(ctx context.Context, cartID primitive.ObjectID) error {
	return f.ReplaceLines(ctx, cartID, []models.CartLine{}, 0)
}

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
}

func (f *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.NotFound("product %s not found", id.Hex())
	}
	return p, nil
}

type fakeMethodStore struct {
	delivery map[primitive.ObjectID]*models.DeliveryMethod
	payment  map[primitive.ObjectID]*models.PaymentMethod
}

func (f *fakeMethodStore) FindDelivery(_ context.Context, id primitive.ObjectID) (*models.DeliveryMethod, error) {
	m, ok := f.delivery[id]
	if !ok {
		return nil, apperrors.NotFound("delivery method %s not found", id.Hex())
	}
	return m, nil
}

func (f *fakeMethodStore) FindPayment(_ context.Context, id primitive.ObjectID) (*models.PaymentMethod, error) {
	m, ok := f.payment[id]
	if !ok {
		return nil, apperrors.NotFound("payment method %s not found", id.Hex())
	}
	return m, nil
}

type orderFixture struct {
	service  *OrderService
	stock    *fakeStockStore
	orders   *fakeOrderStore
	carts    *fakeCartStore
	products *fakeProductStore
	methods  *fakeMethodStore

	productID  primitive.ObjectID
	optionID   primitive.ObjectID
	deliveryID primitive.ObjectID
	paymentID  primitive.ObjectID
}

func newOrderFixture(t *testing.T, price float64, stock int64, deliveryPrice float64) *orderFixture {
	t.Helper()

	f := &orderFixture{
		productID:  primitive.NewObjectID(),
		optionID:   primitive.NewObjectID(),
		deliveryID: primitive.NewObjectID(),
		paymentID:  primitive.NewObjectID(),
	}

	f.products = &fakeProductStore{products: map[primitive.ObjectID]*models.Product{
		f.productID: {ID: f.productID, Name: "Black t-shirt", SKU: "BL-T-1", Price: price},
	}}
	f.stock = &fakeStockStore{stock: map[stockKey]int64{
		{f.productID, f.optionID}: stock,
	}}
	f.orders = &fakeOrderStore{}
	f.carts = newFakeCartStore()
	f.methods = &fakeMethodStore{
		delivery: map[primitive.ObjectID]*models.DeliveryMethod{
			f.deliveryID: {ID: f.deliveryID, Name: "Courier", Price: deliveryPrice},
		},
		payment: map[primitive.ObjectID]*models.PaymentMethod{
			f.paymentID: {ID: f.paymentID, Name: "Card"},
		},
	}
	tx := &fakeTx{stock: f.stock, orders: f.orders}

	f.service = NewOrderService(tx, f.orders, f.carts, f.products, f.stock, f.methods, zap.NewNop())
	return f
}

func guestRequest() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		ClientName:  "Jan",
		ClientEmail: "jan@example.com",
		Address:     models.Address{Street: "Main", City: "Warsaw", Country: "PL", PostCode: "00-001", HouseNumber: "1"},
	}
}

func TestPlaceOrderFromCart(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	userID := primitive.NewObjectID()
	cart, err := f.carts.Create(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, f.carts.ReplaceLines(context.Background(), cart.ID, []models.CartLine{
		{ProductID: f.productID, OptionID: f.optionID, Quantity: 2, UnitPrice: 24.99},
	}, 49.98))

	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:     &userID,
		CartID:     &cart.ID,
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    guestRequest(),
	})
	require.NoError(t, err)

	assert.InDelta(t, 54.98, order.TotalPrice, 0.0001)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(2), order.Items[0].Quantity)
	assert.InDelta(t, 24.99, order.Items[0].UnitPrice, 0.0001)

	// Stock decremented by the ordered quantity.
	assert.Equal(t, int64(3), f.stock.get(f.productID, f.optionID))

	// Cart cleared after commit.
	got, err := f.carts.FindByID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
	assert.Zero(t, got.TotalPrice)
}

func TestPlaceOrderGuest(t *testing.T) {
	f := newOrderFixture(t, 10.00, 4, 2.50)

	req := guestRequest()
	req.Lines = []models.GuestLine{{ProductID: f.productID, OptionID: f.optionID, Quantity: 3}}

	order, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    req,
	})
	require.NoError(t, err)

	assert.Nil(t, order.UserID)
	assert.InDelta(t, 32.50, order.TotalPrice, 0.0001)
	assert.Equal(t, int64(1), f.stock.get(f.productID, f.optionID))
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t, 24.99, 1, 5.00)

	req := guestRequest()
	req.Lines = []models.GuestLine{{ProductID: f.productID, OptionID: f.optionID, Quantity: 2}}

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    req,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	// No order row, stock unchanged.
	assert.Zero(t, f.orders.count())
	assert.Equal(t, int64(1), f.stock.get(f.productID, f.optionID))
}

func TestPlaceOrderPartialStockRollsBack(t *testing.T) {
	f := newOrderFixture(t, 5.00, 10, 0)

	// Second product has no stock at all; the first line's decrement
	// must be undone when the second fails.
	otherProduct := primitive.NewObjectID()
	otherOption := primitive.NewObjectID()
	f.products.products[otherProduct] = &models.Product{ID: otherProduct, Name: "White t-shirt", SKU: "WT-T-2", Price: 7.00}
	f.stock.restore(map[stockKey]int64{
		{f.productID, f.optionID}: 10,
		{otherProduct, otherOption}: 0,
	})

	req := guestRequest()
	req.Lines = []models.GuestLine{
		{ProductID: f.productID, OptionID: f.optionID, Quantity: 2},
		{ProductID: otherProduct, OptionID: otherOption, Quantity: 1},
	}

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    req,
	})
	require.Error(t, err)

	assert.Zero(t, f.orders.count())
	assert.Equal(t, int64(10), f.stock.get(f.productID, f.optionID))
	assert.Equal(t, int64(0), f.stock.get(otherProduct, otherOption))
}

func TestPlaceOrderEmpty(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    guestRequest(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestPlaceOrderUnknownDelivery(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	req := guestRequest()
	req.Lines = []models.GuestLine{{ProductID: f.productID, OptionID: f.optionID, Quantity: 1}}

	_, err := f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		DeliveryID: primitive.NewObjectID(),
		PaymentID:  f.paymentID,
		Request:    req,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Zero(t, f.orders.count())
}

func TestPlaceOrderCartOwnership(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	owner := primitive.NewObjectID()
	cart, err := f.carts.Create(context.Background(), owner)
	require.NoError(t, err)
	require.NoError(t, f.carts.ReplaceLines(context.Background(), cart.ID, []models.CartLine{
		{ProductID: f.productID, OptionID: f.optionID, Quantity: 1, UnitPrice: 24.99},
	}, 24.99))

	intruder := primitive.NewObjectID()
	_, err = f.service.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID:     &intruder,
		CartID:     &cart.ID,
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    guestRequest(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

// Two concurrent orders racing for the last units: the conditional
// decrement must let at most one of them through.
func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	f := newOrderFixture(t, 24.99, 1, 5.00)

	req := guestRequest()
	req.Lines = []models.GuestLine{{ProductID: f.productID, OptionID: f.optionID, Quantity: 1}}
	input := PlaceOrderInput{
		DeliveryID: f.deliveryID,
		PaymentID:  f.paymentID,
		Request:    req,
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.PlaceOrder(context.Background(), input)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.KindConflict))
			failed++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int64(0), f.stock.get(f.productID, f.optionID))
	assert.Equal(t, 1, f.orders.count())
}

func TestGetOrderForOwnership(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	userID := primitive.NewObjectID()
	order := &models.Order{UserID: &userID, Status: models.OrderStatusPending}
	require.NoError(t, f.orders.Create(context.Background(), order))

	got, err := f.service.GetOrderFor(context.Background(), order.ID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// Another user's token must not expose the order.
	_, err = f.service.GetOrderFor(context.Background(), order.ID, primitive.NewObjectID(), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	// Admins read any order.
	_, err = f.service.GetOrderFor(context.Background(), order.ID, primitive.NewObjectID(), true)
	assert.NoError(t, err)
}

func TestGetOrderForGuestOrderIsAdminOnly(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	order := &models.Order{Status: models.OrderStatusPending}
	require.NoError(t, f.orders.Create(context.Background(), order))

	_, err := f.service.GetOrderFor(context.Background(), order.ID, primitive.NewObjectID(), false)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = f.service.GetOrderFor(context.Background(), order.ID, primitive.NewObjectID(), true)
	assert.NoError(t, err)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newOrderFixture(t, 24.99, 5, 5.00)

	err := f.service.UpdateStatus(context.Background(), primitive.NewObjectID(), "TELEPORTED")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
