package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
	"ecommerce-backend/internal/models"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
}

// StockStore performs the atomic conditional decrement: it must only
// match a stock row still holding at least quantity units, and report
// a conflict otherwise.
type StockStore interface {
	DecrementStock(ctx context.Context, productID, optionID primitive.ObjectID, quantity int64) error
}

type MethodStore interface {
	FindDelivery(ctx context.Context, id primitive.ObjectID) (*models.DeliveryMethod, error)
	FindPayment(ctx context.Context, id primitive.ObjectID) (*models.PaymentMethod, error)
}

// TxRunner wraps a function in one all-or-nothing unit of work. Store
// calls made inside fn must use the context fn receives.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlaceOrderInput describes one checkout. Registered users pass CartID
// (and UserID from their token); guests pass lines in the request body.
type PlaceOrderInput struct {
	UserID     *primitive.ObjectID
	CartID     *primitive.ObjectID
	DeliveryID primitive.ObjectID
	PaymentID  primitive.ObjectID
	Request    models.CreateOrderRequest
}

// OrderService converts carts and guest submissions into persisted
// orders while decrementing stock, all inside one transaction.
type OrderService struct {
	tx       TxRunner
	orders   OrderStore
	carts    CartStore
	products ProductStore
	stock    StockStore
	methods  MethodStore
	logger   *zap.Logger
}

func NewOrderService(tx TxRunner, orders OrderStore, carts CartStore, products ProductStore, stock StockStore, methods MethodStore, logger *zap.Logger) *OrderService {
	return &OrderService{
		tx:       tx,
		orders:   orders,
		carts:    carts,
		products: products,
		stock:    stock,
		methods:  methods,
		logger:   logger,
	}
}

// PlaceOrder runs the checkout in one transaction: resolve lines,
// re-check and decrement stock per line, snapshot prices into order
// items and insert the order. Any insufficient stock aborts the whole
// operation with no partial writes; stock can never go negative
// because each decrement only matches rows still holding enough units.
// The cart, if any, is cleared only after the transaction commits.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	delivery, err := s.methods.FindDelivery(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}
	payment, err := s.methods.FindPayment(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolveLines(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperrors.Validation("order has no line items")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.Validation("quantity must be positive")
		}
	}

	order := &models.Order{
		UserID:         input.UserID,
		ClientName:     input.Request.ClientName,
		ClientSurname:  input.Request.ClientSurname,
		ClientEmail:    input.Request.ClientEmail,
		ClientPhone:    input.Request.ClientPhone,
		Address:        input.Request.Address,
		DeliveryMethod: delivery.ID,
		PaymentMethod:  payment.ID,
		Status:         models.OrderStatusPending,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		total := decimal.NewFromFloat(delivery.Price)
		items := make([]models.OrderItem, 0, len(lines))

		for _, line := range lines {
			// Price is read inside the transaction so the item
			// snapshots what the customer pays at this instant.
			product, err := s.products.FindByID(txCtx, line.ProductID)
			if err != nil {
				return err
			}
			if err := s.stock.DecrementStock(txCtx, line.ProductID, line.OptionID, line.Quantity); err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				OptionID:  line.OptionID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
			total = total.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(line.Quantity)))
		}

		order.Items = items
		order.TotalPrice, _ = total.Round(2).Float64()
		return s.orders.Create(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	if input.CartID != nil {
		if err := s.carts.ClearLines(ctx, *input.CartID); err != nil {
			// The order is committed; a failed cart clear is logged,
			// not surfaced.
			s.logger.Error("cart not cleared after order",
				zap.String("cart_id", input.CartID.Hex()),
				zap.String("order_id", order.ID.Hex()),
				zap.Error(err))
		}
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.Int("items", len(order.Items)),
		zap.Float64("total_price", order.TotalPrice))

	return order, nil
}

// resolveLines reads line items from the cart when CartID is set, and
// from the guest payload otherwise.
func (s *OrderService) resolveLines(ctx context.Context, input PlaceOrderInput) ([]models.OrderItem, error) {
	if input.CartID == nil {
		lines := make([]models.OrderItem, 0, len(input.Request.Lines))
		for _, l := range input.Request.Lines {
			lines = append(lines, models.OrderItem{
				ProductID: l.ProductID,
				OptionID:  l.OptionID,
				Quantity:  l.Quantity,
			})
		}
		return lines, nil
	}

	cart, err := s.carts.FindByID(ctx, *input.CartID)
	if err != nil {
		return nil, err
	}
	if input.UserID != nil && cart.UserID != *input.UserID {
		return nil, apperrors.ErrForbidden
	}

	lines := make([]models.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, models.OrderItem{
			ProductID: l.ProductID,
			OptionID:  l.OptionID,
			Quantity:  l.Quantity,
		})
	}
	return lines, nil
}

// GetOrderFor returns an order only to its owner or an admin. Orders
// placed by guests have no owner and stay admin-only.
func (s *OrderService) GetOrderFor(ctx context.Context, id, userID primitive.ObjectID, admin bool) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin {
		return order, nil
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID primitive.ObjectID) ([]*models.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return apperrors.Validation("unknown order status %q", status)
	}
	return s.orders.UpdateStatus(ctx, id, status)
}
