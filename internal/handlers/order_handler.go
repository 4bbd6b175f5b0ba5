package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/services"
)

type OrderHandler struct {
	orders *services.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// CreateOrder places an order. Registered users pass cartId as a query
// parameter; guests supply line items in the body. deliveryId and
// paymentId query parameters select the methods.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deliveryID, err := primitive.ObjectIDFromHex(c.Query("deliveryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery method id"})
		return
	}
	paymentID, err := primitive.ObjectIDFromHex(c.Query("paymentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method id"})
		return
	}

	input := services.PlaceOrderInput{
		DeliveryID: deliveryID,
		PaymentID:  paymentID,
		Request:    req,
	}

	if raw := c.Query("cartId"); raw != "" {
		cartID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
			return
		}
		input.CartID = &cartID
	}
	if userID, ok := middleware.UserID(c); ok {
		input.UserID = &userID
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		h.logger.Warn("order not placed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder returns one order to its owner, or any order to an admin.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	admin := false
	if claims, ok := middleware.Claims(c); ok {
		admin = claims.HasRole(models.RoleAdmin)
	}

	order, err := h.orders.GetOrderFor(c.Request.Context(), id, userID, admin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListMyOrders returns the authenticated user's orders.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	orders, err := h.orders.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// UpdateStatus moves an order along its lifecycle (admin only).
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), id, body.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
}
