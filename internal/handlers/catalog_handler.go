package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
)

// CatalogHandler serves categories, option groups, options and
// per-product stock rows.
type CatalogHandler struct {
	catalog *repository.CatalogRepository
	methods *repository.MethodRepository
}

func NewCatalogHandler(catalog *repository.CatalogRepository, methods *repository.MethodRepository) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		methods: methods,
	}
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CatalogHandler) CreateOptionGroup(c *gin.Context) {
	var group models.OptionGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateOptionGroup(c.Request.Context(), &group); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *CatalogHandler) ListOptionGroups(c *gin.Context) {
	groups, err := h.catalog.ListOptionGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *CatalogHandler) CreateOption(c *gin.Context) {
	var option models.Option
	if err := c.ShouldBindJSON(&option); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.catalog.CreateOption(c.Request.Context(), &option); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, option)
}

func (h *CatalogHandler) ListGroupOptions(c *gin.Context) {
	groupID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid option group id"})
		return
	}
	options, err := h.catalog.ListOptionsByGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": options})
}

// SetStock upserts the stock of one (product, option) pair.
func (h *CatalogHandler) SetStock(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var body struct {
		OptionID primitive.ObjectID `json:"option_id" binding:"required"`
		Stock    int64              `json:"stock" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.SetStock(c.Request.Context(), productID, body.OptionID, body.Stock); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stock updated"})
}

// ListProductStock lists a product's (option, stock) rows.
func (h *CatalogHandler) ListProductStock(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	rows, err := h.catalog.ListProductOptions(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (h *CatalogHandler) ListDeliveryMethods(c *gin.Context) {
	methods, err := h.methods.ListDelivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": methods})
}

func (h *CatalogHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.methods.ListPayment(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": methods})
}

func (h *CatalogHandler) CreateDeliveryMethod(c *gin.Context) {
	var method models.DeliveryMethod
	if err := c.ShouldBindJSON(&method); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.methods.CreateDelivery(c.Request.Context(), &method); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}

func (h *CatalogHandler) CreatePaymentMethod(c *gin.Context) {
	var method models.PaymentMethod
	if err := c.ShouldBindJSON(&method); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.methods.CreatePayment(c.Request.Context(), &method); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, method)
}
