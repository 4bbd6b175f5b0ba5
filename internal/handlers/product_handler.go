package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/upload"
)

type ProductHandler struct {
	repo     *repository.ProductRepository
	catalog  *repository.CatalogRepository
	uploader upload.Uploader
	logger   *zap.Logger
}

func NewProductHandler(repo *repository.ProductRepository, catalog *repository.CatalogRepository, uploader upload.Uploader, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		repo:     repo,
		catalog:  catalog,
		uploader: uploader,
		logger:   logger,
	}
}

// CreateProduct creates a new product.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product

	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.catalog.FindCategoryByID(c.Request.Context(), product.CategoryID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.repo.Create(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct returns a product by id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts lists products with pagination and a category filter.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var categoryID *primitive.ObjectID
	if raw := c.Query("category_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}

	products, total, err := h.repo.FindAll(c.Request.Context(), page, pageSize, categoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// UpdateProduct partially updates a product.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updateMap := bson.M{}
	if update.Name != nil {
		updateMap["name"] = *update.Name
	}
	if update.Description != nil {
		updateMap["description"] = *update.Description
	}
	if update.Price != nil {
		updateMap["price"] = *update.Price
	}
	if update.SKU != nil {
		updateMap["sku"] = *update.SKU
	}
	if update.CategoryID != nil {
		if _, err := h.catalog.FindCategoryByID(c.Request.Context(), *update.CategoryID); err != nil {
			respondError(c, err)
			return
		}
		updateMap["category_id"] = *update.CategoryID
	}

	if len(updateMap) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}

	if err := h.repo.Update(c.Request.Context(), id, updateMap); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product updated"})
}

// DeleteProduct soft deletes a product.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// UploadImage pushes a product photo to the asset host and persists
// the returned URL. The upload happens outside any database
// transaction.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}

	if _, err := h.repo.FindByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image file"})
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("ecommerce/products/%s", id.Hex())
	url, err := h.uploader.Upload(c.Request.Context(), file, publicID)
	if err != nil {
		h.logger.Error("image upload failed", zap.String("product_id", id.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	if err := h.repo.SetImageURL(c.Request.Context(), id, url); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
