package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/handlers"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/models"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Product *handlers.ProductHandler
	Catalog *handlers.CatalogHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, tokens *auth.TokenManager) {
	authed := middleware.Auth(tokens, "")
	admin := middleware.Auth(tokens, models.RoleAdmin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/register-admin", admin, h.Auth.RegisterAdmin)
		authGroup.POST("/register-mod", admin, h.Auth.RegisterMod)
		authGroup.POST("/confirmEmail", h.Auth.ConfirmEmail)
		authGroup.POST("/sendConfirm", h.Auth.SendConfirm)
		authGroup.POST("/editUser", authed, h.Auth.EditUser)
		authGroup.POST("/editAddress", authed, h.Auth.EditAddress)
		authGroup.POST("/editPassword", authed, h.Auth.EditPassword)
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/products", admin, h.Product.CreateProduct)
		v1.GET("/products", h.Product.ListProducts)
		v1.GET("/products/:id", h.Product.GetProduct)
		v1.PATCH("/products/:id", admin, h.Product.UpdateProduct)
		v1.DELETE("/products/:id", admin, h.Product.DeleteProduct)
		v1.POST("/products/:id/image", admin, h.Product.UploadImage)
		v1.GET("/products/:id/options", h.Catalog.ListProductStock)
		v1.PUT("/products/:id/options", admin, h.Catalog.SetStock)

		v1.POST("/categories", admin, h.Catalog.CreateCategory)
		v1.GET("/categories", h.Catalog.ListCategories)
		v1.POST("/option-groups", admin, h.Catalog.CreateOptionGroup)
		v1.GET("/option-groups", h.Catalog.ListOptionGroups)
		v1.GET("/option-groups/:id/options", h.Catalog.ListGroupOptions)
		v1.POST("/options", admin, h.Catalog.CreateOption)

		v1.GET("/delivery-methods", h.Catalog.ListDeliveryMethods)
		v1.POST("/delivery-methods", admin, h.Catalog.CreateDeliveryMethod)
		v1.GET("/payment-methods", h.Catalog.ListPaymentMethods)
		v1.POST("/payment-methods", admin, h.Catalog.CreatePaymentMethod)

		cart := v1.Group("/cart", authed)
		{
			cart.GET("", h.Cart.GetCart)
			cart.POST("/lines", h.Cart.AddLine)
			cart.PATCH("/lines", h.Cart.UpdateLine)
			cart.DELETE("/lines", h.Cart.RemoveLine)
			cart.DELETE("", h.Cart.ClearCart)
		}
	}

	order := router.Group("/order")
	{
		// Guest checkout stays open; the handler picks up the user id
		// when a valid token is present.
		order.POST("/createOrder", middleware.OptionalAuth(tokens), h.Order.CreateOrder)
		order.GET("/myOrders", authed, h.Order.ListMyOrders)
		order.GET("/:id", authed, h.Order.GetOrder)
		order.PATCH("/:id/status", admin, h.Order.UpdateStatus)
	}
}
