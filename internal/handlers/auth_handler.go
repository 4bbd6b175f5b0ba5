package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/middleware"
	"ecommerce-backend/internal/models"
)

type AuthHandler struct {
	identity *auth.IdentityService
}

func NewAuthHandler(identity *auth.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, expiresAt, err := h.identity.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"token":      token,
		"roles":      user.Roles,
		"expiration": expiresAt,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	h.register(c, h.identity.Register)
}

func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	h.register(c, h.identity.RegisterAdmin)
}

func (h *AuthHandler) RegisterMod(c *gin.Context) {
	h.register(c, h.identity.RegisterMod)
}

func (h *AuthHandler) register(c *gin.Context, create func(ctx context.Context, req models.RegisterRequest) (*models.User, error)) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "Success",
		"message": "user created successfully",
		"user_id": user.ID.Hex(),
	})
}

func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	token := c.Query("token")

	if err := h.identity.ConfirmEmail(c.Request.Context(), userID, token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email successfully confirmed"})
}

func (h *AuthHandler) SendConfirm(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.identity.SendConfirm(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Success", "message": "confirmation mail sent"})
}

func (h *AuthHandler) EditUser(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.EditUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.EditUser(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "changes saved successfully"})
}

func (h *AuthHandler) EditAddress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.EditAddress(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "message": "changes saved successfully"})
}

func (h *AuthHandler) EditPassword(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identity.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
